package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Zacy-Sokach/BookingAssistant/internal/render"
	"github.com/spf13/cobra"
)

// 记账规则文档：上传 PDF，入库，查看已入库文件

func newUploadCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <pdf>",
		Short: "上传记账规则 PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("打开文件失败: %w", err)
			}
			defer f.Close()

			resp, err := app.client().UploadPDF(cmd.Context(), filepath.Base(args[0]), f)
			if err != nil {
				return connectionError(err)
			}
			if !resp.Success {
				return errAppFailure("上传", resp)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, render.PlainText(resp.Message))
			if len(resp.Files) > 0 {
				fmt.Fprintln(out, "服务器上的文件:")
				for _, name := range resp.Files {
					fmt.Fprintf(out, "  %s\n", name)
				}
			}
			return nil
		},
	}
}

func newIngestCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest",
		Short: "把最近上传的文档切块写入向量库",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := app.client().ProcessFile(cmd.Context())
			if err != nil {
				return connectionError(err)
			}
			if !resp.Success {
				return errAppFailure("入库", resp)
			}
			return writeLines(cmd.OutOrStdout(), render.PlainText(resp.Message))
		},
	}
}

func newDocumentsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "documents",
		Short: "列出已入库的文档",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := app.client().Documents(cmd.Context())
			if err != nil {
				return connectionError(err)
			}
			return writeLines(cmd.OutOrStdout(), resp.Documents...)
		},
	}
}
