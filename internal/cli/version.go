package cli

import (
	"fmt"

	"github.com/Zacy-Sokach/BookingAssistant/internal/update"
	"github.com/spf13/cobra"
)

func newVersionCmd(app *App) *cobra.Command {
	var check bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "显示版本信息",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "BookingAssistant %s\n", app.Version)
			if !check {
				return nil
			}

			hasUpdate, latest, err := app.newChecker().CheckForUpdate(cmd.Context(), app.Version)
			if err != nil {
				return fmt.Errorf("检查更新失败: %w", err)
			}
			if !hasUpdate {
				fmt.Fprintln(out, "已是最新版本")
				return nil
			}
			fmt.Fprintf(out, "发现新版本 %s\n", latest.TagName)
			fmt.Fprintf(out, "下载地址: %s\n", update.GetDownloadURL(latest.TagName))
			return nil
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "查询 GitHub 上的最新发布版本")
	return cmd
}
