package cli

import (
	"strings"

	"github.com/Zacy-Sokach/BookingAssistant/internal/render"
	"github.com/spf13/cobra"
)

func newInitCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "初始化服务端系统",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := app.client().Initialize(cmd.Context())
			if err != nil {
				return connectionError(err)
			}
			if !resp.Success {
				return errAppFailure("初始化", resp)
			}
			return writeLines(cmd.OutOrStdout(), render.PlainText(resp.Message))
		},
	}
}

func newProcessCmd(app *App) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "process <text...>",
		Short: "发送一条预订请求并输出结果",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			input := strings.TrimSpace(strings.Join(args, " "))
			if input == "" {
				return errEmptyInput
			}

			resp, err := app.client().Process(cmd.Context(), input)
			if err != nil {
				return connectionError(err)
			}
			if !resp.Success {
				return errAppFailure("处理请求", resp)
			}

			out := resp.Output
			if !raw {
				out = app.renderer().Render(resp.Output, app.termWidth())
			}
			return writeLines(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "直接输出服务端返回的 HTML 片段")
	return cmd
}

func newHistoryCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "按服务端顺序列出历史输入",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// /history 只返回 history 字段，失败只可能是传输错误
			resp, err := app.client().History(cmd.Context())
			if err != nil {
				return connectionError(err)
			}
			return writeLines(cmd.OutOrStdout(), resp.History...)
		},
	}
}
