package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Zacy-Sokach/BookingAssistant/internal/api"
	"github.com/Zacy-Sokach/BookingAssistant/internal/config"
	"github.com/Zacy-Sokach/BookingAssistant/internal/render"
	"github.com/Zacy-Sokach/BookingAssistant/internal/tui"
	"github.com/Zacy-Sokach/BookingAssistant/internal/update"
	"github.com/Zacy-Sokach/BookingAssistant/internal/utils"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"
)

const defaultWidth = 80

type App struct {
	ServerURL  string
	ConfigPath string
	Version    string

	cfg      *config.Config
	logger   *utils.Logger
	closeLog func() error

	// newChecker 测试中替换为指向本地服务的检查器
	newChecker func() *update.Checker
	// isTerminal 判断标准输出是否为交互式终端
	isTerminal func() bool
	// termWidth 渲染输出时使用的宽度
	termWidth func() int
}

func NewRootCmd(version string) *cobra.Command {
	return newRootCmd(&App{
		Version:    version,
		newChecker: update.NewChecker,
		isTerminal: stdoutIsTerminal,
		termWidth:  stdoutWidth,
	})
}

func newRootCmd(app *App) *cobra.Command {
	if app.newChecker == nil {
		app.newChecker = update.NewChecker
	}
	if app.isTerminal == nil {
		app.isTerminal = stdoutIsTerminal
	}
	if app.termWidth == nil {
		app.termWidth = stdoutWidth
	}
	if app.Version == "" {
		app.Version = update.DevVersion
	}

	cmd := &cobra.Command{
		Use:           "bookingassistant",
		Short:         "预订助手终端客户端",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: strings.TrimSpace(`
  # 启动交互界面
  bookingassistant

  # 脚本化调用
  bookingassistant init
  bookingassistant process "预订明天去上海的高铁"
  bookingassistant history
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, app)
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.setup()
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		return app.teardown()
	}

	cmd.PersistentFlags().StringVar(&app.ServerURL, "server", "", "服务器地址（覆盖配置文件和环境变量）")
	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", "", "配置文件路径（默认 "+utils.GetConfigPathForDisplay()+"）")

	cmd.AddCommand(newInitCmd(app))
	cmd.AddCommand(newProcessCmd(app))
	cmd.AddCommand(newHistoryCmd(app))
	cmd.AddCommand(newUploadCmd(app))
	cmd.AddCommand(newIngestCmd(app))
	cmd.AddCommand(newDocumentsCmd(app))
	cmd.AddCommand(newVersionCmd(app))

	return cmd
}

// setup 加载配置并打开日志文件，命令行参数优先级最高
func (a *App) setup() error {
	var (
		cfg *config.Config
		err error
	)
	if a.ConfigPath != "" {
		cfg, err = config.LoadConfigFrom(a.ConfigPath)
	} else {
		cfg, err = config.LoadConfig()
	}
	if err != nil {
		return err
	}
	if a.ServerURL != "" {
		cfg.ServerURL = a.ServerURL
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	logPath, err := cfg.LogFilePath()
	if err != nil {
		return err
	}
	logger, closeLog, err := utils.OpenLogFile("cli", logPath, utils.ParseLevel(cfg.Log.Level))
	if err != nil {
		// 日志不可用时不影响主流程
		a.logger = utils.NopLogger()
		return nil
	}
	a.logger = logger
	a.closeLog = closeLog
	a.logger.Info("启动", "version", a.Version, "server", cfg.ServerURL)
	return nil
}

func (a *App) teardown() error {
	if a.closeLog == nil {
		return nil
	}
	err := a.closeLog()
	a.closeLog = nil
	return err
}

func (a *App) client() *api.Client {
	c := api.NewClient(a.cfg.ServerURL,
		api.WithTimeout(a.cfg.Timeout()),
		api.WithLogger(a.logger.Named("api")),
	)
	a.logger.Debug("创建客户端", "server", c.BaseURL(), "timeout", a.cfg.Timeout())
	return c
}

func (a *App) renderer() *render.Renderer {
	return render.NewRenderer(a.cfg.UI.MarkdownStyle)
}

func runTUI(cmd *cobra.Command, app *App) error {
	if !app.isTerminal() {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "预订助手运行在非交互式模式")
		fmt.Fprintln(out, "请在交互式终端中运行以获得完整界面，或使用 init/process/history 子命令")
		return nil
	}

	model := tui.New(tui.Options{
		Context:   cmd.Context(),
		Backend:   app.client(),
		Renderer:  app.renderer(),
		Logger:    app.logger.Named("tui"),
		FadeDelay: app.cfg.FadeDelay(),
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("程序运行错误: %w", err)
	}
	return nil
}

func stdoutIsTerminal() bool {
	fileInfo, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// stdoutWidth 非终端时按 80 列渲染
func stdoutWidth() int {
	if !stdoutIsTerminal() {
		return defaultWidth
	}
	width, _, err := term.GetSize(os.Stdout.Fd())
	if err != nil || width <= 0 {
		return defaultWidth
	}
	return width
}

func writeLines(w io.Writer, lines ...string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
