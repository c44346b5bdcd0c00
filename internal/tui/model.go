package tui

import (
	"context"
	"strings"
	"time"

	"github.com/Zacy-Sokach/BookingAssistant/internal/api"
	"github.com/Zacy-Sokach/BookingAssistant/internal/render"
	"github.com/Zacy-Sokach/BookingAssistant/internal/utils"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

const (
	titleText        = "预订助手"
	initButtonText   = "初始化系统"
	submitButtonText = "发送"

	msgInitializing     = "正在初始化系统..."
	msgProcessing       = "正在处理请求..."
	msgConnectionFailed = "连接服务器失败"
	msgNoHistory        = "暂无历史记录"

	inputPlaceholder = "输入预订信息，例如：预订一张去柏林的机票"

	minPanelHeight = 3
)

type focusArea int

const (
	focusInitButton focusArea = iota
	focusInput
	focusHistory
)

type outputKind int

const (
	outputEmpty outputKind = iota
	outputPending
	outputFragment
	outputFailure
)

type Options struct {
	Context  context.Context
	Backend  Backend
	Renderer *render.Renderer
	Logger   *utils.Logger
	// FadeDelay 初始化成功后隐藏初始化区域前的等待时间
	FadeDelay time.Duration
}

type Model struct {
	ctx       context.Context
	backend   Backend
	renderer  *render.Renderer
	logger    *utils.Logger
	fadeDelay time.Duration

	keys    keyMap
	help    help.Model
	spinner spinner.Model

	// 初始化区域
	initSectionVisible bool
	initDisabled       bool
	initStatus         status

	// 输入表单
	input          textinput.Model
	submitDisabled bool

	// 输出区域
	output         viewport.Model
	outputKind     outputKind
	outputFragment string
	outputFailure  status

	history list.Model

	focus  focusArea
	width  int
	height int
	ready  bool
}

func New(opts Options) Model {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Renderer == nil {
		opts.Renderer = render.NewRenderer("")
	}
	if opts.Logger == nil {
		opts.Logger = utils.NopLogger()
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 0
	ti.Focus()

	s := spinner.New(spinner.WithSpinner(spinner.Dot))
	s.Style = statusStyles[statusInfo]

	m := Model{
		ctx:                opts.Context,
		backend:            opts.Backend,
		renderer:           opts.Renderer,
		logger:             opts.Logger,
		fadeDelay:          opts.FadeDelay,
		keys:               newKeyMap(),
		help:               help.New(),
		spinner:            s,
		initSectionVisible: true,
		input:              ti,
		output:             viewport.New(80, 10),
		history:            newHistoryList(),
		focus:              focusInput,
		width:              80,
		height:             24,
	}
	m.resize()
	return m
}

// Init 启动时拉取一次历史，和页面首次加载时显示历史一致
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, refreshHistoryCmd(m.ctx, m.backend))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		m.resize()
		return m, nil

	case spinner.TickMsg:
		// 没有进行中的请求时不再续订 tick，动画自然停止
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.outputKind == outputPending {
			m.refreshOutput()
		}
		return m, cmd

	case InitializeResultMsg:
		return m.handleInitializeResult(msg)

	case InitSectionHiddenMsg:
		m.initSectionVisible = false
		m.keys.Initialize.SetEnabled(false)
		if m.focus == focusInitButton {
			m.setFocus(focusInput)
		}
		m.resize()
		return m, nil

	case ProcessResultMsg:
		return m.handleProcessResult(msg)

	case HistoryResultMsg:
		return m.handleHistoryResult(msg)
	}

	// 其余消息（光标闪烁等）交给输入框
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.NextFocus):
		m.cycleFocus(1)
		return m, nil
	case key.Matches(msg, m.keys.PrevFocus):
		m.cycleFocus(-1)
		return m, nil
	case key.Matches(msg, m.keys.Initialize):
		return m.startInitialize()
	case key.Matches(msg, m.keys.ScrollUp), key.Matches(msg, m.keys.ScrollDown):
		var cmd tea.Cmd
		m.output, cmd = m.output.Update(msg)
		return m, cmd
	case key.Matches(msg, m.keys.Enter):
		switch m.focus {
		case focusInitButton:
			return m.startInitialize()
		case focusInput:
			return m.submit()
		case focusHistory:
			return m.selectHistory(), nil
		}
	}

	var cmd tea.Cmd
	switch m.focus {
	case focusInput:
		m.input, cmd = m.input.Update(msg)
	case focusHistory:
		m.history, cmd = m.history.Update(msg)
	}
	return m, cmd
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if tea.MouseEvent(msg).IsWheel() {
		var cmd tea.Cmd
		m.output, cmd = m.output.Update(msg)
		return m, cmd
	}
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}

	l := m.layout()
	switch {
	case m.initSectionVisible && msg.Y == l.initButtonRow && msg.X < lipgloss.Width(m.initButtonView()):
		m.setFocus(focusInitButton)
		return m.startInitialize()
	case msg.Y == l.inputRow:
		m.setFocus(focusInput)
	case msg.Y >= l.historyTop && msg.Y < l.historyTop+l.historyHeight:
		if idx, ok := m.historyIndexAt(msg.Y - l.historyTop); ok {
			m.history.Select(idx)
			return m.selectHistory(), nil
		}
	}
	return m, nil
}

// startInitialize 初始化按钮：禁用按钮并发送一次请求，不重试
func (m Model) startInitialize() (tea.Model, tea.Cmd) {
	if !m.initSectionVisible || m.initDisabled {
		return m, nil
	}
	m.initDisabled = true
	m.initStatus = infoStatus(msgInitializing)
	m.logger.Info("开始初始化系统")
	return m, tea.Batch(m.spinner.Tick, initializeCmd(m.ctx, m.backend))
}

func (m Model) handleInitializeResult(msg InitializeResultMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Err != nil:
		m.logger.Warn("初始化请求失败", "error", msg.Err)
		m.initStatus = dangerStatus(msgConnectionFailed)
		m.initDisabled = false
		return m, nil
	case msg.Response != nil && msg.Response.Success:
		m.logger.Info("系统初始化成功")
		// 按钮保持禁用，等待淡出后隐藏整个初始化区域
		m.initStatus = successStatus(msg.Response.Message)
		return m, hideInitSectionCmd(m.fadeDelay)
	default:
		m.logger.Info("系统初始化失败", "message", responseMessage(msg.Response))
		m.initStatus = dangerStatus(responseMessage(msg.Response))
		m.initDisabled = false
		return m, nil
	}
}

// submit 输入去除首尾空白后为空时什么也不做
func (m Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" || m.submitDisabled {
		return m, nil
	}
	m.submitDisabled = true
	m.outputKind = outputPending
	m.refreshOutput()
	m.logger.Debug("提交输入", "length", len(text))
	return m, tea.Batch(m.spinner.Tick, processCmd(m.ctx, m.backend, text))
}

func (m Model) handleProcessResult(msg ProcessResultMsg) (tea.Model, tea.Cmd) {
	// 无论结果如何都重新启用发送按钮
	m.submitDisabled = false

	switch {
	case msg.Err != nil:
		m.logger.Warn("处理请求失败", "error", msg.Err)
		m.showFailure(msgConnectionFailed)
		return m, nil
	case msg.Response != nil && msg.Response.Success:
		m.showFragment(msg.Response.Output)
		m.logger.Debug("处理成功，刷新历史", "input", msg.Response.Input)
		return m, refreshHistoryCmd(m.ctx, m.backend)
	default:
		m.showFailure(responseMessage(msg.Response))
		return m, nil
	}
}

// handleHistoryResult 整体替换列表内容；失败时静默忽略
func (m Model) handleHistoryResult(msg HistoryResultMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil || msg.Response == nil {
		m.logger.Debug("刷新历史失败", "error", msg.Err)
		return m, nil
	}
	items := historyItems(msg.Response.History)
	cmd := m.history.SetItems(items)
	// 列表变短时光标可能落在末尾之外
	if len(items) > 0 && m.history.Index() >= len(items) {
		m.history.Select(len(items) - 1)
	}
	return m, cmd
}

// selectHistory 把选中的历史条目原样写回输入框，不发请求
func (m Model) selectHistory() Model {
	it, ok := m.history.SelectedItem().(historyItem)
	if !ok {
		return m
	}
	m.input.SetValue(string(it))
	m.input.CursorEnd()
	m.setFocus(focusInput)
	return m
}

func (m *Model) showFragment(fragment string) {
	m.outputKind = outputFragment
	m.outputFragment = fragment
	m.outputFailure = status{}
	m.refreshOutput()
	m.output.GotoTop()
}

func (m *Model) showFailure(message string) {
	m.outputKind = outputFailure
	m.outputFragment = ""
	m.outputFailure = dangerStatus(message)
	m.refreshOutput()
	m.output.GotoTop()
}

func (m *Model) refreshOutput() {
	var content string
	switch m.outputKind {
	case outputPending:
		content = statusStyles[statusInfo].Render(msgProcessing + " " + m.spinner.View())
	case outputFragment:
		content = m.renderer.Render(m.outputFragment, m.output.Width)
	case outputFailure:
		content = m.outputFailure.view("")
	}
	m.output.SetContent(content)
}

func (m Model) busy() bool {
	return m.initStatus.kind == statusInfo || m.outputKind == outputPending
}

func (m Model) focusAreas() []focusArea {
	if m.initSectionVisible {
		return []focusArea{focusInitButton, focusInput, focusHistory}
	}
	return []focusArea{focusInput, focusHistory}
}

func (m *Model) cycleFocus(delta int) {
	areas := m.focusAreas()
	current := 0
	for i, a := range areas {
		if a == m.focus {
			current = i
			break
		}
	}
	next := (current + delta + len(areas)) % len(areas)
	m.setFocus(areas[next])
}

func (m *Model) setFocus(f focusArea) {
	m.focus = f
	if f == focusInput {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
	m.history.SetDelegate(historyDelegate{focused: f == focusHistory})
}

// historyIndexAt 把列表区域内的行号换算成条目索引
func (m Model) historyIndexAt(row int) (int, bool) {
	if row < 0 {
		return 0, false
	}
	p := m.history.Paginator
	if row >= p.PerPage {
		return 0, false
	}
	idx := p.Page*p.PerPage + row
	if idx >= len(m.history.Items()) {
		return 0, false
	}
	return idx, true
}

type layout struct {
	initButtonRow int
	inputRow      int
	outputTop     int
	outputHeight  int
	historyTop    int
	historyHeight int
}

// layout 必须和 View 的行数保持一致，鼠标点击依赖它定位
func (m Model) layout() layout {
	l := layout{initButtonRow: -1}
	y := 2 // 标题 + 空行
	if m.initSectionVisible {
		l.initButtonRow = y
		y += 3 // 按钮、状态、空行
	}
	l.inputRow = y
	y += 2 // 输入行 + 空行
	y++    // 输出标题
	l.outputTop = y

	avail := m.height - y - 3 // 输出后空行、历史标题、帮助行
	avail = max(avail, minPanelHeight*2)
	l.outputHeight = avail * 3 / 5
	l.historyHeight = avail - l.outputHeight
	l.historyTop = l.outputTop + l.outputHeight + 2
	return l
}

func (m *Model) resize() {
	l := m.layout()
	m.input.Width = max(10, m.width-lipgloss.Width(m.submitButtonView())-lipgloss.Width(m.input.Prompt)-3)
	m.output.Width = m.width
	m.output.Height = l.outputHeight
	m.history.SetSize(m.width, l.historyHeight)
	m.help.Width = m.width
	m.refreshOutput()
}

func (m Model) View() string {
	if !m.ready {
		return "初始化中..."
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(titleText))
	sb.WriteString("\n\n")

	if m.initSectionVisible {
		sb.WriteString(m.initButtonView())
		sb.WriteString("\n")
		sb.WriteString(ansi.Truncate(m.initStatus.view(m.spinner.View()), m.width, "…"))
		sb.WriteString("\n\n")
	}

	sb.WriteString(m.inputView())
	sb.WriteString("  ")
	sb.WriteString(m.submitButtonView())
	sb.WriteString("\n\n")

	sb.WriteString(labelStyle.Render("输出"))
	sb.WriteString("\n")
	sb.WriteString(m.output.View())
	sb.WriteString("\n\n")

	sb.WriteString(labelStyle.Render("历史记录"))
	sb.WriteString("\n")
	sb.WriteString(m.historyView())
	sb.WriteString("\n")
	sb.WriteString(m.help.View(m.keys))
	return sb.String()
}

// inputView 输入为空时自己绘制占位文字，textinput 按显示宽度截取占位符会把中文截成 NUL
func (m Model) inputView() string {
	if m.input.Value() != "" {
		return m.input.View()
	}
	c := m.input.Cursor
	c.TextStyle = m.input.PlaceholderStyle
	c.SetChar(" ")
	avail := max(0, m.input.Width-1)
	text := ansi.Truncate(inputPlaceholder, avail, "…")
	pad := strings.Repeat(" ", max(0, avail-lipgloss.Width(text)))
	return m.input.PromptStyle.Render(m.input.Prompt) + c.View() + m.input.PlaceholderStyle.Render(text) + pad
}

func (m Model) initButtonView() string {
	switch {
	case m.initDisabled:
		return buttonDisabledStyle.Render(initButtonText)
	case m.focus == focusInitButton:
		return buttonFocusedStyle.Render(initButtonText)
	default:
		return buttonStyle.Render(initButtonText)
	}
}

func (m Model) submitButtonView() string {
	if m.submitDisabled {
		return buttonDisabledStyle.Render(submitButtonText)
	}
	return buttonStyle.Render(submitButtonText)
}

func (m Model) historyView() string {
	h := m.layout().historyHeight
	box := lipgloss.NewStyle().Height(h).MaxHeight(h)
	if len(m.history.Items()) == 0 {
		return box.Render(historyDimmedStyle.Render(msgNoHistory))
	}
	return box.Render(m.history.View())
}

func responseMessage(resp *api.Response) string {
	if resp == nil {
		return ""
	}
	return resp.Message
}
