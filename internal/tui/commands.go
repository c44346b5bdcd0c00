package tui

import (
	"context"
	"time"

	"github.com/Zacy-Sokach/BookingAssistant/internal/api"
	tea "github.com/charmbracelet/bubbletea"
)

// Backend 预订助手后端，*api.Client 即实现
type Backend interface {
	Initialize(ctx context.Context) (*api.Response, error)
	Process(ctx context.Context, input string) (*api.Response, error)
	History(ctx context.Context) (*api.Response, error)
}

func initializeCmd(ctx context.Context, b Backend) tea.Cmd {
	return func() tea.Msg {
		resp, err := b.Initialize(ctx)
		return InitializeResultMsg{Response: resp, Err: err}
	}
}

func processCmd(ctx context.Context, b Backend, input string) tea.Cmd {
	return func() tea.Msg {
		resp, err := b.Process(ctx, input)
		return ProcessResultMsg{Response: resp, Err: err}
	}
}

func refreshHistoryCmd(ctx context.Context, b Backend) tea.Cmd {
	return func() tea.Msg {
		resp, err := b.History(ctx)
		return HistoryResultMsg{Response: resp, Err: err}
	}
}

func hideInitSectionCmd(delay time.Duration) tea.Cmd {
	if delay <= 0 {
		return func() tea.Msg { return InitSectionHiddenMsg{} }
	}
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return InitSectionHiddenMsg{}
	})
}
