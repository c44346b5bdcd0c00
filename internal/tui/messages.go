package tui

import "github.com/Zacy-Sokach/BookingAssistant/internal/api"

// Message types for Bubble Tea
// 每个网络请求只回送一条结果消息

type InitializeResultMsg struct {
	Response *api.Response
	Err      error
}

// InitSectionHiddenMsg 初始化成功并等待淡出延迟后发送
type InitSectionHiddenMsg struct{}

type ProcessResultMsg struct {
	Response *api.Response
	Err      error
}

type HistoryResultMsg struct {
	Response *api.Response
	Err      error
}
