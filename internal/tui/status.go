package tui

import (
	"strings"

	"github.com/Zacy-Sokach/BookingAssistant/internal/render"
)

type statusKind int

const (
	statusNone statusKind = iota
	statusInfo
	statusSuccess
	statusDanger
)

// status 对应页面上的提示框：进行中、成功、失败
type status struct {
	kind statusKind
	text string
}

func infoStatus(text string) status { return status{kind: statusInfo, text: text} }

// successStatus 和 dangerStatus 的服务端消息可能带 HTML，只取文字
func successStatus(text string) status {
	return status{kind: statusSuccess, text: render.PlainText(text)}
}

func dangerStatus(text string) status {
	return status{kind: statusDanger, text: render.PlainText(text)}
}

func (s status) empty() bool {
	return s.kind == statusNone
}

func (s status) view(spin string) string {
	if s.empty() {
		return ""
	}
	text := strings.Join(strings.Fields(s.text), " ")
	switch s.kind {
	case statusInfo:
		if spin != "" {
			text += " " + spin
		}
	case statusSuccess:
		text = "✓ " + text
	case statusDanger:
		text = "✗ " + text
	}
	return statusStyles[s.kind].Render(text)
}
