package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
)

// historyItem 历史列表中的一项，文字原样保存，选择时原样写回输入框
type historyItem string

func (h historyItem) FilterValue() string { return string(h) }

// historyDelegate 每项固定一行，鼠标点击时按行号换算索引
type historyDelegate struct {
	focused bool
}

func (d historyDelegate) Height() int                             { return 1 }
func (d historyDelegate) Spacing() int                            { return 0 }
func (d historyDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d historyDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(historyItem)
	if !ok {
		return
	}

	// 列表项单行显示，换行符折叠成空格
	text := strings.Join(strings.Fields(string(it)), " ")
	width := m.Width() - 2
	if width > 0 {
		text = ansi.Truncate(text, width, "…")
	}

	switch {
	case index == m.Index() && d.focused:
		fmt.Fprint(w, historySelectedStyle.Render("▸ "+text))
	case index == m.Index():
		fmt.Fprint(w, historyItemStyle.Render(text))
	default:
		fmt.Fprint(w, historyDimmedStyle.Render(text))
	}
}

func newHistoryList() list.Model {
	l := list.New(nil, historyDelegate{}, 80, 5)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.SetShowFilter(false)
	l.DisableQuitKeybindings()
	l.KeyMap.ShowFullHelp.SetEnabled(false)
	l.KeyMap.CloseFullHelp.SetEnabled(false)
	return l
}

// historyItems 按服务端顺序转换，不去重不截断
func historyItems(entries []string) []list.Item {
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = historyItem(e)
	}
	return items
}

// historyEntries 返回列表中当前的全部条目
func historyEntries(l list.Model) []string {
	items := l.Items()
	out := make([]string, 0, len(items))
	for _, it := range items {
		if h, ok := it.(historyItem); ok {
			out = append(out, string(h))
		}
	}
	return out
}
