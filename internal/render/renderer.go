package render

import (
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

const minWidth = 10

// Renderer 把 HTML 片段渲染成终端 ANSI 文本
// glamour 渲染器按 宽度+样式 缓存，WithAutoStyle 可能阻塞在终端查询上，所以使用固定样式
type Renderer struct {
	style string

	mu        sync.Mutex
	renderers map[string]*glamour.TermRenderer
}

// NewRenderer style 为 glamour 标准样式名：dark、light、notty、ascii 等
func NewRenderer(style string) *Renderer {
	if style == "" {
		style = "dark"
	}
	return &Renderer{
		style:     style,
		renderers: map[string]*glamour.TermRenderer{},
	}
}

// Style 返回当前使用的 glamour 样式名
func (r *Renderer) Style() string {
	return r.style
}

// Render 渲染片段，任何一步失败都退回片段的纯文本
func (r *Renderer) Render(fragment string, width int) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}

	md, err := ToMarkdown(fragment)
	if err != nil {
		return PlainText(fragment)
	}
	if strings.TrimSpace(md) == "" {
		return ""
	}

	tr, err := r.termRenderer(width)
	if err != nil {
		return md
	}
	out, err := tr.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}

func (r *Renderer) termRenderer(width int) (*glamour.TermRenderer, error) {
	if width < minWidth {
		width = minWidth
	}
	key := r.style + ":" + strconv.Itoa(width)

	r.mu.Lock()
	defer r.mu.Unlock()

	if tr := r.renderers[key]; tr != nil {
		return tr, nil
	}
	tr, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(r.style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	r.renderers[key] = tr
	return tr, nil
}
