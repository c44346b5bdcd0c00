package render

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// 服务端返回的 HTML 片段是可信内容，不做转义，只是转换成终端可显示的 Markdown

var bodyContext = &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"[", `\[`,
	"]", `\]`,
)

// ToMarkdown 把 HTML 片段转换为 Markdown
func ToMarkdown(fragment string) (string, error) {
	nodes, err := parseFragment(fragment)
	if err != nil {
		return "", err
	}
	c := &converter{}
	for _, n := range nodes {
		c.node(n)
	}
	return c.finish(), nil
}

// PlainText 只保留片段中的文字，空白按 HTML 规则折叠
func PlainText(fragment string) string {
	nodes, err := parseFragment(fragment)
	if err != nil {
		return strings.TrimSpace(fragment)
	}
	var sb strings.Builder
	for _, n := range nodes {
		collectText(&sb, n)
	}
	return strings.TrimSpace(collapseSpace(sb.String()))
}

func parseFragment(fragment string) ([]*html.Node, error) {
	nodes, err := html.ParseFragment(strings.NewReader(fragment), bodyContext)
	if err != nil {
		return nil, fmt.Errorf("解析HTML片段失败: %w", err)
	}
	return nodes, nil
}

func collectText(sb *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		sb.WriteString(n.Data)
		return
	case html.ElementNode:
		if isSkipped(n) {
			return
		}
		if isBlock(n) || n.DataAtom == atom.Br || n.DataAtom == atom.Li {
			defer sb.WriteString(" ")
		}
	case html.CommentNode:
		return
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		collectText(sb, child)
	}
}

// converter 逐个收集块级元素，行内内容先累积到 para
type converter struct {
	blocks []string
	para   strings.Builder
	// tight 为 true 时块之间只用单个换行分隔（列表项内部）
	tight bool
}

func (c *converter) node(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		c.para.WriteString(markdownEscaper.Replace(collapseSpace(n.Data)))
	case html.ElementNode:
		if isSkipped(n) {
			return
		}
		if isBlock(n) {
			c.flush()
			c.block(n)
			return
		}
		c.para.WriteString(inline(n))
	case html.CommentNode:
	default:
		c.children(n)
	}
}

func (c *converter) children(n *html.Node) {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.node(child)
	}
}

func (c *converter) flush() {
	text := cleanParagraph(c.para.String())
	c.para.Reset()
	if text != "" {
		c.blocks = append(c.blocks, text)
	}
}

func (c *converter) emit(block string) {
	if strings.TrimSpace(block) != "" {
		c.blocks = append(c.blocks, block)
	}
}

func (c *converter) finish() string {
	c.flush()
	sep := "\n\n"
	if c.tight {
		sep = "\n"
	}
	return strings.Join(c.blocks, sep)
}

func (c *converter) block(n *html.Node) {
	switch n.DataAtom {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		level := int(n.Data[1] - '0')
		text := cleanParagraph(inlineChildren(n))
		if text != "" {
			c.emit(strings.Repeat("#", level) + " " + strings.ReplaceAll(text, "\\\n", " "))
		}
	case atom.Ul, atom.Ol:
		c.emit(list(n))
	case atom.Pre:
		code := strings.Trim(textContent(n), "\n")
		c.emit("```\n" + code + "\n```")
	case atom.Blockquote:
		inner := &converter{}
		inner.children(n)
		c.emit(prefixLines(inner.finish(), "> ", "> "))
	case atom.Hr:
		c.emit("---")
	case atom.Table:
		c.emit(table(n))
	default:
		c.children(n)
		c.flush()
	}
}

func list(n *html.Node) string {
	ordered := n.DataAtom == atom.Ol
	index := 1
	if ordered {
		if start, err := strconv.Atoi(getAttr(n, "start")); err == nil {
			index = start
		}
	}

	var items []string
	for li := n.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.DataAtom != atom.Li {
			continue
		}
		marker := "- "
		if ordered {
			marker = strconv.Itoa(index) + ". "
			index++
		}
		inner := &converter{tight: true}
		inner.children(li)
		body := inner.finish()
		items = append(items, prefixLines(body, marker, strings.Repeat(" ", len(marker))))
	}
	return strings.Join(items, "\n")
}

func table(n *html.Node) string {
	var rows [][]string
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			if child.Type != html.ElementNode {
				continue
			}
			switch child.DataAtom {
			case atom.Thead, atom.Tbody, atom.Tfoot:
				walk(child)
			case atom.Tr:
				var cells []string
				for cell := child.FirstChild; cell != nil; cell = cell.NextSibling {
					if cell.Type == html.ElementNode && (cell.DataAtom == atom.Td || cell.DataAtom == atom.Th) {
						text := cleanParagraph(inlineChildren(cell))
						text = strings.ReplaceAll(text, "\\\n", " ")
						cells = append(cells, strings.ReplaceAll(text, "|", `\|`))
					}
				}
				rows = append(rows, cells)
			}
		}
	}
	walk(n)
	if len(rows) == 0 {
		return ""
	}

	cols := 0
	for _, r := range rows {
		cols = max(cols, len(r))
	}
	if cols == 0 {
		return ""
	}

	var sb strings.Builder
	writeRow := func(cells []string) {
		sb.WriteString("|")
		for i := 0; i < cols; i++ {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			sb.WriteString(" " + cell + " |")
		}
		sb.WriteString("\n")
	}
	writeRow(rows[0])
	sb.WriteString("|" + strings.Repeat(" --- |", cols) + "\n")
	for _, r := range rows[1:] {
		writeRow(r)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func inline(n *html.Node) string {
	switch n.Type {
	case html.TextNode:
		return markdownEscaper.Replace(collapseSpace(n.Data))
	case html.ElementNode:
	default:
		return ""
	}
	if isSkipped(n) {
		return ""
	}

	switch n.DataAtom {
	case atom.Br:
		return "\\\n"
	case atom.Strong, atom.B:
		return wrapInline(inlineChildren(n), "**")
	case atom.Em, atom.I:
		return wrapInline(inlineChildren(n), "*")
	case atom.Code, atom.Kbd, atom.Samp:
		text := collapseSpace(textContent(n))
		if strings.TrimSpace(text) == "" {
			return text
		}
		return "`" + text + "`"
	case atom.A:
		text := inlineChildren(n)
		href := getAttr(n, "href")
		if href == "" || strings.TrimSpace(text) == "" {
			return text
		}
		return "[" + strings.TrimSpace(text) + "](" + href + ")"
	case atom.Img:
		return markdownEscaper.Replace(getAttr(n, "alt"))
	default:
		return inlineChildren(n)
	}
}

func inlineChildren(n *html.Node) string {
	var sb strings.Builder
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		sb.WriteString(inline(child))
	}
	return sb.String()
}

// wrapInline 把首尾空白留在标记外面，否则 Markdown 不识别强调
func wrapInline(s, mark string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return s
	}
	lead := s[:len(s)-len(strings.TrimLeft(s, " "))]
	trail := s[len(strings.TrimRight(s, " ")):]
	return lead + mark + trimmed + mark + trail
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode && child.DataAtom == atom.Br {
			sb.WriteString("\n")
			continue
		}
		sb.WriteString(textContent(child))
	}
	return sb.String()
}

func cleanParagraph(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		for strings.Contains(line, "  ") {
			line = strings.ReplaceAll(line, "  ", " ")
		}
		lines[i] = strings.TrimSpace(line)
	}
	out := strings.TrimSpace(strings.Join(lines, "\n"))
	for strings.HasSuffix(out, "\\") && !strings.HasSuffix(out, `\\`) {
		out = strings.TrimSpace(strings.TrimSuffix(out, "\\"))
	}
	return out
}

// collapseSpace 把连续空白折叠成一个空格，首尾有空白时保留一个
func collapseSpace(s string) string {
	if s == "" {
		return ""
	}
	fields := strings.FieldsFunc(s, isHTMLSpace)
	if len(fields) == 0 {
		return " "
	}
	out := strings.Join(fields, " ")
	if isHTMLSpace(rune(s[0])) {
		out = " " + out
	}
	if isHTMLSpace(rune(s[len(s)-1])) {
		out += " "
	}
	return out
}

func isHTMLSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f'
}

func prefixLines(s, first, rest string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if i == 0 {
			lines[i] = first + line
		} else if line == "" {
			lines[i] = strings.TrimRight(rest, " ")
		} else {
			lines[i] = rest + line
		}
	}
	return strings.Join(lines, "\n")
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func isSkipped(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Head, atom.Template, atom.Noscript, atom.Title:
		return true
	}
	return false
}

func isBlock(n *html.Node) bool {
	switch n.DataAtom {
	case atom.P, atom.Div, atom.Section, atom.Article, atom.Main, atom.Header, atom.Footer,
		atom.Aside, atom.Nav, atom.Form, atom.Fieldset, atom.Figure, atom.Dl, atom.Dt, atom.Dd,
		atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
		atom.Ul, atom.Ol, atom.Pre, atom.Blockquote, atom.Hr, atom.Table:
		return true
	}
	return false
}
