package render

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderer_Render(t *testing.T) {
	r := NewRenderer("notty")
	out := r.Render("<p>Flight options</p>", 80)
	require.Contains(t, out, "Flight options")
	require.NotContains(t, out, "<p>")
}

func TestRenderer_EmptyFragment(t *testing.T) {
	r := NewRenderer("notty")
	require.Equal(t, "", r.Render("", 80))
	require.Equal(t, "", r.Render("  \n ", 80))
	require.Equal(t, "", r.Render("<script>x()</script>", 80))
}

func TestRenderer_UnknownStyleFallsBackToMarkdown(t *testing.T) {
	r := NewRenderer("no-such-style")
	require.Equal(t, "**x**", r.Render("<p><b>x</b></p>", 80))
}

func TestRenderer_CachesPerWidth(t *testing.T) {
	r := NewRenderer("notty")
	r.Render("<p>a</p>", 40)
	r.Render("<p>b</p>", 40)
	require.Len(t, r.renderers, 1)

	r.Render("<p>c</p>", 60)
	require.Len(t, r.renderers, 2)

	// 过窄的宽度按最小宽度处理
	r.Render("<p>d</p>", 2)
	r.Render("<p>e</p>", 5)
	require.Len(t, r.renderers, 3)
}

func TestNewRenderer_DefaultStyle(t *testing.T) {
	require.Equal(t, "dark", NewRenderer("").Style())
}
