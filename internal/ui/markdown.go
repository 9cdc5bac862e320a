package ui

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

// MarkdownRenderer caches a glamour renderer and rebuilds it only when the
// width or style changes.
type MarkdownRenderer struct {
	mu       sync.Mutex
	renderer *glamour.TermRenderer
	width    int
	style    string
}

var defaultRenderer MarkdownRenderer

func (r *MarkdownRenderer) get(width int, style string) (*glamour.TermRenderer, error) {
	if width < 1 {
		width = 80
	}
	if style == "" {
		style = "dark"
	}
	if r.renderer != nil && width == r.width && style == r.style {
		return r.renderer, nil
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	r.renderer = renderer
	r.width = width
	r.style = style
	return renderer, nil
}

// Render renders markdown content for the terminal. Returns the original
// content if rendering fails.
func (r *MarkdownRenderer) Render(content string, width int, style string) string {
	if content == "" {
		return ""
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	renderer, err := r.get(width, style)
	if err != nil {
		return content
	}
	rendered, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(rendered, "\n")
}

// RenderMarkdownWithStyle renders markdown content using the specified glamour style.
func RenderMarkdownWithStyle(content string, width int, style string) string {
	return defaultRenderer.Render(content, width, style)
}

// RenderMarkdown renders with the "dark" style.
func RenderMarkdown(content string, width int) string {
	return RenderMarkdownWithStyle(content, width, "dark")
}
