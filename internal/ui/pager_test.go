package ui

import (
	"strings"
	"testing"

	"github.com/GioMjds/commitly/internal/config"
	tea "github.com/charmbracelet/bubbletea"
)

func sizedPager(t *testing.T, m pagerModel, w, h int) pagerModel {
	t.Helper()
	sized, _ := m.Update(tea.WindowSizeMsg{Width: w, Height: h})
	return sized.(pagerModel)
}

func TestPagerViewPreservesContent(t *testing.T) {
	m := sizedPager(t, pagerModel{
		content: "This is the pager content",
		theme:   ResolveTheme(config.ThemeConfig{}),
	}, 80, 24)

	stripped := stripANSI(m.View())
	if !strings.Contains(stripped, "pager content") {
		t.Error("expected pager content in output")
	}
	if !strings.Contains(stripped, "scroll") {
		t.Error("expected footer help text in output")
	}
}

func TestPagerLoadingBeforeResize(t *testing.T) {
	m := pagerModel{content: "x"}
	if !strings.Contains(m.View(), "Loading") {
		t.Error("expected loading text before the first resize")
	}
}

func TestPagerCentersWithMaxWidth(t *testing.T) {
	m := sizedPager(t, pagerModel{
		content:  "centered",
		maxWidth: 60,
		theme:    ResolveTheme(config.ThemeConfig{}),
	}, 100, 10)

	if m.viewport.Width != 60 {
		t.Errorf("expected viewport width 60, got %d", m.viewport.Width)
	}
	first := strings.Split(stripANSI(m.View()), "\n")[0]
	if !strings.HasPrefix(first, strings.Repeat(" ", 20)) {
		t.Errorf("expected 20 columns of left padding, got %q", first)
	}
}

func TestPagerQuitKeys(t *testing.T) {
	for _, key := range []string{"q", "esc"} {
		m := sizedPager(t, pagerModel{content: "x"}, 80, 24)
		var msg tea.KeyMsg
		if key == "esc" {
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		} else {
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
		}
		_, cmd := m.Update(msg)
		if cmd == nil {
			t.Fatalf("%s: expected quit command", key)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s: expected tea.QuitMsg", key)
		}
	}
}
