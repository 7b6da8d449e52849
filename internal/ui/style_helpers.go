package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// bar renders segments onto a solid background. Lipgloss resets the
// background after every styled run, so each word and gap is painted
// explicitly. See https://github.com/charmbracelet/lipgloss/discussions/78
type bar struct {
	bg    lipgloss.Color
	space string
}

func newBar(bgColor string) bar {
	bg := lipgloss.Color(bgColor)
	return bar{
		bg:    bg,
		space: lipgloss.NewStyle().Background(bg).Render(" "),
	}
}

// render paints text with style on the bar background.
func (b bar) render(text string, style lipgloss.Style) string {
	if text == "" {
		return ""
	}
	styled := style.Background(b.bg)
	if !strings.Contains(text, " ") {
		return styled.Render(text)
	}
	words := strings.Split(text, " ")
	for i, w := range words {
		if w != "" {
			words[i] = styled.Render(w)
		}
	}
	return strings.Join(words, b.space)
}

// spaces returns n painted spaces.
func (b bar) spaces(n int) string {
	if n <= 0 {
		return ""
	}
	return lipgloss.NewStyle().Background(b.bg).Render(strings.Repeat(" ", n))
}

// pair renders "label value" with the label muted.
func (b bar) pair(label, value string, labelStyle, valueStyle lipgloss.Style) string {
	return b.render(label, labelStyle) + b.space + b.render(value, valueStyle)
}

// join joins non-empty parts with painted gaps of width n.
func (b bar) join(parts []string, n int) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, b.spaces(n))
}
