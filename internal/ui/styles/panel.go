package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	borderTopLeft     = "╭"
	borderTopRight    = "╮"
	borderBottomLeft  = "╰"
	borderBottomRight = "╯"
	borderHorizontal  = "─"
	borderVertical    = "│"
)

// Panel describes a bordered box with its title set into the top border:
//
//	╭─ Doing (3) ─────╮
type Panel struct {
	Title   string
	Hint    string // rendered muted after the title
	Content string
	Width   int
	Height  int
	Focused bool
	// Color tints the title, and the border when focused or highlighted.
	Color lipgloss.TerminalColor
	// Highlight marks the panel as the current drop target.
	Highlight bool
}

// Render draws the panel. Content is clipped to the inner area.
func (p Panel) Render() string {
	var borderColor lipgloss.TerminalColor = BorderDefaultColor
	switch {
	case p.Highlight:
		borderColor = DragTargetColor
	case p.Focused && p.Color != nil:
		borderColor = p.Color
	case p.Focused:
		borderColor = BorderFocusColor
	}
	titleColor := p.Color
	if titleColor == nil {
		titleColor = TextPrimaryColor
	}

	border := lipgloss.NewStyle().Foreground(borderColor)
	innerWidth := max(p.Width-2, 1)
	innerHeight := max(p.Height-2, 1)

	var b strings.Builder
	b.WriteString(p.top(innerWidth, border, lipgloss.NewStyle().Bold(p.Focused).Foreground(titleColor)))
	b.WriteString("\n")

	body := lipgloss.NewStyle().
		Width(innerWidth).
		MaxWidth(innerWidth).
		Height(innerHeight).
		MaxHeight(innerHeight).
		Render(p.Content)
	for _, line := range strings.Split(body, "\n") {
		if w := lipgloss.Width(line); w < innerWidth {
			line += strings.Repeat(" ", innerWidth-w)
		}
		b.WriteString(border.Render(borderVertical) + line + border.Render(borderVertical) + "\n")
	}

	b.WriteString(border.Render(borderBottomLeft + strings.Repeat(borderHorizontal, innerWidth) + borderBottomRight))
	return b.String()
}

func (p Panel) top(innerWidth int, border, title lipgloss.Style) string {
	plain := border.Render(borderTopLeft + strings.Repeat(borderHorizontal, innerWidth) + borderTopRight)
	if p.Title == "" || innerWidth < 4 {
		return plain
	}

	// "─ " + title + " " + hint + " " + dashes
	text := Truncate(p.Title, innerWidth-4)
	used := 3 + lipgloss.Width(text)
	hint := ""
	if p.Hint != "" && used+1+lipgloss.Width(p.Hint) <= innerWidth {
		hint = " " + MutedStyle.Render(p.Hint)
		used += 1 + lipgloss.Width(p.Hint)
	}

	return border.Render(borderTopLeft+borderHorizontal+" ") +
		title.Render(text) + hint +
		border.Render(" "+strings.Repeat(borderHorizontal, max(innerWidth-used, 0))+borderTopRight)
}

// Section renders a form field: a bordered block whose top border carries
// the label and, when set, an error message in the error color.
func Section(lines []string, label, errText string, width int, focused bool) string {
	var color lipgloss.TerminalColor = BorderDefaultColor
	if focused {
		color = BorderFocusColor
	}
	hint := ""
	if errText != "" {
		hint = lipgloss.NewStyle().Foreground(StatusErrorColor).Render(errText)
	}

	border := lipgloss.NewStyle().Foreground(color)
	innerWidth := max(width-2, 1)
	p := Panel{Title: label, Width: width, Focused: focused}
	top := p.top(innerWidth, border, lipgloss.NewStyle().Bold(true).Foreground(color))
	if hint != "" {
		top = border.Render(borderTopLeft+borderHorizontal+" ") +
			lipgloss.NewStyle().Bold(true).Foreground(color).Render(Truncate(label, innerWidth/2)) + " " + hint
		if w := lipgloss.Width(top); w < width-1 {
			top += border.Render(" " + strings.Repeat(borderHorizontal, max(width-w-2, 0)) + borderTopRight)
		}
	}

	out := make([]string, 0, len(lines)+2)
	out = append(out, top)
	for _, line := range lines {
		if w := lipgloss.Width(line); w < innerWidth {
			line += strings.Repeat(" ", innerWidth-w)
		}
		out = append(out, border.Render(borderVertical)+line+border.Render(borderVertical))
	}
	out = append(out, border.Render(borderBottomLeft+strings.Repeat(borderHorizontal, innerWidth)+borderBottomRight))
	return strings.Join(out, "\n")
}
