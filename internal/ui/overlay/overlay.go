// Package overlay composes one rendered view on top of another without
// clearing the screen: modals, toasts and the card that follows the mouse
// during a drag.
package overlay

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Position specifies where to place the overlay content.
type Position int

const (
	// Center places the overlay in the middle of the viewport.
	Center Position = iota
	// Top places the overlay at the top center of the viewport.
	Top
	// Bottom places the overlay at the bottom center of the viewport.
	Bottom
	// Absolute places the overlay's top-left corner at X, Y.
	Absolute
)

// Config controls overlay rendering behavior.
type Config struct {
	Width    int
	Height   int
	Position Position
	// PadY keeps Top and Bottom overlays off the edge.
	PadY int
	// X and Y are used by Absolute.
	X, Y int
}

// Place renders fg on top of bg. Both may carry ANSI styling; cells of bg
// outside fg are kept intact. Foreground lines that would run past the
// viewport are cut.
func Place(cfg Config, fg, bg string) string {
	fgLines := strings.Split(fg, "\n")
	bgLines := strings.Split(bg, "\n")
	for len(bgLines) < cfg.Height {
		bgLines = append(bgLines, strings.Repeat(" ", cfg.Width))
	}

	startX, startY := position(cfg, lipgloss.Width(fg), len(fgLines))

	for i, line := range fgLines {
		y := startY + i
		if y >= len(bgLines) {
			break
		}
		if cfg.Width > 0 {
			line = ansi.Truncate(line, max(cfg.Width-startX, 0), "")
		}
		bgLines[y] = splice(bgLines[y], line, startX)
	}
	return strings.Join(bgLines, "\n")
}

// splice writes line into row starting at cell x.
func splice(row, line string, x int) string {
	left := ansi.Truncate(row, x, "")
	if w := ansi.StringWidth(left); w < x {
		left += strings.Repeat(" ", x-w)
	}
	end := x + ansi.StringWidth(line)
	right := ""
	if end < ansi.StringWidth(row) {
		right = ansi.TruncateLeft(row, end, "")
	}
	return left + line + right
}

func position(cfg Config, w, h int) (x, y int) {
	switch cfg.Position {
	case Top:
		x, y = (cfg.Width-w)/2, cfg.PadY
	case Bottom:
		x, y = (cfg.Width-w)/2, cfg.Height-h-cfg.PadY
	case Absolute:
		x, y = cfg.X, cfg.Y
		// Keep the whole box on screen when there is room for it.
		if cfg.Width > 0 && x+w > cfg.Width {
			x = cfg.Width - w
		}
		if cfg.Height > 0 && y+h > cfg.Height {
			y = cfg.Height - h
		}
	default:
		x, y = (cfg.Width-w)/2, (cfg.Height-h)/2
	}
	return max(x, 0), max(y, 0)
}
