package styles

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Truncate shortens plain text to maxWidth cells, ending in an ellipsis when
// anything was cut. Wide runes are measured by runewidth.
func Truncate(s string, maxWidth int) string {
	if maxWidth < 1 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth == 1 {
		return "…"
	}
	return runewidth.Truncate(s, maxWidth, "…")
}

// PadRight pads plain text with spaces to exactly width cells, truncating
// when it is longer.
func PadRight(s string, width int) string {
	return runewidth.FillRight(Truncate(s, width), width)
}

// FormatLabels renders labels as a single muted line, e.g. "bug · ui".
func FormatLabels(labels []string, maxWidth int) string {
	if len(labels) == 0 {
		return ""
	}
	return LabelStyle.Render(Truncate(strings.Join(labels, " · "), maxWidth))
}
