// Package markdown renders issue descriptions for the terminal.
package markdown

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// noMarginStyle drops glamour's document margins so the description lines
// up with the rest of the details view.
const noMarginStyle = `{
	"document": {
		"margin": 0,
		"block_prefix": "",
		"block_suffix": ""
	}
}`

// Renderer wraps a glamour renderer configured for one width and style.
type Renderer struct {
	renderer *glamour.TermRenderer
	width    int
	style    string
}

// New creates a renderer. style is a glamour standard style ("dark" or
// "light"); anything else falls back to dark.
func New(width int, style string) (*Renderer, error) {
	if style != "light" {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithStylesFromJSONBytes([]byte(noMarginStyle)),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	return &Renderer{renderer: r, width: width, style: style}, nil
}

// Width returns the configured word wrap width.
func (r *Renderer) Width() int {
	return r.width
}

// Style returns the glamour style in use.
func (r *Renderer) Style() string {
	return r.style
}

// Render transforms markdown to styled terminal output. Blank input renders
// as a muted placeholder line instead of an empty block.
func (r *Renderer) Render(markdown string) (string, error) {
	if strings.TrimSpace(markdown) == "" {
		markdown = "_No description._"
	}
	out, err := r.renderer.Render(markdown)
	if err != nil {
		return "", err
	}
	return strings.Trim(out, "\n"), nil
}
