package markdown

import (
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"
)

func TestRenderer_RendersText(t *testing.T) {
	r, err := New(40, "dark")
	require.NoError(t, err)
	require.Equal(t, 40, r.Width())

	out, err := r.Render("# Steps\n\n- open the board\n- drag the card")
	require.NoError(t, err)
	plain := ansi.Strip(out)
	require.Contains(t, plain, "Steps")
	require.Contains(t, plain, "drag the card")
}

func TestRenderer_EmptyDescription(t *testing.T) {
	r, err := New(40, "light")
	require.NoError(t, err)
	require.Equal(t, "light", r.Style())

	out, err := r.Render("   ")
	require.NoError(t, err)
	require.Contains(t, ansi.Strip(out), "No description.")
}

func TestRenderer_UnknownStyleFallsBack(t *testing.T) {
	r, err := New(20, "neon")
	require.NoError(t, err)
	require.Equal(t, "dark", r.Style())
}
