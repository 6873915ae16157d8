package overlay

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/require"
)

const bg5x5 = "AAAAA\nAAAAA\nAAAAA\nAAAAA\nAAAAA"

func TestPlace_Positions(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want []string
	}{
		{
			name: "center",
			cfg:  Config{Width: 5, Height: 5, Position: Center},
			want: []string{"AAAAA", "AAAAA", "AXXAA", "AAAAA", "AAAAA"},
		},
		{
			name: "top with padding",
			cfg:  Config{Width: 5, Height: 5, Position: Top, PadY: 1},
			want: []string{"AAAAA", "AXXAA", "AAAAA", "AAAAA", "AAAAA"},
		},
		{
			name: "bottom",
			cfg:  Config{Width: 5, Height: 5, Position: Bottom},
			want: []string{"AAAAA", "AAAAA", "AAAAA", "AAAAA", "AXXAA"},
		},
		{
			name: "absolute",
			cfg:  Config{Width: 5, Height: 5, Position: Absolute, X: 3, Y: 1},
			want: []string{"AAAAA", "AAAXX", "AAAAA", "AAAAA", "AAAAA"},
		},
		{
			name: "absolute kept on screen",
			cfg:  Config{Width: 5, Height: 5, Position: Absolute, X: 4, Y: 9},
			want: []string{"AAAAA", "AAAAA", "AAAAA", "AAAAA", "AAAXX"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := strings.Split(Place(tt.cfg, "XX", bg5x5), "\n")
			require.Equal(t, tt.want, got)
		})
	}
}

func TestPlace_PadsShortBackground(t *testing.T) {
	out := Place(Config{Width: 4, Height: 3, Position: Bottom}, "X", "AAAA")
	lines := strings.Split(out, "\n")

	require.Len(t, lines, 3)
	require.Equal(t, "AAAA", lines[0])
	require.Equal(t, " X  ", lines[2])
}

func TestPlace_ClipsToViewport(t *testing.T) {
	out := Place(Config{Width: 3, Height: 2, Position: Center}, "XXXXX", "AAA\nAAA")
	for _, line := range strings.Split(out, "\n") {
		require.LessOrEqual(t, lipgloss.Width(line), 3)
	}
}

func TestPlace_PreservesStyledBackground(t *testing.T) {
	red := lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
	bg := red.Render("AAAAAA")
	out := Place(Config{Width: 6, Height: 1, Position: Center}, "XX", bg)

	require.Equal(t, 6, lipgloss.Width(out))
	require.Contains(t, out, "XX")
}
