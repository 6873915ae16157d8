package shared

import (
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/require"
)

func fakeLookPath(installed ...string) func(string) (string, error) {
	return func(name string) (string, error) {
		for _, n := range installed {
			if n == name {
				return "/usr/bin/" + name, nil
			}
		}
		return "", exec.ErrNotFound
	}
}

func TestSystemClipboard_CommandSelection(t *testing.T) {
	tests := []struct {
		name      string
		goos      string
		installed []string
		want      []string
		wantErr   bool
	}{
		{"mac", "darwin", []string{"pbcopy"}, []string{"pbcopy"}, false},
		{"wayland preferred", "linux", []string{"xclip", "wl-copy"}, []string{"wl-copy"}, false},
		{"x11", "linux", []string{"xclip"}, []string{"xclip", "-selection", "clipboard"}, false},
		{"xsel fallback", "linux", []string{"xsel"}, []string{"xsel", "--clipboard", "--input"}, false},
		{"unknown os uses linux list", "freebsd", []string{"xclip"}, []string{"xclip", "-selection", "clipboard"}, false},
		{"nothing installed", "linux", nil, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := SystemClipboard{lookPath: fakeLookPath(tt.installed...)}
			got, err := c.command(tt.goos)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrNoClipboard)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestMockClipboard(t *testing.T) {
	c := &MockClipboard{}
	require.Empty(t, c.Last())
	require.NoError(t, c.Copy("a"))
	require.NoError(t, c.Copy("b"))
	require.Equal(t, "b", c.Last())

	c.Err = errors.New("denied")
	require.EqualError(t, c.Copy("c"), "denied")
	require.Equal(t, "b", c.Last())
}
