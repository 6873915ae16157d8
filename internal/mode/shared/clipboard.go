// Package shared provides common utilities shared between mode controllers.
package shared

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"sync"
)

// ErrNoClipboard is returned when no clipboard command is installed.
var ErrNoClipboard = errors.New("no clipboard command found (install pbcopy, wl-copy or xclip)")

// Clipboard defines the interface for clipboard operations.
type Clipboard interface {
	Copy(text string) error
}

// SystemClipboard pipes text into the platform clipboard command.
type SystemClipboard struct {
	// lookPath is exec.LookPath unless a test replaces it.
	lookPath func(string) (string, error)
}

// clipboardCommands lists candidate commands per GOOS in preference order.
var clipboardCommands = map[string][][]string{
	"darwin":  {{"pbcopy"}},
	"windows": {{"clip"}},
	"linux": {
		{"wl-copy"},
		{"xclip", "-selection", "clipboard"},
		{"xsel", "--clipboard", "--input"},
	},
}

// command returns the first installed clipboard command for goos.
func (c SystemClipboard) command(goos string) ([]string, error) {
	lookPath := c.lookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	candidates, ok := clipboardCommands[goos]
	if !ok {
		candidates = clipboardCommands["linux"]
	}
	for _, argv := range candidates {
		if _, err := lookPath(argv[0]); err == nil {
			return argv, nil
		}
	}
	return nil, ErrNoClipboard
}

// Copy copies text to the system clipboard.
func (c SystemClipboard) Copy(text string) error {
	argv, err := c.command(runtime.GOOS)
	if err != nil {
		return err
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = strings.NewReader(text)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", argv[0], err, strings.TrimSpace(string(out)))
	}
	return nil
}

// MockClipboard records copied text for tests. Err, when set, is returned
// instead.
type MockClipboard struct {
	mu     sync.Mutex
	Err    error
	copied []string
}

// Copy records text.
func (m *MockClipboard) Copy(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.copied = append(m.copied, text)
	return nil
}

// Last returns the most recent copy, or "".
func (m *MockClipboard) Last() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.copied) == 0 {
		return ""
	}
	return m.copied[len(m.copied)-1]
}
