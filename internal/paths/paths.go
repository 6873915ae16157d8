// Package paths resolves the files glboard reads and writes.
package paths

import (
	"os"
	"path/filepath"
)

const (
	appName        = "glboard"
	configFileName = "config.yaml"
	localDirName   = ".glboard"
)

// ConfigDir returns $XDG_CONFIG_HOME/glboard, falling back to
// ~/.config/glboard. It returns "" when no home directory is available.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName)
}

func inConfigDir(name string) string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, name)
}

// DefaultConfigFile is where a missing config is written.
func DefaultConfigFile() string { return inConfigDir(configFileName) }

// JournalPath is the default sqlite journal location.
func JournalPath() string { return inConfigDir("journal.db") }

// DebugLogPath is the default --debug log file.
func DebugLogPath() string { return inConfigDir("debug.log") }

// TracesPath is the default file exporter output.
func TracesPath() string { return inConfigDir(filepath.Join("traces", "traces.jsonl")) }

// FindConfigFile returns the first existing config file in lookup order:
// ./.glboard/config.yaml, then the user config directory. It returns ""
// when neither exists.
func FindConfigFile(workDir string) string {
	candidates := []string{filepath.Join(workDir, localDirName, configFileName)}
	if p := DefaultConfigFile(); p != "" {
		candidates = append(candidates, p)
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c
		}
	}
	return ""
}
