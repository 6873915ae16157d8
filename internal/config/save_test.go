package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveUIState_CreatesNewFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "glboard", "config.yaml")

	require.NoError(t, SaveUIState(configPath, "group/app", "list"))

	cfg, err := LoadFile(configPath)
	require.NoError(t, err)
	require.Equal(t, "group/app", cfg.Project)
	require.Equal(t, "list", cfg.UI.DefaultView)
}

func TestSaveUIState_PreservesOtherConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	initial := `# my board
gitlab:
  url: https://gitlab.example.com # self hosted
ui:
  show_counts: false
  default_view: kanban
cache:
  ttl: 30s
`
	require.NoError(t, os.WriteFile(configPath, []byte(initial), 0o600))

	require.NoError(t, SaveUIState(configPath, "42", "list"))

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "# my board")
	assert.Contains(t, content, "# self hosted")
	assert.Contains(t, content, "show_counts: false")
	assert.Contains(t, content, "ttl: 30s")
	assert.Contains(t, content, "default_view: list")

	cfg, err := LoadFile(configPath)
	require.NoError(t, err)
	require.Equal(t, "42", cfg.Project)
	require.Equal(t, "list", cfg.UI.DefaultView)
	require.False(t, cfg.UI.ShowCounts)
}

func TestSaveUIState_EmptyValuesLeaveKeys(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("project: keep/me\n"), 0o600))

	require.NoError(t, SaveUIState(configPath, "", "list"))

	cfg, err := LoadFile(configPath)
	require.NoError(t, err)
	require.Equal(t, "keep/me", cfg.Project)
	require.Equal(t, "list", cfg.UI.DefaultView)
}

func TestSaveUIState_ReplacesScalarSection(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("ui: nothing\n"), 0o600))

	require.NoError(t, SaveUIState(configPath, "", "kanban"))

	cfg, err := LoadFile(configPath)
	require.NoError(t, err)
	require.Equal(t, "kanban", cfg.UI.DefaultView)
}

func TestSaveUIState_InvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("ui: [unclosed\n"), 0o600))

	err := SaveUIState(configPath, "x", "list")
	require.ErrorContains(t, err, "parsing config")
}

func TestSaveUIState_RejectsNonMapping(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("- a\n- b\n"), 0o600))

	require.Error(t, SaveUIState(configPath, "x", "list"))
}

func TestSaveUIState_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, SaveUIState(configPath, "x", "list"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "config.yaml", entries[0].Name())
}
