// Package config provides configuration types and defaults for glboard.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/zjrosen/glboard/internal/kanban"
	"github.com/zjrosen/glboard/internal/log"
	"github.com/zjrosen/glboard/internal/paths"
	"github.com/zjrosen/glboard/internal/tracing"
)

// Config holds all configuration options for glboard.
type Config struct {
	GitLab     GitLabConfig    `mapstructure:"gitlab"`
	Project    string          `mapstructure:"project"`
	UI         UIConfig        `mapstructure:"ui"`
	Columns    []ColumnConfig  `mapstructure:"columns"`
	Theme      ThemeConfig     `mapstructure:"theme"`
	Cache      CacheConfig     `mapstructure:"cache"`
	Journal    JournalConfig   `mapstructure:"journal"`
	AutoReload bool            `mapstructure:"auto_reload"`
	Tracing    TracingConfig   `mapstructure:"tracing"`
	Flags      map[string]bool `mapstructure:"flags"`
}

// GitLabConfig points glboard at a GitLab instance.
type GitLabConfig struct {
	URL      string        `mapstructure:"url"`
	Token    string        `mapstructure:"token"`
	TokenEnv string        `mapstructure:"token_env"` // env var read when token is empty
	Timeout  time.Duration `mapstructure:"timeout"`
	PerPage  int           `mapstructure:"per_page"`
}

// ResolveToken returns the configured token, falling back to TokenEnv.
func (g GitLabConfig) ResolveToken() string {
	if g.Token != "" {
		return g.Token
	}
	if g.TokenEnv != "" {
		return os.Getenv(g.TokenEnv)
	}
	return ""
}

// UIConfig holds user interface configuration options.
type UIConfig struct {
	DefaultView   string        `mapstructure:"default_view"` // "kanban" (default) or "list"
	ShowCounts    bool          `mapstructure:"show_counts"`
	ShowStatusBar bool          `mapstructure:"show_status_bar"`
	ToastDuration time.Duration `mapstructure:"toast_duration"`
	MarkdownStyle string        `mapstructure:"markdown_style"` // "dark" (default) or "light"
}

// ColumnConfig overrides how one of the four board columns is displayed.
type ColumnConfig struct {
	Column string `mapstructure:"column"` // todo, doing, review or done
	Name   string `mapstructure:"name"`
	Color  string `mapstructure:"color"` // hex color e.g. "#10B981"
}

// ThemeConfig holds all theme customization options.
type ThemeConfig struct {
	// Preset loads a built-in theme as the base.
	Preset string `mapstructure:"preset"`

	// Mode forces light or dark mode. If empty, uses terminal detection.
	Mode string `mapstructure:"mode"`

	// Colors overrides individual color tokens, either nested
	// (text: {muted: "#888"}) or quoted dot notation ("text.muted").
	Colors map[string]any `mapstructure:"colors"`
}

// FlattenedColors returns the Colors map flattened to dot-notation keys.
func (t ThemeConfig) FlattenedColors() map[string]string {
	result := make(map[string]string)
	flattenColors("", t.Colors, result)
	return result
}

func flattenColors(prefix string, m map[string]any, result map[string]string) {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case string:
			result[key] = val
		case map[string]any:
			flattenColors(key, val, result)
		case map[any]any:
			converted := make(map[string]any, len(val))
			for mk, mv := range val {
				if s, ok := mk.(string); ok {
					converted[s] = mv
				}
			}
			flattenColors(key, converted, result)
		}
	}
}

// CacheConfig controls the read-through cache in front of GitLab.
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"` // 0 disables caching
}

// JournalConfig controls the sqlite activity journal.
type JournalConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// TracingConfig holds distributed tracing configuration.
type TracingConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	Exporter     string  `mapstructure:"exporter"` // none, file, stdout, otlp
	FilePath     string  `mapstructure:"file_path"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	SampleRate   float64 `mapstructure:"sample_rate"`
}

// TracingConfig converts the user settings into a tracing.Config, filling
// in the default trace file when none is set.
func (t TracingConfig) TracingConfig() tracing.Config {
	cfg := tracing.DefaultConfig()
	cfg.Enabled = t.Enabled
	if t.Exporter != "" {
		cfg.Exporter = t.Exporter
	}
	cfg.FilePath = t.FilePath
	if cfg.FilePath == "" {
		cfg.FilePath = paths.TracesPath()
	}
	if t.OTLPEndpoint != "" {
		cfg.OTLPEndpoint = t.OTLPEndpoint
	}
	cfg.SampleRate = t.SampleRate
	return cfg
}

// DefaultColumns returns the display settings for the four columns.
func DefaultColumns() []ColumnConfig {
	return []ColumnConfig{
		{Column: string(kanban.ColumnTodo), Name: kanban.ColumnTodo.Title(), Color: "#73F59F"},
		{Column: string(kanban.ColumnDoing), Name: kanban.ColumnDoing.Title(), Color: "#54A0FF"},
		{Column: string(kanban.ColumnReview), Name: kanban.ColumnReview.Title(), Color: "#FECA57"},
		{Column: string(kanban.ColumnDone), Name: kanban.ColumnDone.Title(), Color: "#BBBBBB"},
	}
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		GitLab: GitLabConfig{
			URL:      "https://gitlab.com",
			TokenEnv: "GITLAB_TOKEN",
			Timeout:  15 * time.Second,
			PerPage:  100,
		},
		UI: UIConfig{
			DefaultView:   string(kanban.ViewKanban),
			ShowCounts:    true,
			ShowStatusBar: true,
			ToastDuration: 3 * time.Second,
			MarkdownStyle: "dark",
		},
		Columns: DefaultColumns(),
		Cache:   CacheConfig{TTL: 2 * time.Minute},
		Journal: JournalConfig{
			Enabled: true,
			Path:    paths.JournalPath(),
		},
		AutoReload: true,
		Tracing: TracingConfig{
			Exporter:     "file",
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
	}
}

// Column returns the display name and color for col, applying overrides.
func (c Config) Column(col kanban.Column) (name, color string) {
	name = col.Title()
	for _, d := range DefaultColumns() {
		if d.Column == string(col) {
			color = d.Color
		}
	}
	for _, o := range c.Columns {
		if o.Column != string(col) {
			continue
		}
		if o.Name != "" {
			name = o.Name
		}
		if o.Color != "" {
			color = o.Color
		}
	}
	return name, color
}

// ProjectRef parses Project as a numeric id when possible. ok is false
// when no project is configured.
func (c Config) ProjectRef() (ref string, id int, ok bool) {
	ref = strings.TrimSpace(c.Project)
	if ref == "" {
		return "", 0, false
	}
	if n, err := strconv.Atoi(ref); err == nil {
		return ref, n, true
	}
	return ref, 0, true
}

// Validate checks the whole configuration.
func (c Config) Validate() error {
	return errors.Join(
		ValidateGitLab(c.GitLab),
		ValidateUI(c.UI),
		ValidateColumns(c.Columns),
		ValidateCache(c.Cache),
		ValidateTracing(c.Tracing),
	)
}

// ValidateGitLab checks the GitLab connection settings. The token is not
// required here so that config can load before credentials are exported.
func ValidateGitLab(g GitLabConfig) error {
	if g.URL == "" {
		return fmt.Errorf("gitlab.url is required")
	}
	u, err := url.Parse(g.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("gitlab.url must be an http(s) URL, got %q", g.URL)
	}
	if g.Timeout < 0 {
		return fmt.Errorf("gitlab.timeout must not be negative, got %s", g.Timeout)
	}
	if g.PerPage < 0 || g.PerPage > 100 {
		return fmt.Errorf("gitlab.per_page must be between 1 and 100, got %d", g.PerPage)
	}
	return nil
}

// ValidateUI checks user interface settings.
func ValidateUI(ui UIConfig) error {
	switch kanban.ViewMode(ui.DefaultView) {
	case "", kanban.ViewKanban, kanban.ViewList:
	default:
		return fmt.Errorf("ui.default_view must be \"kanban\" or \"list\", got %q", ui.DefaultView)
	}
	switch ui.MarkdownStyle {
	case "", "dark", "light":
	default:
		return fmt.Errorf("ui.markdown_style must be \"dark\" or \"light\", got %q", ui.MarkdownStyle)
	}
	if ui.ToastDuration < 0 {
		return fmt.Errorf("ui.toast_duration must not be negative, got %s", ui.ToastDuration)
	}
	return nil
}

// ValidateColumns checks column overrides. Empty is valid.
func ValidateColumns(cols []ColumnConfig) error {
	seen := map[string]bool{}
	for i, col := range cols {
		parsed, ok := kanban.ParseColumn(col.Column)
		if !ok {
			return fmt.Errorf("column %d: column must be todo, doing, review or done, got %q", i, col.Column)
		}
		if seen[string(parsed)] {
			return fmt.Errorf("column %d (%s): duplicate override", i, parsed)
		}
		seen[string(parsed)] = true
		if col.Color != "" && !isHexColor(col.Color) {
			return fmt.Errorf("column %d (%s): invalid hex color %q", i, parsed, col.Color)
		}
	}
	return nil
}

// ValidateCache checks cache settings.
func ValidateCache(c CacheConfig) error {
	if c.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative, got %s", c.TTL)
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
func ValidateTracing(t TracingConfig) error {
	if t.SampleRate < 0.0 || t.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", t.SampleRate)
	}
	switch t.Exporter {
	case "", "none", "file", "stdout", "otlp":
	default:
		return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", t.Exporter)
	}
	if t.Enabled && t.Exporter == "otlp" && t.OTLPEndpoint == "" {
		return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
	}
	return nil
}

func isHexColor(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	_, err := strconv.ParseUint(s[1:], 16, 32)
	return err == nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# glboard configuration

gitlab:
  url: https://gitlab.com
  # token: glpat-...          # prefer token_env over storing the token here
  token_env: GITLAB_TOKEN     # environment variable holding a personal access token
  timeout: 15s
  per_page: 100

# Project to open on start (numeric id or group/path). Leave empty to pick one.
# project: my-group/my-app

ui:
  default_view: kanban        # kanban or list
  show_counts: true           # Show issue counts in column headers
  show_status_bar: true       # Show status bar at bottom
  toast_duration: 3s
  # markdown_style: dark      # "dark" (default) or "light"

# Column display overrides. Membership is always derived from labels:
# doing / in progress, review / testing, closed issues are done.
columns:
  - column: todo
    name: To Do
    color: "#73F59F"
  - column: doing
    name: Doing
    color: "#54A0FF"
  - column: review
    name: Review
    color: "#FECA57"
  - column: done
    name: Done
    color: "#BBBBBB"

theme:
  # preset: dracula           # default, dracula, nord, high-contrast
  # colors:
  #   text.muted: "#888888"
  #   status.error: "#FF0000"

cache:
  ttl: 2m                     # read-through cache for projects and issues, 0 disables

journal:
  enabled: true               # record every board operation in a local sqlite journal
  # path: ~/.config/glboard/journal.db

# Re-apply UI and theme settings when this file changes
auto_reload: true

# tracing:
#   enabled: false
#   exporter: file            # none, file, stdout, otlp
#   file_path: ~/.config/glboard/traces/traces.jsonl
#   otlp_endpoint: localhost:4317
#   sample_rate: 1.0

# flags:
#   local-order: true         # restore manual card order after reload
#   keyboard-drag: true       # space picks up a card, arrows move it
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
