package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// NewViper returns a viper instance with every default registered. The "::"
// key delimiter keeps dotted theme tokens like "text.muted" as single keys.
func NewViper() *viper.Viper {
	v := viper.NewWithOptions(viper.KeyDelimiter("::"))
	SetDefaults(v)
	return v
}

// SetDefaults registers Defaults() on v.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("gitlab::url", d.GitLab.URL)
	v.SetDefault("gitlab::token_env", d.GitLab.TokenEnv)
	v.SetDefault("gitlab::timeout", d.GitLab.Timeout)
	v.SetDefault("gitlab::per_page", d.GitLab.PerPage)
	v.SetDefault("ui::default_view", d.UI.DefaultView)
	v.SetDefault("ui::show_counts", d.UI.ShowCounts)
	v.SetDefault("ui::show_status_bar", d.UI.ShowStatusBar)
	v.SetDefault("ui::toast_duration", d.UI.ToastDuration)
	v.SetDefault("ui::markdown_style", d.UI.MarkdownStyle)
	v.SetDefault("cache::ttl", d.Cache.TTL)
	v.SetDefault("journal::enabled", d.Journal.Enabled)
	v.SetDefault("journal::path", d.Journal.Path)
	v.SetDefault("auto_reload", d.AutoReload)
	v.SetDefault("tracing::exporter", d.Tracing.Exporter)
	v.SetDefault("tracing::otlp_endpoint", d.Tracing.OTLPEndpoint)
	v.SetDefault("tracing::sample_rate", d.Tracing.SampleRate)
}

// Decode unmarshals v into a Config. Column overrides missing from the file
// fall back to DefaultColumns through Config.Column.
func Decode(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

// LoadFile reads path on top of the defaults. It is used for hot reload,
// where the file is already known to exist.
func LoadFile(path string) (Config, error) {
	v := NewViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	cfg, err := Decode(v)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}
