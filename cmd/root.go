package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/glboard/internal/app"
	"github.com/zjrosen/glboard/internal/config"
	"github.com/zjrosen/glboard/internal/flags"
	"github.com/zjrosen/glboard/internal/gitlab"
	"github.com/zjrosen/glboard/internal/infrastructure/sqlite"
	"github.com/zjrosen/glboard/internal/journal"
	"github.com/zjrosen/glboard/internal/kanban"
	"github.com/zjrosen/glboard/internal/log"
	"github.com/zjrosen/glboard/internal/mode"
	"github.com/zjrosen/glboard/internal/mode/shared"
	"github.com/zjrosen/glboard/internal/paths"
	"github.com/zjrosen/glboard/internal/pubsub"
	"github.com/zjrosen/glboard/internal/tracing"
)

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE
	// any Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop and appearing as
	// garbage text in input fields.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

var (
	version    = "dev"
	cfgFile    string
	debugFlag  bool
	logFile    string
	logLevel   string
	projectRef string

	cfg        config.Config
	configPath string
	logCleanup func()
)

var rootCmd = &cobra.Command{
	Use:   "glboard",
	Short: "A terminal Kanban board for GitLab issues",
	Long: `A terminal Kanban board for the issues of a GitLab project.

Issues are sorted into Todo, Doing, Review and Done from their state and
labels. Dragging a card relabels or closes the issue on GitLab.`,
	Version:            version,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
	RunE:               runApp,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ./.glboard/config.yaml, then ~/.config/glboard/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false,
		"write debug logs and enable the log overlay (ctrl+x)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"debug log path (default: ~/.config/glboard/debug.log)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "debug",
		"lowest level written to the debug log (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&projectRef, "project", "p", "",
		"project id or namespaced path (overrides the config)")
	rootCmd.Flags().Bool("no-auto-reload", false,
		"do not re-apply the config file when it changes")
}

// setup loads the configuration and starts logging for every command.
func setup(cmd *cobra.Command, _ []string) error {
	if err := initLogging(); err != nil {
		return err
	}
	loaded, path, err := loadConfig()
	if err != nil {
		return err
	}
	if projectRef != "" {
		loaded.Project = projectRef
	}
	if noReload, _ := cmd.Flags().GetBool("no-auto-reload"); noReload {
		loaded.AutoReload = false
	}
	cfg = loaded
	configPath = path
	log.Info(log.CatConfig, "config loaded", "path", path, "command", cmd.Name())
	return nil
}

func teardown(_ *cobra.Command, _ []string) error {
	if logCleanup != nil {
		logCleanup()
		logCleanup = nil
	}
	return nil
}

func initLogging() error {
	if !debugFlag && os.Getenv("GLBOARD_DEBUG") == "" {
		return nil
	}
	debugFlag = true
	path := logFile
	if path == "" {
		path = os.Getenv("GLBOARD_LOG")
	}
	if path == "" {
		path = paths.DebugLogPath()
	}
	cleanup, err := log.InitWithTeaLog(path, "glboard")
	if err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}
	logCleanup = cleanup
	log.SetMinLevel(log.ParseLevel(logLevel))
	return nil
}

// loadConfig resolves the config file, writing the default one when none
// exists, and decodes it over the defaults. GLBOARD_* environment variables
// override file values (GLBOARD_GITLAB_TOKEN, GLBOARD_PROJECT, ...).
func loadConfig() (config.Config, string, error) {
	v := config.NewViper()
	v.SetEnvPrefix("GLBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer("::", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("gitlab::token")
	_ = v.BindEnv("gitlab::url")
	_ = v.BindEnv("project")

	path := cfgFile
	if path == "" {
		wd, _ := os.Getwd()
		path = paths.FindConfigFile(wd)
	}
	if path == "" {
		path = paths.DefaultConfigFile()
		if path != "" {
			if err := config.WriteDefaultConfig(path); err != nil {
				log.Warn(log.CatConfig, "could not write default config", "path", path, "error", err)
				path = ""
			}
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return config.Config{}, "", fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	loaded, err := config.Decode(v)
	if err != nil {
		return config.Config{}, "", err
	}
	if err := loaded.Validate(); err != nil {
		return config.Config{}, "", fmt.Errorf("invalid configuration: %w", err)
	}
	return loaded, path, nil
}

// newGateway builds the cached GitLab gateway from the loaded config.
func newGateway(tracer trace.Tracer) (gitlab.Gateway, error) {
	client, err := gitlab.NewClient(gitlab.Config{
		BaseURL: cfg.GitLab.URL,
		Token:   cfg.GitLab.ResolveToken(),
		Timeout: cfg.GitLab.Timeout,
		PerPage: cfg.GitLab.PerPage,
		Tracer:  tracer,
	})
	if err != nil {
		return nil, fmt.Errorf("gitlab: %w (set gitlab.token or $%s)", err, cfg.GitLab.TokenEnv)
	}
	return gitlab.NewCachedGateway(client, cfg.Cache.TTL), nil
}

// openJournal opens the sqlite journal when enabled. A journal that fails
// to open is logged and skipped; the board works without it.
func openJournal() (*sqlite.DB, journal.Repository) {
	if !cfg.Journal.Enabled || cfg.Journal.Path == "" {
		return nil, nil
	}
	db, err := sqlite.NewDB(cfg.Journal.Path)
	if err != nil {
		log.ErrorErr(log.CatJournal, "journal unavailable", err, "path", cfg.Journal.Path)
		return nil, nil
	}
	return db, db.JournalRepository()
}

func newTracing() (*tracing.Provider, error) {
	provider, err := tracing.NewProvider(cfg.Tracing.TracingConfig())
	if err != nil {
		return nil, fmt.Errorf("initializing tracing: %w", err)
	}
	return provider, nil
}

func shutdownTracing(provider *tracing.Provider) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := provider.Shutdown(ctx); err != nil {
		log.Warn(log.CatTrace, "tracing shutdown failed", "error", err)
	}
}

// outcomeBufferSize lets the journal fall well behind a burst of board
// operations before the broker starts dropping outcomes.
const outcomeBufferSize = 1024

func runApp(_ *cobra.Command, _ []string) error {
	if err := app.ApplyTheme(cfg); err != nil {
		return fmt.Errorf("invalid theme: %w", err)
	}

	provider, err := newTracing()
	if err != nil {
		return err
	}
	defer shutdownTracing(provider)

	gw, err := newGateway(provider.Tracer())
	if err != nil {
		return err
	}

	db, repo := openJournal()
	if db != nil {
		defer func() { _ = db.Close() }()
	}

	registry := flags.New(cfg.Flags)
	outcomes := pubsub.NewBrokerWithBuffer[kanban.Outcome](outcomeBufferSize)
	defer outcomes.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if repo != nil {
		recorder := journal.NewRecorder(repo, journal.WithOrder(registry.Enabled(flags.FlagLocalOrder)))
		go recorder.Run(ctx, outcomes)
	}

	ref, _, _ := cfg.ProjectRef()
	zone.NewGlobal()
	model := app.New(app.Options{
		Services: mode.Services{
			Gateway:    gw,
			Config:     &cfg,
			ConfigPath: configPath,
			Flags:      registry,
			Outcomes:   outcomes,
			Journal:    repo,
			Tracer:     provider.Tracer(),
			Clipboard:  shared.SystemClipboard{},
			Clock:      shared.RealClock{},
		},
		ProjectRef: ref,
		DebugMode:  debugFlag,
	})
	p := tea.NewProgram(
		&model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err = p.Run()

	// Clean up watcher resources
	if closeErr := model.Close(); closeErr != nil && err == nil {
		err = closeErr
	}

	if err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
