// Package app contains the root application model.
package app

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/glboard/internal/config"
	"github.com/zjrosen/glboard/internal/flags"
	"github.com/zjrosen/glboard/internal/gitlab"
	"github.com/zjrosen/glboard/internal/keys"
	"github.com/zjrosen/glboard/internal/log"
	"github.com/zjrosen/glboard/internal/mode"
	"github.com/zjrosen/glboard/internal/mode/kanban"
	"github.com/zjrosen/glboard/internal/mode/projects"
	"github.com/zjrosen/glboard/internal/pubsub"
	"github.com/zjrosen/glboard/internal/ui/logoverlay"
	"github.com/zjrosen/glboard/internal/ui/styles"
	"github.com/zjrosen/glboard/internal/ui/toaster"
	"github.com/zjrosen/glboard/internal/watcher"
)

// Options configure a new application model.
type Options struct {
	Services mode.Services
	// ProjectRef opens this project (id or namespaced path) right away
	// instead of showing the selector.
	ProjectRef string
	// DebugMode enables the log overlay (ctrl+x).
	DebugMode bool
}

// Model is the root application state.
type Model struct {
	currentMode mode.AppMode
	projects    projects.Model
	board       kanban.Model
	hasBoard    bool
	projectRef  string

	// Shared services (passed to mode controllers)
	services mode.Services

	width  int
	height int

	// Centralized toaster - owned by app, not individual modes
	toaster toaster.Model

	debugMode   bool
	logOverlay  logoverlay.Model
	logListener *log.LogListener

	ctx    context.Context
	cancel context.CancelFunc

	// Config file watcher for hot reload
	watcherHandle   *watcher.Watcher
	watcherListener *pubsub.ContinuousListener[watcher.WatcherEvent]
}

// New creates the application model. The config watcher is started when
// auto_reload is on and a config path is known.
func New(opts Options) Model {
	services := opts.Services
	if services.Config == nil {
		cfg := config.Defaults()
		services.Config = &cfg
	}
	if services.Flags == nil {
		services.Flags = flags.New(services.Config.Flags)
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := Model{
		currentMode: mode.ModeProjects,
		projects:    projects.New(services, false),
		projectRef:  opts.ProjectRef,
		services:    services,
		toaster:     toaster.New(services.Config.UI.ToastDuration),
		debugMode:   opts.DebugMode,
		logOverlay:  logoverlay.New(logoverlay.DefaultCapacity),
		ctx:         ctx,
		cancel:      cancel,
	}

	if opts.DebugMode {
		m.logListener = log.NewListener(ctx)
	}

	if services.Config.AutoReload && services.ConfigPath != "" {
		w, err := watcher.New(watcher.DefaultConfig(services.ConfigPath))
		if err == nil {
			if err = w.Start(); err != nil {
				_ = w.Stop()
			}
		}
		if err != nil {
			// The board works without hot reload.
			log.Warn(log.CatWatcher, "config watcher unavailable", "error", err)
		} else {
			m.watcherHandle = w
			m.watcherListener = pubsub.NewContinuousListener(ctx, w.Broker())
		}
	}
	return m
}

// Init opens the configured project, or the selector when there is none.
func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.projectRef != "" {
		cmds = append(cmds, m.resolveProjectCmd(m.projectRef))
	} else {
		cmds = append(cmds, m.projects.Init())
	}
	if m.watcherListener != nil {
		cmds = append(cmds, m.watcherListener.Listen())
	}
	if m.logListener != nil {
		cmds = append(cmds, m.logListener.Listen())
	}
	return tea.Batch(cmds...)
}

// Mode reports the active mode.
func (m Model) Mode() mode.AppMode {
	return m.currentMode
}

// Board returns the open board, if any.
func (m Model) Board() (kanban.Model, bool) {
	return m.board, m.hasBoard
}

type projectResolvedMsg struct {
	ref     string
	project gitlab.Project
	err     error
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.projects = m.projects.SetSize(msg.Width, msg.Height)
		if m.hasBoard {
			m.board = m.board.SetSize(msg.Width, msg.Height)
		}
		m.logOverlay = m.logOverlay.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.MouseMsg:
		if m.logOverlay.Visible() {
			return m, nil
		}

	case log.LogEvent:
		m.logOverlay = m.logOverlay.Append(msg.Payload)
		return m, m.logListener.Listen()

	case tea.KeyMsg:
		if m.debugMode && key.Matches(msg, keys.Common.Log) {
			m.logOverlay = m.logOverlay.Toggle()
			return m, nil
		}

		// The debug log overlay takes precedence while visible.
		if m.logOverlay.Visible() {
			var cmd tea.Cmd
			m.logOverlay, cmd = m.logOverlay.Update(msg)
			return m, cmd
		}

	case projectResolvedMsg:
		if msg.err != nil {
			log.ErrorErr(log.CatGitLab, "opening configured project failed", msg.err, "project", msg.ref)
			return m, tea.Batch(
				m.projects.Init(),
				mode.Toast(fmt.Sprintf("Could not open %s: %v", msg.ref, msg.err), toaster.StyleError),
			)
		}
		return m.openBoard(msg.project)

	case mode.OpenProjectMsg:
		if m.hasBoard && m.board.Project().ID == msg.Project.ID {
			log.Debug(log.CatMode, "returning to open board", "project", msg.Project.ID)
			m.currentMode = mode.ModeBoard
			return m, nil
		}
		return m.openBoard(msg.Project)

	case mode.ShowProjectsMsg:
		log.Info(log.CatMode, "Switching mode", "from", "board", "to", "projects")
		m.currentMode = mode.ModeProjects
		m.projects = projects.New(m.services, m.hasBoard).SetSize(m.width, m.height)
		return m, m.projects.Init()

	case projects.BackMsg:
		if m.hasBoard {
			m.currentMode = mode.ModeBoard
		}
		return m, nil

	case pubsub.Event[watcher.WatcherEvent]:
		cmd := reloadConfigCmd(msg.Payload.Path)
		if m.watcherListener != nil {
			cmd = tea.Batch(cmd, m.watcherListener.Listen())
		}
		return m, cmd

	case mode.ConfigReloadedMsg:
		return m.applyConfig(msg.Config)

	case mode.ShowToastMsg:
		var cmd tea.Cmd
		m.toaster, cmd = m.toaster.Show(msg.Message, msg.Style)
		return m, cmd

	case toaster.DismissMsg:
		m.toaster = m.toaster.Update(msg)
		return m, nil

	case logoverlay.CloseMsg:
		return m, nil
	}

	return m.delegate(msg)
}

// delegate routes msg to the active mode. Results of board commands still
// reach the board while the selector is shown on top of it.
func (m Model) delegate(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m.currentMode {
	case mode.ModeBoard:
		var cmd tea.Cmd
		m.board, cmd = m.board.Update(msg)
		return m, cmd

	case mode.ModeProjects:
		var cmd tea.Cmd
		m.projects, cmd = m.projects.Update(msg)
		if !m.hasBoard || isInput(msg) {
			return m, cmd
		}
		var boardCmd tea.Cmd
		m.board, boardCmd = m.board.Update(msg)
		return m, tea.Batch(cmd, boardCmd)
	}
	return m, nil
}

func isInput(msg tea.Msg) bool {
	switch msg.(type) {
	case tea.KeyMsg, tea.MouseMsg:
		return true
	}
	return false
}

func (m Model) openBoard(project gitlab.Project) (tea.Model, tea.Cmd) {
	log.Info(log.CatMode, "opening board", "project", project.PathWithNamespace, "id", project.ID)
	m.board = kanban.New(m.services, project).SetSize(m.width, m.height)
	m.hasBoard = true
	m.currentMode = mode.ModeBoard
	return m, m.board.Init()
}

func (m Model) applyConfig(cfg config.Config) (tea.Model, tea.Cmd) {
	if err := ApplyTheme(cfg); err != nil {
		log.ErrorErr(log.CatConfig, "reloaded theme rejected", err)
		return m, mode.Toast("Config reload failed: "+err.Error(), toaster.StyleError)
	}
	registry := flags.New(cfg.Flags)
	m.services.Config = &cfg
	m.services.Flags = registry
	m.toaster = m.toaster.SetDuration(cfg.UI.ToastDuration)
	if m.hasBoard {
		m.board = m.board.ApplyConfig(cfg, registry)
	}
	log.Info(log.CatConfig, "config reloaded")
	return m, mode.Toast("Config reloaded", toaster.StyleInfo)
}

func (m Model) resolveProjectCmd(ref string) tea.Cmd {
	gw := m.services.Gateway
	return func() tea.Msg {
		p, err := gw.GetProject(context.Background(), ref)
		return projectResolvedMsg{ref: ref, project: p, err: err}
	}
}

func reloadConfigCmd(path string) tea.Cmd {
	return func() tea.Msg {
		cfg, err := config.LoadFile(path)
		if err != nil {
			log.ErrorErr(log.CatConfig, "reloading config failed", err, "path", path)
			return mode.ShowToastMsg{Message: "Config reload failed: " + err.Error(), Style: toaster.StyleError}
		}
		return mode.ConfigReloadedMsg{Config: cfg}
	}
}

// ApplyTheme installs cfg's theme into the style package.
func ApplyTheme(cfg config.Config) error {
	return styles.ApplyTheme(styles.ThemeConfig{
		Preset: cfg.Theme.Preset,
		Mode:   cfg.Theme.Mode,
		Colors: cfg.Theme.FlattenedColors(),
	})
}

// View implements tea.Model.
func (m Model) View() string {
	var view string
	if m.currentMode == mode.ModeBoard && m.hasBoard {
		view = m.board.View()
	} else {
		view = m.projects.View()
	}

	// Overlay toaster on top of active mode's view
	if m.toaster.Visible() {
		view = m.toaster.Overlay(view, m.width, m.height)
	}

	if m.debugMode && m.logOverlay.Visible() {
		view = m.logOverlay.Overlay(view)
	}
	return view
}

// Close releases resources held by the application.
func (m *Model) Close() error {
	m.cancel()
	if m.watcherHandle != nil {
		return m.watcherHandle.Stop()
	}
	return nil
}
