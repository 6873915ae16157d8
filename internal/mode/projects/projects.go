// Package projects implements the project selection mode shown at startup
// and whenever the user switches projects from the board.
package projects

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/glboard/internal/config"
	"github.com/zjrosen/glboard/internal/gitlab"
	"github.com/zjrosen/glboard/internal/keys"
	"github.com/zjrosen/glboard/internal/log"
	"github.com/zjrosen/glboard/internal/mode"
	"github.com/zjrosen/glboard/internal/ui/help"
	"github.com/zjrosen/glboard/internal/ui/projectselector"
	"github.com/zjrosen/glboard/internal/ui/styles"
	"github.com/zjrosen/glboard/internal/ui/toaster"
)

// BackMsg asks the app to return to the board that was open before.
type BackMsg struct{}

// Model is the projects mode state.
type Model struct {
	services mode.Services
	selector projectselector.Model
	help     help.Model
	showHelp bool
	// canGoBack is set when a board is open underneath.
	canGoBack bool
	width     int
	height    int
}

// New creates the projects mode. canGoBack enables esc to return to the
// previous board.
func New(services mode.Services, canGoBack bool) Model {
	return Model{
		services:  services,
		selector:  projectselector.New(),
		help:      help.New(help.ModeProjects),
		canGoBack: canGoBack,
	}
}

// Init starts loading the project list.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.selector.Init(), m.loadCmd(false))
}

// SetSize handles terminal resize.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	m.selector = m.selector.SetSize(min(width-4, 100), height-2)
	m.help = m.help.SetSize(width, height)
	return m
}

// Selector exposes the selector for inspection.
func (m Model) Selector() projectselector.Model {
	return m.selector
}

type projectsLoadedMsg struct {
	projects []gitlab.Project
	refresh  bool
	err      error
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case projectsLoadedMsg:
		if msg.err != nil {
			log.ErrorErr(log.CatGitLab, "loading projects failed", msg.err)
			m.selector = m.selector.SetErr(msg.err)
			return m, nil
		}
		log.Info(log.CatMode, "projects loaded", "count", len(msg.projects), "refresh", msg.refresh)
		m.selector = m.selector.SetProjects(msg.projects)
		if msg.refresh {
			return m, mode.Toast(fmt.Sprintf("Loaded %d projects", len(msg.projects)), toaster.StyleSuccess)
		}
		return m, nil

	case projectselector.RefreshMsg:
		return m, m.loadCmd(true)

	case projectselector.SelectMsg:
		return m, tea.Batch(m.saveProjectCmd(msg.Project), func() tea.Msg {
			return mode.OpenProjectMsg{Project: msg.Project}
		})
	}

	var cmd tea.Cmd
	m.selector, cmd = m.selector.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.showHelp {
		if key.Matches(msg, keys.Common.Help, keys.Common.Escape) {
			m.showHelp = false
		}
		return m, nil
	}
	if !m.selector.Filtering() {
		switch {
		case key.Matches(msg, keys.Common.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Common.Help):
			m.showHelp = true
			return m, nil
		case key.Matches(msg, keys.Common.Escape) && m.canGoBack:
			return m, func() tea.Msg { return BackMsg{} }
		}
	}
	var cmd tea.Cmd
	m.selector, cmd = m.selector.Update(msg)
	return m, cmd
}

// View renders the selector centered on screen.
func (m Model) View() string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.OverlayBorderColor).
		Padding(0, 1).
		Render(m.selector.View())
	view := lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	if m.showHelp {
		return m.help.Overlay(view)
	}
	return view
}

func (m Model) loadCmd(refresh bool) tea.Cmd {
	gw := m.services.Gateway
	return func() tea.Msg {
		ctx := context.Background()
		var (
			projects []gitlab.Project
			err      error
		)
		if refresh {
			projects, err = gitlab.RefreshProjects(ctx, gw)
		} else {
			projects, err = gw.ListProjects(ctx)
		}
		return projectsLoadedMsg{projects: projects, refresh: refresh, err: err}
	}
}

func (m Model) saveProjectCmd(p gitlab.Project) tea.Cmd {
	path := m.services.ConfigPath
	if path == "" || p.PathWithNamespace == "" {
		return nil
	}
	return func() tea.Msg {
		if err := config.SaveUIState(path, p.PathWithNamespace, ""); err != nil {
			log.ErrorErr(log.CatConfig, "saving project failed", err, "project", p.PathWithNamespace)
			return mode.ShowToastMsg{Message: "Could not save project: " + err.Error(), Style: toaster.StyleError}
		}
		return nil
	}
}
