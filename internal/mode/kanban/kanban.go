// Package kanban implements the board mode controller: the four-column board,
// the list view and every overlay that acts on the open project's issues.
package kanban

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/glboard/internal/config"
	"github.com/zjrosen/glboard/internal/flags"
	"github.com/zjrosen/glboard/internal/gitlab"
	kb "github.com/zjrosen/glboard/internal/kanban"
	"github.com/zjrosen/glboard/internal/log"
	"github.com/zjrosen/glboard/internal/mode"
	"github.com/zjrosen/glboard/internal/mode/shared"
	"github.com/zjrosen/glboard/internal/ui/board"
	"github.com/zjrosen/glboard/internal/ui/details"
	"github.com/zjrosen/glboard/internal/ui/help"
	"github.com/zjrosen/glboard/internal/ui/issueform"
	"github.com/zjrosen/glboard/internal/ui/issuelist"
	"github.com/zjrosen/glboard/internal/ui/picker"
	"github.com/zjrosen/glboard/internal/ui/styles"
	"github.com/zjrosen/glboard/internal/ui/toaster"
)

// ViewMode determines which view is active within the board mode.
type ViewMode int

const (
	ViewMain ViewMode = iota
	ViewDetails
	ViewHelp
	ViewMoveMenu
	ViewDeleteConfirm
	ViewForm
)

// Model is the board mode state. The store and sequencer are shared by every
// copy of the model; Update is their only writer.
type Model struct {
	services mode.Services
	project  gitlab.Project
	store    *kb.Store
	seq      *kb.Sequencer

	board   board.Model
	list    issuelist.Model
	details details.Model
	form    issueform.Model
	picker  picker.Model
	help    help.Model
	spinner spinner.Model

	view ViewMode
	// back is the view an overlay returns to.
	back ViewMode
	// target is the issue the move menu or delete confirm acts on.
	target int

	width         int
	height        int
	showStatusBar bool
}

// New creates the controller for project and loads nothing yet; Init starts
// the first load.
func New(services mode.Services, project gitlab.Project) Model {
	cfg := config.Defaults()
	if services.Config != nil {
		cfg = *services.Config
	}
	if services.Clock == nil {
		services.Clock = shared.RealClock{}
	}
	if services.Clipboard == nil {
		services.Clipboard = shared.SystemClipboard{}
	}

	store := kb.NewStore()
	store.SetView(kb.ParseViewMode(cfg.UI.DefaultView))
	store.SetLoading(true)

	m := Model{
		services:      services,
		project:       project,
		store:         store,
		seq:           kb.NewSequencer(project.ID, store, services.Outcomes, services.Tracer),
		board:         board.New(nil),
		list:          issuelist.New(),
		spinner:       spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(styles.SpinnerStyle)),
		showStatusBar: cfg.UI.ShowStatusBar,
	}
	waiting := m.seq.Waiting
	m.board = m.board.SetPending(waiting)
	m.list = m.list.SetPending(waiting).SetTimeFormatter(shared.RelativeFormatter(services.Clock))
	return m.ApplyConfig(cfg, services.Flags)
}

// ApplyConfig re-applies display settings, used at startup and on hot reload.
func (m Model) ApplyConfig(cfg config.Config, registry *flags.Registry) Model {
	colStyles := make(map[kb.Column]board.ColumnStyle, len(kb.Columns))
	colors := make(map[kb.Column]lipgloss.TerminalColor, len(kb.Columns))
	for _, c := range kb.Columns {
		name, color := cfg.Column(c)
		style := board.ColumnStyle{Title: name}
		if color != "" {
			style.Color = lipgloss.Color(color)
			colors[c] = style.Color
		}
		colStyles[c] = style
	}

	m.board = m.board.
		SetColumnStyles(colStyles).
		SetShowCounts(cfg.UI.ShowCounts).
		SetKeyboardDrag(registry == nil || registry.Enabled(flags.FlagKeyboardDrag))
	m.list = m.list.SetColumnColors(colors)
	m.showStatusBar = cfg.UI.ShowStatusBar
	m.services.Config = &cfg
	if registry != nil {
		m.services.Flags = registry
	}
	if m.view == ViewDetails {
		m.details = m.details.SetMarkdownStyle(cfg.UI.MarkdownStyle).SetSize(m.width, m.height)
	}
	return m.SetSize(m.width, m.height)
}

// Init starts the first issue load.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadCmd(false))
}

// Project returns the open project.
func (m Model) Project() gitlab.Project {
	return m.project
}

// Store exposes the issue store for inspection.
func (m Model) Store() *kb.Store {
	return m.store
}

// Busy reports whether operations are still waiting on GitLab.
func (m Model) Busy() bool {
	return m.seq.Busy()
}

// SetSize handles terminal resize.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	m.board = m.board.SetSize(width, m.mainHeight())
	m.list = m.list.SetSize(width, m.mainHeight())
	m.help = m.help.SetSize(width, height)
	m.picker = m.picker.SetSize(width, height)
	if m.view == ViewForm {
		m.form = m.form.SetSize(width, height)
	}
	if m.view == ViewDetails || m.back == ViewDetails {
		m.details = m.details.SetSize(width, height)
	}
	return m
}

func (m Model) mainHeight() int {
	if m.showStatusBar {
		return max(m.height-1, 1)
	}
	return m.height
}

// sync pushes the store into every view that shows issues.
func (m Model) sync() Model {
	issues := m.store.Issues()
	m.board = m.board.SetIssues(issues)
	m.list = m.list.SetIssues(issues)

	if m.view == ViewDetails || m.back == ViewDetails {
		iid := m.details.Issue().IID
		if issue, ok := m.store.Get(iid); ok {
			m.details = m.details.SetIssue(issue).SetPending(m.seq.Waiting(iid))
		} else {
			log.Debug(log.CatMode, "detail issue left the board", "iid", iid)
			if m.view == ViewDetails {
				m.view = ViewMain
			}
			if m.back == ViewDetails {
				m.back = ViewMain
			}
		}
	}
	return m
}

// selected returns the issue under the cursor of the active main view.
func (m Model) selected() (gitlab.Issue, bool) {
	if m.store.View() == kb.ViewList {
		return m.list.SelectedIssue()
	}
	return m.board.SelectedIssue()
}

// selectIID moves both cursors to iid when it is shown.
func (m Model) selectIID(iid int) Model {
	m.board, _ = m.board.SelectIID(iid)
	m.list, _ = m.list.SelectIID(iid)
	return m
}

// View renders the active view and overlays.
func (m Model) View() string {
	var view string
	switch m.view {
	case ViewDetails:
		view = m.details.View()
	case ViewHelp:
		view = m.help.Overlay(m.renderMain())
	case ViewMoveMenu, ViewDeleteConfirm:
		bg := m.renderMain()
		if m.back == ViewDetails {
			bg = m.details.View()
		}
		view = m.picker.Overlay(bg)
	case ViewForm:
		bg := m.renderMain()
		if m.back == ViewDetails {
			bg = m.details.View()
		}
		view = m.form.Overlay(bg)
	default:
		view = m.renderMain()
	}
	return zone.Scan(view)
}

func (m Model) renderMain() string {
	var body string
	switch {
	case m.store.Loading() && m.store.Len() == 0:
		body = lipgloss.Place(m.width, m.mainHeight(), lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading issues…")
	case m.store.View() == kb.ViewList:
		body = m.list.View()
	default:
		body = m.board.View()
	}
	if !m.showStatusBar {
		return body
	}
	if m.store.Err() != nil {
		return body + "\n" + m.renderErrorBar()
	}
	return body + "\n" + m.renderStatusBar()
}

func (m Model) renderStatusBar() string {
	parts := []string{m.projectName(), string(m.store.View()), fmt.Sprintf("%d issues", m.store.Len())}
	switch {
	case m.store.Loading():
		parts = append(parts, m.spinner.View()+" loading")
	case m.seq.Busy():
		status := m.spinner.View() + " syncing"
		if job := m.seq.InFlight(); job != nil && job.Op.IID != 0 {
			status += fmt.Sprintf(" #%d", job.Op.IID)
		}
		if n := m.seq.Pending(); n > 0 {
			status += fmt.Sprintf(" (%d queued)", n)
		}
		parts = append(parts, status)
	}
	return styles.StatusBarStyle.Width(m.width).Render(" " + strings.Join(parts, " · "))
}

func (m Model) renderErrorBar() string {
	msg := fmt.Sprintf(" Error loading issues: %v (any key to dismiss)", m.store.Err())
	return styles.ErrorStyle.Width(m.width).Render(styles.Truncate(msg, max(m.width, 10)))
}

func (m Model) projectName() string {
	if m.project.PathWithNamespace != "" {
		return m.project.PathWithNamespace
	}
	if m.project.Name != "" {
		return m.project.Name
	}
	return fmt.Sprintf("project %d", m.project.ID)
}

// Message types

type issuesLoadedMsg struct {
	projectID int
	issues    []gitlab.Issue
	order     []int
	refresh   bool
	err       error
}

type outcomeMsg struct {
	out kb.Outcome
}

// Async commands

func (m Model) loadCmd(refresh bool) tea.Cmd {
	gw := m.services.Gateway
	repo := m.services.Journal
	useOrder := repo != nil && m.services.Flags.Enabled(flags.FlagLocalOrder)
	projectID := m.project.ID
	return func() tea.Msg {
		ctx := context.Background()
		var (
			issues []gitlab.Issue
			err    error
		)
		if refresh {
			issues, err = gitlab.Refresh(ctx, gw, projectID)
		} else {
			issues, err = gw.ListIssues(ctx, projectID)
		}
		msg := issuesLoadedMsg{projectID: projectID, issues: issues, refresh: refresh, err: err}
		if err == nil && useOrder {
			order, oerr := repo.LoadOrder(ctx, projectID)
			if oerr != nil {
				log.Warn(log.CatJournal, "saved order unavailable", "project", projectID, "error", oerr)
			}
			msg.order = order
		}
		return msg
	}
}

func (m Model) executeCmd(job *kb.Job) tea.Cmd {
	if job == nil {
		return nil
	}
	seq, gw := m.seq, m.services.Gateway
	return func() tea.Msg {
		return outcomeMsg{out: seq.Execute(context.Background(), gw, job)}
	}
}

func (m Model) saveViewCmd(view kb.ViewMode) tea.Cmd {
	path := m.services.ConfigPath
	if path == "" {
		return nil
	}
	return func() tea.Msg {
		if err := config.SaveUIState(path, "", string(view)); err != nil {
			log.ErrorErr(log.CatConfig, "saving view mode failed", err, "view", view)
			return mode.ShowToastMsg{Message: "Could not save view: " + err.Error(), Style: toaster.StyleError}
		}
		return nil
	}
}
