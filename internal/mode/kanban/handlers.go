package kanban

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/glboard/internal/gitlab"
	kb "github.com/zjrosen/glboard/internal/kanban"
	"github.com/zjrosen/glboard/internal/keys"
	"github.com/zjrosen/glboard/internal/log"
	"github.com/zjrosen/glboard/internal/mode"
	"github.com/zjrosen/glboard/internal/mode/shared"
	"github.com/zjrosen/glboard/internal/ui/board"
	"github.com/zjrosen/glboard/internal/ui/details"
	"github.com/zjrosen/glboard/internal/ui/help"
	"github.com/zjrosen/glboard/internal/ui/issueform"
	"github.com/zjrosen/glboard/internal/ui/issuelist"
	"github.com/zjrosen/glboard/internal/ui/picker"
	"github.com/zjrosen/glboard/internal/ui/toaster"
)

// Move menu option values.
const (
	optTodo   = string(kb.ColumnTodo)
	optDoing  = string(kb.ColumnDoing)
	optReview = string(kb.ColumnReview)
	optReopen = "reopen"
	optClose  = "close"
	optCancel = "cancel"
)

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if m.view != ViewMain {
			return m, nil
		}
		var cmd tea.Cmd
		if m.store.View() == kb.ViewList {
			m.list, cmd = m.list.Update(msg)
		} else {
			m.board, cmd = m.board.Update(msg)
		}
		return m, cmd

	case spinner.TickMsg:
		if !m.store.Loading() && !m.seq.Busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case issuesLoadedMsg:
		return m.handleIssuesLoaded(msg)

	case outcomeMsg:
		return m.handleOutcome(msg.out)

	case board.DropMsg:
		m = m.selectIID(msg.IID)
		return m.submit(kb.DragOp(msg.IID, msg.Target))

	case board.IssueClickedMsg:
		return m.openDetails(msg.IID)

	case issuelist.IssueClickedMsg:
		return m.openDetails(msg.IID)

	case issuelist.ReorderMsg:
		return m.submit(kb.ReorderOp(msg.IID, msg.OverIID))

	case issuelist.ReorderBlockedMsg:
		return m, mode.Toast("Switch to manual sort (s) to reorder", toaster.StyleInfo)

	case details.CloseMsg:
		m.view = ViewMain
		m.back = ViewMain
		return m, nil

	case details.EditMsg:
		return m.openEditForm(msg.IID, ViewDetails)

	case details.MoveMsg:
		return m.openMoveMenu(msg.IID, ViewDetails)

	case details.DeleteMsg:
		return m.openDeleteConfirm(msg.IID, ViewDetails)

	case details.CopyURLMsg:
		return m, m.copyURL(msg.URL)

	case picker.SelectMsg:
		return m.handlePickerSelect(msg.Option)

	case picker.CancelMsg:
		m.view = m.back
		return m, nil

	case issueform.SubmitMsg:
		m.view = m.back
		if msg.IID == 0 {
			return m.submit(kb.CreateOp(msg.Create))
		}
		return m.submit(kb.EditOp(msg.IID, msg.Edit))

	case issueform.CancelMsg:
		m.view = m.back
		return m, nil
	}
	return m, nil
}

// handleKey routes key messages to the appropriate handler based on view mode.
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	switch m.view {
	case ViewMain:
		return m.handleMainKey(msg)
	case ViewHelp:
		if key.Matches(msg, keys.Common.Help, keys.Common.Escape) {
			m.view = ViewMain
		}
		return m, nil
	case ViewDetails:
		var cmd tea.Cmd
		m.details, cmd = m.details.Update(msg)
		return m, cmd
	case ViewMoveMenu, ViewDeleteConfirm:
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd
	case ViewForm:
		var cmd tea.Cmd
		m.form, cmd = m.form.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleMainKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	// Gestures in progress own the keyboard.
	if _, dragging := m.board.Dragging(); dragging && m.store.View() == kb.ViewKanban {
		var cmd tea.Cmd
		m.board, cmd = m.board.Update(msg)
		return m, cmd
	}
	if m.store.View() == kb.ViewList && m.list.Searching() {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	// Dismiss the load error on any key. Don't return early so the key is
	// still handled, except for esc whose only job here is dismissing.
	if m.store.Err() != nil {
		m.store.ClearErr()
		if key.Matches(msg, keys.Common.Escape) {
			return m, nil
		}
	}

	switch {
	case key.Matches(msg, keys.Common.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Common.Help):
		screen := help.ModeBoard
		if m.store.View() == kb.ViewList {
			screen = help.ModeList
		}
		m.help = help.New(screen).SetSize(m.width, m.height)
		m.view = ViewHelp
		return m, nil

	case key.Matches(msg, keys.Kanban.Refresh):
		return m.refresh()

	case key.Matches(msg, keys.Kanban.ToggleView):
		view := m.store.ToggleView()
		log.Debug(log.CatMode, "view toggled", "view", view)
		if issue, ok := m.selectedIn(view); ok {
			m = m.selectIID(issue.IID)
		}
		return m, m.saveViewCmd(view)

	case key.Matches(msg, keys.Kanban.Status):
		m.showStatusBar = !m.showStatusBar
		return m.SetSize(m.width, m.height), nil

	case key.Matches(msg, keys.Kanban.Projects):
		if m.seq.Busy() {
			return m, mode.Toast("Wait for pending changes to finish", toaster.StyleWarn)
		}
		return m, func() tea.Msg { return mode.ShowProjectsMsg{} }

	case key.Matches(msg, keys.Kanban.New):
		if m.store.Loading() {
			return m, nil
		}
		column := kb.ColumnTodo
		if m.store.View() == kb.ViewKanban && m.board.FocusedColumn() != kb.ColumnDone {
			column = m.board.FocusedColumn()
		}
		m.form = issueform.NewCreate(column).SetSize(m.width, m.height)
		m.back = ViewMain
		m.view = ViewForm
		return m, m.form.Init()
	}

	issue, hasIssue := m.selected()
	switch {
	case key.Matches(msg, keys.Kanban.Details) && hasIssue:
		return m.openDetails(issue.IID)
	case key.Matches(msg, keys.Kanban.Move) && hasIssue:
		return m.openMoveMenu(issue.IID, ViewMain)
	case key.Matches(msg, keys.Kanban.Edit) && hasIssue:
		return m.openEditForm(issue.IID, ViewMain)
	case key.Matches(msg, keys.Kanban.Delete) && hasIssue:
		return m.openDeleteConfirm(issue.IID, ViewMain)
	case key.Matches(msg, keys.Kanban.Yank) && hasIssue:
		return m, m.copyURL(issue.WebURL)
	}

	var cmd tea.Cmd
	if m.store.View() == kb.ViewList {
		m.list, cmd = m.list.Update(msg)
	} else {
		m.board, cmd = m.board.Update(msg)
	}
	return m, cmd
}

// selectedIn returns the selection of the view being left when switching to
// view.
func (m Model) selectedIn(view kb.ViewMode) (gitlab.Issue, bool) {
	if view == kb.ViewList {
		return m.board.SelectedIssue()
	}
	return m.list.SelectedIssue()
}

func (m Model) refresh() (Model, tea.Cmd) {
	if m.seq.Busy() {
		return m, mode.Toast("Wait for pending changes to finish", toaster.StyleWarn)
	}
	if m.store.Loading() {
		return m, nil
	}
	m.store.SetLoading(true)
	return m, tea.Batch(m.spinner.Tick, m.loadCmd(true))
}

func (m Model) handleIssuesLoaded(msg issuesLoadedMsg) (Model, tea.Cmd) {
	if msg.projectID != m.project.ID {
		return m, nil
	}
	m.store.SetLoading(false)
	if msg.err != nil {
		log.ErrorErr(log.CatGitLab, "loading issues failed", msg.err, "project", msg.projectID)
		m.store.SetErr(msg.err)
		return m, nil
	}
	if m.seq.Busy() {
		// A commit started while the list was in flight; the store already
		// holds newer state than this response.
		log.Warn(log.CatMode, "discarding issue list loaded during a commit", "project", msg.projectID)
		return m, nil
	}

	issues := msg.issues
	if len(msg.order) > 0 {
		issues = kb.ApplyOrder(issues, msg.order)
	}
	m.store.ClearErr()
	m.store.Replace(issues)
	m = m.sync()
	log.Info(log.CatMode, "issues loaded", "project", msg.projectID, "count", m.store.Len(), "refresh", msg.refresh)

	if msg.refresh {
		return m, mode.Toast(fmt.Sprintf("Refreshed %d issues", m.store.Len()), toaster.StyleSuccess)
	}
	return m, nil
}

// submit hands op to the sequencer and starts its GitLab call when it
// reaches the head of the queue.
func (m Model) submit(op kb.Op) (Model, tea.Cmd) {
	job, err := m.seq.Submit(op)
	if err != nil {
		return m, mode.Toast(err.Error(), toaster.StyleError)
	}
	m = m.sync()
	if job == nil {
		return m, nil
	}
	return m, tea.Batch(m.spinner.Tick, m.executeCmd(job))
}

func (m Model) handleOutcome(out kb.Outcome) (Model, tea.Cmd) {
	if job := m.seq.InFlight(); job == nil || job.ID != out.JobID {
		log.Debug(log.CatMode, "outcome for another board ignored", "job", out.JobID)
		return m, nil
	}
	next := m.seq.Settle(out)
	m = m.sync()

	cmds := []tea.Cmd{m.executeCmd(next)}
	if out.Err != nil {
		cmds = append(cmds, mode.Toast(failureText(out), toaster.StyleError))
		return m, tea.Batch(cmds...)
	}
	if out.Op.Kind == kb.OpCreate {
		m = m.selectIID(out.Issue.IID)
	}
	cmds = append(cmds, mode.Toast(successText(out), toaster.StyleSuccess))
	return m, tea.Batch(cmds...)
}

func successText(out kb.Outcome) string {
	iid := out.Op.IID
	switch out.Op.Kind {
	case kb.OpCreate:
		return fmt.Sprintf("Created #%d", out.Issue.IID)
	case kb.OpEdit:
		return fmt.Sprintf("Updated #%d", iid)
	case kb.OpDelete:
		return fmt.Sprintf("Closed #%d", iid)
	case kb.OpReopen:
		return fmt.Sprintf("Reopened #%d", iid)
	}
	return fmt.Sprintf("#%d moved to %s", iid, kb.Classify(out.Issue).Title())
}

func failureText(out kb.Outcome) string {
	verb := map[kb.OpKind]string{
		kb.OpDrag:   "move",
		kb.OpMove:   "move",
		kb.OpReopen: "reopen",
		kb.OpCreate: "create issue",
		kb.OpEdit:   "update",
		kb.OpDelete: "close",
	}[out.Op.Kind]
	subject := verb
	if out.Op.IID != 0 {
		subject = fmt.Sprintf("%s #%d", verb, out.Op.IID)
	}
	text := fmt.Sprintf("Could not %s: %s", subject, errorText(out.Err))
	if out.RolledBack {
		text += " (reverted)"
	}
	return text
}

func errorText(err error) string {
	if gitlab.IsNotFound(err) {
		return "not found on GitLab"
	}
	return err.Error()
}

func (m Model) openDetails(iid int) (Model, tea.Cmd) {
	issue, ok := m.store.Get(iid)
	if !ok {
		return m, nil
	}
	m.details = details.New(issue).
		SetMarkdownStyle(m.services.Config.UI.MarkdownStyle).
		SetTimeFormatter(shared.RelativeFormatter(m.services.Clock)).
		SetPending(m.seq.Waiting(iid)).
		SetSize(m.width, m.height)
	m.view = ViewDetails
	m.back = ViewMain
	return m, nil
}

func (m Model) openEditForm(iid int, back ViewMode) (Model, tea.Cmd) {
	issue, ok := m.store.Get(iid)
	if !ok {
		return m, nil
	}
	m.form = issueform.NewEdit(issue).SetSize(m.width, m.height)
	m.back = back
	m.view = ViewForm
	return m, m.form.Init()
}

// moveOptions lists the columns an issue can be sent to from the menu. Done
// issues can only be reopened.
func (m Model) moveOptions(issue gitlab.Issue) []picker.Option {
	current := kb.Classify(issue)
	if current == kb.ColumnDone {
		return []picker.Option{{Label: "Reopen", Value: optReopen}}
	}
	var opts []picker.Option
	for _, c := range []kb.Column{kb.ColumnDoing, kb.ColumnReview, kb.ColumnTodo} {
		if c == current {
			continue
		}
		name, _ := m.services.Config.Column(c)
		opts = append(opts, picker.Option{Label: "Move to " + name, Value: string(c)})
	}
	return opts
}

func (m Model) openMoveMenu(iid int, back ViewMode) (Model, tea.Cmd) {
	issue, ok := m.store.Get(iid)
	if !ok {
		return m, nil
	}
	m.picker = picker.New(fmt.Sprintf("Move #%d", iid), m.moveOptions(issue)).
		SetBoxWidth(28).
		SetSize(m.width, m.height)
	m.target = iid
	m.back = back
	m.view = ViewMoveMenu
	return m, nil
}

func (m Model) openDeleteConfirm(iid int, back ViewMode) (Model, tea.Cmd) {
	if _, ok := m.store.Get(iid); !ok {
		return m, nil
	}
	m.picker = picker.New(fmt.Sprintf("Close #%d and remove it?", iid), []picker.Option{
		{Label: "Cancel", Value: optCancel},
		{Label: "Close issue", Value: optClose},
	}).SetBoxWidth(32).SetSize(m.width, m.height)
	m.target = iid
	m.back = back
	m.view = ViewDeleteConfirm
	return m, nil
}

func (m Model) handlePickerSelect(opt picker.Option) (Model, tea.Cmd) {
	iid := m.target
	m.target = 0
	m.view = m.back

	switch opt.Value {
	case optCancel:
		return m, nil
	case optClose:
		return m.submit(kb.DeleteOp(iid))
	case optReopen:
		return m.submit(kb.ReopenOp(iid))
	case optTodo, optDoing, optReview:
		return m.submit(kb.MoveOp(iid, kb.Column(opt.Value)))
	}
	return m, nil
}

func (m Model) copyURL(url string) tea.Cmd {
	if url == "" {
		return mode.Toast("Issue has no URL", toaster.StyleWarn)
	}
	if err := m.services.Clipboard.Copy(url); err != nil {
		log.ErrorErr(log.CatUI, "copy failed", err)
		return mode.Toast("Copy failed: "+err.Error(), toaster.StyleError)
	}
	return mode.Toast("Copied "+url, toaster.StyleSuccess)
}
