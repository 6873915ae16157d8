package board

import (
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/glboard/internal/kanban"
	"github.com/zjrosen/glboard/internal/log"
)

// Session is the in-progress drag: the lifted issue and what it hovers.
type Session struct {
	IID  int
	From kanban.Column
	// Over is the highlighted drop column.
	Over kanban.Column
	// OverIID is the card under the pointer or cursor, zero for the column
	// itself.
	OverIID int
	// Mouse is set for pointer drags; X and Y track the pointer.
	Mouse bool
	X, Y  int
}

// Target is where the session would land if released now.
func (s Session) Target() kanban.DropTarget {
	if s.OverIID != 0 && s.OverIID != s.IID {
		return kanban.OnIssue(s.OverIID)
	}
	return kanban.OnColumn(s.Over)
}

// DragStartMsg is sent when a card is picked up.
type DragStartMsg struct {
	IID  int
	From kanban.Column
}

// DropMsg is sent when a drag ends over a target. The controller hands it to
// the reconciler; invalid targets resolve to no-ops there.
type DropMsg struct {
	IID    int
	Target kanban.DropTarget
}

// DragCancelMsg is sent when a drag ends without a drop.
type DragCancelMsg struct {
	IID int
}

// Dragging returns the current session, if any.
func (m Model) Dragging() (Session, bool) {
	if m.drag == nil {
		return Session{}, false
	}
	return *m.drag, true
}

// CancelDrag drops the session without emitting a drop.
func (m Model) CancelDrag() Model {
	m.drag = nil
	return m
}

func (m Model) grab(mouse bool) Model {
	issue, ok := m.SelectedIssue()
	if !ok {
		return m
	}
	from := m.columns[m.focused].kind
	m.drag = &Session{IID: issue.IID, From: from, Over: from, OverIID: issue.IID, Mouse: mouse}
	log.Debug(log.CatDrag, "drag start", "iid", issue.IID, "from", from, "mouse", mouse)
	return m
}

func (m Model) drop() (Model, tea.Cmd) {
	s := *m.drag
	m.drag = nil
	if s.OverIID == s.IID || (s.OverIID == 0 && s.Over == s.From) {
		log.Debug(log.CatDrag, "drag ended in place", "iid", s.IID)
		return m, func() tea.Msg { return DragCancelMsg{IID: s.IID} }
	}
	target := s.Target()
	log.Debug(log.CatDrag, "drag end", "iid", s.IID, "column", target.Column, "over", target.IssueIID)
	return m, func() tea.Msg { return DropMsg{IID: s.IID, Target: target} }
}

// trackKeyboardTarget follows the cursor while a keyboard drag is active:
// the focused column is the drop column and the selected card the drop
// card.
func (m Model) trackKeyboardTarget() Model {
	if m.drag == nil || m.drag.Mouse {
		return m
	}
	col := m.columns[m.focused]
	m.drag.Over = col.kind
	m.drag.OverIID = 0
	if issue, ok := col.selected(); ok {
		m.drag.OverIID = issue.IID
	}
	return m
}

func (m Model) handleMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		iid, col, ok := m.cardAt(msg)
		if !ok {
			if c, hit := m.columnAt(msg); hit {
				m = m.SetFocus(c)
			}
			return m, nil
		}
		m = m.SetFocus(col)
		m, _ = m.SelectIID(iid)
		m = m.grab(true)
		if m.drag != nil {
			m.drag.X, m.drag.Y = msg.X, msg.Y
			s := *m.drag
			return m, func() tea.Msg { return DragStartMsg{IID: s.IID, From: s.From} }
		}

	case tea.MouseActionMotion:
		if m.drag == nil || !m.drag.Mouse {
			return m, nil
		}
		m.drag.X, m.drag.Y = msg.X, msg.Y
		m.drag.OverIID = 0
		if iid, col, ok := m.cardAt(msg); ok {
			m.drag.Over, m.drag.OverIID = col, iid
		} else if col, ok := m.columnAt(msg); ok {
			m.drag.Over = col
		}

	case tea.MouseActionRelease:
		if m.drag == nil || !m.drag.Mouse {
			return m, nil
		}
		s := *m.drag
		if s.OverIID == s.IID && s.Over == s.From {
			m.drag = nil
			return m, func() tea.Msg { return IssueClickedMsg{IID: s.IID} }
		}
		if _, onColumn := m.columnAt(msg); !onColumn {
			m.drag = nil
			return m, func() tea.Msg { return DragCancelMsg{IID: s.IID} }
		}
		return m.drop()
	}
	return m, nil
}

// cardAt finds the card zone under the pointer.
func (m Model) cardAt(msg tea.MouseMsg) (int, kanban.Column, bool) {
	for _, col := range m.columns {
		for _, issue := range col.issues {
			if z := zone.Get(m.cardZone(issue.IID)); z != nil && z.InBounds(msg) {
				return issue.IID, col.kind, true
			}
		}
	}
	return 0, "", false
}

// columnAt finds the column zone under the pointer.
func (m Model) columnAt(msg tea.MouseMsg) (kanban.Column, bool) {
	for _, col := range m.columns {
		if z := zone.Get(m.columnZone(col.kind)); z != nil && z.InBounds(msg) {
			return col.kind, true
		}
	}
	return "", false
}
