// Package keys contains keybinding definitions.
package keys

import "github.com/charmbracelet/bubbles/key"

// CommonKeys are shared by every screen.
type CommonKeys struct {
	Up     key.Binding
	Down   key.Binding
	Left   key.Binding
	Right  key.Binding
	Enter  key.Binding
	Escape key.Binding
	Help   key.Binding
	Quit   key.Binding
	Log    key.Binding
}

// KanbanKeys are the board and list bindings.
type KanbanKeys struct {
	Details    key.Binding
	Move       key.Binding
	Grab       key.Binding
	New        key.Binding
	Edit       key.Binding
	Delete     key.Binding
	Refresh    key.Binding
	ToggleView key.Binding
	Projects   key.Binding
	Yank       key.Binding
	Status     key.Binding
}

// ListKeys are the extra bindings of the list view.
type ListKeys struct {
	Search      key.Binding
	Filter      key.Binding
	Sort        key.Binding
	ReorderUp   key.Binding
	ReorderDown key.Binding
}

// ProjectKeys drive the project selector.
type ProjectKeys struct {
	Filter  key.Binding
	Open    key.Binding
	Refresh key.Binding
}

// FormKeys drive the issue create and edit form.
type FormKeys struct {
	Next   key.Binding
	Prev   key.Binding
	Submit key.Binding
	Cancel key.Binding
}

var Common = CommonKeys{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "move up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "move down"),
	),
	Left: key.NewBinding(
		key.WithKeys("h", "left"),
		key.WithHelp("h/←", "move left"),
	),
	Right: key.NewBinding(
		key.WithKeys("l", "right"),
		key.WithHelp("l/→", "move right"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "select"),
	),
	Escape: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "go back"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "toggle help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Log: key.NewBinding(
		key.WithKeys("ctrl+x"),
		key.WithHelp("ctrl+x", "debug log"),
	),
}

var Kanban = KanbanKeys{
	Details: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "view details"),
	),
	Move: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "move to column"),
	),
	Grab: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "pick up / drop card"),
	),
	New: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "new issue"),
	),
	Edit: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "edit issue"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "close & remove"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh issues"),
	),
	ToggleView: key.NewBinding(
		key.WithKeys("v"),
		key.WithHelp("v", "board / list"),
	),
	Projects: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "projects"),
	),
	Yank: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "copy issue URL"),
	),
	Status: key.NewBinding(
		key.WithKeys("w"),
		key.WithHelp("w", "toggle status bar"),
	),
}

var List = ListKeys{
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search"),
	),
	Filter: key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f", "cycle status filter"),
	),
	Sort: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "cycle sort"),
	),
	ReorderUp: key.NewBinding(
		key.WithKeys("K", "shift+up"),
		key.WithHelp("K", "move issue up"),
	),
	ReorderDown: key.NewBinding(
		key.WithKeys("J", "shift+down"),
		key.WithHelp("J", "move issue down"),
	),
}

var Projects = ProjectKeys{
	Filter: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "filter projects"),
	),
	Open: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "open board"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reload projects"),
	),
}

var Form = FormKeys{
	Next: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next field"),
	),
	Prev: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "previous field"),
	),
	Submit: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("ctrl+s", "save"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
}
