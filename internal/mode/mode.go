// Package mode defines the mode controller interface and shared services.
package mode

import (
	tea "github.com/charmbracelet/bubbletea"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/glboard/internal/config"
	"github.com/zjrosen/glboard/internal/flags"
	"github.com/zjrosen/glboard/internal/gitlab"
	"github.com/zjrosen/glboard/internal/journal"
	"github.com/zjrosen/glboard/internal/kanban"
	"github.com/zjrosen/glboard/internal/mode/shared"
	"github.com/zjrosen/glboard/internal/pubsub"
	"github.com/zjrosen/glboard/internal/ui/toaster"
)

// AppMode identifies the current application mode.
type AppMode int

const (
	ModeProjects AppMode = iota
	ModeBoard
)

// Services contains shared dependencies injected into mode controllers.
type Services struct {
	Gateway    gitlab.Gateway
	Config     *config.Config
	ConfigPath string
	Flags      *flags.Registry
	// Outcomes receives every settled board operation. May be nil.
	Outcomes *pubsub.Broker[kanban.Outcome]
	// Journal holds the saved manual order. May be nil.
	Journal   journal.Repository
	Tracer    trace.Tracer
	Clipboard shared.Clipboard
	Clock     shared.Clock
}

// ShowToastMsg asks the app to show a toast.
type ShowToastMsg struct {
	Message string
	Style   toaster.Style
}

// OpenProjectMsg switches to the board of Project.
type OpenProjectMsg struct {
	Project gitlab.Project
}

// ShowProjectsMsg switches back to the project selector.
type ShowProjectsMsg struct{}

// ConfigReloadedMsg carries a configuration re-read from disk.
type ConfigReloadedMsg struct {
	Config config.Config
}

// Toast returns a command producing ShowToastMsg.
func Toast(message string, style toaster.Style) tea.Cmd {
	return func() tea.Msg { return ShowToastMsg{Message: message, Style: style} }
}
