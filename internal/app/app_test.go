package app

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/charmbracelet/x/exp/teatest"
	zone "github.com/lrstanley/bubblezone"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/glboard/internal/config"
	"github.com/zjrosen/glboard/internal/gitlab"
	"github.com/zjrosen/glboard/internal/mode"
	"github.com/zjrosen/glboard/internal/mode/projects"
	"github.com/zjrosen/glboard/internal/mode/shared"
	"github.com/zjrosen/glboard/internal/testutil"
	"github.com/zjrosen/glboard/internal/ui/toaster"
)

var project = gitlab.Project{ID: 1, Name: "app", PathWithNamespace: "group/app"}

func TestMain(m *testing.M) {
	zone.NewGlobal()
	os.Exit(m.Run())
}

func newServices() mode.Services {
	gw := testutil.NewBuilder().WithStandardBoard().Gateway(project.ID)
	gw.SetProjects(project)
	cfg := config.Defaults()
	return mode.Services{
		Gateway:   gw,
		Config:    &cfg,
		Clipboard: &shared.MockClipboard{},
		Clock:     shared.FixedClock(time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)),
	}
}

func contains(s string) func([]byte) bool {
	return func(out []byte) bool {
		return bytes.Contains(out, []byte(s))
	}
}

func TestApp_OpensConfiguredProject(t *testing.T) {
	m := New(Options{Services: newServices(), ProjectRef: "group/app"})
	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(160, 40))

	teatest.WaitFor(t, tm.Output(), contains("Fix login redirect"), teatest.WithDuration(3*time.Second))
	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})

	final := tm.FinalModel(t, teatest.WithFinalTimeout(3*time.Second)).(Model)
	require.Equal(t, mode.ModeBoard, final.Mode())
	board, ok := final.Board()
	require.True(t, ok)
	assert.Equal(t, 8, board.Store().Len())
}

func TestApp_SelectorOpensBoard(t *testing.T) {
	m := New(Options{Services: newServices()})
	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(160, 40))

	teatest.WaitFor(t, tm.Output(), contains("group/app"), teatest.WithDuration(3*time.Second))
	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})
	teatest.WaitFor(t, tm.Output(), contains("Fix login redirect"), teatest.WithDuration(3*time.Second))
	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})

	final := tm.FinalModel(t, teatest.WithFinalTimeout(3*time.Second)).(Model)
	require.Equal(t, mode.ModeBoard, final.Mode())
}

func TestApp_UnknownProjectFallsBackToSelector(t *testing.T) {
	m := New(Options{Services: newServices(), ProjectRef: "group/missing"})

	cmd := m.resolveProjectCmd("group/missing")
	next, cmd := m.Update(cmd())
	m = next.(Model)

	require.Equal(t, mode.ModeProjects, m.Mode())
	_, ok := m.Board()
	require.False(t, ok)
	require.NotNil(t, cmd)
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestApp_ToastShowAndDismiss(t *testing.T) {
	m, _ := update(t, New(Options{Services: newServices()}), tea.WindowSizeMsg{Width: 120, Height: 30})

	m, cmd := update(t, m, mode.ShowToastMsg{Message: "Created #9", Style: toaster.StyleSuccess})
	require.NotNil(t, cmd)
	require.Contains(t, ansi.Strip(m.View()), "Created #9")

	m, _ = update(t, m, toaster.DismissMsg{Seq: 1})
	require.NotContains(t, ansi.Strip(m.View()), "Created #9")
}

func TestApp_StaleDismissKeepsNewerToast(t *testing.T) {
	m, _ := update(t, New(Options{Services: newServices()}), tea.WindowSizeMsg{Width: 120, Height: 30})

	m, _ = update(t, m, mode.ShowToastMsg{Message: "first"})
	m, _ = update(t, m, mode.ShowToastMsg{Message: "second"})
	m, _ = update(t, m, toaster.DismissMsg{Seq: 1})

	require.Contains(t, ansi.Strip(m.View()), "second")
}

func TestApp_SwitchProjectsAndBack(t *testing.T) {
	m, _ := update(t, New(Options{Services: newServices()}), tea.WindowSizeMsg{Width: 120, Height: 30})

	m, cmd := update(t, m, mode.OpenProjectMsg{Project: project})
	require.NotNil(t, cmd)
	require.Equal(t, mode.ModeBoard, m.Mode())

	m, _ = update(t, m, mode.ShowProjectsMsg{})
	require.Equal(t, mode.ModeProjects, m.Mode())

	m, _ = update(t, m, projects.BackMsg{})
	require.Equal(t, mode.ModeBoard, m.Mode())

	// Reopening the same project keeps the board.
	m, _ = update(t, m, mode.ShowProjectsMsg{})
	m, cmd = update(t, m, mode.OpenProjectMsg{Project: project})
	require.Nil(t, cmd)
	require.Equal(t, mode.ModeBoard, m.Mode())
}

func TestApp_BackWithoutBoardStays(t *testing.T) {
	m, _ := update(t, New(Options{Services: newServices()}), projects.BackMsg{})
	require.Equal(t, mode.ModeProjects, m.Mode())
}

func TestApp_ConfigReloadAppliesSettings(t *testing.T) {
	m, _ := update(t, New(Options{Services: newServices()}), tea.WindowSizeMsg{Width: 120, Height: 30})
	m, _ = update(t, m, mode.OpenProjectMsg{Project: project})
	require.Contains(t, ansi.Strip(m.View()), "group/app", "status bar shown")

	cfg := config.Defaults()
	cfg.UI.ShowStatusBar = false
	m, cmd := update(t, m, mode.ConfigReloadedMsg{Config: cfg})

	require.Equal(t, mode.ShowToastMsg{Message: "Config reloaded", Style: toaster.StyleInfo}, cmd())
	require.False(t, m.services.Config.UI.ShowStatusBar)
	require.NotContains(t, ansi.Strip(m.View()), "group/app")
}

func TestApp_ConfigReloadRejectsBadTheme(t *testing.T) {
	m := New(Options{Services: newServices()})

	cfg := config.Defaults()
	cfg.Theme.Preset = "solarized"
	m, cmd := update(t, m, mode.ConfigReloadedMsg{Config: cfg})

	toast, ok := cmd().(mode.ShowToastMsg)
	require.True(t, ok)
	require.Equal(t, toaster.StyleError, toast.Style)
	require.Contains(t, toast.Message, "unknown theme preset")
	require.Empty(t, m.services.Config.Theme.Preset)
}

func TestReloadConfigCmd_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, config.WriteDefaultConfig(path))
	require.NoError(t, config.SaveUIState(path, "", "list"))

	msg := reloadConfigCmd(path)()

	reloaded, ok := msg.(mode.ConfigReloadedMsg)
	require.True(t, ok)
	require.Equal(t, "list", reloaded.Config.UI.DefaultView)
}

func TestReloadConfigCmd_MissingFile(t *testing.T) {
	msg := reloadConfigCmd(filepath.Join(t.TempDir(), "nope.yaml"))()

	toast, ok := msg.(mode.ShowToastMsg)
	require.True(t, ok)
	require.Equal(t, toaster.StyleError, toast.Style)
}

func TestApp_LogOverlayOnlyInDebugMode(t *testing.T) {
	ctrlX := tea.KeyMsg{Type: tea.KeyCtrlX}

	m, _ := update(t, New(Options{Services: newServices()}), ctrlX)
	require.False(t, m.logOverlay.Visible())

	m, _ = update(t, New(Options{Services: newServices(), DebugMode: true}), ctrlX)
	require.True(t, m.logOverlay.Visible())

	m, _ = update(t, m, ctrlX)
	require.False(t, m.logOverlay.Visible())
}

func TestApp_Close(t *testing.T) {
	m := New(Options{Services: newServices()})
	require.NoError(t, m.Close())
	require.Error(t, m.ctx.Err())
}
