package details

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/glboard/internal/testutil"
)

func sampleIssue() Model {
	issue := testutil.NewIssue(4,
		testutil.Title("Dark mode"),
		testutil.Description("Support **dark** terminals."),
		testutil.Labels("In Progress", "frontend"),
		testutil.Assignee("bob"),
	)
	return New(issue).SetTimeFormatter(func(time.Time) string { return "yesterday" })
}

func TestView_TwoColumnLayout(t *testing.T) {
	m := sampleIssue().SetSize(120, 30)
	view := ansi.Strip(m.View())

	require.Contains(t, view, "#4")
	require.Contains(t, view, "Dark mode")
	require.Contains(t, view, "Doing", "column title")
	require.Contains(t, view, "dark terminals")
	require.Contains(t, view, "@alice")
	require.Contains(t, view, "@bob")
	require.Contains(t, view, "frontend")
	require.NotContains(t, view, "In Progress", "column markers are not shown as labels")
	require.Contains(t, view, "yesterday")
	require.Contains(t, view, "issues/4")
}

func TestView_NarrowLayoutFoldsMetadataIntoHeader(t *testing.T) {
	m := sampleIssue().SetSize(60, 30)
	view := ansi.Strip(m.View())

	require.Contains(t, view, "opened by @alice")
	require.Contains(t, view, "frontend")
	require.NotContains(t, view, "Assignees")
}

func TestView_EmptyDescription(t *testing.T) {
	m := New(testutil.NewIssue(1)).SetSize(100, 20)
	require.Contains(t, ansi.Strip(m.View()), "No description.")
}

func TestView_PendingMarker(t *testing.T) {
	m := sampleIssue().SetPending(true).SetSize(100, 20)
	require.Contains(t, ansi.Strip(m.View()), "⧗")
}

func TestUpdate_ActionMessages(t *testing.T) {
	m := sampleIssue().SetSize(100, 20)
	tests := []struct {
		key  tea.KeyMsg
		want tea.Msg
	}{
		{tea.KeyMsg{Type: tea.KeyEsc}, CloseMsg{}},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e")}, EditMsg{IID: 4}},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("m")}, MoveMsg{IID: 4}},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")}, DeleteMsg{IID: 4}},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")}, CopyURLMsg{URL: "https://gitlab.example.com/group/app/-/issues/4"}},
	}
	for _, tt := range tests {
		t.Run(tt.key.String(), func(t *testing.T) {
			_, cmd := m.Update(tt.key)
			require.NotNil(t, cmd)
			require.Equal(t, tt.want, cmd())
		})
	}
}

func TestSetIssue_RefreshesContent(t *testing.T) {
	m := sampleIssue().SetSize(100, 20)
	issue := m.Issue()
	issue.Description = "Rewritten body"
	m = m.SetIssue(issue)
	require.Contains(t, ansi.Strip(m.View()), "Rewritten body")
}
