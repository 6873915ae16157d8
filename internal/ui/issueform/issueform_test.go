package issueform

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/glboard/internal/kanban"
	"github.com/zjrosen/glboard/internal/testutil"
)

func typeText(m Model, s string) Model {
	for _, r := range s {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func send(m Model, t tea.KeyType) (Model, tea.Cmd) {
	return m.Update(tea.KeyMsg{Type: t})
}

func TestCreate_RequiresTitle(t *testing.T) {
	m := NewCreate(kanban.ColumnTodo).SetSize(80, 30)
	require.Equal(t, "title is required", m.Err())

	m, _ = send(m, tea.KeyTab)
	m, _ = send(m, tea.KeyCtrlS)
	require.True(t, m.title.Focused(), "a failed submit returns to the title")
	require.Contains(t, ansi.Strip(m.View()), "title is required")

	m = typeText(m, "   ")
	require.NotEmpty(t, m.Err(), "whitespace is not a title")
}

func TestCreate_SubmitsWithColumnMarker(t *testing.T) {
	m := NewCreate(kanban.ColumnDoing).SetSize(80, 30)
	m = typeText(m, "Add export")
	require.Empty(t, m.Err())

	m, _ = send(m, tea.KeyTab)
	m = typeText(m, "CSV first")
	m, _ = send(m, tea.KeyTab)
	m = typeText(m, "feature, backend")

	_, cmd := send(m, tea.KeyCtrlS)
	require.NotNil(t, cmd)
	msg, ok := cmd().(SubmitMsg)
	require.True(t, ok)
	require.Zero(t, msg.IID)
	require.Equal(t, "Add export", msg.Create.Title)
	require.Equal(t, "CSV first", msg.Create.Description)
	require.Equal(t, []string{"feature", "backend", "doing"}, msg.Create.Labels)
}

func TestCreate_EnterAdvancesThenSubmits(t *testing.T) {
	m := NewCreate(kanban.ColumnTodo).SetSize(80, 30)
	m = typeText(m, "Quick one")
	m, _ = send(m, tea.KeyTab)
	m, _ = send(m, tea.KeyTab)

	_, cmd := send(m, tea.KeyEnter)
	msg, ok := cmd().(SubmitMsg)
	require.True(t, ok)
	require.Equal(t, []string{}, msg.Create.Labels)
}

func TestEdit_SendsOnlyChangedFields(t *testing.T) {
	issue := testutil.NewIssue(4, testutil.Title("Dark mode"), testutil.Labels("In Progress", "frontend"))
	m := NewEdit(issue).SetSize(80, 30)
	require.True(t, m.Editing())
	require.Contains(t, ansi.Strip(m.View()), "Edit #4")

	m = typeText(m, "!")
	_, cmd := send(m, tea.KeyCtrlS)
	msg, ok := cmd().(SubmitMsg)
	require.True(t, ok)
	require.Equal(t, 4, msg.IID)
	require.NotNil(t, msg.Edit.Title)
	require.Equal(t, "Dark mode!", *msg.Edit.Title)
	require.Nil(t, msg.Edit.Description)
	require.Nil(t, msg.Edit.Labels)
}

func TestEdit_LabelChangeKeepsColumnMarker(t *testing.T) {
	issue := testutil.NewIssue(4, testutil.Title("Dark mode"), testutil.Labels("In Progress", "frontend"))
	m := NewEdit(issue).SetSize(80, 30)

	m, _ = send(m, tea.KeyShiftTab)
	m = typeText(m, ", ux")
	_, cmd := send(m, tea.KeyCtrlS)

	msg := cmd().(SubmitMsg)
	require.Equal(t, []string{"frontend", "ux", "In Progress"}, msg.Edit.Labels)
	require.Nil(t, msg.Edit.Title)
}

func TestEdit_NoChangesCancels(t *testing.T) {
	m := NewEdit(testutil.NewIssue(1, testutil.Title("Same"))).SetSize(80, 30)
	_, cmd := send(m, tea.KeyCtrlS)
	require.Equal(t, CancelMsg{}, cmd())
}

func TestEdit_DescriptionDiffHint(t *testing.T) {
	issue := testutil.NewIssue(2, testutil.Title("Docs"), testutil.Description("abc"))
	m := NewEdit(issue).SetSize(80, 30)

	m, _ = send(m, tea.KeyTab)
	m = typeText(m, "de")
	require.Contains(t, ansi.Strip(m.View()), "+2 -0")
}

func TestEscCancels(t *testing.T) {
	m := NewCreate(kanban.ColumnTodo)
	_, cmd := send(m, tea.KeyEsc)
	require.Equal(t, CancelMsg{}, cmd())
}

func TestTitleCounterCountsGraphemes(t *testing.T) {
	m := NewCreate(kanban.ColumnTodo).SetSize(80, 30)
	m = typeText(m, "héllo")
	require.Contains(t, ansi.Strip(m.View()), "5/255")
}
