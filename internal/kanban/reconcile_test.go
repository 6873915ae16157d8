package kanban

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/glboard/internal/gitlab"
	"github.com/zjrosen/glboard/internal/testutil"
)

func TestReconcile_DropOntoEmptyDoingColumn(t *testing.T) {
	issues := testutil.NewBuilder().
		WithIssue(1).
		WithIssue(5, testutil.Labels("bug")).
		Issues()

	res := Reconcile(issues, 5, OnColumn(ColumnDoing))

	require.True(t, res.Changed)
	require.NotNil(t, res.Mutation)
	require.Equal(t, 5, res.Mutation.IID)
	require.Empty(t, res.Mutation.StateEvent)
	require.Equal(t, "bug,doing", gitlab.JoinLabels(res.Mutation.Options().Labels))
	require.Equal(t, []int{1, 5}, IIDs(res.Issues))
	require.Equal(t, ColumnDoing, Classify(res.Issues[1]))
}

func TestReconcile_EmptyColumnInsertsBeforeLaterColumns(t *testing.T) {
	issues := testutil.NewBuilder().
		WithIssue(5, testutil.Labels("bug")).
		WithIssue(1).
		WithIssue(9, testutil.Closed()).
		WithIssue(2).
		Issues()

	res := Reconcile(issues, 5, OnColumn(ColumnDoing))

	require.Equal(t, []int{1, 5, 9, 2}, IIDs(res.Issues))
}

func TestReconcile_ReopenFromDone(t *testing.T) {
	issues := testutil.NewBuilder().
		WithIssue(7, testutil.Labels("review"), testutil.Closed()).
		WithIssue(3, testutil.Labels("doing")).
		Issues()

	res := Reconcile(issues, 7, OnColumn(ColumnDoing))

	require.NotNil(t, res.Mutation)
	require.Equal(t, gitlab.StateEventReopen, res.Mutation.StateEvent)
	require.Equal(t, []string{"doing"}, res.Mutation.Labels)
	require.Equal(t, ColumnDone, res.Mutation.From)
	require.Equal(t, ColumnDoing, res.Mutation.To)

	require.Equal(t, []int{3, 7}, IIDs(res.Issues))
	moved := res.Issues[1]
	require.False(t, moved.Closed())
	require.Equal(t, []string{"doing"}, moved.Labels)
}

func TestReconcile_ReorderTodoBackward(t *testing.T) {
	issues := testutil.NewBuilder().WithIssue(1).WithIssue(2).Issues()

	res := Reconcile(issues, 2, OnIssue(1))

	require.True(t, res.Changed)
	require.Nil(t, res.Mutation)
	require.Equal(t, []int{2, 1}, IIDs(res.Issues))
}

func TestReconcile_ReorderForwardInsertsAfterTarget(t *testing.T) {
	issues := testutil.NewBuilder().WithIssue(1).WithIssue(2).WithIssue(3).Issues()

	require.Equal(t, []int{2, 3, 1}, IIDs(Reconcile(issues, 1, OnIssue(3)).Issues))
	require.Equal(t, []int{2, 1, 3}, IIDs(Reconcile(issues, 1, OnIssue(2)).Issues))
	require.Equal(t, []int{1, 3, 2}, IIDs(Reconcile(issues, 3, OnIssue(2)).Issues))
}

func TestReconcile_ReorderAcrossInterleavedList(t *testing.T) {
	issues := testutil.NewBuilder().WithStandardBoard().Issues()

	res := Reconcile(issues, 4, OnIssue(3))

	require.Nil(t, res.Mutation)
	require.Equal(t, []int{1, 4, 3, 5, 7, 2, 6, 8}, IIDs(res.Issues))
}

func TestReconcile_DropOntoIssueInOtherColumn(t *testing.T) {
	issues := testutil.NewBuilder().WithStandardBoard().Issues()

	res := Reconcile(issues, 1, OnIssue(3))

	require.NotNil(t, res.Mutation)
	require.Equal(t, ColumnDoing, res.Mutation.To)
	require.Equal(t, []string{"bug", "doing"}, res.Mutation.Labels)
	// After the last doing issue (4), not next to the drop target (3).
	require.Equal(t, []int{3, 5, 7, 2, 4, 1, 6, 8}, IIDs(res.Issues))
}

func TestReconcile_IntoDoneOnlyCloses(t *testing.T) {
	issues := testutil.NewBuilder().WithStandardBoard().Issues()

	res := Reconcile(issues, 4, OnColumn(ColumnDone))

	require.NotNil(t, res.Mutation)
	require.Equal(t, gitlab.StateEventClose, res.Mutation.StateEvent)
	require.Nil(t, res.Mutation.Labels)
	require.Nil(t, res.Mutation.Options().Labels)

	require.Equal(t, []int{1, 3, 5, 7, 2, 6, 8, 4}, IIDs(res.Issues))
	moved := res.Issues[len(res.Issues)-1]
	require.True(t, moved.Closed())
	require.Equal(t, []string{"In Progress", "frontend"}, moved.Labels)
}

func TestReconcile_MoveToTodoAddsNoMarker(t *testing.T) {
	issues := testutil.NewBuilder().WithStandardBoard().Issues()

	res := Reconcile(issues, 4, OnColumn(ColumnTodo))

	require.Equal(t, []string{"frontend"}, res.Mutation.Labels)
	require.Empty(t, res.Mutation.StateEvent)
	// After the last todo issue (2).
	require.Equal(t, []int{1, 3, 5, 7, 2, 4, 6, 8}, IIDs(res.Issues))
}

func TestReconcile_NoOps(t *testing.T) {
	issues := testutil.NewBuilder().WithStandardBoard().Issues()

	tests := []struct {
		name    string
		dragged int
		target  DropTarget
	}{
		{"onto itself", 3, OnIssue(3)},
		{"unknown dragged issue", 99, OnColumn(ColumnDoing)},
		{"unknown target issue", 3, OnIssue(99)},
		{"unknown column", 3, OnColumn("backlog")},
		{"empty target", 3, DropTarget{}},
		{"own column container", 3, OnColumn(ColumnDoing)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Reconcile(issues, tt.dragged, tt.target)
			require.False(t, res.Changed)
			require.Nil(t, res.Mutation)
			require.Equal(t, IIDs(issues), IIDs(res.Issues))
		})
	}
}

func TestMoveMutation_MenuPaths(t *testing.T) {
	m, ok := MoveMutation(testutil.NewIssue(1, testutil.Labels("bug", "Testing")), ColumnDoing)
	require.True(t, ok)
	require.Equal(t, []string{"bug", "doing"}, m.Labels)
	require.Empty(t, m.StateEvent)

	_, ok = MoveMutation(testutil.NewIssue(1, testutil.Labels("doing")), ColumnDoing)
	require.False(t, ok, "already in column")

	_, ok = MoveMutation(testutil.NewIssue(1), Column("nope"))
	require.False(t, ok)
}

func TestMutation_ApplyDoesNotAlias(t *testing.T) {
	issue := testutil.NewIssue(1, testutil.Labels("bug"))
	m, _ := MoveMutation(issue, ColumnReview)

	out := m.Apply(issue)
	out.Labels[0] = "changed"
	require.Equal(t, "bug", issue.Labels[0])
	require.Equal(t, "bug", m.Labels[0])
}

// drawDrag draws an issue list with at least one issue and a gesture on it.
func drawDrag(rt *rapid.T) ([]gitlab.Issue, int, DropTarget) {
	issues := testutil.DrawIssues(rt, 12)
	if len(issues) == 0 {
		issues = []gitlab.Issue{testutil.DrawIssue(rt, 1)}
	}
	dragged := rapid.SampledFrom(issues).Draw(rt, "dragged").IID

	var target DropTarget
	if rapid.Bool().Draw(rt, "onColumn") {
		target = OnColumn(rapid.SampledFrom(Columns).Draw(rt, "column"))
	} else {
		target = OnIssue(rapid.SampledFrom(issues).Draw(rt, "over").IID)
	}
	return issues, dragged, target
}

func TestReconcile_Properties(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		issues, dragged, target := drawDrag(rt)
		before := make([]gitlab.Issue, len(issues))
		for i, issue := range issues {
			before[i] = issue.Clone()
		}
		original, _ := func() (gitlab.Issue, bool) {
			for _, issue := range issues {
				if issue.IID == dragged {
					return issue, true
				}
			}
			return gitlab.Issue{}, false
		}()

		res := Reconcile(issues, dragged, target)

		// The input is never modified.
		require.Equal(t, before, issues)

		// The iid set is preserved and stays unique.
		require.ElementsMatch(t, IIDs(issues), IIDs(res.Issues))

		if !res.Changed {
			require.Nil(t, res.Mutation)
			return
		}

		if res.Mutation == nil {
			// Reorder: every issue keeps its content and every issue other
			// than the dragged one keeps its relative order.
			require.Equal(t, othersInOrder(issues, dragged), othersInOrder(res.Issues, dragged))
			return
		}

		m := res.Mutation
		require.NotEqual(t, m.From, m.To)
		movedAt := indexOf(res.Issues, dragged)
		moved := res.Issues[movedAt]
		require.Equal(t, m.To, Classify(moved))
		require.Equal(t, othersInOrder(issues, dragged), othersInOrder(res.Issues, dragged))

		switch {
		case m.To == ColumnDone:
			require.Equal(t, gitlab.StateEventClose, m.StateEvent)
			require.Nil(t, m.Labels)
			require.Equal(t, original.Labels, moved.Labels)
		case m.From == ColumnDone:
			require.Equal(t, gitlab.StateEventReopen, m.StateEvent)
		default:
			require.Empty(t, m.StateEvent)
		}

		if m.Labels != nil {
			markers := 0
			for _, label := range m.Labels {
				if IsMarker(label) {
					markers++
					require.Contains(t, []string{"doing", "review"}, label)
				}
			}
			if m.To == ColumnTodo {
				require.Zero(t, markers)
			} else {
				require.Equal(t, 1, markers)
			}
			require.Equal(t, StripMarkers(original.Labels), StripMarkers(m.Labels))
		}

		// Placement: after every other issue of the target column, or when
		// it was alone there, after every issue of an earlier column only.
		for i, issue := range res.Issues {
			if issue.IID == dragged {
				continue
			}
			col := Classify(issue)
			if col == m.To {
				require.Less(t, i, movedAt)
			}
		}
		if len(Split(res.Issues)[m.To]) == 1 {
			for i := 0; i < movedAt; i++ {
				require.Less(t, Classify(res.Issues[i]).Precedence(), m.To.Precedence())
			}
			if movedAt+1 < len(res.Issues) {
				require.Greater(t, Classify(res.Issues[movedAt+1]).Precedence(), m.To.Precedence())
			}
		}
	})
}

func TestReconcile_SameColumnPreservesOtherColumns(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		issues, dragged, target := drawDrag(rt)
		if target.IssueIID == 0 {
			return
		}
		src := Classify(issues[indexOf(issues, dragged)])
		if Classify(issues[indexOf(issues, target.IssueIID)]) != src {
			return
		}

		res := Reconcile(issues, dragged, target)
		require.Nil(t, res.Mutation)

		outside := func(list []gitlab.Issue) []int {
			var out []int
			for _, issue := range list {
				if Classify(issue) != src {
					out = append(out, issue.IID)
				}
			}
			return out
		}
		require.Equal(t, outside(issues), outside(res.Issues))
		if target.IssueIID == dragged {
			require.False(t, res.Changed)
		}
	})
}

func TestReconcile_DropOntoSelfIsNoop(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		issues, dragged, _ := drawDrag(rt)
		res := Reconcile(issues, dragged, OnIssue(dragged))
		require.False(t, res.Changed)
		require.Equal(t, issues, res.Issues)
	})
}

func othersInOrder(issues []gitlab.Issue, skip int) []string {
	var out []string
	for _, issue := range issues {
		if issue.IID != skip {
			out = append(out, issue.Title+"|"+strings.Join(issue.Labels, ",")+"|"+string(issue.State))
		}
	}
	return out
}
