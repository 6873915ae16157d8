package kanban

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/glboard/internal/testutil"
)

func TestApplyOrder(t *testing.T) {
	issues := testutil.NewBuilder().WithIssue(4).WithIssue(3).WithIssue(2).WithIssue(1).Issues()

	got := ApplyOrder(issues, []int{1, 9, 3, 2})
	// 4 is unknown to the saved order so it leads; 9 no longer exists.
	require.Equal(t, []int{4, 1, 3, 2}, IIDs(got))

	require.Equal(t, IIDs(issues), IIDs(ApplyOrder(issues, nil)))
}

func TestMoveBeside(t *testing.T) {
	issues := testutil.NewBuilder().WithIssue(1).WithIssue(2).WithIssue(3).Issues()

	out, ok := MoveBeside(issues, 3, 1)
	require.True(t, ok)
	require.Equal(t, []int{3, 1, 2}, IIDs(out))

	out, ok = MoveBeside(issues, 1, 2)
	require.True(t, ok)
	require.Equal(t, []int{2, 1, 3}, IIDs(out))

	_, ok = MoveBeside(issues, 1, 1)
	require.False(t, ok)
	_, ok = MoveBeside(issues, 1, 42)
	require.False(t, ok)
	require.Equal(t, []int{1, 2, 3}, IIDs(issues))
}

func TestQuery_Apply(t *testing.T) {
	day := 24 * time.Hour
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	issues := testutil.NewBuilder().
		WithIssue(1, testutil.Title("beta"), testutil.CreatedAt(base), testutil.UpdatedAt(base.Add(3*day))).
		WithIssue(2, testutil.Title("Alpha"), testutil.Labels("Frontend"), testutil.CreatedAt(base.Add(day)), testutil.UpdatedAt(base.Add(day))).
		WithIssue(3, testutil.Title("gamma"), testutil.Description("touches the frontend"), testutil.Closed(),
			testutil.CreatedAt(base.Add(2*day)), testutil.UpdatedAt(base.Add(2*day))).
		Issues()

	tests := []struct {
		name  string
		query Query
		want  []int
	}{
		{"manual keeps order", Query{}, []int{1, 2, 3}},
		{"search title", Query{Search: "ALP"}, []int{2}},
		{"search labels and description", Query{Search: "frontend"}, []int{2, 3}},
		{"open only", Query{Status: StatusOpen}, []int{1, 2}},
		{"closed only", Query{Status: StatusClosed}, []int{3}},
		{"newest", Query{Sort: SortCreatedDesc}, []int{3, 2, 1}},
		{"oldest", Query{Sort: SortCreatedAsc}, []int{1, 2, 3}},
		{"recently updated", Query{Sort: SortUpdatedDesc}, []int{1, 3, 2}},
		{"least recently updated", Query{Sort: SortUpdatedAsc}, []int{2, 3, 1}},
		{"title a-z", Query{Sort: SortTitleAsc}, []int{2, 1, 3}},
		{"title z-a", Query{Sort: SortTitleDesc}, []int{3, 1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, IIDs(tt.query.Apply(issues)))
			require.Equal(t, []int{1, 2, 3}, IIDs(issues), "input untouched")
		})
	}
}

func TestSortModeAndFilterCycle(t *testing.T) {
	m := SortManual
	for i := 0; i < int(sortModeCount); i++ {
		m = m.Next()
	}
	require.Equal(t, SortManual, m)
	require.Equal(t, "manual", SortManual.String())

	require.Equal(t, StatusOpen, StatusAll.Next())
	require.Equal(t, StatusClosed, StatusOpen.Next())
	require.Equal(t, StatusAll, StatusClosed.Next())
}
