package kanban

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/glboard/internal/gitlab"
	"github.com/zjrosen/glboard/internal/testutil"
)

func TestStore_AddPrepends(t *testing.T) {
	s := NewStore()
	s.Replace(testutil.NewBuilder().WithIssue(1).WithIssue(2).Issues())

	s.Add(testutil.NewIssue(3))
	require.Equal(t, []int{3, 1, 2}, s.Order())
}

func TestStore_AddExistingMovesToFront(t *testing.T) {
	s := NewStore()
	s.Replace(testutil.NewBuilder().WithIssue(1).WithIssue(2).Issues())

	s.Add(testutil.NewIssue(2, testutil.Title("updated")))
	require.Equal(t, []int{2, 1}, s.Order())

	got, ok := s.Get(2)
	require.True(t, ok)
	require.Equal(t, "updated", got.Title)
}

func TestStore_UpdateReplacesInPlace(t *testing.T) {
	s := NewStore()
	s.Replace(testutil.NewBuilder().WithIssue(1).WithIssue(2).WithIssue(3).Issues())

	require.True(t, s.Update(testutil.NewIssue(2, testutil.Labels("doing"))))
	require.Equal(t, []int{1, 2, 3}, s.Order())
	got, _ := s.Get(2)
	require.Equal(t, []string{"doing"}, got.Labels)

	require.False(t, s.Update(testutil.NewIssue(9)))
	require.Equal(t, 3, s.Len())
}

func TestStore_Remove(t *testing.T) {
	s := NewStore()
	s.Replace(testutil.NewBuilder().WithIssue(1).WithIssue(2).Issues())

	require.True(t, s.Remove(1))
	require.False(t, s.Remove(1))
	require.Equal(t, []int{2}, s.Order())
}

func TestStore_ReplaceDropsDuplicates(t *testing.T) {
	s := NewStore()
	s.Replace([]gitlab.Issue{
		testutil.NewIssue(1, testutil.Title("first")),
		testutil.NewIssue(2),
		testutil.NewIssue(1, testutil.Title("second")),
	})

	require.Equal(t, []int{1, 2}, s.Order())
	got, _ := s.Get(1)
	require.Equal(t, "first", got.Title)
}

func TestStore_IssuesSurviveLaterWrites(t *testing.T) {
	s := NewStore()
	s.Replace(testutil.NewBuilder().WithIssue(1).WithIssue(2).Issues())

	held := s.Issues()
	s.Update(testutil.NewIssue(1, testutil.Title("changed")))
	s.Remove(2)

	require.Equal(t, []int{1, 2}, IIDs(held))
	require.Equal(t, "Issue 1", held[0].Title)
}

func TestStore_Flags(t *testing.T) {
	s := NewStore()
	require.Equal(t, ViewKanban, s.View())
	require.Equal(t, ViewList, s.ToggleView())
	require.Equal(t, ViewKanban, s.ToggleView())

	s.SetView("bogus")
	require.Equal(t, ViewKanban, s.View())

	s.SetLoading(true)
	require.True(t, s.Loading())

	s.SetErr(errors.New("HTTP 500: Internal Server Error"))
	require.Error(t, s.Err())
	s.ClearErr()
	require.NoError(t, s.Err())
}

func TestStore_IIDsStayUnique(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := NewStore()
		s.Replace(testutil.DrawIssues(rt, 8))

		steps := rapid.IntRange(0, 30).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			iid := rapid.IntRange(1, 20).Draw(rt, "iid")
			switch rapid.IntRange(0, 2).Draw(rt, "op") {
			case 0:
				s.Add(testutil.NewIssue(iid))
			case 1:
				s.Update(testutil.NewIssue(iid))
			case 2:
				s.Remove(iid)
			}

			seen := map[int]bool{}
			for _, id := range s.Order() {
				require.False(t, seen[id], "duplicate iid %d", id)
				seen[id] = true
			}
		}
	})
}
