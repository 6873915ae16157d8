package kanban

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/glboard/internal/gitlab"
	"github.com/zjrosen/glboard/internal/mocks"
	"github.com/zjrosen/glboard/internal/pubsub"
	"github.com/zjrosen/glboard/internal/testutil"
)

const projectID = 1

var errServer = &gitlab.HTTPError{StatusCode: 500, StatusText: "Internal Server Error"}

type harness struct {
	store  *Store
	seq    *Sequencer
	gw     *testutil.FakeGateway
	events <-chan pubsub.Event[Outcome]
}

func newHarness(t *testing.T, b *testutil.Builder) *harness {
	t.Helper()
	store := NewStore()
	store.Replace(b.Issues())
	broker := pubsub.NewBroker[Outcome]()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return &harness{
		store:  store,
		seq:    NewSequencer(projectID, store, broker, nil),
		gw:     b.Gateway(projectID),
		events: broker.Subscribe(ctx),
	}
}

// run executes job against the fake and settles it, returning the next job.
func (h *harness) run(job *Job) *Job {
	return h.seq.Settle(h.seq.Execute(context.Background(), h.gw, job))
}

func (h *harness) next(t *testing.T) pubsub.Event[Outcome] {
	t.Helper()
	select {
	case evt := <-h.events:
		return evt
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for outcome")
		return pubsub.Event[Outcome]{}
	}
}

func TestSequencer_DragIsOptimistic(t *testing.T) {
	h := newHarness(t, testutil.NewBuilder().WithIssue(1).WithIssue(5, testutil.Labels("bug")))

	job, err := h.seq.Submit(DragOp(5, OnColumn(ColumnDoing)))
	require.NoError(t, err)
	require.NotNil(t, job)
	require.True(t, job.Optimistic())

	// The store moved before GitLab was asked.
	moved, _ := h.store.Get(5)
	require.Equal(t, ColumnDoing, Classify(moved))
	require.Empty(t, h.gw.Calls())
	require.True(t, h.seq.Busy())
	require.True(t, h.seq.Waiting(5))

	require.Nil(t, h.run(job))

	calls := h.gw.Calls()
	require.Len(t, calls, 1)
	require.Equal(t, 5, calls[0].IID)
	require.Equal(t, []string{"bug", "doing"}, calls[0].Update.Labels)

	evt := h.next(t)
	require.Equal(t, pubsub.UpdatedEvent, evt.Type)
	require.False(t, evt.Payload.RolledBack)
	require.Equal(t, []int{1, 5}, evt.Payload.Order)
	require.False(t, h.seq.Busy())
}

func TestSequencer_DragFailureRestoresSnapshot(t *testing.T) {
	h := newHarness(t, testutil.NewBuilder().WithStandardBoard())
	before := h.store.Snapshot()
	h.gw.FailNext("UpdateIssue", errServer)

	job, err := h.seq.Submit(DragOp(7, OnColumn(ColumnDoing)))
	require.NoError(t, err)
	require.NotEqual(t, before, h.store.Issues())

	require.Nil(t, h.run(job))
	require.Equal(t, before, h.store.Issues())

	evt := h.next(t)
	require.Equal(t, pubsub.FailedEvent, evt.Type)
	require.True(t, evt.Payload.RolledBack)
	require.EqualError(t, evt.Payload.Err, "HTTP 500: Internal Server Error")
}

func TestSequencer_RollbackRestoresExactList(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		issues := testutil.DrawIssues(rt, 10)
		if len(issues) == 0 {
			return
		}
		dragged := rapid.SampledFrom(issues).Draw(rt, "dragged").IID
		col := rapid.SampledFrom(Columns).Draw(rt, "column")

		store := NewStore()
		store.Replace(issues)
		before := store.Snapshot()
		seq := NewSequencer(projectID, store, nil, nil)

		gw := &mocks.Gateway{}
		gw.On("UpdateIssue", mock.Anything, projectID, dragged, mock.Anything).Return(gitlab.Issue{}, errServer)

		job, err := seq.Submit(DragOp(dragged, OnColumn(col)))
		require.NoError(t, err)
		if job == nil {
			require.Equal(t, before, store.Issues())
			return
		}
		seq.Settle(seq.Execute(context.Background(), gw, job))
		require.Equal(t, before, store.Issues())
	})
}

func TestSequencer_SameColumnReorderIsLocal(t *testing.T) {
	h := newHarness(t, testutil.NewBuilder().WithIssue(1).WithIssue(2))

	job, err := h.seq.Submit(DragOp(2, OnIssue(1)))
	require.NoError(t, err)
	require.Nil(t, job)
	require.Equal(t, []int{2, 1}, h.store.Order())
	require.Empty(t, h.gw.Calls())

	evt := h.next(t)
	require.True(t, evt.Payload.Local)
	require.Equal(t, []int{2, 1}, evt.Payload.Order)
}

func TestSequencer_ListReorderIsLocal(t *testing.T) {
	h := newHarness(t, testutil.NewBuilder().WithIssue(1).WithIssue(2).WithIssue(3))

	job, err := h.seq.Submit(ReorderOp(3, 1))
	require.NoError(t, err)
	require.Nil(t, job)
	require.Equal(t, []int{3, 1, 2}, h.store.Order())

	evt := h.next(t)
	require.Equal(t, OpReorder, evt.Payload.Op.Kind)
	require.Equal(t, []int{3, 1, 2}, evt.Payload.Order)
}

// Menu moves wait for GitLab; drags do not. The asymmetry is intended.
func TestSequencer_MenuMoveIsNotOptimistic(t *testing.T) {
	h := newHarness(t, testutil.NewBuilder().WithIssue(1, testutil.Labels("bug")).WithIssue(2))

	job, err := h.seq.Submit(MoveOp(1, ColumnReview))
	require.NoError(t, err)
	require.NotNil(t, job)
	require.False(t, job.Optimistic())

	unchanged, _ := h.store.Get(1)
	require.Equal(t, ColumnTodo, Classify(unchanged))

	h.run(job)
	moved, _ := h.store.Get(1)
	require.Equal(t, ColumnReview, Classify(moved))
	require.Equal(t, []string{"bug", "review"}, moved.Labels)
	require.Equal(t, []int{1, 2}, h.store.Order(), "no positional splice")
}

func TestSequencer_MenuMoveFailureLeavesStore(t *testing.T) {
	h := newHarness(t, testutil.NewBuilder().WithIssue(1).WithIssue(2))
	before := h.store.Snapshot()
	h.gw.FailNext("UpdateIssue", errServer)

	job, err := h.seq.Submit(MoveOp(2, ColumnDoing))
	require.NoError(t, err)
	h.run(job)

	require.Equal(t, before, h.store.Issues())
	evt := h.next(t)
	require.Equal(t, pubsub.FailedEvent, evt.Type)
	require.False(t, evt.Payload.RolledBack)
}

func TestSequencer_Reopen(t *testing.T) {
	h := newHarness(t, testutil.NewBuilder().WithIssue(7, testutil.Labels("review"), testutil.Closed()))

	job, err := h.seq.Submit(ReopenOp(7))
	require.NoError(t, err)
	require.NotNil(t, job)
	h.run(job)

	call := h.gw.Calls()[0]
	require.Equal(t, gitlab.StateEventReopen, call.Update.StateEvent)
	require.Nil(t, call.Update.Labels)

	reopened, _ := h.store.Get(7)
	require.Equal(t, ColumnReview, Classify(reopened))

	// Reopening an open issue does nothing.
	job, err = h.seq.Submit(ReopenOp(7))
	require.NoError(t, err)
	require.Nil(t, job)
}

func TestSequencer_CreateValidatesTitle(t *testing.T) {
	h := newHarness(t, testutil.NewBuilder().WithIssue(1))

	_, err := h.seq.Submit(CreateOp(gitlab.CreateIssueOptions{Title: "   "}))
	require.ErrorIs(t, err, ErrEmptyTitle)
	require.False(t, h.seq.Busy())

	blank := ""
	_, err = h.seq.Submit(EditOp(1, gitlab.UpdateIssueOptions{Title: &blank}))
	require.ErrorIs(t, err, ErrEmptyTitle)
	require.Empty(t, h.gw.Calls())
}

func TestSequencer_CreatePrepends(t *testing.T) {
	h := newHarness(t, testutil.NewBuilder().WithIssue(1).WithIssue(2))

	job, err := h.seq.Submit(CreateOp(gitlab.CreateIssueOptions{Title: "New", Labels: []string{"doing"}}))
	require.NoError(t, err)
	h.run(job)

	require.Equal(t, []int{3, 1, 2}, h.store.Order())
	created, _ := h.store.Get(3)
	require.Equal(t, ColumnDoing, Classify(created))
}

func TestSequencer_EditUpdatesByIID(t *testing.T) {
	h := newHarness(t, testutil.NewBuilder().WithIssue(1).WithIssue(2))

	title := "Renamed"
	job, err := h.seq.Submit(EditOp(2, gitlab.UpdateIssueOptions{Title: &title}))
	require.NoError(t, err)
	h.run(job)

	got, _ := h.store.Get(2)
	require.Equal(t, "Renamed", got.Title)
	require.Equal(t, []int{1, 2}, h.store.Order())

	evt := h.next(t)
	require.Equal(t, "Issue 2", evt.Payload.Before.Title)
	require.Equal(t, "Renamed", evt.Payload.Issue.Title)
}

func TestSequencer_DeleteClosesThenRemoves(t *testing.T) {
	h := newHarness(t, testutil.NewBuilder().WithIssue(1).WithIssue(2))

	job, err := h.seq.Submit(DeleteOp(1))
	require.NoError(t, err)
	_, stillThere := h.store.Get(1)
	require.True(t, stillThere)

	h.run(job)
	require.Equal(t, []int{2}, h.store.Order())
	require.Equal(t, gitlab.StateEventClose, h.gw.Calls()[0].Update.StateEvent)

	closed, _ := h.gw.Issue(projectID, 1)
	require.True(t, closed.Closed())
}

func TestSequencer_UnknownIssuePublishesFailure(t *testing.T) {
	h := newHarness(t, testutil.NewBuilder().WithIssue(1))

	job, err := h.seq.Submit(MoveOp(42, ColumnDoing))
	require.NoError(t, err)
	require.Nil(t, job)

	evt := h.next(t)
	require.Equal(t, pubsub.FailedEvent, evt.Type)
	require.ErrorIs(t, evt.Payload.Err, ErrUnknownIssue)
}

func TestSequencer_QueuesWhileInFlight(t *testing.T) {
	h := newHarness(t, testutil.NewBuilder().
		WithIssue(1, testutil.Labels("bug")).
		WithIssue(2).
		WithIssue(3, testutil.Labels("doing")))

	first, err := h.seq.Submit(DragOp(1, OnColumn(ColumnDoing)))
	require.NoError(t, err)
	require.NotNil(t, first)
	afterFirst := h.store.Snapshot()

	second, err := h.seq.Submit(DragOp(2, OnColumn(ColumnReview)))
	require.NoError(t, err)
	require.Nil(t, second, "queued behind the in-flight drag")
	require.Equal(t, 1, h.seq.Pending())
	require.True(t, h.seq.Waiting(2))
	require.Equal(t, afterFirst, h.store.Issues(), "queued drag not applied yet")

	// The first commit fails: its rollback restores the list from before
	// the first drag, and only then is the second drag applied.
	h.gw.FailNext("UpdateIssue", errServer)
	second = h.run(first)
	require.NotNil(t, second)

	one, _ := h.store.Get(1)
	require.Equal(t, ColumnTodo, Classify(one), "first drag rolled back")
	two, _ := h.store.Get(2)
	require.Equal(t, ColumnReview, Classify(two), "second drag applied on the restored list")
	require.Equal(t, []int{1, 3, 2}, h.store.Order())

	require.Nil(t, h.run(second))
	require.False(t, h.seq.Busy())
	two, _ = h.store.Get(2)
	require.Equal(t, []string{"review"}, two.Labels)
}

func TestSequencer_StaleOutcomeIgnored(t *testing.T) {
	h := newHarness(t, testutil.NewBuilder().WithIssue(1))

	job, err := h.seq.Submit(MoveOp(1, ColumnDoing))
	require.NoError(t, err)

	require.Nil(t, h.seq.Settle(Outcome{JobID: "not-this-one", Err: errors.New("x")}))
	require.Same(t, job, h.seq.InFlight())
}

func TestSequencer_Abandon(t *testing.T) {
	h := newHarness(t, testutil.NewBuilder().WithIssue(1).WithIssue(2))

	job, _ := h.seq.Submit(MoveOp(1, ColumnDoing))
	_, _ = h.seq.Submit(MoveOp(2, ColumnDoing))
	require.Equal(t, 1, h.seq.Abandon())

	require.Nil(t, h.run(job))
	require.False(t, h.seq.Busy())
}
