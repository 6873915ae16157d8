package kanban

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/glboard/internal/gitlab"
	"github.com/zjrosen/glboard/internal/log"
	"github.com/zjrosen/glboard/internal/pubsub"
	"github.com/zjrosen/glboard/internal/tracing"
)

var (
	// ErrEmptyTitle rejects a create or edit whose title is blank.
	ErrEmptyTitle = errors.New("title is required")
	// ErrUnknownIssue is returned when an operation names an iid the store
	// does not hold.
	ErrUnknownIssue = errors.New("issue not found on the board")
)

// OpKind names a board operation.
type OpKind string

const (
	OpDrag    OpKind = "drag"
	OpReorder OpKind = "reorder"
	OpMove    OpKind = "move"
	OpReopen  OpKind = "reopen"
	OpCreate  OpKind = "create"
	OpEdit    OpKind = "edit"
	OpDelete  OpKind = "delete"
)

// Op is a user action on the open project. Build one with the constructors.
type Op struct {
	Kind    OpKind
	IID     int
	Target  DropTarget
	OverIID int
	To      Column
	Create  gitlab.CreateIssueOptions
	Edit    gitlab.UpdateIssueOptions
}

// DragOp is a drag of iid released on target. Cross-column drags are applied
// to the store before the server is asked.
func DragOp(iid int, target DropTarget) Op { return Op{Kind: OpDrag, IID: iid, Target: target} }

// ReorderOp moves iid to overIID's position without touching the server.
func ReorderOp(iid, overIID int) Op { return Op{Kind: OpReorder, IID: iid, OverIID: overIID} }

// MoveOp moves iid to column to. The store changes only after the server
// accepts it.
func MoveOp(iid int, to Column) Op { return Op{Kind: OpMove, IID: iid, To: to} }

// ReopenOp reopens a closed issue, leaving its labels alone.
func ReopenOp(iid int) Op { return Op{Kind: OpReopen, IID: iid} }

// CreateOp opens a new issue.
func CreateOp(opts gitlab.CreateIssueOptions) Op { return Op{Kind: OpCreate, Create: opts} }

// EditOp updates title, description or labels of iid.
func EditOp(iid int, opts gitlab.UpdateIssueOptions) Op { return Op{Kind: OpEdit, IID: iid, Edit: opts} }

// DeleteOp closes iid on the server and drops it from the board.
func DeleteOp(iid int) Op { return Op{Kind: OpDelete, IID: iid} }

// Validate rejects operations that must never reach the server.
func (op Op) Validate() error {
	switch op.Kind {
	case OpCreate:
		if strings.TrimSpace(op.Create.Title) == "" {
			return ErrEmptyTitle
		}
	case OpEdit:
		if op.Edit.Title != nil && strings.TrimSpace(*op.Edit.Title) == "" {
			return ErrEmptyTitle
		}
	case OpDrag, OpReorder, OpMove, OpReopen, OpDelete:
	default:
		return fmt.Errorf("unknown operation %q", op.Kind)
	}
	return nil
}

// Job is a prepared operation waiting on GitLab.
type Job struct {
	ID        string
	ProjectID int
	Op        Op
	// Before is the issue as it was when the job was prepared (zero for create).
	Before   gitlab.Issue
	Mutation *Mutation
	// Snapshot is the full list before an optimistic apply. Nil when the
	// store is only updated after the server confirms.
	Snapshot []gitlab.Issue

	update gitlab.UpdateIssueOptions
}

// Optimistic reports whether the store already reflects this job.
func (j *Job) Optimistic() bool {
	return j.Snapshot != nil
}

// Outcome is a settled operation, published to subscribers once the store
// reflects it.
type Outcome struct {
	JobID     string
	ProjectID int
	Op        Op
	Before    gitlab.Issue
	Issue     gitlab.Issue
	Mutation  *Mutation
	Err       error
	// RolledBack is set when an optimistic change was undone.
	RolledBack bool
	// Local is set when nothing was sent to GitLab.
	Local bool
	// Order is the board's iid order after a successful drag or reorder.
	Order []int
	At    time.Time
}

type queued struct {
	id string
	op Op
}

// Sequencer serializes every store-changing operation of one project. While
// a job is in flight later operations wait in FIFO order and are prepared
// against the store only when they reach the head, so a rollback always
// restores the list as it was right before its own change.
//
// Submit and Settle must be called from the goroutine that owns the store;
// Execute may run anywhere.
type Sequencer struct {
	projectID int
	store     *Store
	broker    *pubsub.Broker[Outcome]
	tracer    trace.Tracer
	now       func() time.Time

	inflight *Job
	queue    []queued
}

// NewSequencer binds a sequencer to the store of projectID. Outcomes are
// published on broker when it is non-nil.
func NewSequencer(projectID int, store *Store, broker *pubsub.Broker[Outcome], tracer trace.Tracer) *Sequencer {
	return &Sequencer{
		projectID: projectID,
		store:     store,
		broker:    broker,
		tracer:    tracer,
		now:       time.Now,
	}
}

// ProjectID is the project this sequencer commits to.
func (s *Sequencer) ProjectID() int { return s.projectID }

// Busy reports whether a job is in flight or queued.
func (s *Sequencer) Busy() bool {
	return s.inflight != nil || len(s.queue) > 0
}

// Pending is the number of queued operations, not counting the one in flight.
func (s *Sequencer) Pending() int {
	return len(s.queue)
}

// InFlight returns the job awaiting GitLab, if any.
func (s *Sequencer) InFlight() *Job {
	return s.inflight
}

// Waiting reports whether iid is touched by the in-flight or a queued job.
func (s *Sequencer) Waiting(iid int) bool {
	if s.inflight != nil && s.inflight.Op.IID == iid && iid != 0 {
		return true
	}
	for _, q := range s.queue {
		if q.op.IID == iid && iid != 0 {
			return true
		}
	}
	return false
}

// Submit validates op and queues it. When nothing is in flight the queue is
// drained right away: local operations settle immediately and the first
// operation that needs GitLab is returned for the caller to Execute. A nil
// job means there is nothing to run now.
func (s *Sequencer) Submit(op Op) (*Job, error) {
	if err := op.Validate(); err != nil {
		return nil, err
	}
	id := uuid.NewString()
	s.queue = append(s.queue, queued{id: id, op: op})
	log.Debug(log.CatDrag, "operation submitted", "id", id, "kind", op.Kind, "iid", op.IID,
		"queued", len(s.queue), "inflight", s.inflight != nil)

	if s.inflight != nil {
		return nil, nil
	}
	return s.advance(), nil
}

// advance prepares queued operations until one needs GitLab.
func (s *Sequencer) advance() *Job {
	for len(s.queue) > 0 {
		next := s.queue[0]
		s.queue = s.queue[1:]
		if job := s.prepare(next.id, next.op); job != nil {
			s.inflight = job
			return job
		}
	}
	return nil
}

// prepare resolves op against the current store. Operations that need no
// server call are settled here and yield nil.
func (s *Sequencer) prepare(id string, op Op) *Job {
	job := &Job{ID: id, ProjectID: s.projectID, Op: op}

	if op.Kind == OpCreate {
		return job
	}

	before, ok := s.store.Get(op.IID)
	if !ok {
		s.settleLocal(job, ErrUnknownIssue)
		return nil
	}
	job.Before = before

	switch op.Kind {
	case OpDrag:
		result := Reconcile(s.store.Issues(), op.IID, op.Target)
		if !result.Changed {
			log.Debug(log.CatDrag, "drop ignored", "iid", op.IID, "target", op.Target)
			return nil
		}
		if result.Mutation == nil {
			s.store.Replace(result.Issues)
			s.settleLocal(job, nil)
			return nil
		}
		job.Snapshot = s.store.Snapshot()
		job.Mutation = result.Mutation
		job.update = result.Mutation.Options()
		s.store.Replace(result.Issues)
		log.Info(log.CatDrag, "optimistic move applied", "iid", op.IID,
			"from", result.Mutation.From, "to", result.Mutation.To)
		return job

	case OpReorder:
		reordered, moved := MoveBeside(s.store.Issues(), op.IID, op.OverIID)
		if moved {
			s.store.Replace(reordered)
			s.settleLocal(job, nil)
		}
		return nil

	case OpMove:
		m, ok := MoveMutation(before, op.To)
		if !ok {
			return nil
		}
		job.Mutation = &m
		job.update = m.Options()
		return job

	case OpReopen:
		if !before.Closed() {
			return nil
		}
		reopened := before.Clone()
		reopened.State = gitlab.StateOpened
		job.Mutation = &Mutation{IID: op.IID, From: ColumnDone, To: Classify(reopened), StateEvent: gitlab.StateEventReopen}
		job.update = gitlab.UpdateIssueOptions{StateEvent: gitlab.StateEventReopen}
		return job

	case OpEdit:
		if op.Edit.IsZero() {
			return nil
		}
		job.update = op.Edit
		return job

	case OpDelete:
		job.update = gitlab.UpdateIssueOptions{StateEvent: gitlab.StateEventClose}
		return job
	}
	return nil
}

// Execute performs job's GitLab call. It does not touch the store and is
// safe to run off the event loop.
func (s *Sequencer) Execute(ctx context.Context, gw gitlab.Gateway, job *Job) Outcome {
	attrs := []attribute.KeyValue{
		attribute.String(tracing.AttrOpID, job.ID),
		attribute.String(tracing.AttrOpKind, string(job.Op.Kind)),
		attribute.Int(tracing.AttrProjectID, job.ProjectID),
		attribute.Int(tracing.AttrIssueIID, job.Op.IID),
	}
	if m := job.Mutation; m != nil {
		attrs = append(attrs,
			attribute.String(tracing.AttrFromColumn, string(m.From)),
			attribute.String(tracing.AttrToColumn, string(m.To)),
			attribute.String(tracing.AttrStateEvent, string(m.StateEvent)),
			attribute.StringSlice(tracing.AttrLabels, m.Labels),
		)
	}
	ctx, span := tracing.Start(ctx, s.tracer, tracing.SpanCommit, trace.SpanKindInternal, attrs...)
	if job.Optimistic() {
		span.AddEvent(tracing.EventOptimisticApplied)
	}

	var (
		issue gitlab.Issue
		err   error
	)
	if job.Op.Kind == OpCreate {
		issue, err = gw.CreateIssue(ctx, job.ProjectID, job.Op.Create)
	} else {
		issue, err = gw.UpdateIssue(ctx, job.ProjectID, job.Op.IID, job.update)
	}

	out := Outcome{
		JobID:     job.ID,
		ProjectID: job.ProjectID,
		Op:        job.Op,
		Before:    job.Before,
		Issue:     issue,
		Mutation:  job.Mutation,
		Err:       err,
	}
	if err != nil && job.Optimistic() {
		out.RolledBack = true
		span.AddEvent(tracing.EventRollback)
		span.SetAttributes(attribute.Bool(tracing.AttrRolledBack, true))
	}
	tracing.End(span, err)
	return out
}

// Settle applies a finished job to the store, publishes it and prepares the
// next queued operation. Outcomes that do not belong to the in-flight job are
// ignored.
func (s *Sequencer) Settle(out Outcome) *Job {
	job := s.inflight
	if job == nil || job.ID != out.JobID {
		log.Warn(log.CatDrag, "stale outcome ignored", "id", out.JobID)
		return nil
	}
	s.inflight = nil

	switch {
	case out.Err != nil && job.Optimistic():
		s.store.Replace(job.Snapshot)
		out.RolledBack = true
		log.ErrorErr(log.CatDrag, "move rolled back", out.Err, "iid", job.Op.IID)
	case out.Err != nil:
		log.ErrorErr(log.CatDrag, "operation failed", out.Err, "kind", job.Op.Kind, "iid", job.Op.IID)
	case job.Op.Kind == OpCreate:
		s.store.Add(out.Issue)
	case job.Op.Kind == OpDelete:
		s.store.Remove(job.Op.IID)
	default:
		s.store.Update(out.Issue)
	}
	if out.Err == nil && job.Op.Kind == OpDrag {
		out.Order = s.store.Order()
	}

	s.publish(out)
	return s.advance()
}

// Abandon drops every queued operation. The in-flight job, if any, still
// settles normally.
func (s *Sequencer) Abandon() int {
	n := len(s.queue)
	s.queue = nil
	return n
}

func (s *Sequencer) settleLocal(job *Job, err error) {
	out := Outcome{
		JobID:     job.ID,
		ProjectID: job.ProjectID,
		Op:        job.Op,
		Before:    job.Before,
		Issue:     job.Before,
		Err:       err,
		Local:     true,
	}
	if err == nil {
		out.Order = s.store.Order()
		if issue, ok := s.store.Get(job.Op.IID); ok {
			out.Issue = issue
		}
	}
	s.publish(out)
}

func (s *Sequencer) publish(out Outcome) {
	out.At = s.now()
	if s.broker == nil {
		return
	}
	if out.Err != nil {
		s.broker.Publish(pubsub.FailedEvent, out)
		return
	}
	s.broker.Publish(pubsub.UpdatedEvent, out)
}
