package journal

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/zjrosen/glboard/internal/gitlab"
	"github.com/zjrosen/glboard/internal/kanban"
	"github.com/zjrosen/glboard/internal/log"
	"github.com/zjrosen/glboard/internal/pubsub"
)

// Recorder turns sequencer outcomes into journal entries.
type Recorder struct {
	repo      Repository
	saveOrder bool
	lost      atomic.Uint64
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithOrder controls whether successful reorders persist the board order.
func WithOrder(enabled bool) RecorderOption {
	return func(r *Recorder) { r.saveOrder = enabled }
}

// NewRecorder returns a Recorder writing to repo. Order saving is on by default.
func NewRecorder(repo Repository, opts ...RecorderOption) *Recorder {
	r := &Recorder{repo: repo, saveOrder: true}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// dropCounter is implemented by brokers that count skipped deliveries.
type dropCounter interface {
	Dropped() uint64
}

// Run records every outcome published on sub until ctx is cancelled. When sub
// counts dropped deliveries, any increase is logged as journal loss.
func (r *Recorder) Run(ctx context.Context, sub pubsub.Subscriber[kanban.Outcome]) {
	counter, _ := sub.(dropCounter)
	pubsub.Consume(ctx, sub, func(evt pubsub.Event[kanban.Outcome]) {
		if counter != nil {
			r.noteDropped(counter.Dropped())
		}
		if err := r.Record(ctx, evt.Payload); err != nil {
			log.ErrorErr(log.CatJournal, "record failed", err, "job", evt.Payload.JobID)
		}
	})
}

// Lost returns how many dropped deliveries Run has noticed.
func (r *Recorder) Lost() uint64 {
	return r.lost.Load()
}

// noteDropped logs the drops since the last call and returns their count.
func (r *Recorder) noteDropped(total uint64) uint64 {
	prev := r.lost.Load()
	if total <= prev {
		return 0
	}
	r.lost.Store(total)
	log.Warn(log.CatJournal, "outcomes dropped before journaling", "dropped", total-prev, "total", total)
	return total - prev
}

// Record stores out and, when it carries one, the resulting board order.
func (r *Recorder) Record(ctx context.Context, out kanban.Outcome) error {
	var errs []error
	if err := r.repo.Append(ctx, EntryFrom(out)); err != nil {
		errs = append(errs, err)
	}
	if r.saveOrder && out.Err == nil && out.Order != nil {
		if err := r.repo.SaveOrder(ctx, out.ProjectID, out.Order); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// EntryFrom builds the journal entry for out. The id is the sequencer job id
// so an operation is never journaled twice.
func EntryFrom(out kanban.Outcome) Entry {
	e := NewEntry(out.ProjectID, string(out.Op.Kind), resultOf(out), out.At)
	if out.JobID != "" {
		e.ID = out.JobID
	}
	e.IID = out.Op.IID
	if out.Op.Kind == kanban.OpCreate && out.Issue.IID != 0 {
		e.IID = out.Issue.IID
	}
	if out.Err != nil {
		e.Error = out.Err.Error()
	}

	switch {
	case out.Mutation != nil:
		e.FromColumn = string(out.Mutation.From)
		e.ToColumn = string(out.Mutation.To)
		e.Labels = out.Mutation.Labels
		e.StateEvent = string(out.Mutation.StateEvent)
	case out.Op.Kind == kanban.OpCreate:
		e.ToColumn = string(kanban.ColumnTodo)
		e.Labels = out.Op.Create.Labels
	case out.Op.Kind == kanban.OpEdit:
		e.Labels = out.Op.Edit.Labels
		e.StateEvent = string(out.Op.Edit.StateEvent)
		if d := out.Op.Edit.Description; d != nil {
			e.DescriptionPatch = DescriptionPatch(out.Before.Description, *d)
		}
	case out.Op.Kind == kanban.OpDelete:
		e.FromColumn = columnOf(out.Before)
		e.StateEvent = string(gitlab.StateEventClose)
	default:
		col := columnOf(out.Before)
		e.FromColumn, e.ToColumn = col, col
	}
	if out.Op.Kind == kanban.OpCreate && out.Err == nil {
		e.ToColumn = string(kanban.Classify(out.Issue))
	}
	return e
}

func resultOf(out kanban.Outcome) Result {
	switch {
	case out.Err != nil && out.RolledBack:
		return ResultRolledBack
	case out.Err != nil:
		return ResultFailed
	case out.Local:
		return ResultLocal
	default:
		return ResultApplied
	}
}

func columnOf(issue gitlab.Issue) string {
	if issue.IID == 0 {
		return ""
	}
	return string(kanban.Classify(issue))
}
