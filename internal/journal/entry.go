// Package journal records every settled board operation so the history of a
// project can be inspected after the TUI exits.
package journal

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Result describes how an operation ended.
type Result string

const (
	ResultApplied    Result = "applied"
	ResultFailed     Result = "failed"
	ResultRolledBack Result = "rolled_back"
	ResultLocal      Result = "local"
)

// Valid reports whether r is a known result.
func (r Result) Valid() bool {
	switch r {
	case ResultApplied, ResultFailed, ResultRolledBack, ResultLocal:
		return true
	}
	return false
}

// Entry is one row of the journal.
type Entry struct {
	ID         string    `json:"id"`
	ProjectID  int       `json:"project_id"`
	IID        int       `json:"iid,omitempty"`
	Kind       string    `json:"kind"`
	FromColumn string    `json:"from_column,omitempty"`
	ToColumn   string    `json:"to_column,omitempty"`
	Labels     []string  `json:"labels,omitempty"`
	StateEvent string    `json:"state_event,omitempty"`
	Result     Result    `json:"result"`
	Error      string    `json:"error,omitempty"`
	// DescriptionPatch is a textual patch from the old to the new description.
	DescriptionPatch string    `json:"description_patch,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// ErrInvalidEntry is returned when an entry cannot be stored.
var ErrInvalidEntry = errors.New("invalid journal entry")

// NewEntry returns an entry with a fresh id.
func NewEntry(projectID int, kind string, result Result, at time.Time) Entry {
	return Entry{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Kind:      kind,
		Result:    result,
		CreatedAt: at,
	}
}

// Validate checks the fields the store relies on.
func (e Entry) Validate() error {
	switch {
	case e.ID == "":
		return fmt.Errorf("%w: missing id", ErrInvalidEntry)
	case e.ProjectID <= 0:
		return fmt.Errorf("%w: project id %d", ErrInvalidEntry, e.ProjectID)
	case e.Kind == "":
		return fmt.Errorf("%w: missing kind", ErrInvalidEntry)
	case !e.Result.Valid():
		return fmt.Errorf("%w: result %q", ErrInvalidEntry, e.Result)
	case e.CreatedAt.IsZero():
		return fmt.Errorf("%w: missing timestamp", ErrInvalidEntry)
	}
	return nil
}
