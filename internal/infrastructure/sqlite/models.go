package sqlite

import (
	"encoding/json"
	"time"

	"github.com/zjrosen/glboard/internal/journal"
)

// EntryModel is the database row of the journal table.
type EntryModel struct {
	ID               string
	ProjectID        int64
	IID              int64
	Kind             string
	FromColumn       *string
	ToColumn         *string
	Labels           *string // JSON encoded
	StateEvent       *string
	Result           string
	Error            *string
	DescriptionPatch *string
	CreatedAt        int64 // Unix milliseconds
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// toEntryModel converts a journal entry to its database row.
func toEntryModel(e journal.Entry) *EntryModel {
	m := &EntryModel{
		ID:               e.ID,
		ProjectID:        int64(e.ProjectID),
		IID:              int64(e.IID),
		Kind:             e.Kind,
		FromColumn:       optional(e.FromColumn),
		ToColumn:         optional(e.ToColumn),
		StateEvent:       optional(e.StateEvent),
		Result:           string(e.Result),
		Error:            optional(e.Error),
		DescriptionPatch: optional(e.DescriptionPatch),
		CreatedAt:        e.CreatedAt.UnixMilli(),
	}
	if e.Labels != nil {
		labelsJSON, err := json.Marshal(e.Labels)
		if err == nil {
			labels := string(labelsJSON)
			m.Labels = &labels
		}
	}
	return m
}

// toDomain converts a database row back to a journal entry.
func (m *EntryModel) toDomain() journal.Entry {
	var labels []string
	if m.Labels != nil {
		_ = json.Unmarshal([]byte(*m.Labels), &labels)
	}
	return journal.Entry{
		ID:               m.ID,
		ProjectID:        int(m.ProjectID),
		IID:              int(m.IID),
		Kind:             m.Kind,
		FromColumn:       value(m.FromColumn),
		ToColumn:         value(m.ToColumn),
		Labels:           labels,
		StateEvent:       value(m.StateEvent),
		Result:           journal.Result(m.Result),
		Error:            value(m.Error),
		DescriptionPatch: value(m.DescriptionPatch),
		CreatedAt:        time.UnixMilli(m.CreatedAt).UTC(),
	}
}
