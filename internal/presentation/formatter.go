package presentation

import (
	"encoding/json"
	"io"

	"github.com/zjrosen/glboard/internal/journal"
)

// Formatter handles output formatting
type Formatter struct {
	writer io.Writer
}

// NewFormatter creates a new formatter
func NewFormatter(writer io.Writer) *Formatter {
	return &Formatter{
		writer: writer,
	}
}

func (f *Formatter) encode(v any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// FormatProjects formats a list of projects as JSON
func (f *Formatter) FormatProjects(projects []ProjectDTO) error {
	return f.encode(projects)
}

// FormatIssues formats a list of issues as JSON
func (f *Formatter) FormatIssues(issues []IssueDTO) error {
	return f.encode(issues)
}

// FormatIssue formats a single issue, e.g. the result of a move
func (f *Formatter) FormatIssue(issue IssueDTO) error {
	return f.encode(issue)
}

// FormatJournal formats journal entries as JSON
func (f *Formatter) FormatJournal(entries []journal.Entry) error {
	if entries == nil {
		entries = []journal.Entry{}
	}
	return f.encode(entries)
}
