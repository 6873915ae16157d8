package journal

import "context"

// Filter narrows a Recent query. Zero values match everything.
type Filter struct {
	ProjectID int
	IID       int
	Limit     int
}

// DefaultLimit applies when Filter.Limit is zero or negative.
const DefaultLimit = 50

// Repository stores journal entries and saved manual orders.
type Repository interface {
	// Append stores one entry. Entries with an existing id are rejected.
	Append(ctx context.Context, entry Entry) error

	// Recent returns entries newest first.
	Recent(ctx context.Context, filter Filter) ([]Entry, error)

	// SaveOrder replaces the manual iid order stored for a project.
	SaveOrder(ctx context.Context, projectID int, iids []int) error

	// LoadOrder returns the saved order for a project, or nil if none.
	LoadOrder(ctx context.Context, projectID int) ([]int, error)
}
