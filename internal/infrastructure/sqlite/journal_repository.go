package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/zjrosen/glboard/internal/journal"
)

const entryColumns = `id, project_id, iid, kind, from_column, to_column, labels,
	state_event, result, error, description_patch, created_at`

// journalRepository implements journal.Repository using SQLite.
type journalRepository struct {
	db  *sql.DB
	now func() time.Time
}

func newJournalRepository(db *sql.DB) *journalRepository {
	return &journalRepository{db: db, now: time.Now}
}

var _ journal.Repository = (*journalRepository)(nil)

func scanEntry(scanner interface{ Scan(...any) error }) (*EntryModel, error) {
	var model EntryModel
	err := scanner.Scan(
		&model.ID, &model.ProjectID, &model.IID, &model.Kind,
		&model.FromColumn, &model.ToColumn, &model.Labels,
		&model.StateEvent, &model.Result, &model.Error, &model.DescriptionPatch,
		&model.CreatedAt,
	)
	return &model, err
}

// Append inserts entry. A duplicate id is reported as journal.ErrInvalidEntry.
func (r *journalRepository) Append(ctx context.Context, entry journal.Entry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	m := toEntryModel(entry)

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO journal (`+entryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`,
		m.ID, m.ProjectID, m.IID, m.Kind, m.FromColumn, m.ToColumn, m.Labels,
		m.StateEvent, m.Result, m.Error, m.DescriptionPatch, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert journal entry: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: duplicate id %s", journal.ErrInvalidEntry, entry.ID)
	}
	return nil
}

// Recent returns entries newest first.
func (r *journalRepository) Recent(ctx context.Context, filter journal.Filter) ([]journal.Entry, error) {
	var (
		where []string
		args  []any
	)
	if filter.ProjectID != 0 {
		where = append(where, "project_id = ?")
		args = append(args, filter.ProjectID)
	}
	if filter.IID != 0 {
		where = append(where, "iid = ?")
		args = append(args, filter.IID)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = journal.DefaultLimit
	}

	query := `SELECT ` + entryColumns + ` FROM journal`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, rowid DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal: %w", err)
	}
	defer rows.Close()

	entries := []journal.Entry{}
	for rows.Next() {
		m, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		entries = append(entries, m.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate journal: %w", err)
	}
	return entries, nil
}

// SaveOrder upserts the manual order for a project.
func (r *journalRepository) SaveOrder(ctx context.Context, projectID int, iids []int) error {
	if iids == nil {
		iids = []int{}
	}
	encoded, err := json.Marshal(iids)
	if err != nil {
		return fmt.Errorf("failed to encode order: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO issue_order (project_id, iids, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(project_id) DO UPDATE SET iids = excluded.iids, updated_at = excluded.updated_at`,
		projectID, string(encoded), r.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save order: %w", err)
	}
	return nil
}

// LoadOrder returns the saved order, or nil when the project has none.
func (r *journalRepository) LoadOrder(ctx context.Context, projectID int) ([]int, error) {
	var encoded string
	err := r.db.QueryRowContext(ctx,
		`SELECT iids FROM issue_order WHERE project_id = ?`, projectID,
	).Scan(&encoded)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}

	var iids []int
	if err := json.Unmarshal([]byte(encoded), &iids); err != nil {
		return nil, fmt.Errorf("failed to decode order: %w", err)
	}
	return iids, nil
}
