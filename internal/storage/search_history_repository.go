package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pomtech-site/backend/internal/storage/models"
)

// SearchHistoryRepository provides data access for the capped list of
// recent search queries.
type SearchHistoryRepository struct {
	BaseRepository
	limit int
}

// NewSearchHistoryRepository creates a new search history repository
// retaining at most limit entries.
func NewSearchHistoryRepository(db *DB, limit int) *SearchHistoryRepository {
	if limit <= 0 {
		limit = 10
	}
	return &SearchHistoryRepository{BaseRepository: NewBaseRepository(db), limit: limit}
}

// Add records a query, newest first, trimming entries beyond the cap.
// Re-searching an existing query moves it to the front instead of
// duplicating it.
func (r *SearchHistoryRepository) Add(ctx context.Context, query string) (*models.SearchEntry, error) {
	entry := &models.SearchEntry{
		ID:        GenerateID(),
		Query:     query,
		CreatedAt: r.Now(),
	}

	err := r.Transaction(func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM search_history WHERE query = ?", query,
		); err != nil {
			return fmt.Errorf("deduplicating query: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			"INSERT INTO search_history (id, query, created_at) VALUES (?, ?, ?)",
			entry.ID, entry.Query, entry.CreatedAt,
		); err != nil {
			return fmt.Errorf("inserting query: %w", err)
		}

		_, err := tx.ExecContext(ctx, `
			DELETE FROM search_history WHERE id NOT IN (
				SELECT id FROM search_history ORDER BY created_at DESC, id LIMIT ?
			)
		`, r.limit)
		if err != nil {
			return fmt.Errorf("trimming history: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// List retrieves the retained entries, newest first.
func (r *SearchHistoryRepository) List(ctx context.Context) ([]models.SearchEntry, error) {
	rows, err := r.DB().QueryContext(ctx,
		"SELECT id, query, created_at FROM search_history ORDER BY created_at DESC, id",
	)
	if err != nil {
		return nil, fmt.Errorf("querying search history: %w", err)
	}
	defer rows.Close()

	var entries []models.SearchEntry
	for rows.Next() {
		var e models.SearchEntry
		if err := rows.Scan(&e.ID, &e.Query, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning search entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// LastUpdated returns the timestamp of the most recent entry, or the zero
// time when the history is empty.
func (r *SearchHistoryRepository) LastUpdated(ctx context.Context) (time.Time, error) {
	var ts sql.NullTime
	err := r.DB().QueryRowContext(ctx,
		"SELECT MAX(created_at) FROM search_history",
	).Scan(&ts)
	if err != nil {
		return time.Time{}, fmt.Errorf("querying last search time: %w", err)
	}
	if !ts.Valid {
		return time.Time{}, nil
	}
	return ts.Time, nil
}

// Clear removes the whole history.
func (r *SearchHistoryRepository) Clear(ctx context.Context) error {
	if _, err := r.DB().ExecContext(ctx, "DELETE FROM search_history"); err != nil {
		return fmt.Errorf("clearing search history: %w", err)
	}
	return nil
}
