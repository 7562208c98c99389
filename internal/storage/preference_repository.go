package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pomtech-site/backend/internal/storage/models"
)

// PreferenceRepository provides data access for key-value site preferences.
type PreferenceRepository struct {
	BaseRepository
}

// NewPreferenceRepository creates a new preference repository.
func NewPreferenceRepository(db *DB) *PreferenceRepository {
	return &PreferenceRepository{BaseRepository: NewBaseRepository(db)}
}

// Get retrieves a single preference value. Missing keys return "" with no error.
func (r *PreferenceRepository) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.DB().QueryRowContext(ctx,
		"SELECT value FROM preferences WHERE key = ?", key,
	).Scan(&value)

	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("querying preference %q: %w", key, err)
	}
	return value, nil
}

// Set upserts a preference value.
func (r *PreferenceRepository) Set(ctx context.Context, key, value string) error {
	_, err := r.DB().ExecContext(ctx, `
		INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, r.Now())
	if err != nil {
		return fmt.Errorf("setting preference %q: %w", key, err)
	}
	return nil
}

// All retrieves every stored preference.
func (r *PreferenceRepository) All(ctx context.Context) ([]models.Preference, error) {
	rows, err := r.DB().QueryContext(ctx,
		"SELECT key, value, updated_at FROM preferences ORDER BY key",
	)
	if err != nil {
		return nil, fmt.Errorf("querying preferences: %w", err)
	}
	defer rows.Close()

	var prefs []models.Preference
	for rows.Next() {
		var p models.Preference
		if err := rows.Scan(&p.Key, &p.Value, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning preference: %w", err)
		}
		prefs = append(prefs, p)
	}
	return prefs, rows.Err()
}
