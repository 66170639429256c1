package repository

import (
	"context"
	"fmt"

	"github.com/scoutdesk/scoutdesk/internal/model"
)

// CreateSavedSearch inserts a saved search.
func (r *Repository) CreateSavedSearch(ctx context.Context, s *model.SavedSearch) error {
	query := `
		INSERT INTO saved_searches (id, name, query, filters, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query, s.ID, s.Name, s.Query, s.Filters, s.UserID, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create saved search: %w", err)
	}

	return nil
}

// ListSavedSearchesByUser returns the user's saved searches, newest first.
func (r *Repository) ListSavedSearchesByUser(ctx context.Context, userID string) ([]*model.SavedSearch, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, query, filters, user_id, created_at
		FROM saved_searches
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list saved searches: %w", err)
	}
	defer rows.Close()

	searches := make([]*model.SavedSearch, 0)
	for rows.Next() {
		var s model.SavedSearch
		if err := rows.Scan(&s.ID, &s.Name, &s.Query, &s.Filters, &s.UserID, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan saved search: %w", err)
		}
		searches = append(searches, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating saved searches: %w", err)
	}

	return searches, nil
}

// DeleteSavedSearch deletes a saved search owned by the user.
func (r *Repository) DeleteSavedSearch(ctx context.Context, id, userID string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM saved_searches WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete saved search: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrSavedSearchNotFound
	}

	return nil
}
