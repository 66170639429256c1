package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"
	"github.com/scoutdesk/scoutdesk/internal/model"
)

// CreateList inserts a new list.
func (r *Repository) CreateList(ctx context.Context, list *model.List) error {
	query := `
		INSERT INTO lists (id, name, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query, list.ID, list.Name, list.UserID, list.CreatedAt, list.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create list: %w", err)
	}

	return nil
}

// ListListsByUser returns the user's lists, newest first, with member companies.
func (r *Repository) ListListsByUser(ctx context.Context, userID string) ([]*model.List, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, user_id, created_at, updated_at
		FROM lists
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list lists: %w", err)
	}
	defer rows.Close()

	lists := make([]*model.List, 0)
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan list: %w", err)
		}
		lists = append(lists, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lists: %w", err)
	}

	if err := r.attachListCompanies(ctx, lists); err != nil {
		return nil, err
	}

	return lists, nil
}

// GetListForUser returns a list owned by the user with its companies.
// A list owned by someone else is reported as ErrListNotFound.
func (r *Repository) GetListForUser(ctx context.Context, id, userID string) (*model.List, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, user_id, created_at, updated_at
		FROM lists
		WHERE id = $1 AND user_id = $2
	`, id, userID)

	list, err := scanList(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrListNotFound
		}
		return nil, fmt.Errorf("failed to get list: %w", err)
	}

	if err := r.attachListCompanies(ctx, []*model.List{list}); err != nil {
		return nil, err
	}

	return list, nil
}

// AddCompanyToList links a company to a list owned by the user.
// Adding a company that is already a member is a no-op.
func (r *Repository) AddCompanyToList(ctx context.Context, listID, userID, companyID string) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := touchOwnedList(ctx, tx, listID, userID); err != nil {
			return err
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO list_companies (list_id, company_id, added_at)
			VALUES ($1, $2, NOW())
			ON CONFLICT (list_id, company_id) DO NOTHING
		`, listID, companyID)
		if err != nil {
			if isForeignKeyViolation(err, "company_id") {
				return ErrCompanyNotFound
			}
			return fmt.Errorf("failed to add company to list: %w", err)
		}

		return nil
	})
}

// RemoveCompanyFromList unlinks a company from a list owned by the user.
// Removing a non-member is a no-op.
func (r *Repository) RemoveCompanyFromList(ctx context.Context, listID, userID, companyID string) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := touchOwnedList(ctx, tx, listID, userID); err != nil {
			return err
		}

		_, err := tx.Exec(ctx, `
			DELETE FROM list_companies
			WHERE list_id = $1 AND company_id = $2
		`, listID, companyID)
		if err != nil {
			return fmt.Errorf("failed to remove company from list: %w", err)
		}

		return nil
	})
}

// DeleteList deletes a list owned by the user. Memberships cascade.
func (r *Repository) DeleteList(ctx context.Context, id, userID string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM lists WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete list: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrListNotFound
	}

	return nil
}

// touchOwnedList bumps updated_at and doubles as the ownership check.
func touchOwnedList(ctx context.Context, tx pgx.Tx, listID, userID string) error {
	result, err := tx.Exec(ctx, `
		UPDATE lists SET updated_at = $3
		WHERE id = $1 AND user_id = $2
	`, listID, userID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to update list: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrListNotFound
	}
	return nil
}

// attachListCompanies loads members for every given list in one query.
func (r *Repository) attachListCompanies(ctx context.Context, lists []*model.List) error {
	if len(lists) == 0 {
		return nil
	}

	ids := make([]string, len(lists))
	byID := make(map[string]*model.List, len(lists))
	for i, l := range lists {
		ids[i] = l.ID
		byID[l.ID] = l
		l.Companies = []*model.Company{}
	}

	rows, err := r.pool.Query(ctx, `
		SELECT lc.list_id, c.id, c.url, c.name, c.summary, c.description, c.keywords,
		       c.industry, c.stage, c.location, c.last_enriched_at, c.created_at, c.updated_at
		FROM list_companies lc
		JOIN companies c ON c.id = lc.company_id
		WHERE lc.list_id = ANY($1)
		ORDER BY lc.added_at, c.id
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to load list companies: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			listID string
			c      model.Company
		)
		err := rows.Scan(
			&listID,
			&c.ID,
			&c.URL,
			&c.Name,
			&c.Summary,
			&c.Description,
			&c.Keywords,
			&c.Industry,
			&c.Stage,
			&c.Location,
			&c.LastEnrichedAt,
			&c.CreatedAt,
			&c.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to scan list company: %w", err)
		}
		c.Signals = []model.Signal{}
		if l, ok := byID[listID]; ok {
			l.Companies = append(l.Companies, &c)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating list companies: %w", err)
	}

	for _, l := range lists {
		l.Count.Companies = len(l.Companies)
	}
	return nil
}

func scanList(row pgx.Row) (*model.List, error) {
	var l model.List
	if err := row.Scan(&l.ID, &l.Name, &l.UserID, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}
