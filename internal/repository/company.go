package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"
	"github.com/oklog/ulid/v2"
	"github.com/scoutdesk/scoutdesk/internal/model"
)

const companyColumns = `id, url, name, summary, description, keywords, industry, stage, location, last_enriched_at, created_at, updated_at`

// sortColumns maps allow-listed sort keys to column expressions.
// Nothing from the request is ever interpolated into ORDER BY.
var sortColumns = map[model.SortField]string{
	model.SortByName:           "name",
	model.SortByIndustry:       "industry",
	model.SortByStage:          "stage",
	model.SortByLocation:       "location",
	model.SortByCreatedAt:      "created_at",
	model.SortByUpdatedAt:      "updated_at",
	model.SortByLastEnrichedAt: "last_enriched_at",
}

// companyWhere builds the WHERE clause and arguments for a directory filter.
func companyWhere(filter model.CompanyFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)

	if filter.Search != "" {
		args = append(args, "%"+escapeLike(filter.Search)+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(name ILIKE $%[1]d OR description ILIKE $%[1]d OR summary ILIKE $%[1]d OR keywords ILIKE $%[1]d)", n))
	}
	if filter.Industry != "" {
		args = append(args, filter.Industry)
		conds = append(conds, fmt.Sprintf("industry = $%d", len(args)))
	}
	if filter.Stage != "" {
		args = append(args, filter.Stage)
		conds = append(conds, fmt.Sprintf("stage = $%d", len(args)))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// companyOrderBy returns the ORDER BY clause with id as a stable tiebreaker.
func companyOrderBy(filter model.CompanyFilter) string {
	column, ok := sortColumns[filter.SortBy]
	if !ok {
		column = sortColumns[model.SortByName]
	}
	dir := "ASC"
	if filter.SortOrder == model.SortDesc {
		dir = "DESC"
	}
	return fmt.Sprintf(" ORDER BY %s %s NULLS LAST, id %s", column, dir, dir)
}

// ListCompanies returns one page of companies matching the filter, with signals,
// plus the total number of matches. The filter must already be normalized.
func (r *Repository) ListCompanies(ctx context.Context, filter model.CompanyFilter) ([]*model.Company, int, error) {
	where, args := companyWhere(filter)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM companies`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count companies: %w", err)
	}

	query := `SELECT ` + companyColumns + ` FROM companies` + where + companyOrderBy(filter) +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset())

	companies, err := r.queryCompanies(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list companies: %w", err)
	}

	if err := r.attachSignals(ctx, companies); err != nil {
		return nil, 0, err
	}

	return companies, total, nil
}

// CountCompanies returns the number of companies in the directory.
func (r *Repository) CountCompanies(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM companies`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count companies: %w", err)
	}
	return n, nil
}

// GetCompanyByID retrieves a company with its signals, notes (oldest first)
// and sources (newest first).
func (r *Repository) GetCompanyByID(ctx context.Context, id string) (*model.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE id = $1`

	company, err := scanCompany(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCompanyNotFound
		}
		return nil, fmt.Errorf("failed to get company by ID: %w", err)
	}

	if err := r.attachSignals(ctx, []*model.Company{company}); err != nil {
		return nil, err
	}
	if company.Notes, err = r.listNotes(ctx, id); err != nil {
		return nil, err
	}
	if company.Sources, err = r.listSources(ctx, id); err != nil {
		return nil, err
	}

	return company, nil
}

// CreateCompany inserts a directory entry.
func (r *Repository) CreateCompany(ctx context.Context, c *model.Company) error {
	query := `
		INSERT INTO companies (id, url, name, summary, description, keywords, industry, stage, location, last_enriched_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.pool.Exec(ctx, query,
		c.ID,
		c.URL,
		c.Name,
		c.Summary,
		c.Description,
		c.Keywords,
		c.Industry,
		c.Stage,
		c.Location,
		c.LastEnrichedAt,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create company: %w", err)
	}

	return nil
}

// AddNote appends a note to a company.
func (r *Repository) AddNote(ctx context.Context, note *model.Note) error {
	query := `
		INSERT INTO notes (id, company_id, content, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.pool.Exec(ctx, query, note.ID, note.CompanyID, note.Content, note.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err, "company_id") {
			return ErrCompanyNotFound
		}
		return fmt.Errorf("failed to add note: %w", err)
	}

	return nil
}

// ApplyEnrichment writes an enrichment result in a single transaction:
// derived fields (nil keeps the current value), lastEnrichedAt, a full
// replacement of the signal set and one new source row.
func (r *Repository) ApplyEnrichment(ctx context.Context, companyID string, e *model.Enrichment) error {
	enrichedAt := e.EnrichedAt
	if enrichedAt.IsZero() {
		enrichedAt = time.Now().UTC()
	}

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		result, err := tx.Exec(ctx, `
			UPDATE companies
			SET summary = COALESCE($2, summary),
			    description = COALESCE($3, description),
			    keywords = COALESCE($4, keywords),
			    industry = COALESCE($5, industry),
			    location = COALESCE($6, location),
			    last_enriched_at = $7,
			    updated_at = $7
			WHERE id = $1
		`, companyID, e.Summary, e.Description, e.Keywords, e.Industry, e.Location, enrichedAt)
		if err != nil {
			return fmt.Errorf("failed to update company: %w", err)
		}
		if result.RowsAffected() == 0 {
			return ErrCompanyNotFound
		}

		if _, err := tx.Exec(ctx, `DELETE FROM signals WHERE company_id = $1`, companyID); err != nil {
			return fmt.Errorf("failed to clear signals: %w", err)
		}

		if len(e.Signals) > 0 {
			ids := make([]string, len(e.Signals))
			labels := make([]string, len(e.Signals))
			values := make([]string, len(e.Signals))
			for i, s := range e.Signals {
				ids[i] = ulid.Make().String()
				labels[i] = s.Label
				values[i] = s.Value
			}

			_, err := tx.Exec(ctx, `
				INSERT INTO signals (id, company_id, label, value, created_at)
				SELECT s.id, $1, s.label, s.value, $5
				FROM unnest($2::text[], $3::text[], $4::text[]) AS s(id, label, value)
			`, companyID, pq.Array(ids), pq.Array(labels), pq.Array(values), enrichedAt)
			if err != nil {
				return fmt.Errorf("failed to insert signals: %w", err)
			}
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO sources (id, company_id, url, scraped_at)
			VALUES ($1, $2, $3, $4)
		`, ulid.Make().String(), companyID, e.SourceURL, enrichedAt)
		if err != nil {
			return fmt.Errorf("failed to insert source: %w", err)
		}

		return nil
	})
}

// queryCompanies runs a query selecting companyColumns.
func (r *Repository) queryCompanies(ctx context.Context, query string, args ...any) ([]*model.Company, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	companies := make([]*model.Company, 0)
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		companies = append(companies, c)
	}

	return companies, rows.Err()
}

// attachSignals loads the signals of every given company in one query.
func (r *Repository) attachSignals(ctx context.Context, companies []*model.Company) error {
	if len(companies) == 0 {
		return nil
	}

	ids := make([]string, len(companies))
	byID := make(map[string]*model.Company, len(companies))
	for i, c := range companies {
		ids[i] = c.ID
		byID[c.ID] = c
		c.Signals = []model.Signal{}
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, company_id, label, value, created_at
		FROM signals
		WHERE company_id = ANY($1)
		ORDER BY created_at, id
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to load signals: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s model.Signal
		if err := rows.Scan(&s.ID, &s.CompanyID, &s.Label, &s.Value, &s.CreatedAt); err != nil {
			return fmt.Errorf("failed to scan signal: %w", err)
		}
		if c, ok := byID[s.CompanyID]; ok {
			c.Signals = append(c.Signals, s)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating signals: %w", err)
	}
	return nil
}

func (r *Repository) listNotes(ctx context.Context, companyID string) ([]model.Note, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, company_id, content, created_at
		FROM notes
		WHERE company_id = $1
		ORDER BY created_at, id
	`, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load notes: %w", err)
	}
	defer rows.Close()

	notes := []model.Note{}
	for rows.Next() {
		var n model.Note
		if err := rows.Scan(&n.ID, &n.CompanyID, &n.Content, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, n)
	}

	return notes, rows.Err()
}

func (r *Repository) listSources(ctx context.Context, companyID string) ([]model.Source, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, company_id, url, scraped_at
		FROM sources
		WHERE company_id = $1
		ORDER BY scraped_at DESC, id DESC
	`, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load sources: %w", err)
	}
	defer rows.Close()

	sources := []model.Source{}
	for rows.Next() {
		var s model.Source
		if err := rows.Scan(&s.ID, &s.CompanyID, &s.URL, &s.ScrapedAt); err != nil {
			return nil, fmt.Errorf("failed to scan source: %w", err)
		}
		sources = append(sources, s)
	}

	return sources, rows.Err()
}

// scanCompany scans companyColumns from a row.
func scanCompany(row pgx.Row) (*model.Company, error) {
	var c model.Company
	err := row.Scan(
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
		return nil, err
	}
	return &c, nil
}
