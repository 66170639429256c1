package repository

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/scoutdesk/scoutdesk/internal/model"
)

func TestEscapeLike(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"acme", "acme"},
		{"100%", `100\%`},
		{"a_b", `a\_b`},
		{`back\slash`, `back\\slash`},
	}

	for _, tt := range tests {
		if got := escapeLike(tt.in); got != tt.want {
			t.Errorf("escapeLike(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCompanyWhere(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		filter   model.CompanyFilter
		wantSQL  []string
		wantArgs []any
	}{
		{
			name:     "no filters",
			filter:   model.CompanyFilter{},
			wantSQL:  nil,
			wantArgs: nil,
		},
		{
			name:     "search only",
			filter:   model.CompanyFilter{Search: "ai"},
			wantSQL:  []string{"name ILIKE $1", "description ILIKE $1", "summary ILIKE $1", "keywords ILIKE $1"},
			wantArgs: []any{"%ai%"},
		},
		{
			name:     "search industry and stage",
			filter:   model.CompanyFilter{Search: "ai", Industry: "Software", Stage: "Seed"},
			wantSQL:  []string{"keywords ILIKE $1)", "industry = $2", "stage = $3", " AND "},
			wantArgs: []any{"%ai%", "Software", "Seed"},
		},
		{
			name:     "stage only",
			filter:   model.CompanyFilter{Stage: "Series A"},
			wantSQL:  []string{"WHERE stage = $1"},
			wantArgs: []any{"Series A"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sql, args := companyWhere(tt.filter)
			if tt.wantSQL == nil && sql != "" {
				t.Errorf("expected empty where, got %q", sql)
			}
			for _, frag := range tt.wantSQL {
				if !strings.Contains(sql, frag) {
					t.Errorf("where %q missing %q", sql, frag)
				}
			}
			if fmt.Sprint(args) != fmt.Sprint(tt.wantArgs) {
				t.Errorf("args = %v, want %v", args, tt.wantArgs)
			}
		})
	}
}

func TestCompanyOrderBy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		filter model.CompanyFilter
		want   string
	}{
		{model.CompanyFilter{SortBy: model.SortByName, SortOrder: model.SortAsc}, " ORDER BY name ASC NULLS LAST, id ASC"},
		{model.CompanyFilter{SortBy: model.SortByLastEnrichedAt, SortOrder: model.SortDesc}, " ORDER BY last_enriched_at DESC NULLS LAST, id DESC"},
		{model.CompanyFilter{SortBy: model.SortByCreatedAt}, " ORDER BY created_at ASC NULLS LAST, id ASC"},
		{model.CompanyFilter{SortBy: "name; DROP TABLE companies"}, " ORDER BY name ASC NULLS LAST, id ASC"},
	}

	for _, tt := range tests {
		if got := companyOrderBy(tt.filter); got != tt.want {
			t.Errorf("companyOrderBy(%+v) = %q, want %q", tt.filter, got, tt.want)
		}
	}
}

func TestSortColumns_CoverEveryField(t *testing.T) {
	t.Parallel()

	fields := []model.SortField{
		model.SortByName, model.SortByIndustry, model.SortByStage, model.SortByLocation,
		model.SortByCreatedAt, model.SortByUpdatedAt, model.SortByLastEnrichedAt,
	}
	for _, f := range fields {
		if _, ok := sortColumns[f]; !ok {
			t.Errorf("sort field %q has no column", f)
		}
	}
}

func TestPgErrorClassification(t *testing.T) {
	t.Parallel()

	unique := fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "23505"})
	if !isUniqueViolation(unique) {
		t.Error("expected unique violation")
	}
	if isUniqueViolation(errors.New("duplicate key value violates unique constraint")) {
		t.Error("plain errors must not be classified by message")
	}

	fk := &pgconn.PgError{Code: "23503", ConstraintName: "list_companies_company_id_fkey"}
	if !isForeignKeyViolation(fk, "company_id") {
		t.Error("expected company foreign key violation")
	}
	if isForeignKeyViolation(fk, "list_id") {
		t.Error("constraint name should not match list_id")
	}
	if !isForeignKeyViolation(fk, "") {
		t.Error("empty constraint should match any foreign key")
	}
	if isForeignKeyViolation(unique, "") {
		t.Error("unique violation is not a foreign key violation")
	}
}
