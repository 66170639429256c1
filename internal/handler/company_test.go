package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/scoutdesk/scoutdesk/internal/model"
	"github.com/scoutdesk/scoutdesk/internal/testutil"
)

func TestCompanyHandler_ListPaging(t *testing.T) {
	t.Parallel()
	env := newAPIEnv(t)
	tok := env.token(t, "u1")

	for i := 1; i <= 25; i++ {
		env.seedCompany(t, testutil.NewTestCompany(t, fmt.Sprintf("Company %02d", i)))
	}

	rec := env.do(t, http.MethodGet, "/api/companies?page=2&limit=10", "", tok)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	page := decodeBody[model.CompanyPage](t, rec)

	if len(page.Data) != 10 {
		t.Fatalf("expected 10 companies, got %d", len(page.Data))
	}
	if page.Data[0].Name != "Company 11" || page.Data[9].Name != "Company 20" {
		t.Errorf("expected items 11-20, got %s..%s", page.Data[0].Name, page.Data[9].Name)
	}
	want := model.PageMeta{Total: 25, Page: 2, Limit: 10, TotalPages: 3}
	if page.Meta != want {
		t.Errorf("meta = %+v, want %+v", page.Meta, want)
	}
}

func TestCompanyHandler_ListPageOutOfRange(t *testing.T) {
	t.Parallel()
	env := newAPIEnv(t)
	tok := env.token(t, "u1")

	for i := 1; i <= 3; i++ {
		env.seedCompany(t, testutil.NewTestCompany(t, fmt.Sprintf("Company %02d", i)))
	}

	paths := []string{
		"/api/companies?page=9223372036854775807&limit=10",
		"/api/companies?page=9223372036854775807&limit=100",
		"/api/companies?page=50&limit=10",
	}

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, path, "", tok)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), `"data":[]`) {
				t.Errorf("expected empty data array, got %s", rec.Body.String())
			}
			page := decodeBody[model.CompanyPage](t, rec)
			if len(page.Data) != 0 {
				t.Errorf("expected no companies, got %d", len(page.Data))
			}
			if page.Meta.Total != 3 {
				t.Errorf("meta.total = %d, want 3", page.Meta.Total)
			}
		})
	}
}

func TestCompanyHandler_ListFilters(t *testing.T) {
	t.Parallel()
	env := newAPIEnv(t)
	tok := env.token(t, "u1")

	fin := testutil.NewTestCompany(t, "Ledgerly")
	fin.Industry = "Fintech"
	fin.Description = "Payments infrastructure"
	env.seedCompany(t, fin)

	saas := testutil.NewTestCompany(t, "Paystack Clone")
	saas.Industry = "Fintech Services"
	env.seedCompany(t, saas)

	env.seedCompany(t, testutil.NewTestCompany(t, "Other"))

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"industry_is_exact", "?industry=Fintech", []string{"Ledgerly"}},
		{"search_matches_description", "?search=payments", []string{"Ledgerly"}},
		{"search_matches_name", "?search=paystack", []string{"Paystack Clone"}},
		{"sort_desc", "?sortBy=name&sortOrder=desc", []string{"Paystack Clone", "Other", "Ledgerly"}},
		{"unknown_sort_falls_back", "?sortBy=password_hash", []string{"Ledgerly", "Other", "Paystack Clone"}},
		{"garbage_paging_falls_back", "?page=abc&limit=-4", []string{"Ledgerly", "Other", "Paystack Clone"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, "/api/companies"+tt.query, "", tok)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			page := decodeBody[model.CompanyPage](t, rec)
			if len(page.Data) != len(tt.want) {
				t.Fatalf("got %d companies, want %d", len(page.Data), len(tt.want))
			}
			for i, name := range tt.want {
				if page.Data[i].Name != name {
					t.Errorf("position %d = %s, want %s", i, page.Data[i].Name, name)
				}
			}
		})
	}
}

func TestCompanyHandler_Get(t *testing.T) {
	t.Parallel()
	env := newAPIEnv(t)
	tok := env.token(t, "u1")
	c := env.seedCompany(t, testutil.NewTestCompany(t, "Acme"))

	rec := env.do(t, http.MethodGet, "/api/companies/"+c.ID, "", tok)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	got := decodeBody[model.Company](t, rec)
	if got.ID != c.ID || got.Name != "Acme" {
		t.Errorf("unexpected company: %+v", got)
	}

	rec = env.do(t, http.MethodGet, "/api/companies/missing", "", tok)
	assertError(t, rec, http.StatusNotFound, CodeNotFound, "Company not found")
}

func TestCompanyHandler_AddNote(t *testing.T) {
	t.Parallel()
	env := newAPIEnv(t)
	tok := env.token(t, "u1")
	c := env.seedCompany(t, testutil.NewTestCompany(t, "Acme"))

	rec := env.do(t, http.MethodPost, "/api/companies/"+c.ID+"/notes", `{"content":"Warm intro via Sam"}`, tok)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}
	note := decodeBody[model.Note](t, rec)
	if note.CompanyID != c.ID || note.Content != "Warm intro via Sam" {
		t.Errorf("unexpected note: %+v", note)
	}

	rec = env.do(t, http.MethodPost, "/api/companies/"+c.ID+"/notes", `{"content":"  "}`, tok)
	assertError(t, rec, http.StatusBadRequest, CodeValidation, "Content is required")

	rec = env.do(t, http.MethodPost, "/api/companies/missing/notes", `{"content":"hi"}`, tok)
	assertError(t, rec, http.StatusNotFound, CodeNotFound, "Company not found")
}

func TestCompanyHandler_Enrich(t *testing.T) {
	t.Parallel()
	env := newAPIEnv(t)
	tok := env.token(t, "u1")
	c := env.seedCompany(t, testutil.NewTestCompany(t, "Acme"))

	rec := env.do(t, http.MethodPost, "/api/companies/"+c.ID+"/enrich", "", tok)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	got := decodeBody[model.Company](t, rec)
	if got.ID != c.ID {
		t.Errorf("unexpected company id %s", got.ID)
	}
}

func TestCompanyHandler_EnrichFailureSurfacesMessage(t *testing.T) {
	t.Parallel()
	env := newAPIEnv(t)
	tok := env.token(t, "u1")
	c := env.seedCompany(t, testutil.NewTestCompany(t, "Acme"))

	env.enricher.err = errors.New("Failed to parse AI response")

	rec := env.do(t, http.MethodPost, "/api/companies/"+c.ID+"/enrich", "", tok)
	assertError(t, rec, http.StatusInternalServerError, CodeInternal, "Failed to parse AI response")
}
