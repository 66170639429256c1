package enrichment

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/scoutdesk/scoutdesk/internal/metrics"
	"github.com/scoutdesk/scoutdesk/internal/model"
	"github.com/scoutdesk/scoutdesk/internal/repository"
	"github.com/scoutdesk/scoutdesk/internal/repository/repotest"
)

type fakeScraper struct {
	text   string
	err    error
	gotURL string
}

func (f *fakeScraper) Scrape(_ context.Context, url string) (string, error) {
	f.gotURL = url
	return f.text, f.err
}

type fakeGenerator struct {
	text      string
	err       error
	gotPrompt string
	calls     int
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.calls++
	f.gotPrompt = prompt
	return f.text, f.err
}

const goodResponse = `{
	"summary": "Acme builds rockets.",
	"description": ["Rockets", "Payloads"],
	"keywords": "rockets, space",
	"industry": "Aerospace",
	"location": "Austin",
	"signals": [{"label": "Careers Page", "value": "found"}]
}`

func seedCompany(t *testing.T, store *repotest.Store, url string) *model.Company {
	t.Helper()
	now := time.Now().UTC()
	c := &model.Company{
		ID:          "c1",
		URL:         url,
		Name:        "Acme",
		Summary:     "old summary",
		Description: "old description",
		Industry:    "Software",
		Stage:       "Seed",
		Signals:     []model.Signal{{ID: "s0", CompanyID: "c1", Label: "Old", Value: "signal"}},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := store.CreateCompany(context.Background(), c); err != nil {
		t.Fatalf("seed company: %v", err)
	}
	return c
}

func newTestEnricher(store Store, scraper Scraper, gen Generator, rec metrics.Recorder, logs *bytes.Buffer) *Enricher {
	logger := slog.New(slog.NewJSONHandler(logs, nil))
	return NewEnricher(store, scraper, gen, Options{MaxContentChars: 100, Metrics: rec, Logger: logger})
}

func TestEnricher_Success(t *testing.T) {
	t.Parallel()

	store := repotest.New()
	seedCompany(t, store, "acme.example.com")
	scraper := &fakeScraper{text: strings.Repeat("x", 500)}
	gen := &fakeGenerator{text: "Sure!\n" + goodResponse}
	rec := metrics.NewInMemory()
	var logs bytes.Buffer

	e := newTestEnricher(store, scraper, gen, rec, &logs)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return fixed }

	got, err := e.Enrich(context.Background(), "c1")
	if err != nil {
		t.Fatalf("Enrich failed: %v", err)
	}

	if scraper.gotURL != "https://acme.example.com" {
		t.Errorf("scraped URL = %q, want normalized https URL", scraper.gotURL)
	}
	if strings.Count(gen.gotPrompt, "x") > 100 {
		t.Error("prompt content should be truncated to the configured limit")
	}

	if got.Summary != "Acme builds rockets." || got.Description != "Rockets\nPayloads" {
		t.Errorf("derived fields not applied: %+v", got)
	}
	if got.Stage != "Seed" {
		t.Errorf("Stage should be untouched, got %q", got.Stage)
	}
	if len(got.Signals) != 1 || got.Signals[0].Label != "Careers Page" {
		t.Errorf("signals not replaced: %+v", got.Signals)
	}
	if len(got.Sources) != 1 || got.Sources[0].URL != "acme.example.com" {
		t.Errorf("source should carry the pre-normalization URL: %+v", got.Sources)
	}
	if got.LastEnrichedAt == nil || !got.LastEnrichedAt.Equal(fixed) {
		t.Errorf("LastEnrichedAt = %v, want %v", got.LastEnrichedAt, fixed)
	}

	snap := rec.Snapshot()
	if snap.EnrichmentSuccess != 1 || snap.ScrapeDurationCount != 1 || snap.GenerateDurationCount != 1 {
		t.Errorf("metrics = %+v", snap)
	}
	if !strings.Contains(logs.String(), "company_enriched") {
		t.Errorf("expected company_enriched log, got %s", logs.String())
	}
}

func TestEnricher_KeepsExplicitScheme(t *testing.T) {
	t.Parallel()

	store := repotest.New()
	seedCompany(t, store, "http://legacy.example.com")
	scraper := &fakeScraper{text: "page"}

	e := newTestEnricher(store, scraper, &fakeGenerator{text: goodResponse}, nil, &bytes.Buffer{})
	if _, err := e.Enrich(context.Background(), "c1"); err != nil {
		t.Fatalf("Enrich failed: %v", err)
	}
	if scraper.gotURL != "http://legacy.example.com" {
		t.Errorf("scraped URL = %q", scraper.gotURL)
	}
}

func TestEnricher_FailuresLeaveCompanyUnchanged(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		scraper *fakeScraper
		gen     *fakeGenerator
		wantErr error
		genCall bool
	}{
		{
			name:    "scrape failure",
			scraper: &fakeScraper{err: fmt.Errorf("%w: reader returned status 502", ErrScrapeFailed)},
			gen:     &fakeGenerator{text: goodResponse},
			wantErr: ErrScrapeFailed,
		},
		{
			name:    "generate failure",
			scraper: &fakeScraper{text: "page"},
			gen:     &fakeGenerator{err: fmt.Errorf("%w: quota", ErrGenerateFailed)},
			wantErr: ErrGenerateFailed,
			genCall: true,
		},
		{
			name:    "parse failure",
			scraper: &fakeScraper{text: "page"},
			gen:     &fakeGenerator{text: "I cannot help with that."},
			wantErr: ErrParseFailed,
			genCall: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := repotest.New()
			seedCompany(t, store, "acme.example.com")
			rec := metrics.NewInMemory()

			e := newTestEnricher(store, tt.scraper, tt.gen, rec, &bytes.Buffer{})
			_, err := e.Enrich(context.Background(), "c1")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}

			if store.ApplyCalls != 0 {
				t.Errorf("no write should happen, got %d", store.ApplyCalls)
			}
			if (tt.gen.calls > 0) != tt.genCall {
				t.Errorf("generator calls = %d", tt.gen.calls)
			}

			got, _ := store.GetCompanyByID(context.Background(), "c1")
			if got.Summary != "old summary" || got.Description != "old description" {
				t.Errorf("company changed: %+v", got)
			}
			if len(got.Signals) != 1 || got.Signals[0].Label != "Old" {
				t.Errorf("signals changed: %+v", got.Signals)
			}
			if rec.Snapshot().EnrichmentFailures != 1 {
				t.Error("failure should be counted")
			}
		})
	}
}

func TestEnricher_CompanyNotFound(t *testing.T) {
	t.Parallel()

	scraper := &fakeScraper{}
	e := newTestEnricher(repotest.New(), scraper, &fakeGenerator{}, nil, &bytes.Buffer{})

	_, err := e.Enrich(context.Background(), "missing")
	if !errors.Is(err, repository.ErrCompanyNotFound) {
		t.Errorf("error = %v, want ErrCompanyNotFound", err)
	}
	if scraper.gotURL != "" {
		t.Error("scraper must not be called for an unknown company")
	}
}

func TestEnricher_PersistFailure(t *testing.T) {
	t.Parallel()

	store := repotest.New()
	seedCompany(t, store, "acme.example.com")
	store.ApplyErr = errors.New("connection reset")

	e := newTestEnricher(store, &fakeScraper{text: "page"}, &fakeGenerator{text: goodResponse}, nil, &bytes.Buffer{})
	_, err := e.Enrich(context.Background(), "c1")
	if err == nil || !strings.Contains(err.Error(), "connection reset") {
		t.Errorf("error = %v, want wrapped persistence error", err)
	}
}

// reloadFailStore fails every company read after the first.
type reloadFailStore struct {
	*repotest.Store
	reads int
	err   error
}

func (s *reloadFailStore) GetCompanyByID(ctx context.Context, id string) (*model.Company, error) {
	s.reads++
	if s.reads > 1 {
		return nil, s.err
	}
	return s.Store.GetCompanyByID(ctx, id)
}

func TestEnricher_ReloadFailureAfterSave(t *testing.T) {
	t.Parallel()

	inner := repotest.New()
	seedCompany(t, inner, "acme.example.com")
	store := &reloadFailStore{Store: inner, err: errors.New("connection reset")}
	rec := metrics.NewInMemory()
	var logs bytes.Buffer

	e := newTestEnricher(store, &fakeScraper{text: "page"}, &fakeGenerator{text: goodResponse}, rec, &logs)
	_, err := e.Enrich(context.Background(), "c1")
	if err == nil || !strings.Contains(err.Error(), "connection reset") {
		t.Fatalf("error = %v, want wrapped reload error", err)
	}

	saved, err := inner.GetCompanyByID(context.Background(), "c1")
	if err != nil {
		t.Fatalf("GetCompanyByID failed: %v", err)
	}
	if saved.Summary != "Acme builds rockets." {
		t.Errorf("Summary = %q, want the committed profile", saved.Summary)
	}

	snap := rec.Snapshot()
	if snap.EnrichmentSuccess != 1 || snap.EnrichmentFailures != 0 {
		t.Errorf("committed write should count as success, got %+v", snap)
	}
	if !strings.Contains(logs.String(), "enrichment_reload_failed") {
		t.Errorf("expected enrichment_reload_failed log, got %s", logs.String())
	}
	if strings.Contains(logs.String(), `"msg":"enrichment_failed"`) {
		t.Errorf("reload failure must not log enrichment_failed: %s", logs.String())
	}
}
