package enrichment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/scoutdesk/scoutdesk/internal/metrics"
	"github.com/scoutdesk/scoutdesk/internal/model"
)

// Store reads and writes the company rows enrichment touches.
type Store interface {
	GetCompanyByID(ctx context.Context, id string) (*model.Company, error)
	ApplyEnrichment(ctx context.Context, companyID string, e *model.Enrichment) error
}

// Scraper returns the rendered text of a web page.
type Scraper interface {
	Scrape(ctx context.Context, url string) (string, error)
}

// Generator returns model text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Options tunes an Enricher. Zero values pick defaults.
type Options struct {
	MaxContentChars int
	Metrics         metrics.Recorder
	Logger          *slog.Logger
}

// Enricher runs the enrichment pipeline for one company at a time.
// Runs are synchronous and single attempt; concurrent runs for the same
// company are last-write-wins.
type Enricher struct {
	store     Store
	scraper   Scraper
	generator Generator

	maxChars int
	metrics  metrics.Recorder
	logger   *slog.Logger
	now      func() time.Time
}

// NewEnricher creates an Enricher.
func NewEnricher(store Store, scraper Scraper, generator Generator, opts Options) *Enricher {
	if opts.MaxContentChars <= 0 {
		opts.MaxContentChars = DefaultMaxContentChars
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewNoop()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Enricher{
		store:     store,
		scraper:   scraper,
		generator: generator,
		maxChars:  opts.MaxContentChars,
		metrics:   opts.Metrics,
		logger:    opts.Logger,
		now:       time.Now,
	}
}

// Enrich scrapes the company website, extracts a profile with the model and
// persists it. The refreshed company is returned with signals, notes and
// sources. The only write happens after scraping and parsing succeed.
func (e *Enricher) Enrich(ctx context.Context, companyID string) (*model.Company, error) {
	start := time.Now()
	company, saved, err := e.run(ctx, companyID)
	e.metrics.ObserveEnrichmentDuration(time.Since(start))

	if err != nil && saved {
		// The profile is committed; only the read-back failed.
		e.metrics.IncEnrichment(metrics.OutcomeSuccess)
		e.logger.Warn("enrichment_reload_failed",
			"company_id", companyID,
			"error", err.Error(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}
	if err != nil {
		e.metrics.IncEnrichment(metrics.OutcomeFailure)
		e.logger.Warn("enrichment_failed",
			"company_id", companyID,
			"error", err.Error(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	e.metrics.IncEnrichment(metrics.OutcomeSuccess)
	e.logger.Info("company_enriched",
		"company_id", companyID,
		"signals", len(company.Signals),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return company, nil
}

// run reports saved once ApplyEnrichment has committed.
func (e *Enricher) run(ctx context.Context, companyID string) (*model.Company, bool, error) {
	company, err := e.store.GetCompanyByID(ctx, companyID)
	if err != nil {
		return nil, false, err
	}

	target := company.NormalizedURL()

	scrapeStart := time.Now()
	content, err := e.scraper.Scrape(ctx, target)
	e.metrics.ObserveScrapeDuration(time.Since(scrapeStart))
	if err != nil {
		return nil, false, err
	}

	genStart := time.Now()
	text, err := e.generator.Generate(ctx, BuildPrompt(content, e.maxChars))
	e.metrics.ObserveGenerateDuration(time.Since(genStart))
	if err != nil {
		return nil, false, err
	}

	profile, err := ParseResponse(text)
	if err != nil {
		return nil, false, err
	}
	profile.SourceURL = company.URL
	profile.EnrichedAt = e.now().UTC()

	if err := e.store.ApplyEnrichment(ctx, company.ID, profile); err != nil {
		return nil, false, fmt.Errorf("failed to save enrichment: %w", err)
	}

	enriched, err := e.store.GetCompanyByID(ctx, company.ID)
	if err != nil {
		return nil, true, fmt.Errorf("failed to reload enriched company: %w", err)
	}
	return enriched, true, nil
}
