package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/scoutdesk/scoutdesk/internal/cache"
	"github.com/scoutdesk/scoutdesk/internal/metrics"
	"github.com/scoutdesk/scoutdesk/internal/model"
	"github.com/scoutdesk/scoutdesk/internal/repository"
)

// CompanyStore reads the company directory and writes notes.
type CompanyStore interface {
	ListCompanies(ctx context.Context, filter model.CompanyFilter) ([]*model.Company, int, error)
	GetCompanyByID(ctx context.Context, id string) (*model.Company, error)
	AddNote(ctx context.Context, note *model.Note) error
}

// CompanyCache holds company detail between reads.
// GetCompany returns cache.ErrCacheMiss when nothing is stored.
type CompanyCache interface {
	GetCompany(ctx context.Context, id string) (*model.Company, error)
	SetCompany(ctx context.Context, company *model.Company) error
	DeleteCompany(ctx context.Context, id string) error
}

// Enricher refreshes a company's derived fields.
type Enricher interface {
	Enrich(ctx context.Context, companyID string) (*model.Company, error)
}

// CompanyService handles directory search, company detail, notes and enrichment.
type CompanyService struct {
	store    CompanyStore
	cache    CompanyCache
	enricher Enricher
	metrics  metrics.Recorder
	logger   *slog.Logger
}

// NewCompanyService creates a new CompanyService. companyCache may be nil.
func NewCompanyService(store CompanyStore, companyCache CompanyCache, enricher Enricher, recorder metrics.Recorder, logger *slog.Logger) *CompanyService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CompanyService{
		store:    store,
		cache:    companyCache,
		enricher: enricher,
		metrics:  recorder,
		logger:   logger,
	}
}

// ListCompanies returns one page of the directory. Out-of-range paging and
// unknown sort keys fall back to defaults.
func (s *CompanyService) ListCompanies(ctx context.Context, filter model.CompanyFilter) (*model.CompanyPage, error) {
	filter.Normalize()

	companies, total, err := s.store.ListCompanies(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	if companies == nil {
		companies = make([]*model.Company, 0)
	}

	return &model.CompanyPage{
		Data: companies,
		Meta: model.NewPageMeta(total, filter.Page, filter.Limit),
	}, nil
}

// GetCompany returns a company with signals, notes and sources.
// Reads go through the cache; cache failures fall back to the database.
func (s *CompanyService) GetCompany(ctx context.Context, id string) (*model.Company, error) {
	if s.cache != nil {
		company, err := s.cache.GetCompany(ctx, id)
		if err == nil {
			s.metrics.IncCompanyCacheHit()
			return company, nil
		}
		s.metrics.IncCompanyCacheMiss()
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("company_cache_read_failed", "company_id", id, "error", err.Error())
		}
	}

	company, err := s.store.GetCompanyByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCompanyNotFound) {
			return nil, ErrCompanyNotFound
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetCompany(ctx, company); err != nil {
			s.logger.Warn("company_cache_write_failed", "company_id", id, "error", err.Error())
		}
	}

	return company, nil
}

// AddNote attaches a note to a company.
func (s *CompanyService) AddNote(ctx context.Context, companyID, content string) (*model.Note, error) {
	content = strings.TrimSpace(content)
	if err := ValidateNoteContent(content); err != nil {
		return nil, err
	}

	note := &model.Note{
		ID:        ulid.Make().String(),
		CompanyID: companyID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.AddNote(ctx, note); err != nil {
		if errors.Is(err, repository.ErrCompanyNotFound) {
			return nil, ErrCompanyNotFound
		}
		return nil, fmt.Errorf("failed to add note: %w", err)
	}

	s.invalidate(ctx, companyID)
	return note, nil
}

// Enrich runs the enrichment pipeline and returns the refreshed company.
// Pipeline errors are returned unchanged so their message reaches the client.
// Cached detail is dropped on every outcome since a failed run may still
// have committed its write.
func (s *CompanyService) Enrich(ctx context.Context, companyID string) (*model.Company, error) {
	company, err := s.enricher.Enrich(ctx, companyID)
	s.invalidate(ctx, companyID)
	if err != nil {
		if errors.Is(err, repository.ErrCompanyNotFound) {
			return nil, ErrCompanyNotFound
		}
		return nil, err
	}
	return company, nil
}

// invalidate drops cached detail. Errors are logged; the TTL bounds staleness.
func (s *CompanyService) invalidate(ctx context.Context, companyID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteCompany(ctx, companyID); err != nil {
		s.logger.Warn("company_cache_invalidate_failed", "company_id", companyID, "error", err.Error())
	}
}
