package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/scoutdesk/scoutdesk/internal/model"
	"github.com/scoutdesk/scoutdesk/internal/repository"
)

// emptyFilters is stored when a saved search carries no filters.
const emptyFilters = "{}"

// SavedSearchStore persists saved searches.
type SavedSearchStore interface {
	CreateSavedSearch(ctx context.Context, s *model.SavedSearch) error
	ListSavedSearchesByUser(ctx context.Context, userID string) ([]*model.SavedSearch, error)
	DeleteSavedSearch(ctx context.Context, id, userID string) error
}

// SavedSearchService handles user-owned saved searches.
type SavedSearchService struct {
	store SavedSearchStore
}

// NewSavedSearchService creates a new SavedSearchService.
func NewSavedSearchService(store SavedSearchStore) *SavedSearchService {
	return &SavedSearchService{store: store}
}

// CreateSavedSearchInput defines input for saving a search.
// Filters is the raw JSON value sent by the client.
type CreateSavedSearchInput struct {
	Name    string
	Query   string
	Filters json.RawMessage
}

// GetSavedSearches returns the user's saved searches, newest first.
func (s *SavedSearchService) GetSavedSearches(ctx context.Context, userID string) ([]*model.SavedSearch, error) {
	searches, err := s.store.ListSavedSearchesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get saved searches: %w", err)
	}
	return searches, nil
}

// CreateSavedSearch stores a search for the user.
func (s *SavedSearchService) CreateSavedSearch(ctx context.Context, userID string, input CreateSavedSearchInput) (*model.SavedSearch, error) {
	name := strings.TrimSpace(input.Name)
	if err := ValidateRequiredName(name); err != nil {
		return nil, err
	}

	filters, err := SerializeFilters(input.Filters)
	if err != nil {
		return nil, err
	}

	search := &model.SavedSearch{
		ID:        ulid.Make().String(),
		Name:      name,
		Query:     input.Query,
		Filters:   filters,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.CreateSavedSearch(ctx, search); err != nil {
		return nil, fmt.Errorf("failed to create saved search: %w", err)
	}

	return search, nil
}

// DeleteSavedSearch deletes an owned saved search.
func (s *SavedSearchService) DeleteSavedSearch(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteSavedSearch(ctx, id, userID); err != nil {
		if errors.Is(err, repository.ErrSavedSearchNotFound) {
			return ErrSavedSearchNotFound
		}
		return fmt.Errorf("failed to delete saved search: %w", err)
	}
	return nil
}

// SerializeFilters turns the client's filters value into stored text.
// A JSON string is taken as already serialized; absent or null becomes "{}";
// any other value is stored as compact JSON.
func SerializeFilters(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return emptyFilters, nil
	}

	if trimmed[0] == '"' {
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return "", fmt.Errorf("invalid filters: %w", err)
		}
		return text, nil
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return "", fmt.Errorf("invalid filters: %w", err)
	}
	return buf.String(), nil
}
