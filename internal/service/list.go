package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/scoutdesk/scoutdesk/internal/model"
	"github.com/scoutdesk/scoutdesk/internal/repository"
)

// ListStore persists user lists and their membership.
type ListStore interface {
	CreateList(ctx context.Context, list *model.List) error
	ListListsByUser(ctx context.Context, userID string) ([]*model.List, error)
	GetListForUser(ctx context.Context, id, userID string) (*model.List, error)
	AddCompanyToList(ctx context.Context, listID, userID, companyID string) error
	RemoveCompanyFromList(ctx context.Context, listID, userID, companyID string) error
	DeleteList(ctx context.Context, id, userID string) error
}

// ListService handles user-owned company lists.
// Lists owned by another user are reported as not found.
type ListService struct {
	store ListStore
}

// NewListService creates a new ListService.
func NewListService(store ListStore) *ListService {
	return &ListService{store: store}
}

// GetLists returns the user's lists, newest first, with member companies.
func (s *ListService) GetLists(ctx context.Context, userID string) ([]*model.List, error) {
	lists, err := s.store.ListListsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lists: %w", err)
	}
	return lists, nil
}

// CreateList creates an empty list.
func (s *ListService) CreateList(ctx context.Context, userID, name string) (*model.List, error) {
	name = strings.TrimSpace(name)
	if err := ValidateRequiredName(name); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	list := &model.List{
		ID:        ulid.Make().String(),
		Name:      name,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
		Companies: make([]*model.Company, 0),
	}

	if err := s.store.CreateList(ctx, list); err != nil {
		return nil, fmt.Errorf("failed to create list: %w", err)
	}

	return list, nil
}

// AddCompany adds a company to an owned list. Adding a member twice is a no-op.
func (s *ListService) AddCompany(ctx context.Context, userID, listID, companyID string) (*model.List, error) {
	companyID = strings.TrimSpace(companyID)
	if companyID == "" {
		return nil, ErrCompanyIDRequired
	}

	if err := s.store.AddCompanyToList(ctx, listID, userID, companyID); err != nil {
		return nil, mapListError(err)
	}

	return s.get(ctx, userID, listID)
}

// RemoveCompany removes a company from an owned list. Removing a non-member is a no-op.
func (s *ListService) RemoveCompany(ctx context.Context, userID, listID, companyID string) (*model.List, error) {
	if err := s.store.RemoveCompanyFromList(ctx, listID, userID, companyID); err != nil {
		return nil, mapListError(err)
	}

	return s.get(ctx, userID, listID)
}

// DeleteList deletes an owned list and its membership. Companies are untouched.
func (s *ListService) DeleteList(ctx context.Context, userID, listID string) error {
	if err := s.store.DeleteList(ctx, listID, userID); err != nil {
		return mapListError(err)
	}
	return nil
}

func (s *ListService) get(ctx context.Context, userID, listID string) (*model.List, error) {
	list, err := s.store.GetListForUser(ctx, listID, userID)
	if err != nil {
		return nil, mapListError(err)
	}
	return list, nil
}

func mapListError(err error) error {
	switch {
	case errors.Is(err, repository.ErrListNotFound):
		return ErrListNotFound
	case errors.Is(err, repository.ErrCompanyNotFound):
		return ErrCompanyNotFound
	default:
		return fmt.Errorf("list operation failed: %w", err)
	}
}
