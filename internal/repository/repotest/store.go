// Package repotest provides an in-memory stand-in for the PostgreSQL
// repository. It mirrors the repository's semantics and sentinel errors so
// services and handlers can be tested without a database.
package repotest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/scoutdesk/scoutdesk/internal/model"
	"github.com/scoutdesk/scoutdesk/internal/repository"
)

// Store is a concurrency-safe in-memory repository.
type Store struct {
	mu sync.Mutex

	users         map[string]*model.User
	companies     map[string]*model.Company
	lists         map[string]*model.List
	members       map[string][]string // list id -> company ids in insertion order
	savedSearches map[string]*model.SavedSearch

	// ApplyErr, when set, is returned by ApplyEnrichment without writing.
	ApplyErr error
	// ApplyCalls counts ApplyEnrichment invocations.
	ApplyCalls int
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		users:         make(map[string]*model.User),
		companies:     make(map[string]*model.Company),
		lists:         make(map[string]*model.List),
		members:       make(map[string][]string),
		savedSearches: make(map[string]*model.SavedSearch),
	}
}

// ============================================================================
// Users
// ============================================================================

// CreateUser stores a user. Emails are unique.
func (s *Store) CreateUser(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == user.Email {
			return repository.ErrEmailExists
		}
	}
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

// GetUserByID returns a copy of the user.
func (s *Store) GetUserByID(_ context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

// GetUserByEmail returns a copy of the user with the email.
func (s *Store) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

// UpdateUser writes name and email.
func (s *Store) UpdateUser(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[user.ID]
	if !ok {
		return repository.ErrUserNotFound
	}
	for id, u := range s.users {
		if id != user.ID && u.Email == user.Email {
			return repository.ErrEmailExists
		}
	}
	existing.Email = user.Email
	existing.Name = user.Name
	existing.UpdatedAt = user.UpdatedAt
	return nil
}

// ============================================================================
// Companies
// ============================================================================

// CreateCompany stores a company.
func (s *Store) CreateCompany(_ context.Context, c *model.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := copyCompany(c)
	if cp.Signals == nil {
		cp.Signals = []model.Signal{}
	}
	s.companies[c.ID] = cp
	return nil
}

// CountCompanies returns the number of stored companies.
func (s *Store) CountCompanies(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.companies), nil
}

// ListCompanies filters, sorts and pages companies like the SQL query does.
func (s *Store) ListCompanies(_ context.Context, filter model.CompanyFilter) ([]*model.Company, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	search := strings.ToLower(filter.Search)
	matched := make([]*model.Company, 0)
	for _, c := range s.companies {
		if search != "" && !containsAny(search, c.Name, c.Description, c.Summary, c.Keywords) {
			continue
		}
		if filter.Industry != "" && c.Industry != filter.Industry {
			continue
		}
		if filter.Stage != "" && c.Stage != filter.Stage {
			continue
		}
		matched = append(matched, c)
	}

	desc := filter.SortOrder == model.SortDesc
	sort.Slice(matched, func(i, j int) bool {
		// NULLS LAST in both directions
		if filter.SortBy == model.SortByLastEnrichedAt {
			ni, nj := matched[i].LastEnrichedAt == nil, matched[j].LastEnrichedAt == nil
			if ni != nj {
				return nj
			}
		}
		cmp := compareBy(filter.SortBy, matched[i], matched[j])
		if cmp == 0 {
			cmp = strings.Compare(matched[i].ID, matched[j].ID)
		}
		if desc {
			return cmp > 0
		}
		return cmp < 0
	})

	total := len(matched)
	start := filter.Offset()
	if start < 0 || start > total {
		start = total
	}
	end := start
	if filter.Limit > 0 {
		end = start + min(filter.Limit, total-start)
	}

	page := make([]*model.Company, 0, end-start)
	for _, c := range matched[start:end] {
		cp := copyCompany(c)
		cp.Notes, cp.Sources = nil, nil
		page = append(page, cp)
	}
	return page, total, nil
}

// GetCompanyByID returns a copy of the company with related rows.
func (s *Store) GetCompanyByID(_ context.Context, id string) (*model.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.companies[id]
	if !ok {
		return nil, repository.ErrCompanyNotFound
	}
	cp := copyCompany(c)
	if cp.Notes == nil {
		cp.Notes = []model.Note{}
	}
	if cp.Sources == nil {
		cp.Sources = []model.Source{}
	}
	return cp, nil
}

// AddNote appends a note to an existing company.
func (s *Store) AddNote(_ context.Context, note *model.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.companies[note.CompanyID]
	if !ok {
		return repository.ErrCompanyNotFound
	}
	c.Notes = append(c.Notes, *note)
	return nil
}

// ApplyEnrichment mirrors the transactional repository write.
func (s *Store) ApplyEnrichment(_ context.Context, companyID string, e *model.Enrichment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ApplyCalls++
	if s.ApplyErr != nil {
		return s.ApplyErr
	}

	c, ok := s.companies[companyID]
	if !ok {
		return repository.ErrCompanyNotFound
	}

	at := e.EnrichedAt
	if at.IsZero() {
		at = time.Now().UTC()
	}

	setIfPresent(&c.Summary, e.Summary)
	setIfPresent(&c.Description, e.Description)
	setIfPresent(&c.Keywords, e.Keywords)
	setIfPresent(&c.Industry, e.Industry)
	setIfPresent(&c.Location, e.Location)
	c.LastEnrichedAt = &at
	c.UpdatedAt = at

	c.Signals = make([]model.Signal, 0, len(e.Signals))
	for _, in := range e.Signals {
		c.Signals = append(c.Signals, model.Signal{
			ID:        ulid.Make().String(),
			CompanyID: companyID,
			Label:     in.Label,
			Value:     in.Value,
			CreatedAt: at,
		})
	}

	// Newest source first, as the SQL query orders them
	src := model.Source{ID: ulid.Make().String(), CompanyID: companyID, URL: e.SourceURL, ScrapedAt: at}
	c.Sources = append([]model.Source{src}, c.Sources...)
	return nil
}

// ============================================================================
// Lists
// ============================================================================

// CreateList stores a list.
func (s *Store) CreateList(_ context.Context, list *model.List) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *list
	cp.Companies = nil
	s.lists[list.ID] = &cp
	return nil
}

// ListListsByUser returns the user's lists, newest first.
func (s *Store) ListListsByUser(_ context.Context, userID string) ([]*model.List, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*model.List, 0)
	for _, l := range s.lists {
		if l.IsOwnedBy(userID) {
			out = append(out, s.listWithMembers(l))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// GetListForUser returns an owned list or ErrListNotFound.
func (s *Store) GetListForUser(_ context.Context, id, userID string) (*model.List, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.lists[id]
	if !ok || !l.IsOwnedBy(userID) {
		return nil, repository.ErrListNotFound
	}
	return s.listWithMembers(l), nil
}

// AddCompanyToList adds a membership edge once.
func (s *Store) AddCompanyToList(_ context.Context, listID, userID, companyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.lists[listID]
	if !ok || !l.IsOwnedBy(userID) {
		return repository.ErrListNotFound
	}
	if _, ok := s.companies[companyID]; !ok {
		return repository.ErrCompanyNotFound
	}
	for _, id := range s.members[listID] {
		if id == companyID {
			return nil
		}
	}
	s.members[listID] = append(s.members[listID], companyID)
	l.UpdatedAt = time.Now().UTC()
	return nil
}

// RemoveCompanyFromList removes a membership edge if present.
func (s *Store) RemoveCompanyFromList(_ context.Context, listID, userID, companyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.lists[listID]
	if !ok || !l.IsOwnedBy(userID) {
		return repository.ErrListNotFound
	}
	ids := s.members[listID]
	for i, id := range ids {
		if id == companyID {
			s.members[listID] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	l.UpdatedAt = time.Now().UTC()
	return nil
}

// DeleteList deletes an owned list.
func (s *Store) DeleteList(_ context.Context, id, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.lists[id]
	if !ok || !l.IsOwnedBy(userID) {
		return repository.ErrListNotFound
	}
	delete(s.lists, id)
	delete(s.members, id)
	return nil
}

// MemberCount returns the number of membership edges for a list.
func (s *Store) MemberCount(listID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.members[listID])
}

func (s *Store) listWithMembers(l *model.List) *model.List {
	cp := *l
	cp.Companies = make([]*model.Company, 0, len(s.members[l.ID]))
	for _, id := range s.members[l.ID] {
		if c, ok := s.companies[id]; ok {
			member := copyCompany(c)
			member.Signals = []model.Signal{}
			member.Notes, member.Sources = nil, nil
			cp.Companies = append(cp.Companies, member)
		}
	}
	cp.Count.Companies = len(cp.Companies)
	return &cp
}

// ============================================================================
// Saved searches
// ============================================================================

// CreateSavedSearch stores a saved search.
func (s *Store) CreateSavedSearch(_ context.Context, ss *model.SavedSearch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *ss
	s.savedSearches[ss.ID] = &cp
	return nil
}

// ListSavedSearchesByUser returns the user's saved searches, newest first.
func (s *Store) ListSavedSearchesByUser(_ context.Context, userID string) ([]*model.SavedSearch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*model.SavedSearch, 0)
	for _, ss := range s.savedSearches {
		if ss.IsOwnedBy(userID) {
			cp := *ss
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// DeleteSavedSearch deletes an owned saved search.
func (s *Store) DeleteSavedSearch(_ context.Context, id, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ss, ok := s.savedSearches[id]
	if !ok || !ss.IsOwnedBy(userID) {
		return repository.ErrSavedSearchNotFound
	}
	delete(s.savedSearches, id)
	return nil
}

// ============================================================================
// Helpers
// ============================================================================

func copyCompany(c *model.Company) *model.Company {
	cp := *c
	if c.Signals != nil {
		cp.Signals = append([]model.Signal{}, c.Signals...)
	}
	if c.Notes != nil {
		cp.Notes = append([]model.Note{}, c.Notes...)
	}
	if c.Sources != nil {
		cp.Sources = append([]model.Source{}, c.Sources...)
	}
	if c.LastEnrichedAt != nil {
		t := *c.LastEnrichedAt
		cp.LastEnrichedAt = &t
	}
	return &cp
}

func containsAny(needle string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

func compareBy(field model.SortField, a, b *model.Company) int {
	switch field {
	case model.SortByIndustry:
		return strings.Compare(a.Industry, b.Industry)
	case model.SortByStage:
		return strings.Compare(a.Stage, b.Stage)
	case model.SortByLocation:
		return strings.Compare(a.Location, b.Location)
	case model.SortByCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	case model.SortByUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case model.SortByLastEnrichedAt:
		return compareNullableTime(a.LastEnrichedAt, b.LastEnrichedAt)
	default:
		return strings.Compare(a.Name, b.Name)
	}
}

// compareNullableTime orders nil after any time.
func compareNullableTime(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return a.Compare(*b)
	}
}

func setIfPresent(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
