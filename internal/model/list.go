package model

import "time"

// List is a user-owned collection of companies.
type List struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	UserID    string     `json:"userId"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	Companies []*Company `json:"companies"`
	Count     ListCount  `json:"_count"`
}

// ListCount carries membership totals.
type ListCount struct {
	Companies int `json:"companies"`
}

// IsOwnedBy reports whether the list belongs to the user.
func (l *List) IsOwnedBy(userID string) bool {
	return l != nil && userID != "" && l.UserID == userID
}

// SavedSearch is a stored query a user can re-run.
// Filters holds the serialized filter object exactly as it was accepted.
type SavedSearch struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Query     string    `json:"query"`
	Filters   string    `json:"filters"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsOwnedBy reports whether the saved search belongs to the user.
func (s *SavedSearch) IsOwnedBy(userID string) bool {
	return s != nil && userID != "" && s.UserID == userID
}
