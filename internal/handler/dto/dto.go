// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import "encoding/json"

// SignupRequest represents the request body for creating an account.
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// LoginRequest represents the request body for logging in.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateMeRequest represents a partial profile update.
// Absent fields are left unchanged.
type UpdateMeRequest struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
}

// AddNoteRequest represents the request body for adding a note to a company.
type AddNoteRequest struct {
	Content string `json:"content"`
}

// CreateListRequest represents the request body for creating a list.
type CreateListRequest struct {
	Name string `json:"name"`
}

// ListMembershipRequest represents the body of list add/remove calls.
type ListMembershipRequest struct {
	ListID    string `json:"listId"`
	CompanyID string `json:"companyId"`
}

// CreateSavedSearchRequest represents the request body for saving a search.
// Filters may be an object or an already-serialized JSON string.
type CreateSavedSearchRequest struct {
	Name    string          `json:"name"`
	Query   string          `json:"query"`
	Filters json.RawMessage `json:"filters,omitempty"`
}

// SuccessResponse acknowledges a delete.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
