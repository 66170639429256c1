// Package service provides business logic for the application.
package service

import "errors"

// Service errors.
var (
	// Auth
	ErrCredentialsRequired = errors.New("email and password are required")
	ErrInvalidEmail        = errors.New("invalid email address")
	ErrPasswordTooLong     = errors.New("password too long")
	ErrNameTooLong         = errors.New("name too long")
	ErrUserExists          = errors.New("user already exists")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailInUse          = errors.New("email already in use")

	// Companies
	ErrCompanyNotFound   = errors.New("company not found")
	ErrContentRequired   = errors.New("content is required")
	ErrContentTooLong    = errors.New("content too long")
	ErrCompanyIDRequired = errors.New("companyId is required")

	// Lists and saved searches
	ErrNameRequired        = errors.New("name is required")
	ErrListNotFound        = errors.New("list not found")
	ErrSavedSearchNotFound = errors.New("saved search not found")
)
