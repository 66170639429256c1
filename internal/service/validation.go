package service

import (
	"strings"
	"unicode/utf8"
)

// Validation limits.
const (
	// MaxEmailLength is the longest accepted address (RFC 5321 path limit).
	MaxEmailLength = 320

	// MaxPasswordLength bounds hashing cost for hostile input.
	MaxPasswordLength = 1024

	// MaxNameLength applies to user, list and saved search names.
	MaxNameLength = 200

	// MaxNoteLength is the longest accepted note.
	MaxNoteLength = 10000
)

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail performs a structural check on a normalized address.
func ValidateEmail(email string) error {
	if email == "" || len(email) > MaxEmailLength {
		return ErrInvalidEmail
	}
	if strings.ContainsAny(email, " \t\r\n") {
		return ErrInvalidEmail
	}

	at := strings.LastIndex(email, "@")
	if at < 1 || at == len(email)-1 {
		return ErrInvalidEmail
	}
	return nil
}

// ValidatePassword checks the password is present and bounded.
func ValidatePassword(password string) error {
	if password == "" {
		return ErrCredentialsRequired
	}
	if len(password) > MaxPasswordLength {
		return ErrPasswordTooLong
	}
	return nil
}

// ValidateName checks an optional display name.
func ValidateName(name string) error {
	if utf8.RuneCountInString(name) > MaxNameLength {
		return ErrNameTooLong
	}
	return nil
}

// ValidateRequiredName checks a trimmed, required resource name.
func ValidateRequiredName(name string) error {
	if name == "" {
		return ErrNameRequired
	}
	return ValidateName(name)
}

// ValidateNoteContent checks trimmed note content.
func ValidateNoteContent(content string) error {
	if content == "" {
		return ErrContentRequired
	}
	if utf8.RuneCountInString(content) > MaxNoteLength {
		return ErrContentTooLong
	}
	return nil
}
