// Package auth provides password hashing, bearer tokens, and request identity.
package auth

import "context"

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const userIDKey contextKey = "user_id"

// ContextWithUserID stores the authenticated user ID in the context.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the authenticated user ID.
// Returns empty string if not authenticated.
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// MustUserIDFromContext returns the user ID and panics when it is missing.
// Use only behind the auth middleware.
func MustUserIDFromContext(ctx context.Context) string {
	id := UserIDFromContext(ctx)
	if id == "" {
		panic("user id not found in context - ensure auth middleware is applied")
	}
	return id
}
