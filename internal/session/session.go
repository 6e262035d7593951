// Package session carries the acting user through a request context.
package session

import (
	"context"
)

type contextKey string

const userIDKey contextKey = "user_id"

// WithUser returns a copy of ctx in which userID is the acting user.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserID returns the acting user stored in ctx, or "" when there is none.
func UserID(ctx context.Context) string {
	if userID, ok := ctx.Value(userIDKey).(string); ok {
		return userID
	}
	return ""
}
