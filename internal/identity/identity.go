// Package identity carries the verified caller identity through the request
// context. Authentication itself is owned by the upstream identity provider;
// this service only consumes the result.
package identity

import (
	"context"
	"strings"
)

type userIDKey struct{}

// WithUserID stores the verified user id in the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, strings.TrimSpace(userID))
}

// UserIDFromContext returns the verified user id, if present.
func UserIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	userID, ok := ctx.Value(userIDKey{}).(string)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}
