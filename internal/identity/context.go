package identity

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey string

const principalKey ctxKey = "careconnect.principal"

// Principal is the authenticated caller extracted from a verified token.
type Principal struct {
	UserID uuid.UUID
	Role   string
}

// WithPrincipal stores the authenticated caller in context.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// FromContext extracts the authenticated caller if present.
func FromContext(ctx context.Context) (Principal, bool) {
	val := ctx.Value(principalKey)
	if val == nil {
		return Principal{}, false
	}
	p, ok := val.(Principal)
	return p, ok && p.UserID != uuid.Nil
}
