package contextutil

import "context"

const identityKey contextKey = "identity"

// WithIdentity returns a context carrying the requesting identity.
func WithIdentity(ctx context.Context, identity string) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFromContext extracts the requesting identity from context.
// Nil means no identity is known, which callers treat as an unscoped
// request.
func IdentityFromContext(ctx context.Context) *string {
	if v := ctx.Value(identityKey); v != nil {
		if id, ok := v.(string); ok && id != "" {
			return &id
		}
	}
	return nil
}
