package shared

import "context"

type claimsContextKey struct{}

// Claims carries the verified token identity for the current request.
type Claims struct {
	Subject  string
	Username string
	Role     string
}

// ContextWithClaims stores verified token claims in context.
func ContextWithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey{}, claims)
}

// ClaimsFromContext extracts verified token claims from context. Returns nil
// when the request did not pass through the auth middleware.
func ClaimsFromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(claimsContextKey{}).(*Claims)
	return claims
}
