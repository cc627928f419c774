package auth

import "context"

// Authorizer gates the privileged admin/AJAX paths. It is consulted before
// any stock computation runs.
type Authorizer interface {
	CallerMayEditOrders(ctx context.Context) bool
}

type contextKey struct{}

// WithPresentedToken stores the credential the caller presented, normally
// set by the server middleware from the request header.
func WithPresentedToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, contextKey{}, token)
}

func presentedToken(ctx context.Context) string {
	token, _ := ctx.Value(contextKey{}).(string)
	return token
}

// StaticTokenAuthorizer grants order-edit capability to callers presenting
// the configured shared token. An empty configured token denies everyone.
type StaticTokenAuthorizer struct {
	token string
}

func NewStaticTokenAuthorizer(token string) *StaticTokenAuthorizer {
	return &StaticTokenAuthorizer{token: token}
}

func (a *StaticTokenAuthorizer) CallerMayEditOrders(ctx context.Context) bool {
	if a.token == "" {
		return false
	}
	return presentedToken(ctx) == a.token
}
