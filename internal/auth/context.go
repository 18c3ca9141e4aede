package auth

import "context"

type contextKey string

const authorizationTokenKey contextKey = "authorizationToken"

// ContextWithToken returns a new context carrying the caller's authorization
// token. The token is opaque pass-through for this service: it is handed to
// collaborators unchanged and never interpreted here.
func ContextWithToken(ctx context.Context, token string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, authorizationTokenKey, token)
}

// TokenFromContext retrieves the authorization token from the context, if any.
func TokenFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	token, ok := ctx.Value(authorizationTokenKey).(string)
	if !ok || token == "" {
		return "", false
	}
	return token, true
}
