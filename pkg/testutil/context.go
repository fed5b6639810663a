package testutil

import (
	"net/http"

	"ballotbox/pkg/requestcontext"
)

// WithIdentity attaches a caller identity to the request context, as the
// auth middleware would after validating a token.
func WithIdentity(req *http.Request, userID, identityCode, name string) *http.Request {
	ctx := requestcontext.WithIdentity(req.Context(), requestcontext.Identity{
		UserID:       userID,
		IdentityCode: identityCode,
		Name:         name,
	})
	return req.WithContext(ctx)
}

// WithBearer sets the Authorization header for a bearer token.
func WithBearer(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}
