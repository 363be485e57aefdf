// Package auth carries the authenticated household member through a
// context.Context and resolves it from incoming requests.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"household-budget-backend/internal/apperr"
)

type contextKey string

const userKey contextKey = "auth_user"

// HeaderUserID is the header a trusted gateway sets in header mode.
const HeaderUserID = "X-User-ID"

// WithUser returns a copy of ctx carrying userID as the current user.
func WithUser(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userKey, userID)
}

// UserFromContext returns the current user, if any.
func UserFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userKey).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

// RequireUser returns the current user or ErrUnauthenticated. Every store
// call goes through it before touching the database.
func RequireUser(ctx context.Context) (uuid.UUID, error) {
	id, ok := UserFromContext(ctx)
	if !ok {
		return uuid.Nil, apperr.ErrUnauthenticated
	}
	return id, nil
}

// Authenticator resolves the user behind a request.
type Authenticator interface {
	Authenticate(r *http.Request) (uuid.UUID, error)
}

// HeaderAuthenticator trusts the X-User-ID header. Only use it behind a
// gateway that strips client supplied values.
type HeaderAuthenticator struct{}

func (HeaderAuthenticator) Authenticate(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(r.Header.Get(HeaderUserID))
	if raw == "" {
		return uuid.Nil, apperr.ErrUnauthenticated
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse %s: %w", HeaderUserID, apperr.ErrUnauthenticated)
	}
	return id, nil
}

// BearerToken extracts the token from an Authorization header.
func BearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(h[len(prefix):]), true
}
