package auth

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/supabase-community/supabase-go"

	"household-budget-backend/internal/apperr"
)

// SupabaseAuthenticator verifies bearer tokens against Supabase auth.
type SupabaseAuthenticator struct {
	client *supabase.Client
}

func NewSupabaseAuthenticator(client *supabase.Client) *SupabaseAuthenticator {
	return &SupabaseAuthenticator{client: client}
}

func (a *SupabaseAuthenticator) Authenticate(r *http.Request) (uuid.UUID, error) {
	token, ok := BearerToken(r)
	if !ok {
		return uuid.Nil, apperr.ErrUnauthenticated
	}
	user, err := a.client.Auth.WithToken(token).GetUser()
	if err != nil {
		return uuid.Nil, fmt.Errorf("verify token: %v: %w", err, apperr.ErrUnauthenticated)
	}
	if user == nil || user.ID == uuid.Nil {
		return uuid.Nil, apperr.ErrUnauthenticated
	}
	return user.ID, nil
}
