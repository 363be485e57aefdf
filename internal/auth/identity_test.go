package auth

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"household-budget-backend/internal/apperr"
)

func TestRequireUser(t *testing.T) {
	_, err := RequireUser(context.Background())
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	_, err = RequireUser(WithUser(context.Background(), uuid.Nil))
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	id := uuid.New()
	got, err := RequireUser(WithUser(context.Background(), id))
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestHeaderAuthenticator(t *testing.T) {
	var a HeaderAuthenticator

	req := httptest.NewRequest("GET", "/", nil)
	_, err := a.Authenticate(req)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	req.Header.Set(HeaderUserID, "not-a-uuid")
	_, err = a.Authenticate(req)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	id := uuid.New()
	req.Header.Set(HeaderUserID, id.String())
	got, err := a.Authenticate(req)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	_, ok := BearerToken(req)
	assert.False(t, ok)

	req.Header.Set("Authorization", "bearer abc.def")
	tok, ok := BearerToken(req)
	assert.True(t, ok)
	assert.Equal(t, "abc.def", tok)
}
