package apperr

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestFromStore(t *testing.T) {
	assert.NoError(t, FromStore(nil))
	assert.ErrorIs(t, FromStore(gorm.ErrRecordNotFound), ErrNotFound)
	assert.ErrorIs(t, FromStore(fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey)), ErrConflict)

	other := fmt.Errorf("connection reset")
	assert.Equal(t, other, FromStore(other))
}

func TestStatusCode(t *testing.T) {
	cases := map[error]int{
		ErrUnauthenticated:                       http.StatusUnauthorized,
		ErrForbidden:                             http.StatusForbidden,
		fmt.Errorf("get month: %w", ErrNotFound): http.StatusNotFound,
		ErrMonthClosed:                           http.StatusConflict,
		ErrDuplicateImport:                       http.StatusConflict,
		ErrConfirmationRequired:                  http.StatusBadRequest,
		ErrInvalidInput:                          http.StatusBadRequest,
		fmt.Errorf("boom"):                       http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, StatusCode(err), err.Error())
	}
}
