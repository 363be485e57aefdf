// Package apperr holds the sentinel errors shared by the data-access layer,
// the services and the HTTP handlers.
package apperr

import (
	"errors"
	"net/http"

	"gorm.io/gorm"
)

var (
	ErrUnauthenticated      = errors.New("user not authenticated")
	ErrForbidden            = errors.New("forbidden")
	ErrNotFound             = errors.New("not found")
	ErrConflict             = errors.New("conflict")
	ErrMonthClosed          = errors.New("budget month is closed")
	ErrConfirmationRequired = errors.New("explicit confirmation required")
	ErrDuplicateImport      = errors.New("file already imported")
	ErrInvalidInput         = errors.New("invalid input")
)

// FromStore translates driver level errors into the sentinels above.
// Anything it does not recognise is returned unchanged.
func FromStore(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrConflict
	}
	return err
}

// StatusCode maps an error to the HTTP status the API answers with.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict), errors.Is(err, ErrMonthClosed), errors.Is(err, ErrDuplicateImport):
		return http.StatusConflict
	case errors.Is(err, ErrConfirmationRequired), errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
