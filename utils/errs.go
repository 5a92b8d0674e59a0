package utils

import (
	"errors"
	"net/http"

	"gorm.io/gorm"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
	ErrCaptcha    = errors.New("captcha rejected")
)

// StatusFor maps an error chain to the HTTP status it should produce.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrCaptcha):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
