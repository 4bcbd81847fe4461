package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors the domain packages wrap their failures onto. RespondError
// resolves the wrapped sentinel to a status code, so handlers stay free of
// per-error switch statements.
var (
	ErrNotFound   = errors.New("not found")
	ErrDuplicate  = errors.New("conflict")
	ErrValidation = errors.New("invalid request")
)

// Mapped reports whether RespondError has a specific status for err.
// Handlers log errors that fall through to the 500 response.
func Mapped(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrDuplicate) || errors.Is(err, ErrValidation)
}

// RespondError maps sentinel-wrapped errors to problem-details responses.
// Callers see a single human-readable message; no structured error codes
// cross this boundary.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrDuplicate):
		Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
