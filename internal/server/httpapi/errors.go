package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/userkeeper/internal/common"
)

// inputError is a client input problem reported with its own message.
type inputError struct {
	err error
}

func (e *inputError) Error() string { return e.err.Error() }
func (e *inputError) Unwrap() error { return common.ErrValidation }

func invalidInput(err error) error { return &inputError{err: err} }

// errorStatus maps an error onto a status, an error code and whether its
// message may be shown to the client.
func errorStatus(err error) (status int, code string, public bool) {
	switch {
	case errors.Is(err, errMalformedJSON):
		return http.StatusBadRequest, "malformed_json", true
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized, "invalid_credentials", true
	case errors.Is(err, common.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthenticated", true
	case errors.Is(err, common.ErrForbidden):
		return http.StatusForbidden, "forbidden", true
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, "not_found", true
	case errors.Is(err, common.ErrAlreadyExists):
		return http.StatusConflict, "already_exists", true
	case errors.Is(err, common.ErrInvalidIdentifier), errors.Is(err, common.ErrValidation):
		return http.StatusUnprocessableEntity, "validation_failed", true
	}
	return http.StatusInternalServerError, "internal_error", false
}

// fail writes err to the client. Errors without a mapping are logged and
// rendered as a generic 500.
func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code, public := errorStatus(err)
	if !public {
		h.logger.Error(r.Context(), "request failed",
			"request_id", requestIDFrom(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"error", err)
		writeError(w, status, code, "internal server error")
		return
	}
	writeError(w, status, code, err.Error())
}
