// Package apperr maps service and authorization errors onto HTTP responses.
package apperr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/terraconstructs/sandaran/internal/auth"
	"github.com/terraconstructs/sandaran/internal/filter"
	"github.com/terraconstructs/sandaran/internal/repository"
	"github.com/terraconstructs/sandaran/internal/services/iam"
	"github.com/terraconstructs/sandaran/internal/services/validation"
)

// Kinds for domain and infrastructure failures.
const (
	KindConflict            = "CONFLICT"
	KindInsufficientBalance = "INSUFFICIENT_BALANCE"
	KindInvalidState        = "INVALID_STATE"
	KindValidationFailed    = "VALIDATION_FAILED"
	KindRateLimited         = "RATE_LIMITED"
	KindInternal            = "INTERNAL"
)

// ErrRateLimited is returned when a client exceeded its request budget.
var ErrRateLimited = errors.New("too many requests, try again later")

// Body is the JSON error envelope.
type Body struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Classify returns the status code and envelope for err. Unknown errors map
// to 500 with a generic message.
func Classify(err error) (int, Body) {
	var authErr *auth.Error
	var validationErr *validation.Error

	switch {
	case errors.As(err, &authErr):
		return authErr.Kind.HTTPStatus(), Body{Error: string(authErr.Kind), Message: authErr.Message}
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, Body{Error: KindValidationFailed, Message: validationErr.Error()}
	case errors.Is(err, validation.ErrValidationFailed),
		errors.Is(err, filter.ErrInvalidExpression),
		errors.Is(err, iam.ErrWeakPassword):
		return http.StatusBadRequest, Body{Error: KindValidationFailed, Message: err.Error()}
	case errors.Is(err, iam.ErrInvalidCredentials):
		return http.StatusUnauthorized, Body{Error: string(auth.KindUnauthenticated), Message: "Invalid email or password"}
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, Body{Error: string(auth.KindNotFound), Message: auth.ErrNotFound.Message}
	case errors.Is(err, repository.ErrConflict):
		return http.StatusConflict, Body{Error: KindConflict, Message: err.Error()}
	case errors.Is(err, repository.ErrInsufficientBalance):
		return http.StatusBadRequest, Body{Error: KindInsufficientBalance, Message: "Insufficient emergency fund balance"}
	case errors.Is(err, repository.ErrInvalidState):
		return http.StatusConflict, Body{Error: KindInvalidState, Message: err.Error()}
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, Body{Error: KindRateLimited, Message: err.Error()}
	default:
		return http.StatusInternalServerError, Body{Error: KindInternal, Message: "Internal server error"}
	}
}

// Write sends the error envelope for err. Internal errors are logged with
// their cause; everything else is a client error and is not.
func Write(w http.ResponseWriter, r *http.Request, logger logrus.FieldLogger, err error) {
	status, body := Classify(err)
	if status == http.StatusInternalServerError && logger != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Error("request failed")
	}
	WriteJSON(w, status, body)
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}
