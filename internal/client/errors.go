package client

import (
	"errors"
	"net/http"
)

// MsgConnection is shown when the API cannot be reached at all.
const MsgConnection = "Erreur de connexion"

// APIError is a failed call. Status is zero when the request never got an
// HTTP response.
type APIError struct {
	Status  int                 `json:"-"`
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
	Err     error               `json:"-"`
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *APIError) Unwrap() error { return e.Err }

// IsConnection reports a transport failure.
func (e *APIError) IsConnection() bool { return e.Status == 0 }

// IsUnauthenticated means the session token is missing, expired or revoked;
// the caller should drop the session and log in again.
func (e *APIError) IsUnauthenticated() bool { return e.Status == http.StatusUnauthorized }

func (e *APIError) IsForbidden() bool { return e.Status == http.StatusForbidden }

func (e *APIError) IsNotFound() bool { return e.Status == http.StatusNotFound }

func (e *APIError) IsValidation() bool { return e.Status == http.StatusUnprocessableEntity }

// FieldError returns the first message attached to field, if any.
func (e *APIError) FieldError(field string) string {
	if msgs := e.Errors[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// AsAPIError unwraps err into an *APIError.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
