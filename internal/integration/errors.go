// Package integration holds the error taxonomy shared by every resource route
// and the conversion of those errors into HTTP status codes and EEDM payloads.
package integration

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/eedm-api/student-services/models"
	"github.com/lib/pq"
)

const (
	notSupportedCode        = "Invalid.Operation"
	notSupportedMessage     = "Invalid operation for alternate view of resource."
	notSupportedDescription = "The requested operation is not supported."
)

// KeyNotFoundError is returned when a requested record does not exist.
type KeyNotFoundError struct {
	Resource string
	ID       string
}

func (e *KeyNotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("no %s record found", e.Resource)
	}
	return fmt.Sprintf("no %s was found for guid %s", e.Resource, e.ID)
}

// PermissionsError is returned when the caller lacks a permission. Anonymous
// callers are reported as unauthorized instead of forbidden.
type PermissionsError struct {
	Permission string
	Anonymous  bool
}

func (e *PermissionsError) Error() string {
	if e.Anonymous {
		return "user is not authenticated"
	}
	return fmt.Sprintf("user does not have permission %s", e.Permission)
}

// ArgumentError signals invalid caller input. Code defaults to Validation.Exception.
type ArgumentError struct {
	Argument string
	Message  string
	Code     string
}

func (e *ArgumentError) Error() string {
	if e.Argument == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Argument, e.Message)
}

// RepositoryError wraps a failure raised by the data store.
type RepositoryError struct {
	Err error
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("repository error: %v", e.Err)
}

func (e *RepositoryError) Unwrap() error {
	return e.Err
}

// Error is the error returned to EEDM callers. It carries the HTTP status and
// the list of integration errors written into the response body.
type Error struct {
	Status int
	Errors []models.IntegrationError
}

func (e *Error) Error() string {
	if len(e.Errors) == 0 {
		return http.StatusText(e.Status)
	}
	return e.Errors[0].Message
}

// Payload returns the EEDM error body for the error.
func (e *Error) Payload() models.IntegrationErrorResponse {
	return models.IntegrationErrorResponse{Errors: e.Errors}
}

// New builds an Error with a single entry.
func New(status int, code, message, description string) *Error {
	return &Error{
		Status: status,
		Errors: []models.IntegrationError{{
			Code:        code,
			Message:     message,
			Description: description,
		}},
	}
}

// NotSupported returns the error used for every mutation a resource does not allow.
func NotSupported() *Error {
	return New(http.StatusMethodNotAllowed, notSupportedCode, notSupportedMessage, notSupportedDescription)
}

// NotFound is a convenience constructor for KeyNotFoundError.
func NotFound(resource, id string) error {
	return &KeyNotFoundError{Resource: resource, ID: id}
}

// MissingID is returned when a route that needs an identifier receives none.
func MissingID() error {
	return &ArgumentError{Argument: "id", Message: "must provide an id", Code: "Missing.Request.ID"}
}

// Convert maps any error onto the EEDM error model.
func Convert(err error) *Error {
	var (
		integrationErr *Error
		notFoundErr    *KeyNotFoundError
		permErr        *PermissionsError
		argErr         *ArgumentError
		repoErr        *RepositoryError
		pqErr          *pq.Error
	)

	switch {
	case err == nil:
		return nil
	case errors.As(err, &integrationErr):
		return integrationErr
	case errors.As(err, &notFoundErr):
		out := New(http.StatusNotFound, "GUID.Not.Found", notFoundErr.Error(), "")
		out.Errors[0].GUID = notFoundErr.ID
		return out
	case errors.As(err, &permErr):
		if permErr.Anonymous {
			return New(http.StatusUnauthorized, "Access.Denied", permErr.Error(), "")
		}
		return New(http.StatusForbidden, "Access.Denied", permErr.Error(), "")
	case errors.As(err, &argErr):
		code := argErr.Code
		if code == "" {
			code = "Validation.Exception"
		}
		return New(http.StatusBadRequest, code, argErr.Error(), "")
	case errors.As(err, &pqErr):
		return New(http.StatusBadRequest, "Global.Internal.Error", pqErr.Message, pqErr.Code.Name())
	case errors.As(err, &repoErr):
		return New(http.StatusBadRequest, "Global.Internal.Error", repoErr.Err.Error(), "")
	default:
		return New(http.StatusBadRequest, "Global.Internal.Error", err.Error(), "")
	}
}
