// Package apperrors defines the typed failures the core services return.
// Handlers translate them to HTTP statuses; services stay transport-free.
package apperrors

import (
	"errors"
	"net/http"
)

// ValidationError signals bad input shape or range.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidation returns a ValidationError with the given message.
func NewValidation(msg string) error { return &ValidationError{Message: msg} }

// InsufficientFundsError signals that an operation would take a balance negative.
type InsufficientFundsError struct {
	Message string
}

func (e *InsufficientFundsError) Error() string { return e.Message }

// NewInsufficientFunds returns an InsufficientFundsError with the given message.
func NewInsufficientFunds(msg string) error { return &InsufficientFundsError{Message: msg} }

// PlanLimitExceededError signals that a user hit a plan's stake cap.
type PlanLimitExceededError struct {
	Message string
}

func (e *PlanLimitExceededError) Error() string { return e.Message }

// NewPlanLimitExceeded returns a PlanLimitExceededError with the given message.
func NewPlanLimitExceeded(msg string) error { return &PlanLimitExceededError{Message: msg} }

// ConflictError signals a duplicate identity (username, email, referral code).
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// NewConflict returns a ConflictError with the given message.
func NewConflict(msg string) error { return &ConflictError{Message: msg} }

// NotFoundError signals a missing user, stake, plan or transaction.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// NewNotFound returns a NotFoundError with the given message.
func NewNotFound(msg string) error { return &NotFoundError{Message: msg} }

// AuthorizationError signals a non-admin invoking an admin-only operation.
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string { return e.Message }

// NewAuthorization returns an AuthorizationError with the given message.
func NewAuthorization(msg string) error { return &AuthorizationError{Message: msg} }

// HTTPStatus maps an error to the status code its kind should surface as.
// Unknown errors map to 500.
func HTTPStatus(err error) int {
	var (
		validation   *ValidationError
		insufficient *InsufficientFundsError
		planLimit    *PlanLimitExceededError
		conflict     *ConflictError
		notFound     *NotFoundError
		authz        *AuthorizationError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &insufficient):
		return http.StatusUnprocessableEntity
	case errors.As(err, &planLimit):
		return http.StatusUnprocessableEntity
	case errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &authz):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
