package domain

import (
	"fmt"
)

type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches AppErrors by code so errors.Is works across WithError copies
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    e.Message,
		StatusCode: e.StatusCode,
		Err:        err,
	}
}

// Pre-defined errors
var (
	ErrInternal = &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		StatusCode: 500,
	}

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Invalid request",
		StatusCode: 400,
	}

	ErrUnauthorized = &AppError{
		Code:       "UNAUTHORIZED",
		Message:    "Invalid or missing API key",
		StatusCode: 401,
	}

	ErrForbidden = &AppError{
		Code:       "FORBIDDEN",
		Message:    "Access denied",
		StatusCode: 403,
	}

	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "Resource not found",
		StatusCode: 404,
	}

	ErrTeamNotFound = &AppError{
		Code:       "TEAM_NOT_FOUND",
		Message:    "Team not found",
		StatusCode: 404,
	}

	ErrTeamInactive = &AppError{
		Code:       "TEAM_INACTIVE",
		Message:    "Team account is inactive",
		StatusCode: 403,
	}

	ErrConnectionNotFound = &AppError{
		Code:       "CONNECTION_NOT_FOUND",
		Message:    "Connection not found",
		StatusCode: 404,
	}

	ErrConnectionUnavailable = &AppError{
		Code:       "CONNECTION_UNAVAILABLE",
		Message:    "Connection is not available",
		StatusCode: 403,
	}

	ErrConnectionTypeImmutable = &AppError{
		Code:       "CONNECTION_TYPE_IMMUTABLE",
		Message:    "Connection type cannot be changed after creation",
		StatusCode: 422,
	}

	ErrWidgetNotSupported = &AppError{
		Code:       "WIDGET_NOT_SUPPORTED",
		Message:    "Connection type does not support widget tokens",
		StatusCode: 422,
	}

	// ErrInvalidWidgetToken covers malformed, tampered and expired tokens.
	// The distinction is never exposed to the caller.
	ErrInvalidWidgetToken = &AppError{
		Code:       "INVALID_WIDGET_TOKEN",
		Message:    "Invalid or expired widget token",
		StatusCode: 401,
	}

	ErrAPIKeyNotFound = &AppError{
		Code:       "API_KEY_NOT_FOUND",
		Message:    "API key not found",
		StatusCode: 404,
	}

	ErrAPIKeyRevoked = &AppError{
		Code:       "API_KEY_REVOKED",
		Message:    "API key has been revoked",
		StatusCode: 401,
	}

	ErrValidationFailed = &AppError{
		Code:       "VALIDATION_FAILED",
		Message:    "Request validation failed",
		StatusCode: 422,
	}

	ErrRateLimitExceeded = &AppError{
		Code:       "RATE_LIMIT_EXCEEDED",
		Message:    "Too many requests, please slow down",
		StatusCode: 429,
	}
)
