package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/looplearn/loop-api/internal/api/shared"
	"github.com/looplearn/loop-api/internal/domain"
	"github.com/looplearn/loop-api/internal/service"
	"github.com/looplearn/loop-api/internal/service/auth"
	"github.com/looplearn/loop-api/internal/service/evaluation"
	"github.com/looplearn/loop-api/internal/service/feed"
	"github.com/looplearn/loop-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	// Not found errors
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrTopicNotFound),
		errors.Is(err, service.ErrSubscriptionNotFound),
		errors.Is(err, evaluation.ErrSubtopicNotFound),
		errors.Is(err, feed.ErrFeedNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrAlreadySubscribed),
		errors.Is(err, evaluation.ErrEvaluationConflict):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, evaluation.ErrInvalidCycle),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Special cases
	case errors.Is(err, feed.ErrNothingToStudy):
		return http.StatusNoContent

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid):
		return "Invalid token"

	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid credentials"

	case errors.Is(err, domain.ErrUnauthorized):
		return "Unauthorized"

	// Not found errors
	case errors.Is(err, service.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, service.ErrTopicNotFound):
		return "Topic not found"

	case errors.Is(err, service.ErrSubscriptionNotFound):
		return "Subscription not found"

	case errors.Is(err, evaluation.ErrSubtopicNotFound):
		return "Subtopic not found"

	case errors.Is(err, feed.ErrFeedNotFound):
		return "Feed not found"

	// Conflict errors
	case errors.Is(err, service.ErrEmailTaken):
		return "Email already exists"

	case errors.Is(err, service.ErrAlreadySubscribed):
		return "Already subscribed to topic"

	case errors.Is(err, evaluation.ErrEvaluationConflict):
		return "A concurrent submission was processed first, retry with fresh state"

	// Bad request errors
	case errors.Is(err, evaluation.ErrInvalidCycle),
		errors.Is(err, domain.ErrValidation):
		return "Invalid evaluation cycle data"

	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid identifier"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	// Nothing to study is handled separately with StatusNoContent

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError maps the error to a status code and a safe message and
// writes the response, logging the full (redacted) error. An explicit
// fallbackMessage overrides the generic message for 5xx responses.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallbackMessage string) {
	statusCode := MapErrorToStatusCode(err)

	if statusCode == http.StatusNoContent {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	safeMessage := GetSafeErrorMessage(err)
	if statusCode == http.StatusInternalServerError && fallbackMessage != "" {
		safeMessage = fallbackMessage
	}

	shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	// Example format: "Key: 'LoginRequest.Email' Error:Field validation for 'Email' failed on the 'required' tag"
	if strings.Contains(errMsg, "Field validation") {
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}

				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	case "gte":
		return "value too small"
	default:
		return "validation failed"
	}
}
