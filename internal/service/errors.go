package service

import "errors"

// Common service errors - sentinel errors used across service implementations.
// These errors represent common conditions that callers may want to check for
// with errors.Is().
//
// Error handling principles:
// 1. Service methods return sentinel errors for expected error conditions
// 2. Unexpected errors are wrapped with fmt.Errorf and %w
// 3. Callers use errors.Is/errors.As to check for specific error conditions
// 4. The API layer maps service errors to appropriate HTTP status codes
var (
	// ErrEmailTaken indicates an account with the email already exists.
	// API layer should map this to HTTP 409 Conflict.
	ErrEmailTaken = errors.New("email already registered")

	// ErrUserNotFound indicates the user does not exist.
	// API layer should map this to HTTP 404 Not Found.
	ErrUserNotFound = errors.New("user not found")

	// ErrTopicNotFound indicates the topic does not exist.
	// API layer should map this to HTTP 404 Not Found.
	ErrTopicNotFound = errors.New("topic not found")

	// ErrAlreadySubscribed indicates the user is already subscribed to the topic.
	// API layer should map this to HTTP 409 Conflict.
	ErrAlreadySubscribed = errors.New("already subscribed to topic")

	// ErrSubscriptionNotFound indicates the subscription does not exist.
	// API layer should map this to HTTP 404 Not Found.
	ErrSubscriptionNotFound = errors.New("subscription not found")
)
