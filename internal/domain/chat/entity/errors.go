package entity

import "errors"

// Domain errors for chat analytics
var (
	// ErrInsufficientData means the batch does not contain two participants
	// with at least one message each. It is a normal result variant, not a
	// failure: callers must branch on it and never render a report from it.
	ErrInsufficientData = errors.New("chat has insufficient data for analysis")

	ErrChatNotFound  = errors.New("chat not found")
	ErrEmptyHistory  = errors.New("chat history is empty")
	ErrUnauthorized  = errors.New("unauthorized to perform this action")
	ErrUnknownLocale = errors.New("unknown report locale")
)
