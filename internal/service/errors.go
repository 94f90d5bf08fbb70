package service

import "errors"

var (
	// ErrNotReady is returned by mutations issued before Load completes.
	ErrNotReady = errors.New("planner is not loaded yet")

	// ErrConfirmationRequired is returned by DeleteAll when the user has
	// asked to confirm destructive deletes and no confirmation was given.
	ErrConfirmationRequired = errors.New("confirmation required")

	// ErrAIUnavailable is returned by GenerateTasks when no extractor is wired.
	ErrAIUnavailable = errors.New("task generation is not configured")
)
