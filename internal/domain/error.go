package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound            = errors.New("entity not found")
	ErrAlreadyExists       = errors.New("entity already exists")
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrResumeInFlight      = errors.New("resume already in flight for this watch")
	ErrNoTaskForWatch      = errors.New("watch has no known task")
	ErrReadDatabaseRow     = errors.New("failed to read database row")
	ErrInvalidExecContext  = errors.New("invalid executor context")
)
