package tracker

import "errors"

var (
	// ErrMissingUserID indicates a required user id was absent.
	ErrMissingUserID = errors.New("user id is required")
	// ErrNotFound indicates the requested task does not exist for the user.
	ErrNotFound = errors.New("task not found")
	// ErrInvalidInput indicates the provided data failed validation.
	ErrInvalidInput = errors.New("invalid input")
)
