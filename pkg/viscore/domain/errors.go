package domain

import "errors"

// The error kinds the system distinguishes. Wrap them with fmt.Errorf("...: %w", Err...) and
// check with errors.Is(..) -- the REST layer maps each kind to an HTTP status code.
var (
	// ErrConfiguration means credentials or other settings are missing or are placeholders.
	ErrConfiguration = errors.New("configuration error")
	// ErrProvider means the vision API failed: HTTP error status, network failure, auth failure.
	ErrProvider = errors.New("provider error")
	// ErrModel means the embedding model is unavailable (e.g. missing weights or helper).
	ErrModel = errors.New("model error")
	// ErrNotFound means the requested test case or result doesn't exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation means the user input is incomplete (e.g. no image or no description on create).
	ErrValidation = errors.New("validation error")
)
