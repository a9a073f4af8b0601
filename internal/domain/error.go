package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrDuplicateJob    = errors.New("job already exists")
	ErrJobFinalized    = errors.New("job already finalized")
	ErrResultNotReady  = errors.New("result not ready")
	ErrInvalidArgument = errors.New("invalid argument")

	// Phase errors; job failures wrap one of these so callers can tell
	// which phase of the pipeline broke.
	ErrTranscription = errors.New("transcription failed")
	ErrGeneration    = errors.New("generation failed")
	ErrStorage       = errors.New("storage failed")
)
