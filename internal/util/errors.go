package util

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrEmailRegistered  = errors.New("email already registered")
	ErrPermissionDenied = errors.New("permission denied")
	ErrNoteNotFound     = errors.New("note not found")
	ErrToastNotFound    = errors.New("toast not found")
	ErrBadgeNotFound    = errors.New("badge not found")
	ErrNotFriends       = errors.New("users are not friends")

	// ErrNoContent: the week window holds no notes, nothing to aggregate.
	ErrNoContent = errors.New("no notes in week window")

	// ErrDuplicatePeriod: a toast for the (user, week) pair already exists and
	// the caller explicitly asked for a fresh insert.
	ErrDuplicatePeriod = errors.New("toast already exists for this week")

	// ErrAlreadyAwarded: badge insert lost the unique-index race. Absorbed by
	// the evaluator, never returned to callers.
	ErrAlreadyAwarded = errors.New("badge already awarded")
)

// Generation stages for GenerationError.
const (
	StageText   = "text"
	StageSpeech = "speech"
)

// GenerationError wraps an upstream text-generation or speech-synthesis
// failure. No partial toast state is persisted when one is returned.
type GenerationError struct {
	Stage string
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s generation failed: %v", e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

func NewGenerationError(stage string, err error) *GenerationError {
	return &GenerationError{Stage: stage, Err: err}
}

// IsGenerationError reports whether err is (or wraps) a GenerationError.
func IsGenerationError(err error) bool {
	var ge *GenerationError
	return errors.As(err, &ge)
}
