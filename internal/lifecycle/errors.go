package lifecycle

import (
	"errors"
	"fmt"

	"github.com/prasenjit/go-mocksync/internal/models"
)

var (
	// ErrNotMocked is returned by Disable when the file's metadata names no mock
	ErrNotMocked = errors.New("file has no mock")
	// ErrSessionNotFound is returned when no session is open for a document
	ErrSessionNotFound = errors.New("session not found")
)

// StepError reports the step a sequence stopped at. Steps completed before it
// are not rolled back.
type StepError struct {
	Op    string
	State models.SessionState
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s stopped while %s: %v", e.Op, e.State, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
