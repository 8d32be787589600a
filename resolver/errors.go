package resolver

import (
	"errors"
	"fmt"
)

// ErrNoPlayableFormat is returned when metadata was found but no audio stream could be picked
var ErrNoPlayableFormat = errors.New("no playable audio format")

// ErrNoVideoID is returned when a reference carries no recognizable video identifier
var ErrNoVideoID = errors.New("no video id in reference")

// ExtractionError is returned once every stage of the ladder has failed
type ExtractionError struct {
	Reference string
	Cause     error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("could not extract %q: %v", e.Reference, e.Cause)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}
