package player

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConnected is returned when a guild has no voice connection
	ErrNotConnected = errors.New("not connected to a voice channel")
	// ErrNothingPlaying is returned by controls that need an active stream
	ErrNothingPlaying = errors.New("nothing is playing")
	// ErrShutdown is returned once the controller has been shut down
	ErrShutdown = errors.New("player is shut down")
	// ErrStale is returned when a resolution finished after the guild was stopped or left
	ErrStale = errors.New("request was cancelled by a stop or leave")
)

// ConnectionError is a failure to join or move within voice. It is reported, never retried
type ConnectionError struct {
	ChannelID string
	Err       error
}

func (e *ConnectionError) Error() string {
	if e.ChannelID == "" {
		return fmt.Sprintf("voice connection failed: %v", e.Err)
	}
	return fmt.Sprintf("voice connection to %s failed: %v", e.ChannelID, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// UserInputError is an invalid argument supplied by the user
type UserInputError struct {
	Message string
}

func (e *UserInputError) Error() string {
	return e.Message
}
