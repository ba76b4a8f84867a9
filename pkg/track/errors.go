package track

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfRange indicates a parameter outside the representable domain.
	ErrOutOfRange = errors.New("parameter out of range")
	// ErrNoCallback indicates a reply-expecting request without a callback.
	ErrNoCallback = errors.New("missing reply callback")
)

// FormatError is returned when a command is not available in a format.
type FormatError struct {
	Cmd    Command
	Format Format
}

// Error implements error.
func (e *FormatError) Error() string {
	return fmt.Sprintf("command %s not supported in format %s", e.Cmd, e.Format)
}
