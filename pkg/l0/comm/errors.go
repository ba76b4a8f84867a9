package comm

import (
	"errors"
	"fmt"
)

var (
	// ErrFrameTooLong indicates the frame data exceeds 255 bytes.
	ErrFrameTooLong = errors.New("frame too long")
	// ErrNoSamples indicates the generator stopped streaming current
	// samples.
	ErrNoSamples = errors.New("no current samples")
)

// FrameError reports a malformed frame from the generator.
type FrameError struct {
	Code byte
	Len  int
}

// Error implements error.
func (e *FrameError) Error() string {
	return fmt.Sprintf("malformed frame %02x with %d bytes", e.Code, e.Len)
}
