package queue

import "errors"

var (
	// ErrBusy indicates the queue lock could not be taken in time and the
	// operation was dropped.
	ErrBusy = errors.New("queue busy")
	// ErrNilPacket indicates a nil packet was submitted.
	ErrNilPacket = errors.New("nil packet")
)
