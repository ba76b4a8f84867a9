package comm

import "errors"

var (
	// ErrNotCommand indicates the message sent as command is an event.
	ErrNotCommand = errors.New("message is not a command")
	// ErrNotEvent indicates the message sent as event is a command.
	ErrNotEvent = errors.New("message is not an event")
	// ErrClosed indicates the connection is closed.
	ErrClosed = errors.New("connection closed")
)

// ErrCommandDone indicates a command was already answered.
var ErrCommandDone = errors.New("command already done")
