// Package framework provides the glue shared by all runnable parts of a
// station: naming, background runners and the bus message abstraction.
package framework

import (
	"context"
)

// Named is an abstraction for things with a name.
type Named interface {
	Name() string
}

// Runnable defines a generic interface for background runners.
type Runnable interface {
	Run(context.Context) error
}

// RunFunc is the func form of Runnable.
type RunFunc func(context.Context) error

// Run implements Runnable.
func (f RunFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// Message defines the abstract message exchanged on the station bus.
type Message interface {
	// NewMessage creates an empty message.
	NewMessage() Message
}
