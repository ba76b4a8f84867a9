// Package l1 defines the station bus: a command station serves commands
// and publishes events, clients discover stations and send commands.
package l1

import (
	"context"

	fx "github.com/robotalks/track.go/pkg/framework"
)

// Publisher sends events to the bus.
type Publisher interface {
	// SendEvent sends an event to the clients.
	SendEvent(context.Context, fx.Message) error
}

// Command represents a received command to be processed.
type Command interface {
	Msg() fx.Message
	Done(fx.Message) error
}

// CommandHandler processes a command. It must call Done on the command
// exactly once.
type CommandHandler interface {
	HandleCommand(context.Context, Command)
}

// HandleCommandFunc is func form of CommandHandler.
type HandleCommandFunc func(context.Context, Command)

// HandleCommand implements CommandHandler.
func (f HandleCommandFunc) HandleCommand(ctx context.Context, cmd Command) {
	f(ctx, cmd)
}

// StationType is the type segment of station topics.
const StationType = "station"

// StationRef is a reference to a command station.
type StationRef struct {
	// ID is unique ID of the station.
	ID string
}

// Name retrieves the name from ref.
func (r StationRef) Name() string {
	return StationType + "/" + r.ID
}

// IsValid indicates StationRef is valid.
func (r StationRef) IsValid() bool {
	return r.ID != ""
}

// StationMeta provides metadata of a station.
type StationMeta struct {
	Description string            `json:"description,omitempty"`
	CID         uint16            `json:"cid,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
}

// StationInfo provides information of a station.
type StationInfo struct {
	Ref  StationRef
	Meta StationMeta
}

// Connector is used by clients to connect to a station.
type Connector interface {
	// Discover enumerates stations online.
	Discover(context.Context) ([]StationInfo, error)
	// Connect connects to the specified station.
	Connect(context.Context, StationRef) (StationConn, error)
}

// StationConn is the connection to a station.
type StationConn interface {
	// DoCommand executes a command.
	DoCommand(fx.Message) CommandFuture
	// Events delivers the events published by the station.
	Events() <-chan fx.Message
}

// Result represents result of a command.
type Result struct {
	Msg fx.Message
	Err error
}

// CommandFuture is the future of sent command.
type CommandFuture interface {
	ResultChan() <-chan Result
}

// Wait waits for the result of a command.
func Wait(ctx context.Context, f CommandFuture) (fx.Message, error) {
	select {
	case r := <-f.ResultChan():
		return r.Msg, r.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
