package comm

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/golang/glog"

	fx "github.com/robotalks/track.go/pkg/framework"
	"github.com/robotalks/track.go/pkg/l1"
	"github.com/robotalks/track.go/pkg/l1/msgs"
)

// Server serves commands received over a Pipe and publishes events. Each
// command runs in its own goroutine, so a slow command does not hold up
// the others.
type Server struct {
	pipe     Pipe
	lock     sync.RWMutex
	handlers map[uint32]l1.CommandHandler
	running  sync.WaitGroup
}

// Init initializes the Server with defaults.
func (s *Server) Init(rw PacketReadWriter) {
	s.pipe.ReadWriter = rw
	s.pipe.Handler = msgs.HandleTypedMsgFunc(s.handleTypedMsg)
	s.handlers = make(map[uint32]l1.CommandHandler)
}

// Handle registers the handler for commands of the type.
func (s *Server) Handle(typeID uint32, h l1.CommandHandler) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.handlers[typeID] = h
}

// SendEvent implements Publisher.
func (s *Server) SendEvent(ctx context.Context, msg fx.Message) error {
	return s.pipe.SendEventMsg(msg)
}

// Run implements Runnable. It returns after all running commands are done.
func (s *Server) Run(ctx context.Context) error {
	err := s.pipe.Run(ctx)
	s.running.Wait()
	return err
}

func (s *Server) handleTypedMsg(ctx context.Context, msg fx.Message, typed *msgs.Typed) error {
	if !typed.IsCommand() || typed.IsReply() {
		glog.V(2).Infof("server: ignored %08x", typed.TypeId)
		return nil
	}
	cmd := &command{seq: typed.Sequence, msg: msg, pipe: &s.pipe}
	s.lock.RLock()
	h := s.handlers[typed.TypeId]
	s.lock.RUnlock()
	if h == nil {
		return cmd.Done(msgs.NewCommandErr(msgs.ErrUnsupportedCommand))
	}
	s.running.Add(1)
	go func() {
		defer s.running.Done()
		h.HandleCommand(ctx, cmd)
	}()
	return nil
}

type command struct {
	seq  uint32
	msg  fx.Message
	pipe *Pipe
	done int32
}

func (c *command) Msg() fx.Message {
	return c.msg
}

func (c *command) Done(msg fx.Message) error {
	if !atomic.CompareAndSwapInt32(&c.done, 0, 1) {
		return ErrCommandDone
	}
	return c.pipe.SendCommandMsg(msg, c.seq)
}
