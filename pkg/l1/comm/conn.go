package comm

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/track.go/pkg/framework"
	"github.com/robotalks/track.go/pkg/l1"
	"github.com/robotalks/track.go/pkg/l1/msgs"
)

// Conn provides base implementation for l1.StationConn using Pipe.
type Conn struct {
	Expiration time.Duration

	pipe     Pipe
	seq      uint32
	commands list.List
	seqMap   map[uint32]*commandFuture
	events   chan fx.Message
	closed   bool
	lock     sync.Mutex
}

// DefaultCommandExpiration is the default expiration expecting a result.
const DefaultCommandExpiration = 1 * time.Second

const eventBuffer = 64

// Init initializes Conn with defaults.
func (c *Conn) Init(rw PacketReadWriter) {
	c.Expiration = DefaultCommandExpiration
	c.pipe.ReadWriter = rw
	c.pipe.Handler = msgs.HandleTypedMsgFunc(c.handleTypedMsg)
	c.seqMap = make(map[uint32]*commandFuture)
	c.events = make(chan fx.Message, eventBuffer)
}

// DoCommand implements StationConn.
func (c *Conn) DoCommand(msg fx.Message) l1.CommandFuture {
	c.lock.Lock()
	defer c.lock.Unlock()
	f := &commandFuture{result: make(chan l1.Result, 1)}
	if c.closed {
		f.result <- l1.Result{Err: ErrClosed}
		return f
	}
	c.seq++
	if c.seq == 0 {
		c.seq++
	}
	f.seq, f.expireAt = c.seq, time.Now().Add(c.Expiration)
	if err := c.pipe.SendCommandMsg(msg, f.seq); err != nil {
		f.result <- l1.Result{Err: err}
		return f
	}
	f.elem = c.commands.PushBack(f)
	c.seqMap[f.seq] = f
	return f
}

// Events implements StationConn. The chan is closed when Run returns.
func (c *Conn) Events() <-chan fx.Message {
	return c.events
}

// Run implements Runnable.
func (c *Conn) Run(ctx context.Context) error {
	purgeCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go c.purgeLoop(purgeCtx)
	err := c.pipe.Run(ctx)
	c.lock.Lock()
	c.closed = true
	for elem := c.commands.Front(); elem != nil; elem = elem.Next() {
		f := elem.Value.(*commandFuture)
		f.complete(l1.Result{Err: ErrClosed})
	}
	c.commands.Init()
	c.seqMap = make(map[uint32]*commandFuture)
	c.lock.Unlock()
	close(c.events)
	return err
}

func (c *Conn) handleTypedMsg(ctx context.Context, msg fx.Message, typed *msgs.Typed) error {
	if typed.IsEvent() {
		select {
		case c.events <- msg:
		default:
			glog.Warningf("conn: event %08x dropped", typed.TypeId)
		}
		return nil
	}
	c.lock.Lock()
	defer c.lock.Unlock()
	f := c.seqMap[typed.Sequence]
	if f == nil {
		return nil
	}
	c.commands.Remove(f.elem)
	delete(c.seqMap, typed.Sequence)
	result := l1.Result{Msg: msg}
	if cmdErr, ok := msg.(*msgs.CommandErr); ok {
		result.Err = cmdErr
	}
	f.complete(result)
	return nil
}

func (c *Conn) purgeLoop(ctx context.Context) {
	interval := c.Expiration / 4
	if interval < 10*time.Millisecond {
		interval = 10 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			c.purgeExpired(now)
		}
	}
}

func (c *Conn) purgeExpired(now time.Time) {
	c.lock.Lock()
	defer c.lock.Unlock()
	for c.commands.Len() > 0 {
		elem := c.commands.Front()
		f := elem.Value.(*commandFuture)
		if f.expireAt.After(now) {
			break
		}
		c.commands.Remove(elem)
		delete(c.seqMap, f.seq)
		f.complete(l1.Result{Err: context.DeadlineExceeded})
	}
}

type commandFuture struct {
	seq      uint32
	expireAt time.Time
	elem     *list.Element
	result   chan l1.Result
}

func (c *commandFuture) ResultChan() <-chan l1.Result {
	return c.result
}

func (c *commandFuture) complete(r l1.Result) {
	c.result <- r
	close(c.result)
}
