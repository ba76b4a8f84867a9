package comm

import (
	"context"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang/glog"
)

// FrameHandler is called when a frame is received.
type FrameHandler interface {
	HandleFrame(context.Context, *Frame) error
}

// HandleFrameFunc is func type of FrameHandler.
type HandleFrameFunc func(context.Context, *Frame) error

// HandleFrame implements FrameHandler.
func (f HandleFrameFunc) HandleFrame(ctx context.Context, frame *Frame) error {
	return f(ctx, frame)
}

// Link sends and receives frames over a byte stream.
type Link struct {
	ReadWriter  io.ReadWriter
	Handler     FrameHandler
	Timeout     time.Duration
	ReadTimeout bool // set to true if ReadWriter already supports timeout with Read

	lock    sync.Mutex
	timer   <-chan time.Time
	parser  Parser
	dropped uint32
}

// DefaultInterByteTimeout is the default inter-byte timeout.
const DefaultInterByteTimeout = 20 * time.Millisecond

// NewLink creates a Link.
func NewLink(rw io.ReadWriter) *Link {
	return &Link{ReadWriter: rw, Timeout: DefaultInterByteTimeout}
}

// Send sends a frame.
func (l *Link) Send(f *Frame) error {
	l.lock.Lock()
	defer l.lock.Unlock()
	if glog.V(4) {
		glog.Infof("SND %s", f)
	}
	_, err := f.WriteTo(l.ReadWriter)
	return err
}

// Dropped returns the number of frames dropped for bad CRC or timeout.
func (l *Link) Dropped() int {
	return int(atomic.LoadUint32(&l.dropped))
}

// Run processes the link in the background.
func (l *Link) Run(ctx context.Context) error {
	l.parser.Reset()
	if l.ReadTimeout {
		buf := make([]byte, 64)
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-l.timer:
				if err := l.applyParseResult(ctx, l.parser.Timeout()); err != nil {
					return err
				}
				continue
			default:
			}
			n, err := l.ReadWriter.Read(buf)
			if err != nil && !os.IsTimeout(err) {
				return err
			}
			if n == 0 {
				err = l.applyParseResult(ctx, l.parser.Timeout())
			}
			for _, b := range buf[:n] {
				if err = l.applyParseResult(ctx, l.parser.Parse(b)); err != nil {
					break
				}
			}
			if err != nil {
				return err
			}
		}
	}
	byteCh, errCh := make(chan []byte), make(chan error, 1)
	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go l.readLoop(subCtx, byteCh, errCh)
	for {
		select {
		case chunk := <-byteCh:
			for _, b := range chunk {
				if err := l.applyParseResult(ctx, l.parser.Parse(b)); err != nil {
					return err
				}
			}
		case err := <-errCh:
			return err
		case <-ctx.Done():
			return ctx.Err()
		case <-l.timer:
			if err := l.applyParseResult(ctx, l.parser.Timeout()); err != nil {
				return err
			}
		}
	}
}

func (l *Link) readLoop(ctx context.Context, byteCh chan []byte, errCh chan error) {
	for {
		buf := make([]byte, 64)
		n, err := l.ReadWriter.Read(buf)
		if err != nil {
			errCh <- err
			return
		}
		select {
		case byteCh <- buf[:n]:
		case <-ctx.Done():
			return
		}
	}
}

func (l *Link) applyParseResult(ctx context.Context, pr ParseResult) error {
	switch pr.WhatAboutTimer() {
	case TimerRestart:
		l.timer = time.After(l.Timeout)
	case TimerStop:
		l.timer = nil
	}
	if pr.Dropped {
		n := atomic.AddUint32(&l.dropped, 1)
		glog.Warningf("link: frame dropped (%d total)", n)
	}
	if pr.Frame == nil {
		return nil
	}
	if glog.V(4) {
		glog.Infof("RCV %s", pr.Frame)
	}
	if h := l.Handler; h != nil {
		return h.HandleFrame(ctx, pr.Frame)
	}
	return nil
}
