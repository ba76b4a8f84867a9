package comm

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// chanReadWriter stands in for the generator end of the link. Bytes sent
// on in are read by the host, frames written by the host show up on out.
type chanReadWriter struct {
	in      chan []byte
	out     chan *Frame
	timeout bool

	lock   sync.Mutex
	parser Parser
}

func newChanReadWriter(timeout bool) *chanReadWriter {
	return &chanReadWriter{
		in:      make(chan []byte, 16),
		out:     make(chan *Frame, 64),
		timeout: timeout,
	}
}

func (c *chanReadWriter) Read(p []byte) (int, error) {
	if c.timeout {
		select {
		case chunk := <-c.in:
			return copy(p, chunk), nil
		case <-time.After(time.Millisecond):
			return 0, nil
		}
	}
	chunk, ok := <-c.in
	if !ok {
		return 0, io.EOF
	}
	return copy(p, chunk), nil
}

func (c *chanReadWriter) Write(p []byte) (int, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	for _, b := range p {
		if pr := c.parser.Parse(b); pr.Frame != nil {
			c.out <- pr.Frame
		}
	}
	return len(p), nil
}

func (c *chanReadWriter) send(code byte, data ...byte) {
	f := &Frame{Code: code, Data: data}
	c.in <- f.Bytes()
}

func (c *chanReadWriter) expect(t *testing.T) *Frame {
	select {
	case f := <-c.out:
		return f
	case <-time.After(5 * time.Second):
		require.Fail(t, "no frame from host")
	}
	return nil
}

type linkTestEnv struct {
	t      *testing.T
	rw     *chanReadWriter
	link   *Link
	frames chan *Frame
	cancel func()
	done   chan error
}

func newLinkTestEnv(t *testing.T, readTimeout bool) *linkTestEnv {
	env := &linkTestEnv{
		t:      t,
		rw:     newChanReadWriter(readTimeout),
		frames: make(chan *Frame, 16),
		done:   make(chan error, 1),
	}
	env.link = NewLink(env.rw)
	env.link.ReadTimeout = readTimeout
	env.link.Handler = HandleFrameFunc(func(ctx context.Context, f *Frame) error {
		env.frames <- f
		return nil
	})
	return env
}

func (e *linkTestEnv) start() *linkTestEnv {
	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	go func() { e.done <- e.link.Run(ctx) }()
	return e
}

func (e *linkTestEnv) stop() {
	e.cancel()
	require.ErrorIs(e.t, <-e.done, context.Canceled)
}

func (e *linkTestEnv) received() *Frame {
	select {
	case f := <-e.frames:
		return f
	case <-time.After(5 * time.Second):
		require.Fail(e.t, "no frame received")
	}
	return nil
}

func TestLinkReceive(t *testing.T) {
	for _, readTimeout := range []bool{false, true} {
		env := newLinkTestEnv(t, readTimeout).start()
		env.rw.send(CodeReady, 1)
		f := env.received()
		require.Equal(t, CodeReady, f.Code)
		require.Equal(t, []byte{1}, f.Data)

		// two frames in one chunk
		b := append((&Frame{Code: CodeBusAck, Data: []byte{0}}).Bytes(), (&Frame{Code: CodeReady}).Bytes()...)
		env.rw.in <- b
		require.Equal(t, CodeBusAck, env.received().Code)
		require.Equal(t, CodeReady, env.received().Code)
		env.stop()
	}
}

func TestLinkSend(t *testing.T) {
	env := newLinkTestEnv(t, true)
	require.NoError(t, env.link.Send(&Frame{Code: CodePower, Data: []byte{1}}))
	f := env.rw.expect(t)
	require.Equal(t, CodePower, f.Code)
	require.Equal(t, []byte{1}, f.Data)
	require.ErrorIs(t, env.link.Send(&Frame{Code: CodeTransmit, Data: make([]byte, 256)}), ErrFrameTooLong)
}

func TestLinkDropsPartialFrame(t *testing.T) {
	for _, readTimeout := range []bool{false, true} {
		env := newLinkTestEnv(t, readTimeout)
		env.link.Timeout = 5 * time.Millisecond
		env.start()
		env.rw.in <- []byte{frameSOF, CodeCurrent, 4, 0}
		require.Eventually(t, func() bool { return env.link.Dropped() == 1 }, 5*time.Second, time.Millisecond)
		env.rw.send(CodeCurrent, 0, 20)
		f := env.received()
		require.Equal(t, []byte{0, 20}, f.Data)
		env.stop()
	}
}

func TestLinkHandlerError(t *testing.T) {
	env := newLinkTestEnv(t, false)
	env.link.Handler = HandleFrameFunc(func(ctx context.Context, f *Frame) error {
		return &FrameError{Code: f.Code}
	})
	env.start()
	env.rw.send(CodeWindow)
	var fe *FrameError
	require.ErrorAs(t, <-env.done, &fe)
	require.Equal(t, CodeWindow, fe.Code)
}

func TestLinkReadError(t *testing.T) {
	env := newLinkTestEnv(t, false).start()
	close(env.rw.in)
	require.ErrorIs(t, <-env.done, io.EOF)
}
