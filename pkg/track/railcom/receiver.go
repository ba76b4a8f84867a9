// Package railcom decodes RailCom and m3 reply windows.
//
// The producer side (Arm, Phase, BusAckCheck, Byte) is called from the
// goroutine servicing the signal generator link. It only pushes events
// into a fixed ring and never blocks or allocates. The window state
// machine runs on the executor (Run), which also invokes reply callbacks.
package railcom

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/track.go/pkg/track"
)

// Timing holds the programmed phase durations used when the executor
// times windows itself instead of receiving phase markers.
type Timing struct {
	Delay   time.Duration
	Window1 time.Duration
	Window2 time.Duration
}

// DefaultTiming follows the RailCom cutout layout.
var DefaultTiming = Timing{
	Delay:   80 * time.Microsecond,
	Window1: 97 * time.Microsecond,
	Window2: 261 * time.Microsecond,
}

func (t Timing) enabled() bool {
	return t.Delay > 0 || t.Window1 > 0 || t.Window2 > 0
}

// BusAckFunc receives the bus acknowledge sample taken at the end of a
// window.
type BusAckFunc func(bb *track.Bitbuffer, ack bool)

// Receiver is the reply window decoder.
type Receiver struct {
	// Timing, when set, lets Run step the window phases on its own.
	Timing Timing
	// OnBusAck is invoked with each bus acknowledge sample.
	OnBusAck BusAckFunc

	ring ring
	lost uint32
	wake chan struct{}
	win  window
}

// NewReceiver creates a Receiver.
func NewReceiver() *Receiver {
	return &Receiver{wake: make(chan struct{}, 1)}
}

func (r *Receiver) signal() {
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// Arm opens the reply window for a transmitted buffer. Buffers that do
// not expect a reply are ignored. If the event ring is full the buffer
// resolves with MsgTimeout right away.
func (r *Receiver) Arm(bb *track.Bitbuffer) {
	if bb == nil || !bb.ExpectsReply() {
		return
	}
	if !r.ring.push(event{kind: evArm, bb: bb}) {
		bb.Deliver(track.DecoderReply{Msg: track.MsgTimeout})
		return
	}
	r.signal()
}

// Phase reports a timer phase change of the current window.
func (r *Receiver) Phase(p Phase) {
	if !r.ring.push(event{kind: evPhase, phase: p}) {
		atomic.StoreUint32(&r.lost, 1)
	}
	r.signal()
}

// BusAckCheck ends the current window with the bus acknowledge sample.
func (r *Receiver) BusAckCheck(ack bool) {
	if !r.ring.push(event{kind: evPhase, phase: PhaseBusAckCheck, flag: ack}) {
		atomic.StoreUint32(&r.lost, 1)
	}
	r.signal()
}

// Byte reports one received byte. uartErr marks framing, parity or noise
// errors.
func (r *Receiver) Byte(b byte, uartErr bool) {
	if !r.ring.push(event{kind: evByte, b: b, flag: uartErr}) {
		atomic.StoreUint32(&r.lost, 1)
	}
	r.signal()
}

// Drain processes all pending events. It must only be called from the
// executor goroutine.
func (r *Receiver) Drain() {
	for {
		ev, ok := r.ring.pop()
		if !ok {
			return
		}
		r.handle(ev)
	}
}

func (r *Receiver) handle(ev event) {
	if atomic.SwapUint32(&r.lost, 0) != 0 {
		r.win.garbled = true
	}
	switch ev.kind {
	case evArm:
		if r.win.active() {
			// the previous window never reached its bus-ack check
			r.endWindow(false)
		}
		r.win.reset(ev.bb)
		if glog.V(4) {
			glog.Infof("railcom: arm %s %s", ev.bb.Cmd, ev.bb.ReadBack)
		}
	case evPhase:
		if r.win.bb == nil {
			return
		}
		if ev.phase == PhaseBusAckCheck {
			r.busAck(ev.flag)
			return
		}
		r.win.phase = ev.phase
	case evByte:
		r.win.received(ev.b, ev.flag)
	}
}

// busAck closes one cutout. The window ends there unless its buffer has
// more repetitions to collect from.
func (r *Receiver) busAck(ack bool) {
	r.win.cutouts++
	if !r.win.spans() {
		r.endWindow(ack)
		return
	}
	bb := r.win.bb
	r.win.nextCutout()
	if glog.V(4) {
		glog.Infof("railcom: cutout %d/%d of %s", r.win.cutouts, bb.Repeat, bb.Cmd)
	}
	if r.OnBusAck != nil {
		r.OnBusAck(bb, ack)
	}
}

func (r *Receiver) endWindow(ack bool) {
	bb := r.win.bb
	r.win.phase = PhaseBusAckCheck
	r.win.finish()
	if glog.V(4) {
		glog.Infof("railcom: window %s done", bb.Cmd)
	}
	r.win.bb = nil
	if r.OnBusAck != nil {
		r.OnBusAck(bb, ack)
	}
}

// advance steps a self-timed window and returns the duration of the next
// phase, zero when the window ended.
func (r *Receiver) advance() time.Duration {
	switch r.win.phase {
	case PhaseDelay:
		r.win.phase = PhaseWindow1
		return r.Timing.Window1
	case PhaseWindow1:
		r.win.phase = PhaseWindow2
		return r.Timing.Window2
	}
	r.busAck(false)
	if r.win.bb != nil {
		r.win.phase = PhaseDelay
		return r.Timing.Delay
	}
	return 0
}

func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(d)
}

// Run executes the window state machine until ctx is done. A window still
// open at that point resolves with MsgTimeout.
func (r *Receiver) Run(ctx context.Context) error {
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	var timed *track.Bitbuffer
	for {
		r.Drain()
		if r.Timing.enabled() && r.win.bb != nil && r.win.bb != timed {
			timed = r.win.bb
			resetTimer(timer, r.Timing.Delay)
		}
		select {
		case <-r.wake:
		case <-timer.C:
			r.Drain()
			if timed != nil && r.win.bb == timed {
				if d := r.advance(); d > 0 {
					timer.Reset(d)
				}
			}
		case <-ctx.Done():
			r.Drain()
			if r.win.active() {
				r.win.fireMsg(track.MsgTimeout)
			}
			r.win.bb = nil
			return ctx.Err()
		}
	}
}
