// Package progtrack provides CV programming on the main track (POM) and on
// the programming track (direct mode).
//
// POM requests only submit a packet and return, the reply arrives through
// the callback. Direct mode access is synchronous: the programmer powers
// the programming track, waits for a stable idle current and reads the
// decoder's answers as current pulses.
package progtrack

import (
	"context"
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/track.go/pkg/track"
)

// Submitter queues packets for transmission.
type Submitter interface {
	Enqueue(p *track.Packet) error
}

// Programmer accesses decoder CVs.
type Programmer struct {
	Factory *track.Factory
	Queue   Submitter
	Track   Track
	Timing  Timing

	lock sync.Mutex
}

// New creates a Programmer.
func New(factory *track.Factory, queue Submitter, tr Track) *Programmer {
	if factory == nil {
		factory = track.NewFactory(nil)
	}
	return &Programmer{Factory: factory, Queue: queue, Track: tr, Timing: DefaultTiming}
}

func (p *Programmer) submit(pkt *track.Packet, err error, cb track.ReplyFunc, token interface{}) error {
	if err != nil {
		return err
	}
	if cb == nil {
		return track.ErrNoCallback
	}
	return p.Queue.Enqueue(pkt.WithReply(cb, token))
}

// POMRead requests a CV on the main. cb receives the reply.
func (p *Programmer) POMRead(addr int, format track.Format, cv int, cb track.ReplyFunc, token interface{}) error {
	pkt, err := p.Factory.POMRead(addr, format, cv)
	return p.submit(pkt, err, cb, token)
}

// POMWrite writes a CV on the main. cb receives the echo of the decoder.
func (p *Programmer) POMWrite(addr int, format track.Format, cv int, val byte, cb track.ReplyFunc, token interface{}) error {
	pkt, err := p.Factory.POMWrite(addr, format, cv, val)
	return p.submit(pkt, err, cb, token)
}

// POMWriteBit writes a CV bit on the main.
func (p *Programmer) POMWriteBit(addr int, format track.Format, cv, bit int, val bool, cb track.ReplyFunc, token interface{}) error {
	pkt, err := p.Factory.POMWriteBit(addr, format, cv, bit, val)
	return p.submit(pkt, err, cb, token)
}

// XPOMRead requests four consecutive CVs on the main.
func (p *Programmer) XPOMRead(addr int, format track.Format, cv int, cb track.ReplyFunc, token interface{}) error {
	pkt, err := p.Factory.XPOMRead(addr, format, cv)
	return p.submit(pkt, err, cb, token)
}

// XPOMWrite writes up to four consecutive CVs on the main.
func (p *Programmer) XPOMWrite(addr int, format track.Format, cv int, data []byte, cb track.ReplyFunc, token interface{}) error {
	pkt, err := p.Factory.XPOMWrite(addr, format, cv, data)
	return p.submit(pkt, err, cb, token)
}

// AccPOMRead requests a CV of an accessory decoder.
func (p *Programmer) AccPOMRead(addr int, cv int, cb track.ReplyFunc, token interface{}) error {
	pkt, err := p.Factory.AccPOMRead(addr, cv)
	return p.submit(pkt, err, cb, token)
}

// AccPOMWrite writes a CV of an accessory decoder.
func (p *Programmer) AccPOMWrite(addr int, cv int, val byte, cb track.ReplyFunc, token interface{}) error {
	pkt, err := p.Factory.AccPOMWrite(addr, cv, val)
	return p.submit(pkt, err, cb, token)
}

// ask sends a direct mode packet and reports whether the decoder
// acknowledged it.
func (p *Programmer) ask(ctx context.Context, pkt *track.Packet, err error, base int) (bool, error) {
	if err != nil {
		return false, err
	}
	if err = p.Queue.Enqueue(pkt); err != nil {
		return false, err
	}
	ack, err := waitAck(ctx, p.Track, p.Timing, base)
	if glog.V(4) {
		glog.Infof("progtrack: %s ack=%v", pkt, ack)
	}
	return ack, err
}

// cycle runs op with the programming track powered, repeating it with a
// fresh power cycle until it succeeds or PowerCycles are spent. The output
// returns to its previous mode afterwards.
func (p *Programmer) cycle(ctx context.Context, op func(base int) (bool, error)) error {
	p.lock.Lock()
	defer p.lock.Unlock()
	prev := p.Track.Power()
	defer func() {
		if err := p.Track.SetPower(prev); err != nil {
			glog.Warningf("progtrack: restore power %s: %v", prev, err)
		}
	}()
	lastErr := ErrNoAck
	for n := 0; n < p.Timing.PowerCycles; n++ {
		if n > 0 {
			if err := p.Track.SetPower(track.PowerOff); err != nil {
				return err
			}
		}
		if err := p.Track.SetPower(track.PowerProg); err != nil {
			return err
		}
		base, err := WaitStableCurrent(ctx, p.Track, p.Timing)
		if err == ErrShortCircuit {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			glog.Warningf("progtrack: cycle %d: %v", n+1, err)
			lastErr = err
			continue
		}
		ok, err := op(base)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		lastErr = ErrNoAck
	}
	return lastErr
}

// VerifyByte reports whether the CV holds val.
func (p *Programmer) VerifyByte(ctx context.Context, cv int, val byte) (bool, error) {
	var acked bool
	err := p.cycle(ctx, func(base int) (bool, error) {
		pkt, err := p.Factory.DirectVerifyByte(cv, val)
		acked, err = p.ask(ctx, pkt, err, base)
		return true, err
	})
	return acked, err
}

// VerifyBit reports whether the CV bit has the value.
func (p *Programmer) VerifyBit(ctx context.Context, cv, bit int, val bool) (bool, error) {
	var acked bool
	err := p.cycle(ctx, func(base int) (bool, error) {
		pkt, err := p.Factory.DirectVerifyBit(cv, bit, val)
		acked, err = p.ask(ctx, pkt, err, base)
		return true, err
	})
	return acked, err
}

// WriteByte writes the CV and verifies the written value.
func (p *Programmer) WriteByte(ctx context.Context, cv int, val byte) error {
	return p.cycle(ctx, func(base int) (bool, error) {
		pkt, err := p.Factory.DirectWriteByte(cv, val)
		if _, err = p.ask(ctx, pkt, err, base); err != nil {
			return false, err
		}
		pkt, err = p.Factory.DirectVerifyByte(cv, val)
		return p.ask(ctx, pkt, err, base)
	})
}

// WriteBit writes a CV bit and verifies it.
func (p *Programmer) WriteBit(ctx context.Context, cv, bit int, val bool) error {
	return p.cycle(ctx, func(base int) (bool, error) {
		pkt, err := p.Factory.DirectWriteBit(cv, bit, val)
		if _, err = p.ask(ctx, pkt, err, base); err != nil {
			return false, err
		}
		pkt, err = p.Factory.DirectVerifyBit(cv, bit, val)
		return p.ask(ctx, pkt, err, base)
	})
}

// ReadByte reads the CV bit by bit and confirms the result with a byte
// verify.
func (p *Programmer) ReadByte(ctx context.Context, cv int) (byte, error) {
	var val byte
	err := p.cycle(ctx, func(base int) (bool, error) {
		val = 0
		for bit := 0; bit < 8; bit++ {
			pkt, err := p.Factory.DirectVerifyBit(cv, bit, true)
			set, err := p.ask(ctx, pkt, err, base)
			if err != nil {
				return false, err
			}
			if set {
				val |= 1 << uint(bit)
			}
		}
		pkt, err := p.Factory.DirectVerifyByte(cv, val)
		return p.ask(ctx, pkt, err, base)
	})
	return val, err
}
