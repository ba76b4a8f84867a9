// Package queue implements the signal queue the waveform generator drains.
package queue

import (
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/track.go/pkg/track"
)

// RefreshSource provides the live locos refreshed while the queue is idle.
type RefreshSource interface {
	// NextLive returns the first live loco with an address above after,
	// wrapping around to the lowest one.
	NextLive(after int) (track.LocoState, bool)
}

// Defaults.
const (
	DefaultLockTimeout = 5 * time.Millisecond
	DefaultNOPInterval = 500 * time.Millisecond
)

type node struct {
	pkt  *track.Packet
	next *node
}

type refreshCursor struct {
	loco   track.LocoState
	valid  bool
	groups []track.Command
	step   int
}

// Queue is the FIFO of pending packets. Every mutator gives up after
// LockTimeout and drops the operation instead of blocking.
type Queue struct {
	Factory     *track.Factory
	Source      RefreshSource
	LockTimeout time.Duration
	NOPInterval time.Duration

	lock chan struct{}
	head *node
	tail *node
	size int

	cursor     refreshCursor
	lastAccNOP time.Time
	lastExtNOP time.Time
	now        func() time.Time
}

// New creates a Queue.
func New(factory *track.Factory, source RefreshSource) *Queue {
	if factory == nil {
		factory = track.NewFactory(nil)
	}
	return &Queue{
		Factory:     factory,
		Source:      source,
		LockTimeout: DefaultLockTimeout,
		NOPInterval: DefaultNOPInterval,
		lock:        make(chan struct{}, 1),
		now:         time.Now,
	}
}

func (q *Queue) acquire() bool {
	select {
	case q.lock <- struct{}{}:
		return true
	default:
	}
	timer := time.NewTimer(q.LockTimeout)
	defer timer.Stop()
	select {
	case q.lock <- struct{}{}:
		return true
	case <-timer.C:
		return false
	}
}

func (q *Queue) release() {
	<-q.lock
}

func (q *Queue) append(p *track.Packet) {
	n := &node{pkt: p}
	if q.tail == nil {
		q.head = n
	} else {
		q.tail.next = n
	}
	q.tail = n
	q.size++
}

func (q *Queue) prepend(p *track.Packet) {
	n := &node{pkt: p, next: q.head}
	q.head = n
	if q.tail == nil {
		q.tail = n
	}
	q.size++
}

// idleAfter reports whether a DCC idle packet must follow p: slow 14 step
// decoders miss a speed packet that is directly followed by another one.
func (q *Queue) idleAfter(p *track.Packet) bool {
	return p.Format == track.FormatDCC14 && p.Cmd == track.CmdSpeed
}

// Enqueue appends a packet.
func (q *Queue) Enqueue(p *track.Packet) error {
	if p == nil {
		return ErrNilPacket
	}
	if !q.acquire() {
		glog.Warningf("queue: dropped %s: lock timeout", p)
		return ErrBusy
	}
	defer q.release()
	q.append(p)
	if q.idleAfter(p) {
		q.append(q.Factory.Idle())
	}
	if glog.V(4) {
		glog.Infof("queue: +%s (%d)", p, q.size)
	}
	return nil
}

// EnqueueUpdate appends a packet unless a packet for the same address,
// format and command is still pending, in which case that packet takes
// over the new value and repeat count.
func (q *Queue) EnqueueUpdate(p *track.Packet) error {
	if p == nil {
		return ErrNilPacket
	}
	if !q.acquire() {
		glog.Warningf("queue: dropped update %s: lock timeout", p)
		return ErrBusy
	}
	defer q.release()
	for n := q.head; n != nil; n = n.next {
		if n.pkt.SameTarget(p) {
			n.pkt.Value, n.pkt.CV, n.pkt.Repeat = p.Value, p.CV, p.Repeat
			if p.OnReply != nil {
				n.pkt.OnReply, n.pkt.Token = p.OnReply, p.Token
			}
			if glog.V(4) {
				glog.Infof("queue: ~%s", n.pkt)
			}
			return nil
		}
	}
	q.append(p)
	if q.idleAfter(p) {
		q.append(q.Factory.Idle())
	}
	return nil
}

// insertPacket puts p at the head without looking for conflicts. It is
// only used for packets which must go out right after the current one.
func (q *Queue) insertPacket(p *track.Packet) {
	if !q.acquire() {
		glog.Warningf("queue: dropped insert %s: lock timeout", p)
		return
	}
	q.prepend(p)
	q.release()
}

// PushBack returns a dequeued packet to the head of the queue. The packet
// is dropped if the lock is not available.
func (q *Queue) PushBack(p *track.Packet) {
	if p == nil {
		return
	}
	if !q.acquire() {
		glog.Warningf("queue: dropped pushback %s: lock timeout", p)
		return
	}
	q.prepend(p)
	q.release()
}

// Flush removes all pending packets.
func (q *Queue) Flush() {
	if !q.acquire() {
		glog.Warning("queue: flush skipped: lock timeout")
		return
	}
	q.head, q.tail, q.size = nil, nil, 0
	q.release()
}

// IsIdle indicates no packet is pending.
func (q *Queue) IsIdle() bool {
	if !q.acquire() {
		return false
	}
	defer q.release()
	return q.head == nil
}

// Len returns the number of pending packets.
func (q *Queue) Len() int {
	if !q.acquire() {
		return -1
	}
	defer q.release()
	return q.size
}

// GetPacket pops the head packet. With an empty queue and allowRefresh it
// synthesizes a refresh packet instead. It returns nil when there is
// nothing to send.
func (q *Queue) GetPacket(allowRefresh bool) *track.Packet {
	if !q.acquire() {
		glog.Warning("queue: get skipped: lock timeout")
		return nil
	}
	var p *track.Packet
	if n := q.head; n != nil {
		if q.head = n.next; q.head == nil {
			q.tail = nil
		}
		q.size--
		p = n.pkt
	}
	q.release()

	if p == nil && allowRefresh {
		p = q.refresh()
	}
	if p != nil {
		q.splitSpeed(p)
	}
	return p
}

// splitSpeed queues the second half of a MM2-27A half step.
func (q *Queue) splitSpeed(p *track.Packet) {
	if p.Format != track.FormatMM2_27A || p.Cmd != track.CmdSpeed {
		return
	}
	speed, _ := track.IntOf(p.Value).Speed()
	if speed < 2 || speed%2 != 0 {
		return
	}
	c, err := q.Factory.GenPacket(p.Addr, p.Format, track.CmdMMSpeedCorrection)
	if err != nil {
		return
	}
	c.Value = p.Value
	q.insertPacket(c)
}

func (q *Queue) nopDue(last *time.Time) bool {
	if q.NOPInterval <= 0 {
		return false
	}
	now := q.now()
	if now.Sub(*last) < q.NOPInterval {
		return false
	}
	*last = now
	return true
}

func (q *Queue) refresh() *track.Packet {
	if q.nopDue(&q.lastAccNOP) {
		if p, err := q.Factory.AccessoryNOP(track.AccessoryBCAddr, false); err == nil {
			return p
		}
	}
	if q.nopDue(&q.lastExtNOP) {
		if p, err := q.Factory.AccessoryNOP(track.AccessoryBCAddr, true); err == nil {
			return p
		}
	}
	if q.Source == nil {
		return nil
	}
	// A loco failing to produce packets is skipped; the loop is bounded so a
	// source of only broken locos cannot spin.
	for attempts := 0; attempts < 4; attempts++ {
		if !q.cursor.valid || q.cursor.step > len(q.cursor.groups) {
			after := 0
			if q.cursor.valid {
				after = q.cursor.loco.Addr
			}
			loco, ok := q.Source.NextLive(after)
			if !ok {
				q.cursor.valid = false
				return nil
			}
			q.cursor = refreshCursor{
				loco:   loco,
				valid:  true,
				groups: track.FunctionGroups(loco.Format, loco.MaxFunc),
			}
		}
		p, err := q.refreshPacket()
		q.cursor.step++
		if err == nil {
			return p
		}
		if glog.V(2) {
			glog.Infof("queue: refresh loco %d: %v", q.cursor.loco.Addr, err)
		}
	}
	return nil
}

func (q *Queue) refreshPacket() (*track.Packet, error) {
	l := &q.cursor.loco
	if q.cursor.step == 0 {
		return q.Factory.Speed(l.Addr, l.Format, l.Speed, l.Forward)
	}
	cmd := q.cursor.groups[q.cursor.step-1]
	var bits uint32
	switch cmd {
	case track.CmdMMFunc1, track.CmdMMFunc2, track.CmdMMFunc3, track.CmdMMFunc4:
		n := int(cmd-track.CmdMMFunc1) + 1
		bits = l.Funcs.Group(n, n)
	default:
		first, last, _ := cmd.FunctionRange()
		bits = l.Funcs.Group(first, last)
	}
	return q.Factory.Function(l.Addr, l.Format, cmd, bits)
}
