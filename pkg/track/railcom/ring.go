package railcom

import (
	"sync/atomic"

	"github.com/robotalks/track.go/pkg/track"
)

type eventKind uint8

const (
	evArm eventKind = iota + 1
	evPhase
	evByte
)

type event struct {
	kind  eventKind
	b     byte
	flag  bool
	phase Phase
	bb    *track.Bitbuffer
}

const ringSize = 64

// ring is a single producer single consumer event queue. push and pop
// never block or allocate.
type ring struct {
	slots [ringSize]event
	head  uint32 // next slot to pop, owned by the consumer
	tail  uint32 // next slot to push, owned by the producer
}

func (r *ring) push(ev event) bool {
	tail := atomic.LoadUint32(&r.tail)
	if tail-atomic.LoadUint32(&r.head) >= ringSize {
		return false
	}
	r.slots[tail%ringSize] = ev
	atomic.StoreUint32(&r.tail, tail+1)
	return true
}

func (r *ring) pop() (event, bool) {
	head := atomic.LoadUint32(&r.head)
	if head == atomic.LoadUint32(&r.tail) {
		return event{}, false
	}
	ev := r.slots[head%ringSize]
	r.slots[head%ringSize] = event{}
	atomic.StoreUint32(&r.head, head+1)
	return ev, true
}
