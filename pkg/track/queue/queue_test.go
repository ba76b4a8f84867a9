package queue

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/track.go/pkg/track"
)

type fakeSource struct {
	locos []track.LocoState
}

func (s *fakeSource) NextLive(after int) (track.LocoState, bool) {
	if len(s.locos) == 0 {
		return track.LocoState{}, false
	}
	sort.Slice(s.locos, func(i, j int) bool { return s.locos[i].Addr < s.locos[j].Addr })
	for _, l := range s.locos {
		if l.Addr > after {
			return l, true
		}
	}
	return s.locos[0], true
}

func newTestQueue(src RefreshSource) *Queue {
	q := New(nil, src)
	q.NOPInterval = 0
	return q
}

func TestEnqueueFIFO(t *testing.T) {
	q := newTestQueue(nil)
	f := q.Factory
	require.True(t, q.IsIdle())
	a, _ := f.Speed(3, track.FormatDCC126, 10, true)
	b, _ := f.Speed(4, track.FormatDCC126, 20, true)
	require.NoError(t, q.Enqueue(a))
	require.NoError(t, q.Enqueue(b))
	require.Equal(t, 2, q.Len())
	require.Same(t, a, q.GetPacket(false))
	require.Same(t, b, q.GetPacket(false))
	require.Nil(t, q.GetPacket(false))
	require.True(t, q.IsIdle())
	require.Equal(t, ErrNilPacket, q.Enqueue(nil))
}

func TestEnqueueUpdateCoalesces(t *testing.T) {
	formats := []track.Format{track.FormatMM2, track.FormatDCC28, track.FormatDCC126, track.FormatM3}
	for _, format := range formats {
		t.Run(format.String(), func(t *testing.T) {
			q := newTestQueue(nil)
			f := q.Factory
			for addr := 1; addr <= 3; addr++ {
				first, err := f.Speed(addr, format, 5, true)
				require.NoError(t, err)
				second, err := f.Speed(addr, format, 9, false)
				require.NoError(t, err)
				require.NoError(t, q.EnqueueUpdate(first))
				require.NoError(t, q.EnqueueUpdate(second))
			}
			require.Equal(t, 3, q.Len())
			for addr := 1; addr <= 3; addr++ {
				p := q.GetPacket(false)
				require.Equal(t, addr, p.Addr)
				require.Equal(t, track.SpeedValue(9, false), p.Value)
			}
			require.True(t, q.IsIdle())
		})
	}
}

func TestEnqueueUpdateKeepsOtherCommands(t *testing.T) {
	q := newTestQueue(nil)
	f := q.Factory
	sp, _ := f.Speed(3, track.FormatDCC126, 5, true)
	fn, _ := f.Function(3, track.FormatDCC126, track.CmdFuncF0F4, 1)
	require.NoError(t, q.EnqueueUpdate(sp))
	require.NoError(t, q.EnqueueUpdate(fn))
	require.Equal(t, 2, q.Len())
}

func TestDCC14SpeedAddsIdle(t *testing.T) {
	q := newTestQueue(nil)
	p, _ := q.Factory.Speed(3, track.FormatDCC14, 5, true)
	require.NoError(t, q.Enqueue(p))
	require.Equal(t, 2, q.Len())
	require.Same(t, p, q.GetPacket(false))
	require.Equal(t, track.CmdIdle, q.GetPacket(false).Cmd)
}

func TestPushBackAndFlush(t *testing.T) {
	q := newTestQueue(nil)
	f := q.Factory
	a, _ := f.Speed(3, track.FormatDCC126, 1, true)
	b, _ := f.Speed(4, track.FormatDCC126, 1, true)
	require.NoError(t, q.Enqueue(a))
	require.NoError(t, q.Enqueue(b))
	p := q.GetPacket(false)
	q.PushBack(p)
	require.Same(t, a, q.GetPacket(false))
	q.Flush()
	require.True(t, q.IsIdle())
	require.Nil(t, q.GetPacket(false))
}

func TestLockTimeoutDrops(t *testing.T) {
	q := newTestQueue(nil)
	q.LockTimeout = time.Millisecond
	q.lock <- struct{}{}
	p, _ := q.Factory.Speed(3, track.FormatDCC126, 1, true)
	require.Equal(t, ErrBusy, q.Enqueue(p))
	require.Equal(t, ErrBusy, q.EnqueueUpdate(p))
	require.Nil(t, q.GetPacket(true))
	require.False(t, q.IsIdle())
	q.PushBack(p)
	<-q.lock
	require.True(t, q.IsIdle())
}

func TestMM27ASplit(t *testing.T) {
	q := newTestQueue(nil)
	p, _ := q.Factory.Speed(10, track.FormatMM2_27A, 4, true)
	odd, _ := q.Factory.Speed(11, track.FormatMM2_27A, 5, true)
	require.NoError(t, q.Enqueue(p))
	require.NoError(t, q.Enqueue(odd))
	require.Same(t, p, q.GetPacket(false))
	c := q.GetPacket(false)
	require.Equal(t, track.CmdMMSpeedCorrection, c.Cmd)
	require.Equal(t, p.Value, c.Value)
	require.Same(t, odd, q.GetPacket(false))
	require.True(t, q.IsIdle())
}

func TestRefreshRoundRobin(t *testing.T) {
	l1 := track.LocoState{Addr: 3, Format: track.FormatDCC28, Speed: 7, Forward: true, MaxFunc: 8}
	l1.Funcs.Set(0, true)
	l1.Funcs.Set(6, true)
	l2 := track.LocoState{Addr: 5, Format: track.FormatMM1, Speed: 2}
	q := newTestQueue(&fakeSource{locos: []track.LocoState{l2, l1}})

	require.Nil(t, q.GetPacket(false))

	p := q.GetPacket(true)
	require.Equal(t, 3, p.Addr)
	require.Equal(t, track.CmdSpeed, p.Cmd)
	require.Equal(t, track.SpeedValue(7, true), p.Value)

	p = q.GetPacket(true)
	require.Equal(t, track.CmdFuncF0F4, p.Cmd)
	require.Equal(t, track.Uint(1), p.Value)

	p = q.GetPacket(true)
	require.Equal(t, track.CmdFuncF5F8, p.Cmd)
	require.Equal(t, track.Uint(2), p.Value)

	p = q.GetPacket(true)
	require.Equal(t, 5, p.Addr)
	require.Equal(t, track.CmdSpeed, p.Cmd)

	p = q.GetPacket(true)
	require.Equal(t, 3, p.Addr)
	require.Equal(t, track.CmdSpeed, p.Cmd)
}

func TestRefreshPrefersQueued(t *testing.T) {
	q := newTestQueue(&fakeSource{locos: []track.LocoState{{Addr: 3, Format: track.FormatDCC126}}})
	p, _ := q.Factory.POMRead(9, track.FormatDCC126, 1)
	require.NoError(t, q.Enqueue(p))
	require.Same(t, p, q.GetPacket(true))
}

func TestAccessoryNOPCadence(t *testing.T) {
	now := time.Unix(1000, 0)
	q := New(nil, &fakeSource{locos: []track.LocoState{{Addr: 3, Format: track.FormatDCC126}}})
	q.now = func() time.Time { return now }

	p := q.GetPacket(true)
	require.Equal(t, track.CmdAccNOP, p.Cmd)
	require.Equal(t, track.AccessoryBCAddr, p.Addr)
	require.Equal(t, track.CmdAccExtNOP, q.GetPacket(true).Cmd)
	require.Equal(t, track.CmdSpeed, q.GetPacket(true).Cmd)

	now = now.Add(DefaultNOPInterval / 2)
	require.Equal(t, 3, q.GetPacket(true).Addr)

	now = now.Add(DefaultNOPInterval)
	require.Equal(t, track.CmdAccNOP, q.GetPacket(true).Cmd)
	require.Equal(t, track.CmdAccExtNOP, q.GetPacket(true).Cmd)
}
