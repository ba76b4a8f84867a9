package progtrack

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/track.go/pkg/track"
)

// simProg is a programming track with one decoder on it. The decoder
// answers with a current pulse.
type simProg struct {
	base     int
	script   []int
	cvs      map[int]byte
	readOnly bool

	delay   int
	pulse   int
	samples int
	power   []track.Power
	packets []*track.Packet
}

func newSimProg() *simProg {
	return &simProg{base: 20, cvs: map[int]byte{1: 3, 29: 0x06}}
}

func (s *simProg) SetPower(mode track.Power) error {
	s.power = append(s.power, mode)
	return nil
}

func (s *simProg) Power() track.Power {
	if len(s.power) == 0 {
		return track.PowerOff
	}
	return s.power[len(s.power)-1]
}

func (s *simProg) Sample(ctx context.Context) (int, error) {
	s.samples++
	switch {
	case len(s.script) > 0:
		v := s.script[0]
		s.script = s.script[1:]
		return v, nil
	case s.delay > 0:
		s.delay--
	case s.pulse > 0:
		s.pulse--
		return s.base + 70, nil
	}
	return s.base, nil
}

func (s *simProg) Enqueue(p *track.Packet) error {
	s.packets = append(s.packets, p)
	cv, ok := p.CV.(track.CV)
	if !ok {
		return nil
	}
	n := cv.Number()
	var ack bool
	switch p.Cmd {
	case track.CmdDirectVerifyByte:
		ack = s.cvs[n] == track.BytesOf(p.Value)[0]
	case track.CmdDirectWriteByte:
		if !s.readOnly {
			s.cvs[n] = track.BytesOf(p.Value)[0]
			ack = true
		}
	case track.CmdDirectVerifyBit:
		b := p.Value.(track.Bit)
		ack = (s.cvs[n]>>b.Pos&1 == 1) == b.Set
	case track.CmdDirectWriteBit:
		if !s.readOnly {
			b := p.Value.(track.Bit)
			if b.Set {
				s.cvs[n] |= 1 << b.Pos
			} else {
				s.cvs[n] &^= 1 << b.Pos
			}
			ack = true
		}
	}
	if ack {
		s.delay, s.pulse = 3, 6
	}
	return nil
}

func repeat(v, n int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = v
	}
	return s
}

func TestWaitStableCurrent(t *testing.T) {
	ctx := context.Background()

	tr := newSimProg()
	tr.script = []int{80, 60, 45, 30, 25}
	base, err := WaitStableCurrent(ctx, tr, DefaultTiming)
	require.NoError(t, err)
	require.Equal(t, 20, base)

	tr = newSimProg()
	noisy := make([]int, 50)
	for i := range noisy {
		noisy[i] = 18 + i%7
	}
	tr.script = noisy
	base, err = WaitStableCurrent(ctx, tr, DefaultTiming)
	require.NoError(t, err)
	require.Equal(t, 50, tr.samples)
	require.Equal(t, 20, base)

	tr = newSimProg()
	tr.script = repeat(250, 100)
	_, err = WaitStableCurrent(ctx, tr, DefaultTiming)
	require.Equal(t, ErrShortCircuit, err)
	require.Equal(t, 11, tr.samples)

	tr = newSimProg()
	tr.script = append(repeat(250, 10), repeat(20, 100)...)
	_, err = WaitStableCurrent(ctx, tr, DefaultTiming)
	require.NoError(t, err)

	tr = newSimProg()
	for i := 0; i < 6000; i++ {
		tr.script = append(tr.script, 10+(i%2)*10)
	}
	_, err = WaitStableCurrent(ctx, tr, DefaultTiming)
	require.Equal(t, ErrUnstable, err)
	require.Equal(t, 5000, tr.samples)
}

func TestDirectWriteReadRoundTrip(t *testing.T) {
	tr := newSimProg()
	p := New(nil, tr, tr)
	ctx := context.Background()

	require.NoError(t, p.WriteByte(ctx, 29, 0xa5))
	require.Equal(t, byte(0xa5), tr.cvs[29])
	val, err := p.ReadByte(ctx, 29)
	require.NoError(t, err)
	require.Equal(t, byte(0xa5), val)

	val, err = p.ReadByte(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, byte(3), val)
	require.Equal(t, track.PowerOff, tr.power[len(tr.power)-1])
}

func TestDirectVerify(t *testing.T) {
	tr := newSimProg()
	p := New(nil, tr, tr)
	ctx := context.Background()

	ok, err := p.VerifyByte(ctx, 29, 0x06)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = p.VerifyByte(ctx, 29, 0x07)
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, []track.Power{track.PowerProg, track.PowerOff, track.PowerProg, track.PowerOff}, tr.power)

	ok, err = p.VerifyBit(ctx, 29, 1, true)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = p.VerifyBit(ctx, 29, 0, true)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, p.WriteBit(ctx, 29, 0, true))
	require.Equal(t, byte(0x07), tr.cvs[29])

	_, err = p.VerifyByte(ctx, 0, 1)
	require.Equal(t, track.ErrOutOfRange, err)
}

func TestDirectWritePowerCycles(t *testing.T) {
	tr := newSimProg()
	tr.readOnly = true
	p := New(nil, tr, tr)
	require.Equal(t, ErrNoAck, p.WriteByte(context.Background(), 29, 0x10))
	require.Equal(t, []track.Power{
		track.PowerProg, track.PowerOff,
		track.PowerProg, track.PowerOff,
		track.PowerProg, track.PowerOff,
	}, tr.power)
	require.Len(t, tr.packets, 6)
}

func TestDirectRestoresMainPower(t *testing.T) {
	tr := newSimProg()
	tr.power = []track.Power{track.PowerMain}
	p := New(nil, tr, tr)
	require.NoError(t, p.WriteByte(context.Background(), 29, 0x22))
	require.Equal(t, []track.Power{track.PowerMain, track.PowerProg, track.PowerMain}, tr.power)

	tr.readOnly = true
	require.Equal(t, ErrNoAck, p.WriteByte(context.Background(), 29, 0x10))
	require.Equal(t, track.PowerMain, tr.Power())

	_, err := p.ReadByte(context.Background(), 29)
	require.NoError(t, err)
	require.Equal(t, track.PowerMain, tr.Power())
}

func TestDirectShortCircuit(t *testing.T) {
	tr := newSimProg()
	tr.base = 300
	p := New(nil, tr, tr)
	_, err := p.ReadByte(context.Background(), 29)
	require.Equal(t, ErrShortCircuit, err)
	require.Empty(t, tr.packets)
	require.Equal(t, []track.Power{track.PowerProg, track.PowerOff}, tr.power)
}

func TestPOMSubmit(t *testing.T) {
	tr := newSimProg()
	p := New(nil, tr, tr)

	require.Equal(t, track.ErrNoCallback, p.POMRead(3, track.FormatDCC126, 29, nil, nil))
	require.Empty(t, tr.packets)
	require.Equal(t, track.ErrOutOfRange, p.POMRead(3, track.FormatDCC126, 0, func(track.DecoderReply) {}, nil))

	fut := track.NewFuture()
	require.NoError(t, p.POMRead(3, track.FormatDCC126, 29, fut.Callback(), "tok"))
	require.NoError(t, p.POMWrite(3, track.FormatDCC126, 1, 5, fut.Callback(), nil))
	require.Len(t, tr.packets, 2)
	require.Equal(t, track.CmdPOMReadByte, tr.packets[0].Cmd)
	require.Equal(t, "tok", tr.packets[0].Token)
	require.Equal(t, track.CV(28), tr.packets[0].CV)
	require.NotNil(t, tr.packets[1].OnReply)
}
