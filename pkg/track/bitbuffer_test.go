package track

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBitbufferDeliverOnce(t *testing.T) {
	f := NewFactory(nil)
	p, err := f.POMRead(3, FormatDCC126, 29)
	require.NoError(t, err)

	var replies []DecoderReply
	p.WithReply(func(r DecoderReply) { replies = append(replies, r) }, "tok")
	bb := NewBitbuffer(p, DefaultSettings)
	require.True(t, bb.ExpectsReply())
	require.Equal(t, DCCPreamble, bb.Preamble)

	r := DecoderReply{Msg: MsgPOM, Len: 1}
	r.Data[0] = 0x42
	require.True(t, bb.Deliver(r))
	require.False(t, bb.Deliver(DecoderReply{Msg: MsgNoAnswer}))
	require.True(t, bb.Delivered())

	require.Len(t, replies, 1)
	require.Equal(t, MsgPOM, replies[0].Msg)
	require.Equal(t, 3, replies[0].Addr)
	require.Equal(t, CV(28), replies[0].CV)
	require.Equal(t, DecoderDCC, replies[0].Decoder)
	require.Equal(t, "tok", replies[0].Token)
	require.Equal(t, []byte{0x42}, replies[0].Bytes())
}

func TestBitbufferDeliverConcurrent(t *testing.T) {
	f := NewFactory(nil)
	p, _ := f.M3Ping(7)
	var mu sync.Mutex
	count := 0
	p.WithReply(func(DecoderReply) {
		mu.Lock()
		count++
		mu.Unlock()
	}, nil)
	bb := NewBitbuffer(p, nil)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bb.Deliver(DecoderReply{Msg: MsgM3Ack})
		}()
	}
	wg.Wait()
	require.Equal(t, 1, count)
	require.Equal(t, M3Flags, bb.Flags)
}

func TestBitbufferRailComDisabled(t *testing.T) {
	f := NewFactory(nil)
	s := DefaultSettings
	s.RailCom = false
	p, _ := f.POMRead(3, FormatDCC126, 1)
	require.False(t, NewBitbuffer(p, s).ExpectsReply())
	m3, _ := f.M3ReadCV(3, 1, 0, 2)
	bb := NewBitbuffer(m3, s)
	require.True(t, bb.ExpectsReply())
	require.Equal(t, 2, bb.ExpectLen)
}

func TestBitbufferProgPreamble(t *testing.T) {
	f := NewFactory(nil)
	p, _ := f.DirectVerifyByte(1, 3)
	bb := NewBitbuffer(p, nil)
	require.Equal(t, DCCProgPreamble, bb.Preamble)
	require.False(t, bb.ExpectsReply())
}

func TestFutureWait(t *testing.T) {
	fut := NewFuture()
	cb := fut.Callback()
	cb(DecoderReply{Msg: MsgAck})
	cb(DecoderReply{Msg: MsgNack})
	r, err := fut.Wait(context.Background(), time.Second)
	require.NoError(t, err)
	require.Equal(t, MsgAck, r.Msg)

	r, err = NewFuture().Wait(context.Background(), time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, MsgTimeout, r.Msg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewFuture().Wait(ctx, time.Second)
	require.Equal(t, context.Canceled, err)
}
