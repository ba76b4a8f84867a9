package track

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDCCAPayloads(t *testing.T) {
	f := NewFactory(nil)

	p := f.DCCALogonEnable(LogonNow, 0x1234, 7)
	require.Equal(t, DCCABroadcast, p.Addr)
	require.Equal(t, 1, p.Repeat)
	require.Equal(t, Bytes{0xff, 0x12, 0x34, 7}, p.Value)
	require.Equal(t, ReadBackDCCAID, p.ReadBack())
	fr, ok := ParseDCCA(p)
	require.True(t, ok)
	require.Equal(t, LogonNow, fr.Group)
	require.Equal(t, uint16(0x1234), fr.CID)
	require.Equal(t, uint8(7), fr.Session)

	p = f.DCCASelectShortInfo(0xabc, 0x01020304)
	require.Equal(t, Bytes{0xda, 0xbc, 1, 2, 3, 4, 0xff}, p.Value)
	fr, ok = ParseDCCA(p)
	require.True(t, ok)
	require.Equal(t, uint16(0xabc), fr.Vendor)
	require.Equal(t, uint32(0x01020304), fr.UID)

	p = f.DCCASelectBlock(0x0d, 0xdeadbeef, 5)
	fr, ok = ParseDCCA(p)
	require.True(t, ok)
	require.Equal(t, uint8(5), fr.Space)
	require.Equal(t, uint32(0xdeadbeef), fr.UID)

	p = f.DCCASetDecoderState(0x0d, 1, DecoderStateClearFlags)
	fr, ok = ParseDCCA(p)
	require.True(t, ok)
	require.Equal(t, DecoderStateClearFlags, fr.State)
	require.Equal(t, ReadBackDCCAAck, p.ReadBack())

	p = f.DCCALogonAssign(0x0d, 1, 0x3805)
	require.Equal(t, Bytes{0xe0, 0x0d, 0, 0, 0, 1, 0xf8, 0x05}, p.Value)
	fr, ok = ParseDCCA(p)
	require.True(t, ok)
	require.Equal(t, uint16(0x3805), fr.Coded)

	p = f.DCCAGetDataCont()
	fr, ok = ParseDCCA(p)
	require.True(t, ok)
	require.Equal(t, CmdDCCAGetDataCont, fr.Cmd)
	require.Equal(t, ReadBackDCCAData, p.ReadBack())

	sp, _ := f.Speed(3, FormatDCC126, 1, true)
	_, ok = ParseDCCA(sp)
	require.False(t, ok)
}
