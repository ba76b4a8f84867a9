package track

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenPacketRepeat(t *testing.T) {
	f := NewFactory(nil)
	testCases := []struct {
		name   string
		addr   int
		format Format
		cmd    Command
		repeat int
	}{
		{"mm speed", 10, FormatMM2, CmdSpeed, 2},
		{"dcc speed", 3, FormatDCC28, CmdSpeed, 1},
		{"m3 speed", 3, FormatM3, CmdSpeed, 1},
		{"accessory", 12, FormatDCC126, CmdAccBasic, 2},
		{"pom", 3, FormatDCC126, CmdPOMReadByte, 2},
		{"xpom", 3, FormatDCC126, CmdXPOMRead, 2},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := f.GenPacket(tc.addr, tc.format, tc.cmd)
			require.NoError(t, err)
			require.Equal(t, tc.repeat, p.Repeat)
			require.Equal(t, tc.addr, p.Addr)
		})
	}
}

func TestGenPacketRejects(t *testing.T) {
	f := NewFactory(nil)
	_, err := f.GenPacket(0, FormatDCC126, CmdSpeed)
	require.Equal(t, ErrOutOfRange, err)
	_, err = f.GenPacket(MaxDCCAddress+1, FormatDCC126, CmdSpeed)
	require.Equal(t, ErrOutOfRange, err)
	_, err = f.GenPacket(MaxMMAddress+1, FormatMM2, CmdSpeed)
	require.Equal(t, ErrOutOfRange, err)
	_, err = f.GenPacket(3, FormatMM2, CmdPOMReadByte)
	require.IsType(t, &FormatError{}, err)
	_, err = f.GenPacket(3, FormatDCC126, CmdM3Ping)
	require.IsType(t, &FormatError{}, err)
	_, err = f.GenPacket(3, FormatDCC126, numCommands)
	require.Equal(t, ErrOutOfRange, err)
	_, err = f.GenPacket(MaxDCCAccessory+1, FormatDCC126, CmdAccBasic)
	require.Equal(t, ErrOutOfRange, err)
}

func TestFactoryBounds(t *testing.T) {
	f := NewFactory(nil)
	must := func(p *Packet, err error) *Packet {
		require.NoError(t, err)
		require.NotNil(t, p)
		return p
	}
	fails := func(p *Packet, err error) {
		require.Error(t, err)
		require.Nil(t, p)
	}

	p := must(f.Speed(3, FormatDCC28, 28, true))
	speed, fwd := IntOf(p.Value).Speed()
	require.Equal(t, 28, speed)
	require.True(t, fwd)
	fails(f.Speed(3, FormatDCC28, 29, true))
	fails(f.Speed(3, FormatDCC126, -1, true))

	p = must(f.POMRead(3, FormatDCC126, 29))
	require.Equal(t, CV(28), p.CV)
	fails(f.POMRead(3, FormatDCC126, 0))
	fails(f.POMRead(3, FormatDCC126, MaxCV+1))
	must(f.POMRead(3, FormatDCC126, MaxCV))

	p = must(f.POMWriteBit(3, FormatDCC126, 29, 7, true))
	require.Equal(t, Bit{Pos: 7, Set: true}, p.Value)
	fails(f.POMWriteBit(3, FormatDCC126, 29, 8, true))
	fails(f.DirectVerifyBit(1, 8, false))

	p = must(f.XPOMWrite(3, FormatDCC126, MaxXPOMCV, []byte{1, 2, 3, 4}))
	require.Equal(t, ReadBackXPOM, p.ReadBack())
	fails(f.XPOMWrite(3, FormatDCC126, 1, []byte{1, 2, 3, 4, 5}))
	fails(f.XPOMWrite(3, FormatDCC126, 1, nil))

	p = must(f.M3ReadCV(5, 1, MaxM3Sub, 4))
	require.Equal(t, M3CV{CV: 1, Sub: MaxM3Sub}, p.CV)
	fails(f.M3ReadCV(5, 1, MaxM3Sub+1, 1))
	fails(f.M3ReadCV(5, MaxM3CV+1, 0, 1))
	fails(f.M3ReadCV(5, 1, 0, 3))
	fails(f.M3WriteCV(5, 1, 64, 0))
	fails(f.M3Function(5, MaxM3Function+1, true))
	fails(f.M3Search(0, 33))

	p = must(f.BinState(3, FormatDCC126, 100, true))
	require.Equal(t, CmdBinStateShort, p.Cmd)
	require.Equal(t, Uint(100|BinStateOn), p.Value)
	p = must(f.BinState(3, FormatDCC126, 200, false))
	require.Equal(t, CmdBinStateLong, p.Cmd)
	fails(f.BinState(3, FormatDCC126, MaxBinState+1, false))
	fails(f.BinState(3, FormatMM2, 1, false))

	fails(f.ExtAccessory(1, 256))
	fails(f.Magnet(1, FormatDCC126, 2, true))
	fails(f.TestBytes(make([]byte, 17)))
	fails(f.TestBytes(nil))

	p = must(f.Function(3, FormatDCC126, CmdFuncF5F8, 0xff))
	require.Equal(t, Uint(0x0f), p.Value)
	fails(f.Function(3, FormatMM2, CmdFuncF5F8, 1))

	p = must(f.SDF(3, FormatDCCSDF, 126, true, 0x01020304))
	require.Equal(t, Bytes{0xfe, 4, 3, 2, 1}, p.Value)
}

func TestReadBackByFormat(t *testing.T) {
	require.Equal(t, ReadBackStandard, CmdSpeed.ReadBack(FormatDCC28))
	require.Equal(t, ReadBackNone, CmdSpeed.ReadBack(FormatMM2))
	require.Equal(t, ReadBackNone, CmdSpeed.ReadBack(FormatM3))
	require.Equal(t, ReadBackNone, CmdAccBasic.ReadBack(FormatMM2))
	require.Equal(t, ReadBackPOM, CmdPOMReadByte.ReadBack(FormatDCC126))
	require.Equal(t, ReadBackPOMWrite, CmdPOMWriteByte.ReadBack(FormatDCC126))
	require.Equal(t, ReadBackDCCAShortInfo, CmdDCCASelectShortInfo.ReadBack(FormatDCC126))
	require.Equal(t, ReadBackM3Data, CmdM3ReadCV.ReadBack(FormatM3))
	require.Equal(t, ReadBackM3Bin, CmdM3Ping.ReadBack(FormatM3))
}

func TestFunctionGroups(t *testing.T) {
	require.Nil(t, FunctionGroups(FormatMM1, 4))
	require.Len(t, FunctionGroups(FormatMM2, 4), 4)
	require.Equal(t, []Command{CmdFuncF0F4}, FunctionGroups(FormatDCC28, 0))
	require.Equal(t, []Command{CmdFuncF0F4, CmdFuncF5F8, CmdFuncF9F12}, FunctionGroups(FormatDCC28, 12))
	require.Len(t, FunctionGroups(FormatDCC126, MaxFunction), 10)
}

func TestSameTarget(t *testing.T) {
	f := NewFactory(nil)
	a, _ := f.Speed(3, FormatDCC126, 10, true)
	b, _ := f.Speed(3, FormatDCC126, 20, false)
	c, _ := f.Speed(4, FormatDCC126, 20, false)
	d, _ := f.Speed(3, FormatDCC28, 20, false)
	require.True(t, a.SameTarget(b))
	require.False(t, a.SameTarget(c))
	require.False(t, a.SameTarget(d))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("dcc28")
	require.NoError(t, err)
	require.Equal(t, FormatDCC28, f)
	f, err = ParseFormat("M3")
	require.NoError(t, err)
	require.Equal(t, FormatM3, f)
	_, err = ParseFormat("unknown")
	require.Error(t, err)
}
