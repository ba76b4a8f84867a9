package track

// LogonGroup selects which decoders answer a LOGON_ENABLE.
type LogonGroup byte

// Logon groups.
const (
	LogonAll LogonGroup = iota
	LogonLoco
	LogonAccessory
	LogonNow
)

// DCC-A instruction prefixes.
const (
	dccaLogonEnable  = 0xfc
	dccaSelect       = 0xd0
	dccaLogonAssign  = 0xe0
	dccaGetDataStart = 0x00
	dccaGetDataCont  = 0x01

	dccaSubShortInfo = 0xff
	dccaSubReadBlock = 0xfe
	dccaSubSetState  = 0xfd
)

// DecoderState values for SET_DECODER_STATE.
const (
	DecoderStateClearFlags byte = 0xff
	DecoderStateClearCount byte = 0xfe
	DecoderStateLogonAgain byte = 0x00
)

// DCCAFrame is the decoded payload of a DCC-A packet.
type DCCAFrame struct {
	Cmd     Command
	Group   LogonGroup
	CID     uint16
	Session uint8
	Vendor  uint16
	UID     uint32
	Space   uint8
	State   byte
	Coded   uint16
}

func putDID(b []byte, vendor uint16, uid uint32) []byte {
	b[0] |= byte(vendor>>8) & 0x0f
	return append(b, byte(vendor), byte(uid>>24), byte(uid>>16), byte(uid>>8), byte(uid))
}

func (f *Factory) dcca(cmd Command, payload Bytes) *Packet {
	p, _ := f.GenPacket(DCCABroadcast, FormatDCC126, cmd)
	p.Repeat, p.Value = 1, payload
	return p
}

// DCCALogonEnable invites decoders of the group to log on.
func (f *Factory) DCCALogonEnable(group LogonGroup, cid uint16, session uint8) *Packet {
	return f.dcca(CmdDCCALogonEnable, Bytes{dccaLogonEnable | byte(group&3), byte(cid >> 8), byte(cid), session})
}

// DCCASelectShortInfo requests the fixed short info block of a decoder.
func (f *Factory) DCCASelectShortInfo(vendor uint16, uid uint32) *Packet {
	b := putDID([]byte{dccaSelect}, vendor, uid)
	return f.dcca(CmdDCCASelectShortInfo, append(b, dccaSubShortInfo))
}

// DCCASelectBlock starts reading a data space of a decoder.
func (f *Factory) DCCASelectBlock(vendor uint16, uid uint32, space uint8) *Packet {
	b := putDID([]byte{dccaSelect}, vendor, uid)
	return f.dcca(CmdDCCASelectBlock, append(b, dccaSubReadBlock, space))
}

// DCCASetDecoderState changes the state of a selected decoder.
func (f *Factory) DCCASetDecoderState(vendor uint16, uid uint32, state byte) *Packet {
	b := putDID([]byte{dccaSelect}, vendor, uid)
	return f.dcca(CmdDCCASetDecoderState, append(b, dccaSubSetState, state))
}

// DCCAGetDataStart fetches the first window of the selected block.
func (f *Factory) DCCAGetDataStart() *Packet {
	return f.dcca(CmdDCCAGetDataStart, Bytes{dccaGetDataStart})
}

// DCCAGetDataCont fetches the next window of the selected block.
func (f *Factory) DCCAGetDataCont() *Packet {
	return f.dcca(CmdDCCAGetDataCont, Bytes{dccaGetDataCont})
}

// DCCALogonAssign assigns the coded address to the decoder.
func (f *Factory) DCCALogonAssign(vendor uint16, uid uint32, coded uint16) *Packet {
	b := putDID([]byte{dccaLogonAssign}, vendor, uid)
	return f.dcca(CmdDCCALogonAssign, append(b, 0xc0|byte(coded>>8)&0x3f, byte(coded)))
}

// ParseDCCA decodes the payload of a DCC-A packet.
func ParseDCCA(p *Packet) (fr DCCAFrame, ok bool) {
	b := BytesOf(p.Value)
	if !p.Cmd.IsDCCA() || len(b) == 0 {
		return fr, false
	}
	fr.Cmd = p.Cmd
	did := func() bool {
		if len(b) < 6 {
			return false
		}
		fr.Vendor = uint16(b[0]&0x0f)<<8 | uint16(b[1])
		fr.UID = uint32(b[2])<<24 | uint32(b[3])<<16 | uint32(b[4])<<8 | uint32(b[5])
		return true
	}
	switch p.Cmd {
	case CmdDCCALogonEnable:
		if len(b) < 4 || b[0]&0xfc != dccaLogonEnable {
			return fr, false
		}
		fr.Group = LogonGroup(b[0] & 3)
		fr.CID = uint16(b[1])<<8 | uint16(b[2])
		fr.Session = b[3]
	case CmdDCCASelectShortInfo:
		ok = did() && len(b) >= 7 && b[6] == dccaSubShortInfo
		return fr, ok
	case CmdDCCASelectBlock:
		if !did() || len(b) < 8 || b[6] != dccaSubReadBlock {
			return fr, false
		}
		fr.Space = b[7]
	case CmdDCCASetDecoderState:
		if !did() || len(b) < 8 || b[6] != dccaSubSetState {
			return fr, false
		}
		fr.State = b[7]
	case CmdDCCALogonAssign:
		if !did() || len(b) < 8 {
			return fr, false
		}
		fr.Coded = uint16(b[6]&0x3f)<<8 | uint16(b[7])
	}
	return fr, true
}
