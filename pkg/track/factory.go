package track

func (f *Factory) loco(addr int, format Format, cmd Command, v Value) (*Packet, error) {
	p, err := f.GenPacket(addr, format, cmd)
	if err != nil {
		return nil, err
	}
	p.Value = v
	return p, nil
}

// Idle creates a DCC idle packet.
func (f *Factory) Idle() *Packet {
	p, _ := f.GenPacket(0, FormatDCC126, CmdIdle)
	return p
}

// Reset creates a DCC reset packet.
func (f *Factory) Reset() *Packet {
	p, _ := f.GenPacket(0, FormatDCC126, CmdReset)
	return p
}

// Speed creates a speed packet. The speed is a step of the format's
// speed-step range, 0 being stop.
func (f *Factory) Speed(addr int, format Format, speed int, forward bool) (*Packet, error) {
	if speed < 0 || speed > format.SpeedSteps() {
		return nil, ErrOutOfRange
	}
	return f.loco(addr, format, CmdSpeed, SpeedValue(speed, forward))
}

// EmergencyStop creates an emergency stop packet keeping the direction.
func (f *Factory) EmergencyStop(addr int, format Format, forward bool) (*Packet, error) {
	return f.loco(addr, format, CmdEmergencyStop, SpeedValue(0, forward))
}

// Function creates a function group packet. Bit 0 of bits is the first
// function of the group.
func (f *Factory) Function(addr int, format Format, cmd Command, bits uint32) (*Packet, error) {
	if format.IsMM() {
		if cmd < CmdMMFunc1 || cmd > CmdMMFunc4 {
			if cmd != CmdFuncF0F4 {
				return nil, &FormatError{Cmd: cmd, Format: format}
			}
		}
		return f.loco(addr, format, cmd, Uint(bits&0x1f))
	}
	first, last, ok := cmd.FunctionRange()
	if !ok {
		return nil, ErrOutOfRange
	}
	mask := uint32(1)<<uint(last-first+1) - 1
	return f.loco(addr, format, cmd, Uint(bits&mask))
}

// M3Function switches a single m3 function.
func (f *Factory) M3Function(addr int, fn int, on bool) (*Packet, error) {
	if fn < 0 || fn > MaxM3Function {
		return nil, ErrOutOfRange
	}
	return f.loco(addr, FormatM3, CmdM3SingleFunc, Bit{Pos: uint8(fn), Set: on})
}

// BinState creates a binary state packet, using the short form for
// states up to 127.
func (f *Factory) BinState(addr int, format Format, state int, on bool) (*Packet, error) {
	if state < 0 || state > MaxBinState {
		return nil, ErrOutOfRange
	}
	cmd := CmdBinStateLong
	if state <= 127 {
		cmd = CmdBinStateShort
	}
	v := uint32(state)
	if on {
		v |= BinStateOn
	}
	return f.loco(addr, format, cmd, Uint(v))
}

// BinStateOn flags the "on" value in a binary state parameter.
const BinStateOn = 1 << 16

// SDF creates a combined speed, direction and F0..F31 packet.
func (f *Factory) SDF(addr int, format Format, speed int, forward bool, funcs uint32) (*Packet, error) {
	if speed < 0 || speed > 126 {
		return nil, ErrOutOfRange
	}
	sb := byte(speed)
	if forward {
		sb |= 0x80
	}
	b := Bytes{sb, byte(funcs), byte(funcs >> 8), byte(funcs >> 16), byte(funcs >> 24)}
	return f.loco(addr, format, CmdSDF, b)
}

// Magnet switches one output of a basic accessory (or MM solenoid)
// decoder.
func (f *Factory) Magnet(addr int, format Format, output int, on bool) (*Packet, error) {
	if output < 0 || output > 1 || addr < 1 {
		return nil, ErrOutOfRange
	}
	cmd := CmdAccBasic
	if format.IsMM() {
		cmd = CmdMMMagnet
	}
	return f.loco(addr, format, cmd, Bit{Pos: uint8(output), Set: on})
}

// ExtAccessory sets the aspect of an extended accessory decoder.
func (f *Factory) ExtAccessory(addr int, aspect int) (*Packet, error) {
	if aspect < 0 || aspect > maxExtAccAspect || addr < 1 {
		return nil, ErrOutOfRange
	}
	return f.loco(addr, FormatDCC126, CmdAccExtended, Uint(aspect))
}

// AccessoryNOP creates a NOP for a basic or extended accessory address
// which only opens a RailCom window.
func (f *Factory) AccessoryNOP(addr int, ext bool) (*Packet, error) {
	cmd := CmdAccNOP
	if ext {
		cmd = CmdAccExtNOP
	}
	return f.GenPacket(addr, FormatDCC126, cmd)
}

// POMRead reads a CV on the main. cv is the user facing CV number.
func (f *Factory) POMRead(addr int, format Format, cv int) (*Packet, error) {
	idx, err := CVNumber(cv, MaxCV)
	if err != nil {
		return nil, err
	}
	p, err := f.GenPacket(addr, format, CmdPOMReadByte)
	if err != nil {
		return nil, err
	}
	p.CV = idx
	return p, nil
}

// POMWrite writes a CV on the main.
func (f *Factory) POMWrite(addr int, format Format, cv int, val byte) (*Packet, error) {
	idx, err := CVNumber(cv, MaxCV)
	if err != nil {
		return nil, err
	}
	p, err := f.GenPacket(addr, format, CmdPOMWriteByte)
	if err != nil {
		return nil, err
	}
	p.CV, p.Value = idx, Bytes{val}
	return p, nil
}

// POMWriteBit writes a single CV bit on the main.
func (f *Factory) POMWriteBit(addr int, format Format, cv int, bit int, val bool) (*Packet, error) {
	idx, err := CVNumber(cv, MaxCV)
	if err != nil {
		return nil, err
	}
	if bit < 0 || bit > 7 {
		return nil, ErrOutOfRange
	}
	p, err := f.GenPacket(addr, format, CmdPOMWriteBit)
	if err != nil {
		return nil, err
	}
	p.CV, p.Value = idx, Bit{Pos: uint8(bit), Set: val}
	return p, nil
}

// AccPOMRead reads a CV of a basic or extended accessory decoder.
func (f *Factory) AccPOMRead(addr int, cv int) (*Packet, error) {
	idx, err := CVNumber(cv, MaxCV)
	if err != nil {
		return nil, err
	}
	p, err := f.GenPacket(addr, FormatDCC126, CmdAccPOMRead)
	if err != nil {
		return nil, err
	}
	p.CV = idx
	return p, nil
}

// AccPOMWrite writes a CV of an accessory decoder.
func (f *Factory) AccPOMWrite(addr int, cv int, val byte) (*Packet, error) {
	idx, err := CVNumber(cv, MaxCV)
	if err != nil {
		return nil, err
	}
	p, err := f.GenPacket(addr, FormatDCC126, CmdAccPOMWrite)
	if err != nil {
		return nil, err
	}
	p.CV, p.Value = idx, Bytes{val}
	return p, nil
}

// XPOMRead reads four consecutive CVs in the 24 bit CV space.
func (f *Factory) XPOMRead(addr int, format Format, cv int) (*Packet, error) {
	idx, err := CVNumber(cv, MaxXPOMCV)
	if err != nil {
		return nil, err
	}
	p, err := f.GenPacket(addr, format, CmdXPOMRead)
	if err != nil {
		return nil, err
	}
	p.CV = idx
	return p, nil
}

// XPOMWrite writes up to four consecutive CVs.
func (f *Factory) XPOMWrite(addr int, format Format, cv int, data []byte) (*Packet, error) {
	idx, err := CVNumber(cv, MaxXPOMCV)
	if err != nil {
		return nil, err
	}
	if len(data) < 1 || len(data) > maxXPOMWriteData {
		return nil, ErrOutOfRange
	}
	p, err := f.GenPacket(addr, format, CmdXPOMWriteByte)
	if err != nil {
		return nil, err
	}
	p.CV, p.Value = idx, append(Bytes(nil), data...)
	return p, nil
}

// XPOMWriteBit writes a single bit in the 24 bit CV space.
func (f *Factory) XPOMWriteBit(addr int, format Format, cv int, bit int, val bool) (*Packet, error) {
	idx, err := CVNumber(cv, MaxXPOMCV)
	if err != nil {
		return nil, err
	}
	if bit < 0 || bit > 7 {
		return nil, ErrOutOfRange
	}
	p, err := f.GenPacket(addr, format, CmdXPOMWriteBit)
	if err != nil {
		return nil, err
	}
	p.CV, p.Value = idx, Bit{Pos: uint8(bit), Set: val}
	return p, nil
}

func (f *Factory) direct(cmd Command, cv int, v Value) (*Packet, error) {
	idx, err := CVNumber(cv, MaxCV)
	if err != nil {
		return nil, err
	}
	p, err := f.GenPacket(0, FormatDCC126, cmd)
	if err != nil {
		return nil, err
	}
	p.CV, p.Value = idx, v
	return p, nil
}

// DirectVerifyByte asks a decoder on the programming track to acknowledge
// if the CV holds val.
func (f *Factory) DirectVerifyByte(cv int, val byte) (*Packet, error) {
	return f.direct(CmdDirectVerifyByte, cv, Bytes{val})
}

// DirectWriteByte writes a CV on the programming track.
func (f *Factory) DirectWriteByte(cv int, val byte) (*Packet, error) {
	return f.direct(CmdDirectWriteByte, cv, Bytes{val})
}

// DirectVerifyBit asks for an acknowledge if the CV bit has the value.
func (f *Factory) DirectVerifyBit(cv int, bit int, val bool) (*Packet, error) {
	if bit < 0 || bit > 7 {
		return nil, ErrOutOfRange
	}
	return f.direct(CmdDirectVerifyBit, cv, Bit{Pos: uint8(bit), Set: val})
}

// DirectWriteBit writes a CV bit on the programming track.
func (f *Factory) DirectWriteBit(cv int, bit int, val bool) (*Packet, error) {
	if bit < 0 || bit > 7 {
		return nil, ErrOutOfRange
	}
	return f.direct(CmdDirectWriteBit, cv, Bit{Pos: uint8(bit), Set: val})
}

// M3Beacon announces the station to m3 decoders.
func (f *Factory) M3Beacon(stationUID uint32, announce uint16) *Packet {
	p, _ := f.GenPacket(0, FormatM3, CmdM3Beacon)
	p.Value = Bytes{byte(stationUID >> 24), byte(stationUID >> 16), byte(stationUID >> 8), byte(stationUID),
		byte(announce >> 8), byte(announce)}
	return p
}

// M3Search asks all unregistered decoders whose UID matches the first
// bits of uid to answer.
func (f *Factory) M3Search(uid uint32, bits int) (*Packet, error) {
	if bits < 0 || bits > 32 {
		return nil, ErrOutOfRange
	}
	p, err := f.GenPacket(0, FormatM3, CmdM3Search)
	if err != nil {
		return nil, err
	}
	p.Value = Bytes{byte(uid >> 24), byte(uid >> 16), byte(uid >> 8), byte(uid), byte(bits)}
	return p, nil
}

// M3NewAddr assigns a schedule address to the decoder with the UID.
func (f *Factory) M3NewAddr(addr int, uid uint32) (*Packet, error) {
	p, err := f.GenPacket(addr, FormatM3, CmdM3NewAddr)
	if err != nil {
		return nil, err
	}
	p.Value = Uint(uid)
	return p, nil
}

// M3Ping checks the presence of the decoder at addr.
func (f *Factory) M3Ping(addr int) (*Packet, error) {
	return f.GenPacket(addr, FormatM3, CmdM3Ping)
}

func m3CV(cv, sub int) (M3CV, error) {
	if cv < 0 || cv > MaxM3CV || sub < 0 || sub > MaxM3Sub {
		return M3CV{}, ErrOutOfRange
	}
	return M3CV{CV: uint16(cv), Sub: uint8(sub)}, nil
}

// M3ReadCV reads count bytes (1, 2 or 4) starting at cv.sub.
func (f *Factory) M3ReadCV(addr int, cv, sub int, count int) (*Packet, error) {
	c, err := m3CV(cv, sub)
	if err != nil {
		return nil, err
	}
	if count != 1 && count != 2 && count != 4 {
		return nil, ErrOutOfRange
	}
	p, err := f.GenPacket(addr, FormatM3, CmdM3ReadCV)
	if err != nil {
		return nil, err
	}
	p.CV, p.Value = c, Uint(count)
	return p, nil
}

// M3WriteCV writes one byte to cv.sub.
func (f *Factory) M3WriteCV(addr int, cv, sub int, val byte) (*Packet, error) {
	c, err := m3CV(cv, sub)
	if err != nil {
		return nil, err
	}
	p, err := f.GenPacket(addr, FormatM3, CmdM3WriteCV)
	if err != nil {
		return nil, err
	}
	p.CV, p.Value = c, Bytes{val}
	return p, nil
}

// TestBytes sends raw DCC bytes; the generator appends the checksum.
func (f *Factory) TestBytes(b []byte) (*Packet, error) {
	if len(b) < 1 || len(b) > maxTestBytes {
		return nil, ErrOutOfRange
	}
	p, err := f.GenPacket(0, FormatDCC126, CmdTestBytes)
	if err != nil {
		return nil, err
	}
	p.Value = append(Bytes(nil), b...)
	return p, nil
}
