package railcom

import "github.com/robotalks/track.go/pkg/track"

// Phase is the timer state of one reply window.
type Phase int

// Window phases in the order the timer walks them.
const (
	PhaseIdle Phase = iota
	PhaseDelay
	PhaseWindow1
	PhaseWindow2
	PhaseBusAckCheck
)

func (p Phase) String() string {
	switch p {
	case PhaseDelay:
		return "DELAY"
	case PhaseWindow1:
		return "WINDOW1"
	case PhaseWindow2:
		return "WINDOW2"
	case PhaseBusAckCheck:
		return "BUS_ACK_CHECK"
	}
	return "IDLE"
}

// RailCom message IDs.
const (
	idPOM   = 0
	idAdrHi = 1
	idAdrLo = 2
	idExt   = 3
	idStat  = 4
	idDyn   = 7
	idXPOM0 = 8
	idXPOM3 = 11
)

const (
	ch1Len    = 2
	ch2Len    = 6
	dccaLen   = ch1Len + ch2Len
	m3MaxData = 8
)

// window is the decode state of one armed reply window. It is reused for
// every window and never allocates.
type window struct {
	bb    *track.Bitbuffer
	phase Phase

	ch1  [ch1Len]byte
	n1   int
	ch2  [ch2Len]byte
	n2   int
	raw  [m3MaxData + 1]byte
	nraw int

	walked  int  // channel 2 symbols consumed by the message walk
	aborted bool // channel 2 walk hit a sentinel or unknown ID
	garbled bool // a byte was invalid, erroneous or lost
	fired   bool

	pomSeen int // ID-0 echoes over all cutouts of bb
	cutouts int
}

func (w *window) reset(bb *track.Bitbuffer) {
	*w = window{bb: bb, phase: PhaseDelay}
}

// spans reports whether the window stays armed for the next cutout of
// its buffer. A POM write collects echoes over all repetitions.
func (w *window) spans() bool {
	return w.bb.ReadBack == track.ReadBackPOMWrite && !w.fired && w.cutouts < w.bb.Repeat
}

// nextCutout clears the channel state for the next repetition of bb.
func (w *window) nextCutout() {
	*w = window{bb: w.bb, phase: PhaseBusAckCheck, pomSeen: w.pomSeen, cutouts: w.cutouts}
}

func (w *window) active() bool {
	return w.bb != nil && !w.fired
}

func (w *window) fire(r track.DecoderReply) {
	if w.fired {
		return
	}
	w.fired = true
	w.bb.Deliver(r)
}

func (w *window) fireMsg(msg track.MsgType) {
	w.fire(track.DecoderReply{Msg: msg})
}

// received stores one line byte and interprets the window so far.
func (w *window) received(b byte, uartErr bool) {
	if !w.active() {
		return
	}
	if w.phase != PhaseWindow1 && w.phase != PhaseWindow2 {
		return
	}
	rb := w.bb.ReadBack
	if rb == track.ReadBackM3Bin || rb == track.ReadBackM3Data {
		w.receivedM3(b, uartErr)
		return
	}
	s := Decode(b, uartErr)
	if s == SymInvalid || s == SymError {
		w.garbled = true
	}
	if w.phase == PhaseWindow1 && !rb.IsDCCA() {
		if w.n1 < ch1Len {
			w.ch1[w.n1] = s
			w.n1++
		}
		pom := rb == track.ReadBackPOM || rb == track.ReadBackPOMWrite
		switch {
		case s == SymNack:
			w.fireMsg(track.MsgNack)
		case isAck(s) && !pom:
			w.fireMsg(track.MsgAck)
		}
		return
	}
	switch {
	case rb.IsDCCA() && w.n1 < ch1Len && w.phase == PhaseWindow1:
		w.ch1[w.n1] = s
		w.n1++
	case rb.IsDCCA() && w.n1 < ch1Len:
		// channel 1 stayed short, the combined window cannot complete
		w.garbled = true
		fallthrough
	default:
		if w.n2 >= ch2Len {
			w.garbled = true
			return
		}
		w.ch2[w.n2] = s
		w.n2++
	}
	w.interpret()
}

func (w *window) interpret() {
	switch w.bb.ReadBack {
	case track.ReadBackStandard, track.ReadBackXPOM:
		w.walk(false)
	case track.ReadBackPOM, track.ReadBackPOMWrite:
		w.walk(true)
	case track.ReadBackDCCAID, track.ReadBackDCCAData, track.ReadBackDCCAShortInfo:
		w.dcca()
	case track.ReadBackDCCAAck:
		w.dccaAck()
	}
}

// msgLen returns the number of symbols of a channel 2 message.
func msgLen(id byte) int {
	switch {
	case id == idPOM, id == idAdrHi, id == idAdrLo, id == idStat:
		return 2
	case id == idExt, id == idDyn:
		return 3
	case id >= idXPOM0 && id <= idXPOM3:
		return 6
	}
	return 0
}

// walk consumes complete channel 2 messages.
func (w *window) walk(pom bool) {
	for !w.fired && !w.aborted && w.walked < w.n2 {
		s := w.ch2[w.walked]
		if !isData(s) {
			switch {
			case s == SymNack:
				w.fireMsg(track.MsgNack)
			case isAck(s) && !pom:
				w.fireMsg(track.MsgAck)
			case pom && (isAck(s) || (s >= SymRes1 && s <= SymRes3)):
				w.walked++
				continue
			default:
				w.aborted = true
			}
			return
		}
		id := s >> 2
		n := msgLen(id)
		if n == 0 {
			w.aborted = true
			return
		}
		if w.walked+n > w.n2 {
			return
		}
		msg := w.ch2[w.walked : w.walked+n]
		for _, x := range msg[1:] {
			if !isData(x) {
				w.aborted = true
				return
			}
		}
		w.walked += n
		r := decodeMessage(id, msg)
		if !pom {
			w.fire(r)
			return
		}
		if id != idPOM {
			continue
		}
		w.pomSeen++
		if w.bb.ReadBack == track.ReadBackPOMWrite && w.pomSeen == 1 {
			// the first echo may still be the value from before the write
			continue
		}
		w.fire(r)
	}
}

func decodeMessage(id byte, msg []byte) (r track.DecoderReply) {
	var v uint64
	for i, s := range msg {
		if i == 0 {
			v = uint64(s & 3)
			continue
		}
		v = v<<6 | uint64(s)
	}
	switch id {
	case idPOM:
		r.Msg, r.Data[0], r.Len = track.MsgPOM, byte(v), 1
	case idAdrHi:
		r.Msg, r.Data[0], r.Len = track.MsgAdrHigh, byte(v), 1
	case idAdrLo:
		r.Msg, r.Data[0], r.Len = track.MsgAdrLow, byte(v), 1
	case idStat:
		r.Msg, r.Data[0], r.Len = track.MsgStat, byte(v), 1
	case idExt:
		r.Msg, r.Data[0], r.Data[1], r.Len = track.MsgExt, byte(v>>8), byte(v), 2
	case idDyn:
		r.Msg, r.Data[0], r.Data[1], r.Len = track.MsgDyn, byte(v>>6), byte(v&0x3f), 2
	default:
		r.Msg = track.MsgXPOM0 + track.MsgType(id-idXPOM0)
		r.Data[0], r.Data[1], r.Data[2], r.Data[3] = byte(v>>24), byte(v>>16), byte(v>>8), byte(v)
		r.Len = 4
	}
	return r
}

// dcca assembles the combined 8 symbol window into 6 bytes.
func (w *window) dcca() {
	for i := 0; i < w.n1; i++ {
		if !isData(w.ch1[i]) {
			w.dccaSentinel(w.ch1[i])
			return
		}
	}
	for i := 0; i < w.n2; i++ {
		if !isData(w.ch2[i]) {
			w.dccaSentinel(w.ch2[i])
			return
		}
	}
	if w.n1+w.n2 < dccaLen {
		return
	}
	var sym [dccaLen]byte
	copy(sym[:], w.ch1[:])
	copy(sym[ch1Len:], w.ch2[:])
	var r track.DecoderReply
	var acc uint64
	for _, s := range sym {
		acc = acc<<6 | uint64(s)
	}
	for i := 0; i < 6; i++ {
		r.Data[i] = byte(acc >> uint(40-8*i))
	}
	r.Len = 6
	switch w.bb.ReadBack {
	case track.ReadBackDCCAID:
		switch r.Data[0] >> 4 {
		case 0xf:
			r.Msg = track.MsgDCCAUnique
		case 0xd:
			r.Msg = track.MsgDCCAState
		default:
			r.Msg = track.MsgUnknown
		}
	case track.ReadBackDCCAData:
		r.Msg = track.MsgDCCABlock
	default:
		r.Msg = track.MsgDCCAShortInfo
	}
	w.fire(r)
}

func (w *window) dccaSentinel(s byte) {
	if isAck(s) {
		w.fireMsg(track.MsgAck)
		return
	}
	w.fireMsg(track.MsgCollision)
}

func (w *window) dccaAck() {
	for i := 0; i < w.n1; i++ {
		if isAck(w.ch1[i]) {
			w.fireMsg(track.MsgAck)
			return
		}
	}
	for i := 0; i < w.n2; i++ {
		if isAck(w.ch2[i]) {
			w.fireMsg(track.MsgAck)
			return
		}
	}
}

func (w *window) receivedM3(b byte, uartErr bool) {
	if uartErr {
		w.garbled = true
	}
	if w.bb.ReadBack == track.ReadBackM3Bin {
		// any energy in the window is a yes
		w.fireMsg(track.MsgM3Ack)
		return
	}
	if uartErr {
		return
	}
	want := w.bb.ExpectLen + 1
	if want > len(w.raw) {
		want = len(w.raw)
	}
	if w.nraw >= want {
		return
	}
	w.raw[w.nraw] = b
	w.nraw++
	if w.nraw < want {
		return
	}
	n := want - 1
	var r track.DecoderReply
	if M3CRC(w.raw[:n]) != w.raw[n] {
		r.Msg = track.MsgReadError
	} else {
		r.Msg = track.MsgM3Data
		copy(r.Data[:], w.raw[:n])
		r.Len = n
	}
	w.fire(r)
}

// finish resolves a window that has not fired by its last bus-ack check.
func (w *window) finish() {
	if !w.active() {
		return
	}
	rb := w.bb.ReadBack
	switch {
	case rb == track.ReadBackPOMWrite && w.pomSeen > 0:
		w.fireMsg(track.MsgNoAnswer)
	case rb == track.ReadBackM3Bin:
		w.fireMsg(track.MsgM3Nack)
	case rb == track.ReadBackM3Data && (w.nraw > 0 || w.garbled):
		w.fireMsg(track.MsgReadError)
	case w.garbled || w.aborted || w.n2 > w.walked:
		w.fireMsg(track.MsgCollision)
	default:
		w.fireMsg(track.MsgNoAnswer)
	}
}
