package track

import "sync/atomic"

// Encoder framing defaults.
const (
	DCCPreamble     = 17
	DCCProgPreamble = 25
	DCCTail         = 1
	MMGap           = 4
	M3Flags         = 2
)

// Bitbuffer is the in-flight transmission of one packet. The signal
// generator owns it while encoding, the reply receiver while the reply
// window is open.
type Bitbuffer struct {
	Addr     int
	Cmd      Command
	Format   Format
	CV       CVAddr
	Value    Value
	Repeat   int
	ReadBack ReadBack
	// ExpectLen is the number of data bytes an m3 data read-back carries.
	ExpectLen int

	Preamble int // DCC preamble bits
	Tail     int // DCC end bits
	Gap      int // MM inter-packet gap in bit times
	Flags    int // m3 sync flags
	Stuff    int // m3 bit stuffing counter

	onReply ReplyFunc
	token   interface{}
	fired   int32
}

// NewBitbuffer converts a dequeued packet into its in-flight form.
func NewBitbuffer(p *Packet, s Settings) *Bitbuffer {
	b := &Bitbuffer{
		Addr:    p.Addr,
		Cmd:     p.Cmd,
		Format:  p.Format,
		CV:      p.CV,
		Value:   p.Value,
		Repeat:  p.Repeat,
		onReply: p.OnReply,
		token:   p.Token,
	}
	b.ReadBack = p.ReadBack()
	if s != nil && !s.RailComEnabled() && !p.Format.IsM3() {
		b.ReadBack = ReadBackNone
	}
	switch {
	case p.Format.IsDCC():
		b.Preamble, b.Tail = DCCPreamble, DCCTail
		if p.Cmd.IsProgTrack() {
			b.Preamble = DCCProgPreamble
		}
	case p.Format.IsMM():
		b.Gap = MMGap
	case p.Format.IsM3():
		b.Flags = M3Flags
		if p.Cmd == CmdM3ReadCV {
			b.ExpectLen = int(UintOf(p.Value))
		}
	}
	return b
}

// ExpectsReply indicates a reply window must be armed for this buffer.
func (b *Bitbuffer) ExpectsReply() bool {
	return b.ReadBack != ReadBackNone
}

// Delivered indicates the reply has been delivered.
func (b *Bitbuffer) Delivered() bool {
	return atomic.LoadInt32(&b.fired) != 0
}

// DecoderType returns the decoder kind the buffer addresses.
func (b *Bitbuffer) DecoderType() DecoderType {
	switch {
	case b.Cmd == CmdAccExtended || b.Cmd == CmdAccExtNOP:
		return DecoderExtAccessory
	case b.Cmd.IsAccessory():
		return DecoderAccessory
	case b.Format.IsM3():
		return DecoderM3
	case b.Format.IsMM():
		return DecoderMM
	case b.Format.IsDCC():
		return DecoderDCC
	}
	return DecoderNone
}

// Deliver hands the reply to the packet's callback. Only the first call
// has an effect; it returns false for every later one.
func (b *Bitbuffer) Deliver(r DecoderReply) bool {
	if !atomic.CompareAndSwapInt32(&b.fired, 0, 1) {
		return false
	}
	if r.Decoder == DecoderNone {
		r.Decoder = b.DecoderType()
	}
	if r.Addr == 0 {
		r.Addr = b.Addr
	}
	if r.CV == nil {
		r.CV = b.CV
	}
	r.Token = b.token
	if b.onReply != nil {
		b.onReply(r)
	}
	return true
}
