package track

import "fmt"

// Packet is one queued command.
type Packet struct {
	Addr   int
	Cmd    Command
	Format Format
	CV     CVAddr
	Value  Value
	Repeat int

	// OnReply receives the reply of the transmission, if it expects one.
	OnReply ReplyFunc
	// Token is copied into the reply for the callback's use.
	Token interface{}
}

func (p *Packet) String() string {
	s := fmt.Sprintf("%s %s@%d", p.Cmd, p.Format, p.Addr)
	if p.CV != nil {
		s += " " + p.CV.String()
	}
	switch v := p.Value.(type) {
	case Int:
		s += fmt.Sprintf(" int=%d", int32(v))
	case Uint:
		s += fmt.Sprintf(" uint=%#x", uint32(v))
	case Bytes:
		s += fmt.Sprintf(" bytes=% x", []byte(v))
	case Bit:
		s += fmt.Sprintf(" bit%d=%v", v.Pos, v.Set)
	}
	return s
}

// ReadBack returns the reply kind the packet expects.
func (p *Packet) ReadBack() ReadBack {
	return p.Cmd.ReadBack(p.Format)
}

// SameTarget reports whether two packets address the same decoder with
// the same command, the key for update coalescing in the queue.
func (p *Packet) SameTarget(o *Packet) bool {
	return p.Addr == o.Addr && p.Format == o.Format && p.Cmd == o.Cmd
}

// WithReply attaches a reply callback and token.
func (p *Packet) WithReply(fn ReplyFunc, token interface{}) *Packet {
	p.OnReply, p.Token = fn, token
	return p
}

// Settings is the configuration accessor the packet factories read.
type Settings interface {
	// RepeatCount returns how often a packet of the format is sent.
	RepeatCount(f Format, accessory bool) int
	// POMRepeat returns how often a POM packet is sent.
	POMRepeat() int
	// RailComEnabled indicates the RailCom cutout is generated.
	RailComEnabled() bool
}

// StaticSettings is a fixed Settings value.
type StaticSettings struct {
	MMRepeat  int
	DCCRepeat int
	M3Repeat  int
	AccRepeat int
	POMRep    int
	RailCom   bool
}

// DefaultSettings are the factory defaults.
var DefaultSettings = StaticSettings{
	MMRepeat:  2,
	DCCRepeat: 1,
	M3Repeat:  1,
	AccRepeat: 2,
	POMRep:    2,
	RailCom:   true,
}

// RepeatCount implements Settings.
func (s StaticSettings) RepeatCount(f Format, accessory bool) int {
	switch {
	case accessory:
		return s.AccRepeat
	case f.IsMM():
		return s.MMRepeat
	case f.IsM3():
		return s.M3Repeat
	}
	return s.DCCRepeat
}

// POMRepeat implements Settings.
func (s StaticSettings) POMRepeat() int { return s.POMRep }

// RailComEnabled implements Settings.
func (s StaticSettings) RailComEnabled() bool { return s.RailCom }

// Factory creates packets. It has no side effect: a packet only takes
// effect once the caller queues it.
type Factory struct {
	Settings Settings
}

// NewFactory creates a Factory.
func NewFactory(s Settings) *Factory {
	if s == nil {
		s = DefaultSettings
	}
	return &Factory{Settings: s}
}

// GenPacket allocates a zero-filled packet and derives the repeat count
// from the per-format configuration.
func (f *Factory) GenPacket(addr int, format Format, cmd Command) (*Packet, error) {
	if !cmd.IsValid() {
		return nil, ErrOutOfRange
	}
	if !cmd.AllowedIn(format) {
		return nil, &FormatError{Cmd: cmd, Format: format}
	}
	if err := checkAddress(addr, format, cmd); err != nil {
		return nil, err
	}
	p := &Packet{
		Addr:   addr,
		Cmd:    cmd,
		Format: format,
		Repeat: f.Settings.RepeatCount(format, cmd.IsAccessory()),
	}
	if cmd.ReadBack(format) == ReadBackPOM || cmd.ReadBack(format) == ReadBackPOMWrite ||
		cmd.ReadBack(format) == ReadBackXPOM {
		p.Repeat = f.Settings.POMRepeat()
	}
	if p.Repeat < 1 {
		p.Repeat = 1
	}
	return p, nil
}

func checkAddress(addr int, format Format, cmd Command) error {
	info, _ := cmd.info()
	switch info.family {
	case famProgTrack, famDCCA, famRaw:
		return nil
	case famGeneric:
		if cmd == CmdIdle || cmd == CmdReset {
			return nil
		}
	case famAccessory:
		max := MaxDCCAccessory
		if format.IsMM() {
			max = MaxMMAccessory
		}
		if addr < 0 || addr > max {
			return ErrOutOfRange
		}
		return nil
	}
	if cmd == CmdMMMagnet {
		if addr < 0 || addr > MaxMMAccessory {
			return ErrOutOfRange
		}
		return nil
	}
	if cmd == CmdM3Beacon || cmd == CmdM3Search {
		return nil
	}
	if addr < 1 || addr > format.MaxAddress() {
		return ErrOutOfRange
	}
	return nil
}
