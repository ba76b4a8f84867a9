package dcca

import (
	"sync"

	"github.com/robotalks/track.go/pkg/track"
)

// simDecoder answers DCC-A packets like a single decoder on the track.
type simDecoder struct {
	lock sync.Mutex

	vendor    uint16
	uid       uint32
	requested uint16
	maxFunc   byte
	flags     byte
	spaces    map[uint8][]byte

	// logons scripts the replies to LOGON_ENABLE; UNIQUE once exhausted
	// until assigned, silence afterwards.
	logons []track.MsgType
	// corrupt lists spaces whose next transfer gets a bad CRC.
	corrupt map[uint8]int

	assigned bool
	coded    uint16
	sent     []track.Command
	chunks   [][6]byte
	chunk    int
	blockCRC byte
}

func newSimDecoder(requested uint16) *simDecoder {
	return &simDecoder{
		vendor:    0x00d,
		uid:       0x12345678,
		requested: requested,
		maxFunc:   28,
		flags:     0x05,
		spaces:    make(map[uint8][]byte),
		corrupt:   make(map[uint8]int),
	}
}

func (s *simDecoder) reply(msg track.MsgType, data ...byte) track.DecoderReply {
	r := track.DecoderReply{Msg: msg, Len: len(data)}
	copy(r.Data[:], data)
	return r
}

func (s *simDecoder) uniqueReply() track.DecoderReply {
	return s.reply(track.MsgDCCAUnique, 0xf0|byte(s.vendor>>8), byte(s.vendor),
		byte(s.uid>>24), byte(s.uid>>16), byte(s.uid>>8), byte(s.uid))
}

func (s *simDecoder) shortInfo() track.DecoderReply {
	d := []byte{byte(s.requested>>8) & 0x3f, byte(s.requested), s.maxFunc, 0x01, 0}
	return s.reply(track.MsgDCCAShortInfo, append(d, CRC8(0, d...))...)
}

// buildChunks lays a data space out in blocks of 6 byte window chunks.
func buildChunks(space uint8, data []byte, blockSize int, corruptBlock int) [][6]byte {
	var chunks [][6]byte
	seed := space
	for blockNo := 0; ; blockNo++ {
		n := len(data)
		if n > blockSize {
			n = blockSize
		}
		header := byte(n)
		if n < len(data) {
			header |= blockContinue
		}
		raw := append([]byte{header}, data[:n]...)
		crc := CRC8(seed, append([]byte{byte(blockNo)}, raw...)...)
		if blockNo == corruptBlock {
			raw = append(raw, crc^0x5a)
		} else {
			raw = append(raw, crc)
		}
		seed = crc
		for i := 0; i < len(raw); i += 6 {
			var c [6]byte
			copy(c[:], raw[i:])
			chunks = append(chunks, c)
		}
		data = data[n:]
		if header&blockContinue == 0 {
			return chunks
		}
	}
}

func (s *simDecoder) Enqueue(p *track.Packet) error {
	s.lock.Lock()
	r, ok := s.handle(p)
	s.lock.Unlock()
	if ok {
		track.NewBitbuffer(p, nil).Deliver(r)
	}
	return nil
}

func (s *simDecoder) handle(p *track.Packet) (track.DecoderReply, bool) {
	fr, ok := track.ParseDCCA(p)
	if !ok {
		return track.DecoderReply{}, false
	}
	s.sent = append(s.sent, fr.Cmd)
	selected := fr.Vendor == s.vendor && fr.UID == s.uid
	switch fr.Cmd {
	case track.CmdDCCALogonEnable:
		if s.assigned {
			return s.reply(track.MsgNoAnswer), true
		}
		if len(s.logons) > 0 {
			msg := s.logons[0]
			s.logons = s.logons[1:]
			if msg != track.MsgDCCAUnique {
				return s.reply(msg), true
			}
		}
		return s.uniqueReply(), true
	case track.CmdDCCASelectShortInfo:
		if !selected {
			return s.reply(track.MsgNoAnswer), true
		}
		return s.shortInfo(), true
	case track.CmdDCCALogonAssign:
		if !selected {
			return s.reply(track.MsgNoAnswer), true
		}
		s.assigned, s.coded = true, fr.Coded
		return s.reply(track.MsgDCCAState, 0xd0, s.flags, 0, 1, 0, 0), true
	case track.CmdDCCASelectBlock:
		if !selected {
			return s.reply(track.MsgNoAnswer), true
		}
		corruptBlock := -1
		if n, ok := s.corrupt[fr.Space]; ok {
			corruptBlock = n
			delete(s.corrupt, fr.Space)
		}
		s.chunks = buildChunks(fr.Space, s.spaces[fr.Space], 10, corruptBlock)
		s.chunk = 0
		return s.reply(track.MsgAck), true
	case track.CmdDCCAGetDataStart, track.CmdDCCAGetDataCont:
		if s.chunk >= len(s.chunks) {
			return s.reply(track.MsgNoAnswer), true
		}
		c := s.chunks[s.chunk]
		s.chunk++
		return s.reply(track.MsgDCCABlock, c[:]...), true
	case track.CmdDCCASetDecoderState:
		if !selected {
			return s.reply(track.MsgNoAnswer), true
		}
		s.flags = 0
		return s.reply(track.MsgAck), true
	}
	return track.DecoderReply{}, false
}

func (s *simDecoder) commands() []track.Command {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]track.Command(nil), s.sent...)
}
