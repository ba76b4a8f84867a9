package track

import (
	"context"
	"fmt"
	"time"
)

// ReadBack is the kind of reply a transmission expects.
type ReadBack int

// Read-back kinds.
const (
	ReadBackNone ReadBack = iota
	ReadBackStandard
	ReadBackPOM
	ReadBackPOMWrite
	ReadBackXPOM
	ReadBackDCCAID
	ReadBackDCCAData
	ReadBackDCCAShortInfo
	ReadBackDCCAAck
	ReadBackM3Bin
	ReadBackM3Data
)

var readBackNames = [...]string{
	ReadBackNone:          "none",
	ReadBackStandard:      "standard",
	ReadBackPOM:           "pom",
	ReadBackPOMWrite:      "pom-write",
	ReadBackXPOM:          "xpom",
	ReadBackDCCAID:        "dcca-id",
	ReadBackDCCAData:      "dcca-data",
	ReadBackDCCAShortInfo: "dcca-shortinfo",
	ReadBackDCCAAck:       "dcca-ack",
	ReadBackM3Bin:         "m3-bin",
	ReadBackM3Data:        "m3-data",
}

func (r ReadBack) String() string {
	if r >= 0 && int(r) < len(readBackNames) {
		return readBackNames[r]
	}
	return fmt.Sprintf("readback(%d)", int(r))
}

// IsDCCA indicates one of the combined-window DCC-A read-backs.
func (r ReadBack) IsDCCA() bool {
	return r >= ReadBackDCCAID && r <= ReadBackDCCAAck
}

// MsgType is the kind of a decoder reply.
type MsgType int

// Reply message types. The first group are terminal outcomes synthesized
// by the receiver, the rest are decoded messages.
const (
	MsgTimeout MsgType = iota
	MsgNoAnswer
	MsgReadError
	MsgCollision
	MsgUnknown
	MsgAck
	MsgNack
	MsgAdrHigh
	MsgAdrLow
	MsgPOM
	MsgExt
	MsgDyn
	MsgStat
	MsgXPOM0
	MsgXPOM1
	MsgXPOM2
	MsgXPOM3
	MsgDCCAUnique
	MsgDCCAState
	MsgDCCAShortInfo
	MsgDCCABlock
	MsgM3Ack
	MsgM3Nack
	MsgM3Data
)

var msgTypeNames = [...]string{
	MsgTimeout:       "TIMEOUT",
	MsgNoAnswer:      "NOANSWER",
	MsgReadError:     "READERROR",
	MsgCollision:     "COLLISION",
	MsgUnknown:       "UNKNOWN",
	MsgAck:           "ACK",
	MsgNack:          "NACK",
	MsgAdrHigh:       "ADR_HIGH",
	MsgAdrLow:        "ADR_LOW",
	MsgPOM:           "POM",
	MsgExt:           "EXT",
	MsgDyn:           "DYN",
	MsgStat:          "STAT",
	MsgXPOM0:         "XPOM0",
	MsgXPOM1:         "XPOM1",
	MsgXPOM2:         "XPOM2",
	MsgXPOM3:         "XPOM3",
	MsgDCCAUnique:    "DCCA_UNIQUE",
	MsgDCCAState:     "DCCA_STATE",
	MsgDCCAShortInfo: "DCCA_SHORTINFO",
	MsgDCCABlock:     "DCCA_BLOCK",
	MsgM3Ack:         "M3_ACK",
	MsgM3Nack:        "M3_NACK",
	MsgM3Data:        "M3_DATA",
}

func (m MsgType) String() string {
	if m >= 0 && int(m) < len(msgTypeNames) {
		return msgTypeNames[m]
	}
	return fmt.Sprintf("msg(%d)", int(m))
}

// IsFailure indicates a terminal outcome without decoded content.
func (m MsgType) IsFailure() bool {
	return m <= MsgUnknown
}

// MaxReplyData is the capacity of a reply's data buffer.
const MaxReplyData = 16

// DecoderReply is one decoded answer of a decoder. It is passed by value
// so building it never allocates.
type DecoderReply struct {
	Decoder DecoderType
	Addr    int
	Msg     MsgType
	CV      CVAddr
	Data    [MaxReplyData]byte
	Len     int
	Token   interface{}
}

// Bytes returns the valid part of Data.
func (r *DecoderReply) Bytes() []byte {
	n := r.Len
	if n > MaxReplyData {
		n = MaxReplyData
	}
	return r.Data[:n]
}

func (r DecoderReply) String() string {
	s := fmt.Sprintf("%s %s@%d", r.Msg, r.Decoder, r.Addr)
	if r.CV != nil {
		s += " " + r.CV.String()
	}
	if r.Len > 0 {
		s += fmt.Sprintf(" % x", r.Bytes())
	}
	return s
}

// ReplyFunc receives a decoder reply. It is invoked from the reply
// executor and must not block.
type ReplyFunc func(DecoderReply)

// Future is a one-shot reply slot. The first reply wins, later replies
// (e.g. a window that resolves after the waiter gave up) are dropped.
type Future struct {
	ch chan DecoderReply
}

// NewFuture creates a Future.
func NewFuture() *Future {
	return &Future{ch: make(chan DecoderReply, 1)}
}

// Callback returns the ReplyFunc to attach to a packet.
func (f *Future) Callback() ReplyFunc {
	return func(r DecoderReply) {
		select {
		case f.ch <- r:
		default:
		}
	}
}

// ResultChan returns the chan to retrieve the reply.
func (f *Future) ResultChan() <-chan DecoderReply {
	return f.ch
}

// Wait blocks for the reply. When the timeout expires first a reply of
// type MsgTimeout is returned; cancellation of ctx returns ctx.Err().
func (f *Future) Wait(ctx context.Context, timeout time.Duration) (DecoderReply, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case r := <-f.ch:
		return r, nil
	case <-timer.C:
		return DecoderReply{Msg: MsgTimeout}, nil
	case <-ctx.Done():
		return DecoderReply{Msg: MsgTimeout}, ctx.Err()
	}
}
