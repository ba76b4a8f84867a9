// Package v1 holds the wire schema of the station bus, see l1.proto.
package v1

import (
	"github.com/golang/protobuf/proto"
)

// Typed is the envelope of every bus message.
type Typed struct {
	TypeId   uint32 `protobuf:"varint,1,opt,name=type_id,json=typeId,proto3" json:"type_id,omitempty"`
	Sequence uint32 `protobuf:"varint,2,opt,name=sequence,proto3" json:"sequence,omitempty"`
	Message  []byte `protobuf:"bytes,3,opt,name=message,proto3" json:"message,omitempty"`
}

func (m *Typed) Reset()         { *m = Typed{} }
func (m *Typed) String() string { return proto.CompactTextString(m) }
func (*Typed) ProtoMessage()    {}

type CommandOK struct {
}

func (m *CommandOK) Reset()         { *m = CommandOK{} }
func (m *CommandOK) String() string { return proto.CompactTextString(m) }
func (*CommandOK) ProtoMessage()    {}

type CommandErr struct {
	Message string `protobuf:"bytes,1,opt,name=message,proto3" json:"message,omitempty"`
}

func (m *CommandErr) Reset()         { *m = CommandErr{} }
func (m *CommandErr) String() string { return proto.CompactTextString(m) }
func (*CommandErr) ProtoMessage()    {}

type PomRead struct {
	Addr   uint32 `protobuf:"varint,1,opt,name=addr,proto3" json:"addr,omitempty"`
	Format uint32 `protobuf:"varint,2,opt,name=format,proto3" json:"format,omitempty"`
	Cv     uint32 `protobuf:"varint,3,opt,name=cv,proto3" json:"cv,omitempty"`
}

func (m *PomRead) Reset()         { *m = PomRead{} }
func (m *PomRead) String() string { return proto.CompactTextString(m) }
func (*PomRead) ProtoMessage()    {}

type PomWrite struct {
	Addr   uint32 `protobuf:"varint,1,opt,name=addr,proto3" json:"addr,omitempty"`
	Format uint32 `protobuf:"varint,2,opt,name=format,proto3" json:"format,omitempty"`
	Cv     uint32 `protobuf:"varint,3,opt,name=cv,proto3" json:"cv,omitempty"`
	Value  uint32 `protobuf:"varint,4,opt,name=value,proto3" json:"value,omitempty"`
}

func (m *PomWrite) Reset()         { *m = PomWrite{} }
func (m *PomWrite) String() string { return proto.CompactTextString(m) }
func (*PomWrite) ProtoMessage()    {}

type PomResult struct {
	Addr uint32 `protobuf:"varint,1,opt,name=addr,proto3" json:"addr,omitempty"`
	Cv   uint32 `protobuf:"varint,2,opt,name=cv,proto3" json:"cv,omitempty"`
	Msg  string `protobuf:"bytes,3,opt,name=msg,proto3" json:"msg,omitempty"`
	Data []byte `protobuf:"bytes,4,opt,name=data,proto3" json:"data,omitempty"`
}

func (m *PomResult) Reset()         { *m = PomResult{} }
func (m *PomResult) String() string { return proto.CompactTextString(m) }
func (*PomResult) ProtoMessage()    {}

type DccaStatusQuery struct {
}

func (m *DccaStatusQuery) Reset()         { *m = DccaStatusQuery{} }
func (m *DccaStatusQuery) String() string { return proto.CompactTextString(m) }
func (*DccaStatusQuery) ProtoMessage()    {}

type DccaCandidate struct {
	Vendor  uint32 `protobuf:"varint,1,opt,name=vendor,proto3" json:"vendor,omitempty"`
	Uid     uint32 `protobuf:"varint,2,opt,name=uid,proto3" json:"uid,omitempty"`
	Retries uint32 `protobuf:"varint,3,opt,name=retries,proto3" json:"retries,omitempty"`
}

func (m *DccaCandidate) Reset()         { *m = DccaCandidate{} }
func (m *DccaCandidate) String() string { return proto.CompactTextString(m) }
func (*DccaCandidate) ProtoMessage()    {}

type DccaStatus struct {
	State      string           `protobuf:"bytes,1,opt,name=state,proto3" json:"state,omitempty"`
	Session    uint32           `protobuf:"varint,2,opt,name=session,proto3" json:"session,omitempty"`
	Vendor     uint32           `protobuf:"varint,3,opt,name=vendor,proto3" json:"vendor,omitempty"`
	Uid        uint32           `protobuf:"varint,4,opt,name=uid,proto3" json:"uid,omitempty"`
	Registered uint32           `protobuf:"varint,5,opt,name=registered,proto3" json:"registered,omitempty"`
	Candidates []*DccaCandidate `protobuf:"bytes,6,rep,name=candidates,proto3" json:"candidates,omitempty"`
}

func (m *DccaStatus) Reset()         { *m = DccaStatus{} }
func (m *DccaStatus) String() string { return proto.CompactTextString(m) }
func (*DccaStatus) ProtoMessage()    {}

type DccaRegistered struct {
	Vendor uint32 `protobuf:"varint,1,opt,name=vendor,proto3" json:"vendor,omitempty"`
	Uid    uint32 `protobuf:"varint,2,opt,name=uid,proto3" json:"uid,omitempty"`
	Kind   string `protobuf:"bytes,3,opt,name=kind,proto3" json:"kind,omitempty"`
	Addr   uint32 `protobuf:"varint,4,opt,name=addr,proto3" json:"addr,omitempty"`
	New    bool   `protobuf:"varint,5,opt,name=new,proto3" json:"new,omitempty"`
}

func (m *DccaRegistered) Reset()         { *m = DccaRegistered{} }
func (m *DccaRegistered) String() string { return proto.CompactTextString(m) }
func (*DccaRegistered) ProtoMessage()    {}

type DecoderReplyEvent struct {
	Decoder string `protobuf:"bytes,1,opt,name=decoder,proto3" json:"decoder,omitempty"`
	Addr    uint32 `protobuf:"varint,2,opt,name=addr,proto3" json:"addr,omitempty"`
	Msg     string `protobuf:"bytes,3,opt,name=msg,proto3" json:"msg,omitempty"`
	Cv      string `protobuf:"bytes,4,opt,name=cv,proto3" json:"cv,omitempty"`
	Data    []byte `protobuf:"bytes,5,opt,name=data,proto3" json:"data,omitempty"`
}

func (m *DecoderReplyEvent) Reset()         { *m = DecoderReplyEvent{} }
func (m *DecoderReplyEvent) String() string { return proto.CompactTextString(m) }
func (*DecoderReplyEvent) ProtoMessage()    {}

type ProgRead struct {
	Cv uint32 `protobuf:"varint,1,opt,name=cv,proto3" json:"cv,omitempty"`
}

func (m *ProgRead) Reset()         { *m = ProgRead{} }
func (m *ProgRead) String() string { return proto.CompactTextString(m) }
func (*ProgRead) ProtoMessage()    {}

type ProgWrite struct {
	Cv    uint32 `protobuf:"varint,1,opt,name=cv,proto3" json:"cv,omitempty"`
	Value uint32 `protobuf:"varint,2,opt,name=value,proto3" json:"value,omitempty"`
}

func (m *ProgWrite) Reset()         { *m = ProgWrite{} }
func (m *ProgWrite) String() string { return proto.CompactTextString(m) }
func (*ProgWrite) ProtoMessage()    {}

type ProgResult struct {
	Cv    uint32 `protobuf:"varint,1,opt,name=cv,proto3" json:"cv,omitempty"`
	Value uint32 `protobuf:"varint,2,opt,name=value,proto3" json:"value,omitempty"`
}

func (m *ProgResult) Reset()         { *m = ProgResult{} }
func (m *ProgResult) String() string { return proto.CompactTextString(m) }
func (*ProgResult) ProtoMessage()    {}
