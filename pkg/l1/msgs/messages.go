package msgs

import (
	"github.com/golang/protobuf/proto"

	fx "github.com/robotalks/track.go/pkg/framework"
	pb "github.com/robotalks/track.go/pkg/proto/track/l1/v1"
)

// CommandOK is the generic reply indicating success for commands.
type CommandOK struct {
	pb.CommandOK
}

// NewCommandOK creates a CommandOK.
func NewCommandOK() *CommandOK {
	return &CommandOK{}
}

// NewMessage implements Message.
func (m *CommandOK) NewMessage() fx.Message { return &CommandOK{} }

// TypeID implements SerializableMessage.
func (m *CommandOK) TypeID() uint32 { return CommandOKTypeID }

// Serializable implements SerializableMessage.
func (m *CommandOK) Serializable() proto.Message { return &m.CommandOK }

// CommandErr is the generic message representing command error.
type CommandErr struct {
	pb.CommandErr
}

// NewCommandErr creates a CommandErr from an error.
func NewCommandErr(err error) *CommandErr {
	return &CommandErr{CommandErr: pb.CommandErr{Message: err.Error()}}
}

// NewMessage implements Message.
func (m *CommandErr) NewMessage() fx.Message { return &CommandErr{} }

// TypeID implements SerializableMessage.
func (m *CommandErr) TypeID() uint32 { return CommandErrTypeID }

// Serializable implements SerializableMessage.
func (m *CommandErr) Serializable() proto.Message { return &m.CommandErr }

// Error implements error.
func (m *CommandErr) Error() string { return m.Message }

// PomRead reads a CV on the main track. CV numbers start at 1.
type PomRead struct {
	pb.PomRead
}

// NewMessage implements Message.
func (m *PomRead) NewMessage() fx.Message { return &PomRead{} }

// TypeID implements SerializableMessage.
func (m *PomRead) TypeID() uint32 { return PomReadTypeID }

// Serializable implements SerializableMessage.
func (m *PomRead) Serializable() proto.Message { return &m.PomRead }

// PomWrite writes a CV on the main track.
type PomWrite struct {
	pb.PomWrite
}

// NewMessage implements Message.
func (m *PomWrite) NewMessage() fx.Message { return &PomWrite{} }

// TypeID implements SerializableMessage.
func (m *PomWrite) TypeID() uint32 { return PomWriteTypeID }

// Serializable implements SerializableMessage.
func (m *PomWrite) Serializable() proto.Message { return &m.PomWrite }

// PomResult answers PomRead and PomWrite with the decoder reply.
type PomResult struct {
	pb.PomResult
}

// NewMessage implements Message.
func (m *PomResult) NewMessage() fx.Message { return &PomResult{} }

// TypeID implements SerializableMessage.
func (m *PomResult) TypeID() uint32 { return PomResultTypeID }

// Serializable implements SerializableMessage.
func (m *PomResult) Serializable() proto.Message { return &m.PomResult }

// DccaStatusQuery asks for the state of the DCC-A registration.
type DccaStatusQuery struct {
	pb.DccaStatusQuery
}

// NewMessage implements Message.
func (m *DccaStatusQuery) NewMessage() fx.Message { return &DccaStatusQuery{} }

// TypeID implements SerializableMessage.
func (m *DccaStatusQuery) TypeID() uint32 { return DccaStatusQueryTypeID }

// Serializable implements SerializableMessage.
func (m *DccaStatusQuery) Serializable() proto.Message { return &m.DccaStatusQuery }

// DccaStatus response.
type DccaStatus struct {
	pb.DccaStatus
}

// NewMessage implements Message.
func (m *DccaStatus) NewMessage() fx.Message { return &DccaStatus{} }

// TypeID implements SerializableMessage.
func (m *DccaStatus) TypeID() uint32 { return DccaStatusTypeID }

// Serializable implements SerializableMessage.
func (m *DccaStatus) Serializable() proto.Message { return &m.DccaStatus }

// DccaRegistered event is sent when a decoder got its address.
type DccaRegistered struct {
	pb.DccaRegistered
}

// NewMessage implements Message.
func (m *DccaRegistered) NewMessage() fx.Message { return &DccaRegistered{} }

// TypeID implements SerializableMessage.
func (m *DccaRegistered) TypeID() uint32 { return DccaRegisteredTypeID }

// Serializable implements SerializableMessage.
func (m *DccaRegistered) Serializable() proto.Message { return &m.DccaRegistered }

// DecoderReplyEvent carries a decoder reply nobody asked for over the bus.
type DecoderReplyEvent struct {
	pb.DecoderReplyEvent
}

// NewMessage implements Message.
func (m *DecoderReplyEvent) NewMessage() fx.Message { return &DecoderReplyEvent{} }

// TypeID implements SerializableMessage.
func (m *DecoderReplyEvent) TypeID() uint32 { return DecoderReplyEventTypeID }

// Serializable implements SerializableMessage.
func (m *DecoderReplyEvent) Serializable() proto.Message { return &m.DecoderReplyEvent }

// ProgRead reads a CV on the programming track.
type ProgRead struct {
	pb.ProgRead
}

// NewMessage implements Message.
func (m *ProgRead) NewMessage() fx.Message { return &ProgRead{} }

// TypeID implements SerializableMessage.
func (m *ProgRead) TypeID() uint32 { return ProgReadTypeID }

// Serializable implements SerializableMessage.
func (m *ProgRead) Serializable() proto.Message { return &m.ProgRead }

// ProgWrite writes a CV on the programming track.
type ProgWrite struct {
	pb.ProgWrite
}

// NewMessage implements Message.
func (m *ProgWrite) NewMessage() fx.Message { return &ProgWrite{} }

// TypeID implements SerializableMessage.
func (m *ProgWrite) TypeID() uint32 { return ProgWriteTypeID }

// Serializable implements SerializableMessage.
func (m *ProgWrite) Serializable() proto.Message { return &m.ProgWrite }

// ProgResult answers ProgRead and ProgWrite.
type ProgResult struct {
	pb.ProgResult
}

// NewMessage implements Message.
func (m *ProgResult) NewMessage() fx.Message { return &ProgResult{} }

// TypeID implements SerializableMessage.
func (m *ProgResult) TypeID() uint32 { return ProgResultTypeID }

// Serializable implements SerializableMessage.
func (m *ProgResult) Serializable() proto.Message { return &m.ProgResult }

// TypeID Groups
const (
	GroupCommand uint32 = 0x00000000
	GroupPOM     uint32 = 0x00010000
	GroupDCCA    uint32 = 0x00020000
	GroupDecoder uint32 = 0x00030000
	GroupProg    uint32 = 0x00040000
	GroupCustom  uint32 = 0x7f000000 // base group id for custom messages.
)

// TypeIDs
const (
	CommandOKTypeID         uint32 = GroupCommand | TypeIDMaskReply | 0x0000
	CommandErrTypeID        uint32 = GroupCommand | TypeIDMaskReply | 0x0001
	PomReadTypeID           uint32 = GroupPOM | 0x0000
	PomWriteTypeID          uint32 = GroupPOM | 0x0001
	PomResultTypeID         uint32 = GroupPOM | TypeIDMaskReply | 0x0000
	DccaStatusQueryTypeID   uint32 = GroupDCCA | 0x0000
	DccaStatusTypeID        uint32 = DccaStatusQueryTypeID | TypeIDMaskReply
	DccaRegisteredTypeID    uint32 = TypeIDKindEvent | GroupDCCA | 0x0001
	DecoderReplyEventTypeID uint32 = TypeIDKindEvent | GroupDecoder | 0x0000
	ProgReadTypeID          uint32 = GroupProg | 0x0000
	ProgWriteTypeID         uint32 = GroupProg | 0x0001
	ProgResultTypeID        uint32 = GroupProg | TypeIDMaskReply | 0x0000
)
