package msgs

import (
	"testing"

	"github.com/golang/protobuf/proto"
	"github.com/stretchr/testify/require"

	pb "github.com/robotalks/track.go/pkg/proto/track/l1/v1"
)

func TestTypeIDKinds(t *testing.T) {
	for id, msg := range MessageTypes {
		typed := Typed{Typed: pb.Typed{TypeId: id}}
		require.Equal(t, id, msg.NewMessage().(SerializableMessage).TypeID())
		require.NotEqual(t, typed.IsCommand(), typed.IsEvent())
	}
	require.True(t, (&Typed{Typed: pb.Typed{TypeId: PomResultTypeID}}).IsReply())
	require.False(t, (&Typed{Typed: pb.Typed{TypeId: PomReadTypeID}}).IsReply())
	require.True(t, (&Typed{Typed: pb.Typed{TypeId: DccaRegisteredTypeID}}).IsEvent())
	require.False(t, (&Typed{Typed: pb.Typed{TypeId: DccaRegisteredTypeID}}).IsReply())
}

func TestTypedEnvelope(t *testing.T) {
	status := &DccaStatus{}
	status.State = "LOGONIDLE"
	status.Session = 7
	status.Candidates = []*pb.DccaCandidate{{Vendor: 0x0d, Uid: 0x12345678, Retries: 1}}
	typed, err := TypedFrom(status)
	require.NoError(t, err)
	typed.Sequence = 42
	data, err := typed.Encode()
	require.NoError(t, err)

	decoded, err := DecodeTyped(data)
	require.NoError(t, err)
	require.Equal(t, uint32(42), decoded.Sequence)
	require.True(t, decoded.IsReply())
	msg, err := decoded.Decode()
	require.NoError(t, err)
	require.IsType(t, &DccaStatus{}, msg)
	require.True(t, proto.Equal(&status.DccaStatus, &msg.(*DccaStatus).DccaStatus))
}

func TestTypedErrors(t *testing.T) {
	_, err := TypedFrom(nil)
	require.ErrorIs(t, err, ErrNotSerializable)

	_, err = (&Typed{Typed: pb.Typed{TypeId: GroupCustom | 5}}).Decode()
	var unknown *ErrUnknownType
	require.ErrorAs(t, err, &unknown)
	require.Equal(t, GroupCustom|5, unknown.TypeID)

	_, err = (&Typed{Typed: pb.Typed{TypeId: PomReadTypeID, Message: []byte{0xff}}}).Decode()
	require.Error(t, err)

	cmdErr := NewCommandErr(ErrUnsupportedCommand)
	require.EqualError(t, cmdErr, ErrUnsupportedCommand.Error())
}
