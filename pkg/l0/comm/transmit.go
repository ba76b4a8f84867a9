package comm

import (
	"encoding/binary"

	"github.com/robotalks/track.go/pkg/track"
)

// Tags of the CV and value fields of a Transmit frame.
const (
	tagNone byte = iota
	tagCV
	tagM3CV
	tagBlock
)

const (
	tagInt byte = iota + 1
	tagUint
	tagBytes
	tagBit
)

// Offsets into a Transmit frame.
const (
	txFormat   = 0
	txCmd      = 1
	txAddr     = 2
	txRepeat   = 4
	txReadBack = 5
	txPreamble = 6
	txTail     = 7
	txGap      = 8
	txFlags    = 9
	txCVTag    = 10
	txCV       = 11
	txValueTag = 15
	txValue    = 16
)

// EncodeTransmit lays a Bitbuffer out as the data of a Transmit frame.
func EncodeTransmit(bb *track.Bitbuffer) []byte {
	b := make([]byte, txValue, txValue+16)
	b[txFormat], b[txCmd] = byte(bb.Format), byte(bb.Cmd)
	binary.BigEndian.PutUint16(b[txAddr:], uint16(bb.Addr))
	b[txRepeat], b[txReadBack] = byte(bb.Repeat), byte(bb.ReadBack)
	b[txPreamble], b[txTail] = byte(bb.Preamble), byte(bb.Tail)
	b[txGap], b[txFlags] = byte(bb.Gap), byte(bb.Flags)
	switch cv := bb.CV.(type) {
	case track.CV:
		b[txCVTag] = tagCV
		binary.BigEndian.PutUint32(b[txCV:], uint32(cv))
	case track.M3CV:
		b[txCVTag] = tagM3CV
		binary.BigEndian.PutUint16(b[txCV:], cv.CV)
		b[txCV+2] = cv.Sub
	case track.BlockAddr:
		b[txCVTag] = tagBlock
		b[txCV] = cv.Block
		binary.BigEndian.PutUint16(b[txCV+1:], cv.Offset)
	}
	switch v := bb.Value.(type) {
	case track.Int:
		b[txValueTag] = tagInt
		b = appendUint32(b, uint32(v))
	case track.Uint:
		b[txValueTag] = tagUint
		b = appendUint32(b, uint32(v))
	case track.Bytes:
		b[txValueTag] = tagBytes
		b = append(b, v...)
	case track.Bit:
		b[txValueTag] = tagBit
		set := byte(0)
		if v.Set {
			set = 1
		}
		b = append(b, v.Pos, set)
	}
	return b
}

func appendUint32(b []byte, v uint32) []byte {
	return append(b, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}
