package comm

import (
	"fmt"
	"io"
)

// Frame codes.
const (
	CodeTransmit byte = 0x01
	CodePower    byte = 0x02

	CodeReady   byte = 0x81
	CodeWindow  byte = 0x82
	CodeCurrent byte = 0x83
	CodeBusAck  byte = 0x84

	// CodeMaskEvent marks frames sent by the generator.
	CodeMaskEvent byte = 0x80
)

const (
	frameSOF     byte = 0x7e
	maxFrameData      = 0xff
)

// Frame is one link frame.
type Frame struct {
	Code byte
	Data []byte
}

func (f *Frame) String() string {
	return fmt.Sprintf("frame %02x [% x]", f.Code, f.Data)
}

// IsEvent indicates the frame was sent by the generator.
func (f *Frame) IsEvent() bool {
	return f.Code&CodeMaskEvent != 0
}

// Bytes returns encoded bytes for sending.
func (f *Frame) Bytes() []byte {
	n := len(f.Data)
	if n > maxFrameData {
		n = maxFrameData
	}
	b := make([]byte, n+4)
	b[0], b[1], b[2] = frameSOF, f.Code, byte(n)
	copy(b[3:], f.Data[:n])
	b[n+3] = CRC8(0, b[1:n+3]...)
	return b
}

// WriteTo writes encoded bytes.
func (f *Frame) WriteTo(w io.Writer) (int64, error) {
	if len(f.Data) > maxFrameData {
		return 0, ErrFrameTooLong
	}
	n, err := w.Write(f.Bytes())
	return int64(n), err
}

var crcTable [256]byte

func init() {
	for i := range crcTable {
		c := byte(i)
		for bit := 0; bit < 8; bit++ {
			if c&0x80 != 0 {
				c = c<<1 ^ 0x07
			} else {
				c <<= 1
			}
		}
		crcTable[i] = c
	}
}

// CRC8 continues a CRC-8 (polynomial 0x07) over data.
func CRC8(crc byte, data ...byte) byte {
	for _, b := range data {
		crc = crcTable[crc^b]
	}
	return crc
}
