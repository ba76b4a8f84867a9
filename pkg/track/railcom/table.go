package railcom

// Decoded symbol values above the 6 bit data range.
const (
	SymAck1    byte = 0x40
	SymAck2    byte = 0x41
	SymNack    byte = 0x42
	SymRes1    byte = 0x43
	SymRes2    byte = 0x44
	SymRes3    byte = 0x45
	SymInvalid byte = 0xfe
	SymError   byte = 0xff
)

// encode4of8 maps a 6 bit value to its 4-of-8 line byte.
var encode4of8 = [64]byte{
	0xac, 0xaa, 0xa9, 0xa5, 0xa3, 0xa6, 0x9c, 0x9a,
	0x99, 0x95, 0x93, 0x96, 0x8e, 0x8d, 0x8b, 0xb1,
	0xb2, 0xb4, 0xb8, 0x74, 0x72, 0x6c, 0x6a, 0x69,
	0x65, 0x63, 0x66, 0x5c, 0x5a, 0x59, 0x55, 0x53,
	0x56, 0x4e, 0x4d, 0x4b, 0x47, 0x71, 0xe8, 0xe4,
	0xe2, 0xd1, 0xc9, 0xc5, 0xd8, 0xd4, 0xd2, 0xca,
	0xc6, 0xcc, 0x78, 0x17, 0x1b, 0x1d, 0x1e, 0x2e,
	0x36, 0x3a, 0x27, 0x2b, 0x2d, 0x35, 0x39, 0x33,
}

var decode4of8 [256]byte

func init() {
	for i := range decode4of8 {
		decode4of8[i] = SymInvalid
	}
	for v, b := range encode4of8 {
		decode4of8[b] = byte(v)
	}
	decode4of8[0xf0] = SymAck1
	decode4of8[0x0f] = SymAck2
	decode4of8[0x3c] = SymNack
	decode4of8[0xe1] = SymRes1
	decode4of8[0xc3] = SymRes2
	decode4of8[0x87] = SymRes3
}

// Encode returns the line byte of a 6 bit value.
func Encode(v byte) byte {
	return encode4of8[v&0x3f]
}

// Decode maps a received byte to a 6 bit value or a sentinel. A byte
// received with a UART error is always SymError.
func Decode(b byte, uartErr bool) byte {
	if uartErr {
		return SymError
	}
	return decode4of8[b]
}

func isData(s byte) bool { return s < 0x40 }
func isAck(s byte) bool  { return s == SymAck1 || s == SymAck2 }
