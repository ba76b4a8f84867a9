package dcca

// crcTable is the reflected CRC-8 with polynomial 0x31 (0x8c reversed).
var crcTable [256]byte

func init() {
	for i := range crcTable {
		c := byte(i)
		for j := 0; j < 8; j++ {
			if c&1 != 0 {
				c = c>>1 ^ 0x8c
			} else {
				c >>= 1
			}
		}
		crcTable[i] = c
	}
}

// CRC8 continues a checksum over data. Running it over a message followed
// by its own checksum yields zero.
func CRC8(seed byte, data ...byte) byte {
	crc := seed
	for _, b := range data {
		crc = crcTable[crc^b]
	}
	return crc
}
