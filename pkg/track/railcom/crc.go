package railcom

const (
	m3CRCPoly = 0x07
	m3CRCInit = 0x7f
)

// M3CRC computes the checksum of m3 read-back data.
func M3CRC(data []byte) byte {
	crc := byte(m3CRCInit)
	for _, b := range data {
		crc ^= b
		for i := 0; i < 8; i++ {
			if crc&0x80 != 0 {
				crc = crc<<1 ^ m3CRCPoly
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
