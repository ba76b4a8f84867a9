package dcca

import "github.com/robotalks/track.go/pkg/locodb"

// Address prefixes of the 14 bit requested/assigned address.
const (
	prefixLongMax  = 0x27
	prefixAccMin   = 0x28
	prefixAccMax   = 0x2f
	prefixExtMin   = 0x30
	prefixExtMax   = 0x37
	prefixShort    = 0x38
	prefixFirmware = 0x3f

	// ParkAddress is the coded address assigned to decoders that must not
	// get a real one.
	ParkAddress uint16 = prefixShort << 8
)

// Address is a decoded DCC-A address.
type Address struct {
	Kind  locodb.Kind
	Addr  int
	Short bool
}

// DecodeAddress splits a 14 bit address into its type and number.
func DecodeAddress(raw uint16) (Address, error) {
	raw &= 0x3fff
	hi, lo := byte(raw>>8), int(raw&0xff)
	switch {
	case hi <= prefixLongMax:
		if raw == 0 {
			return Address{}, ErrReservedAddress
		}
		return Address{Kind: locodb.KindLoco, Addr: int(raw)}, nil
	case hi >= prefixAccMin && hi <= prefixAccMax:
		return Address{Kind: locodb.KindAccessory, Addr: int(raw & 0x7ff)}, nil
	case hi >= prefixExtMin && hi <= prefixExtMax:
		return Address{Kind: locodb.KindExtAccessory, Addr: int(raw & 0x7ff)}, nil
	case hi == prefixShort:
		if lo == 0 || lo > 127 {
			return Address{}, ErrReservedAddress
		}
		return Address{Kind: locodb.KindLoco, Addr: lo, Short: true}, nil
	case hi == prefixFirmware:
		return Address{}, ErrFirmwareUpdate
	}
	return Address{}, ErrReservedAddress
}

// Coded returns the 14 bit address sent in LOGON_ASSIGN. It keeps the
// type prefix of the address.
func (a Address) Coded() uint16 {
	switch a.Kind {
	case locodb.KindAccessory:
		return prefixAccMin<<8 | uint16(a.Addr&0x7ff)
	case locodb.KindExtAccessory:
		return prefixExtMin<<8 | uint16(a.Addr&0x7ff)
	}
	if a.Short && a.Addr <= 127 {
		return prefixShort<<8 | uint16(a.Addr)
	}
	return uint16(a.Addr) & 0x3fff
}
