package env

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/denisbrodbeck/machineid"
)

const appID = "track.go"

// MachineID retrieves the unique ID identifying the machine.
func MachineID() string {
	id, err := machineid.ProtectedID(appID)
	if err != nil {
		panic(err)
	}
	return id[:16]
}

// StationCID derives the 16-bit DCC-A central ID from the machine ID.
func StationCID() uint16 {
	return CIDFrom(MachineID())
}

// CIDFrom derives a central ID from a hex encoded ID. Zero is never
// returned.
func CIDFrom(id string) uint16 {
	var cid uint16
	if b, err := hex.DecodeString(id); err == nil && len(b) >= 2 {
		cid = binary.BigEndian.Uint16(b)
	} else {
		for _, c := range []byte(id) {
			cid = cid*31 + uint16(c)
		}
	}
	if cid == 0 {
		cid = 1
	}
	return cid
}
