package dcca

import (
	"errors"
	"fmt"
)

var (
	// ErrReservedAddress indicates a requested address in a reserved range.
	ErrReservedAddress = errors.New("reserved address")
	// ErrFirmwareUpdate indicates the decoder asks for the firmware update
	// address, which is never assigned.
	ErrFirmwareUpdate = errors.New("firmware update address")
	// ErrChecksum indicates a data block with a bad CRC.
	ErrChecksum = errors.New("block checksum mismatch")
	// ErrBlockFormat indicates a malformed block.
	ErrBlockFormat = errors.New("malformed block")
)

// ReplyError is returned when a transaction got an unexpected reply.
type ReplyError struct {
	Step string
	Msg  string
}

// Error implements error.
func (e *ReplyError) Error() string {
	return fmt.Sprintf("%s: unexpected reply %s", e.Step, e.Msg)
}
