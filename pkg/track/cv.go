package track

import "fmt"

// CVAddr identifies a configuration cell. The concrete types are CV,
// M3CV and BlockAddr, one per logical use.
type CVAddr interface {
	isCVAddr()
	String() string
}

// CV is a flat, zero based DCC configuration variable index.
// The user facing CV number is CV+1.
type CV uint32

// M3CV addresses an m3 configuration cell by CV number and sub-address.
type M3CV struct {
	CV  uint16
	Sub uint8
}

// BlockAddr addresses a byte inside a DCC-A data space block.
type BlockAddr struct {
	Block  uint8
	Offset uint16
}

func (CV) isCVAddr()        {}
func (M3CV) isCVAddr()      {}
func (BlockAddr) isCVAddr() {}

func (c CV) String() string        { return fmt.Sprintf("CV%d", uint32(c)+1) }
func (c M3CV) String() string      { return fmt.Sprintf("CV%d.%d", c.CV, c.Sub) }
func (b BlockAddr) String() string { return fmt.Sprintf("block%d+%d", b.Block, b.Offset) }

// Number returns the user facing CV number.
func (c CV) Number() int { return int(c) + 1 }

// CVNumber converts a user facing CV number (1 based) into a CV index.
func CVNumber(n int, max int) (CV, error) {
	if n < 1 || n > max {
		return 0, ErrOutOfRange
	}
	return CV(n - 1), nil
}
