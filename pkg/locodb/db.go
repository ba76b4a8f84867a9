// Package locodb stores the decoders known to the station.
package locodb

import (
	"errors"
	"fmt"

	"github.com/robotalks/track.go/pkg/track"
)

// Kind is the address space of a decoder.
type Kind int

// Decoder kinds.
const (
	KindLoco Kind = iota
	KindAccessory
	KindExtAccessory
)

func (k Kind) String() string {
	switch k {
	case KindAccessory:
		return "accessory"
	case KindExtAccessory:
		return "ext-accessory"
	}
	return "loco"
}

// MaxAddress returns the highest address of the kind.
func (k Kind) MaxAddress() int {
	if k == KindLoco {
		return track.MaxDCCAddress
	}
	return track.MaxDCCAccessory - 1
}

// ConfigKind tells how a record was configured.
type ConfigKind int

// Configuration kinds.
const (
	ConfigManual ConfigKind = iota
	ConfigDCCA
)

func (c ConfigKind) String() string {
	if c == ConfigDCCA {
		return "dcca"
	}
	return "manual"
}

// FuncIcon describes the symbol and timing of a function key.
type FuncIcon struct {
	Icon   byte
	Timing byte
}

// Key identifies a record.
type Key struct {
	Kind Kind
	Addr int
}

func (k Key) String() string {
	return fmt.Sprintf("%s@%d", k.Kind, k.Addr)
}

// Record is one decoder.
type Record struct {
	Kind   Kind
	Addr   int
	Format track.Format
	Config ConfigKind

	Name         string
	ShortName    string
	VendorID     uint16
	UID          uint32
	MaxFunc      int
	Icons        [track.MaxFunction + 1]FuncIcon
	Capabilities []byte
	ProductInfo  string

	// Live records are refreshed by the signal queue.
	Live    bool
	Speed   int
	Forward bool
	Funcs   track.FuncBits
}

// Key returns the record key.
func (r *Record) Key() Key {
	return Key{Kind: r.Kind, Addr: r.Addr}
}

// State returns the refresh state of the record.
func (r *Record) State() track.LocoState {
	return track.LocoState{
		Addr:    r.Addr,
		Format:  r.Format,
		Speed:   r.Speed,
		Forward: r.Forward,
		MaxFunc: r.MaxFunc,
		Funcs:   r.Funcs,
	}
}

var (
	// ErrNotFound indicates no record exists.
	ErrNotFound = errors.New("record not found")
	// ErrFull indicates there is no free address left.
	ErrFull = errors.New("no free address")
	// ErrInvalidAddress indicates an address outside the kind's range.
	ErrInvalidAddress = errors.New("invalid address")
)

// DB is the decoder database.
type DB interface {
	Get(key Key) (Record, bool)
	Put(r Record) error
	Delete(key Key) error
	// Update modifies a record in place.
	Update(key Key, fn func(*Record)) error
	// FindByUID looks a record up by its DCC-A identity.
	FindByUID(vendor uint16, uid uint32) (Record, bool)
	// FreeAddress returns the first unused address at or above from.
	FreeAddress(kind Kind, from int) (int, error)
	// Each iterates records in key order until fn returns false.
	Each(fn func(Record) bool)
	// SetLive changes the refresh membership of a loco.
	SetLive(addr int, live bool) error
	// NextLive returns the first live loco above after, wrapping around.
	NextLive(after int) (track.LocoState, bool)
}
