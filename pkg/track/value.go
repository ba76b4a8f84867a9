package track

// Value is the generic parameter of a packet. The concrete types are Int,
// Uint, Bytes and Bit; which one a packet carries is selected by its
// command.
type Value interface {
	isValue()
}

// Int is a signed parameter, e.g. a speed with direction flag.
type Int int32

// Uint is an unsigned parameter, e.g. a function bitmap.
type Uint uint32

// Bytes carries raw bytes: test commands, CV data, DCC-A payloads.
type Bytes []byte

// Bit is a single bit operation.
type Bit struct {
	Pos uint8
	Set bool
}

func (Int) isValue()   {}
func (Uint) isValue()  {}
func (Bytes) isValue() {}
func (Bit) isValue()   {}

// DirForward flags forward direction in a speed value.
const DirForward = 0x100

// SpeedValue packs speed step and direction.
func SpeedValue(speed int, forward bool) Int {
	v := Int(speed & 0xff)
	if forward {
		v |= DirForward
	}
	return v
}

// Speed unpacks speed step and direction.
func (v Int) Speed() (speed int, forward bool) {
	return int(v & 0xff), v&DirForward != 0
}

// IntOf returns the value as Int, zero when absent or of another kind.
func IntOf(v Value) Int {
	if i, ok := v.(Int); ok {
		return i
	}
	return 0
}

// UintOf returns the value as Uint, zero when absent or of another kind.
func UintOf(v Value) Uint {
	if u, ok := v.(Uint); ok {
		return u
	}
	return 0
}

// BytesOf returns the value as Bytes, nil when absent or of another kind.
func BytesOf(v Value) Bytes {
	if b, ok := v.(Bytes); ok {
		return b
	}
	return nil
}
