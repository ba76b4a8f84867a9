package track

// FuncBits is a function state bitmap, bit n is function Fn.
type FuncBits [3]uint32

// Get returns the state of function n.
func (f *FuncBits) Get(n int) bool {
	if n < 0 || n >= len(f)*32 {
		return false
	}
	return f[n/32]&(1<<uint(n%32)) != 0
}

// Set changes the state of function n.
func (f *FuncBits) Set(n int, on bool) {
	if n < 0 || n >= len(f)*32 {
		return
	}
	if on {
		f[n/32] |= 1 << uint(n%32)
	} else {
		f[n/32] &^= 1 << uint(n%32)
	}
}

// Group extracts functions first..last, first being bit 0.
func (f *FuncBits) Group(first, last int) uint32 {
	var v uint32
	for n := last; n >= first; n-- {
		v <<= 1
		if f.Get(n) {
			v |= 1
		}
	}
	return v
}

// LocoState is the part of a loco record the signal queue needs to
// refresh a decoder.
type LocoState struct {
	Addr    int
	Format  Format
	Speed   int
	Forward bool
	MaxFunc int
	Funcs   FuncBits
}
