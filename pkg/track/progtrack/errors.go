package progtrack

import "errors"

var (
	// ErrShortCircuit indicates the programming track draws more than the
	// short circuit current.
	ErrShortCircuit = errors.New("short circuit on programming track")
	// ErrUnstable indicates the idle current never settled.
	ErrUnstable = errors.New("programming track current unstable")
	// ErrNoAck indicates the decoder did not acknowledge in any power cycle.
	ErrNoAck = errors.New("no acknowledge from decoder")
)
