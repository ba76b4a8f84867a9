package progtrack

import (
	"context"

	"github.com/golang/glog"

	"github.com/robotalks/track.go/pkg/track"
)

// Track is the programming track output.
type Track interface {
	SetPower(mode track.Power) error
	// Power returns the current output mode.
	Power() track.Power
	// Sample waits for the next sampling tick and returns the track
	// current in mA.
	Sample(ctx context.Context) (int, error)
}

// Timing holds the current sensing parameters. Durations are in sampling
// ticks of 1ms.
type Timing struct {
	StableSamples   int
	StableTolerance int
	StableTicks     int
	ShortCurrent    int
	ShortTicks      int
	AckThreshold    int
	AckSamples      int
	AckTicks        int
	PowerCycles     int
}

// DefaultTiming is the default Timing.
var DefaultTiming = Timing{
	StableSamples:   50,
	StableTolerance: 3,
	StableTicks:     5000,
	ShortCurrent:    200,
	ShortTicks:      10,
	AckThreshold:    60,
	AckSamples:      5,
	AckTicks:        100,
	PowerCycles:     3,
}

// WaitStableCurrent samples the track until the last StableSamples samples
// stay within ±StableTolerance and returns their mean as the base current.
func WaitStableCurrent(ctx context.Context, tr Track, t Timing) (int, error) {
	window := make([]int, t.StableSamples)
	n, pos, over := 0, 0, 0
	for tick := 0; tick < t.StableTicks; tick++ {
		s, err := tr.Sample(ctx)
		if err != nil {
			return 0, err
		}
		if s > t.ShortCurrent {
			if over++; over > t.ShortTicks {
				return 0, ErrShortCircuit
			}
		} else {
			over = 0
		}
		window[pos] = s
		pos = (pos + 1) % len(window)
		if n < len(window) {
			n++
		}
		if n < len(window) {
			continue
		}
		lo, hi, sum := window[0], window[0], 0
		for _, v := range window {
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
			sum += v
		}
		if hi-lo <= 2*t.StableTolerance {
			base := sum / len(window)
			if glog.V(4) {
				glog.Infof("progtrack: stable at %dmA after %d ticks", base, tick+1)
			}
			return base, nil
		}
	}
	return 0, ErrUnstable
}

// waitAck samples a full acknowledge window and reports whether the
// current stayed above base+AckThreshold for AckSamples consecutive
// samples.
func waitAck(ctx context.Context, tr Track, t Timing, base int) (bool, error) {
	run, acked := 0, false
	for tick := 0; tick < t.AckTicks; tick++ {
		s, err := tr.Sample(ctx)
		if err != nil {
			return false, err
		}
		if s >= base+t.AckThreshold {
			if run++; run >= t.AckSamples {
				acked = true
			}
		} else {
			run = 0
		}
	}
	return acked, nil
}
