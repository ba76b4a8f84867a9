package comm

import (
	"context"
	"encoding/binary"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/track.go/pkg/track"
	"github.com/robotalks/track.go/pkg/track/railcom"
)

// PacketSource hands out the next packet to transmit.
type PacketSource interface {
	GetPacket(allowRefresh bool) *track.Packet
}

// Generator is the host side of the signal generator. It answers Ready
// requests with the next packet, arms one reply window per transmitted
// packet expecting a reply and forwards window bytes to the receiver.
// It also serves as the programming track for direct mode access.
type Generator struct {
	Link          *Link
	Source        PacketSource
	Receiver      *railcom.Receiver
	Settings      track.Settings
	Factory       *track.Factory
	SampleTimeout time.Duration

	samples   chan int
	powerLock sync.Mutex
	power     track.Power
}

// DefaultSampleTimeout is how long Sample waits for the generator.
const DefaultSampleTimeout = 100 * time.Millisecond

const sampleBuffer = 256

// NewGenerator creates a Generator and installs it as the frame handler
// of the link.
func NewGenerator(link *Link, src PacketSource, rx *railcom.Receiver, s track.Settings) *Generator {
	g := &Generator{
		Link:          link,
		Source:        src,
		Receiver:      rx,
		Settings:      s,
		Factory:       track.NewFactory(s),
		SampleTimeout: DefaultSampleTimeout,
		samples:       make(chan int, sampleBuffer),
	}
	link.Handler = g
	return g
}

// HandleFrame implements FrameHandler.
func (g *Generator) HandleFrame(ctx context.Context, f *Frame) error {
	switch f.Code {
	case CodeReady:
		return g.transmit(len(f.Data) > 0 && f.Data[0] != 0)
	case CodeWindow:
		if len(f.Data) < 1 || len(f.Data)%2 != 1 {
			return &FrameError{Code: f.Code, Len: len(f.Data)}
		}
		g.Receiver.Phase(railcom.Phase(f.Data[0]))
		for i := 1; i+1 < len(f.Data); i += 2 {
			g.Receiver.Byte(f.Data[i], f.Data[i+1]&1 != 0)
		}
	case CodeBusAck:
		g.Receiver.BusAckCheck(len(f.Data) > 0 && f.Data[0] != 0)
	case CodeCurrent:
		for i := 0; i+1 < len(f.Data); i += 2 {
			g.pushSample(int(binary.BigEndian.Uint16(f.Data[i:])))
		}
	default:
		glog.V(2).Infof("generator: ignored %s", f)
	}
	return nil
}

func (g *Generator) transmit(allowRefresh bool) error {
	p := g.Source.GetPacket(allowRefresh)
	if p == nil {
		p = g.Factory.Idle()
	}
	bb := track.NewBitbuffer(p, g.Settings)
	g.Receiver.Arm(bb)
	return g.Link.Send(&Frame{Code: CodeTransmit, Data: EncodeTransmit(bb)})
}

// pushSample keeps the newest samples when nobody reads them.
func (g *Generator) pushSample(s int) {
	for {
		select {
		case g.samples <- s:
			return
		default:
		}
		select {
		case <-g.samples:
		default:
		}
	}
}

// SetPower switches the track output.
func (g *Generator) SetPower(mode track.Power) error {
	g.powerLock.Lock()
	defer g.powerLock.Unlock()
	if mode == track.PowerProg {
		for len(g.samples) > 0 {
			<-g.samples
		}
	}
	glog.V(2).Infof("generator: power %s", mode)
	if err := g.Link.Send(&Frame{Code: CodePower, Data: []byte{byte(mode)}}); err != nil {
		return err
	}
	g.power = mode
	return nil
}

// Power returns the output mode last switched to.
func (g *Generator) Power() track.Power {
	g.powerLock.Lock()
	defer g.powerLock.Unlock()
	return g.power
}

// Sample returns the next programming track current sample in mA.
func (g *Generator) Sample(ctx context.Context) (int, error) {
	timer := time.NewTimer(g.SampleTimeout)
	defer timer.Stop()
	select {
	case s := <-g.samples:
		return s, nil
	case <-timer.C:
		return 0, ErrNoSamples
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// Run implements Runnable.
func (g *Generator) Run(ctx context.Context) error {
	return g.Link.Run(ctx)
}
