// Package service serves decoder programming and DCC-A state on the
// station bus.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/track.go/pkg/framework"
	"github.com/robotalks/track.go/pkg/l1"
	"github.com/robotalks/track.go/pkg/l1/msgs"
	pb "github.com/robotalks/track.go/pkg/proto/track/l1/v1"
	"github.com/robotalks/track.go/pkg/track"
	"github.com/robotalks/track.go/pkg/track/dcca"
)

// Programmer accesses decoder CVs, see progtrack.Programmer.
type Programmer interface {
	POMRead(addr int, format track.Format, cv int, cb track.ReplyFunc, token interface{}) error
	POMWrite(addr int, format track.Format, cv int, val byte, cb track.ReplyFunc, token interface{}) error
	ReadByte(ctx context.Context, cv int) (byte, error)
	WriteByte(ctx context.Context, cv int, val byte) error
}

// StatusSource reports the DCC-A registration state.
type StatusSource interface {
	Snapshot(ctx context.Context) (dcca.Status, error)
}

// Mux registers command handlers.
type Mux interface {
	Handle(typeID uint32, h l1.CommandHandler)
}

var (
	// ErrDCCADisabled is returned for DCC-A queries when DCC-A is off.
	ErrDCCADisabled = errors.New("DCC-A disabled")
	// ErrValueRange indicates a CV value not fitting into a byte.
	ErrValueRange = errors.New("value out of range")
)

// Default timeouts.
const (
	DefaultReplyTimeout = 2 * time.Second
	DefaultProgTimeout  = 30 * time.Second
)

// Service binds the programmer and the registrar to bus commands.
type Service struct {
	Programmer Programmer
	Registrar  StatusSource
	Publisher  l1.Publisher

	// ReplyTimeout bounds the wait for a POM reply.
	ReplyTimeout time.Duration
	// ProgTimeout bounds a direct mode access.
	ProgTimeout time.Duration
}

// New creates a Service. reg may be nil when DCC-A is disabled.
func New(prog Programmer, reg StatusSource, pub l1.Publisher) *Service {
	return &Service{
		Programmer:   prog,
		Registrar:    reg,
		Publisher:    pub,
		ReplyTimeout: DefaultReplyTimeout,
		ProgTimeout:  DefaultProgTimeout,
	}
}

// Register installs the command handlers.
func (s *Service) Register(mux Mux) {
	mux.Handle(msgs.PomReadTypeID, l1.HandleCommandFunc(s.pomRead))
	mux.Handle(msgs.PomWriteTypeID, l1.HandleCommandFunc(s.pomWrite))
	mux.Handle(msgs.ProgReadTypeID, l1.HandleCommandFunc(s.progRead))
	mux.Handle(msgs.ProgWriteTypeID, l1.HandleCommandFunc(s.progWrite))
	mux.Handle(msgs.DccaStatusQueryTypeID, l1.HandleCommandFunc(s.dccaStatus))
}

func done(cmd l1.Command, msg fx.Message, err error) {
	if err != nil {
		msg = msgs.NewCommandErr(err)
	}
	if err := cmd.Done(msg); err != nil {
		glog.Warningf("service: reply %T: %v", cmd.Msg(), err)
	}
}

func formatOf(f uint32) track.Format {
	if f == 0 {
		return track.FormatDCC126
	}
	return track.Format(f)
}

func (s *Service) pomRead(ctx context.Context, cmd l1.Command) {
	m := cmd.Msg().(*msgs.PomRead)
	fut := track.NewFuture()
	if err := s.Programmer.POMRead(int(m.Addr), formatOf(m.Format), int(m.Cv), fut.Callback(), nil); err != nil {
		done(cmd, nil, err)
		return
	}
	s.pomReply(ctx, cmd, fut, m.Addr, m.Cv)
}

func (s *Service) pomWrite(ctx context.Context, cmd l1.Command) {
	m := cmd.Msg().(*msgs.PomWrite)
	if m.Value > 0xff {
		done(cmd, nil, ErrValueRange)
		return
	}
	fut := track.NewFuture()
	if err := s.Programmer.POMWrite(int(m.Addr), formatOf(m.Format), int(m.Cv), byte(m.Value), fut.Callback(), nil); err != nil {
		done(cmd, nil, err)
		return
	}
	s.pomReply(ctx, cmd, fut, m.Addr, m.Cv)
}

func (s *Service) pomReply(ctx context.Context, cmd l1.Command, fut *track.Future, addr, cv uint32) {
	r, err := fut.Wait(ctx, s.ReplyTimeout)
	if err != nil {
		done(cmd, nil, err)
		return
	}
	done(cmd, &msgs.PomResult{PomResult: pb.PomResult{
		Addr: addr,
		Cv:   cv,
		Msg:  r.Msg.String(),
		Data: append([]byte(nil), r.Bytes()...),
	}}, nil)
	if !r.Msg.IsFailure() {
		s.PublishReply(ctx, r)
	}
}

func (s *Service) progRead(ctx context.Context, cmd l1.Command) {
	m := cmd.Msg().(*msgs.ProgRead)
	ctx, cancel := context.WithTimeout(ctx, s.ProgTimeout)
	defer cancel()
	val, err := s.Programmer.ReadByte(ctx, int(m.Cv))
	done(cmd, &msgs.ProgResult{ProgResult: pb.ProgResult{Cv: m.Cv, Value: uint32(val)}}, err)
}

func (s *Service) progWrite(ctx context.Context, cmd l1.Command) {
	m := cmd.Msg().(*msgs.ProgWrite)
	if m.Value > 0xff {
		done(cmd, nil, ErrValueRange)
		return
	}
	ctx, cancel := context.WithTimeout(ctx, s.ProgTimeout)
	defer cancel()
	err := s.Programmer.WriteByte(ctx, int(m.Cv), byte(m.Value))
	done(cmd, &msgs.ProgResult{ProgResult: pb.ProgResult{Cv: m.Cv, Value: m.Value}}, err)
}

func (s *Service) dccaStatus(ctx context.Context, cmd l1.Command) {
	if s.Registrar == nil {
		done(cmd, nil, ErrDCCADisabled)
		return
	}
	st, err := s.Registrar.Snapshot(ctx)
	if err != nil {
		done(cmd, nil, err)
		return
	}
	done(cmd, StatusMsg(st), nil)
}

// StatusMsg converts a registrar snapshot to its bus message.
func StatusMsg(st dcca.Status) *msgs.DccaStatus {
	m := &msgs.DccaStatus{DccaStatus: pb.DccaStatus{
		State:      st.State.String(),
		Session:    uint32(st.Session),
		Vendor:     uint32(st.Vendor),
		Uid:        st.UID,
		Registered: uint32(st.Registered),
	}}
	for _, c := range st.Candidates {
		m.Candidates = append(m.Candidates, &pb.DccaCandidate{
			Vendor:  uint32(c.Vendor),
			Uid:     c.UID,
			Retries: uint32(c.Retries),
		})
	}
	return m
}

// PublishReply sends a decoder reply as event.
func (s *Service) PublishReply(ctx context.Context, r track.DecoderReply) {
	ev := &msgs.DecoderReplyEvent{DecoderReplyEvent: pb.DecoderReplyEvent{
		Decoder: r.Decoder.String(),
		Addr:    uint32(r.Addr),
		Msg:     r.Msg.String(),
		Data:    append([]byte(nil), r.Bytes()...),
	}}
	if r.CV != nil {
		ev.Cv = r.CV.String()
	}
	s.publish(ctx, ev)
}

// OnRegistered publishes a DCC-A registration. It is meant to be set as
// dcca.Registrar.OnRegistered.
func (s *Service) OnRegistered(reg dcca.Registration) {
	glog.Infof("service: registered %08x vendor %d as %s new=%v", reg.UID, reg.Vendor, reg.Key, reg.New)
	s.publish(context.Background(), &msgs.DccaRegistered{DccaRegistered: pb.DccaRegistered{
		Vendor: uint32(reg.Vendor),
		Uid:    reg.UID,
		Kind:   reg.Key.Kind.String(),
		Addr:   uint32(reg.Key.Addr),
		New:    reg.New,
	}})
}

func (s *Service) publish(ctx context.Context, msg fx.Message) {
	if s.Publisher == nil {
		return
	}
	if err := s.Publisher.SendEvent(ctx, msg); err != nil {
		glog.Warningf("service: publish %T: %v", msg, err)
	}
}
