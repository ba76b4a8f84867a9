package mqtt

import (
	"context"
	"encoding/json"

	"github.com/robotalks/track.go/pkg/l1"
	"github.com/robotalks/track.go/pkg/l1/comm"
)

// Server serves a station over MQTT. The station info is kept retained on
// station/id/meta while the station is online and cleared by the will
// when it disappears.
type Server struct {
	comm.Server
	Queue *Queue
	Info  l1.StationInfo

	rw   *ReadWriter
	meta []byte
}

// NewServer creates a Server.
func NewServer(brokerURL string, info l1.StationInfo) (*Server, error) {
	meta, err := json.Marshal(&info.Meta)
	if err != nil {
		return nil, err
	}
	b, err := ParseBrokerURL(brokerURL)
	if err != nil {
		return nil, err
	}
	b.Options.SetBinaryWill(b.TopicPrefix+metaTopic(info.Ref), nil, 1, true)
	if b.Options.ClientID == "" {
		b.Options.SetClientID("track:" + info.Ref.Name())
	}
	s := &Server{Queue: b.NewQueue(), Info: info, meta: meta}
	s.Queue.OnConnect = func(*Queue) { s.publishMeta() }
	s.rw = NewPacketReadWriter(s.Queue).ForStation(info.Ref)
	s.Server.Init(s.rw)
	return s, nil
}

func metaTopic(ref l1.StationRef) string {
	return ref.Name() + "/meta"
}

// Name implements Named.
func (s *Server) Name() string {
	return "mqtt:" + s.Info.Ref.Name()
}

// Run implements Runnable.
func (s *Server) Run(ctx context.Context) error {
	token := s.Queue.Connect()
	if token.Wait(); token.Error() != nil {
		return token.Error()
	}
	go s.rw.Run(ctx)
	err := s.Server.Run(ctx)
	s.Queue.PubWith(metaTopic(s.Info.Ref), nil, 1, true).Wait()
	s.Queue.Close()
	return err
}

func (s *Server) publishMeta() {
	s.Queue.PubWith(metaTopic(s.Info.Ref), s.meta, 1, true)
}
