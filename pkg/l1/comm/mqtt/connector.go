package mqtt

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/track.go/pkg/l1"
	"github.com/robotalks/track.go/pkg/l1/comm"
)

// Connector implements l1.Connector using MQTT.
type Connector struct {
	DiscoverTimeout time.Duration

	broker *Broker
}

// DefaultDiscoverTimeout defines the default timeout value of discovery.
const DefaultDiscoverTimeout = 500 * time.Millisecond

// NewConnector creates a Connector.
func NewConnector(brokerURL string) (*Connector, error) {
	b, err := ParseBrokerURL(brokerURL)
	if err != nil {
		return nil, err
	}
	return &Connector{DiscoverTimeout: DefaultDiscoverTimeout, broker: b}, nil
}

// Discover implements Connector. It collects the retained station info
// until DiscoverTimeout expires.
func (c *Connector) Discover(ctx context.Context) ([]l1.StationInfo, error) {
	q := c.broker.NewQueue()
	token := q.Connect()
	if token.Wait(); token.Error() != nil {
		return nil, token.Error()
	}
	defer q.Close()
	resCh := make(chan l1.StationInfo, 16)
	sub := q.Sub(l1.StationType+"/+/meta", Handler(func(topic string, payload []byte) {
		items := strings.Split(topic, "/")
		if len(items) != 3 || len(payload) == 0 {
			return
		}
		info := l1.StationInfo{Ref: l1.StationRef{ID: items[1]}}
		if err := json.Unmarshal(payload, &info.Meta); err != nil {
			glog.Warningf("discover: bad meta of %s: %v", topic, err)
			return
		}
		select {
		case resCh <- info:
		case <-time.After(time.Second):
		}
	}))
	defer sub.Close()

	dur := c.DiscoverTimeout
	if dur == 0 {
		dur = DefaultDiscoverTimeout
	}
	timeout := time.After(dur)
	var res []l1.StationInfo
	for {
		select {
		case info := <-resCh:
			res = append(res, info)
		case <-timeout:
			return res, nil
		case <-ctx.Done():
			return res, ctx.Err()
		}
	}
}

// Connect implements Connector. The connection runs until Close.
func (c *Connector) Connect(ctx context.Context, ref l1.StationRef) (l1.StationConn, error) {
	conn := &Conn{Queue: c.broker.NewQueue(), done: make(chan struct{})}
	conn.rw = NewPacketReadWriter(conn.Queue).ForClient(ref)
	conn.Init(conn.rw)
	token := conn.Queue.Connect()
	if token.Wait(); token.Error() != nil {
		return nil, token.Error()
	}
	runCtx, cancel := context.WithCancel(context.Background())
	conn.cancel = cancel
	subscribed := make(chan struct{})
	go func() {
		sub := conn.Queue.Sub(conn.rw.SubTopic, Handler(conn.rw.handleMsg))
		sub.Token.Wait()
		close(subscribed)
		<-runCtx.Done()
		sub.Close()
		conn.rw.Close()
	}()
	go func() {
		defer close(conn.done)
		conn.Conn.Run(runCtx)
	}()
	select {
	case <-subscribed:
		return conn, nil
	case <-ctx.Done():
		conn.Close()
		return nil, ctx.Err()
	}
}

// Conn implements StationConn using MQTT.
type Conn struct {
	comm.Conn
	Queue *Queue

	rw     *ReadWriter
	cancel context.CancelFunc
	done   chan struct{}
}

// Close implements io.Closer.
func (c *Conn) Close() error {
	c.cancel()
	<-c.done
	return c.Queue.Close()
}
