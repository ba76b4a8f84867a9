package mqtt

import (
	"container/list"
	"strings"
	"sync"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"
)

// Handler is the callback when a message is received.
type Handler func(topic string, payload []byte)

// Client is the part of paho.Client the Queue uses.
type Client interface {
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
	SubscribeMultiple(filters map[string]byte, callback paho.MessageHandler) paho.Token
	Unsubscribe(topics ...string) paho.Token
}

// newClient is replaced in tests.
var newClient = func(opts *paho.ClientOptions) Client {
	return paho.NewClient(opts)
}

// Queue wraps MQTT client. All topics are relative to TopicPrefix and
// every topic is subscribed once no matter how many handlers share it.
type Queue struct {
	Client       Client
	TopicPrefix  string
	QoS          byte
	OnConnect    ConnectHandler
	OnDisconnect ConnectHandler

	subsLock sync.RWMutex
	exact    subTable
	wildcard subTable
}

// ConnectHandler is to handle connect/disconnect events.
type ConnectHandler func(*Queue)

// Subscription is a subscribed topic.
type Subscription struct {
	Token paho.Token

	queue   *Queue
	elm     *list.Element
	topic   string
	handler Handler
}

// subTable holds the handlers per topic filter.
type subTable map[string]*list.List

func (t *subTable) add(sub *Subscription) (first bool) {
	if *t == nil {
		*t = make(subTable)
	}
	lst := (*t)[sub.topic]
	if lst == nil {
		lst = list.New()
		(*t)[sub.topic] = lst
		first = true
	}
	sub.elm = lst.PushBack(sub)
	return first
}

func (t subTable) remove(sub *Subscription) (last bool) {
	lst := t[sub.topic]
	if lst == nil || sub.elm == nil {
		return false
	}
	lst.Remove(sub.elm)
	sub.elm = nil
	if lst.Len() == 0 {
		delete(t, sub.topic)
		return true
	}
	return false
}

func (t subTable) collect(handlers []Handler, lst *list.List) []Handler {
	for elm := lst.Front(); elm != nil; elm = elm.Next() {
		handlers = append(handlers, elm.Value.(*Subscription).handler)
	}
	return handlers
}

// IsWildcard tells whether the topic is a filter with wildcards.
func IsWildcard(topic string) bool {
	return strings.Contains(topic, "+") || strings.HasSuffix(topic, "#")
}

// MatchTopic matches topic with pattern.
func MatchTopic(topic, pattern string) bool {
	tokensT, tokensP := strings.Split(topic, "/"), strings.Split(pattern, "/")
	for i, token := range tokensP {
		if token == "#" && i+1 == len(tokensP) {
			return true
		}
		if i >= len(tokensT) {
			return false
		}
		if token != "+" && token != tokensT[i] {
			return false
		}
	}
	return len(tokensP) == len(tokensT)
}

// NewQueue creates Queue.
func NewQueue(options *paho.ClientOptions, topicPrefix string) *Queue {
	q := &Queue{TopicPrefix: topicPrefix}
	options.SetOnConnectHandler(q.OnConnectHandler)
	options.SetConnectionLostHandler(q.ConnectionLostHandler)
	q.Client = newClient(options)
	return q
}

// Connect connects the client.
func (q *Queue) Connect() paho.Token {
	return q.Client.Connect()
}

// Close implements io.Closer.
func (q *Queue) Close() error {
	q.Client.Disconnect(250)
	return nil
}

// Sub subscribes a topic
func (q *Queue) Sub(topic string, handler Handler) *Subscription {
	sub := &Subscription{queue: q, topic: topic, handler: handler}
	q.subsLock.Lock()
	var first bool
	if IsWildcard(topic) {
		first = q.wildcard.add(sub)
	} else {
		first = q.exact.add(sub)
	}
	q.subsLock.Unlock()

	if first {
		if glog.V(2) {
			glog.Infof("SUB %q", q.TopicPrefix+topic)
		}
		sub.Token = q.Client.Subscribe(q.TopicPrefix+topic, q.QoS, q.dispatch)
	} else {
		sub.Token = &paho.DummyToken{}
	}
	return sub
}

// Pub publishes to a topic.
func (q *Queue) Pub(topic string, payload []byte) paho.Token {
	return q.PubWith(topic, payload, q.QoS, false)
}

// PubWith publishes with QoS and retain settings.
func (q *Queue) PubWith(topic string, payload []byte, qos byte, retain bool) paho.Token {
	if glog.V(4) {
		glog.Infof("PUB %q %d bytes", q.TopicPrefix+topic, len(payload))
	}
	return q.Client.Publish(q.TopicPrefix+topic, qos, retain, payload)
}

// Resubscribe is used in OnConnect handler to subscribe all existing topics.
func (q *Queue) Resubscribe() paho.Token {
	filters := make(map[string]byte)
	q.subsLock.RLock()
	for topic := range q.exact {
		filters[q.TopicPrefix+topic] = q.QoS
	}
	for topic := range q.wildcard {
		filters[q.TopicPrefix+topic] = q.QoS
	}
	q.subsLock.RUnlock()
	if len(filters) > 0 {
		if glog.V(2) {
			for key := range filters {
				glog.Infof("SUB %q", key)
			}
		}
		return q.Client.SubscribeMultiple(filters, q.dispatch)
	}
	return &paho.DummyToken{}
}

// OnConnectHandler is the default implementation of paho.OnConnectHandler.
func (q *Queue) OnConnectHandler(paho.Client) {
	glog.Info("mqtt: connected")
	q.Resubscribe()
	if h := q.OnConnect; h != nil {
		h(q)
	}
}

// ConnectionLostHandler is the default implementation of paho.ConnectLostHandler.
func (q *Queue) ConnectionLostHandler(c paho.Client, err error) {
	glog.Warningf("mqtt: connection lost: %v", err)
	if h := q.OnDisconnect; h != nil {
		h(q)
	}
}

func (q *Queue) dispatch(c paho.Client, msg paho.Message) {
	topic := msg.Topic()
	if !strings.HasPrefix(topic, q.TopicPrefix) {
		return
	}
	glog.V(2).Infof("RCV %q", topic)
	topic = topic[len(q.TopicPrefix):]
	var handlers []Handler
	q.subsLock.RLock()
	if lst := q.exact[topic]; lst != nil {
		handlers = q.exact.collect(handlers, lst)
	}
	for key, lst := range q.wildcard {
		if MatchTopic(topic, key) {
			handlers = q.wildcard.collect(handlers, lst)
		}
	}
	q.subsLock.RUnlock()
	payload := msg.Payload()
	for _, h := range handlers {
		h(topic, payload)
	}
}

// Close unsubscribes a handler.
func (s *Subscription) Close() error {
	q := s.queue
	q.subsLock.Lock()
	var last bool
	if IsWildcard(s.topic) {
		last = q.wildcard.remove(s)
	} else {
		last = q.exact.remove(s)
	}
	q.subsLock.Unlock()
	if !last {
		return nil
	}
	glog.V(2).Infof("UNSUB %q", s.topic)
	token := q.Client.Unsubscribe(q.TopicPrefix + s.topic)
	token.Wait()
	return token.Error()
}
