package mqtt

import (
	"sync"

	paho "github.com/eclipse/paho.mqtt.golang"
)

type fakeMessage struct {
	topic    string
	payload  []byte
	retained bool
}

func (m *fakeMessage) Duplicate() bool   { return false }
func (m *fakeMessage) Qos() byte         { return 0 }
func (m *fakeMessage) Retained() bool    { return m.retained }
func (m *fakeMessage) Topic() string     { return m.topic }
func (m *fakeMessage) MessageID() uint16 { return 0 }
func (m *fakeMessage) Payload() []byte   { return m.payload }
func (m *fakeMessage) Ack()              {}

// fakeBroker routes messages between fakeClients in memory.
type fakeBroker struct {
	lock       sync.Mutex
	clients    map[*fakeClient]bool
	retained   map[string][]byte
	subscribes int
}

func newFakeBroker() *fakeBroker {
	return &fakeBroker{
		clients:  make(map[*fakeClient]bool),
		retained: make(map[string][]byte),
	}
}

// install makes NewQueue create clients of this broker until the
// returned func is called.
func (b *fakeBroker) install() func() {
	saved := newClient
	newClient = func(opts *paho.ClientOptions) Client {
		return &fakeClient{broker: b, onConnect: opts.OnConnect, subs: make(map[string]paho.MessageHandler)}
	}
	return func() { newClient = saved }
}

func (b *fakeBroker) subscribed(topic string) bool {
	b.lock.Lock()
	defer b.lock.Unlock()
	for c := range b.clients {
		c.lock.Lock()
		_, ok := c.subs[topic]
		c.lock.Unlock()
		if ok {
			return true
		}
	}
	return false
}

func (b *fakeBroker) publish(topic string, payload []byte, retained bool) {
	b.lock.Lock()
	if retained {
		if len(payload) == 0 {
			delete(b.retained, topic)
		} else {
			b.retained[topic] = payload
		}
	}
	var handlers []paho.MessageHandler
	for c := range b.clients {
		handlers = append(handlers, c.matching(topic)...)
	}
	b.lock.Unlock()
	msg := &fakeMessage{topic: topic, payload: payload}
	for _, h := range handlers {
		h(nil, msg)
	}
}

type fakeClient struct {
	broker    *fakeBroker
	onConnect paho.OnConnectHandler

	lock sync.Mutex
	subs map[string]paho.MessageHandler
}

func (c *fakeClient) matching(topic string) (handlers []paho.MessageHandler) {
	c.lock.Lock()
	defer c.lock.Unlock()
	for filter, h := range c.subs {
		if MatchTopic(topic, filter) {
			handlers = append(handlers, h)
		}
	}
	return
}

func (c *fakeClient) Connect() paho.Token {
	c.broker.lock.Lock()
	c.broker.clients[c] = true
	c.broker.lock.Unlock()
	if c.onConnect != nil {
		c.onConnect(nil)
	}
	return &paho.DummyToken{}
}

func (c *fakeClient) Disconnect(uint) {
	c.broker.lock.Lock()
	delete(c.broker.clients, c)
	c.broker.lock.Unlock()
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	c.broker.publish(topic, payload.([]byte), retained)
	return &paho.DummyToken{}
}

func (c *fakeClient) Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token {
	c.lock.Lock()
	c.subs[topic] = callback
	c.lock.Unlock()
	c.broker.lock.Lock()
	c.broker.subscribes++
	var retained []*fakeMessage
	for t, payload := range c.broker.retained {
		if MatchTopic(t, topic) {
			retained = append(retained, &fakeMessage{topic: t, payload: payload, retained: true})
		}
	}
	c.broker.lock.Unlock()
	for _, msg := range retained {
		callback(nil, msg)
	}
	return &paho.DummyToken{}
}

func (c *fakeClient) SubscribeMultiple(filters map[string]byte, callback paho.MessageHandler) paho.Token {
	for topic, qos := range filters {
		c.Subscribe(topic, qos, callback)
	}
	return &paho.DummyToken{}
}

func (c *fakeClient) Unsubscribe(topics ...string) paho.Token {
	c.lock.Lock()
	defer c.lock.Unlock()
	for _, topic := range topics {
		delete(c.subs, topic)
	}
	return &paho.DummyToken{}
}
