package mqtt

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/bellflight/avr/core/payloads"
	"github.com/bellflight/avr/infra/logger"
	"github.com/bellflight/avr/infra/metrics"
	"github.com/bellflight/avr/pkg/decorators"
)

const (
	publishTimeout    = 5 * time.Second
	disconnectQuiesce = 250
)

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// Module is the base of every MQTT connected AVR service. It subscribes to
// the topics of its handler map, decodes incoming payloads and dispatches
// them, and remembers the last payload it sent on each topic.
type Module struct {
	cfg      Config
	handlers map[string]Handler
	fallback Handler
	cli      pahoClient
	log      logger.Logger
	rec      metrics.Recorder

	mu    sync.RWMutex
	cache map[string]any
}

// Option customises a Module.
type Option func(*Module)

// WithLogger replaces the default component logger.
func WithLogger(l logger.Logger) Option {
	return func(m *Module) { m.log = l }
}

// WithRecorder reports message counters to r.
func WithRecorder(r metrics.Recorder) Option {
	return func(m *Module) { m.rec = r }
}

// WithFallback sets the handler for messages whose topic has no entry in
// the handler map, typically received through a wildcard subscription.
func WithFallback(h Handler) Option {
	return func(m *Module) { m.fallback = h }
}

// New creates a Module. The handler map is copied and never modified.
func New(cfg Config, handlers map[string]Handler, opts ...Option) (*Module, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m := &Module{
		cfg:      cfg,
		handlers: make(map[string]Handler, len(handlers)),
		log:      logger.New("mqtt_module"),
		rec:      metrics.NopRecorder{},
		cache:    make(map[string]any),
	}
	for topic, h := range handlers {
		m.handlers[topic] = h
	}
	for _, opt := range opts {
		opt(m)
	}

	pahoOpts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	pahoOpts.OnConnect = func(paho.Client) {
		m.log.Infof("connected to %s", cfg.BrokerURL())
		m.subscribe()
	}
	pahoOpts.OnConnectionLost = func(_ paho.Client, err error) {
		m.log.Errorf("connection lost: %v", err)
	}
	pahoOpts.OnReconnecting = func(paho.Client, *paho.ClientOptions) {
		m.log.Warnf("reconnecting to MQTT broker")
	}
	m.cli = newMQTTClient(pahoOpts)
	return m, nil
}

// Subscriptions lists the topic filters subscribed on every connect.
func (m *Module) Subscriptions() []string {
	switch {
	case m.cfg.SubscribeAll:
		return []string{payloads.AllTopics}
	case m.cfg.SubscribeAllAVR:
		return []string{payloads.AllAVR}
	}
	topics := make([]string, 0, len(m.handlers))
	for topic := range m.handlers {
		topics = append(topics, topic)
	}
	sort.Strings(topics)
	return topics
}

func (m *Module) subscribe() {
	for _, topic := range m.Subscriptions() {
		token := m.cli.Subscribe(topic, m.cfg.QoS, m.onMessage)
		if !token.WaitTimeout(publishTimeout) {
			m.log.Errorf("%v: %s: timeout", ErrSubscribe, topic)
			continue
		}
		if err := token.Error(); err != nil {
			m.log.Errorf("%v: %s: %v", ErrSubscribe, topic, err)
			continue
		}
		m.log.Debugf("subscribed to %s", topic)
	}
}

func (m *Module) onMessage(_ paho.Client, msg paho.Message) {
	m.dispatch(msg.Topic(), msg.Payload())
}

// dispatch decodes body and runs the matching handler. Failures are logged
// and counted, never propagated to the MQTT client.
func (m *Module) dispatch(topic string, body []byte) {
	m.rec.MessageReceived(topic)
	if m.cfg.Verbose {
		m.log.Debugw("received", map[string]any{"topic": topic, "payload": string(body)})
	}
	h, ok := m.handlers[topic]
	if !ok {
		h = m.fallback
	}
	if h == nil {
		return
	}
	run := decorators.TryExcept(func() error {
		payload, err := payloads.Deserialize(topic, body)
		if err != nil {
			return err
		}
		return h(topic, payload)
	}, decorators.WithLogger(m.log), decorators.WithName("handler for "+topic), decorators.WithReraise())
	if err := run(); err != nil {
		m.rec.HandlerFailed(topic)
	}
}

// Start connects to the broker without blocking past the connection
// handshake. Subscriptions are made from the connect callback.
func (m *Module) Start(ctx context.Context) error {
	token := m.cli.Connect()
	timer := time.NewTimer(m.cfg.ConnectTimeout())
	defer timer.Stop()
	select {
	case <-token.Done():
	default:
		select {
		case <-token.Done():
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", ErrConnect, ctx.Err())
		case <-timer.C:
			return fmt.Errorf("%w: timeout after %v", ErrConnect, m.cfg.ConnectTimeout())
		}
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrConnect, err)
	}
	return nil
}

// Run connects and blocks until ctx is done, then disconnects.
func (m *Module) Run(ctx context.Context) error {
	if err := m.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	m.Close()
	return nil
}

// Close disconnects from the broker.
func (m *Module) Close() {
	if m.cli != nil && m.cli.IsConnected() {
		m.cli.Disconnect(disconnectQuiesce)
	}
}

// Send serializes payload for topic, publishes it and records it as the
// last payload sent on topic.
func (m *Module) Send(topic string, payload any) error {
	body, err := payloads.Serialize(topic, payload)
	if err != nil {
		return err
	}
	if !m.cli.IsConnected() {
		return fmt.Errorf("%w: %s", ErrNotConnected, topic)
	}
	if m.cfg.Verbose {
		m.log.Debugw("sending", map[string]any{"topic": topic, "payload": string(body)})
	}
	token := m.cli.Publish(topic, m.cfg.QoS, m.cfg.Retain, body)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("%w: %s: timeout after %v", ErrPublish, topic, publishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPublish, topic, err)
	}
	m.rec.MessagePublished(topic)

	m.mu.Lock()
	m.cache[topic] = payload
	m.mu.Unlock()
	return nil
}

// LastSent returns the payload most recently sent on topic.
func (m *Module) LastSent(topic string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.cache[topic]
	return p, ok
}

// Config returns the effective configuration after defaults.
func (m *Module) Config() Config { return m.cfg }
