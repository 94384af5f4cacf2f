// Package recorder stores every avr/ payload seen on the bus as InfluxDB
// points.
package recorder

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/bellflight/avr/config"
	"github.com/bellflight/avr/infra/logger"
	"github.com/bellflight/avr/infra/metrics"
	"github.com/bellflight/avr/infra/mqtt"
)

// newSink is replaced in tests.
var newSink = metrics.NewInfluxSinkWithFallback

// Recorder writes decoded payloads to a telemetry sink.
type Recorder struct {
	sink metrics.TelemetrySink
	log  logger.Logger
	now  func() time.Time

	ctx     atomic.Pointer[context.Context]
	written atomic.Int64
	failed  atomic.Int64
}

func NewRecorder(sink metrics.TelemetrySink, log logger.Logger) *Recorder {
	if log == nil {
		log = logger.New("recorder")
	}
	return &Recorder{sink: sink, log: log, now: time.Now}
}

// Handle writes one payload. It matches mqtt.HandleRaw.
func (r *Recorder) Handle(topic string, payload any) error {
	ctx := context.Background()
	if p := r.ctx.Load(); p != nil {
		ctx = *p
	}
	if err := r.sink.WritePayload(ctx, topic, payload, r.now()); err != nil {
		r.failed.Add(1)
		return fmt.Errorf("record %s: %w", topic, err)
	}
	r.written.Add(1)
	return nil
}

// Stats returns the number of payloads written and the number of failed
// writes.
func (r *Recorder) Stats() (written, failed int64) {
	return r.written.Load(), r.failed.Load()
}

// Service subscribes to avr/# and records everything it receives.
type Service struct {
	module   *mqtt.Module
	recorder *Recorder
	sink     metrics.TelemetrySink
	log      logger.Logger
}

// New creates the recorder service. The MQTT configuration is forced to
// subscribe to every avr/ topic. Payloads go to InfluxDB only when
// metrics.influx_enabled is set.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("recorder")
	var sink metrics.TelemetrySink = metrics.NopSink{}
	if cfg.Metrics.InfluxEnabled {
		sink = newSink(cfg.Metrics.Influx)
	} else {
		logg.Warnf("influx disabled, payloads will be received but not stored")
	}
	rec := NewRecorder(sink, logg)

	mqttCfg := cfg.MQTT
	mqttCfg.SubscribeAllAVR = true
	module, err := mqtt.New(mqttCfg, nil,
		mqtt.WithFallback(mqtt.HandleRaw(rec.Handle)),
		mqtt.WithLogger(logg),
	)
	if err != nil {
		sink.Close()
		return nil, fmt.Errorf("mqtt module: %w", err)
	}
	return &Service{module: module, recorder: rec, sink: sink, log: logg}, nil
}

// Run records until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	s.recorder.ctx.Store(&ctx)
	if err := s.module.Run(ctx); err != nil {
		return err
	}
	written, failed := s.recorder.Stats()
	s.log.Infof("recorded %d payloads, %d failed", written, failed)
	return nil
}

// Recorder returns the underlying recorder.
func (s *Service) Recorder() *Recorder { return s.recorder }

// Close flushes and releases the sink.
func (s *Service) Close() error {
	s.module.Close()
	s.sink.Close()
	return nil
}
