package pcm

import (
	"context"
	"fmt"
	"io"

	"github.com/bellflight/avr/config"
	"github.com/bellflight/avr/infra/logger"
	"github.com/bellflight/avr/infra/metrics"
	"github.com/bellflight/avr/infra/mqtt"
	"github.com/bellflight/avr/infra/serial"
	"github.com/bellflight/avr/infra/serial/pcc"
	"github.com/bellflight/avr/pkg/decorators"
)

// openSerial is replaced in tests.
var openSerial = serial.Open

type serialLink interface {
	io.Writer
	Run(ctx context.Context) error
	Close() error
}

// Service bridges the MQTT bus and the peripheral control computer.
type Service struct {
	cfg    *config.Config
	link   serialLink
	module *mqtt.Module
	bridge *Bridge
	log    logger.Logger
	rec    *metrics.PromRecorder
}

// New opens the serial port and prepares the MQTT module. Nothing is
// connected until Run.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("pcm")
	var rec metrics.Recorder = metrics.NopRecorder{}
	var prom *metrics.PromRecorder
	if cfg.Metrics.PrometheusEnabled {
		r, err := metrics.NewPromRecorder()
		if err != nil {
			return nil, fmt.Errorf("prom recorder: %w", err)
		}
		prom, rec = r, r
	}

	var bridge *Bridge
	link, err := openSerial(cfg.Serial,
		serial.WithRecorder(rec),
		serial.WithDataHandler(func(b []byte) { bridge.HandleSerial(b) }),
	)
	if err != nil {
		return nil, fmt.Errorf("serial: %w", err)
	}
	driver := pcc.NewDriver(link, pcc.WithRecorder(rec))
	bridge = NewBridge(driver, logg)

	module, err := mqtt.New(cfg.MQTT, bridge.Handlers(), mqtt.WithRecorder(rec))
	if err != nil {
		_ = link.Close()
		return nil, fmt.Errorf("mqtt module: %w", err)
	}
	bridge.SetPublisher(module)
	return &Service{cfg: cfg, link: link, module: module, bridge: bridge, log: logg, rec: prom}, nil
}

// Run connects to the broker and serves commands until ctx is cancelled or
// the serial link fails.
func (s *Service) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if s.rec != nil {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusAddr, nil); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	if err := s.module.Start(ctx); err != nil {
		return err
	}
	defer s.module.Close()

	errCh := make(chan error, 1)
	go func() { errCh <- s.link.Run(ctx) }()
	if interval := s.cfg.PCM.ServoCheckInterval(); interval > 0 {
		go decorators.RunForever(ctx, interval, s.bridge.CheckServo,
			decorators.WithLogger(s.log), decorators.WithName("servo check"))
	}
	s.log.Infof("pcm bridge running")

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("serial link: %w", err)
	}
}

// Close releases the serial port.
func (s *Service) Close() error {
	s.module.Close()
	return s.link.Close()
}
