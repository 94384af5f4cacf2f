package serial

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	bugserial "go.bug.st/serial"

	"github.com/bellflight/avr/infra/logger"
	"github.com/bellflight/avr/infra/metrics"
)

type port interface {
	io.ReadWriteCloser
	SetReadTimeout(t time.Duration) error
}

var openPort = func(name string, mode *bugserial.Mode) (port, error) {
	p, err := bugserial.Open(name, mode)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListPorts returns the serial devices found on the system.
func ListPorts() ([]string, error) {
	return bugserial.GetPortsList()
}

// Client owns a serial port. Reads happen on a single loop started by Run;
// writes may come from any goroutine.
type Client struct {
	port    io.ReadWriteCloser
	log     logger.Logger
	rec     metrics.Recorder
	bufSize int
	onData  func([]byte)

	wmu       sync.Mutex
	closed    bool
	closeOnce sync.Once
	closeErr  error
}

// Option customises a Client.
type Option func(*Client)

func WithLogger(l logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

func WithRecorder(r metrics.Recorder) Option {
	return func(c *Client) { c.rec = r }
}

// WithDataHandler sets the function receiving every chunk read by Run.
// The slice is owned by the handler.
func WithDataHandler(fn func([]byte)) Option {
	return func(c *Client) { c.onData = fn }
}

// WithReadBufferSize sets the maximum chunk size passed to the data handler.
func WithReadBufferSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.bufSize = n
		}
	}
}

// Open opens the device described by cfg.
func Open(cfg Config, opts ...Option) (*Client, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p, err := openPort(cfg.Port, &bugserial.Mode{BaudRate: cfg.BaudRate})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrOpen, cfg.Port, err)
	}
	if err := p.SetReadTimeout(cfg.ReadTimeout()); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("%w: %s: set read timeout: %w", ErrOpen, cfg.Port, err)
	}
	opts = append([]Option{WithReadBufferSize(cfg.ReadBufferSize)}, opts...)
	c := NewClient(p, opts...)
	c.log.Infof("opened %s at %d baud", cfg.Port, cfg.BaudRate)
	return c, nil
}

// NewClient wraps an already open port.
func NewClient(p io.ReadWriteCloser, opts ...Option) *Client {
	c := &Client{
		port:    p,
		log:     logger.New("serial"),
		rec:     metrics.NopRecorder{},
		bufSize: DefaultReadBufferSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Write sends b to the device.
func (c *Client) Write(b []byte) (int, error) {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if c.closed {
		return 0, ErrClosed
	}
	n, err := c.port.Write(b)
	if n > 0 {
		c.rec.SerialBytes(metrics.DirectionWrite, n)
	}
	if err != nil {
		return n, fmt.Errorf("serial write: %w", err)
	}
	return n, nil
}

// Run reads from the port until ctx is done or a read fails. The port is
// closed when ctx is done so that a blocked read returns.
func (c *Client) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { _ = c.Close() })
	defer stop()

	buf := make([]byte, c.bufSize)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := c.port.Read(buf)
		if n > 0 {
			c.rec.SerialBytes(metrics.DirectionRead, n)
			if c.onData != nil {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				c.onData(chunk)
			}
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				c.log.Warnf("serial port reached EOF")
			}
			return fmt.Errorf("serial read: %w", err)
		}
	}
}

// Close closes the port. It is safe to call more than once.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.wmu.Lock()
		c.closed = true
		c.wmu.Unlock()
		c.closeErr = c.port.Close()
	})
	return c.closeErr
}
