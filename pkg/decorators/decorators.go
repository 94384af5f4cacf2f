// Package decorators wraps functions with error logging and periodic
// re-invocation.
package decorators

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/bellflight/avr/infra/logger"
)

// ErrPanic wraps a value recovered from a panicking function.
var ErrPanic = errors.New("recovered panic")

type options struct {
	log     logger.Logger
	name    string
	reraise bool
}

// Option configures a wrapper.
type Option func(*options)

// WithLogger sets the logger errors are reported to.
func WithLogger(l logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithName labels log entries with the wrapped function's name.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithReraise makes the wrapper return the error after logging it.
func WithReraise() Option {
	return func(o *options) { o.reraise = true }
}

func newOptions(opts []Option) options {
	o := options{name: "function"}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.New("decorators")
	}
	return o
}

// TryExcept returns fn wrapped so that errors and panics are logged. The
// wrapper swallows the failure and returns nil unless WithReraise is set.
func TryExcept(fn func() error, opts ...Option) func() error {
	o := newOptions(opts)
	return func() error {
		return o.call(fn)
	}
}

func (o options) call(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			o.log.Errorf("%s panicked: %v\n%s", o.name, r, debug.Stack())
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
		if err != nil && !o.reraise {
			err = nil
		}
	}()
	if err = fn(); err != nil {
		o.log.Errorf("%s failed: %v", o.name, err)
	}
	return err
}

// RunForever calls fn, then again every interval, until ctx is done.
// Failures are logged and do not stop the loop. A zero interval runs fn
// back to back.
func RunForever(ctx context.Context, interval time.Duration, fn func() error, opts ...Option) {
	o := newOptions(opts)
	o.reraise = false

	_ = o.call(fn)
	if interval <= 0 {
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			_ = o.call(fn)
		}
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = o.call(fn)
		}
	}
}

// RunForeverFrequency is RunForever with the interval given in hertz.
func RunForeverFrequency(ctx context.Context, hz float64, fn func() error, opts ...Option) {
	if hz <= 0 {
		RunForever(ctx, 0, fn, opts...)
		return
	}
	RunForever(ctx, time.Duration(float64(time.Second)/hz), fn, opts...)
}
