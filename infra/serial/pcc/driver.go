package pcc

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/bellflight/avr/infra/logger"
	"github.com/bellflight/avr/infra/metrics"
)

// DefaultTempColorDuration is used by SetTempColor when no duration is given.
const DefaultTempColorDuration = 0.5

// Driver issues one-shot commands to the board.
type Driver struct {
	w   io.Writer
	log logger.Logger
	rec metrics.Recorder
	mu  sync.Mutex
}

// Option customises a Driver.
type Option func(*Driver)

func WithLogger(l logger.Logger) Option {
	return func(d *Driver) { d.log = l }
}

func WithRecorder(r metrics.Recorder) Option {
	return func(d *Driver) { d.rec = r }
}

// NewDriver returns a Driver writing frames to w, usually a *serial.Client.
func NewDriver(w io.Writer, opts ...Option) *Driver {
	d := &Driver{
		w:   w,
		log: logger.New("pcc"),
		rec: metrics.NopRecorder{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Driver) send(cmd Command, data []byte) error {
	frame := EncodeFrame(cmd, data)
	d.mu.Lock()
	_, err := d.w.Write(frame)
	d.mu.Unlock()
	if err != nil {
		return fmt.Errorf("pcc %s: %w", cmd, err)
	}
	d.rec.Command(cmd.String())
	d.log.Debugw("sent command", map[string]any{"command": cmd.String(), "frame": fmt.Sprintf("% x", frame)})
	return nil
}

// SetBaseColor sets the color the LED strip shows when idle.
func (d *Driver) SetBaseColor(wrgb [4]uint8) error {
	return d.send(CmdSetBaseColor, wrgb[:])
}

// SetTempColor shows wrgb for duration seconds. Zero selects
// DefaultTempColorDuration.
func (d *Driver) SetTempColor(wrgb [4]uint8, duration float64) error {
	if duration == 0 {
		duration = DefaultTempColorDuration
	}
	if duration < 0 || math.IsNaN(duration) || duration > math.MaxFloat32 {
		return fmt.Errorf("%w: duration %v", ErrInvalidArgument, duration)
	}
	data := append(wrgb[:], 0, 0, 0, 0)
	binary.LittleEndian.PutUint32(data[4:], math.Float32bits(float32(duration)))
	return d.send(CmdSetTempColor, data)
}

// SetServoOpenClose moves servo to its open or closed position.
func (d *Driver) SetServoOpenClose(servo int, action ServoAction) error {
	id, err := servoID(servo)
	if err != nil {
		return err
	}
	var v byte
	switch action {
	case ServoOpen:
		v = servoOpenValue
	case ServoClose:
		v = servoCloseValue
	default:
		return fmt.Errorf("%w: servo action %q", ErrInvalidArgument, action)
	}
	return d.send(CmdSetServoOpenClose, []byte{id, v})
}

// SetServoMin sets the minimum pulse of servo. Pulse must be 1-255.
func (d *Driver) SetServoMin(servo, pulse int) error {
	return d.setServoLimit(CmdSetServoMin, servo, pulse)
}

// SetServoMax sets the maximum pulse of servo. Pulse must be 1-255.
func (d *Driver) SetServoMax(servo, pulse int) error {
	return d.setServoLimit(CmdSetServoMax, servo, pulse)
}

func (d *Driver) setServoLimit(cmd Command, servo, pulse int) error {
	id, err := servoID(servo)
	if err != nil {
		return err
	}
	if pulse < 1 || pulse > 255 {
		return fmt.Errorf("%w: %s pulse %d not in 1-255", ErrInvalidArgument, cmd, pulse)
	}
	return d.send(cmd, []byte{id, byte(pulse)})
}

// SetServoPct moves servo to pct percent of its range, clamped to 0-100.
func (d *Driver) SetServoPct(servo, pct int) error {
	id, err := servoID(servo)
	if err != nil {
		return err
	}
	pct = max(0, min(100, pct))
	return d.send(CmdSetServoPct, []byte{id, byte(pct)})
}

// SetServoAbs moves servo to an absolute position.
func (d *Driver) SetServoAbs(servo, position int) error {
	id, err := servoID(servo)
	if err != nil {
		return err
	}
	if position < 0 || position > math.MaxUint16 {
		return fmt.Errorf("%w: servo position %d", ErrInvalidArgument, position)
	}
	data := binary.BigEndian.AppendUint16([]byte{id}, uint16(position))
	return d.send(CmdSetServoAbs, data)
}

func (d *Driver) FireLaser() error { return d.send(CmdFireLaser, nil) }

func (d *Driver) SetLaserOn() error { return d.send(CmdSetLaserOn, nil) }

func (d *Driver) SetLaserOff() error { return d.send(CmdSetLaserOff, nil) }

// ResetPeripheral resets the board.
func (d *Driver) ResetPeripheral() error { return d.send(CmdResetAVRPeriph, nil) }

// CheckServoController asks the board to report whether the servo
// controller responds.
func (d *Driver) CheckServoController() error {
	return d.send(CmdCheckServoController, nil)
}

func servoID(servo int) (byte, error) {
	if servo < 0 || servo > 255 {
		return 0, fmt.Errorf("%w: servo %d", ErrInvalidArgument, servo)
	}
	return byte(servo), nil
}
