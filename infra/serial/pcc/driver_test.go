package pcc

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bellflight/avr/infra/logger"
	"github.com/bellflight/avr/infra/metrics"
)

type commandRecorder struct {
	metrics.NopRecorder
	commands []string
}

func (r *commandRecorder) Command(name string) { r.commands = append(r.commands, name) }

func newTestDriver() (*Driver, *bytes.Buffer, *commandRecorder) {
	buf := &bytes.Buffer{}
	rec := &commandRecorder{}
	return NewDriver(buf, WithLogger(logger.NopLogger{}), WithRecorder(rec)), buf, rec
}

func TestDriverFrames(t *testing.T) {
	tests := []struct {
		name string
		call func(*Driver) error
		want string
	}{
		{"base color", func(d *Driver) error { return d.SetBaseColor([4]uint8{1, 2, 3, 4}) }, "$P<\x00\x05\x05\x01\x02\x03\x04\xd9"},
		{"temp color", func(d *Driver) error { return d.SetTempColor([4]uint8{1, 2, 3, 4}, 5) }, "$P<\x00\x09\x06\x01\x02\x03\x04\x00\x00\xa0@6"},
		{"servo open", func(d *Driver) error { return d.SetServoOpenClose(2, ServoOpen) }, "$P<\x00\x03\x00\x02\x96\xe3"},
		{"servo close", func(d *Driver) error { return d.SetServoOpenClose(2, ServoClose) }, "$P<\x00\x03\x00\x02d\x18"},
		{"servo min", func(d *Driver) error { return d.SetServoMin(2, 50) }, "$P<\x00\x03\x01\x022\xd5"},
		{"servo max", func(d *Driver) error { return d.SetServoMax(2, 50) }, "$P<\x00\x03\x02\x022\x85"},
		{"servo pct", func(d *Driver) error { return d.SetServoPct(2, 50) }, "$P<\x00\x03\x03\x022\x06"},
		{"servo abs", func(d *Driver) error { return d.SetServoAbs(2, 50) }, "$P<\x00\x04\x04\x02\x002\xbd"},
		{"fire laser", (*Driver).FireLaser, "$P<\x00\x01\x07\xcc"},
		{"laser on", (*Driver).SetLaserOn, "$P<\x00\x01\x08\xb1"},
		{"laser off", (*Driver).SetLaserOff, "$P<\x00\x01\x09d"},
		{"reset", (*Driver).ResetPeripheral, "$P<\x00\x01\x0a\xce"},
		{"check servo controller", (*Driver).CheckServoController, "$P<\x00\x01\x0b\x1b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, buf, _ := newTestDriver()
			require.NoError(t, tt.call(d))
			assert.Equal(t, []byte(tt.want), buf.Bytes())
		})
	}
}

func TestTempColorDefaultDuration(t *testing.T) {
	d, buf, _ := newTestDriver()
	require.NoError(t, d.SetTempColor([4]uint8{0, 255, 0, 0}, 0))
	// 0.5 as little endian float32
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x3f}, buf.Bytes()[10:14])
}

func TestServoPctClamps(t *testing.T) {
	d, buf, _ := newTestDriver()
	require.NoError(t, d.SetServoPct(1, 150))
	require.NoError(t, d.SetServoPct(1, -20))
	want := append(EncodeFrame(CmdSetServoPct, []byte{1, 100}), EncodeFrame(CmdSetServoPct, []byte{1, 0})...)
	assert.Equal(t, want, buf.Bytes())
}

func TestInvalidArgumentsSendNothing(t *testing.T) {
	tests := []struct {
		name string
		call func(*Driver) error
	}{
		{"min zero", func(d *Driver) error { return d.SetServoMin(2, 0) }},
		{"max too large", func(d *Driver) error { return d.SetServoMax(2, 256) }},
		{"bad action", func(d *Driver) error { return d.SetServoOpenClose(2, "ajar") }},
		{"bad servo", func(d *Driver) error { return d.SetServoOpenClose(-1, ServoOpen) }},
		{"abs too large", func(d *Driver) error { return d.SetServoAbs(0, 70000) }},
		{"negative duration", func(d *Driver) error { return d.SetTempColor([4]uint8{}, -1) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, buf, rec := newTestDriver()
			assert.ErrorIs(t, tt.call(d), ErrInvalidArgument)
			assert.Zero(t, buf.Len())
			assert.Empty(t, rec.commands)
		})
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("port gone") }

func TestWriteErrorNotCounted(t *testing.T) {
	rec := &commandRecorder{}
	d := NewDriver(failingWriter{}, WithLogger(logger.NopLogger{}), WithRecorder(rec))
	err := d.FireLaser()
	assert.ErrorContains(t, err, "fire_laser")
	assert.ErrorContains(t, err, "port gone")
	assert.Empty(t, rec.commands)
}

func TestCommandsRecorded(t *testing.T) {
	d, _, rec := newTestDriver()
	require.NoError(t, d.SetLaserOn())
	require.NoError(t, d.SetBaseColor([4]uint8{}))
	assert.Equal(t, []string{"set_laser_on", "set_base_color"}, rec.commands)
}

func TestCommandString(t *testing.T) {
	assert.Equal(t, "check_servo_controller", CmdCheckServoController.String())
	assert.Equal(t, "command(42)", Command(42).String())
}
