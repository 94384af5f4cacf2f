package pcm

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bellflight/avr/core/payloads"
	"github.com/bellflight/avr/infra/logger"
	"github.com/bellflight/avr/infra/serial/pcc"
)

type fakeCommander struct {
	calls []string
}

func (f *fakeCommander) record(format string, args ...any) error {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
	return nil
}

func (f *fakeCommander) SetBaseColor(w [4]uint8) error { return f.record("base %v", w) }
func (f *fakeCommander) SetTempColor(w [4]uint8, d float64) error {
	return f.record("temp %v %v", w, d)
}
func (f *fakeCommander) SetServoOpenClose(s int, a pcc.ServoAction) error {
	return f.record("servo %d %s", s, a)
}
func (f *fakeCommander) SetServoMin(s, p int) error  { return f.record("min %d %d", s, p) }
func (f *fakeCommander) SetServoMax(s, p int) error  { return f.record("max %d %d", s, p) }
func (f *fakeCommander) SetServoPct(s, p int) error  { return f.record("pct %d %d", s, p) }
func (f *fakeCommander) SetServoAbs(s, p int) error  { return f.record("abs %d %d", s, p) }
func (f *fakeCommander) FireLaser() error            { return f.record("fire") }
func (f *fakeCommander) SetLaserOn() error           { return f.record("laser on") }
func (f *fakeCommander) SetLaserOff() error          { return f.record("laser off") }
func (f *fakeCommander) ResetPeripheral() error      { return f.record("reset") }
func (f *fakeCommander) CheckServoController() error { return f.record("check") }

type fakePublisher struct {
	mu   sync.Mutex
	sent map[string]any
}

func (p *fakePublisher) Send(topic string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sent == nil {
		p.sent = map[string]any{}
	}
	p.sent[topic] = payload
	return nil
}

func TestHandlersDriveCommands(t *testing.T) {
	tests := []struct {
		topic   string
		payload any
		want    string
	}{
		{payloads.TopicPCMColorSet, payloads.PCMColorSet{WRGB: [4]uint8{1, 2, 3, 4}}, "base [1 2 3 4]"},
		{payloads.TopicPCMColorTimed, payloads.PCMColorTimed{WRGB: [4]uint8{0, 9, 0, 0}, Duration: 2}, "temp [0 9 0 0] 2"},
		{payloads.TopicPCMLaserFire, payloads.EmptyMessage{}, "fire"},
		{payloads.TopicPCMLaserOn, payloads.EmptyMessage{}, "laser on"},
		{payloads.TopicPCMLaserOff, payloads.EmptyMessage{}, "laser off"},
		{payloads.TopicPCMReset, payloads.EmptyMessage{}, "reset"},
		{payloads.TopicPCMServoCheck, payloads.EmptyMessage{}, "check"},
		{payloads.TopicPCMServoOpen, payloads.PCMServo{Servo: 2}, "servo 2 open"},
		{payloads.TopicPCMServoClose, payloads.PCMServo{Servo: 3}, "servo 3 close"},
		{payloads.TopicPCMServoMin, payloads.PCMServoPWM{Servo: 1, Pulse: 10}, "min 1 10"},
		{payloads.TopicPCMServoMax, payloads.PCMServoPWM{Servo: 1, Pulse: 200}, "max 1 200"},
		{payloads.TopicPCMServoPercent, payloads.PCMServoPercent{Servo: 0, Percent: 40}, "pct 0 40"},
		{payloads.TopicPCMServoAbsolute, payloads.PCMServoAbsolute{Servo: 4, Position: 900}, "abs 4 900"},
	}
	cmd := &fakeCommander{}
	handlers := NewBridge(cmd, logger.NopLogger{}).Handlers()
	require.Len(t, handlers, len(tests))
	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			h, ok := handlers[tt.topic]
			require.True(t, ok)
			require.NoError(t, h(tt.topic, tt.payload))
			assert.Equal(t, tt.want, cmd.calls[len(cmd.calls)-1])
		})
	}
}

func TestHandlersRejectWrongPayload(t *testing.T) {
	cmd := &fakeCommander{}
	handlers := NewBridge(cmd, logger.NopLogger{}).Handlers()
	err := handlers[payloads.TopicPCMServoOpen](payloads.TopicPCMServoOpen, payloads.PCMColorSet{})
	assert.Error(t, err)
	assert.Empty(t, cmd.calls)
}

func TestHandleSerialPublishesServoStatus(t *testing.T) {
	pub := &fakePublisher{}
	b := NewBridge(&fakeCommander{}, logger.NopLogger{})
	b.SetPublisher(pub)

	frame := serverFrame(pcc.CmdCheckServoController, 1)
	b.HandleSerial(frame[:4])
	assert.Empty(t, pub.sent)
	b.HandleSerial(frame[4:])
	assert.Equal(t, payloads.PCMServoStatus{Connected: true}, pub.sent[payloads.TopicPCMServoStatus])

	b.HandleSerial(serverFrame(pcc.CmdCheckServoController, 0))
	assert.Equal(t, payloads.PCMServoStatus{Connected: false}, pub.sent[payloads.TopicPCMServoStatus])
}

func TestHandleSerialIgnoresOtherFrames(t *testing.T) {
	pub := &fakePublisher{}
	b := NewBridge(&fakeCommander{}, logger.NopLogger{})
	b.SetPublisher(pub)

	bad := serverFrame(pcc.CmdFireLaser)
	bad[len(bad)-1] ^= 0x01
	b.HandleSerial(bad)
	b.HandleSerial(serverFrame(pcc.CmdSetLaserOn, 7))
	assert.Empty(t, pub.sent)
	assert.Equal(t, 1, b.Dropped())
}

func TestCheckServo(t *testing.T) {
	cmd := &fakeCommander{}
	require.NoError(t, NewBridge(cmd, logger.NopLogger{}).CheckServo())
	assert.Equal(t, []string{"check"}, cmd.calls)
}

// serverFrame builds a frame as sent by the board.
func serverFrame(cmd pcc.Command, data ...byte) []byte {
	return pcc.EncodeReply(cmd, data)
}
