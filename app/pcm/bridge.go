// Package pcm bridges avr/pcm MQTT commands to the peripheral control
// computer over its serial link.
package pcm

import (
	"fmt"
	"sync"
	"time"

	"github.com/bellflight/avr/core/payloads"
	"github.com/bellflight/avr/infra/logger"
	"github.com/bellflight/avr/infra/mqtt"
	"github.com/bellflight/avr/infra/serial/pcc"
	"github.com/bellflight/avr/pkg/timing"
)

// frameLogPeriod limits how often unsolicited board frames are logged.
const frameLogPeriod = time.Second

// Publisher sends a payload on a topic. *mqtt.Module implements it.
type Publisher interface {
	Send(topic string, payload any) error
}

// Commander is the set of board commands driven from MQTT. *pcc.Driver
// implements it.
type Commander interface {
	SetBaseColor(wrgb [4]uint8) error
	SetTempColor(wrgb [4]uint8, duration float64) error
	SetServoOpenClose(servo int, action pcc.ServoAction) error
	SetServoMin(servo, pulse int) error
	SetServoMax(servo, pulse int) error
	SetServoPct(servo, pct int) error
	SetServoAbs(servo, position int) error
	FireLaser() error
	SetLaserOn() error
	SetLaserOff() error
	ResetPeripheral() error
	CheckServoController() error
}

// Bridge turns avr/pcm MQTT commands into board commands and reports
// board replies back on MQTT.
type Bridge struct {
	cmd     Commander
	log     logger.Logger
	limiter *timing.Limiter

	mu  sync.Mutex
	pub Publisher
	dec pcc.Decoder
}

// NewBridge creates a Bridge. A nil logger selects the component logger.
func NewBridge(cmd Commander, log logger.Logger) *Bridge {
	if log == nil {
		log = logger.New("pcm")
	}
	return &Bridge{cmd: cmd, log: log, limiter: timing.NewLimiter()}
}

// SetPublisher sets where board replies are published.
func (b *Bridge) SetPublisher(p Publisher) {
	b.mu.Lock()
	b.pub = p
	b.mu.Unlock()
}

// Handlers returns the MQTT handler map for every avr/pcm command topic.
func (b *Bridge) Handlers() map[string]mqtt.Handler {
	servo := func(action pcc.ServoAction) mqtt.Handler {
		return mqtt.Handle(func(p payloads.PCMServo) error {
			return b.cmd.SetServoOpenClose(p.Servo, action)
		})
	}
	return map[string]mqtt.Handler{
		payloads.TopicPCMColorSet: mqtt.Handle(func(p payloads.PCMColorSet) error {
			return b.cmd.SetBaseColor(p.WRGB)
		}),
		payloads.TopicPCMColorTimed: mqtt.Handle(func(p payloads.PCMColorTimed) error {
			return b.cmd.SetTempColor(p.WRGB, p.Duration)
		}),
		payloads.TopicPCMLaserFire:  mqtt.HandleEmpty(b.cmd.FireLaser),
		payloads.TopicPCMLaserOn:    mqtt.HandleEmpty(b.cmd.SetLaserOn),
		payloads.TopicPCMLaserOff:   mqtt.HandleEmpty(b.cmd.SetLaserOff),
		payloads.TopicPCMReset:      mqtt.HandleEmpty(b.cmd.ResetPeripheral),
		payloads.TopicPCMServoCheck: mqtt.HandleEmpty(b.cmd.CheckServoController),
		payloads.TopicPCMServoOpen:  servo(pcc.ServoOpen),
		payloads.TopicPCMServoClose: servo(pcc.ServoClose),
		payloads.TopicPCMServoMin: mqtt.Handle(func(p payloads.PCMServoPWM) error {
			return b.cmd.SetServoMin(p.Servo, p.Pulse)
		}),
		payloads.TopicPCMServoMax: mqtt.Handle(func(p payloads.PCMServoPWM) error {
			return b.cmd.SetServoMax(p.Servo, p.Pulse)
		}),
		payloads.TopicPCMServoPercent: mqtt.Handle(func(p payloads.PCMServoPercent) error {
			return b.cmd.SetServoPct(p.Servo, p.Percent)
		}),
		payloads.TopicPCMServoAbsolute: mqtt.Handle(func(p payloads.PCMServoAbsolute) error {
			return b.cmd.SetServoAbs(p.Servo, p.Position)
		}),
	}
}

// HandleSerial decodes a chunk read from the board. Servo controller
// replies are published on avr/pcm/servo/status, other frames are logged at
// most once per second.
func (b *Bridge) HandleSerial(chunk []byte) {
	b.mu.Lock()
	frames := b.dec.Feed(chunk)
	pub := b.pub
	b.mu.Unlock()

	for _, f := range frames {
		switch {
		case f.Command == pcc.CmdCheckServoController && len(f.Data) > 0:
			if pub == nil {
				continue
			}
			status := payloads.PCMServoStatus{Connected: f.Data[0] != 0}
			if err := pub.Send(payloads.TopicPCMServoStatus, status); err != nil {
				b.log.Errorf("publish servo status: %v", err)
			}
		default:
			b.limiter.Do("frame", frameLogPeriod, func() {
				b.log.Debugw("board frame", map[string]any{
					"command": f.Command.String(),
					"data":    fmt.Sprintf("% x", f.Data),
				})
			})
		}
	}
}

// CheckServo asks the board for the servo controller status.
func (b *Bridge) CheckServo() error {
	return b.cmd.CheckServoController()
}

// Dropped returns the number of corrupt frames received from the board.
func (b *Bridge) Dropped() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dec.Dropped()
}
