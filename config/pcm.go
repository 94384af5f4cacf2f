package config

import "time"

// PCMConfig configures the peripheral control bridge.
type PCMConfig struct {
	// ServoCheckIntervalMS is how often the servo controller is polled.
	// A negative value disables polling.
	ServoCheckIntervalMS int `json:"servo_check_interval_ms"`
}

func (c *PCMConfig) SetDefaults() {
	if c.ServoCheckIntervalMS == 0 {
		c.ServoCheckIntervalMS = 5000
	}
}

// ServoCheckInterval returns the polling interval, zero when disabled.
func (c PCMConfig) ServoCheckInterval() time.Duration {
	if c.ServoCheckIntervalMS < 0 {
		return 0
	}
	return time.Duration(c.ServoCheckIntervalMS) * time.Millisecond
}
