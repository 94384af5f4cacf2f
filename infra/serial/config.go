package serial

import (
	"fmt"
	"time"
)

// Defaults applied by SetDefaults.
const (
	DefaultPort           = "/dev/ttyACM0"
	DefaultBaudRate       = 115200
	DefaultReadTimeout    = 100 * time.Millisecond
	DefaultReadBufferSize = 256
)

// Config describes the serial device.
type Config struct {
	Port     string `json:"port"`
	BaudRate int    `json:"baud_rate"`
	// ReadTimeoutMS bounds each read so Run can observe cancellation.
	ReadTimeoutMS  int `json:"read_timeout_ms"`
	ReadBufferSize int `json:"read_buffer_size"`
}

func (c *Config) SetDefaults() {
	if c.Port == "" {
		c.Port = DefaultPort
	}
	if c.BaudRate == 0 {
		c.BaudRate = DefaultBaudRate
	}
	if c.ReadTimeoutMS == 0 {
		c.ReadTimeoutMS = int(DefaultReadTimeout / time.Millisecond)
	}
	if c.ReadBufferSize == 0 {
		c.ReadBufferSize = DefaultReadBufferSize
	}
}

func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("serial: port is required")
	}
	if c.BaudRate <= 0 {
		return fmt.Errorf("serial: invalid baud rate %d", c.BaudRate)
	}
	if c.ReadBufferSize < 0 {
		return fmt.Errorf("serial: invalid read buffer size %d", c.ReadBufferSize)
	}
	return nil
}

// ReadTimeout returns the per read timeout.
func (c Config) ReadTimeout() time.Duration {
	if c.ReadTimeoutMS <= 0 {
		return DefaultReadTimeout
	}
	return time.Duration(c.ReadTimeoutMS) * time.Millisecond
}
