package config

import (
	"fmt"

	"github.com/bellflight/avr/infra/metrics"
)

// MetricsConfig enables the Prometheus endpoint and the InfluxDB telemetry
// recorder.
type MetricsConfig struct {
	PrometheusEnabled bool                 `json:"prometheus_enabled"`
	PrometheusAddr    string               `json:"prometheus_addr"`
	InfluxEnabled     bool                 `json:"influx_enabled"`
	Influx            metrics.InfluxConfig `json:"influx"`
}

func (c *MetricsConfig) SetDefaults() {
	if c.PrometheusAddr == "" {
		c.PrometheusAddr = ":2112"
	}
	if c.Influx.URL == "" {
		c.Influx.URL = "http://localhost:8086"
	}
	if c.Influx.Bucket == "" {
		c.Influx.Bucket = "avr"
	}
}

func (c MetricsConfig) Validate() error {
	if c.InfluxEnabled && c.Influx.Org == "" {
		return fmt.Errorf("metrics.influx.org is required when influx is enabled")
	}
	return nil
}
