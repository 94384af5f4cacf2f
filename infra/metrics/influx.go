package metrics

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/bellflight/avr/infra/logger"
)

// InfluxConfig locates the InfluxDB bucket telemetry is written to.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// TelemetrySink stores decoded bus payloads as InfluxDB points.
type TelemetrySink interface {
	WritePayload(ctx context.Context, topic string, payload any, ts time.Time) error
	Close()
}

// InfluxSink writes payloads to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a
// NopSink when the health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) TelemetrySink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return NopSink{}
	}
	return sink
}

// WritePayload flattens the numeric and boolean fields of payload into a
// point whose measurement is the topic. Payloads without such fields are
// skipped.
func (s *InfluxSink) WritePayload(ctx context.Context, topic string, payload any, ts time.Time) error {
	p, ok, err := PayloadPoint(topic, payload, ts)
	if err != nil || !ok {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying HTTP client.
func (s *InfluxSink) Close() { s.client.Close() }

// NopSink drops every payload.
type NopSink struct{}

func (NopSink) WritePayload(context.Context, string, any, time.Time) error { return nil }
func (NopSink) Close()                                                   {}

// PayloadPoint builds the point WritePayload would send. The second result
// is false when payload has nothing worth recording.
func PayloadPoint(topic string, payload any, ts time.Time) (*write.Point, bool, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, false, err
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, false, err
	}
	fields := make(map[string]any)
	flatten("", doc, fields)
	if len(fields) == 0 {
		return nil, false, nil
	}
	tags := map[string]string{"module": moduleOf(topic)}
	return write.NewPoint(topic, tags, fields, ts), true, nil
}

func flatten(prefix string, v any, out map[string]any) {
	switch val := v.(type) {
	case float64:
		if prefix != "" {
			out[prefix] = val
		}
	case bool:
		if prefix != "" {
			out[prefix] = val
		}
	case map[string]any:
		for k, child := range val {
			flatten(join(prefix, k), child, out)
		}
	case []any:
		for i, child := range val {
			flatten(join(prefix, strconv.Itoa(i)), child, out)
		}
	}
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "_" + key
}

// moduleOf returns the subsystem segment of an avr/<module>/... topic.
func moduleOf(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) > 1 {
		return parts[1]
	}
	return topic
}
