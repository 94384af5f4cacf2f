package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PromRecorder exposes module activity as Prometheus metrics.
type PromRecorder struct {
	published *prometheus.CounterVec
	received  *prometheus.CounterVec
	failures  *prometheus.CounterVec
	serial    *prometheus.CounterVec
	commands  *prometheus.CounterVec
}

// NewPromRecorder registers the metrics on the default Prometheus registerer.
func NewPromRecorder() (*PromRecorder, error) {
	return NewPromRecorderWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromRecorderWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Metrics
// already registered by an earlier recorder are reused.
func NewPromRecorderWithRegistry(reg prometheus.Registerer) (*PromRecorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	r := &PromRecorder{
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "avr_mqtt_published_total",
			Help: "Messages published per topic",
		}, []string{"topic"}),
		received: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "avr_mqtt_received_total",
			Help: "Messages received per topic",
		}, []string{"topic"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "avr_mqtt_handler_failures_total",
			Help: "Messages whose handler returned an error or panicked",
		}, []string{"topic"}),
		serial: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "avr_serial_bytes_total",
			Help: "Bytes moved over the serial port",
		}, []string{"direction"}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "avr_pcc_commands_total",
			Help: "Commands sent to the peripheral control computer",
		}, []string{"command"}),
	}
	var err error
	for _, c := range []**prometheus.CounterVec{&r.published, &r.received, &r.failures, &r.serial, &r.commands} {
		if *c, err = register(reg, *c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func register(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(*prometheus.CounterVec), nil
		}
		return nil, err
	}
	return c, nil
}

func (r *PromRecorder) MessagePublished(topic string) { r.published.WithLabelValues(topic).Inc() }
func (r *PromRecorder) MessageReceived(topic string)  { r.received.WithLabelValues(topic).Inc() }
func (r *PromRecorder) HandlerFailed(topic string)    { r.failures.WithLabelValues(topic).Inc() }
func (r *PromRecorder) Command(name string)           { r.commands.WithLabelValues(name).Inc() }

func (r *PromRecorder) SerialBytes(direction string, n int) {
	if n > 0 {
		r.serial.WithLabelValues(direction).Add(float64(n))
	}
}
