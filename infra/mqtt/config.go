package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/bellflight/avr/pkg/env"
)

// Defaults used when the configuration leaves a field empty.
const (
	DefaultHost           = "mqtt"
	DefaultPort           = 18830
	DefaultConnectTimeout = 5 * time.Second
)

// Config defines the connection parameters of a Module.
type Config struct {
	// Host and Port locate the broker. Broker, when set, is a full URL such
	// as tcp://localhost:1883 and takes precedence.
	Host   string `json:"host"`
	Port   int    `json:"port"`
	Broker string `json:"broker"`

	// ClientID defaults to avr-<uuid>.
	ClientID string `json:"client_id"`
	Username string `json:"username"`
	Password string `json:"password"`

	UseTLS     bool   `json:"use_tls"`
	ClientCert string `json:"client_cert"`
	ClientKey  string `json:"client_key"`
	CABundle   string `json:"ca_bundle"`

	QoS    byte `json:"qos"`
	Retain bool `json:"retain"`

	LWTTopic   string `json:"lwt_topic"`
	LWTPayload string `json:"lwt_payload"`
	LWTQoS     byte   `json:"lwt_qos"`
	LWTRetain  bool   `json:"lwt_retain"`

	// SubscribeAll subscribes to every topic on the broker; SubscribeAllAVR
	// to every avr/ topic. Otherwise only the handler topics are subscribed.
	SubscribeAll    bool `json:"subscribe_all"`
	SubscribeAllAVR bool `json:"subscribe_all_avr"`

	// Verbose logs every payload sent and received.
	Verbose bool `json:"verbose"`

	ConnectTimeoutMS int `json:"connect_timeout_ms"`

	TLSConfig *tls.Config `json:"-"`
}

// SetDefaults fills empty fields. Host and port fall back to the MQTT_HOST
// and MQTT_PORT environment variables before the built-in defaults.
func (c *Config) SetDefaults() {
	if c.Host == "" {
		c.Host = env.String("MQTT_HOST", DefaultHost)
	}
	if c.Port == 0 {
		c.Port = env.Int("MQTT_PORT", DefaultPort)
	}
	if c.ClientID == "" {
		c.ClientID = "avr-" + uuid.NewString()
	}
	if c.ConnectTimeoutMS <= 0 {
		c.ConnectTimeoutMS = int(DefaultConnectTimeout / time.Millisecond)
	}
}

// Validate checks the fields SetDefaults cannot fix.
func (c Config) Validate() error {
	if c.Broker == "" && (c.Port <= 0 || c.Port > 65535) {
		return fmt.Errorf("mqtt: invalid port %d", c.Port)
	}
	if c.QoS > 2 || c.LWTQoS > 2 {
		return fmt.Errorf("mqtt: qos must be 0, 1 or 2")
	}
	return nil
}

// BrokerURL returns the URL the client connects to.
func (c Config) BrokerURL() string {
	if c.Broker != "" {
		return c.Broker
	}
	scheme := "tcp"
	if c.UseTLS {
		scheme = "ssl"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, c.Host, c.Port)
}

// ConnectTimeout returns the time allowed for the initial connection.
func (c Config) ConnectTimeout() time.Duration {
	if c.ConnectTimeoutMS <= 0 {
		return DefaultConnectTimeout
	}
	return time.Duration(c.ConnectTimeoutMS) * time.Millisecond
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.BrokerURL()).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	opts.SetConnectTimeout(cfg.ConnectTimeout())
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	if cfg.LWTTopic != "" {
		opts.SetWill(cfg.LWTTopic, cfg.LWTPayload, cfg.LWTQoS, cfg.LWTRetain)
	}
	return opts, nil
}

// LoadTLSConfig loads the TLS configuration from the file paths in the config.
// Without a client certificate only the CA bundle is used.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires ca_bundle")
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caBytes) {
		return nil, fmt.Errorf("read ca: no certificates in %s", c.CABundle)
	}
	cfg := &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12}
	if c.ClientCert != "" || c.ClientKey != "" {
		cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
		if err != nil {
			return nil, fmt.Errorf("load cert: %w", err)
		}
		cfg.Certificates = []tls.Certificate{cert}
	}
	return cfg, nil
}
