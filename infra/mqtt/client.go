package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/evplanner/infra/logger"
)

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Broker      string          `json:"broker" yaml:"broker"`
	ClientID    string          `json:"client_id" yaml:"client_id"`
	Username    string          `json:"username" yaml:"username"`
	Password    string          `json:"password" yaml:"password"`
	TopicPrefix string          `json:"topic_prefix" yaml:"topic_prefix"`
	UseTLS      bool            `json:"use_tls" yaml:"use_tls"`
	ClientCert  string          `json:"client_cert" yaml:"client_cert"`
	ClientKey   string          `json:"client_key" yaml:"client_key"`
	CABundle    string          `json:"ca_bundle" yaml:"ca_bundle"`
	AuthMethod  string          `json:"auth_method" yaml:"auth_method"`
	QoS         map[string]byte `json:"qos" yaml:"qos"`
	MaxRetries  int             `json:"max_retries" yaml:"max_retries"`
	BackoffMS   int             `json:"backoff_ms" yaml:"backoff_ms"`
	TLSConfig   *tls.Config     `json:"-" yaml:"-"`
}

// SetDefaults applies default values.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "evplanner"
	}
	if c.TopicPrefix == "" {
		c.TopicPrefix = "evplanner"
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.BackoffMS <= 0 {
		c.BackoffMS = 100
	}
}

// Validate checks the configuration. An empty Broker disables publishing.
func (c Config) Validate() error {
	switch c.AuthMethod {
	case "", "username_password", "certificate", "both":
	default:
		return fmt.Errorf("mqtt.auth_method %q is not supported", c.AuthMethod)
	}
	if c.UseTLS && c.TLSConfig == nil && (c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "") {
		return fmt.Errorf("mqtt.use_tls requires client_cert, client_key and ca_bundle")
	}
	return nil
}

// Enabled reports whether a broker is configured.
func (c Config) Enabled() bool { return c.Broker != "" }

// statusTopic carries the retained online/offline marker and the will.
func (c Config) statusTopic() string { return c.TopicPrefix + "/status" }

// pahoClient is the subset of paho.Client the publisher uses.
type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// NewClientOptions builds mqtt client options from Config. The will marks
// the planner offline on an unclean disconnect.
func NewClientOptions(cfg Config, log logger.Logger) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	opts.SetConnectTimeout(10 * time.Second)
	if cfg.AuthMethod == "username_password" || cfg.AuthMethod == "both" || cfg.AuthMethod == "" {
		if cfg.Username != "" {
			opts.SetUsername(cfg.Username)
		}
		if cfg.Password != "" {
			opts.SetPassword(cfg.Password)
		}
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	opts.SetWill(cfg.statusTopic(), "offline", 1, true)
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	return opts, nil
}

// LoadTLSConfig loads the TLS configuration from the file paths in the config.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(caBytes)
	return &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}
