package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
)

// Config is the deployment-owned credentials file. The file on disk is JSON
// (a YAML subset), so the YAML decoder reads it as-is.
type Config struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	// MQTT is the optional telemetry endpoint the fetched status is
	// published to. Required for watch mode.
	MQTT *MQTTConfig `yaml:"mqtt,omitempty"`

	// Filter is an optional expression selecting which parameters are
	// polled and published, e.g. `Parameter.Unit == "temperature"`.
	Filter string `yaml:"filter,omitempty"`

	// RefreshIntervalSeconds overrides the default polling interval.
	RefreshIntervalSeconds int `yaml:"refresh_interval,omitempty"`
}

// MQTTConfig holds the broker settings as written by the deployment.
type MQTTConfig struct {
	URL      string `yaml:"url"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
}

// Broker is the resolved connection target derived from an MQTTConfig.
type Broker struct {
	Host     string
	Port     int
	UseTLS   bool
	Username string
	Password string
}

// Load reads and parses the credentials file at the given path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading credentials file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing credentials file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating credentials file: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Username == "" {
		return fmt.Errorf("username is required")
	}
	if c.Password == "" {
		return fmt.Errorf("password is required")
	}
	if c.MQTT != nil && c.MQTT.URL != "" {
		if _, err := c.MQTT.Broker(); err != nil {
			return fmt.Errorf("validating mqtt section: %w", err)
		}
	}
	return nil
}

// RefreshInterval returns the configured polling interval, or def when the
// file does not set one.
func (c *Config) RefreshInterval(def time.Duration) time.Duration {
	if c.RefreshIntervalSeconds <= 0 {
		return def
	}
	return time.Duration(c.RefreshIntervalSeconds) * time.Second
}

// Broker resolves the broker URL and normalizes credentials: the username
// "anonymous" (or empty) means no authentication, an empty password means
// none. Ports default to 1883, or 8883 for mqtts/ssl.
func (m *MQTTConfig) Broker() (*Broker, error) {
	if m == nil || m.URL == "" {
		return nil, fmt.Errorf("no mqtt url configured")
	}

	u, err := url.Parse(m.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing mqtt url %q: %w", m.URL, err)
	}
	if u.Hostname() == "" {
		// bare "host:port" parses as an opaque URL; retry as host-relative
		u, err = url.Parse("mqtt://" + m.URL)
		if err != nil || u.Hostname() == "" {
			return nil, fmt.Errorf("mqtt url %q has no host", m.URL)
		}
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme == "" {
		scheme = "mqtt"
	}
	useTLS := scheme == "mqtts" || scheme == "ssl"

	port := 1883
	if useTLS {
		port = 8883
	}
	if p := u.Port(); p != "" {
		parsed, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("mqtt url %q has invalid port: %w", m.URL, err)
		}
		port = parsed
	}

	username := strings.TrimSpace(m.Username)
	if strings.EqualFold(username, "anonymous") {
		username = ""
	}
	password := m.Password
	if username == "" {
		password = ""
	}

	return &Broker{
		Host:     u.Hostname(),
		Port:     port,
		UseTLS:   useTLS,
		Username: username,
		Password: password,
	}, nil
}
