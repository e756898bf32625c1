package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "credentials.json")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, `{
		"username": "heizung@example.com",
		"password": "hunter2",
		"mqtt": {"url": "mqtts://broker.local", "username": "wolf", "password": "pw"},
		"refresh_interval": 120
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Username != "heizung@example.com" || cfg.Password != "hunter2" {
		t.Errorf("unexpected credentials: %+v", cfg)
	}
	if got, want := cfg.RefreshInterval(time.Minute), 2*time.Minute; got != want {
		t.Errorf("RefreshInterval() = %v, want %v", got, want)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "Missing username", content: `{"password": "x"}`},
		{name: "Missing password", content: `{"username": "x"}`},
		{name: "Bad mqtt url", content: `{"username": "x", "password": "y", "mqtt": {"url": "://"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeFile(t, tt.content)); err == nil {
				t.Error("Load() expected error, got nil")
			}
		})
	}
}

func TestMQTTConfig_Broker(t *testing.T) {
	tests := []struct {
		name string
		cfg  MQTTConfig
		want *Broker
	}{
		{
			name: "Plain with defaults",
			cfg:  MQTTConfig{URL: "mqtt://broker.local"},
			want: &Broker{Host: "broker.local", Port: 1883},
		},
		{
			name: "TLS default port",
			cfg:  MQTTConfig{URL: "mqtts://broker.local"},
			want: &Broker{Host: "broker.local", Port: 8883, UseTLS: true},
		},
		{
			name: "Explicit port",
			cfg:  MQTTConfig{URL: "mqtt://broker.local:11883"},
			want: &Broker{Host: "broker.local", Port: 11883},
		},
		{
			name: "Bare host",
			cfg:  MQTTConfig{URL: "broker.local"},
			want: &Broker{Host: "broker.local", Port: 1883},
		},
		{
			name: "Anonymous username dropped",
			cfg:  MQTTConfig{URL: "mqtt://broker.local", Username: "Anonymous", Password: "ignored"},
			want: &Broker{Host: "broker.local", Port: 1883},
		},
		{
			name: "Credentials kept",
			cfg:  MQTTConfig{URL: "mqtt://broker.local", Username: "wolf", Password: "pw"},
			want: &Broker{Host: "broker.local", Port: 1883, Username: "wolf", Password: "pw"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cfg.Broker()
			if err != nil {
				t.Fatalf("Broker() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Broker() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMQTTConfig_Broker_NoURL(t *testing.T) {
	var m *MQTTConfig
	if _, err := m.Broker(); err == nil {
		t.Error("expected error for nil config")
	}
}
