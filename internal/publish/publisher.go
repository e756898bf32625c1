// Package publish pushes fetched status to an MQTT broker and accepts
// write requests back from it.
package publish

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/xid"
	"github.com/rs/zerolog/log"

	"github.com/marcinmaslon/wolf-comm/internal/config"
)

const (
	StatusTopic = "wolf/status"
	SetTopic    = "wolf/set"

	connectTimeout = 10 * time.Second
)

// SetHandler receives parameter write requests from the set topic.
type SetHandler func(name, value string)

type Publisher struct {
	client mqtt.Client
}

// Connect dials the broker described by the resolved config.
func Connect(broker *config.Broker) (*Publisher, error) {
	scheme := "tcp"
	if broker.UseTLS {
		scheme = "ssl"
	}

	opts := mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("%s://%s:%d", scheme, broker.Host, broker.Port)).
		SetClientID("wolf-comm-" + xid.New().String()).
		SetConnectTimeout(connectTimeout).
		SetAutoReconnect(true)

	if broker.Username != "" {
		opts.SetUsername(broker.Username)
		opts.SetPassword(broker.Password)
	}
	if broker.UseTLS {
		opts.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("connecting to mqtt broker %s:%d: timeout", broker.Host, broker.Port)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connecting to mqtt broker %s:%d: %w", broker.Host, broker.Port, err)
	}

	log.Info().Str("host", broker.Host).Int("port", broker.Port).Msg("connected to mqtt broker")
	return &Publisher{client: client}, nil
}

// PublishStatus sends the status document to wolf/status, retained so late
// subscribers see the last reading.
func (p *Publisher) PublishStatus(status map[string]any) error {
	payload, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("serializing status: %w", err)
	}
	token := p.client.Publish(StatusTopic, 0, true, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("publishing to %s: %w", StatusTopic, err)
	}
	return nil
}

// ListenSet subscribes to wolf/set and forwards well-formed write requests
// to the handler. Malformed payloads are logged and dropped.
func (p *Publisher) ListenSet(handler SetHandler) error {
	token := p.client.Subscribe(SetTopic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		name, value, err := ParseSetPayload(string(msg.Payload()))
		if err != nil {
			log.Warn().
				Err(err).
				Str("payload", string(msg.Payload())).
				Msgf("ignoring %s payload", SetTopic)
			return
		}
		log.Info().Str("parameter", name).Str("value", value).Msgf("%s request received", SetTopic)
		handler(name, value)
	})
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("subscribing to %s: %w", SetTopic, err)
	}
	log.Info().Msgf("subscribed to %s", SetTopic)
	return nil
}

func (p *Publisher) Close() {
	p.client.Disconnect(250)
}
