package airfryer

import (
	"context"
	"crypto/rand"
	"crypto/tls"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/joshp123/condor/internal/config"
	"github.com/joshp123/condor/internal/logger"
)

const (
	availabilityOnline  = "online"
	availabilityOffline = "offline"
)

type mqttClient struct {
	client mqtt.Client
	mu     sync.Mutex
	subs   map[string]func([]byte)
}

func newMQTTClient(cfg *config.MQTTConfig) (*mqttClient, error) {
	opts := mqtt.NewClientOptions()
	scheme := "tcp"
	if cfg.TLS {
		scheme = "ssl"
		opts.SetTLSConfig(&tls.Config{})
	}
	opts.AddBroker(fmt.Sprintf("%s://%s:%d", scheme, cfg.Host, cfg.Port))
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetClientID(randomClientID())
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectTimeout(10 * time.Second)

	mc := &mqttClient{subs: make(map[string]func([]byte))}
	opts.OnConnect = func(_ mqtt.Client) {
		mc.resubscribeAll()
	}
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	mc.client = client
	return mc, nil
}

func (c *mqttClient) subscribe(topic string, cb func([]byte)) error {
	c.mu.Lock()
	c.subs[topic] = cb
	c.mu.Unlock()

	token := c.client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		cb(msg.Payload())
	})
	if token.Wait() && token.Error() != nil {
		return token.Error()
	}
	return nil
}

func (c *mqttClient) publish(topic string, payload []byte, retained bool) error {
	if token := c.client.Publish(topic, 0, retained, payload); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	return nil
}

func (c *mqttClient) resubscribeAll() {
	if c.client == nil {
		return
	}
	c.mu.Lock()
	subs := make(map[string]func([]byte), len(c.subs))
	for topic, cb := range c.subs {
		subs[topic] = cb
	}
	c.mu.Unlock()
	for topic, cb := range subs {
		callback := cb
		c.client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
			callback(msg.Payload())
		})
	}
}

func (c *mqttClient) disconnect() {
	if c.client != nil {
		c.client.Disconnect(250)
	}
}

func randomClientID() string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	return "condor-" + base64.RawURLEncoding.EncodeToString(buf)
}

// mqttBridge mirrors the cached status onto retained MQTT topics and feeds
// command-topic messages into the sequencer.
//
// Topics, under {prefix}/airfryer:
//
//	{sensor}            — retained, one per sensor descriptor
//	state               — retained raw snapshot JSON
//	availability        — online/offline
//	command/{action}    — inbound, JSON parameter payload
type mqttBridge struct {
	client  *mqttClient
	prefix  string
	sensors []Sensor
	log     *logger.Logger
}

func newMQTTBridge(cfg *config.MQTTConfig, sensors []Sensor, log *logger.Logger) (*mqttBridge, error) {
	client, err := newMQTTClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}
	return &mqttBridge{
		client:  client,
		prefix:  cfg.TopicPrefix + "/airfryer",
		sensors: sensors,
		log:     log,
	}, nil
}

// publishState is a poller subscriber: every completed refresh lands on the
// broker, failures as an offline availability flip.
func (b *mqttBridge) publishState(status Status, err error) {
	if err != nil {
		b.publish(b.prefix+"/availability", []byte(availabilityOffline), true)
		return
	}

	b.publish(b.prefix+"/availability", []byte(availabilityOnline), true)

	if raw, err := json.Marshal(status); err == nil {
		b.publish(b.prefix+"/state", raw, true)
	}

	for key, value := range Evaluate(b.sensors, status, true) {
		payload, err := json.Marshal(value)
		if err != nil {
			continue
		}
		b.publish(b.prefix+"/"+key, payload, true)
	}
}

// subscribeCommands wires one command topic per action. Dispatch runs on
// the broker callback goroutine, so commands from one topic arrive at the
// sequencer in publish order.
func (b *mqttBridge) subscribeCommands(actions []string, dispatch func(ctx context.Context, action string, params ActionParams) error) error {
	for _, action := range actions {
		name := action
		topic := b.prefix + "/command/" + name
		err := b.client.subscribe(topic, func(payload []byte) {
			var params ActionParams
			if len(payload) > 0 {
				if err := json.Unmarshal(payload, &params); err != nil {
					b.log.Warnw("bad command payload", "action", name, "error", err)
					return
				}
			}
			if err := dispatch(context.Background(), name, params); err != nil {
				b.log.Warnw("command failed", "action", name, "error", err)
			}
		})
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", topic, err)
		}
	}
	return nil
}

func (b *mqttBridge) publish(topic string, payload []byte, retained bool) {
	if err := b.client.publish(topic, payload, retained); err != nil {
		b.log.Warnw("mqtt publish failed", "topic", topic, "error", err)
	}
}

func (b *mqttBridge) close() {
	b.publish(b.prefix+"/availability", []byte(availabilityOffline), true)
	b.client.disconnect()
}
