package mqtt

import (
	"context"
	"errors"
	"fmt"
	"sync"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/mcpl-automation/coilprint-backend/pkg/config"
	"github.com/mcpl-automation/coilprint-backend/pkg/logger"
)

// Handler receives one inbound message. It runs on the paho router goroutine
// and must hand work off quickly; it must never block on business logic.
type Handler func(topic string, payload []byte)

// Client wraps the paho MQTT connection used by the listener service.
type Client struct {
	cli  paho.Client
	cfg  config.MQTTConfig
	logg *logger.Logger

	mu      sync.Mutex
	handler Handler
}

var errNotConnected = errors.New("mqtt client is not connected")

// NewClient builds and connects the MQTT client. Subscriptions are restored
// automatically after broker reconnects.
func NewClient(ctx context.Context, cfg config.MQTTConfig, logg *logger.Logger) (*Client, error) {
	if cfg.BrokerHost == "" {
		return nil, errors.New("mqtt broker host is required")
	}

	c := &Client{cfg: cfg, logg: logg}

	opts := paho.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.BrokerHost, cfg.BrokerPort)).
		SetClientID(fmt.Sprintf("%s-%s", cfg.ClientIDPrefix, uuid.NewString()[:8])).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetKeepAlive(cfg.KeepAlive).
		SetAutoReconnect(true).
		SetMaxReconnectInterval(cfg.MaxReconnectDelay).
		SetOrderMatters(false)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	opts.SetOnConnectHandler(func(_ paho.Client) {
		if logg != nil {
			logg.Info(ctx, "connected to mqtt broker")
		}
		c.resubscribe(ctx)
	})
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		if logg != nil {
			logg.Warn(ctx, fmt.Sprintf("mqtt connection lost: %v", err))
		}
	})

	c.cli = paho.NewClient(opts)

	token := c.cli.Connect()
	if !token.WaitTimeout(cfg.ConnectTimeout) {
		return nil, fmt.Errorf("connecting to mqtt broker %s:%d: timeout", cfg.BrokerHost, cfg.BrokerPort)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connecting to mqtt broker %s:%d: %w", cfg.BrokerHost, cfg.BrokerPort, err)
	}

	return c, nil
}

// Subscribe registers the handler for all configured topics.
func (c *Client) Subscribe(ctx context.Context, handler Handler) error {
	if handler == nil {
		return errors.New("mqtt handler is required")
	}

	c.mu.Lock()
	c.handler = handler
	c.mu.Unlock()

	return c.subscribeAll(ctx, handler)
}

func (c *Client) resubscribe(ctx context.Context) {
	c.mu.Lock()
	handler := c.handler
	c.mu.Unlock()
	if handler == nil {
		return
	}
	if err := c.subscribeAll(ctx, handler); err != nil && c.logg != nil {
		c.logg.Error(ctx, "failed to restore mqtt subscriptions", err)
	}
}

func (c *Client) subscribeAll(ctx context.Context, handler Handler) error {
	for _, topic := range c.cfg.Topics {
		token := c.cli.Subscribe(topic, c.cfg.QoS, func(_ paho.Client, msg paho.Message) {
			handler(msg.Topic(), msg.Payload())
		})
		if !token.WaitTimeout(c.cfg.ConnectTimeout) {
			return fmt.Errorf("subscribing to %q: timeout", topic)
		}
		if err := token.Error(); err != nil {
			return fmt.Errorf("subscribing to %q: %w", topic, err)
		}
		if c.logg != nil {
			c.logg.Info(c.logg.WithTopic(ctx, topic), "subscribed to mqtt topic")
		}
	}
	return nil
}

// Ping verifies the broker connection is open.
func (c *Client) Ping(_ context.Context) error {
	if c == nil || c.cli == nil || !c.cli.IsConnectionOpen() {
		return errNotConnected
	}
	return nil
}

// Close disconnects from the broker, allowing in-flight acks to drain.
func (c *Client) Close() {
	if c == nil || c.cli == nil {
		return
	}
	c.cli.Disconnect(uint(c.cfg.ConnectTimeout.Milliseconds()))
}
