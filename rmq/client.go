package rmq

import (
	"hpoannotqc.org/hpoa/logger"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"github.com/streadway/amqp"
)

type Config struct {
	Host       string `envconfig:"HPOA_RMQ_HOST" required:"true"`
	Port       string `envconfig:"HPOA_RMQ_PORT" default:"5672"`
	Username   string `envconfig:"HPOA_RMQ_USERNAME" required:"true"`
	Password   string `envconfig:"HPOA_RMQ_PASSWORD" required:"true"`
	Exchange   string `envconfig:"HPOA_RMQ_EXCHANGE" default:"hpoa"`
	RoutingKey string `envconfig:"HPOA_RMQ_ROUTING_KEY" default:"hpoa.bigfile.done"`
}

// Client publishes run notifications to a durable topic exchange.
type Client struct {
	config    Config
	conn      *amqp.Connection
	channel   *amqp.Channel
	rmqLogger zerolog.Logger
}

func NewClient() (*Client, error) {
	rmqLogger := logger.NewLogger("RMQ client")
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		rmqLogger.Error().Err(err).Msg("Could not read env config")
		return nil, err
	}

	conn, channel, err := setup(getURL(config))
	if err != nil {
		return nil, fmt.Errorf("failed connection: %s", err)
	}
	if err := channel.ExchangeDeclare(
		config.Exchange, // name
		"topic",         // kind
		true,            // durable
		false,           // auto-deleted
		false,           // internal
		false,           // no-wait
		nil,             // arguments
	); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("exchange declare: %s", err)
	}

	return &Client{
		config:    config,
		conn:      conn,
		channel:   channel,
		rmqLogger: rmqLogger,
	}, nil
}

func (c *Client) Publish(msg amqp.Publishing) error {
	return c.channel.Publish(
		c.config.Exchange,
		c.config.RoutingKey,
		false,
		false,
		msg)
}

// PublishJSON sends body as a persistent JSON message.
func (c *Client) PublishJSON(body []byte) error {
	c.rmqLogger.Debug().
		Str("exchange", c.config.Exchange).
		Str("routing_key", c.config.RoutingKey).
		Msg("Publishing run notification")
	return c.Publish(amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
}

func (c *Client) Close() {
	_ = c.channel.Close()
	_ = c.conn.Close()
}

func getURL(config Config) string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s", config.Username, config.Password, config.Host, config.Port)
}

func setup(url string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	return conn, ch, nil
}
