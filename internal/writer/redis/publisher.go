// internal/writer/redis/publisher.go

// Package redis publishes decoded samples as JSON on a Redis channel.
package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"

	"github.com/tamzrod/netft-replicator/internal/netft"
)

// Message is the JSON document published per sample.
type Message struct {
	Sensor string     `json:"sensor"`
	At     time.Time  `json:"at"`
	Raw    bool       `json:"raw"`
	Force  [3]float64 `json:"force"`
	Torque [3]float64 `json:"torque"`
}

// NewMessage flattens a sample into a Message.
func NewMessage(sensorID string, at time.Time, s netft.Sample, raw bool) Message {
	return Message{
		Sensor: sensorID,
		At:     at.UTC(),
		Raw:    raw,
		Force:  [3]float64{s.Force.X, s.Force.Y, s.Force.Z},
		Torque: [3]float64{s.Torque.X, s.Torque.Y, s.Torque.Z},
	}
}

// client is the subset of *goredis.Client used here.
type client interface {
	Publish(ctx context.Context, channel string, message interface{}) *goredis.IntCmd
	Close() error
}

type Config struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

// Publisher sends Messages to one channel.
type Publisher struct {
	rdb     client
	channel string
}

// NewPublisher creates a publisher backed by a go-redis client.
// No connection is made until the first publish.
func NewPublisher(cfg Config) (*Publisher, error) {
	if cfg.Addr == "" {
		return nil, errors.New("writer redis: addr required")
	}
	if cfg.Channel == "" {
		return nil, errors.New("writer redis: channel required")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return newPublisher(rdb, cfg.Channel), nil
}

func newPublisher(rdb client, channel string) *Publisher {
	return &Publisher{rdb: rdb, channel: channel}
}

// PublishSample encodes msg as JSON and publishes it.
func (p *Publisher) PublishSample(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, "writer redis: encode")
	}
	if err := p.rdb.Publish(ctx, p.channel, body).Err(); err != nil {
		return errors.Wrapf(err, "writer redis: publish %s", p.channel)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.rdb.Close()
}
