// Package events mirrors local state-change pings onto an external bus so
// other instances and external tooling can follow the arcade.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	RedisChannel = "arcade_events"
	NATSSubject  = "arcade.events"
)

// Message is the payload on the bus. Type is always "refresh".
type Message struct {
	Instance string    `json:"instance"`
	Type     string    `json:"type"`
	SentAt   time.Time `json:"sent_at"`
}

type Bus interface {
	Publish(ctx context.Context, msg Message) error
	// Subscribe calls handle for every message until ctx is done.
	Subscribe(ctx context.Context, handle func(Message)) error
	Close() error
}

func decode(data []byte) (Message, bool) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Warn().Str("component", "bus").Err(err).Msg("invalid event payload")
		return Message{}, false
	}
	return msg, true
}

// RedisBus uses Redis pub/sub.
type RedisBus struct {
	rdb *redis.Client
}

func NewRedisBus(rdb *redis.Client) *RedisBus {
	return &RedisBus{rdb: rdb}
}

func (b *RedisBus) Publish(ctx context.Context, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if err := b.rdb.Publish(ctx, RedisChannel, data).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

func (b *RedisBus) Subscribe(ctx context.Context, handle func(Message)) error {
	pubsub := b.rdb.Subscribe(ctx, RedisChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}
	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok {
					return
				}
				if msg, ok := decode([]byte(m.Payload)); ok {
					handle(msg)
				}
			}
		}
	}()
	return nil
}

// Close is a no-op; the Redis client is owned by the caller.
func (b *RedisBus) Close() error {
	return nil
}

// NATSBus uses a core NATS subject.
type NATSBus struct {
	nc *nats.Conn
}

// ConnectNATS dials url with unlimited reconnects.
func ConnectNATS(url string) (*NATSBus, error) {
	opts := []nats.Option{
		nats.Name("arcadeline"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn().Str("component", "bus").Err(err).Msg("nats disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("component", "bus").Str("url", nc.ConnectedUrl()).Msg("nats reconnected")
		}),
	}
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	return &NATSBus{nc: nc}, nil
}

func (b *NATSBus) Publish(ctx context.Context, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if err := b.nc.Publish(NATSSubject, data); err != nil {
		return fmt.Errorf("nats publish: %w", err)
	}
	return nil
}

func (b *NATSBus) Subscribe(ctx context.Context, handle func(Message)) error {
	sub, err := b.nc.Subscribe(NATSSubject, func(m *nats.Msg) {
		if msg, ok := decode(m.Data); ok {
			handle(msg)
		}
	})
	if err != nil {
		return fmt.Errorf("nats subscribe: %w", err)
	}
	go func() {
		<-ctx.Done()
		sub.Unsubscribe()
	}()
	return nil
}

func (b *NATSBus) Close() error {
	return b.nc.Drain()
}
