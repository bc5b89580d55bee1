package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Broadcaster is the local fan-out, usually a *ws.Hub.
type Broadcaster interface {
	Broadcast()
}

// Relay is the game manager's notifier. Every change is broadcast locally at
// once and published to the bus in the background; pings published by other
// instances are re-broadcast locally.
type Relay struct {
	local    Broadcaster
	bus      Bus
	instance string
	pending  chan struct{}
}

func NewRelay(local Broadcaster, bus Bus) *Relay {
	return &Relay{
		local:    local,
		bus:      bus,
		instance: uuid.NewString(),
		pending:  make(chan struct{}, 1),
	}
}

func (r *Relay) Instance() string {
	return r.instance
}

// Notify never blocks. Changes made while a publish is queued coalesce into it.
func (r *Relay) Notify() {
	r.local.Broadcast()
	select {
	case r.pending <- struct{}{}:
	default:
	}
}

// Run subscribes to the bus and publishes queued pings until ctx is done.
func (r *Relay) Run(ctx context.Context) error {
	err := r.bus.Subscribe(ctx, func(msg Message) {
		if msg.Instance == r.instance {
			return
		}
		r.local.Broadcast()
	})
	if err != nil {
		return err
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-r.pending:
				msg := Message{Instance: r.instance, Type: "refresh", SentAt: time.Now().UTC()}
				pubCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
				if err := r.bus.Publish(pubCtx, msg); err != nil {
					log.Warn().Str("component", "bus").Err(err).Msg("failed to publish state change")
				}
				cancel()
			}
		}
	}()
	log.Info().Str("component", "bus").Str("instance", r.instance).Msg("event relay started")
	return nil
}
