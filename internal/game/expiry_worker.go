package game

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// StartExpiryWorker polls for pending turns whose accept window has run out so
// that timeouts fire even when nobody is looking at the board.
func (m *Manager) StartExpiryWorker(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		log.Warn().Str("component", "expiry").Msg("non-positive poll interval; expiry worker not started")
		return
	}

	log.Info().Str("component", "expiry").Dur("interval", interval).Msg("expiry worker started")
	go func() {
		ticker := m.clock.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Info().Str("component", "expiry").Msg("expiry worker stopping")
				return
			case <-ticker.Chan():
				n, err := m.CheckExpiredTurns(ctx)
				if err != nil {
					log.Error().Str("component", "expiry").Err(err).Msg("persist after timeout failed")
				}
				if n > 0 {
					log.Info().Str("component", "expiry").Int("expired", n).Msg("timed out pending turns")
				}
			}
		}
	}()
}
