package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Prober pings every registered connection. Replies are handled by the
// transport (pong keeps the read deadline alive), never here.
type Prober struct {
	Registry *Registry
	Period   time.Duration
}

func (p *Prober) Probe() BroadcastResult {
	return p.Registry.Broadcast(Signal{Kind: SignalPing})
}

// Run probes on every tick until ctx is done.
func (p *Prober) Run(ctx context.Context) error {
	t := time.NewTicker(p.Period)
	defer t.Stop()
	log.Info().Str("module", "app.prober").Dur("period", p.Period).Msg("prober started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "app.prober").Msg("prober stopped")
			return nil
		case <-t.C:
			res := p.Probe()
			log.Debug().Str("module", "app.prober").Int("sent_to", res.Sent).Int("failed", len(res.Failed)).Msg("probe")
		}
	}
}
