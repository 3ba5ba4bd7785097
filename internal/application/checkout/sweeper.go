package checkout

import (
	"context"
	"time"

	"github.com/orkesta-pay/settlement-go/internal/infra/logging"
)

// Sweeper periodically marks stale intents expired so dashboards see the
// terminal status without waiting for a read.
type Sweeper struct {
	Service  *Service
	Interval time.Duration
	Logger   logging.Logger
}

func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.Service.ExpireStale(ctx)
			if err != nil {
				s.Logger.Error("expiry sweep failed", map[string]any{"error": err.Error()})
				continue
			}
			if n > 0 {
				s.Logger.Info("expired stale intents", map[string]any{"count": n})
			}
		}
	}
}
