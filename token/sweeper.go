// api/token/sweeper.go
package token

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dev-mohitbeniwal/datagate/api/audit"
	logger "github.com/dev-mohitbeniwal/datagate/api/logging"
)

// Sweeper drives the periodic eviction of expired tokens and aged-out audit
// entries. Both sweeps stop cleanly when the context is cancelled, so
// shutdown is deterministic.
type Sweeper struct {
	authority      *Authority
	auditor        audit.Service
	tokenInterval  time.Duration
	auditInterval  time.Duration
	auditRetention time.Duration
}

// NewSweeper creates a sweeper with the default cadence: hourly token
// sweeps, daily audit sweeps.
func NewSweeper(authority *Authority, auditor audit.Service, auditRetention time.Duration) *Sweeper {
	return &Sweeper{
		authority:      authority,
		auditor:        auditor,
		tokenInterval:  time.Hour,
		auditInterval:  24 * time.Hour,
		auditRetention: auditRetention,
	}
}

// Start launches both sweep loops. They run until the context is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	go s.sweepTokens(ctx)
	go s.sweepAudit(ctx)
}

func (s *Sweeper) sweepTokens(ctx context.Context) {
	ticker := time.NewTicker(s.tokenInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.authority.SweepExpired(ctx)
		case <-ctx.Done():
			logger.Info("Token sweep stopped")
			return
		}
	}
}

func (s *Sweeper) sweepAudit(ctx context.Context) {
	ticker := time.NewTicker(s.auditInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().Add(-s.auditRetention)
			if removed := s.auditor.Prune(cutoff); removed > 0 {
				logger.Info("Cleaned up old audit entries", zap.Int("count", removed))
			}
		case <-ctx.Done():
			logger.Info("Audit sweep stopped")
			return
		}
	}
}
