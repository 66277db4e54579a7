package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/atskeeper/internal/logging"
	"github.com/dmitrijs2005/atskeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/atskeeper/internal/timex"
)

// SessionSweeper periodically deletes refresh-token sessions that have
// expired. Revoked but unexpired rows are kept so they still fail refresh
// with a clear record.
type SessionSweeper struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	interval    time.Duration
	now         timex.Clock
	logger      logging.Logger
}

func NewSessionSweeper(db *sql.DB, m repomanager.RepositoryManager, interval time.Duration, clock timex.Clock, l logging.Logger) *SessionSweeper {
	if clock == nil {
		clock = time.Now
	}
	return &SessionSweeper{
		db:          db,
		repomanager: m,
		interval:    interval,
		now:         clock,
		logger:      l.With("module", "sweeper"),
	}
}

// SweepOnce deletes sessions that expired before now.
func (s *SessionSweeper) SweepOnce(ctx context.Context) (int64, error) {
	n, err := s.repomanager.Sessions(s.db).DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, internal(err)
	}
	return n, nil
}

// Run sweeps every interval until ctx is cancelled. A non-positive interval
// disables the sweeper.
func (s *SessionSweeper) Run(ctx context.Context) {
	if s.interval <= 0 {
		s.logger.Info(ctx, "session sweeper disabled")
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			n, err := s.SweepOnce(ctx)
			if err != nil {
				s.logger.Error(ctx, "session sweep failed", "error", err)
				continue
			}
			if n > 0 {
				s.logger.Info(ctx, "expired sessions deleted", "count", n)
			}

		case <-ctx.Done():
			return
		}
	}
}
