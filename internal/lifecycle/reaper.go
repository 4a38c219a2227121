package lifecycle

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Purger deletes every secret whose policy has expired.
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// StartExpiryReaper sweeps expired secrets every interval until ctx is done.
func StartExpiryReaper(
	ctx context.Context,
	purger Purger,
	interval time.Duration,
	log *zap.Logger,
) {
	if log == nil {
		log = zap.NewNop()
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed, err := purger.PurgeExpired(ctx)
				if err != nil {
					log.Error("failed to purge expired secrets", zap.Error(err))
					continue
				}
				if removed > 0 {
					log.Info("purged expired secrets", zap.Int64("removed", removed))
				}
			}
		}
	}()
}
