package auth

import (
	"context"
	"time"

	"gatehouse.dev/internal/obs"
)

// ExpiredTokenDeleter is implemented by revocation backends that can drop
// entries past their natural expiry. The Redis backend has no use for it
// because keys carry their own TTL.
type ExpiredTokenDeleter interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Sweeper periodically removes revoked-token entries whose expires_at has
// passed. This is a documented deviation from the reference behavior, which
// never removes entries; it is safe because Decode already rejects expired
// tokens independently of the revocation check. Disabled unless the
// configured interval is positive.
type Sweeper struct {
	store    ExpiredTokenDeleter
	interval time.Duration
	now      func() time.Time
}

func NewSweeper(store ExpiredTokenDeleter, interval time.Duration) *Sweeper {
	return &Sweeper{store: store, interval: interval, now: time.Now}
}

// Run blocks until ctx is canceled, sweeping once per interval.
func (s *Sweeper) Run(ctx context.Context) {
	if s.store == nil || s.interval <= 0 {
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	removed, err := s.store.DeleteExpired(ctx, s.now())
	if err != nil {
		obs.Emit(map[string]any{
			"level": "error",
			"msg":   "revoked_token_sweep_failed",
			"error": err.Error(),
		})
		return
	}
	if removed > 0 {
		obs.Emit(map[string]any{
			"level":   "info",
			"msg":     "revoked_token_sweep",
			"removed": removed,
		})
	}
}
