// Package lifecycle decides how long a creator's copy of a secret stays
// visible.
//
// Expiry is always computed from createdAt + autoDestroyAfter. Watchers and
// reapers only act on that answer; whether a timer fired never changes it.
package lifecycle

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrUnsupportedDuration is returned for auto-destroy values outside
// Never, 30s, 1m and 5m.
var ErrUnsupportedDuration = errors.New("unsupported auto-destroy duration")

// AutoDestroy is the number of seconds after creation at which a secret is
// destroyed. Zero means never.
type AutoDestroy int

const (
	Never    AutoDestroy = 0
	After30s AutoDestroy = 30
	After1m  AutoDestroy = 60
	After5m  AutoDestroy = 300
)

// Options lists the auto-destroy choices offered to users, in display order.
var Options = []AutoDestroy{Never, After30s, After1m, After5m}

// ParseAutoDestroy validates a number of seconds.
func ParseAutoDestroy(seconds int) (AutoDestroy, error) {
	for _, opt := range Options {
		if int(opt) == seconds {
			return opt, nil
		}
	}
	return Never, fmt.Errorf("%w: %ds", ErrUnsupportedDuration, seconds)
}

// Duration returns a as a time.Duration. Never is zero.
func (a AutoDestroy) Duration() time.Duration {
	return time.Duration(a) * time.Second
}

func (a AutoDestroy) String() string {
	switch a {
	case Never:
		return "never"
	case After30s:
		return "30s"
	case After1m:
		return "1m"
	case After5m:
		return "5m"
	default:
		return fmt.Sprintf("%ds", int(a))
	}
}

// Policy is the lifecycle of one secret.
type Policy struct {
	CreatedAt   time.Time
	AutoDestroy AutoDestroy
}

// ExpiresAt returns the expiry instant; ok is false for secrets that never expire.
func (p Policy) ExpiresAt() (at time.Time, ok bool) {
	if p.AutoDestroy <= Never {
		return time.Time{}, false
	}
	return p.CreatedAt.Add(p.AutoDestroy.Duration()), true
}

// Remaining returns max(0, expiry-now); ok is false for secrets that never expire.
func (p Policy) Remaining(now time.Time) (remaining time.Duration, ok bool) {
	at, ok := p.ExpiresAt()
	if !ok {
		return 0, false
	}
	if d := at.Sub(now); d > 0 {
		return d, true
	}
	return 0, true
}

// Expired reports whether now is at or past the expiry instant.
func (p Policy) Expired(now time.Time) bool {
	at, ok := p.ExpiresAt()
	return ok && !now.Before(at)
}

// Progress returns the remaining share of the lifetime as a percentage in
// [0, 100]. Secrets that never expire are always at 100.
func (p Policy) Progress(now time.Time) float64 {
	remaining, ok := p.Remaining(now)
	if !ok {
		return 100
	}
	pct := float64(remaining) / float64(p.AutoDestroy.Duration()) * 100
	return math.Max(0, math.Min(100, pct))
}

// FormatRemaining renders a countdown the way the secret list shows it:
// "0s", "42s", "1m 5s", "5m". Partial seconds round up.
func FormatRemaining(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	secs := int64(math.Ceil(d.Seconds()))
	if secs < 60 {
		return fmt.Sprintf("%ds", secs)
	}
	mins, rest := secs/60, secs%60
	if rest > 0 {
		return fmt.Sprintf("%dm %ds", mins, rest)
	}
	return fmt.Sprintf("%dm", mins)
}

// DangerZone is the final stretch of a countdown that is highlighted.
const DangerZone = 20 * time.Second

// InDangerZone reports whether a countdown is running and within DangerZone.
func InDangerZone(remaining time.Duration) bool {
	return remaining > 0 && remaining <= DangerZone
}
