package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var created = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func TestPolicy_ExpiryBoundary(t *testing.T) {
	p := Policy{CreatedAt: created, AutoDestroy: After30s}

	tests := []struct {
		name        string
		offset      time.Duration
		wantExpired bool
	}{
		{"at creation", 0, false},
		{"29000ms", 29000 * time.Millisecond, false},
		{"29999ms", 29999 * time.Millisecond, false},
		{"30000ms", 30000 * time.Millisecond, true},
		{"long after", time.Hour, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := created.Add(tt.offset)
			assert.Equal(t, tt.wantExpired, p.Expired(now))

			remaining, ok := p.Remaining(now)
			require.True(t, ok)
			if tt.wantExpired {
				assert.Zero(t, remaining)
			} else {
				assert.Equal(t, 30*time.Second-tt.offset, remaining)
			}
		})
	}
}

func TestPolicy_Never(t *testing.T) {
	p := Policy{CreatedAt: created, AutoDestroy: Never}

	_, ok := p.ExpiresAt()
	assert.False(t, ok)
	_, ok = p.Remaining(created.Add(24 * time.Hour))
	assert.False(t, ok)
	assert.False(t, p.Expired(created.Add(365*24*time.Hour)))
	assert.Equal(t, 100.0, p.Progress(created.Add(time.Hour)))
}

func TestPolicy_Progress(t *testing.T) {
	p := Policy{CreatedAt: created, AutoDestroy: After1m}

	assert.Equal(t, 100.0, p.Progress(created))
	assert.InDelta(t, 50.0, p.Progress(created.Add(30*time.Second)), 1e-9)
	assert.Equal(t, 0.0, p.Progress(created.Add(2*time.Minute)))
	// a clock running behind the creation time still clamps at 100
	assert.Equal(t, 100.0, p.Progress(created.Add(-10*time.Second)))
}

func TestParseAutoDestroy(t *testing.T) {
	for _, secs := range []int{0, 30, 60, 300} {
		got, err := ParseAutoDestroy(secs)
		require.NoError(t, err)
		assert.Equal(t, AutoDestroy(secs), got)
	}

	for _, secs := range []int{-1, 1, 29, 120, 3600} {
		_, err := ParseAutoDestroy(secs)
		assert.ErrorIs(t, err, ErrUnsupportedDuration, "seconds=%d", secs)
	}
}

func TestAutoDestroy_String(t *testing.T) {
	assert.Equal(t, "never", Never.String())
	assert.Equal(t, "30s", After30s.String())
	assert.Equal(t, "1m", After1m.String())
	assert.Equal(t, "5m", After5m.String())
}

func TestFormatRemaining(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{-time.Second, "0s"},
		{0, "0s"},
		{100 * time.Millisecond, "1s"},
		{42 * time.Second, "42s"},
		{59500 * time.Millisecond, "1m"},
		{65 * time.Second, "1m 5s"},
		{119500 * time.Millisecond, "2m"},
		{5 * time.Minute, "5m"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatRemaining(tt.in), "in=%s", tt.in)
	}
}

func TestInDangerZone(t *testing.T) {
	assert.False(t, InDangerZone(0))
	assert.True(t, InDangerZone(time.Second))
	assert.True(t, InDangerZone(20*time.Second))
	assert.False(t, InDangerZone(21*time.Second))
}
