package client

import (
	"testing"
	"time"

	"github.com/atinyakov/GophShare/internal/lifecycle"
	"github.com/stretchr/testify/assert"
)

func TestFormatter_NoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.Equal(t, "[burn after view]", Badge.Sprint("burn after view"))
	assert.Equal(t, "!! 5s", Danger.Sprintf("%ds", 5))
	assert.Equal(t, "ok", Success.Sprint("ok"))
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "[--------------------]", progressBar(0))
	assert.Equal(t, "[##########----------]", progressBar(50))
	assert.Equal(t, "[####################]", progressBar(100))
	assert.Equal(t, "[####################]", progressBar(150))
	assert.Equal(t, "[--------------------]", progressBar(-3))
}

func TestCountdown(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "never expires", countdown(lifecycle.Policy{CreatedAt: created}, created))

	p := lifecycle.Policy{CreatedAt: created, AutoDestroy: lifecycle.After1m}
	assert.Equal(t, "expires in 1m", countdown(p, created))
	assert.Equal(t, "expires in 25s", countdown(p, created.Add(35*time.Second)))
	assert.Equal(t, "!! expires in 20s", countdown(p, created.Add(40*time.Second)))
}

func TestParseAutoDestroy(t *testing.T) {
	tests := []struct {
		in   string
		want lifecycle.AutoDestroy
		ok   bool
	}{
		{"", lifecycle.Never, true},
		{"never", lifecycle.Never, true},
		{"0", lifecycle.Never, true},
		{"30", lifecycle.After30s, true},
		{"30s", lifecycle.After30s, true},
		{"1M", lifecycle.After1m, true},
		{"300", lifecycle.After5m, true},
		{"5m", lifecycle.After5m, true},
		{"45", 0, false},
		{"soon", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseAutoDestroy(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
