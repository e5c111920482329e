// Package timeouts holds the per-request deadlines handlers apply to their
// database work. Values are process-wide and set once at startup from
// configuration; Ping covers health probes, Short single-document work,
// Medium list queries and Long writes spanning collections.
package timeouts

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 10 * time.Second
	DefaultLong   = 30 * time.Second
)

// Config is a set of handler deadlines. In Configure, non-positive fields
// leave the current value unchanged.
type Config struct {
	Ping   time.Duration
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
}

func defaults() *Config {
	return &Config{Ping: DefaultPing, Short: DefaultShort, Medium: DefaultMedium, Long: DefaultLong}
}

var current atomic.Pointer[Config]

func init() { current.Store(defaults()) }

func Ping() time.Duration   { return current.Load().Ping }
func Short() time.Duration  { return current.Load().Short }
func Medium() time.Duration { return current.Load().Medium }
func Long() time.Duration   { return current.Load().Long }

// Current returns a copy of the active deadlines.
func Current() Config { return *current.Load() }

// Configure merges cfg over the active deadlines.
func Configure(cfg Config) {
	next := *current.Load()
	pick := func(dst *time.Duration, v time.Duration) {
		if v > 0 {
			*dst = v
		}
	}
	pick(&next.Ping, cfg.Ping)
	pick(&next.Short, cfg.Short)
	pick(&next.Medium, cfg.Medium)
	pick(&next.Long, cfg.Long)
	current.Store(&next)
}

// Reset restores the defaults. Tests that call Configure use it in Cleanup.
func Reset() { current.Store(defaults()) }

// WithTimeout is context.WithTimeout with a cancel func that records a
// warning naming op when the deadline fired before cancel was called.
func WithTimeout(parent context.Context, d time.Duration, log *zap.Logger, op string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, d)
	return ctx, func() {
		if log != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			log.Warn("handler deadline exceeded", zap.String("op", op), zap.Duration("limit", d))
		}
		cancel()
	}
}
