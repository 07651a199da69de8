package session

import (
	"log/slog"
	"time"
)

type Config struct {
	// BufferSize is the capacity in bytes of the backlog and of the
	// buffered poll's working buffer.
	BufferSize int
	// RxWindow is the inactivity window: how long a read loop keeps
	// going after the last byte before concluding the burst is over.
	RxWindow time.Duration
	// ResponseTimeout is the default per-command timeout applied to
	// transactions that do not set their own.
	ResponseTimeout time.Duration
	// YieldInterval is how long the engine sleeps when no byte is
	// available, yielding to other goroutines instead of spinning.
	YieldInterval time.Duration
	// MaxDecoders bounds the number of notification decoders that can be
	// registered.
	MaxDecoders int
	// ExactMatch selects a correct streaming terminator matcher instead
	// of the legacy one. The legacy matcher restarts its index at 1 when
	// a mismatching byte equals the pattern's first byte (and at 0
	// otherwise), which is not a true incremental substring search and
	// can miss terminators containing repeated characters. Deployed
	// firmware was validated against the legacy behaviour, so it stays
	// the default; set ExactMatch when that compatibility does not
	// matter.
	ExactMatch bool
	// Logger receives debug-level engine tracing. Discarded if nil.
	Logger *slog.Logger
}

func (c *Config) setDefaults() {
	if c.BufferSize == 0 {
		c.BufferSize = 2056
	}
	if c.RxWindow == 0 {
		c.RxWindow = 2 * time.Millisecond
	}
	if c.ResponseTimeout == 0 {
		c.ResponseTimeout = time.Second
	}
	if c.YieldInterval == 0 {
		c.YieldInterval = 100 * time.Microsecond
	}
	if c.MaxDecoders == 0 {
		c.MaxDecoders = 16
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
}

func (c *Config) validate() error {
	if c.BufferSize < 0 || c.RxWindow < 0 || c.ResponseTimeout < 0 ||
		c.YieldInterval < 0 || c.MaxDecoders < 0 {
		return ErrInvalidParameter
	}
	return nil
}
