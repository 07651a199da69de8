package main

import (
	"context"
	"log/slog"
	"time"

	"i4.energy/across/cellgw/modem"
)

// pollInterval is how often the gateway polls the modem for unsolicited
// result codes when no requests are pending.
const pollInterval = 10 * time.Millisecond

// Gateway owns the modem and the goroutine that drives it. The AT engine
// is single-threaded, so every modem operation funnels through the run
// loop; HTTP handlers submit work with Do and wait for the result.
type Gateway struct {
	Logger *slog.Logger
	Modem  *modem.Modem

	requests chan request
}

type request struct {
	fn   func(m *modem.Modem) error
	done chan error
}

// NewGateway creates a Gateway around an initialized modem.
func NewGateway(logger *slog.Logger, m *modem.Modem) *Gateway {
	return &Gateway{
		Logger:   logger,
		Modem:    m,
		requests: make(chan request, 16),
	}
}

// Run drives the modem until ctx is canceled: it executes submitted
// requests and polls for unsolicited result codes in between.
func (g *Gateway) Run(ctx context.Context) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case req := <-g.requests:
			req.done <- req.fn(g.Modem)
		case <-ticker.C:
			for g.Modem.Poll() {
			}
		}
	}
}

// Do runs fn on the modem goroutine and returns its error. It fails with
// the context error if the gateway is shutting down or the caller gives
// up first.
func (g *Gateway) Do(ctx context.Context, fn func(m *modem.Modem) error) error {
	done := make(chan error, 1)
	select {
	case g.requests <- request{fn: fn, done: done}:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
