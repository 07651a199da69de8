// Package modem layers u-blox command modules over the session engine:
// initialization, identification, network status, SMS and sockets. Every
// operation here is built from the engine's two primitives - issue a
// command, await a terminator - plus decoder registrations for the URCs
// each feature produces.
package modem

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"i4.energy/across/cellgw/at"
	"i4.energy/across/cellgw/session"
)

// Modem represents a u-blox cellular module driven over AT commands.
// All methods must be called from the goroutine that runs Poll; the
// underlying engine is single-threaded by design.
type Modem struct {
	sess   *session.Session
	log    *slog.Logger
	config Config
	closed bool

	onSocketRead   func(socket int, data []byte)
	onUDPPacket    func(socket int, pkt UDPPacket)
	onSocketClose  func(socket int)
	onSocketListen func(li ListenIndication)
	onRegistration func(status int)
	onSIMState     func(state int)
}

// PollConfig defines configuration for polling operations like waiting
// for SIM readiness.
type PollConfig struct {
	// Interval is the time between polling attempts
	Interval time.Duration
	// Timeout is the maximum time to wait for the condition
	Timeout time.Duration
	// MaxRetries is the maximum number of polling attempts
	MaxRetries int
}

// New creates a new Modem. It dials the transport, builds the session
// engine, registers the URC decoders and runs the initialization sequence
// (probe, echo off, verbose errors, SIM readiness, SMS text mode).
func New(ctx context.Context, config Config) (*Modem, error) {
	config.setDefaults()
	if err := config.validate(); err != nil {
		return nil, err
	}
	transport, err := config.Dialer.Dial(ctx)
	if err != nil {
		return nil, err
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	sess, err := session.New(transport, session.Config{
		BufferSize:      config.BufferSize,
		ResponseTimeout: config.ATTimeout,
		ExactMatch:      config.ExactMatch,
		Logger:          logger,
	})
	if err != nil {
		transport.Close()
		return nil, err
	}

	m := &Modem{
		sess:   sess,
		log:    logger,
		config: config,
	}

	if err := m.registerDecoders(); err != nil {
		sess.Close()
		return nil, err
	}

	initCtx := ctx
	if config.InitTimeout > 0 {
		var cancel context.CancelFunc
		initCtx, cancel = context.WithTimeout(ctx, config.InitTimeout)
		defer cancel()
	}
	if err := m.init(initCtx); err != nil {
		sess.Close()
		return nil, fmt.Errorf("initialize modem: %w", err)
	}

	return m, nil
}

// Poll dispatches any pending URCs to their decoders and reports whether
// at least one line was handled. Call it once per application loop
// iteration.
func (m *Modem) Poll() bool {
	return m.sess.BufferedPoll()
}

// Session exposes the underlying engine for custom commands.
func (m *Modem) Session() *session.Session {
	return m.sess
}

// Close shuts down the modem and releases the transport. After Close the
// modem cannot be reused.
func (m *Modem) Close() error {
	if m.closed {
		return ErrAlreadyClosed
	}
	m.closed = true
	return m.sess.Close()
}

// init performs the initial setup sequence for the module hardware.
func (m *Modem) init(ctx context.Context) error {
	// 1. Wake-up / sanity check
	if err := m.sess.Exec(""); err != nil {
		return fmt.Errorf("modem not responding: %w", err)
	}

	if err := m.sess.Exec(at.CmdEcho + "0"); err != nil {
		return fmt.Errorf("could not disable echo: %w", err)
	}

	if err := m.sess.Exec(at.CmdVerboseErrors + "=2"); err != nil {
		return fmt.Errorf("could not enable verbose errors: %w", err)
	}

	// 2. Check SIM status
	simStatus, err := m.SIMStatus()
	if err != nil {
		return fmt.Errorf("query SIM status: %w", err)
	}

	switch {
	case strings.Contains(simStatus, at.SimReady):
		// OK

	case strings.Contains(simStatus, at.SimPin):
		if m.config.SimPIN == "" {
			return ErrSIMPinRequired
		}
		if err := m.sess.Exec(fmt.Sprintf(`%s="%s"`, at.CmdSIMPin, m.config.SimPIN)); err != nil {
			return fmt.Errorf("enter SIM PIN: %w", err)
		}
		if err := m.waitForSIMReady(ctx, PollConfig{}); err != nil {
			return err
		}

	default:
		return fmt.Errorf("unsupported SIM state: %q", simStatus)
	}

	// 3. Select SMS text mode
	if err := m.sess.Exec(at.CmdMessageFormat + "=1"); err != nil {
		return fmt.Errorf("set SMS text mode: %w", err)
	}

	return nil
}

// SIMStatus queries +CPIN? and returns the raw status reply.
func (m *Modem) SIMStatus() (string, error) {
	captured, err := m.sess.Do(session.Transaction{
		Command:     at.CmdSIMPin + "?",
		CaptureSize: 64,
	})
	if err != nil {
		return "", err
	}
	return string(captured), nil
}

// waitForSIMReady polls the SIM card status until it reports ready state.
// This is necessary after entering a SIM PIN, as the card needs time to
// authenticate and become operational.
func (m *Modem) waitForSIMReady(ctx context.Context, config PollConfig) error {
	var (
		pollInterval = config.Interval
		timeout      = config.Timeout
		maxRetries   = config.MaxRetries
	)

	if pollInterval <= 0 {
		pollInterval = 500 * time.Millisecond
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if maxRetries <= 0 {
		maxRetries = int(timeout / pollInterval)
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	retries := 0

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("SIM not ready: %w", ctx.Err())
		case <-ticker.C:
			retries++
			if retries > maxRetries {
				return fmt.Errorf("SIM not ready after %d retries", maxRetries)
			}
			resp, err := m.SIMStatus()
			if err != nil {
				if errors.Is(err, session.ErrAlreadyClosed) {
					return fmt.Errorf("SIM status check failed: %w", err)
				}
				continue
			}
			if strings.Contains(resp, at.SimReady) {
				return nil
			}
		}
	}
}

// ModelID returns the module model identification (+CGMM).
func (m *Modem) ModelID() (string, error) {
	return m.textQuery(at.CmdModelID)
}

// FirmwareVersion returns the module firmware version (+CGMR).
func (m *Modem) FirmwareVersion() (string, error) {
	return m.textQuery(at.CmdFirmwareVer)
}

// IMEI returns the module IMEI (+GSN).
func (m *Modem) IMEI() (string, error) {
	return m.textQuery(at.CmdIMEI)
}

// textQuery runs a command whose reply is a single free-text line
// followed by OK, and returns that line.
func (m *Modem) textQuery(cmd string) (string, error) {
	captured, err := m.sess.Do(session.Transaction{
		Command:     cmd,
		CaptureSize: 128,
	})
	if err != nil {
		return "", err
	}
	for _, line := range at.SplitEvents(captured) {
		if line != "OK" {
			return line, nil
		}
	}
	return "", session.ErrUnexpectedResponse
}
