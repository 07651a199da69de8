// Package session implements the AT command session engine: a command
// dispatcher and event demultiplexer over a single half-duplex byte stream
// shared by synchronous command replies and asynchronous unsolicited
// result codes (URCs).
//
// The engine is single-threaded and cooperative. Command modules call Do
// (or Send/WaitResponse) synchronously; the application loop calls
// BufferedPoll each iteration to dispatch URCs. Bytes that arrive while a
// command reply is pending - including complete URC lines interleaved with
// the reply - are mirrored into a bounded backlog, pruned down to
// recognized notification lines after every transaction, and delivered in
// stream order by the next poll. Nothing on the wire is reordered; at
// worst, sustained backlog overflow silently drops the excess, which
// bounds memory deterministically at the cost of possibly missing a URC.
package session

import (
	"log/slog"
	"time"
)

// Session owns the backlog, the notification registry and the socket
// protocol table. It is created once at engine initialization and lives
// until Close. All methods must be called from the same goroutine; the
// engine relies on reentrancy tokens, not locks.
type Session struct {
	transport Transport
	cfg       Config
	log       *slog.Logger

	// backlog holds bytes observed outside command capture, pending
	// classification by BufferedPoll. cap(backlog) == cfg.BufferSize and
	// never grows.
	backlog []byte
	// pruneBuf is scratch space for rewriting the backlog in place.
	pruneBuf []byte

	registry []binding
	sockets  [NumSockets]SocketProtocol

	bufferedPollGuard guard
	pollGuard         guard
	dispatching       bool

	closed bool
}

// New creates a Session over an established transport.
func New(transport Transport, cfg Config) (*Session, error) {
	if transport == nil {
		return nil, ErrInvalidParameter
	}
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Session{
		transport: transport,
		cfg:       cfg,
		log:       cfg.Logger,
		backlog:   make([]byte, 0, cfg.BufferSize),
		pruneBuf:  make([]byte, 0, cfg.BufferSize),
	}, nil
}

// Close releases the session and closes the transport.
func (s *Session) Close() error {
	if s.closed {
		return ErrAlreadyClosed
	}
	s.closed = true
	s.backlog = nil
	s.pruneBuf = nil
	return s.transport.Close()
}

// yield gives up the CPU briefly when no byte is available, instead of
// spinning on Available.
func (s *Session) yield() {
	time.Sleep(s.cfg.YieldInterval)
}
