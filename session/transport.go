package session

import (
	"context"
	"io"
)

//go:generate go tool mockgen -source=transport.go -destination=mock_transport.go -package=session

// Transport represents an established, bidirectional byte stream to a
// cellular module.
//
// The engine is single-threaded and polls, so reads are split into
// Available (how many bytes can be read right now) and ReadByte (consume
// exactly one). Typical implementations include serial ports, TCP
// connections to emulators, or in-memory fakes used for testing.
type Transport interface {
	io.WriteCloser

	// Available reports the number of bytes ready to read without
	// blocking. A negative value means the transport is unusable (for
	// example, the underlying port is gone); the engine treats that the
	// same as no data, and pending transactions time out.
	Available() int

	// ReadByte consumes a single byte. It is only called after Available
	// reported at least one byte; an error is treated as no data.
	ReadByte() (byte, error)
}

// Dialer opens a Transport to a cellular module.
//
// Dialer abstracts how the connection is created (serial port, TCP-based
// emulator, or test double) and is intended to be used during construction
// only. Once a Transport is obtained, the Dialer is no longer needed.
type Dialer interface {
	// Dial creates and returns a connected Transport. It may perform
	// blocking operations and should respect cancellation and deadlines
	// provided by the context.
	Dial(ctx context.Context) (Transport, error)
}
