package session

import "errors"

var (
	// ErrNoResponse is returned when a transaction times out without a
	// single byte having been observed on the transport.
	ErrNoResponse = errors.New("no response from module")

	// ErrUnexpectedResponse is returned when bytes were observed but
	// neither the success nor the error terminator matched before the
	// timeout. Whatever was read up to that point remains in the caller's
	// capture buffer; the caller decides whether partial data is usable.
	ErrUnexpectedResponse = errors.New("unexpected response from module")

	// ErrErrorResponse is returned when the module answered with the
	// expected error terminator (typically "\r\nERROR\r\n").
	ErrErrorResponse = errors.New("module reported an error")

	// ErrInvalidParameter indicates caller misuse: an out-of-range socket
	// id, an empty notification prefix, a non-positive buffer capacity.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrTransportUnusable is returned when the transport reports a
	// negative available-count, meaning the underlying device is gone and
	// no reply can ever arrive.
	ErrTransportUnusable = errors.New("transport unusable")

	// ErrBusy is returned when an operation cannot run because a poll is
	// currently dispatching (for example, registering a decoder from
	// inside a decoder callback would mutate the registry mid-iteration).
	ErrBusy = errors.New("session busy")

	// ErrAlreadyClosed is returned when Close is called on a Session that
	// has already been closed.
	ErrAlreadyClosed = errors.New("session already closed")
)
