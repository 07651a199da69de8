package session

import (
	"io"
	"sync"
)

// TestTransport is a test helper that simulates a modem transport with
// the engine's non-blocking read semantics: queued bytes are reported by
// Available and consumed one at a time by ReadByte. An optional OnWrite
// hook lets a test script the device's reply to each command, which is
// how command/response exchanges are exercised without a real module.
// Exported for use by tests in other packages.
type TestTransport struct {
	mu      sync.Mutex
	rx      []byte
	written []byte
	closed  bool

	// OnWrite, if set, is invoked with each chunk written to the
	// transport. It runs synchronously under Write; it may call Feed to
	// queue the scripted reply.
	OnWrite func(p []byte)
}

func NewTestTransport() *TestTransport {
	return &TestTransport{}
}

// Feed queues data to be read by the engine, simulating bytes arriving
// from the modem.
func (t *TestTransport) Feed(data string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.closed {
		t.rx = append(t.rx, data...)
	}
}

func (t *TestTransport) Available() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return -1
	}
	return len(t.rx)
}

func (t *TestTransport) ReadByte() (byte, error) {
	t.mu.Lock()
	if t.closed || len(t.rx) == 0 {
		t.mu.Unlock()
		return 0, io.EOF
	}
	c := t.rx[0]
	t.rx = t.rx[1:]
	t.mu.Unlock()
	return c, nil
}

func (t *TestTransport) Write(p []byte) (int, error) {
	t.mu.Lock()
	t.written = append(t.written, p...)
	hook := t.OnWrite
	t.mu.Unlock()
	if hook != nil {
		hook(p)
	}
	return len(p), nil
}

// Written returns everything the engine has written so far.
func (t *TestTransport) Written() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(t.written)
}

func (t *TestTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}
