package modem

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"go.bug.st/serial"

	"i4.energy/across/cellgw/session"
)

// SerialDialer opens a cellular module over a serial port using
// go.bug.st/serial.
type SerialDialer struct {
	PortName string
	BaudRate int
}

// Dial opens the port and wraps it in a transport that satisfies the
// engine's non-blocking read contract. A pump goroutine moves bytes from
// the (blocking) port into a buffer the engine can query with Available.
func (d SerialDialer) Dial(ctx context.Context) (session.Transport, error) {
	if ctx == nil {
		return nil, errors.New("cellgw: context is nil")
	}
	if d.PortName == "" {
		return nil, errors.New("cellgw: serial port name is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	baud := d.BaudRate
	if baud == 0 {
		baud = 115200
	}
	port, err := serial.Open(d.PortName, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, err
	}

	t := &serialTransport{port: port}
	go t.pump()
	return t, nil
}

// serialTransport adapts a blocking serial.Port to the engine's
// available-count/read-byte contract.
type serialTransport struct {
	port   serial.Port
	failed atomic.Bool

	mu sync.Mutex
	rx []byte
}

// pump keeps one blocking read outstanding against the port and buffers
// whatever arrives. It exits when the port read fails, which includes
// Close being called.
func (t *serialTransport) pump() {
	buf := make([]byte, 256)
	for {
		n, err := t.port.Read(buf)
		if n > 0 {
			t.mu.Lock()
			t.rx = append(t.rx, buf[:n]...)
			t.mu.Unlock()
		}
		if err != nil {
			t.failed.Store(true)
			return
		}
	}
}

func (t *serialTransport) Available() int {
	t.mu.Lock()
	n := len(t.rx)
	t.mu.Unlock()
	if n == 0 && t.failed.Load() {
		return -1
	}
	return n
}

func (t *serialTransport) ReadByte() (byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.rx) == 0 {
		return 0, errors.New("cellgw: no byte available")
	}
	c := t.rx[0]
	t.rx = t.rx[1:]
	return c, nil
}

func (t *serialTransport) Write(p []byte) (int, error) {
	return t.port.Write(p)
}

func (t *serialTransport) Close() error {
	return t.port.Close()
}
