package session

import (
	"fmt"
	"time"

	"i4.energy/across/cellgw/at"
)

// Transaction describes one command/response exchange. The zero value of
// every field selects the common case: "AT"-prefixed command, success on
// the generic OK terminator, error on the generic ERROR terminator, the
// configured default timeout, no capture.
type Transaction struct {
	// Command is the command text without the "AT" prefix or line
	// terminator, e.g. `+CSQ` or `+USOCR=6`.
	Command string
	// NoPrefix sends Command verbatim, without the "AT" prefix or
	// trailing CRLF. Used for prompt payloads (SMS text, socket data).
	NoPrefix bool
	// Expect is the success terminator. Empty selects success-or-error
	// semantics: success on ResponseOK, error on ResponseError. When
	// Expect is set explicitly, ExpectErr is used as given - an empty
	// ExpectErr then means no error terminator is matched at all.
	Expect string
	// ExpectErr is the error terminator. See Expect.
	ExpectErr string
	// Timeout bounds the wait for a terminator. Zero selects the
	// configured ResponseTimeout.
	Timeout time.Duration
	// CaptureSize allocates a capture buffer of that many bytes for the
	// reply. The capture silently stops filling once full; the caller
	// can observe the overflow by the returned slice reaching
	// CaptureSize.
	CaptureSize int
}

// Send transmits a command without awaiting any response. Before writing,
// any bytes already waiting on the transport are drained into the backlog
// for the length of one inactivity window, so a URC that arrived just
// before transmission is not lost in the turnaround.
func (s *Session) Send(cmd string, withPrefix bool) error {
	if s.closed {
		return ErrAlreadyClosed
	}
	if s.transport.Available() > 0 {
		last := time.Now()
		for time.Since(last) < s.cfg.RxWindow && len(s.backlog) < s.cfg.BufferSize {
			if s.transport.Available() > 0 {
				c, err := s.transport.ReadByte()
				if err != nil {
					break
				}
				s.backlogAppend(c)
				last = time.Now()
			} else {
				s.yield()
			}
		}
	}

	wire := cmd
	if withPrefix {
		wire = at.Prefix + cmd + at.CRLF
	}
	s.log.Debug("send", "command", cmd, "prefix", withPrefix)
	if _, err := s.transport.Write([]byte(wire)); err != nil {
		return fmt.Errorf("write command %q: %w", cmd, err)
	}
	return nil
}

// WaitResponse drives the terminator matchers against live input until the
// success or error terminator completes or the timeout elapses. Every
// consumed byte is mirrored into the backlog (so interleaved URCs survive)
// and into capture while it has room. The backlog is pruned on every exit
// path, success included, so the just-consumed reply never lingers there
// as unrecognized remainder.
//
// The returned count is the number of bytes stored in capture. The error
// is nil on a success match, ErrErrorResponse on an error match,
// ErrTransportUnusable when the transport reports a negative
// available-count mid-wait, ErrNoResponse when the timeout passed with
// zero bytes observed, and ErrUnexpectedResponse when bytes were observed
// but neither terminator matched.
func (s *Session) WaitResponse(expect, expectErr string, timeout time.Duration, capture []byte) (int, error) {
	if s.closed {
		return 0, ErrAlreadyClosed
	}
	if timeout <= 0 {
		timeout = s.cfg.ResponseTimeout
	}
	respMatch := newMatcher(expect, s.cfg.ExactMatch)
	errMatch := newMatcher(expectErr, s.cfg.ExactMatch)

	var read, captured int
	var found, isErr, unusable bool
	start := time.Now()
	for !found && time.Since(start) < timeout {
		avail := s.transport.Available()
		if avail < 0 {
			unusable = true
			break
		}
		if avail == 0 {
			s.yield()
			continue
		}
		c, err := s.transport.ReadByte()
		if err != nil {
			s.yield()
			continue
		}
		read++
		if captured < len(capture) {
			capture[captured] = c
			captured++
		}
		if respMatch.match(c) {
			found = true
		}
		if errMatch.match(c) {
			found = true
			isErr = true
		}
		s.backlogAppend(c)
	}

	s.pruneBacklog()

	switch {
	case found && isErr:
		return captured, ErrErrorResponse
	case found:
		return captured, nil
	case unusable:
		return captured, ErrTransportUnusable
	case read == 0:
		return captured, ErrNoResponse
	default:
		return captured, ErrUnexpectedResponse
	}
}

// Do issues a command and awaits its terminator: the combined primitive
// every command module uses. It never blocks longer than the transaction
// timeout plus the pre-send drain window. The returned slice holds
// whatever was captured (nil unless CaptureSize was set); on
// ErrUnexpectedResponse it still holds the partial reply.
func (s *Session) Do(tx Transaction) ([]byte, error) {
	expect, expectErr := tx.Expect, tx.ExpectErr
	if expect == "" {
		expect = at.ResponseOK
		expectErr = at.ResponseError
	}
	if err := s.Send(tx.Command, !tx.NoPrefix); err != nil {
		return nil, err
	}
	var capture []byte
	if tx.CaptureSize > 0 {
		capture = make([]byte, tx.CaptureSize)
	}
	n, err := s.WaitResponse(expect, expectErr, tx.Timeout, capture)
	if capture == nil {
		return nil, err
	}
	return capture[:n], err
}

// Exec runs a command with success-or-error semantics and no capture.
func (s *Session) Exec(cmd string) error {
	_, err := s.Do(Transaction{Command: cmd})
	return err
}
