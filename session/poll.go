package session

import (
	"time"

	"i4.energy/across/cellgw/at"
)

// BufferedPoll is the preferred poll entry point, called once per
// application loop iteration. It merges the backlog with fresh transport
// input, tokenizes the result into event lines and dispatches each against
// the notification registry. Reports whether at least one event was
// handled.
//
// A decoder callback may itself issue commands; any URC bytes those
// nested transactions push into the backlog are merged into the current
// pass and dispatched before BufferedPoll returns. A decoder calling back
// into BufferedPoll trips the reentrancy token and gets false with no
// state touched.
func (s *Session) BufferedPoll() bool {
	if !s.bufferedPollGuard.tryAcquire() {
		return false
	}
	defer s.bufferedPollGuard.release()

	work := make([]byte, 0, s.cfg.BufferSize)
	hadBacklog := len(s.backlog) > 0
	if hadBacklog {
		s.log.Debug("buffered poll: backlog found", "length", len(s.backlog))
		work = append(work, s.backlog...)
		s.backlog = s.backlog[:0]
	}

	if !hadBacklog && s.transport.Available() <= 0 {
		return false
	}

	// Read until the inactivity window lapses with no new byte or the
	// working buffer is full. NULs are remapped exactly as the backlog
	// does, so tokenization sees the same bytes either way.
	last := time.Now()
	for time.Since(last) < s.cfg.RxWindow && len(work) < s.cfg.BufferSize {
		if s.transport.Available() > 0 {
			c, err := s.transport.ReadByte()
			if err != nil {
				break
			}
			if c == 0 {
				c = '0'
			}
			work = append(work, c)
			last = time.Now()
		} else {
			s.yield()
		}
	}

	handled := false
	events := at.SplitEvents(work)
	for i := 0; i < len(events); i++ {
		s.log.Debug("buffered poll: event", "line", events[i])
		if s.processEvent(events[i]) {
			handled = true
		}
		// A decoder may have issued a nested command whose wait mirrored
		// new URC bytes into the backlog. Fold them into this pass.
		if len(s.backlog) > 0 && len(work)+len(s.backlog) < s.cfg.BufferSize {
			s.log.Debug("buffered poll: new backlog added", "length", len(s.backlog))
			work = append(work, s.backlog...)
			events = append(events, at.SplitEvents(s.backlog)...)
			s.backlog = s.backlog[:0]
		}
	}
	return handled
}

// Poll is the legacy blocking poll, retained for compatibility. It reads
// with no timeout until a line terminator is seen, then classifies that
// single line. It does not consult the backlog; if the transport never
// sends a LF the caller blocks indefinitely. New code should use
// BufferedPoll.
func (s *Session) Poll() bool {
	if !s.pollGuard.tryAcquire() {
		return false
	}
	defer s.pollGuard.release()

	if s.transport.Available() <= 0 {
		return false
	}

	line := make([]byte, 0, 128)
	var c byte
	for c != '\n' {
		if s.transport.Available() > 0 {
			var err error
			c, err = s.transport.ReadByte()
			if err != nil {
				break
			}
			if len(line) < s.cfg.BufferSize {
				line = append(line, c)
			}
		} else {
			s.yield()
		}
	}
	return s.processEvent(string(line))
}
