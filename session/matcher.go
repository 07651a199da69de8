package session

import "bytes"

// matcher scans a byte stream incrementally for one literal pattern.
// Two matchers (success, error) are driven in lockstep against the same
// bytes; the first to complete decides the transaction outcome.
type matcher struct {
	pattern []byte
	exact   bool
	idx     int    // legacy mode: next pattern position to match
	window  []byte // exact mode: last len(pattern) bytes seen
}

func newMatcher(pattern string, exact bool) *matcher {
	m := &matcher{pattern: []byte(pattern), exact: exact}
	if exact {
		m.window = make([]byte, 0, len(pattern))
	}
	return m
}

// match consumes one byte and reports whether the pattern has just
// completed. An empty pattern never matches.
//
// Legacy mode reproduces the deployed restart rule: on a mismatch the
// index restarts at 1 if the byte equals the pattern's first byte, else at
// 0. That rule can miss matches in patterns with repeated characters;
// Config.ExactMatch documents the choice.
func (m *matcher) match(c byte) bool {
	if len(m.pattern) == 0 {
		return false
	}
	if m.exact {
		if len(m.window) == len(m.pattern) {
			copy(m.window, m.window[1:])
			m.window[len(m.window)-1] = c
		} else {
			m.window = append(m.window, c)
		}
		return len(m.window) == len(m.pattern) && bytes.Equal(m.window, m.pattern)
	}
	if c == m.pattern[m.idx] {
		m.idx++
		if m.idx == len(m.pattern) {
			m.idx = 0
			return true
		}
		return false
	}
	if c == m.pattern[0] {
		m.idx = 1
	} else {
		m.idx = 0
	}
	return false
}
