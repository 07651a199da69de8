package session

import (
	"strings"

	"i4.energy/across/cellgw/at"
)

// backlogAppend stores one byte observed outside URC dispatch. Appends past
// capacity are dropped: lossy degradation, not an error. NUL bytes are
// remapped to ASCII zero so line tokenization never mistakes stream content
// for end-of-string.
func (s *Session) backlogAppend(c byte) {
	if len(s.backlog) >= s.cfg.BufferSize {
		return
	}
	if c == 0 {
		c = '0'
	}
	s.backlog = append(s.backlog, c)
}

// pruneBacklog tokenizes the backlog into lines and rewrites it to contain
// only lines carrying a registered notification prefix, each re-terminated
// with CRLF, in original order. Called unconditionally after every
// transaction so consumed replies never accumulate as unrecognized
// remainder. Pruning an already-pruned backlog is a no-op.
func (s *Session) pruneBacklog() {
	if len(s.backlog) == 0 {
		return
	}
	s.pruneBuf = s.pruneBuf[:0]
	for _, event := range at.SplitEvents(s.backlog) {
		if !s.recognized(event) {
			continue
		}
		s.pruneBuf = append(s.pruneBuf, event...)
		s.pruneBuf = append(s.pruneBuf, at.CRLF...)
	}
	kept := s.pruneBuf
	if len(kept) > s.cfg.BufferSize {
		// Only possible when a kept unterminated tail gains a CRLF.
		kept = kept[:s.cfg.BufferSize]
	}
	s.backlog = append(s.backlog[:0], kept...)
}

// recognized reports whether an event line carries any registered prefix.
// Substring match, not prefix-anchored: deployed modules sometimes emit
// URCs glued to echo fragments, and the original engine matched with
// strstr.
func (s *Session) recognized(event string) bool {
	for i := range s.registry {
		if strings.Contains(event, s.registry[i].prefix) {
			return true
		}
	}
	return false
}
