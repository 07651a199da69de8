package session

import "strings"

// DecoderFunc parses the payload following a notification prefix and
// reports whether it recognized the line. A decoder that returns false
// lets later registrations try the same line. Decoders run synchronously
// inside a poll: they must not block and must not call Poll (BufferedPoll
// tolerates nested command traffic via the backlog merge, Poll does not).
type DecoderFunc func(payload string) bool

// binding is one (prefix, decoder) registration. The slice order is the
// dispatch priority: first match wins.
type binding struct {
	prefix string
	decode DecoderFunc
}

// Handle registers a decoder for a notification prefix. Registration is
// the single source of truth for both dispatch and backlog pruning: a
// prefix registered here is dispatched by the polls and survives
// pruneBacklog, an unregistered one does neither.
//
// Bindings are evaluated in registration order. Handle cannot be called
// from inside a decoder callback (the registry would be mutated
// mid-iteration); doing so returns ErrBusy.
func (s *Session) Handle(prefix string, decode DecoderFunc) error {
	if prefix == "" || decode == nil {
		return ErrInvalidParameter
	}
	if s.dispatching {
		return ErrBusy
	}
	if len(s.registry) >= s.cfg.MaxDecoders {
		return ErrInvalidParameter
	}
	s.registry = append(s.registry, binding{prefix: prefix, decode: decode})
	return nil
}

// processEvent classifies one event line against the registry. The payload
// handed to the decoder is everything after the prefix, with leading
// spaces and any trailing line terminator stripped.
func (s *Session) processEvent(event string) bool {
	for i := range s.registry {
		b := &s.registry[i]
		pos := strings.Index(event, b.prefix)
		if pos < 0 {
			continue
		}
		payload := strings.TrimLeft(event[pos+len(b.prefix):], " ")
		payload = strings.TrimRight(payload, "\r\n")
		s.dispatching = true
		ok := b.decode(payload)
		s.dispatching = false
		if ok {
			return true
		}
	}
	return false
}
