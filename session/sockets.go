package session

// NumSockets is the number of concurrent sockets the module supports.
const NumSockets = 6

// SocketProtocol is the transport protocol of an open socket. The values
// match the +USOCR protocol parameter.
type SocketProtocol int

const (
	ProtocolNone SocketProtocol = 0
	ProtocolTCP  SocketProtocol = 6
	ProtocolUDP  SocketProtocol = 17
)

// SetSocketProtocol records the protocol of an open socket. The
// data-received decoder consults this table to choose stream or datagram
// payload-unwrap semantics, so it must be updated whenever a socket-open
// transaction succeeds. Entries are overwritten on reuse of a socket id.
func (s *Session) SetSocketProtocol(socket int, proto SocketProtocol) error {
	if socket < 0 || socket >= NumSockets {
		return ErrInvalidParameter
	}
	s.sockets[socket] = proto
	return nil
}

// SocketProtocol returns the last recorded protocol for a socket id.
func (s *Session) SocketProtocol(socket int) (SocketProtocol, error) {
	if socket < 0 || socket >= NumSockets {
		return ProtocolNone, ErrInvalidParameter
	}
	return s.sockets[socket], nil
}
