package modem

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"i4.energy/across/cellgw/at"
	"i4.energy/across/cellgw/session"
)

const (
	socketConnectTimeout = 130 * time.Second
	socketWriteTimeout   = 10 * time.Second
	socketCloseTimeout   = 120 * time.Second
)

// UDPPacket is one datagram returned by SocketReadFrom.
type UDPPacket struct {
	RemoteIP   string
	RemotePort int
	Data       []byte
}

// ListenIndication describes an inbound connection reported by +UUSOLI.
type ListenIndication struct {
	Socket          int
	RemoteIP        string
	RemotePort      int
	ListeningSocket int
	LocalIP         string
	ListeningPort   int
}

// registerDecoders wires the URC decoders into the engine registry. The
// registration order is the dispatch priority, and the same registrations
// feed the backlog pruner's keep-set.
func (m *Modem) registerDecoders() error {
	for _, b := range []struct {
		prefix string
		decode session.DecoderFunc
	}{
		{at.URCSocketRead, m.handleSocketRead},
		{at.URCSocketReadUDP, m.handleSocketReadUDP},
		{at.URCSocketListen, m.handleSocketListen},
		{at.URCSocketClose, m.handleSocketClose},
		{at.URCSIMState, m.handleSIMState},
		{at.URCRegistration, m.handleRegistration},
		{at.URCEPSRegistration, m.handleRegistration},
	} {
		if err := m.sess.Handle(b.prefix, b.decode); err != nil {
			return fmt.Errorf("register %s decoder: %w", b.prefix, err)
		}
	}
	return nil
}

// OnSocketRead registers a callback receiving data read in response to
// data-arrival URCs on TCP sockets (and UDP sockets when no packet
// callback is registered). The callback must not block.
func (m *Modem) OnSocketRead(fn func(socket int, data []byte)) {
	m.onSocketRead = fn
}

// OnUDPPacket registers a callback receiving datagrams read in response
// to data-arrival URCs on UDP sockets.
func (m *Modem) OnUDPPacket(fn func(socket int, pkt UDPPacket)) {
	m.onUDPPacket = fn
}

// OnSocketClose registers a callback for remote socket closure (+UUSOCL).
func (m *Modem) OnSocketClose(fn func(socket int)) {
	m.onSocketClose = fn
}

// OnSocketListen registers a callback for inbound connections on a
// listening socket (+UUSOLI).
func (m *Modem) OnSocketListen(fn func(li ListenIndication)) {
	m.onSocketListen = fn
}

// SocketOpen creates a socket (+USOCR) and records its protocol in the
// engine's socket protocol table, so later data-arrival URCs unwrap the
// payload with the right semantics.
func (m *Modem) SocketOpen(proto session.SocketProtocol) (int, error) {
	if proto != session.ProtocolTCP && proto != session.ProtocolUDP {
		return -1, session.ErrInvalidParameter
	}
	captured, err := m.sess.Do(session.Transaction{
		Command:     fmt.Sprintf("%s=%d", at.CmdSocketCreate, proto),
		CaptureSize: 128,
	})
	if err != nil {
		return -1, err
	}
	var socket int
	if err := scanReply(captured, at.CmdSocketCreate+":", "%d", &socket); err != nil {
		return -1, err
	}
	if err := m.sess.SetSocketProtocol(socket, proto); err != nil {
		return -1, err
	}
	return socket, nil
}

// SocketConnect connects a TCP socket to a remote host (+USOCO).
func (m *Modem) SocketConnect(socket int, host string, port int) error {
	_, err := m.sess.Do(session.Transaction{
		Command: fmt.Sprintf(`%s=%d,"%s",%d`, at.CmdSocketConnect, socket, host, port),
		Timeout: socketConnectTimeout,
	})
	return err
}

// SocketWrite sends data on a connected socket using the binary +USOWR
// prompt flow, so the payload may contain any byte values.
func (m *Modem) SocketWrite(socket int, data []byte) error {
	_, err := m.sess.Do(session.Transaction{
		Command: fmt.Sprintf("%s=%d,%d", at.CmdSocketWrite, socket, len(data)),
		Expect:  "@",
		Timeout: socketWriteTimeout,
	})
	if err != nil {
		return fmt.Errorf("socket write prompt: %w", err)
	}
	// The module requires a short pause between the prompt and the data.
	time.Sleep(50 * time.Millisecond)
	_, err = m.sess.Do(session.Transaction{
		Command:  string(data),
		NoPrefix: true,
		Timeout:  socketWriteTimeout,
	})
	if err != nil {
		return fmt.Errorf("socket write data: %w", err)
	}
	return nil
}

// SocketRead reads up to length bytes of buffered data from a TCP socket
// (+USORD), unwrapping the quoted payload.
func (m *Modem) SocketRead(socket, length int) ([]byte, error) {
	if socket < 0 || socket >= session.NumSockets || length <= 0 {
		return nil, session.ErrInvalidParameter
	}
	captured, err := m.sess.Do(session.Transaction{
		Command:     fmt.Sprintf("%s=%d,%d", at.CmdSocketRead, socket, length),
		CaptureSize: length + 128,
	})
	if err != nil {
		return nil, err
	}

	// +USORD: <socket>,<length>,"<data>"
	resp := string(captured)
	pos := strings.Index(resp, at.CmdSocketRead+":")
	if pos < 0 {
		return nil, session.ErrUnexpectedResponse
	}
	rest := resp[pos+len(at.CmdSocketRead)+1:]
	var sock, n int
	if cnt, _ := fmt.Sscanf(rest, "%d,%d", &sock, &n); cnt != 2 {
		return nil, session.ErrUnexpectedResponse
	}
	return quotedBytes(captured, rest, n)
}

// SocketReadFrom reads one datagram from a UDP socket (+USORF).
func (m *Modem) SocketReadFrom(socket, length int) (UDPPacket, error) {
	if socket < 0 || socket >= session.NumSockets || length <= 0 {
		return UDPPacket{}, session.ErrInvalidParameter
	}
	captured, err := m.sess.Do(session.Transaction{
		Command:     fmt.Sprintf("%s=%d,%d", at.CmdSocketReadFrom, socket, length),
		CaptureSize: length + 128,
	})
	if err != nil {
		return UDPPacket{}, err
	}

	// +USORF: <socket>,"<remote ip>",<remote port>,<length>,"<data>"
	resp := string(captured)
	pos := strings.Index(resp, at.CmdSocketReadFrom+":")
	if pos < 0 {
		return UDPPacket{}, session.ErrUnexpectedResponse
	}
	rest := resp[pos+len(at.CmdSocketReadFrom)+1:]
	parts := strings.SplitN(rest, ",", 5)
	if len(parts) < 5 {
		return UDPPacket{}, session.ErrUnexpectedResponse
	}
	port, err := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil {
		return UDPPacket{}, session.ErrUnexpectedResponse
	}
	n, err := strconv.Atoi(strings.TrimSpace(parts[3]))
	if err != nil {
		return UDPPacket{}, session.ErrUnexpectedResponse
	}
	// parts[4] is a suffix of rest; recover its offset to slice the raw
	// bytes binary-safely.
	tail := rest[len(rest)-len(parts[4]):]
	data, err := quotedBytes(captured, tail, n)
	if err != nil {
		return UDPPacket{}, err
	}
	return UDPPacket{
		RemoteIP:   strings.Trim(strings.TrimSpace(parts[1]), `"`),
		RemotePort: port,
		Data:       data,
	}, nil
}

// SocketClose closes a socket (+USOCL).
func (m *Modem) SocketClose(socket int) error {
	_, err := m.sess.Do(session.Transaction{
		Command: fmt.Sprintf("%s=%d", at.CmdSocketClose, socket),
		Timeout: socketCloseTimeout,
	})
	return err
}

// quotedBytes returns the n raw bytes following the first double quote of
// sub, where sub is a suffix of captured. The byte count comes from the
// reply header, not a closing quote, because the payload may itself
// contain quotes or NULs.
func quotedBytes(captured []byte, sub string, n int) ([]byte, error) {
	q := strings.IndexByte(sub, '"')
	if q < 0 || n < 0 {
		return nil, session.ErrUnexpectedResponse
	}
	start := len(captured) - len(sub) + q + 1
	if start+n > len(captured) {
		return nil, session.ErrUnexpectedResponse
	}
	return captured[start : start+n], nil
}

// handleSocketRead decodes +UUSORD. The same URC is used for TCP and UDP
// sockets, so the engine's protocol table decides the read semantics: for
// a UDP socket the indication means a datagram is buffered and must be
// read with receive-from semantics.
func (m *Modem) handleSocketRead(payload string) bool {
	var socket, length int
	if n, _ := fmt.Sscanf(payload, "%d,%d", &socket, &length); n != 2 {
		return false
	}
	proto, err := m.sess.SocketProtocol(socket)
	if err != nil {
		return false
	}
	if proto == session.ProtocolUDP {
		m.deliverUDP(socket, length)
		return true
	}
	if m.onSocketRead == nil {
		// Recognized but nobody wants the data; leave it buffered on
		// the module.
		return true
	}
	data, err := m.SocketRead(socket, length)
	if err != nil {
		m.log.Warn("socket read indication", "socket", socket, "error", err)
		return true
	}
	m.onSocketRead(socket, data)
	return true
}

// handleSocketReadUDP decodes +UUSORF (always datagram semantics).
func (m *Modem) handleSocketReadUDP(payload string) bool {
	var socket, length int
	if n, _ := fmt.Sscanf(payload, "%d,%d", &socket, &length); n != 2 {
		return false
	}
	m.deliverUDP(socket, length)
	return true
}

func (m *Modem) deliverUDP(socket, length int) {
	if m.onUDPPacket == nil && m.onSocketRead == nil {
		return
	}
	pkt, err := m.SocketReadFrom(socket, length)
	if err != nil {
		m.log.Warn("udp read indication", "socket", socket, "error", err)
		return
	}
	if m.onUDPPacket != nil {
		m.onUDPPacket(socket, pkt)
		return
	}
	m.onSocketRead(socket, pkt.Data)
}

// handleSocketClose decodes +UUSOCL.
func (m *Modem) handleSocketClose(payload string) bool {
	var socket int
	if n, _ := fmt.Sscanf(payload, "%d", &socket); n != 1 {
		return false
	}
	if m.onSocketClose != nil {
		m.onSocketClose(socket)
	}
	return true
}

// handleSocketListen decodes +UUSOLI:
// <socket>,"<remote ip>",<remote port>,<listen socket>,"<local ip>",<listen port>
func (m *Modem) handleSocketListen(payload string) bool {
	parts := strings.Split(payload, ",")
	if len(parts) < 6 {
		return false
	}
	atoi := func(s string) (int, bool) {
		v, err := strconv.Atoi(strings.TrimSpace(s))
		return v, err == nil
	}
	li := ListenIndication{
		RemoteIP: strings.Trim(strings.TrimSpace(parts[1]), `"`),
		LocalIP:  strings.Trim(strings.TrimSpace(parts[4]), `"`),
	}
	var ok bool
	if li.Socket, ok = atoi(parts[0]); !ok {
		return false
	}
	if li.RemotePort, ok = atoi(parts[2]); !ok {
		return false
	}
	if li.ListeningSocket, ok = atoi(parts[3]); !ok {
		return false
	}
	if li.ListeningPort, ok = atoi(parts[5]); !ok {
		return false
	}
	if m.onSocketListen != nil {
		m.onSocketListen(li)
	}
	return true
}
