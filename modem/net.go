package modem

import (
	"fmt"
	"strings"

	"i4.energy/across/cellgw/at"
	"i4.energy/across/cellgw/session"
)

// Registration status values reported by +CREG / +CEREG.
const (
	RegistrationNotRegistered = 0
	RegistrationHome          = 1
	RegistrationSearching     = 2
	RegistrationDenied        = 3
	RegistrationUnknown       = 4
	RegistrationRoaming       = 5
)

// SignalQuality returns the +CSQ received signal strength indication
// (0-31, 99 = unknown) and channel bit error rate.
func (m *Modem) SignalQuality() (rssi, qual int, err error) {
	captured, err := m.sess.Do(session.Transaction{
		Command:     at.CmdSignalQuality,
		CaptureSize: 64,
	})
	if err != nil {
		return 0, 0, err
	}
	if err := scanReply(captured, at.CmdSignalQuality+":", "%d,%d", &rssi, &qual); err != nil {
		return 0, 0, err
	}
	return rssi, qual, nil
}

// Operator returns the currently selected network operator name.
func (m *Modem) Operator() (string, error) {
	captured, err := m.sess.Do(session.Transaction{
		Command:     at.CmdOperatorSelection + "?",
		CaptureSize: 128,
	})
	if err != nil {
		return "", err
	}
	// +COPS: <mode>[,<format>,"<oper>"[,<AcT>]]
	resp := string(captured)
	open := strings.IndexByte(resp, '"')
	if open < 0 {
		return "", nil // registered but no operator name reported
	}
	end := strings.IndexByte(resp[open+1:], '"')
	if end < 0 {
		return "", session.ErrUnexpectedResponse
	}
	return resp[open+1 : open+1+end], nil
}

// RegistrationStatus queries +CREG? and returns the network registration
// status.
func (m *Modem) RegistrationStatus() (int, error) {
	return m.registrationQuery(at.CmdRegistration)
}

// EPSRegistrationStatus queries +CEREG? and returns the EPS (LTE)
// registration status.
func (m *Modem) EPSRegistrationStatus() (int, error) {
	return m.registrationQuery(at.CmdEPSRegistration)
}

func (m *Modem) registrationQuery(cmd string) (int, error) {
	captured, err := m.sess.Do(session.Transaction{
		Command:     cmd + "?",
		CaptureSize: 64,
	})
	if err != nil {
		return 0, err
	}
	var mode, status int
	if err := scanReply(captured, cmd+":", "%d,%d", &mode, &status); err != nil {
		return 0, err
	}
	return status, nil
}

// OnRegistration registers a callback invoked from Poll whenever the
// network reports a registration status change. The callback must not
// block.
func (m *Modem) OnRegistration(fn func(status int)) {
	m.onRegistration = fn
}

// OnSIMState registers a callback for +UUSIMSTAT state changes.
func (m *Modem) OnSIMState(fn func(state int)) {
	m.onSIMState = fn
}

func (m *Modem) handleRegistration(payload string) bool {
	var status int
	if n, _ := fmt.Sscanf(payload, "%d", &status); n != 1 {
		return false
	}
	if m.onRegistration != nil {
		m.onRegistration(status)
	}
	return true
}

func (m *Modem) handleSIMState(payload string) bool {
	var state int
	if n, _ := fmt.Sscanf(payload, "%d", &state); n != 1 {
		return false
	}
	if m.onSIMState != nil {
		m.onSIMState(state)
	}
	return true
}

// scanReply locates prefix inside a captured reply and Sscanf-parses the
// remainder with format.
func scanReply(captured []byte, prefix, format string, args ...any) error {
	resp := string(captured)
	pos := strings.Index(resp, prefix)
	if pos < 0 {
		return session.ErrUnexpectedResponse
	}
	rest := strings.TrimLeft(resp[pos+len(prefix):], " ")
	if n, _ := fmt.Sscanf(rest, format, args...); n != len(args) {
		return session.ErrUnexpectedResponse
	}
	return nil
}
