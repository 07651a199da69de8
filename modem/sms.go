package modem

import (
	"fmt"
	"time"

	"i4.energy/across/cellgw/at"
	"i4.energy/across/cellgw/session"
)

// smsSendTimeout bounds the wait for the network to accept a message
// after Ctrl+Z. Network acceptance can take far longer than a normal
// command reply.
const smsSendTimeout = 3 * time.Minute

// SendSMS sends a text message to the specified recipient.
//
// The message is sent in text mode (not PDU mode). The recipient should
// be in international format (e.g., "+1234567890").
//
// This method blocks until the message is accepted by the network or an
// error occurs. Network delivery to the final recipient happens
// asynchronously.
func (m *Modem) SendSMS(recipient, message string) error {
	// +CMGS answers with a text-entry prompt, not OK.
	_, err := m.sess.Do(session.Transaction{
		Command: fmt.Sprintf(`%s="%s"`, at.CmdSendText, recipient),
		Expect:  at.ResponseMore,
	})
	if err != nil {
		return fmt.Errorf("SMS prompt: %w", err)
	}

	// Message body, terminated by Ctrl+Z, written verbatim.
	_, err = m.sess.Do(session.Transaction{
		Command:  message + at.CtrlZ,
		NoPrefix: true,
		Timeout:  smsSendTimeout,
	})
	if err != nil {
		return fmt.Errorf("SMS send: %w", err)
	}
	return nil
}
