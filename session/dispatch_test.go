package session_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"i4.energy/across/cellgw/at"
	"i4.energy/across/cellgw/session"
)

func newSession(t *testing.T, cfg session.Config) (*session.Session, *session.TestTransport) {
	t.Helper()
	transport := session.NewTestTransport()
	s, err := session.New(transport, cfg)
	require.NoError(t, err)
	return s, transport
}

func TestDoSuccess(t *testing.T) {
	s, transport := newSession(t, session.Config{})
	transport.OnWrite = func([]byte) { transport.Feed("\r\nOK\r\n") }

	_, err := s.Do(session.Transaction{Command: "", Timeout: time.Second})
	require.NoError(t, err)
	assert.Equal(t, "AT\r\n", transport.Written())
}

func TestDoErrorTerminator(t *testing.T) {
	s, transport := newSession(t, session.Config{})
	transport.OnWrite = func([]byte) { transport.Feed("\r\nERROR\r\n") }

	_, err := s.Do(session.Transaction{Command: "+CSQ"})
	assert.ErrorIs(t, err, session.ErrErrorResponse)
}

func TestDoNoResponseTiming(t *testing.T) {
	s, _ := newSession(t, session.Config{})

	const timeout = 50 * time.Millisecond
	start := time.Now()
	_, err := s.Do(session.Transaction{Command: "+CSQ", Timeout: timeout})
	elapsed := time.Since(start)

	assert.ErrorIs(t, err, session.ErrNoResponse)
	assert.GreaterOrEqual(t, elapsed, timeout, "must not give up before the timeout")
}

func TestDoUnexpectedResponse(t *testing.T) {
	s, transport := newSession(t, session.Config{})
	transport.OnWrite = func([]byte) { transport.Feed("+CSQ: 15,99\r\n") }

	captured, err := s.Do(session.Transaction{
		Command:     "+CSQ",
		Timeout:     50 * time.Millisecond,
		CaptureSize: 64,
	})
	assert.ErrorIs(t, err, session.ErrUnexpectedResponse)
	// Partial data read before the timeout stays valid.
	assert.Equal(t, "+CSQ: 15,99\r\n", string(captured))
}

func TestDoCaptureTruncation(t *testing.T) {
	s, transport := newSession(t, session.Config{})
	transport.OnWrite = func([]byte) { transport.Feed("+CGMM: LARA-R6001D\r\n\r\nOK\r\n") }

	captured, err := s.Do(session.Transaction{Command: "+CGMM", CaptureSize: 8})
	// The terminator match is computed from the full stream, not the
	// capture, so truncation does not change the outcome.
	require.NoError(t, err)
	assert.Equal(t, "+CGMM: L", string(captured))
	assert.Len(t, captured, 8, "capture at capacity signals overflow")
}

func TestDoCustomTerminator(t *testing.T) {
	s, transport := newSession(t, session.Config{})
	transport.OnWrite = func([]byte) { transport.Feed("\r\nCONNECT\r\n") }

	_, err := s.Do(session.Transaction{
		Command: "+USOCO=0,\"198.51.100.7\",80",
		Expect:  at.ResponseConnect,
	})
	require.NoError(t, err)
}

func TestDoExplicitExpectIgnoresError(t *testing.T) {
	// With an explicit success terminator and no explicit error
	// terminator, ERROR on the wire is not matched; the transaction times
	// out as unexpected instead.
	s, transport := newSession(t, session.Config{})
	transport.OnWrite = func([]byte) { transport.Feed("\r\nERROR\r\n") }

	_, err := s.Do(session.Transaction{
		Command: "+USOCO=0,\"198.51.100.7\",80",
		Expect:  at.ResponseConnect,
		Timeout: 50 * time.Millisecond,
	})
	assert.ErrorIs(t, err, session.ErrUnexpectedResponse)
}

func TestInterleavedNotificationSurvivesTransaction(t *testing.T) {
	s, transport := newSession(t, session.Config{})

	var payloads []string
	require.NoError(t, s.Handle("+NOTIFY:", func(payload string) bool {
		payloads = append(payloads, payload)
		return true
	}))

	// The URC arrives in the middle of the command reply.
	transport.OnWrite = func([]byte) { transport.Feed("+NOTIFY: 3\r\n\r\nOK\r\n") }
	_, err := s.Do(session.Transaction{Command: ""})
	require.NoError(t, err)
	assert.Empty(t, payloads, "decoder must not fire during the transaction")

	handled := s.BufferedPoll()
	assert.True(t, handled)
	assert.Equal(t, []string{"3"}, payloads, "decoder fires exactly once, after the transaction")

	// Nothing left over for a second poll.
	assert.False(t, s.BufferedPoll())
	assert.Equal(t, []string{"3"}, payloads)
}

func TestSendDrainsPendingBytesBeforeWrite(t *testing.T) {
	s, transport := newSession(t, session.Config{})
	require.NoError(t, s.Handle("+UUSOCL:", func(string) bool { return true }))

	// A URC is already waiting when the command is issued.
	transport.Feed("+UUSOCL: 2\r\n")
	transport.OnWrite = func([]byte) { transport.Feed("\r\nOK\r\n") }

	_, err := s.Do(session.Transaction{Command: "+CSQ"})
	require.NoError(t, err)

	assert.True(t, s.BufferedPoll(), "pre-send URC must survive the transaction")
}

func TestDoTransportUnusable(t *testing.T) {
	s, transport := newSession(t, session.Config{})
	require.NoError(t, transport.Close())

	// The wait must fail fast instead of idling out the full timeout.
	start := time.Now()
	_, err := s.Do(session.Transaction{Command: "+CSQ", Timeout: time.Minute})
	assert.ErrorIs(t, err, session.ErrTransportUnusable)
	assert.Less(t, time.Since(start), time.Second)
}

func TestNoResponseLeavesPrunedBacklogOnly(t *testing.T) {
	s, transport := newSession(t, session.Config{})
	require.NoError(t, s.Handle("+UUSORD:", func(string) bool { return true }))

	transport.OnWrite = func([]byte) { transport.Feed("junk\r\n+UUSORD: 1,4\r\njunk\r\n") }
	_, err := s.Do(session.Transaction{Command: "+CSQ", Timeout: 50 * time.Millisecond})
	assert.ErrorIs(t, err, session.ErrUnexpectedResponse)

	assert.True(t, s.BufferedPoll(), "recognized line survives the prune")
	assert.False(t, s.BufferedPoll(), "junk does not")
}
