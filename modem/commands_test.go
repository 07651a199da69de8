package modem_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"i4.energy/across/cellgw/modem"
	"i4.energy/across/cellgw/session"
)

func TestSignalQuality(t *testing.T) {
	replies := initReplies()
	m, _ := newTestModem(t, replies)

	replies["AT+CSQ\r\n"] = "\r\n+CSQ: 15,99\r\n\r\nOK\r\n"
	rssi, qual, err := m.SignalQuality()
	require.NoError(t, err)
	assert.Equal(t, 15, rssi)
	assert.Equal(t, 99, qual)
}

func TestRegistrationStatus(t *testing.T) {
	replies := initReplies()
	m, _ := newTestModem(t, replies)

	replies["AT+CREG?\r\n"] = "\r\n+CREG: 0,5\r\n\r\nOK\r\n"
	status, err := m.RegistrationStatus()
	require.NoError(t, err)
	assert.Equal(t, modem.RegistrationRoaming, status)

	replies["AT+CEREG?\r\n"] = "\r\n+CEREG: 0,1\r\n\r\nOK\r\n"
	status, err = m.EPSRegistrationStatus()
	require.NoError(t, err)
	assert.Equal(t, modem.RegistrationHome, status)
}

func TestOperator(t *testing.T) {
	replies := initReplies()
	m, _ := newTestModem(t, replies)

	replies["AT+COPS?\r\n"] = "\r\n+COPS: 0,0,\"vodafone\",7\r\n\r\nOK\r\n"
	oper, err := m.Operator()
	require.NoError(t, err)
	assert.Equal(t, "vodafone", oper)
}

func TestOperatorDeregistered(t *testing.T) {
	replies := initReplies()
	m, _ := newTestModem(t, replies)

	replies["AT+COPS?\r\n"] = "\r\n+COPS: 0\r\n\r\nOK\r\n"
	oper, err := m.Operator()
	require.NoError(t, err)
	assert.Empty(t, oper)
}

func TestClock(t *testing.T) {
	replies := initReplies()
	m, _ := newTestModem(t, replies)

	replies["AT+CCLK?\r\n"] = "\r\n+CCLK: \"24/03/15,10:22:33+08\"\r\n\r\nOK\r\n"
	clk, err := m.Clock()
	require.NoError(t, err)
	assert.Equal(t, 2024, clk.Year())
	assert.Equal(t, time.March, clk.Month())
	assert.Equal(t, 15, clk.Day())
	assert.Equal(t, 10, clk.Hour())
	assert.Equal(t, 22, clk.Minute())
	_, offset := clk.Zone()
	assert.Equal(t, 8*15*60, offset, "+CCLK zone is in quarter hours")
}

func TestModelID(t *testing.T) {
	replies := initReplies()
	m, _ := newTestModem(t, replies)

	replies["AT+CGMM\r\n"] = "\r\nLARA-R6001D\r\n\r\nOK\r\n"
	model, err := m.ModelID()
	require.NoError(t, err)
	assert.Equal(t, "LARA-R6001D", model)
}

func TestIMEI(t *testing.T) {
	replies := initReplies()
	m, _ := newTestModem(t, replies)

	replies["AT+GSN\r\n"] = "\r\n356709123456789\r\n\r\nOK\r\n"
	imei, err := m.IMEI()
	require.NoError(t, err)
	assert.Equal(t, "356709123456789", imei)
}

func TestSendSMS(t *testing.T) {
	replies := initReplies()
	m, _ := newTestModem(t, replies)

	replies["AT+CMGS=\"+15551234567\"\r\n"] = "\r\n> "
	replies["hello there\x1a"] = "\r\n+CMGS: 5\r\n\r\nOK\r\n"

	require.NoError(t, m.SendSMS("+15551234567", "hello there"))
}

func TestSocketOpenRecordsProtocol(t *testing.T) {
	replies := initReplies()
	m, _ := newTestModem(t, replies)

	replies["AT+USOCR=6\r\n"] = "\r\n+USOCR: 2\r\n\r\nOK\r\n"
	socket, err := m.SocketOpen(session.ProtocolTCP)
	require.NoError(t, err)
	assert.Equal(t, 2, socket)

	proto, err := m.Session().SocketProtocol(2)
	require.NoError(t, err)
	assert.Equal(t, session.ProtocolTCP, proto)
}

func TestSocketOpenRejectsUnknownProtocol(t *testing.T) {
	m, _ := newTestModem(t, initReplies())

	_, err := m.SocketOpen(session.ProtocolNone)
	assert.ErrorIs(t, err, session.ErrInvalidParameter)
}

func TestSocketConnectAndWrite(t *testing.T) {
	replies := initReplies()
	m, _ := newTestModem(t, replies)

	replies["AT+USOCO=0,\"example.com\",80\r\n"] = "\r\nOK\r\n"
	require.NoError(t, m.SocketConnect(0, "example.com", 80))

	replies["AT+USOWR=0,4\r\n"] = "\r\n@"
	replies["ping"] = "\r\n+USOWR: 0,4\r\n\r\nOK\r\n"
	require.NoError(t, m.SocketWrite(0, []byte("ping")))
}

func TestSocketRead(t *testing.T) {
	replies := initReplies()
	m, _ := newTestModem(t, replies)

	replies["AT+USORD=2,4\r\n"] = "\r\n+USORD: 2,4,\"abcd\"\r\n\r\nOK\r\n"
	data, err := m.SocketRead(2, 4)
	require.NoError(t, err)
	assert.Equal(t, "abcd", string(data))
}

func TestSocketReadBinaryPayload(t *testing.T) {
	replies := initReplies()
	m, _ := newTestModem(t, replies)

	// The payload length comes from the reply header, so embedded quotes
	// must not cut the data short.
	replies["AT+USORD=0,5\r\n"] = "\r\n+USORD: 0,5,\"a\"b\"c\"\r\n\r\nOK\r\n"
	data, err := m.SocketRead(0, 5)
	require.NoError(t, err)
	assert.Equal(t, `a"b"c`, string(data))
}

func TestSocketReadValidation(t *testing.T) {
	m, _ := newTestModem(t, initReplies())

	_, err := m.SocketRead(0, 0)
	assert.ErrorIs(t, err, session.ErrInvalidParameter)
	_, err = m.SocketRead(session.NumSockets, 4)
	assert.ErrorIs(t, err, session.ErrInvalidParameter)
}

func TestSocketReadFrom(t *testing.T) {
	replies := initReplies()
	m, _ := newTestModem(t, replies)

	replies["AT+USORF=1,4\r\n"] = "\r\n+USORF: 1,\"192.0.2.7\",2500,4,\"ping\"\r\n\r\nOK\r\n"
	pkt, err := m.SocketReadFrom(1, 4)
	require.NoError(t, err)
	assert.Equal(t, "192.0.2.7", pkt.RemoteIP)
	assert.Equal(t, 2500, pkt.RemotePort)
	assert.Equal(t, "ping", string(pkt.Data))
}

func TestSocketClose(t *testing.T) {
	replies := initReplies()
	m, _ := newTestModem(t, replies)

	replies["AT+USOCL=3\r\n"] = "\r\nOK\r\n"
	require.NoError(t, m.SocketClose(3))
}

func TestSocketDataIndicationStream(t *testing.T) {
	replies := initReplies()
	m, transport := newTestModem(t, replies)

	replies["AT+USOCR=6\r\n"] = "\r\n+USOCR: 2\r\n\r\nOK\r\n"
	_, err := m.SocketOpen(session.ProtocolTCP)
	require.NoError(t, err)

	var gotSocket int
	var gotData []byte
	m.OnSocketRead(func(socket int, data []byte) {
		gotSocket = socket
		gotData = data
	})

	// The indication decoder issues a nested +USORD read while the poll
	// pass is still running.
	replies["AT+USORD=2,4\r\n"] = "\r\n+USORD: 2,4,\"abcd\"\r\n\r\nOK\r\n"
	transport.Feed("\r\n+UUSORD: 2,4\r\n")
	assert.True(t, m.Poll())
	assert.Equal(t, 2, gotSocket)
	assert.Equal(t, "abcd", string(gotData))
}

func TestSocketDataIndicationDatagram(t *testing.T) {
	replies := initReplies()
	m, transport := newTestModem(t, replies)

	replies["AT+USOCR=17\r\n"] = "\r\n+USOCR: 1\r\n\r\nOK\r\n"
	_, err := m.SocketOpen(session.ProtocolUDP)
	require.NoError(t, err)

	var got modem.UDPPacket
	m.OnUDPPacket(func(socket int, pkt modem.UDPPacket) {
		assert.Equal(t, 1, socket)
		got = pkt
	})

	// +UUSORD on a datagram socket means a buffered packet; the protocol
	// table routes it through a receive-from read.
	replies["AT+USORF=1,4\r\n"] = "\r\n+USORF: 1,\"192.0.2.7\",2500,4,\"ping\"\r\n\r\nOK\r\n"
	transport.Feed("\r\n+UUSORD: 1,4\r\n")
	assert.True(t, m.Poll())
	assert.Equal(t, "192.0.2.7", got.RemoteIP)
	assert.Equal(t, 2500, got.RemotePort)
	assert.Equal(t, "ping", string(got.Data))
}

func TestSocketCloseIndication(t *testing.T) {
	m, transport := newTestModem(t, initReplies())

	closed := -1
	m.OnSocketClose(func(socket int) { closed = socket })

	transport.Feed("\r\n+UUSOCL: 3\r\n")
	assert.True(t, m.Poll())
	assert.Equal(t, 3, closed)
}

func TestSocketListenIndication(t *testing.T) {
	m, transport := newTestModem(t, initReplies())

	var got modem.ListenIndication
	m.OnSocketListen(func(li modem.ListenIndication) { got = li })

	transport.Feed("\r\n+UUSOLI: 3,\"203.0.113.9\",41234,0,\"192.0.2.1\",8080\r\n")
	assert.True(t, m.Poll())
	assert.Equal(t, 3, got.Socket)
	assert.Equal(t, "203.0.113.9", got.RemoteIP)
	assert.Equal(t, 41234, got.RemotePort)
	assert.Equal(t, 0, got.ListeningSocket)
	assert.Equal(t, "192.0.2.1", got.LocalIP)
	assert.Equal(t, 8080, got.ListeningPort)
}

func TestRegistrationIndication(t *testing.T) {
	m, transport := newTestModem(t, initReplies())

	status := -1
	m.OnRegistration(func(s int) { status = s })

	transport.Feed("\r\n+CEREG: 5\r\n")
	assert.True(t, m.Poll())
	assert.Equal(t, modem.RegistrationRoaming, status)
}
