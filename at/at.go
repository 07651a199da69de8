// Package at holds the AT protocol vocabulary for u-blox cellular modules:
// command literals, response terminators and the unsolicited result code
// (URC) prefixes the session engine recognizes.
package at

const (
	// Terminal Control
	CRLF   = "\r\n"
	Prefix = "AT" // every prefixed command line starts with this

	// Response terminators. A reply is complete when one of these literal
	// strings has appeared on the wire.
	ResponseOK      = "\r\nOK\r\n"
	ResponseError   = "\r\nERROR\r\n"
	ResponseConnect = "\r\nCONNECT\r\n"
	// ResponseMore is the text-entry prompt issued by +CMGS and friends.
	ResponseMore = "\n>"

	CtrlZ = "\x1a" // terminates SMS text entry

	// General commands
	CmdEcho          = "E" // local echo control
	CmdModelID       = "+CGMM"
	CmdFirmwareVer   = "+CGMR"
	CmdIMEI          = "+GSN"
	CmdFunctionality = "+CFUN"
	CmdClock         = "+CCLK"
	CmdVerboseErrors = "+CMEE"

	// SIM
	CmdSIMPin = "+CPIN"

	// Network
	CmdSignalQuality     = "+CSQ"
	CmdOperatorSelection = "+COPS"
	CmdRegistration      = "+CREG"
	CmdEPSRegistration   = "+CEREG"

	// SMS
	CmdMessageFormat = "+CMGF"
	CmdSendText      = "+CMGS"

	// Sockets
	CmdSocketCreate   = "+USOCR"
	CmdSocketClose    = "+USOCL"
	CmdSocketConnect  = "+USOCO"
	CmdSocketWrite    = "+USOWR"
	CmdSocketRead     = "+USORD"
	CmdSocketReadFrom = "+USORF"
)

// URC prefixes. The engine prunes the backlog down to lines carrying a
// registered prefix, so every decoder registration uses one of these.
const (
	URCSocketRead      = "+UUSORD:"
	URCSocketReadUDP   = "+UUSORF:"
	URCSocketListen    = "+UUSOLI:"
	URCSocketClose     = "+UUSOCL:"
	URCLocation        = "+UULOC:"
	URCSIMState        = "+UUSIMSTAT:"
	URCHTTP            = "+UUHTTPCR:"
	URCMQTT            = "+UUMQTTC:"
	URCPing            = "+UUPING:"
	URCRegistration    = "+CREG:"
	URCEPSRegistration = "+CEREG:"
	URCFTP             = "+UUFTPCR:"
)

// SIM status payloads reported by +CPIN?
const (
	SimReady = "READY"
	SimPin   = "SIM PIN"
)
