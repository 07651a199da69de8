package modem

import (
	"strings"
	"time"

	"i4.energy/across/cellgw/at"
	"i4.energy/across/cellgw/session"
)

// clockLayout matches the +CCLK timestamp body: "yy/MM/dd,hh:mm:ss".
const clockLayout = "06/01/02,15:04:05"

// Clock reads the module real-time clock (+CCLK?). The returned time
// carries the module's reported zone, which +CCLK expresses in
// quarter-hour offsets.
func (m *Modem) Clock() (time.Time, error) {
	captured, err := m.sess.Do(session.Transaction{
		Command:     at.CmdClock + "?",
		CaptureSize: 64,
	})
	if err != nil {
		return time.Time{}, err
	}

	// +CCLK: "24/03/15,10:22:33+08"
	resp := string(captured)
	open := strings.IndexByte(resp, '"')
	if open < 0 {
		return time.Time{}, session.ErrUnexpectedResponse
	}
	end := strings.IndexByte(resp[open+1:], '"')
	if end < 0 {
		return time.Time{}, session.ErrUnexpectedResponse
	}
	stamp := resp[open+1 : open+1+end]
	if len(stamp) < len(clockLayout) {
		return time.Time{}, session.ErrUnexpectedResponse
	}

	base, err := time.Parse(clockLayout, stamp[:len(clockLayout)])
	if err != nil {
		return time.Time{}, session.ErrUnexpectedResponse
	}

	// The optional suffix is a signed zone offset in quarter hours.
	offset := 0
	if tz := stamp[len(clockLayout):]; len(tz) >= 2 && (tz[0] == '+' || tz[0] == '-') {
		quarters := 0
		for _, c := range tz[1:] {
			if c < '0' || c > '9' {
				return time.Time{}, session.ErrUnexpectedResponse
			}
			quarters = quarters*10 + int(c-'0')
		}
		offset = quarters * 15 * 60
		if tz[0] == '-' {
			offset = -offset
		}
	}

	return time.Date(base.Year(), base.Month(), base.Day(),
		base.Hour(), base.Minute(), base.Second(), 0,
		time.FixedZone("", offset)), nil
}
