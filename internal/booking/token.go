package booking

import (
	"crypto/rand"
	"fmt"
	"time"
)

const tokenAlphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// NewAppointmentToken builds the external tracking token: an "APT" prefix,
// the current unix milliseconds, and a random suffix so tokens cannot be
// guessed in sequence. Collisions would need the same millisecond and the
// same 6 random characters; the unique key on appointments.appointment_id
// catches that anyway.
func NewAppointmentToken() string {
	return newAppointmentTokenAt(time.Now())
}

func newAppointmentTokenAt(now time.Time) string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand on supported platforms does not fail; if it ever
		// does the token degrades to millisecond-only uniqueness.
		for i := range buf {
			buf[i] = byte(now.UnixNano() >> (i * 8))
		}
	}
	for i, b := range buf {
		buf[i] = tokenAlphabet[int(b)%len(tokenAlphabet)]
	}
	return fmt.Sprintf("APT%d%s", now.UnixMilli(), buf)
}
