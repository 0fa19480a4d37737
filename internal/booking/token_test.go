package booking

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAppointmentToken(t *testing.T) {
	now := time.Date(2026, 3, 4, 9, 30, 0, 0, time.UTC)
	token := newAppointmentTokenAt(now)

	require.True(t, strings.HasPrefix(token, "APT"))

	millis := strconv.FormatInt(now.UnixMilli(), 10)
	require.True(t, strings.HasPrefix(token[3:], millis))

	suffix := token[3+len(millis):]
	assert.Len(t, suffix, 6)
	for _, c := range suffix {
		assert.Contains(t, tokenAlphabet, string(c))
	}
}

func TestNewAppointmentTokenUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		token := NewAppointmentToken()
		require.False(t, seen[token], "duplicate token %s", token)
		seen[token] = true
	}
}
