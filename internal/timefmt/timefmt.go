// Package timefmt converts between the 12-hour display format shown to
// patients, the 24-hour format stored in Postgres time columns, and the
// integer minutes-since-midnight representation used for slot arithmetic.
package timefmt

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrFormat = errors.New("unrecognized time format")

// Formats holds both renderings of a minutes-since-midnight value.
type Formats struct {
	Storage string // "HH:MM:SS", zero-padded 24-hour
	Display string // "H:MM AM/PM", noon and midnight shown as 12
}

// ToMinutes parses either "H:MM AM/PM" or "HH:MM[:SS]" into minutes since
// midnight. An empty string returns 0: doctor rows may carry NULL working
// hours before the profile is completed, and callers substitute defaults.
func ToMinutes(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	upper := strings.ToUpper(s)
	if strings.Contains(upper, "AM") || strings.Contains(upper, "PM") {
		return parse12h(upper)
	}
	return parse24h(s)
}

func parse12h(s string) (int, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrFormat, s)
	}
	h, m, err := splitHourMinute(fields[0])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrFormat, s)
	}
	if h < 1 || h > 12 || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: %q", ErrFormat, s)
	}

	switch fields[1] {
	case "PM":
		if h != 12 {
			h += 12
		}
	case "AM":
		if h == 12 {
			h = 0
		}
	default:
		return 0, fmt.Errorf("%w: %q", ErrFormat, s)
	}

	return h*60 + m, nil
}

func parse24h(s string) (int, error) {
	// Postgres renders time columns as "HH:MM:SS"; drop the seconds.
	if parts := strings.Split(s, ":"); len(parts) == 3 {
		s = parts[0] + ":" + parts[1]
	}
	h, m, err := splitHourMinute(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrFormat, s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: %q", ErrFormat, s)
	}
	return h*60 + m, nil
}

func splitHourMinute(s string) (h, m int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, ErrFormat
	}
	h, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, ErrFormat
	}
	m, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, ErrFormat
	}
	return h, m, nil
}

// FromMinutes renders minutes since midnight in both storage and display
// forms. Valid for total in [0, 1439].
func FromMinutes(total int) Formats {
	h := total / 60
	m := total % 60

	ampm := "AM"
	if h >= 12 {
		ampm = "PM"
	}
	dh := h % 12
	if dh == 0 {
		dh = 12
	}

	return Formats{
		Storage: fmt.Sprintf("%02d:%02d:00", h, m),
		Display: fmt.Sprintf("%d:%02d %s", dh, m, ampm),
	}
}

// Display is shorthand for converting a stored "HH:MM:SS" value into the
// patient-facing 12-hour form. Unparseable input is returned unchanged.
func Display(storage string) string {
	mins, err := ToMinutes(storage)
	if err != nil {
		return storage
	}
	return FromMinutes(mins).Display
}

// NormalizeDate reduces a date input to "YYYY-MM-DD". RFC3339-style inputs
// are truncated at 'T' before validation.
func NormalizeDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, 'T'); i >= 0 {
		s = s[:i]
	}
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return "", fmt.Errorf("%w: date %q", ErrFormat, s)
	}
	return s, nil
}
