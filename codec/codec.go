// Package codec holds the pure leaf parsers the scalar validators call:
// date/time, duration, UUID, URL, and base64 conversion. Every function is
// total and stateless, so compiled schemas can share them across concurrent
// calls. Errors are plain parse errors; callers convert them into validator
// issues and never surface them raw.
package codec

import (
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// datetime layouts accepted in order; RFC 3339 first since interchange data
// is overwhelmingly RFC 3339.
var datetimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseDateTime parses an RFC 3339 timestamp, with tolerant fallbacks for
// timezone-less forms (interpreted as UTC).
func ParseDateTime(s string) (time.Time, error) {
	for _, layout := range datetimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	// a bare date reads as midnight UTC
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid datetime %q", s)
}

// DateTimeFromEpoch converts Unix epoch seconds (possibly fractional) to a
// UTC time.
func DateTimeFromEpoch(sec float64) (time.Time, error) {
	if math.IsNaN(sec) || math.IsInf(sec, 0) {
		return time.Time{}, errors.New("epoch seconds out of range")
	}
	whole, frac := math.Modf(sec)
	return time.Unix(int64(whole), int64(frac*1e9)).UTC(), nil
}

// FormatDateTime renders the canonical RFC 3339 form.
func FormatDateTime(t time.Time) string { return t.Format(time.RFC3339Nano) }

// ParseDate parses a calendar date ("2006-01-02") as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return t, nil
}

// FormatDate renders the calendar-date form.
func FormatDate(t time.Time) string { return t.Format("2006-01-02") }

// MidnightOf reports whether t has a zero clock component, and truncates it
// to its date. Lax date validation accepts exact-midnight datetimes only.
func MidnightOf(t time.Time) (time.Time, bool) {
	h, m, s := t.Clock()
	if h != 0 || m != 0 || s != 0 || t.Nanosecond() != 0 {
		return time.Time{}, false
	}
	return t, true
}

// ParseClockTime parses a time of day ("15:04:05", optional fraction,
// optional seconds) anchored on the zero date.
func ParseClockTime(s string) (time.Time, error) {
	for _, layout := range []string{"15:04:05.999999999", "15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q", s)
}

// FormatClockTime renders a time of day, trimming a zero fraction.
func FormatClockTime(t time.Time) string {
	if t.Nanosecond() == 0 {
		return t.Format("15:04:05")
	}
	return t.Format("15:04:05.999999999")
}

// ParseDuration parses a Go duration string ("1h30m", "250ms").
func ParseDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return d, nil
}

// DurationFromSeconds converts (possibly fractional) seconds to a Duration.
func DurationFromSeconds(sec float64) (time.Duration, error) {
	if math.IsNaN(sec) || math.IsInf(sec, 0) || math.Abs(sec) > float64(math.MaxInt64)/float64(time.Second) {
		return 0, errors.New("duration seconds out of range")
	}
	return time.Duration(sec * float64(time.Second)), nil
}

// FormatDuration renders the Go duration string form.
func FormatDuration(d time.Duration) string { return d.String() }

// ParseUUID parses the canonical and urn/hyphenless UUID text forms.
func ParseUUID(s string) (uuid.UUID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("invalid UUID %q", s)
	}
	return u, nil
}

// ParseURL parses an absolute URL; a scheme is required so bare words do not
// pass as URLs.
func ParseURL(s string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q", s)
	}
	if u.Scheme == "" {
		return nil, fmt.Errorf("URL %q is missing a scheme", s)
	}
	return u, nil
}

// DecodeBase64 decodes standard base64, tolerating the URL-safe alphabet and
// missing padding.
func DecodeBase64(s string) ([]byte, error) {
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding, base64.RawStdEncoding,
		base64.URLEncoding, base64.RawURLEncoding,
	} {
		if b, err := enc.DecodeString(s); err == nil {
			return b, nil
		}
	}
	return nil, fmt.Errorf("invalid base64 of length %d", len(s))
}

// EncodeBase64 emits canonical standard base64.
func EncodeBase64(b []byte) string { return base64.StdEncoding.EncodeToString(b) }
