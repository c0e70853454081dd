package types

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/lestrrat-go/strftime"
)

const (
	msPerSecond = int64(1000)
	msPerDay    = 24 * 3600 * msPerSecond
)

// Date is a calendar day, counted in days since 1970-01-01.
type Date int32

// Timestamp is a point in time with millisecond resolution, counted since
// the Unix epoch.
type Timestamp int64

// Duration is a time span in milliseconds.
type Duration int64

// DateOf returns the calendar day of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}

// NewDate builds a date from its calendar components.
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// Time returns midnight UTC of the day.
func (d Date) Time() time.Time { return time.Unix(int64(d)*86400, 0).UTC() }

// Timestamp returns the start of the day.
func (d Date) Timestamp() Timestamp { return Timestamp(int64(d) * msPerDay) }

// AddDuration moves the date by whole days of dur, truncating toward zero.
func (d Date) AddDuration(dur Duration) Date { return d + Date(int64(dur)/msPerDay) }

// String uses the C locale date representation (%x).
func (d Date) String() string {
	s, _ := strftime.Format("%x", d.Time())
	return s
}

// TimestampOf converts t to a millisecond timestamp.
func TimestampOf(t time.Time) Timestamp { return Timestamp(t.UnixMilli()) }

// Time returns the timestamp as a local time.
func (ts Timestamp) Time() time.Time { return time.UnixMilli(int64(ts)) }

// Date truncates the timestamp to its day.
func (ts Timestamp) Date() Date {
	days := int64(ts) / msPerDay
	if int64(ts)%msPerDay < 0 {
		days--
	}
	return Date(days)
}

// String prints date and time for real points in time. Timestamps within the
// first day after the epoch are treated as a time of day and printed with
// milliseconds when present.
func (ts Timestamp) String() string {
	t := ts.Time()
	if int64(ts) >= msPerDay {
		s, _ := strftime.Format("%c", t)
		return s
	}
	s, _ := strftime.Format("%X", t)
	ms := int64(ts) % msPerSecond
	if ms < 0 {
		ms += msPerSecond
	}
	if ms != 0 {
		s += fmt.Sprintf(".%03d", ms)
	}
	return s
}

// Std converts to a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) * time.Millisecond }

// DurationOf converts a time.Duration, truncating to milliseconds.
func DurationOf(d time.Duration) Duration { return Duration(d.Milliseconds()) }

func (d Duration) String() string { return strconv.FormatInt(int64(d), 10) + "ms" }

// Strftime formats t using a C strftime pattern.
func Strftime(pattern string, t time.Time) (string, error) {
	return strftime.Format(pattern, t)
}

type timeLayout struct {
	layout  string
	hasDate bool
}

// accepted input patterns, tried in order
var (
	dateLayouts = []timeLayout{
		{"20060102", true},   // %Y%m%d
		{"2006-01-02", true}, // %Y-%m-%d
		{"060102", true},     // %y%m%d
		{"2.1.2006", true},   // %d.%m.%Y
	}
	timestampLayouts = []timeLayout{
		{"20060102150405", true},     // %Y%m%d%H%M%S
		{"20060102T150405", true},    // %Y%m%dT%H%M%S
		{"2.1.2006 15:04:05", true},  // %d.%m.%Y %H:%M:%S
		{"150405", false},            // %H%M%S
		{"15:04:05", false},          // %H:%M:%S
	}
)

func parseLocal(src string, layouts []timeLayout) (time.Time, bool) {
	src = strings.TrimSpace(src)
	for _, l := range layouts {
		t, err := time.ParseInLocation(l.layout, src, time.Local)
		if err != nil {
			continue
		}
		if !l.hasDate {
			t = time.Date(1970, time.January, 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.Local)
		}
		return t, true
	}
	return time.Time{}, false
}

// ParseDate parses src with the accepted date patterns. The first matching
// pattern wins.
func ParseDate(src string) (Date, bool) {
	src = strings.TrimSpace(src)
	for _, l := range dateLayouts {
		t, err := time.ParseInLocation(l.layout, src, time.UTC)
		if err == nil {
			return DateOf(t), true
		}
	}
	return 0, false
}

// ParseTimestamp parses src as local time with the accepted timestamp
// patterns. A fractional seconds suffix is honoured.
func ParseTimestamp(src string) (Timestamp, bool) {
	t, ok := parseLocal(src, timestampLayouts)
	if !ok {
		return 0, false
	}
	return TimestampOf(t), true
}

// ParseDuration accepts "H:M:S[.frac]" or a plain number of milliseconds.
func ParseDuration(src string) (Duration, bool) {
	src = strings.TrimSpace(src)
	if parts := strings.Split(src, ":"); len(parts) == 3 {
		h, errH := strconv.Atoi(parts[0])
		m, errM := strconv.Atoi(parts[1])
		s, errS := strconv.ParseFloat(parts[2], 64)
		if errH == nil && errM == nil && errS == nil && m < 60 && s < 60 {
			ms := int64(h)*3600*msPerSecond + int64(m)*60*msPerSecond + int64(math.Round(s*1000))
			return Duration(ms), true
		}
	}
	f, err := strconv.ParseFloat(src, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return Duration(math.Round(f)), true
}
