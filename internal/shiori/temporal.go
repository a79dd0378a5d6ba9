package shiori

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// ClockPlaceholder is shown for itinerary events whose time could not be parsed.
const ClockPlaceholder = "—"

// UnsortableKey sorts timeless events after every timestamped one.
const UnsortableKey = math.MaxInt64

var jst = mustLoadJST()

func mustLoadJST() *time.Location {
	loc, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		// Asia/Tokyo is UTC+9 with no DST, so a fixed zone is equivalent.
		return time.FixedZone("JST", 9*60*60)
	}
	return loc
}

var weekdayKanji = [7]string{"日", "月", "火", "水", "木", "金", "土"}

type era struct {
	name  string
	start time.Time
}

// Eras ordered newest first; lookup takes the first era whose start is not
// after the date.
var eras = []era{
	{"令和", time.Date(2019, 5, 1, 0, 0, 0, 0, jst)},
	{"平成", time.Date(1989, 1, 8, 0, 0, 0, 0, jst)},
	{"昭和", time.Date(1926, 12, 25, 0, 0, 0, 0, jst)},
	{"大正", time.Date(1912, 7, 30, 0, 0, 0, 0, jst)},
	{"明治", time.Date(1868, 1, 25, 0, 0, 0, 0, jst)},
}

// dateLayouts are tried in order when parsing string date values. Layouts
// without a zone are interpreted in Asia/Tokyo.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006/01/02",
}

// ParseTemporal converts a raw JSON value (string, number, or time.Time) into
// a time in Asia/Tokyo. It never panics; unparseable input returns ok=false.
func ParseTemporal(raw any) (time.Time, bool) {
	switch v := raw.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return v.In(jst), true
	case float64:
		return epochToTime(int64(v)), true
	case int64:
		return epochToTime(v), true
	case int:
		return epochToTime(int64(v)), true
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range dateLayouts {
			if t, err := time.ParseInLocation(layout, s, jst); err == nil {
				return t.In(jst), true
			}
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

// epochToTime treats large values as epoch milliseconds, small ones as seconds.
func epochToTime(n int64) time.Time {
	if n > 1e12 {
		return time.UnixMilli(n).In(jst)
	}
	return time.Unix(n, 0).In(jst)
}

// FormatWareki renders a date as "{era}{year}年{month}月{day}日({weekday})"
// using the Japanese imperial calendar. The first year of an era is rendered
// as 元年. Dates before the era table yield the Gregorian year unprefixed.
func FormatWareki(t time.Time) string {
	t = t.In(jst)
	eraName, eraYear := warekiYear(t)
	year := fmt.Sprintf("%d", eraYear)
	if eraName != "" && eraYear == 1 {
		year = "元"
	}
	return fmt.Sprintf("%s%s年%d月%d日(%s)", eraName, year, int(t.Month()), t.Day(), weekdayKanji[t.Weekday()])
}

func warekiYear(t time.Time) (string, int) {
	for _, e := range eras {
		if !t.Before(e.start) {
			return e.name, t.Year() - e.start.Year() + 1
		}
	}
	return "", t.Year()
}

// FormatDateRange formats a trip's start/end pair. A single parseable side is
// rendered as a standalone date. When both sides parse and share the same
// calendar month, the end is abbreviated to day and weekday only. Nothing
// parseable yields "".
func FormatDateRange(rawStart, rawEnd any) string {
	start, okStart := ParseTemporal(rawStart)
	end, okEnd := ParseTemporal(rawEnd)

	switch {
	case okStart && okEnd:
		endPart := FormatWareki(end)
		if start.Year() == end.Year() && start.Month() == end.Month() {
			endPart = fmt.Sprintf("%d日(%s)", end.Day(), weekdayKanji[end.Weekday()])
		}
		return FormatWareki(start) + "〜" + endPart
	case okStart:
		return FormatWareki(start)
	case okEnd:
		return FormatWareki(end)
	default:
		return ""
	}
}

// FormatEventTime is the itinerary-event pair formatter: calendar day as
// "YYYY/MM/DD" and a 24-hour "HH:MM" clock, both in Asia/Tokyo. Unparseable
// input yields an empty day, the placeholder clock, and a sort key that
// orders the event after every timestamped one.
func FormatEventTime(raw any) (day, clock string, sortKey int64, ok bool) {
	t, parsed := ParseTemporal(raw)
	if !parsed {
		return "", ClockPlaceholder, UnsortableKey, false
	}
	return t.Format("2006/01/02"), t.Format("15:04"), t.UnixMilli(), true
}
