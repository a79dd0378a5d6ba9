package shiori

import (
	"sort"

	"github.com/Funya-okina/sightseeingLog/internal/models"
)

const (
	// PlacePlaceholder substitutes a blank place name on an otherwise kept event.
	PlacePlaceholder = "場所不明"
	// UnknownDayLabel is the reserved bucket for events without a parseable day.
	UnknownDayLabel = "日付不明"
)

// BuildItinerary reconstructs a chronological itinerary from an unordered list
// of raw photo events. Input order is the upload order and is significant: it
// breaks ties between events whose timestamps are equal or unparseable.
//
// Per-event rules: an event with neither a parseable time nor a non-blank
// place name is excluded entirely; a kept event with a blank place name gets
// the placeholder. Surviving events are grouped by calendar day, day groups
// ordered ascending by the numeric value of the day string with the
// unknown-day bucket always last, and events within a group ordered by
// timestamp then original index.
//
// images maps a clientId to a data URI for the uploaded photo, attached to
// the matching event when present. An empty result is valid and means the
// document has no itinerary section.
func BuildItinerary(rawEvents []map[string]any, images map[string]string) []models.DayGroup {
	groups := make(map[string][]models.ItineraryEvent)

	for i, raw := range rawEvents {
		place := ResolveString(raw, "placeName")
		day, clock, sortKey, hasTime := FormatEventTime(resolveAny(raw, "dateTime"))
		if !hasTime && place == "" {
			continue
		}
		if place == "" {
			place = PlacePlaceholder
		}
		ev := models.ItineraryEvent{
			PlaceName: place,
			Day:       day,
			Clock:     clock,
			SortKey:   sortKey,
			Index:     i,
		}
		if id := ResolveString(raw, "clientId"); id != "" {
			ev.ImageData = images[id]
		}
		groups[day] = append(groups[day], ev)
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool {
		// The unknown bucket (empty key) sorts after every dated group.
		if keys[a] == "" || keys[b] == "" {
			return keys[b] == ""
		}
		return dayValue(keys[a]) < dayValue(keys[b])
	})

	out := make([]models.DayGroup, 0, len(keys))
	for _, k := range keys {
		events := groups[k]
		sort.Slice(events, func(a, b int) bool {
			if events[a].SortKey != events[b].SortKey {
				return events[a].SortKey < events[b].SortKey
			}
			return events[a].Index < events[b].Index
		})
		label := k
		if label == "" {
			label = UnknownDayLabel
		}
		out = append(out, models.DayGroup{Label: label, Events: events})
	}
	return out
}

// dayValue converts "2025/05/10" to 20250510 for ordering.
func dayValue(day string) int64 {
	var n int64
	for _, r := range day {
		if r >= '0' && r <= '9' {
			n = n*10 + int64(r-'0')
		}
	}
	return n
}

// resolveAny returns the resolved value or nil; nil is what the temporal
// parser expects for an absent field.
func resolveAny(obj map[string]any, key string) any {
	v, _ := ResolveField(obj, key)
	return v
}
