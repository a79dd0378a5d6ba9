package shiori

import "github.com/Funya-okina/sightseeingLog/internal/models"

// wrapperKey is the optional envelope some clients put around the trip data.
const wrapperKey = "travelInfo"

// NormalizeTrip turns the raw detail blob into a display-ready Trip. The blob
// may carry the trip under the wrapper key or be the trip object itself; keys
// at every level may be marker-decorated.
func NormalizeTrip(details map[string]any) models.Trip {
	obj := details
	if wrapped := ResolveMap(details, wrapperKey); wrapped != nil {
		obj = wrapped
	}

	var hotels []string
	for _, h := range ResolveSlice(obj, "hotels") {
		if s, ok := h.(string); ok && s != "" {
			hotels = append(hotels, s)
		}
	}

	return models.Trip{
		DateRange: FormatDateRange(resolveAny(obj, "startDate"), resolveAny(obj, "endDate")),
		Hotels:    hotels,
		Purpose:   ResolveString(obj, "purpose"),
		Members:   BuildRoster(ResolveSlice(obj, "members")),
		Budget:    AggregateBudget(ResolveSlice(obj, "allowance")),
	}
}

// PhotoEvents pulls the raw photo event list out of the detail blob. Events
// may sit beside the wrapped trip or inside the wrapper.
func PhotoEvents(details map[string]any) []map[string]any {
	raw := ResolveSlice(details, "photoEvents")
	if raw == nil {
		if wrapped := ResolveMap(details, wrapperKey); wrapped != nil {
			raw = ResolveSlice(wrapped, "photoEvents")
		}
	}
	events := make([]map[string]any, 0, len(raw))
	for _, r := range raw {
		if m, ok := r.(map[string]any); ok {
			events = append(events, m)
		}
	}
	return events
}
