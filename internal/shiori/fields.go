package shiori

import "strings"

// requiredMarker is the suffix some upstream producers append to keys of
// fields they consider required ("hotels" vs "hotels*").
const requiredMarker = "*"

// ResolveField looks up a logical field name against an object whose keys may
// be decorated with the required marker. Resolution order: the exact key, the
// key with the marker appended, the key with the marker stripped. Missing
// fields are not an error; the second return reports whether any form matched.
func ResolveField(obj map[string]any, key string) (any, bool) {
	if obj == nil {
		return nil, false
	}
	if v, ok := obj[key]; ok {
		return v, true
	}
	if v, ok := obj[key+requiredMarker]; ok {
		return v, true
	}
	if stripped := strings.TrimSuffix(key, requiredMarker); stripped != key {
		if v, ok := obj[stripped]; ok {
			return v, true
		}
	}
	return nil, false
}

// ResolveString resolves a field and coerces it to a trimmed string.
// Non-string values and missing fields yield "".
func ResolveString(obj map[string]any, key string) string {
	v, ok := ResolveField(obj, key)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

// ResolveSlice resolves a field holding a JSON array. Missing or non-array
// values yield nil.
func ResolveSlice(obj map[string]any, key string) []any {
	v, ok := ResolveField(obj, key)
	if !ok {
		return nil
	}
	s, _ := v.([]any)
	return s
}

// ResolveMap resolves a field holding a JSON object. Missing or non-object
// values yield nil.
func ResolveMap(obj map[string]any, key string) map[string]any {
	v, ok := ResolveField(obj, key)
	if !ok {
		return nil
	}
	m, _ := v.(map[string]any)
	return m
}
