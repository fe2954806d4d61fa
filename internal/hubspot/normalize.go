// internal/hubspot/normalize.go
package hubspot

import (
	"encoding/json"
	"fmt"
	"time"
)

// Normalize walks a decoded payload tree and renders every platform-native
// temporal value to a plain string: time.Time becomes ISO-8601, a bare
// *time.Location becomes its fixed "UTC±HH:MM" offset. The result is directly
// JSON-encodable with no further transformation.
func Normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = Normalize(item)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = Normalize(item)
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = Normalize(item)
		}
		return out
	case time.Time:
		return t.Format(time.RFC3339)
	case *time.Location:
		return formatUTCOffset(t)
	default:
		return v
	}
}

// formatUTCOffset renders a timezone as "UTC+08:00" / "UTC-05:00".
func formatUTCOffset(loc *time.Location) string {
	_, offset := time.Now().In(loc).Zone()
	sign := "+"
	if offset < 0 {
		sign = "-"
		offset = -offset
	}
	return fmt.Sprintf("UTC%s%02d:%02d", sign, offset/3600, (offset%3600)/60)
}

// encodePayload normalizes a record tree and encodes it as JSON text. An
// encoding failure degrades to an error payload rather than propagating.
func encodePayload(v any) string {
	data, err := json.Marshal(Normalize(v))
	if err != nil {
		return errorPayload(err)
	}
	return string(data)
}

// errorPayload renders an error as the {"error": ...} wire form.
func errorPayload(err error) string {
	data, mErr := json.Marshal(map[string]any{"error": err.Error()})
	if mErr != nil {
		return `{"error":"internal encoding failure"}`
	}
	return string(data)
}

// asMap returns v as a map, or an empty map when v is anything else.
func asMap(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

// asList returns v as a slice, or nil when v is anything else.
func asList(v any) []any {
	if l, ok := v.([]any); ok {
		return l
	}
	return nil
}

// stringField returns the named string field, defaulting missing or
// non-string values to empty.
func stringField(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}
