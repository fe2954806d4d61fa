// internal/hubspot/normalize_test.go
package hubspot

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNormalizeRendersTimes(t *testing.T) {
	ts := time.Date(2024, 3, 9, 15, 4, 5, 0, time.UTC)
	got := Normalize(map[string]any{
		"created_at": ts,
		"nested":     map[string]any{"updated_at": ts},
		"list":       []any{ts, "plain"},
	})

	m, ok := got.(map[string]any)
	if !ok {
		t.Fatalf("expected map, got %T", got)
	}
	if m["created_at"] != "2024-03-09T15:04:05Z" {
		t.Fatalf("created_at = %v", m["created_at"])
	}
	nested := m["nested"].(map[string]any)
	if nested["updated_at"] != "2024-03-09T15:04:05Z" {
		t.Fatalf("nested updated_at = %v", nested["updated_at"])
	}
	list := m["list"].([]any)
	if list[0] != "2024-03-09T15:04:05Z" || list[1] != "plain" {
		t.Fatalf("list = %v", list)
	}
}

func TestNormalizeRendersLocations(t *testing.T) {
	cases := []struct {
		name   string
		offset int
		want   string
	}{
		{"UTC", 0, "UTC+00:00"},
		{"IST", 5*3600 + 30*60, "UTC+05:30"},
		{"PST", -8 * 3600, "UTC-08:00"},
	}
	for _, tc := range cases {
		loc := time.FixedZone(tc.name, tc.offset)
		if got := Normalize(loc); got != tc.want {
			t.Fatalf("Normalize(%s) = %v, want %s", tc.name, got, tc.want)
		}
	}
}

func TestNormalizeOutputIsEncodable(t *testing.T) {
	tree := map[string]any{
		"timestamp": time.Now(),
		"zone":      time.UTC,
		"records":   []map[string]any{{"at": time.Now()}},
	}
	if _, err := json.Marshal(Normalize(tree)); err != nil {
		t.Fatalf("normalized tree not encodable: %v", err)
	}
}

func TestErrorPayloadShape(t *testing.T) {
	payload := errorPayload(errors.New("boom"))
	var decoded map[string]any
	if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
		t.Fatalf("error payload not JSON: %v", err)
	}
	if decoded["error"] != "boom" {
		t.Fatalf("error payload = %s", payload)
	}
}

func TestEncodePayloadEmptyList(t *testing.T) {
	got := encodePayload([]map[string]any{})
	if strings.TrimSpace(got) != "[]" {
		t.Fatalf("expected empty list encoding, got %s", got)
	}
}
