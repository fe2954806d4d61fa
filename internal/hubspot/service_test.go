// internal/hubspot/service_test.go
package hubspot

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient("test-token", srv.URL, 5*time.Second)
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}
	return NewService(client, false)
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatalf("encode response: %v", err)
	}
}

func TestRecentCompaniesSearchRequest(t *testing.T) {
	var body SearchRequest
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/crm/v3/objects/companies/search" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Fatalf("authorization = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode search body: %v", err)
		}
		writeJSON(t, w, map[string]any{"total": 3, "results": []any{
			map[string]any{"id": "3", "properties": map[string]any{"name": "Gamma"}},
			map[string]any{"id": "2", "properties": map[string]any{"name": "Beta"}},
			map[string]any{"id": "1", "properties": map[string]any{"name": "Alpha"}},
		}})
	})

	got := svc.RecentCompanies(t.Context(), 3)

	if body.Limit != 3 {
		t.Fatalf("limit = %d, want 3", body.Limit)
	}
	if len(body.Sorts) != 1 || body.Sorts[0].PropertyName != "lastmodifieddate" || body.Sorts[0].Direction != "DESCENDING" {
		t.Fatalf("sorts = %+v", body.Sorts)
	}
	found := false
	for _, p := range body.Properties {
		if p == "hs_lastmodifieddate" {
			found = true
		}
	}
	if !found {
		t.Fatalf("properties missing hs_lastmodifieddate: %v", body.Properties)
	}

	var decoded []map[string]any
	if err := json.Unmarshal([]byte(got), &decoded); err != nil {
		t.Fatalf("payload not JSON: %v", err)
	}
	if len(decoded) != 3 || decoded[0]["id"] != "3" {
		t.Fatalf("expected newest-first results, got %s", got)
	}
}

func TestRecentContactsErrorPayload(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusInternalServerError)
	})

	got := svc.RecentContacts(t.Context(), 5)

	var decoded map[string]any
	if err := json.Unmarshal([]byte(got), &decoded); err != nil {
		t.Fatalf("error payload not JSON: %v", err)
	}
	msg, _ := decoded["error"].(string)
	if !strings.Contains(msg, "500") {
		t.Fatalf("error payload = %s", got)
	}
}

func TestCompanyActivityFormatsEngagements(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/crm/v4/objects/companies/77/associations/engagements"):
			if r.URL.Query().Get("limit") != "500" {
				t.Fatalf("association limit = %s", r.URL.Query().Get("limit"))
			}
			writeJSON(t, w, map[string]any{"results": []any{
				map[string]any{"toObjectId": 201},
			}})
		case r.URL.Path == "/engagements/v1/engagements/201":
			writeJSON(t, w, map[string]any{
				"engagement": map[string]any{"id": 201, "type": "NOTE"},
				"metadata":   map[string]any{"body": "intro call"},
			})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})

	got := svc.CompanyActivity(t.Context(), "77")

	var decoded []map[string]any
	if err := json.Unmarshal([]byte(got), &decoded); err != nil {
		t.Fatalf("payload not JSON: %v", err)
	}
	if len(decoded) != 1 {
		t.Fatalf("expected one activity, got %s", got)
	}
	if decoded[0]["content"] != "intro call" {
		t.Fatalf("content = %v", decoded[0]["content"])
	}
}

func TestCompanyActivityEngagementFailureAborts(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/crm/v4/") {
			writeJSON(t, w, map[string]any{"results": []any{map[string]any{"toObjectId": 1}}})
			return
		}
		http.Error(w, "nope", http.StatusForbidden)
	})

	got := svc.CompanyActivity(t.Context(), "77")

	var decoded map[string]any
	if err := json.Unmarshal([]byte(got), &decoded); err != nil {
		t.Fatalf("payload not JSON: %v", err)
	}
	if decoded["error"] == nil {
		t.Fatalf("expected error payload, got %s", got)
	}
}

func TestRecentEngagementsWindow(t *testing.T) {
	var query map[string]string
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/engagements/v1/engagements/recent/modified" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		query = map[string]string{
			"count":  r.URL.Query().Get("count"),
			"since":  r.URL.Query().Get("since"),
			"offset": r.URL.Query().Get("offset"),
		}
		writeJSON(t, w, map[string]any{"results": []any{
			map[string]any{
				"engagement": map[string]any{"id": 5, "type": "CALL"},
				"metadata":   map[string]any{"status": "COMPLETED"},
			},
		}})
	})

	before := time.Now().Add(-7 * 24 * time.Hour).UnixMilli()
	got := svc.RecentEngagements(t.Context(), 7, 50)
	after := time.Now().Add(-7 * 24 * time.Hour).UnixMilli()

	if query["count"] != "50" || query["offset"] != "0" {
		t.Fatalf("query = %v", query)
	}
	since, err := strconv.ParseInt(query["since"], 10, 64)
	if err != nil {
		t.Fatalf("since not numeric: %v", err)
	}
	if since < before || since > after {
		t.Fatalf("since %d outside [%d, %d]", since, before, after)
	}

	var decoded []map[string]any
	if err := json.Unmarshal([]byte(got), &decoded); err != nil {
		t.Fatalf("payload not JSON: %v", err)
	}
	if len(decoded) != 1 || decoded[0]["type"] != "CALL" {
		t.Fatalf("payload = %s", got)
	}
}

func TestCreateContactReportsExisting(t *testing.T) {
	created := false
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/crm/v3/objects/contacts/search":
			var req SearchRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Fatalf("decode search: %v", err)
			}
			if len(req.FilterGroups) != 1 || len(req.FilterGroups[0].Filters) != 2 {
				t.Fatalf("filters = %+v", req.FilterGroups)
			}
			writeJSON(t, w, map[string]any{"total": 1, "results": []any{
				map[string]any{"id": "900", "properties": map[string]any{"firstname": "Jane"}},
			}})
		case "/crm/v3/objects/contacts":
			created = true
			writeJSON(t, w, map[string]any{"id": "901"})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})

	got, err := svc.CreateContact(t.Context(), "Jane", "Doe", "", nil)
	if err != nil {
		t.Fatalf("CreateContact error: %v", err)
	}
	if !strings.HasPrefix(got, "Contact already exists: ") {
		t.Fatalf("expected existing-contact surface, got %s", got)
	}
	if created {
		t.Fatal("create endpoint must not be called when the contact exists")
	}
}

func TestCreateContactMergesProperties(t *testing.T) {
	var createBody map[string]any
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/crm/v3/objects/contacts/search":
			writeJSON(t, w, map[string]any{"total": 0, "results": []any{}})
		case "/crm/v3/objects/contacts":
			if err := json.NewDecoder(r.Body).Decode(&createBody); err != nil {
				t.Fatalf("decode create: %v", err)
			}
			writeJSON(t, w, map[string]any{"id": "901"})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})

	got, err := svc.CreateContact(t.Context(), "Jane", "Doe", "jane@example.com", map[string]any{"company": "Acme"})
	if err != nil {
		t.Fatalf("CreateContact error: %v", err)
	}

	properties, _ := createBody["properties"].(map[string]any)
	if properties["firstname"] != "Jane" || properties["lastname"] != "Doe" {
		t.Fatalf("properties = %v", properties)
	}
	if properties["email"] != "jane@example.com" || properties["company"] != "Acme" {
		t.Fatalf("properties = %v", properties)
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(got), &decoded); err != nil {
		t.Fatalf("payload not JSON: %v", err)
	}
	if decoded["id"] != "901" {
		t.Fatalf("payload = %s", got)
	}
}

func TestCreateCompanyUpstreamFailureIsAPIError(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/crm/v3/objects/companies/search":
			writeJSON(t, w, map[string]any{"total": 0, "results": []any{}})
		case "/crm/v3/objects/companies":
			http.Error(w, `{"message":"bad property"}`, http.StatusBadRequest)
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})

	_, err := svc.CreateCompany(t.Context(), "Acme", nil)
	if err == nil {
		t.Fatal("expected error from upstream failure")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", apiErr.StatusCode)
	}
}

func TestRecentEmailsChunksBatchReads(t *testing.T) {
	pageIDs := make([]any, 0, 12)
	for i := 1; i <= 12; i++ {
		pageIDs = append(pageIDs, map[string]any{"id": strconv.Itoa(i)})
	}

	batchCalls := 0
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/crm/v3/objects/emails":
			writeJSON(t, w, map[string]any{
				"results": pageIDs,
				"paging":  map[string]any{"next": map[string]any{"after": "cursor-13"}},
			})
		case "/crm/v3/objects/emails/batch/read":
			batchCalls++
			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Fatalf("decode batch body: %v", err)
			}
			inputs, _ := body["inputs"].([]any)
			if len(inputs) > 10 {
				t.Fatalf("batch size %d exceeds cap", len(inputs))
			}
			if batchCalls == 2 {
				http.Error(w, "slow down", http.StatusTooManyRequests)
				return
			}
			results := make([]any, 0, len(inputs))
			for _, input := range inputs {
				id := input.(map[string]any)["id"]
				results = append(results, map[string]any{
					"id": id,
					"properties": map[string]any{
						"subject":       "hello",
						"hs_email_text": "body text",
					},
				})
			}
			writeJSON(t, w, map[string]any{"results": results})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})

	got := svc.RecentEmails(t.Context(), 12, "")

	if batchCalls != 2 {
		t.Fatalf("batch calls = %d, want 2", batchCalls)
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(got), &decoded); err != nil {
		t.Fatalf("payload not JSON: %v", err)
	}
	results, _ := decoded["results"].([]any)
	if len(results) != 10 {
		t.Fatalf("expected the surviving chunk only, got %d results", len(results))
	}
	first := results[0].(map[string]any)
	if first["body"] != "body text" || first["subject"] != "hello" {
		t.Fatalf("first email = %v", first)
	}
	pagination := decoded["pagination"].(map[string]any)
	next := pagination["next"].(map[string]any)
	if next["after"] != "cursor-13" {
		t.Fatalf("pagination = %v", pagination)
	}
}

func TestRecentEmailsPageFailureKeepsShape(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	})

	got := svc.RecentEmails(t.Context(), 10, "")

	var decoded map[string]any
	if err := json.Unmarshal([]byte(got), &decoded); err != nil {
		t.Fatalf("payload not JSON: %v", err)
	}
	if decoded["error"] == nil {
		t.Fatalf("expected error field, got %s", got)
	}
	if _, ok := decoded["results"].([]any); !ok {
		t.Fatalf("results missing: %s", got)
	}
	if _, ok := decoded["pagination"].(map[string]any); !ok {
		t.Fatalf("pagination missing: %s", got)
	}
}

func TestInboxChannelsDegradesOnFailure(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "denied", http.StatusForbidden)
	})

	part := svc.inboxChannels(t.Context(), "1")

	if !part.Degraded {
		t.Fatal("expected degraded partial")
	}
	if part.Items == nil || len(part.Items) != 0 {
		t.Fatalf("items = %v", part.Items)
	}
}

func TestRecentConversationsDegradesIndependently(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/conversations/v3/conversations/inboxes":
			writeJSON(t, w, map[string]any{"results": []any{
				map[string]any{"id": "inbox-1", "name": "Support", "type": "INBOX"},
			}})
		case "/conversations/v3/conversations/channel-accounts":
			http.Error(w, "denied", http.StatusForbidden)
		case "/conversations/v3/conversations":
			writeJSON(t, w, map[string]any{"results": []any{
				map[string]any{"id": "thread-1", "status": "OPEN"},
			}})
		case "/conversations/v3/conversations/thread-1/messages":
			http.Error(w, "denied", http.StatusForbidden)
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})

	got := svc.RecentConversations(t.Context(), 10)

	var decoded []map[string]any
	if err := json.Unmarshal([]byte(got), &decoded); err != nil {
		t.Fatalf("payload not JSON: %v", err)
	}
	if len(decoded) != 1 {
		t.Fatalf("expected one inbox, got %s", got)
	}
	inbox := decoded[0]
	if channels, ok := inbox["channels"].([]any); !ok || len(channels) != 0 {
		t.Fatalf("channels should degrade to empty, got %v", inbox["channels"])
	}
	conversations, ok := inbox["conversations"].([]any)
	if !ok || len(conversations) != 1 {
		t.Fatalf("conversations = %v", inbox["conversations"])
	}
	conversation := conversations[0].(map[string]any)
	if messages, ok := conversation["messages"].([]any); !ok || len(messages) != 0 {
		t.Fatalf("messages should degrade to empty, got %v", conversation["messages"])
	}
}

func TestThreadLatestMessageEmptyThread(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("limit") != "1" {
			t.Fatalf("limit = %s", r.URL.Query().Get("limit"))
		}
		writeJSON(t, w, map[string]any{"results": []any{}})
	})

	got := svc.ThreadLatestMessage(t.Context(), "thread-9")
	if strings.TrimSpace(got) != "{}" {
		t.Fatalf("expected empty object, got %s", got)
	}
}

func TestThreadsForChannelQuery(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/conversations/v3/conversations/threads" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("channelId") != "ch-7" || r.URL.Query().Get("limit") != "4" {
			t.Fatalf("query = %s", r.URL.RawQuery)
		}
		writeJSON(t, w, map[string]any{"results": []any{
			map[string]any{"id": "t-1", "status": "OPEN", "associatedObjects": map[string]any{
				"contacts": []any{map[string]any{"id": "42", "type": "CONTACT"}},
			}},
		}})
	})

	got := svc.ThreadsForChannel(t.Context(), "ch-7", 4)

	var decoded []map[string]any
	if err := json.Unmarshal([]byte(got), &decoded); err != nil {
		t.Fatalf("payload not JSON: %v", err)
	}
	contacts := decoded[0]["associated_contacts"].([]any)
	if len(contacts) != 1 {
		t.Fatalf("associated_contacts = %v", contacts)
	}
}
