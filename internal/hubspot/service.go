// internal/hubspot/service.go
package hubspot

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/k0kubun/pp"

	"github.com/mwiater/hublink/internal/logging"
)

// Service exposes one operation per logical CRM query. Query operations
// never fail to the caller; upstream errors come back as {"error": ...}
// payloads. The mutation operations return errors so the gateway can apply
// its own error surface.
type Service struct {
	client *Client
	debug  bool
}

// NewService wraps an authenticated client. With debug enabled, raw shaped
// payloads are dumped to stderr before encoding.
func NewService(client *Client, debug bool) *Service {
	return &Service{client: client, debug: debug}
}

func (s *Service) debugDump(label string, payload any) {
	if !s.debug {
		return
	}
	_, _ = pp.Fprintf(os.Stderr, "%s: %v\n", label, payload)
}

// RecentCompanies returns up to limit companies ordered newest-modified
// first, projected to the standard company property set.
func (s *Service) RecentCompanies(ctx context.Context, limit int) string {
	resp, err := s.client.Search(ctx, "companies", SearchRequest{
		Sorts:      []SearchSort{{PropertyName: "lastmodifieddate", Direction: "DESCENDING"}},
		Limit:      limit,
		Properties: []string{"name", "domain", "website", "phone", "industry", "hs_lastmodifieddate"},
	})
	if err != nil {
		logging.Errorf("recent companies: %v", err)
		return errorPayload(err)
	}
	s.debugDump("recent companies", resp.Results)
	return encodePayload(resp.Results)
}

// RecentContacts returns up to limit contacts ordered newest-modified first.
func (s *Service) RecentContacts(ctx context.Context, limit int) string {
	resp, err := s.client.Search(ctx, "contacts", SearchRequest{
		Sorts:      []SearchSort{{PropertyName: "lastmodifieddate", Direction: "DESCENDING"}},
		Limit:      limit,
		Properties: []string{"firstname", "lastname", "email", "phone", "company", "hs_lastmodifieddate", "lastmodifieddate"},
	})
	if err != nil {
		logging.Errorf("recent contacts: %v", err)
		return errorPayload(err)
	}
	s.debugDump("recent contacts", resp.Results)
	return encodePayload(resp.Results)
}

// CompanyActivity fetches every engagement associated with a company (one
// page of up to 500 associations) and formats each by its kind.
func (s *Service) CompanyActivity(ctx context.Context, companyID string) string {
	associations, err := s.client.Associations(ctx, "companies", companyID, "engagements", 500)
	if err != nil {
		logging.Errorf("company activity %s: %v", companyID, err)
		return errorPayload(err)
	}

	activities := make([]map[string]any, 0, len(associations))
	for _, association := range associations {
		path := fmt.Sprintf("/engagements/v1/engagements/%d", association.ToObjectID)
		raw, err := s.client.Call(ctx, http.MethodGet, path, nil, nil)
		if err != nil {
			logging.Errorf("engagement %d: %v", association.ToObjectID, err)
			return errorPayload(err)
		}
		activities = append(activities, FormatEngagement(raw))
	}
	s.debugDump("company activity", activities)
	return encodePayload(activities)
}

// RecentEngagements fetches engagements modified within the past days,
// newest first, up to limit.
func (s *Service) RecentEngagements(ctx context.Context, days, limit int) string {
	since := time.Now().Add(-time.Duration(days) * 24 * time.Hour).UnixMilli()

	params := url.Values{}
	params.Set("count", fmt.Sprintf("%d", limit))
	params.Set("since", fmt.Sprintf("%d", since))
	params.Set("offset", "0")
	raw, err := s.client.Call(ctx, http.MethodGet, "/engagements/v1/engagements/recent/modified", params, nil)
	if err != nil {
		logging.Errorf("recent engagements: %v", err)
		return errorPayload(err)
	}

	engagements := make([]map[string]any, 0)
	for _, item := range asList(raw["results"]) {
		engagements = append(engagements, FormatEngagement(asMap(item)))
	}
	s.debugDump("recent engagements", engagements)
	return encodePayload(engagements)
}

// emailBatchSize is the HubSpot batch-read cap.
const emailBatchSize = 10

// RecentEmails returns one page of CRM email objects with their bodies,
// flattened, plus the next-page cursor. A failed batch chunk is skipped with
// a warning instead of failing the page.
func (s *Service) RecentEmails(ctx context.Context, limit int, after string) string {
	params := url.Values{}
	params.Set("limit", fmt.Sprintf("%d", limit))
	params.Set("archived", "false")
	if after != "" {
		params.Set("after", after)
	}
	page, err := s.client.Call(ctx, http.MethodGet, "/crm/v3/objects/emails", params, nil)
	if err != nil {
		logging.Errorf("recent emails: %v", err)
		return encodePayload(map[string]any{
			"error":      err.Error(),
			"results":    []any{},
			"pagination": map[string]any{"next": map[string]any{"after": nil}},
		})
	}

	ids := make([]string, 0)
	for _, item := range asList(page["results"]) {
		if id := stringField(asMap(item), "id"); id != "" {
			ids = append(ids, id)
		}
	}

	emails := make([]map[string]any, 0, len(ids))
	for start := 0; start < len(ids); start += emailBatchSize {
		end := min(start+emailBatchSize, len(ids))
		chunk, err := s.readEmailBatch(ctx, ids[start:end])
		if err != nil {
			logging.Warnf("email batch read failed: %v", err)
			continue
		}
		emails = append(emails, chunk...)
	}

	var nextAfter any
	if paging := asMap(asMap(page["paging"])["next"]); paging["after"] != nil {
		nextAfter = paging["after"]
	}
	s.debugDump("recent emails", emails)
	return encodePayload(map[string]any{
		"results":    emails,
		"pagination": map[string]any{"next": map[string]any{"after": nextAfter}},
	})
}

func (s *Service) readEmailBatch(ctx context.Context, ids []string) ([]map[string]any, error) {
	inputs := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		inputs = append(inputs, map[string]any{"id": id})
	}
	body := map[string]any{
		"inputs": inputs,
		"properties": []string{
			"subject", "hs_email_text", "hs_email_html", "hs_email_from",
			"hs_email_to", "hs_email_cc", "hs_email_bcc", "createdAt", "updatedAt",
		},
	}
	raw, err := s.client.Call(ctx, http.MethodPost, "/crm/v3/objects/emails/batch/read", nil, body)
	if err != nil {
		return nil, err
	}

	emails := make([]map[string]any, 0)
	for _, item := range asList(raw["results"]) {
		email := asMap(item)
		properties := asMap(email["properties"])
		body := stringField(properties, "hs_email_text")
		if body == "" {
			body = stringField(properties, "hs_email_html")
		}
		emails = append(emails, map[string]any{
			"id":         email["id"],
			"created_at": properties["createdAt"],
			"updated_at": properties["updatedAt"],
			"subject":    stringField(properties, "subject"),
			"from":       stringField(properties, "hs_email_from"),
			"to":         stringField(properties, "hs_email_to"),
			"cc":         stringField(properties, "hs_email_cc"),
			"bcc":        stringField(properties, "hs_email_bcc"),
			"body":       body,
		})
	}
	return emails, nil
}

// CreateContact creates a contact unless one with the same first/last name
// (and company, when supplied) already exists; in that case it reports the
// existing record instead of creating a duplicate.
func (s *Service) CreateContact(ctx context.Context, firstname, lastname, email string, properties map[string]any) (string, error) {
	filters := []Filter{
		{PropertyName: "firstname", Operator: "EQ", Value: firstname},
		{PropertyName: "lastname", Operator: "EQ", Value: lastname},
	}
	if company := stringField(properties, "company"); company != "" {
		filters = append(filters, Filter{PropertyName: "company", Operator: "EQ", Value: company})
	}

	existing, err := s.client.Search(ctx, "contacts", SearchRequest{
		FilterGroups: []FilterGroup{{Filters: filters}},
	})
	if err != nil {
		return "", err
	}
	if existing.Total > 0 {
		return "Contact already exists: " + encodePayload(existing.Results[0]), nil
	}

	merged := map[string]any{
		"firstname": firstname,
		"lastname":  lastname,
	}
	if email != "" {
		merged["email"] = email
	}
	for key, value := range properties {
		merged[key] = value
	}

	created, err := s.client.Create(ctx, "contacts", merged)
	if err != nil {
		return "", err
	}
	return encodePayload(created), nil
}

// CreateCompany creates a company unless one with the same name exists.
func (s *Service) CreateCompany(ctx context.Context, name string, properties map[string]any) (string, error) {
	existing, err := s.client.Search(ctx, "companies", SearchRequest{
		FilterGroups: []FilterGroup{{Filters: []Filter{
			{PropertyName: "name", Operator: "EQ", Value: name},
		}}},
	})
	if err != nil {
		return "", err
	}
	if existing.Total > 0 {
		return "Company already exists: " + encodePayload(existing.Results[0]), nil
	}

	merged := map[string]any{"name": name}
	for key, value := range properties {
		merged[key] = value
	}

	created, err := s.client.Create(ctx, "companies", merged)
	if err != nil {
		return "", err
	}
	return encodePayload(created), nil
}
