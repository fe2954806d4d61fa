// internal/hubspot/conversations.go
package hubspot

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/mwiater/hublink/internal/logging"
)

// Partial is the outcome of one fail-soft sub-fetch. Degraded distinguishes
// "the upstream returned nothing" from "the fetch failed and was replaced by
// an empty result".
type Partial struct {
	Items    []map[string]any
	Degraded bool
}

func fetchedPart(items []map[string]any) Partial {
	if items == nil {
		items = make([]map[string]any, 0)
	}
	return Partial{Items: items}
}

func degradedPart(context string, err error) Partial {
	logging.Warnf("%s: %v", context, err)
	return Partial{Items: make([]map[string]any, 0), Degraded: true}
}

func formatInbox(inbox map[string]any) map[string]any {
	return map[string]any{
		"id":          inbox["id"],
		"type":        inbox["type"],
		"name":        inbox["name"],
		"created_at":  inbox["createdAt"],
		"updated_at":  inbox["updatedAt"],
		"archived":    inbox["archived"],
		"archived_at": inbox["archivedAt"],
	}
}

func formatChannel(channel map[string]any) map[string]any {
	return map[string]any{
		"id":                  channel["id"],
		"name":                channel["name"],
		"channel_id":          channel["channelId"],
		"inbox_id":            channel["inboxId"],
		"created_at":          channel["createdAt"],
		"archived_at":         channel["archivedAt"],
		"archived":            channel["archived"],
		"authorized":          channel["authorized"],
		"active":              channel["active"],
		"delivery_identifier": channel["deliveryIdentifier"],
	}
}

func formatThread(thread map[string]any) map[string]any {
	associated := asMap(thread["associatedObjects"])
	return map[string]any{
		"id":                   thread["id"],
		"type":                 thread["type"],
		"status":               thread["status"],
		"created_time":         thread["createdTime"],
		"last_updated_time":    thread["updatedTime"],
		"subject":              stringField(thread, "subject"),
		"associated_contacts":  associatedRefs(associated["contacts"]),
		"associated_companies": associatedRefs(associated["companies"]),
	}
}

func associatedRefs(v any) []map[string]any {
	refs := make([]map[string]any, 0)
	for _, item := range asList(v) {
		entry := asMap(item)
		refs = append(refs, map[string]any{"id": entry["id"], "type": entry["type"]})
	}
	return refs
}

func formatMessage(message map[string]any) map[string]any {
	sender := asMap(message["sender"])
	recipient := asMap(message["recipient"])
	return map[string]any{
		"id":           message["id"],
		"type":         message["type"],
		"status":       message["status"],
		"created_time": message["createdTime"],
		"text":         stringField(message, "text"),
		"sender": map[string]any{
			"id":    sender["id"],
			"type":  sender["type"],
			"email": sender["email"],
		},
		"recipient": map[string]any{
			"id":   recipient["id"],
			"type": recipient["type"],
		},
	}
}

// inboxChannels fetches the channel accounts attached to one inbox,
// degrading to an empty list on failure.
func (s *Service) inboxChannels(ctx context.Context, inboxID any) Partial {
	params := url.Values{}
	params.Set("inboxId", fmt.Sprintf("%v", inboxID))
	raw, err := s.client.Call(ctx, http.MethodGet, "/conversations/v3/conversations/channel-accounts", params, nil)
	if err != nil {
		return degradedPart(fmt.Sprintf("failed to fetch channels for inbox %v", inboxID), err)
	}
	channels := make([]map[string]any, 0)
	for _, item := range asList(raw["results"]) {
		channels = append(channels, formatChannel(asMap(item)))
	}
	return fetchedPart(channels)
}

// threadMessagesPartial fetches the messages of one conversation, degrading
// to an empty list on failure.
func (s *Service) threadMessagesPartial(ctx context.Context, threadID any) Partial {
	path := fmt.Sprintf("/conversations/v3/conversations/%v/messages", threadID)
	raw, err := s.client.Call(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return degradedPart(fmt.Sprintf("failed to fetch messages for conversation %v", threadID), err)
	}
	messages := make([]map[string]any, 0)
	for _, item := range asList(raw["results"]) {
		messages = append(messages, formatMessage(asMap(item)))
	}
	return fetchedPart(messages)
}

// inboxConversations fetches one inbox's conversations, each with its
// messages. A failed conversation list degrades to empty; a failed message
// fetch degrades that conversation's messages only.
func (s *Service) inboxConversations(ctx context.Context, inboxID any, limit int) Partial {
	params := url.Values{}
	params.Set("inboxId", fmt.Sprintf("%v", inboxID))
	params.Set("limit", fmt.Sprintf("%d", limit))
	raw, err := s.client.Call(ctx, http.MethodGet, "/conversations/v3/conversations", params, nil)
	if err != nil {
		return degradedPart(fmt.Sprintf("failed to fetch conversations for inbox %v", inboxID), err)
	}

	conversations := make([]map[string]any, 0)
	for _, item := range asList(raw["results"]) {
		thread := asMap(item)
		formatted := formatThread(thread)
		formatted["messages"] = s.threadMessagesPartial(ctx, thread["id"]).Items
		conversations = append(conversations, formatted)
	}
	return fetchedPart(conversations)
}

// RecentConversations assembles up to limit inboxes with their channels,
// conversations and messages. Sub-fetch failures degrade independently;
// only the top-level inbox listing can fail the whole call.
func (s *Service) RecentConversations(ctx context.Context, limit int) string {
	params := url.Values{}
	params.Set("limit", fmt.Sprintf("%d", limit))
	raw, err := s.client.Call(ctx, http.MethodGet, "/conversations/v3/conversations/inboxes", params, nil)
	if err != nil {
		logging.Errorf("recent conversations: %v", err)
		return errorPayload(err)
	}

	inboxes := make([]map[string]any, 0)
	for _, item := range asList(raw["results"]) {
		inbox := asMap(item)
		formatted := formatInbox(inbox)
		formatted["channels"] = s.inboxChannels(ctx, inbox["id"]).Items
		formatted["conversations"] = s.inboxConversations(ctx, inbox["id"], limit).Items
		inboxes = append(inboxes, formatted)
	}
	s.debugDump("recent conversations", inboxes)
	return encodePayload(inboxes)
}

// Inboxes lists conversation inboxes, up to limit.
func (s *Service) Inboxes(ctx context.Context, limit int) string {
	params := url.Values{}
	params.Set("limit", fmt.Sprintf("%d", limit))
	raw, err := s.client.Call(ctx, http.MethodGet, "/conversations/v3/conversations/inboxes", params, nil)
	if err != nil {
		logging.Errorf("inboxes: %v", err)
		return errorPayload(err)
	}
	inboxes := make([]map[string]any, 0)
	for _, item := range asList(raw["results"]) {
		inboxes = append(inboxes, formatInbox(asMap(item)))
	}
	return encodePayload(inboxes)
}

// ChannelsForInbox lists the channel accounts attached to one inbox.
func (s *Service) ChannelsForInbox(ctx context.Context, inboxID string) string {
	params := url.Values{}
	params.Set("inboxId", inboxID)
	raw, err := s.client.Call(ctx, http.MethodGet, "/conversations/v3/conversations/channel-accounts", params, nil)
	if err != nil {
		logging.Errorf("channels for inbox %s: %v", inboxID, err)
		return errorPayload(err)
	}
	channels := make([]map[string]any, 0)
	for _, item := range asList(raw["results"]) {
		channels = append(channels, formatChannel(asMap(item)))
	}
	return encodePayload(channels)
}

// AllChannels lists every channel account, unfiltered.
func (s *Service) AllChannels(ctx context.Context) string {
	raw, err := s.client.Call(ctx, http.MethodGet, "/conversations/v3/conversations/channel-accounts", nil, nil)
	if err != nil {
		logging.Errorf("channel accounts: %v", err)
		return errorPayload(err)
	}
	channels := make([]map[string]any, 0)
	for _, item := range asList(raw["results"]) {
		channels = append(channels, formatChannel(asMap(item)))
	}
	return encodePayload(channels)
}

// ThreadsForInbox lists conversation threads for one inbox.
func (s *Service) ThreadsForInbox(ctx context.Context, inboxID string, limit int) string {
	params := url.Values{}
	params.Set("inboxId", inboxID)
	params.Set("limit", fmt.Sprintf("%d", limit))
	raw, err := s.client.Call(ctx, http.MethodGet, "/conversations/v3/conversations/threads", params, nil)
	if err != nil {
		logging.Errorf("threads for inbox %s: %v", inboxID, err)
		return errorPayload(err)
	}
	threads := make([]map[string]any, 0)
	for _, item := range asList(raw["results"]) {
		threads = append(threads, formatThread(asMap(item)))
	}
	return encodePayload(threads)
}

// ThreadsForChannel lists conversation threads for one channel.
func (s *Service) ThreadsForChannel(ctx context.Context, channelID string, limit int) string {
	params := url.Values{}
	params.Set("channelId", channelID)
	params.Set("limit", fmt.Sprintf("%d", limit))
	raw, err := s.client.Call(ctx, http.MethodGet, "/conversations/v3/conversations/threads", params, nil)
	if err != nil {
		logging.Errorf("threads for channel %s: %v", channelID, err)
		return errorPayload(err)
	}
	threads := make([]map[string]any, 0)
	for _, item := range asList(raw["results"]) {
		threads = append(threads, formatThread(asMap(item)))
	}
	return encodePayload(threads)
}

// ThreadMessages lists the messages of one conversation thread.
func (s *Service) ThreadMessages(ctx context.Context, threadID string, limit int) string {
	params := url.Values{}
	params.Set("limit", fmt.Sprintf("%d", limit))
	path := fmt.Sprintf("/conversations/v3/conversations/threads/%s/messages", threadID)
	raw, err := s.client.Call(ctx, http.MethodGet, path, params, nil)
	if err != nil {
		logging.Errorf("messages for thread %s: %v", threadID, err)
		return errorPayload(err)
	}
	messages := make([]map[string]any, 0)
	for _, item := range asList(raw["results"]) {
		messages = append(messages, formatMessage(asMap(item)))
	}
	return encodePayload(messages)
}

// ThreadLatestMessage returns the newest message of one conversation thread,
// or an empty object when the thread has none.
func (s *Service) ThreadLatestMessage(ctx context.Context, threadID string) string {
	params := url.Values{}
	params.Set("limit", "1")
	path := fmt.Sprintf("/conversations/v3/conversations/threads/%s/messages", threadID)
	raw, err := s.client.Call(ctx, http.MethodGet, path, params, nil)
	if err != nil {
		logging.Errorf("latest message for thread %s: %v", threadID, err)
		return errorPayload(err)
	}
	results := asList(raw["results"])
	if len(results) == 0 {
		return encodePayload(map[string]any{})
	}
	return encodePayload(formatMessage(asMap(results[0])))
}
