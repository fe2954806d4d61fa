// internal/gateway/catalog.go
// Package gateway owns the tool catalog and dispatches invocations to the
// HubSpot access layer.
package gateway

// Definition describes the metadata the MCP server exposes for a tool.
type Definition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

// ContentPart represents a piece of data returned from a tool invocation.
type ContentPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Canonical tool names. They match the original wire protocol and must not
// change without breaking callers.
const (
	ToolCreateContact       = "hubspot_create_contact"
	ToolCreateCompany       = "hubspot_create_company"
	ToolCompanyActivity     = "hubspot_get_company_activity"
	ToolRecentEngagements   = "hubspot_get_recent_engagements"
	ToolActiveCompanies     = "hubspot_get_active_companies"
	ToolActiveContacts      = "hubspot_get_active_contacts"
	ToolRecentEmails        = "hubspot_get_recent_emails"
	ToolRecentConversations = "hubspot_conversations_recent"
	ToolInboxes             = "hubspot_conversations_inboxes"
	ToolChannelsForInbox    = "hubspot_conversations_channels_for_inbox"
	ToolAllChannels         = "hubspot_conversations_all_channels"
	ToolThreadsForInbox     = "hubspot_conversations_threads_for_inbox"
	ToolThreadsForChannel   = "hubspot_conversations_threads_for_channel"
	ToolThreadMessages      = "hubspot_conversations_thread_messages"
	ToolThreadLatestMessage = "hubspot_conversations_thread_latest_message"
)

func limitProperty(description string, fallback int) map[string]any {
	return map[string]any{
		"type":        "integer",
		"description": description,
		"default":     fallback,
	}
}

// Definitions returns the full tool catalog in its canonical order.
func Definitions() []Definition {
	return []Definition{
		{
			Name:        ToolCreateContact,
			Description: "Create a new contact in HubSpot",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"firstname":  map[string]any{"type": "string", "description": "Contact's first name"},
					"lastname":   map[string]any{"type": "string", "description": "Contact's last name"},
					"email":      map[string]any{"type": "string", "description": "Contact's email address"},
					"properties": map[string]any{"type": "object", "description": "Additional contact properties"},
				},
				"required": []string{"firstname", "lastname"},
			},
		},
		{
			Name:        ToolCreateCompany,
			Description: "Create a new company in HubSpot",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"name":       map[string]any{"type": "string", "description": "Company name"},
					"properties": map[string]any{"type": "object", "description": "Additional company properties"},
				},
				"required": []string{"name"},
			},
		},
		{
			Name:        ToolCompanyActivity,
			Description: "Get activity history for a specific company",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"company_id": map[string]any{"type": "string", "description": "HubSpot company ID"},
				},
				"required": []string{"company_id"},
			},
		},
		{
			Name:        ToolRecentEngagements,
			Description: "Get recent engagement activities across all contacts and companies",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"days":  map[string]any{"type": "integer", "description": "Number of days to look back (default: 7)", "default": 7},
					"limit": limitProperty("Maximum number of engagements to return (default: 50)", 50),
				},
			},
		},
		{
			Name:        ToolActiveCompanies,
			Description: "Get most recently active companies from HubSpot",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"limit": limitProperty("Maximum number of companies to return (default: 10)", 10),
				},
			},
		},
		{
			Name:        ToolActiveContacts,
			Description: "Get most recently active contacts from HubSpot",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"limit": limitProperty("Maximum number of contacts to return (default: 10)", 10),
				},
			},
		},
		{
			Name:        ToolRecentEmails,
			Description: "Get recent emails from HubSpot with their bodies",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"limit": limitProperty("Maximum number of emails to return (default: 10)", 10),
					"after": map[string]any{"type": "string", "description": "Pagination cursor from a previous call"},
				},
			},
		},
		{
			Name:        ToolRecentConversations,
			Description: "Get recent conversations from HubSpot inbox",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"limit": limitProperty("Maximum number of conversations to return (default: 10)", 10),
				},
			},
		},
		{
			Name:        ToolInboxes,
			Description: "Get HubSpot conversation inboxes",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"limit": limitProperty("Maximum number of inboxes to return (default: 10)", 10),
				},
			},
		},
		{
			Name:        ToolChannelsForInbox,
			Description: "Get channels for a specific HubSpot inbox",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"inbox_id": map[string]any{"type": "string", "description": "The ID of the inbox to get channels for"},
				},
				"required": []string{"inbox_id"},
			},
		},
		{
			Name:        ToolAllChannels,
			Description: "Get all HubSpot channel accounts",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
		{
			Name:        ToolThreadsForInbox,
			Description: "Get conversation threads for a specific inbox",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"inbox_id": map[string]any{"type": "string", "description": "The ID of the inbox to get threads for"},
					"limit":    limitProperty("Maximum number of threads to return (default: 10)", 10),
				},
				"required": []string{"inbox_id"},
			},
		},
		{
			Name:        ToolThreadsForChannel,
			Description: "Get conversation threads for a specific channel",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"channel_id": map[string]any{"type": "string", "description": "The ID of the channel to get threads for"},
					"limit":      limitProperty("Maximum number of threads to return (default: 10)", 10),
				},
				"required": []string{"channel_id"},
			},
		},
		{
			Name:        ToolThreadMessages,
			Description: "Get messages from a conversation thread",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"thread_id": map[string]any{"type": "string", "description": "The ID of the thread to get messages from"},
					"limit":     limitProperty("Maximum number of messages to return (default: 10)", 10),
				},
				"required": []string{"thread_id"},
			},
		},
		{
			Name:        ToolThreadLatestMessage,
			Description: "Get the latest message from a conversation thread",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"thread_id": map[string]any{"type": "string", "description": "The ID of the thread to get the latest message from"},
				},
				"required": []string{"thread_id"},
			},
		},
	}
}
