// internal/gateway/gateway.go
package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/mwiater/hublink/internal/hubspot"
	"github.com/mwiater/hublink/internal/logging"
)

// CRMService is the access-layer contract the gateway dispatches to. Query
// operations return an encoded payload; mutations may fail.
type CRMService interface {
	RecentCompanies(ctx context.Context, limit int) string
	RecentContacts(ctx context.Context, limit int) string
	CompanyActivity(ctx context.Context, companyID string) string
	RecentEngagements(ctx context.Context, days, limit int) string
	RecentEmails(ctx context.Context, limit int, after string) string
	RecentConversations(ctx context.Context, limit int) string
	Inboxes(ctx context.Context, limit int) string
	ChannelsForInbox(ctx context.Context, inboxID string) string
	AllChannels(ctx context.Context) string
	ThreadsForInbox(ctx context.Context, inboxID string, limit int) string
	ThreadsForChannel(ctx context.Context, channelID string, limit int) string
	ThreadMessages(ctx context.Context, threadID string, limit int) string
	ThreadLatestMessage(ctx context.Context, threadID string) string
	CreateContact(ctx context.Context, firstname, lastname, email string, properties map[string]any) (string, error)
	CreateCompany(ctx context.Context, name string, properties map[string]any) (string, error)
}

// Handler executes one tool against prepared arguments.
type Handler func(ctx context.Context, args map[string]any) (string, error)

type registration struct {
	def    Definition
	handle Handler
}

// Gateway holds the immutable tool registry. It carries no per-invocation
// state and is safe for concurrent dispatch.
type Gateway struct {
	registry map[string]registration
	order    []string
}

// New builds the registry, pairing every catalog entry with its handler.
// A catalog/handler mismatch is a programming error and fails construction.
func New(svc CRMService) *Gateway {
	handlers := map[string]Handler{
		ToolCreateContact: func(ctx context.Context, args map[string]any) (string, error) {
			p := createContactParams{
				Firstname:  stringArg(args, "firstname"),
				Lastname:   stringArg(args, "lastname"),
				Email:      stringArg(args, "email"),
				Properties: mapArg(args, "properties"),
			}
			return svc.CreateContact(ctx, p.Firstname, p.Lastname, p.Email, p.Properties)
		},
		ToolCreateCompany: func(ctx context.Context, args map[string]any) (string, error) {
			p := createCompanyParams{
				Name:       stringArg(args, "name"),
				Properties: mapArg(args, "properties"),
			}
			return svc.CreateCompany(ctx, p.Name, p.Properties)
		},
		ToolCompanyActivity: func(ctx context.Context, args map[string]any) (string, error) {
			p := companyActivityParams{CompanyID: stringArg(args, "company_id")}
			return svc.CompanyActivity(ctx, p.CompanyID), nil
		},
		ToolRecentEngagements: func(ctx context.Context, args map[string]any) (string, error) {
			p := engagementWindowParams{
				Days:  intArg(args, "days", 7),
				Limit: intArg(args, "limit", 50),
			}
			return svc.RecentEngagements(ctx, p.Days, p.Limit), nil
		},
		ToolActiveCompanies: func(ctx context.Context, args map[string]any) (string, error) {
			p := limitParams{Limit: intArg(args, "limit", 10)}
			return svc.RecentCompanies(ctx, p.Limit), nil
		},
		ToolActiveContacts: func(ctx context.Context, args map[string]any) (string, error) {
			p := limitParams{Limit: intArg(args, "limit", 10)}
			return svc.RecentContacts(ctx, p.Limit), nil
		},
		ToolRecentEmails: func(ctx context.Context, args map[string]any) (string, error) {
			p := emailPageParams{
				Limit: intArg(args, "limit", 10),
				After: stringArg(args, "after"),
			}
			return svc.RecentEmails(ctx, p.Limit, p.After), nil
		},
		ToolRecentConversations: func(ctx context.Context, args map[string]any) (string, error) {
			p := limitParams{Limit: intArg(args, "limit", 10)}
			return svc.RecentConversations(ctx, p.Limit), nil
		},
		ToolInboxes: func(ctx context.Context, args map[string]any) (string, error) {
			p := limitParams{Limit: intArg(args, "limit", 10)}
			return svc.Inboxes(ctx, p.Limit), nil
		},
		ToolChannelsForInbox: func(ctx context.Context, args map[string]any) (string, error) {
			p := inboxScopeParams{InboxID: stringArg(args, "inbox_id")}
			return svc.ChannelsForInbox(ctx, p.InboxID), nil
		},
		ToolAllChannels: func(ctx context.Context, args map[string]any) (string, error) {
			return svc.AllChannels(ctx), nil
		},
		ToolThreadsForInbox: func(ctx context.Context, args map[string]any) (string, error) {
			p := inboxScopeParams{
				InboxID: stringArg(args, "inbox_id"),
				Limit:   intArg(args, "limit", 10),
			}
			return svc.ThreadsForInbox(ctx, p.InboxID, p.Limit), nil
		},
		ToolThreadsForChannel: func(ctx context.Context, args map[string]any) (string, error) {
			p := channelScopeParams{
				ChannelID: stringArg(args, "channel_id"),
				Limit:     intArg(args, "limit", 10),
			}
			return svc.ThreadsForChannel(ctx, p.ChannelID, p.Limit), nil
		},
		ToolThreadMessages: func(ctx context.Context, args map[string]any) (string, error) {
			p := threadScopeParams{
				ThreadID: stringArg(args, "thread_id"),
				Limit:    intArg(args, "limit", 10),
			}
			return svc.ThreadMessages(ctx, p.ThreadID, p.Limit), nil
		},
		ToolThreadLatestMessage: func(ctx context.Context, args map[string]any) (string, error) {
			p := threadScopeParams{ThreadID: stringArg(args, "thread_id")}
			return svc.ThreadLatestMessage(ctx, p.ThreadID), nil
		},
	}

	g := &Gateway{registry: make(map[string]registration, len(handlers))}
	for _, def := range Definitions() {
		handle, ok := handlers[def.Name]
		if !ok {
			panic(fmt.Sprintf("tool %s has no handler", def.Name))
		}
		g.registry[def.Name] = registration{def: def, handle: handle}
		g.order = append(g.order, def.Name)
	}
	if len(handlers) != len(g.registry) {
		panic("handler registered for a tool missing from the catalog")
	}
	return g
}

// Tools returns the catalog in its canonical order.
func (g *Gateway) Tools() []Definition {
	defs := make([]Definition, 0, len(g.order))
	for _, name := range g.order {
		defs = append(defs, g.registry[name].def)
	}
	return defs
}

// Dispatch validates and executes one tool invocation. It always returns
// exactly one text content part; no failure, including a handler panic,
// escapes past this boundary.
func (g *Gateway) Dispatch(ctx context.Context, name string, args map[string]any) (parts []ContentPart) {
	defer func() {
		if r := recover(); r != nil {
			logging.Errorf("tool %s panicked: %v", name, r)
			parts = textParts(fmt.Sprintf("Error: %v", r))
		}
	}()

	reg, ok := g.registry[name]
	if !ok {
		return textParts(fmt.Sprintf("Unknown tool: %s", name))
	}
	if args == nil {
		args = map[string]any{}
	}

	prepared, err := prepareArguments(reg.def, args)
	if err != nil {
		return textParts(fmt.Sprintf("Error: %v", err))
	}

	logging.Debugf("dispatching %s", name)
	text, err := reg.handle(ctx, prepared)
	if err != nil {
		var apiErr *hubspot.APIError
		if errors.As(err, &apiErr) {
			return textParts(fmt.Sprintf("HubSpot API error: %v", apiErr))
		}
		return textParts(fmt.Sprintf("Error: %v", err))
	}
	return textParts(text)
}

func textParts(text string) []ContentPart {
	return []ContentPart{{Type: "text", Text: text}}
}
