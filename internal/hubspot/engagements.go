// internal/hubspot/engagements.go
package hubspot

// engagementKind tags the five engagement shapes HubSpot reports, plus an
// unknown fallback for kinds added upstream after this code was written.
type engagementKind string

const (
	kindNote    engagementKind = "NOTE"
	kindEmail   engagementKind = "EMAIL"
	kindTask    engagementKind = "TASK"
	kindMeeting engagementKind = "MEETING"
	kindCall    engagementKind = "CALL"
)

// FormatEngagement flattens one raw engagement envelope ({engagement,
// metadata, associations}) into the outbound record shape. Missing nested
// fields default to empty values; an unknown kind simply carries no content.
func FormatEngagement(raw map[string]any) map[string]any {
	engagement := asMap(raw["engagement"])
	metadata := asMap(raw["metadata"])

	formatted := map[string]any{
		"id":           engagement["id"],
		"type":         engagement["type"],
		"created_at":   engagement["createdAt"],
		"last_updated": engagement["lastUpdated"],
		"created_by":   engagement["createdBy"],
		"modified_by":  engagement["modifiedBy"],
		"timestamp":    engagement["timestamp"],
		"associations": asMap(raw["associations"]),
	}

	kind := engagementKind(stringField(engagement, "type"))
	if content, ok := engagementContent(kind, metadata); ok {
		formatted["content"] = content
	}
	return formatted
}

// engagementContent builds the kind-specific content value. The second return
// is false for kinds this code does not recognize.
func engagementContent(kind engagementKind, metadata map[string]any) (any, bool) {
	switch kind {
	case kindNote:
		return stringField(metadata, "body"), true
	case kindEmail:
		return emailContent(metadata), true
	case kindTask:
		return map[string]any{
			"subject":         stringField(metadata, "subject"),
			"body":            stringField(metadata, "body"),
			"status":          stringField(metadata, "status"),
			"for_object_type": stringField(metadata, "forObjectType"),
		}, true
	case kindMeeting:
		return map[string]any{
			"title":          stringField(metadata, "title"),
			"body":           stringField(metadata, "body"),
			"start_time":     metadata["startTime"],
			"end_time":       metadata["endTime"],
			"internal_notes": stringField(metadata, "internalMeetingNotes"),
		}, true
	case kindCall:
		return map[string]any{
			"body":        stringField(metadata, "body"),
			"from_number": stringField(metadata, "fromNumber"),
			"to_number":   stringField(metadata, "toNumber"),
			"duration_ms": metadata["durationMilliseconds"],
			"status":      stringField(metadata, "status"),
			"disposition": stringField(metadata, "disposition"),
		}, true
	default:
		return nil, false
	}
}

func emailContent(metadata map[string]any) map[string]any {
	body := stringField(metadata, "text")
	if body == "" {
		body = stringField(metadata, "html")
	}
	return map[string]any{
		"subject": stringField(metadata, "subject"),
		"from":    emailAddress(asMap(metadata["from"])),
		"to":      emailAddressList(metadata["to"]),
		"cc":      emailAddressList(metadata["cc"]),
		"bcc":     emailAddressList(metadata["bcc"]),
		"sender": map[string]any{
			"email": stringField(asMap(metadata["sender"]), "email"),
		},
		"body": body,
	}
}

func emailAddress(entry map[string]any) map[string]any {
	return map[string]any{
		"raw":       stringField(entry, "raw"),
		"email":     stringField(entry, "email"),
		"firstName": stringField(entry, "firstName"),
		"lastName":  stringField(entry, "lastName"),
	}
}

func emailAddressList(v any) []map[string]any {
	recipients := asList(v)
	out := make([]map[string]any, 0, len(recipients))
	for _, recipient := range recipients {
		out = append(out, emailAddress(asMap(recipient)))
	}
	return out
}
