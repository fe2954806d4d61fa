// internal/gateway/params.go
package gateway

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ParseArguments decodes a user-typed JSON object into an argument bag. Blank
// input means no arguments.
func ParseArguments(raw string) (map[string]any, error) {
	if strings.TrimSpace(raw) == "" {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, fmt.Errorf("arguments must be a JSON object: %w", err)
	}
	return args, nil
}

// Per-tool parameter structs. Each Dispatch extracts exactly one of these
// from the prepared argument bag.
type createContactParams struct {
	Firstname  string
	Lastname   string
	Email      string
	Properties map[string]any
}

type createCompanyParams struct {
	Name       string
	Properties map[string]any
}

type companyActivityParams struct {
	CompanyID string
}

type engagementWindowParams struct {
	Days  int
	Limit int
}

type limitParams struct {
	Limit int
}

type emailPageParams struct {
	Limit int
	After string
}

type inboxScopeParams struct {
	InboxID string
	Limit   int
}

type channelScopeParams struct {
	ChannelID string
	Limit     int
}

type threadScopeParams struct {
	ThreadID string
	Limit    int
}

// prepareArguments applies schema defaults, coerces declared integer
// parameters, and validates the result against the tool's schema. It never
// mutates the caller's map.
func prepareArguments(def Definition, args map[string]any) (map[string]any, error) {
	prepared := make(map[string]any, len(args))
	for key, value := range args {
		prepared[key] = value
	}

	properties, _ := def.InputSchema["properties"].(map[string]any)
	for name, spec := range properties {
		propSchema, _ := spec.(map[string]any)
		value, present := prepared[name]
		if !present || value == nil {
			if fallback, ok := propSchema["default"]; ok {
				prepared[name] = fallback
			}
			continue
		}
		if propSchema["type"] == "integer" {
			coerced, ok := coerceInt(value)
			if !ok {
				return nil, fmt.Errorf("argument %q must be an integer", name)
			}
			prepared[name] = coerced
		}
	}

	if err := validateArguments(def, prepared); err != nil {
		return nil, err
	}
	return prepared, nil
}

// validateArguments checks the prepared bag against the tool's JSON schema.
func validateArguments(def Definition, args map[string]any) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(def.InputSchema),
		gojsonschema.NewGoLoader(args),
	)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}
	var errs []string
	for _, desc := range result.Errors() {
		errs = append(errs, desc.String())
	}
	return fmt.Errorf("invalid arguments for %s: %s", def.Name, strings.Join(errs, ", "))
}

// coerceInt accepts the numeric encodings a JSON-RPC argument bag can carry.
func coerceInt(v any) (int, bool) {
	switch val := v.(type) {
	case int:
		return val, true
	case int32:
		return int(val), true
	case int64:
		return int(val), true
	case float64:
		return int(val), true
	case float32:
		return int(val), true
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return n, true
		}
		return 0, false
	default:
		return 0, false
	}
}

func intArg(args map[string]any, key string, fallback int) int {
	if n, ok := coerceInt(args[key]); ok {
		return n
	}
	return fallback
}

func stringArg(args map[string]any, key string) string {
	if s, ok := args[key].(string); ok {
		return s
	}
	return ""
}

func mapArg(args map[string]any, key string) map[string]any {
	if m, ok := args[key].(map[string]any); ok {
		return m
	}
	return nil
}
