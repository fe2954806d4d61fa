// internal/commands/call.go
package hublink

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var successMark = color.New(color.FgGreen).SprintFunc()
var failureMark = color.New(color.FgRed).SprintFunc()

// callCmd invokes one tool directly, without a client on the other end of the
// pipe. Arguments are a single JSON object, e.g.:
//
//	hublink call hubspot_get_active_companies '{"limit": 5}'
var callCmd = &cobra.Command{
	Use:   "call <tool> [json-arguments]",
	Short: "Invoke a single tool and print its result",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		arguments := map[string]any{}
		if len(args) == 2 {
			if err := json.Unmarshal([]byte(args[1]), &arguments); err != nil {
				return fmt.Errorf("arguments must be a JSON object: %w", err)
			}
		}

		gw, err := buildGateway()
		if err != nil {
			return err
		}

		for _, part := range gw.Dispatch(cmd.Context(), args[0], arguments) {
			if isErrorText(part.Text) {
				fmt.Printf("%s %s\n", failureMark("✗"), part.Text)
				continue
			}
			fmt.Printf("%s %s\n", successMark("✓"), part.Text)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(callCmd)
}

// isErrorText recognizes the gateway's error surfaces so the marker matches
// the outcome.
func isErrorText(text string) bool {
	for _, prefix := range []string{"Error: ", "HubSpot API error: ", "Unknown tool: ", `{"error":`} {
		if strings.HasPrefix(text, prefix) {
			return true
		}
	}
	return false
}
