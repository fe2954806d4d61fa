// internal/commands/tools.go
package hublink

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mwiater/hublink/internal/gateway"
	"github.com/spf13/cobra"
)

var toolsShowSchema bool

// toolsCmd prints the tool catalog in a two-column layout. With --schema it
// dumps each tool's JSON Schema as well.
var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the tools the server exposes",
	Run: func(cmd *cobra.Command, args []string) {
		runListTools(toolsShowSchema)
	},
}

func init() {
	toolsCmd.Flags().BoolVar(&toolsShowSchema, "schema", false, "print each tool's input schema")
	rootCmd.AddCommand(toolsCmd)
}

func runListTools(showSchema bool) {
	defs := gateway.Definitions()
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })

	maxNameLength := 0
	for _, def := range defs {
		if len(def.Name) > maxNameLength {
			maxNameLength = len(def.Name)
		}
	}

	nameStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("255"))

	fmt.Printf("Tools (%d):\n", len(defs))
	for _, def := range defs {
		padding := strings.Repeat(" ", maxNameLength-len(def.Name)+2)
		fmt.Printf("  %s%s%s\n", nameStyle.Render(def.Name), padding, descStyle.Render(firstSentence(def.Description)))
		if showSchema {
			schema, err := json.MarshalIndent(def.InputSchema, "    ", "  ")
			if err != nil {
				continue
			}
			fmt.Printf("    %s\n", schema)
		}
	}
}

// firstSentence trims a multi-sentence description down to its first sentence
// for the compact listing.
func firstSentence(s string) string {
	if i := strings.Index(s, ". "); i >= 0 {
		return s[:i+1]
	}
	return s
}
