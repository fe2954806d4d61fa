// internal/commands/doctor.go
package hublink

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/mwiater/hublink/internal/gateway"
	mcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
)

var (
	doctorTool string
	doctorArgs string
)

// doctorCmd spawns this binary's serve command as a child process, performs a
// full MCP handshake against it, and checks the advertised catalog against
// the one compiled in. With --tool it also round-trips one invocation.
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Self-test the MCP handshake and tool catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		self, err := os.Executable()
		if err != nil {
			return fmt.Errorf("locate own binary: %w", err)
		}

		ctx := cmd.Context()
		child := exec.CommandContext(ctx, self, "serve", "--config", cfgFile)
		child.Stderr = os.Stderr

		client := mcp.NewClient(&mcp.Implementation{
			Name:    "hublink-doctor",
			Version: appVersion,
		}, nil)

		start := time.Now()
		session, err := client.Connect(ctx, &mcp.CommandTransport{Command: child}, nil)
		if err != nil {
			return fmt.Errorf("handshake failed: %w", err)
		}
		defer session.Close()
		fmt.Printf("%s handshake completed in %s\n", successMark("✓"), time.Since(start).Round(time.Millisecond))

		want := map[string]bool{}
		for _, def := range gateway.Definitions() {
			want[def.Name] = false
		}

		listed := 0
		for tool, err := range session.Tools(ctx, nil) {
			if err != nil {
				return fmt.Errorf("tools/list failed: %w", err)
			}
			if tool == nil {
				continue
			}
			listed++
			if _, ok := want[tool.Name]; !ok {
				fmt.Printf("%s server advertises unexpected tool %s\n", failureMark("✗"), tool.Name)
				continue
			}
			want[tool.Name] = true
		}

		missing := 0
		for name, seen := range want {
			if !seen {
				missing++
				fmt.Printf("%s catalog tool %s not advertised\n", failureMark("✗"), name)
			}
		}
		if missing == 0 {
			fmt.Printf("%s all %d tools advertised\n", successMark("✓"), listed)
		}

		if doctorTool != "" {
			if err := doctorCall(cmd, session); err != nil {
				return err
			}
		}
		if missing > 0 {
			return fmt.Errorf("%d catalog tool(s) missing from server", missing)
		}
		return nil
	},
}

func init() {
	doctorCmd.Flags().StringVar(&doctorTool, "tool", "", "also invoke this tool through the child server")
	doctorCmd.Flags().StringVar(&doctorArgs, "args", "{}", "JSON arguments for --tool")
	rootCmd.AddCommand(doctorCmd)
}

func doctorCall(cmd *cobra.Command, session *mcp.ClientSession) error {
	arguments := map[string]any{}
	if strings.TrimSpace(doctorArgs) != "" {
		if err := json.Unmarshal([]byte(doctorArgs), &arguments); err != nil {
			return fmt.Errorf("--args must be a JSON object: %w", err)
		}
	}

	result, err := session.CallTool(cmd.Context(), &mcp.CallToolParams{
		Name:      doctorTool,
		Arguments: arguments,
	})
	if err != nil {
		return fmt.Errorf("tools/call %s failed: %w", doctorTool, err)
	}

	for _, content := range result.Content {
		text, ok := content.(*mcp.TextContent)
		if !ok {
			continue
		}
		mark := successMark("✓")
		if isErrorText(text.Text) {
			mark = failureMark("✗")
		}
		fmt.Printf("%s %s\n", mark, text.Text)
	}
	return nil
}
