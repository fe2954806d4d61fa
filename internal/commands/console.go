// internal/commands/console.go
package hublink

import (
	"github.com/mwiater/hublink/internal/tui"
	"github.com/spf13/cobra"
)

// consoleCmd launches the interactive console for exercising tools by hand.
var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Browse and invoke tools interactively",
	RunE: func(cmd *cobra.Command, args []string) error {
		gw, err := buildGateway()
		if err != nil {
			return err
		}
		return tui.Run(cmd.Context(), gw)
	},
}

func init() {
	rootCmd.AddCommand(consoleCmd)
}
