// cmd/hublink/main.go
package main

import (
	cmd "github.com/mwiater/hublink/internal/commands"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// main starts the hublink CLI application by delegating to the cobra root
// command. Build-time version variables are injected via -ldflags.
func main() {
	cmd.SetVersionInfo(version, commit, date)
	cmd.Execute()
}
