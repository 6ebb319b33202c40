// Command todo-server serves the todo API.
package main

import (
	"fmt"
	"os"
)

// Version information set at build time.
var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	cmd := newRootCmd()
	cmd.Version = fmt.Sprintf("%s (built: %s)", version, buildDate)

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
