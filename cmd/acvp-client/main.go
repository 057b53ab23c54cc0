// Command acvp-client drives an ACVP test session: login, fetch vector
// sets, compute via a pluggable DUT, submit results.
package main

import (
	"fmt"
	"os"

	"github.com/acvp-tools/libacvp-go/cmd/acvp-client/commands"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.Version = version
	commands.Commit = commit
	commands.Date = date

	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
