// Package cmdutil provides shared utilities for acvp-client commands:
// the global flag struct every subcommand reads, and small output
// helpers that dispatch on the --output format.
package cmdutil

import (
	"fmt"
	"io"
	"os"

	"github.com/acvp-tools/libacvp-go/internal/cli/output"
	"github.com/acvp-tools/libacvp-go/internal/cli/prompt"
)

// Flags stores global flag values accessible by subcommands.
var Flags = &GlobalFlags{}

// GlobalFlags holds the global flag values bound by the root command.
type GlobalFlags struct {
	ConfigPath string
	Server     string
	Output     string
	NoColor    bool
	Verbose    bool
}

// GetOutputFormatParsed returns the parsed output format.
func GetOutputFormatParsed() (output.Format, error) {
	return output.ParseFormat(Flags.Output)
}

// IsColorDisabled returns whether color output is disabled.
func IsColorDisabled() bool {
	return Flags.NoColor
}

// IsVerbose returns whether verbose output is enabled.
func IsVerbose() bool {
	return Flags.Verbose
}

// PrintResource prints data in the specified format. For table format
// it uses renderer; for JSON/YAML it marshals data directly.
func PrintResource(w io.Writer, data any, renderer output.TableRenderer) error {
	format, err := GetOutputFormatParsed()
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(w, data)
	case output.FormatYAML:
		return output.PrintYAML(w, data)
	default:
		return output.PrintTable(w, renderer)
	}
}

// PrintSuccess prints a success message when the output format is table.
func PrintSuccess(msg string) {
	format, err := GetOutputFormatParsed()
	if err != nil || format != output.FormatTable {
		return
	}
	printer := output.NewPrinter(os.Stdout, format, !IsColorDisabled())
	printer.Success(msg)
}

// HandleAbort checks whether err is a user-cancelled prompt and prints
// a short message. Returns nil for abort, otherwise the original error.
func HandleAbort(err error) error {
	if prompt.IsAborted(err) {
		fmt.Println("\nAborted.")
		return nil
	}
	return err
}
