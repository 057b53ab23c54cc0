package commands

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/acvp-tools/libacvp-go/cmd/acvp-client/cmdutil"
	"github.com/acvp-tools/libacvp-go/internal/cli/output"
	"github.com/acvp-tools/libacvp-go/internal/session"
	"github.com/acvp-tools/libacvp-go/pkg/config"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configured server and session status",
	Long: `Display the configured ACVP server, a basic TLS reachability check,
and any in-progress session persisted by a prior "run".

Examples:
  acvp-client status
  acvp-client status -o json`,
	RunE: runStatus,
}

// Status is the displayed snapshot of server reachability and session state.
type Status struct {
	Server     string `json:"server" yaml:"server"`
	Reachable  bool   `json:"reachable" yaml:"reachable"`
	Error      string `json:"error,omitempty" yaml:"error,omitempty"`
	SessionURL string `json:"session_url,omitempty" yaml:"session_url,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmdutil.Flags.ConfigPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cmdutil.Flags.Server != "" {
		cfg.Server.Host = cmdutil.Flags.Server
	}

	st := Status{Server: fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(fmt.Sprintf("https://%s/acvp/v1/login", st.Server))
	if err != nil {
		st.Error = err.Error()
	} else {
		_ = resp.Body.Close()
		st.Reachable = true
	}

	store, err := session.Open(cfg.Session.URLFile)
	if err == nil {
		if url, uerr := store.URL(); uerr == nil {
			st.SessionURL = url
		}
	}

	format, err := cmdutil.GetOutputFormatParsed()
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(os.Stdout, st)
	case output.FormatYAML:
		return output.PrintYAML(os.Stdout, st)
	default:
		printStatusTable(st)
	}
	return nil
}

func printStatusTable(st Status) {
	fmt.Println()
	fmt.Println("ACVP Client Status")
	fmt.Println("==================")
	fmt.Println()
	fmt.Printf("  Server:     %s\n", st.Server)

	if st.Reachable {
		fmt.Printf("  Reachable:  \033[32m● yes\033[0m\n")
	} else {
		fmt.Printf("  Reachable:  \033[31m○ no\033[0m\n")
	}

	if st.SessionURL != "" {
		fmt.Printf("  Session:    %s\n", st.SessionURL)
	} else {
		fmt.Printf("  Session:    none in progress\n")
	}
	if st.Error != "" {
		fmt.Printf("  Error:      %s\n", st.Error)
	}
	fmt.Println()
}
