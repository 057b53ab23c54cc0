package commands

import (
	"fmt"

	"github.com/acvp-tools/libacvp-go/cmd/acvp-client/cmdutil"
	"github.com/acvp-tools/libacvp-go/internal/auth"
	"github.com/acvp-tools/libacvp-go/internal/cli/prompt"
	"github.com/acvp-tools/libacvp-go/internal/logger"
	"github.com/acvp-tools/libacvp-go/internal/totp"
	"github.com/acvp-tools/libacvp-go/internal/transport"
	"github.com/acvp-tools/libacvp-go/internal/useragent"
	"github.com/acvp-tools/libacvp-go/pkg/config"
	"github.com/spf13/cobra"
)

var (
	loginSeed string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Verify ACVP credentials against the configured server",
	Long: `login exchanges the ACVP TOTP seed for a short-lived access token,
to confirm the configured server and credentials work before running a
full test session. It does not persist the token: every "run" invocation
logs in again on demand, the way the auth controller always has.`,
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().StringVar(&loginSeed, "seed", "", "TOTP seed (base64); prompted if omitted")
}

func runLogin(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmdutil.Flags.ConfigPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cmdutil.Flags.Server != "" {
		cfg.Server.Host = cmdutil.Flags.Server
	}

	seed := loginSeed
	if seed == "" {
		seed, err = prompt.TOTPSeed()
		if err != nil {
			return cmdutil.HandleAbort(err)
		}
	}

	tr, err := transport.New(transport.Config{
		CAFile:         cfg.TLS.CAFile,
		ClientCertFile: cfg.TLS.ClientCert,
		ClientKeyFile:  cfg.TLS.ClientKey,
		UserAgent:      useragent.Build(logger.With()),
	})
	if err != nil {
		return fmt.Errorf("building transport: %w", err)
	}

	serverURL := fmt.Sprintf("https://%s:%d/acvp/v1/login", cfg.Server.Host, cfg.Server.Port)

	code, err := totp.Generate(seed)
	if err != nil {
		return fmt.Errorf("generating TOTP code: %w", err)
	}

	status, body, err := tr.Post(cmd.Context(), serverURL, map[string]string{"password": code}, transport.NoCredential)
	if err != nil {
		return fmt.Errorf("login request: %w", err)
	}

	if auth.Inspect(status, body) != auth.Success {
		return fmt.Errorf("login rejected by server (status %d): %s", status, string(body))
	}

	cmdutil.PrintSuccess("Login succeeded")
	return nil
}
