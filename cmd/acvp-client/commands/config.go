package commands

import (
	"fmt"

	"github.com/acvp-tools/libacvp-go/cmd/acvp-client/cmdutil"
	"github.com/acvp-tools/libacvp-go/pkg/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and validate acvp-client configuration",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load and validate the configuration file",
	Long: `validate loads the config file (or the built-in defaults if none is
present) and reports whether it passes struct-tag validation.`,
	RunE: runConfigValidate,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the default config file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(config.GetDefaultConfigPath())
		return nil
	},
}

func init() {
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configPathCmd)
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmdutil.Flags.ConfigPath)
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}
	cmdutil.PrintSuccess("Configuration is valid")
	return nil
}
