package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// configCommand creates the config command, which prints the effective
// configuration after file, environment and --set overrides are applied.
func (c *CLI) configCommand() *cobra.Command {
	var write string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}

			if write == "" {
				return cfg.WriteTOML(os.Stdout)
			}

			var buf bytes.Buffer
			if err := cfg.WriteTOML(&buf); err != nil {
				return err
			}
			if err := os.WriteFile(write, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			printSuccess("Config written")
			printFile(write)
			return nil
		},
	}

	cmd.Flags().StringVarP(&write, "write", "w", "", "write the configuration to a file instead of stdout")
	return cmd
}
