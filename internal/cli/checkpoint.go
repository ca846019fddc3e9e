package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/poolsynth/pkg/cache"
	"github.com/matzehuels/poolsynth/pkg/dataset"
)

// checkpointCommand creates the checkpoint command with its subcommands.
func (c *CLI) checkpointCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkpoint",
		Short: "Manage the ledger of completed frames used by --resume",
	}

	cmd.AddCommand(c.checkpointClearCommand())
	cmd.AddCommand(c.checkpointPathCommand())

	return cmd
}

// checkpointClearCommand creates the checkpoint clear subcommand.
func (c *CLI) checkpointClearCommand() *cobra.Command {
	var output, redisURL string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Forget all completed frames of the current run",
		Long: `Clear removes checkpoint records so the next --resume run renders every
frame again. The file store is removed entirely; with --checkpoint-redis
only the records of the current configuration are deleted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if output != "" {
				cfg.Output = output
			}

			if redisURL == "" {
				store, err := cache.NewFileCache(checkpointDir(cfg.Output))
				if err != nil {
					return err
				}
				if err := store.Clear(); err != nil {
					return fmt.Errorf("clear checkpoints: %w", err)
				}
				printSuccess("Checkpoints cleared")
				printDetail("%s", store.Dir())
				return nil
			}

			runKey, err := dataset.RunKey(cfg)
			if err != nil {
				return err
			}
			store, err := c.openStore(cmd.Context(), cfg.Output, redisURL)
			if err != nil {
				return fmt.Errorf("open checkpoint store: %w", err)
			}
			ledger := cache.NewCheckpoint(store, runKey)
			defer ledger.Close()

			spin := newSpinnerWithContext(cmd.Context(), "Clearing checkpoints...")
			spin.Start()
			cleared := 0
			for _, p := range dataset.Plan(cfg) {
				spin.Update(fmt.Sprintf("Clearing %s (%d frames)...", p.Split, p.Count))
				if err := ledger.Clear(cmd.Context(), p.Split, p.Count); err != nil {
					spin.StopWithError("Clearing checkpoints failed")
					return err
				}
				cleared += p.Count
			}
			spin.StopWithSuccess(fmt.Sprintf("Cleared %d checkpoint records", cleared))
			loggerFromContext(cmd.Context()).Debug("cleared redis checkpoints", "run", runKey)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "dataset directory (default from config)")
	cmd.Flags().StringVar(&redisURL, "checkpoint-redis", "", "clear checkpoints stored in Redis (redis://host:port/db)")
	return cmd
}

// checkpointPathCommand creates the checkpoint path subcommand.
func (c *CLI) checkpointPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the file checkpoint directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, checkpointDir(cfg.Output))
			return nil
		},
	}
}
