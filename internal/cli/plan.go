package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/poolsynth/pkg/dataset"
	"github.com/matzehuels/poolsynth/pkg/scene"
)

// planCommand creates the plan command.
func (c *CLI) planCommand() *cobra.Command {
	var total int

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show split sizes and background frames without rendering",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if err := (generateOpts{total: total, seed: -1}).apply(&cfg); err != nil {
				return err
			}

			logger := loggerFromContext(cmd.Context())
			if total > 0 && total < cfg.SplitThreshold {
				logger.Debug("below split threshold, all images go to train", "threshold", cfg.SplitThreshold)
			}

			plans := dataset.Plan(cfg)
			fmt.Println(renderPlan(plans))

			names := scene.NewRegistry(scene.DiscovererFor(cfg).Children()).ClassNames()
			printKeyValue("output", cfg.Output)
			printKeyValue("classes", fmt.Sprintf("%d (%s … %s)", len(names), names[0], names[len(names)-1]))
			printKeyValue("image size", fmt.Sprintf("%dx%d", cfg.ImageWidth, cfg.ImageHeight))
			printKeyValue("seed", fmt.Sprint(cfg.Seed))
			if cfg.BackgroundFramePeriod > 0 {
				printInfo("Every %dth frame of a split is a background frame", cfg.BackgroundFramePeriod)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&total, "total", "n", 0, "total number of images (default from config)")
	return cmd
}
