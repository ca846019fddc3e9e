package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/poolsynth/pkg/cache"
	"github.com/matzehuels/poolsynth/pkg/config"
	"github.com/matzehuels/poolsynth/pkg/dataset"
	"github.com/matzehuels/poolsynth/pkg/export"
	"github.com/matzehuels/poolsynth/pkg/observability"
	"github.com/matzehuels/poolsynth/pkg/render"
	"github.com/matzehuels/poolsynth/pkg/scene"
)

// generateOpts holds the command-line flags for the generate command.
type generateOpts struct {
	output       string // dataset root; overrides the config
	total        int    // total_images; overrides the config when > 0
	seed         int64  // seed; overrides the config when >= 0
	resume       bool   // keep the output tree and skip completed frames
	tui          bool   // show the interactive progress view
	redisURL     string // checkpoint store URL; file store when empty
	noCheckpoint bool   // disable the checkpoint ledger
}

// generateCommand creates the generate command.
func (c *CLI) generateCommand() *cobra.Command {
	opts := generateOpts{seed: -1}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a synthetic dataset",
		Long: `Generate renders the configured number of randomized frames and writes
them under the output directory as <split>/images/image_N.jpg and
<split>/labels/image_N.txt.

Without --resume the output directory is deleted first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if err := opts.apply(&cfg); err != nil {
				return err
			}
			return c.runGenerate(cmd.Context(), cfg, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output directory (default from config)")
	cmd.Flags().IntVarP(&opts.total, "total", "n", 0, "total number of images (default from config)")
	cmd.Flags().Int64Var(&opts.seed, "seed", -1, "random seed (default from config)")
	cmd.Flags().BoolVar(&opts.resume, "resume", false, "keep existing output and skip completed frames")
	cmd.Flags().BoolVar(&opts.tui, "tui", false, "show an interactive progress view")
	cmd.Flags().StringVar(&opts.redisURL, "checkpoint-redis", "", "store checkpoints in Redis (redis://host:port/db)")
	cmd.Flags().BoolVar(&opts.noCheckpoint, "no-checkpoint", false, "do not record completed frames")
	cmd.MarkFlagsMutuallyExclusive("checkpoint-redis", "no-checkpoint")

	return cmd
}

// apply writes flag values over cfg and revalidates it.
func (o generateOpts) apply(cfg *config.Config) error {
	if o.output != "" {
		cfg.Output = o.output
	}
	if o.total > 0 {
		cfg.TotalImages = o.total
	}
	if o.seed >= 0 {
		cfg.Seed = uint64(o.seed)
	}
	return cfg.Validate()
}

func (c *CLI) runGenerate(ctx context.Context, cfg config.Config, opts generateOpts) error {
	var store cache.Cache
	if opts.resume && opts.noCheckpoint {
		printWarning("--resume without checkpoints regenerates every frame")
	}
	if !opts.noCheckpoint {
		s, err := c.openStore(ctx, cfg.Output, opts.redisURL)
		if err != nil {
			return fmt.Errorf("open checkpoint store: %w", err)
		}
		defer s.Close()
		store = s
	}

	plans := dataset.Plan(cfg)
	hooks := observability.Multi{newLogHooks(c.Logger)}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var prog *tea.Program
	if opts.tui {
		prog = tea.NewProgram(newProgressModel(plans), tea.WithContext(ctx), tea.WithOutput(stderr))
		hooks = observability.Multi{newTeaHooks(prog)}
		// The progress view owns the terminal; only warnings reach the log.
		c.SetLogLevel(LogWarn)
	}

	gen, err := dataset.NewGenerator(cfg, dataset.Options{
		Renderer:   render.NewRaster(),
		Discoverer: scene.DiscovererFor(cfg),
		Store:      store,
		Resume:     opts.resume,
		Hooks:      hooks,
		Logger:     c.Logger,
	})
	if err != nil {
		return err
	}

	start := time.Now()
	var manifest *export.Generation
	if prog != nil {
		manifest, err = runWithProgress(prog, cancel, func() (*export.Generation, error) {
			return gen.Run(ctx)
		})
	} else {
		manifest, err = gen.Run(ctx)
	}

	if err != nil {
		var fe *dataset.FrameError
		if errors.As(err, &fe) {
			printError("Generation stopped at %s/%d", fe.Split, fe.Index)
			if !opts.noCheckpoint {
				printNextStep("Continue with", "poolsynth generate --resume")
			}
		}
		return err
	}

	printGenerationSummary(manifest, cfg.Output, time.Since(start))
	return nil
}
