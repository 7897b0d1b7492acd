package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emberlab/flambeau/pkg/descriptor"
	"github.com/emberlab/flambeau/pkg/flamegen"
)

// generateOpts holds the command-line flags for the generate command.
type generateOpts struct {
	seed        uint64 // generation seed (0 = draw from the OS via time)
	minEntries  int    // lower bound on function count
	maxEntries  int    // upper bound on function count
	minSymmetry int    // lower bound on symmetry order
	maxSymmetry int    // upper bound on symmetry order
	minColors   int    // lower bound on palette size
	maxColors   int    // upper bound on palette size
}

// newGenerateCmd creates the generate command. It draws a random flame and
// writes its descriptor to the output path (.json or .toml).
func newGenerateCmd() *cobra.Command {
	opts := generateOpts{
		minEntries:  2,
		maxEntries:  4,
		minSymmetry: -2,
		maxSymmetry: 3,
		minColors:   3,
		maxColors:   8,
	}

	cmd := &cobra.Command{
		Use:   "generate OUTPUT",
		Short: "Generate a random flame descriptor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().Uint64Var(&opts.seed, "seed", 1, "generation seed")
	cmd.Flags().IntVar(&opts.minEntries, "min-functions", opts.minEntries, "minimum number of functions")
	cmd.Flags().IntVar(&opts.maxEntries, "max-functions", opts.maxEntries, "maximum number of functions")
	cmd.Flags().IntVar(&opts.minSymmetry, "min-symmetry", opts.minSymmetry, "minimum symmetry order")
	cmd.Flags().IntVar(&opts.maxSymmetry, "max-symmetry", opts.maxSymmetry, "maximum symmetry order")
	cmd.Flags().IntVar(&opts.minColors, "min-colors", opts.minColors, "minimum palette size")
	cmd.Flags().IntVar(&opts.maxColors, "max-colors", opts.maxColors, "maximum palette size")

	return cmd
}

func runGenerate(ctx context.Context, output string, opts *generateOpts) error {
	logger := loggerFromContext(ctx)

	if opts.minEntries > opts.maxEntries {
		return fmt.Errorf("--min-functions %d exceeds --max-functions %d", opts.minEntries, opts.maxEntries)
	}
	if opts.minColors > opts.maxColors {
		return fmt.Errorf("--min-colors %d exceeds --max-colors %d", opts.minColors, opts.maxColors)
	}

	f := flamegen.Generate(opts.seed, &flamegen.Options{
		MinEntries:  opts.minEntries,
		MaxEntries:  opts.maxEntries,
		MinSymmetry: opts.minSymmetry,
		MaxSymmetry: opts.maxSymmetry,
		MinColors:   opts.minColors,
		MaxColors:   opts.maxColors,
		AffineScale: 1.0,
	})
	logger.Infof("Generated flame: %d functions, symmetry %d (seed %d)",
		len(f.Entries), f.Symmetry, opts.seed)

	if err := descriptor.ToFile(output, f); err != nil {
		return err
	}

	printSuccess("Generated flame descriptor (seed %d)", opts.seed)
	printFile(output)
	return nil
}
