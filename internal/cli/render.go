package cli

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/emberlab/flambeau/pkg/descriptor"
	"github.com/emberlab/flambeau/pkg/flame"
	"github.com/emberlab/flambeau/pkg/render"
)

const (
	defaultIters   = "100M" // default iteration budget
	defaultThreads = 10     // default worker count
	defaultDim     = 500    // default image edge in pixels
)

// renderOpts holds the command-line flags for the render command.
// These options control the simulation budget and the tone-mapping parameters.
type renderOpts struct {
	iters      string  // iteration budget with optional SI suffix (k/M/G)
	threads    int     // number of chaos-game workers
	dims       []int   // output width and height in pixels
	brightness float64 // log-density brightness
	gamma      float64 // gamma correction factor
	vibrancy   float64 // blend between per-channel (0) and alpha-based (1) gamma
	grayscale  bool    // render the alpha channel only
	oversample int     // supersampling radius (0 disables)
	seed       uint64  // base RNG seed (0 = draw from the OS)
}

// newRenderCmd creates the render command. It loads a flame descriptor, runs
// the chaos game, tone-maps the histogram, and writes the image to the output
// path, with the format chosen by extension (png, jpeg, bmp, tiff).
//
// Default settings:
//   - iters: 100M samples
//   - threads: 10 workers
//   - dims: 500x500 pixels
//   - brightness 2.0, gamma 2.2, vibrancy 0
func newRenderCmd() *cobra.Command {
	opts := renderOpts{
		iters:      defaultIters,
		threads:    defaultThreads,
		dims:       []int{defaultDim, defaultDim},
		brightness: render.DefaultBrightness,
		gamma:      render.DefaultGamma,
		vibrancy:   render.DefaultVibrancy,
	}

	cmd := &cobra.Command{
		Use:   "render INPUT OUTPUT",
		Short: "Render a flame descriptor to an image",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.Context(), args[0], args[1], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.iters, "iters", "i", opts.iters, "iteration budget (SI suffixes: k, M, G)")
	cmd.Flags().IntVarP(&opts.threads, "threads", "t", opts.threads, "number of worker goroutines")
	cmd.Flags().IntSliceVarP(&opts.dims, "dims", "d", opts.dims, "output dimensions as WIDTH,HEIGHT")
	cmd.Flags().Float64VarP(&opts.brightness, "brightness", "b", opts.brightness, "log-density brightness")
	cmd.Flags().Float64VarP(&opts.gamma, "gamma", "g", opts.gamma, "gamma correction factor")
	cmd.Flags().Float64Var(&opts.vibrancy, "vibrancy", opts.vibrancy, "gamma vibrancy in [0,1]")
	cmd.Flags().BoolVarP(&opts.grayscale, "grayscale", "G", false, "render hit density only, without the palette")
	cmd.Flags().IntVarP(&opts.oversample, "oversample", "s", 0, "supersampling radius (0 disables)")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "random seed (0 = non-reproducible)")

	return cmd
}

// renderConfigs validates opts and splits it into the simulation and
// tone-mapping configurations. The simulation runs at the oversampled
// dimensions when a supersampling radius is set.
func renderConfigs(opts *renderOpts) (flame.RunConfig, render.Config, error) {
	iters, err := parseSINum(opts.iters)
	if err != nil {
		return flame.RunConfig{}, render.Config{}, err
	}
	if len(opts.dims) != 2 {
		return flame.RunConfig{}, render.Config{}, fmt.Errorf("--dims needs WIDTH,HEIGHT, got %d values", len(opts.dims))
	}
	if opts.dims[0] <= 0 || opts.dims[1] <= 0 {
		return flame.RunConfig{}, render.Config{}, fmt.Errorf("dimensions must be positive, got %dx%d", opts.dims[0], opts.dims[1])
	}

	threads := opts.threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}

	renderCfg := render.Config{
		Width:            opts.dims[0],
		Height:           opts.dims[1],
		Brightness:       opts.brightness,
		Gamma:            opts.gamma,
		Vibrancy:         opts.vibrancy,
		Grayscale:        opts.grayscale,
		OversampleRadius: opts.oversample,
	}

	simW, simH := render.OversampledDims(renderCfg.Width, renderCfg.Height, renderCfg.OversampleRadius)
	runCfg := flame.RunConfig{
		Width:   simW,
		Height:  simH,
		Iters:   int(iters),
		Threads: threads,
		Seed:    opts.seed,
	}
	return runCfg, renderCfg, nil
}

// runRender loads the descriptor, simulates, tone-maps, and writes the image.
func runRender(ctx context.Context, input, output string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)

	f, err := descriptor.FromFile(input)
	if err != nil {
		return err
	}
	logger.Infof("Loaded flame: %d functions, symmetry %d", len(f.Entries), f.Symmetry)

	runCfg, renderCfg, err := renderConfigs(opts)
	if err != nil {
		return err
	}

	spin := newSpinnerWithContext(ctx, fmt.Sprintf("Simulating %s samples on %d workers",
		formatSINum(uint64(runCfg.Iters)), runCfg.Threads))
	spin.Start()
	start := time.Now()
	hist := f.Run(runCfg, logger)
	if spin.Cancelled() {
		spin.Stop()
		return ctx.Err()
	}
	spin.StopWithSuccess(fmt.Sprintf("Accumulated %s samples (%s)",
		formatSINum(uint64(runCfg.Iters)), time.Since(start).Round(time.Millisecond)))

	tone := newProgress(logger)
	img, err := render.Render(hist, renderCfg, runCfg.Iters)
	if err != nil {
		return err
	}
	tone.done(fmt.Sprintf("Tone-mapped %dx%d histogram", hist.Width, hist.Height))

	if err := render.EncodeFile(output, img); err != nil {
		return err
	}

	printSuccess("Rendered %s", input)
	printFile(output)
	return nil
}
