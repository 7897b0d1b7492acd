package cli

import (
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/emberlab/flambeau/pkg/descriptor"
	"github.com/emberlab/flambeau/pkg/flame"
	"github.com/emberlab/flambeau/pkg/histo"
	"github.com/emberlab/flambeau/pkg/render"
)

// previewBatches is the number of chaos-game batches a preview splits its
// iteration budget into. Each batch yields one progress update.
const previewBatches = 100

// newPreviewCmd creates the preview command: a progressive render with a
// live terminal UI. The chaos game runs in batches on a single goroutine,
// the progress bar tracks the accumulated samples, and the final image is
// written when the budget is exhausted or the user quits early.
func newPreviewCmd() *cobra.Command {
	var output string
	opts := renderOpts{
		iters:      defaultIters,
		threads:    1,
		dims:       []int{defaultDim, defaultDim},
		brightness: render.DefaultBrightness,
		gamma:      render.DefaultGamma,
		vibrancy:   render.DefaultVibrancy,
	}

	cmd := &cobra.Command{
		Use:   "preview INPUT",
		Short: "Progressively render a flame with a live terminal UI",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				output = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".png"
			}
			return runPreview(args[0], output, &opts)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output image path (default: input with .png extension)")
	cmd.Flags().StringVarP(&opts.iters, "iters", "i", opts.iters, "iteration budget (SI suffixes: k, M, G)")
	cmd.Flags().IntSliceVarP(&opts.dims, "dims", "d", opts.dims, "output dimensions as WIDTH,HEIGHT")
	cmd.Flags().Float64VarP(&opts.brightness, "brightness", "b", opts.brightness, "log-density brightness")
	cmd.Flags().Float64VarP(&opts.gamma, "gamma", "g", opts.gamma, "gamma correction factor")
	cmd.Flags().Float64Var(&opts.vibrancy, "vibrancy", opts.vibrancy, "gamma vibrancy in [0,1]")
	cmd.Flags().BoolVarP(&opts.grayscale, "grayscale", "G", false, "render hit density only, without the palette")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "random seed (0 = non-reproducible)")

	return cmd
}

func runPreview(input, output string, opts *renderOpts) error {
	f, err := descriptor.FromFile(input)
	if err != nil {
		return err
	}

	runCfg, renderCfg, err := renderConfigs(opts)
	if err != nil {
		return err
	}

	model := newPreviewModel(f, runCfg, output)
	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return err
	}

	m := final.(previewModel)
	if m.simulated == 0 {
		printWarning("No samples accumulated, nothing written")
		return nil
	}

	img, err := render.Render(m.buf, renderCfg, m.simulated)
	if err != nil {
		return err
	}
	if err := render.EncodeFile(output, img); err != nil {
		return err
	}

	printSuccess("Previewed %s samples", formatSINum(uint64(m.simulated)))
	printFile(output)
	return nil
}

// batchMsg reports one completed chaos-game batch.
type batchMsg struct {
	iters   int
	elapsed time.Duration
}

// previewModel is the bubbletea model for the progressive render.
type previewModel struct {
	flame     flame.Flame
	buf       *histo.Buffer[uint64]
	rng       *rand.Rand
	output    string
	batchSize int
	budget    int
	simulated int
	start     time.Time
	done      bool
}

func newPreviewModel(f flame.Flame, runCfg flame.RunConfig, output string) previewModel {
	batch := runCfg.Iters / previewBatches
	if batch < 1 {
		batch = 1
	}
	seed := runCfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return previewModel{
		flame:     f,
		buf:       histo.New[uint64](runCfg.Width, runCfg.Height),
		rng:       rand.New(rand.NewPCG(seed, seed^0xdeadbeef)),
		output:    output,
		batchSize: batch,
		budget:    runCfg.Iters,
		start:     time.Now(),
	}
}

// runBatch accumulates one batch into the shared buffer. The model owns the
// buffer and the generator; batches never run concurrently, so the command
// closure is the only writer.
func (m previewModel) runBatch() tea.Cmd {
	return func() tea.Msg {
		iters := min(m.batchSize, m.budget-m.simulated)
		start := time.Now()
		m.flame.RunPartial(m.buf, iters, m.rng)
		return batchMsg{iters: iters, elapsed: time.Since(start)}
	}
}

func (m previewModel) Init() tea.Cmd {
	return m.runBatch()
}

func (m previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case batchMsg:
		m.simulated += msg.iters
		if m.simulated >= m.budget {
			m.done = true
			return m, tea.Quit
		}
		return m, m.runBatch()
	}
	return m, nil
}

// Preview view styles.
var (
	previewBarDone = lipgloss.NewStyle().Foreground(colorCyan)
	previewBarRest = lipgloss.NewStyle().Foreground(colorDim)
)

const previewBarWidth = 40

func (m previewModel) View() string {
	if m.done {
		return ""
	}

	frac := float64(m.simulated) / float64(m.budget)
	filled := int(frac * previewBarWidth)
	bar := previewBarDone.Render(strings.Repeat("█", filled)) +
		previewBarRest.Render(strings.Repeat("░", previewBarWidth-filled))

	rate := ""
	if elapsed := time.Since(m.start).Seconds(); elapsed > 0 {
		rate = fmt.Sprintf("%s samples/s", formatSINum(uint64(float64(m.simulated)/elapsed)))
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render("Rendering " + m.output))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("%s %3.0f%%\n", bar, frac*100))
	b.WriteString(StyleDim.Render(fmt.Sprintf("%s / %s samples · %s",
		formatSINum(uint64(m.simulated)), formatSINum(uint64(m.budget)), rate)))
	b.WriteString("\n\n")
	b.WriteString(StyleDim.Render("q quit (writes the image accumulated so far)"))
	b.WriteString("\n")
	return b.String()
}
