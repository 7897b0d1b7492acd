package cli

import (
	"context"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// appName is the application name used for directories and display.
const appName = "flambeau"

var (
	version string // semantic version (e.g., "v1.2.3")
	commit  string // git commit SHA
	date    string // build timestamp
)

// SetVersion sets the version information displayed by --version.
// This is typically called by the main package during initialization with values
// injected via ldflags at build time.
//
// Parameters:
//   - v: semantic version string (e.g., "v1.2.3")
//   - c: git commit SHA (short or long form)
//   - d: build timestamp (e.g., "2025-12-20T14:32:01Z")
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the flambeau CLI and returns an error if any command fails.
// This is the main entry point for the CLI application.
//
// The function sets up the root command with all subcommands (render,
// generate, preview, serve, cache, completion), configures logging based on
// the --verbose flag, and executes the command tree.
//
// Logging:
//   - Default: info level (logs to stderr)
//   - With --verbose (-v): debug level
//
// The logger is attached to the context and accessible to all commands via loggerFromContext.
//
// Example:
//
//	func main() {
//	    cli.SetVersion("v1.0.0", "abc123", "2025-12-20")
//	    if err := cli.Execute(context.Background()); err != nil {
//	        os.Exit(1)
//	    }
//	}
func Execute(ctx context.Context) error {
	var verbose bool

	root := &cobra.Command{
		Use:          appName,
		Short:        "Flambeau renders fractal flames",
		Long:         `Flambeau is a fractal flame renderer. It runs the chaos game over an iterated function system described by a flame descriptor file and tone-maps the resulting histogram into an image.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("%s %s\ncommit: %s\nbuilt: %s\n", appName, version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newRenderCmd())
	root.AddCommand(newGenerateCmd())
	root.AddCommand(newPreviewCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newCacheCmd())
	root.AddCommand(newCompletionCmd())

	return root.ExecuteContext(ctx)
}
