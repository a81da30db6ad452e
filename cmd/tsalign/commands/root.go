// Package commands implements CLI command handlers for tsalign.
package commands

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/tsalign/internal/config"
	"github.com/Sumatoshi-tech/tsalign/internal/observability"
	"github.com/Sumatoshi-tech/tsalign/pkg/aligner"
	"github.com/Sumatoshi-tech/tsalign/pkg/version"
)

// Process exit codes.
const (
	ExitFailure = 1
	// ExitAborted reports a search stopped by its cost or memory limit.
	ExitAborted = 2
)

// ExitCode maps a command error to the process exit code.
func ExitCode(err error) int {
	if errors.Is(err, aligner.ErrSearchAborted) {
		return ExitAborted
	}

	return ExitFailure
}

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	verbose    bool
	quiet      bool
	noColor    bool
}

// NewRootCommand creates the tsalign command tree without the version command.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "tsalign",
		Short: "Template switch aligner",
		Long: `tsalign computes minimum-cost pairwise alignments of DNA sequences that may
contain template switches: short stretches copied from the reverse complement
of either sequence.

Commands:
  align     Align a query against a reference
  show      Render a saved alignment against its sequences
  costs     Check and reformat a plain-text cost function`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		"config file (default: .tsalign.yaml in the working or home directory)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "suppress output")
	rootCmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(newAlignCommand(opts))
	rootCmd.AddCommand(newShowCommand(opts))
	rootCmd.AddCommand(newCostsCommand())

	return rootCmd
}

func (o *rootOptions) colorEnabled() bool {
	return !o.noColor && !color.NoColor
}

// initObservability sets up logging, tracing and metrics from the
// observability section, with OTEL_EXPORTER_OTLP_* as fallbacks.
func (o *rootOptions) initObservability(cfg *config.Config, stderr io.Writer) (observability.Providers, error) {
	obs := cfg.Observability

	ocfg := observability.DefaultConfig()
	ocfg.ServiceVersion = version.Version
	ocfg.OTLPEndpoint = obs.OTLPEndpoint
	ocfg.OTLPInsecure = obs.OTLPInsecure
	ocfg.SampleRatio = obs.SampleRatio
	ocfg.MetricsTextfile = obs.MetricsTextfile
	ocfg.LogJSON = obs.LogJSON
	ocfg.LogOutput = stderr

	if ocfg.OTLPEndpoint == "" {
		ocfg.OTLPEndpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
		ocfg.OTLPInsecure = ocfg.OTLPInsecure || os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") == "true"
	}

	ocfg.OTLPHeaders = observability.ParseOTLPHeaders(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"))

	level, err := cfg.LogLevel()
	if err != nil {
		return observability.Providers{}, err
	}

	switch {
	case o.verbose:
		level = slog.LevelDebug
	case o.quiet:
		level = slog.LevelWarn
	}

	ocfg.LogLevel = level

	return observability.Init(ocfg)
}

// withObservability runs fn with initialized providers and shuts them down afterwards.
func (o *rootOptions) withObservability(
	cmd *cobra.Command, cfg *config.Config, fn func(observability.Providers) error,
) error {
	providers, err := o.initObservability(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	defer func() {
		shutdownErr := providers.Shutdown(context.WithoutCancel(cmd.Context()))
		if shutdownErr != nil {
			providers.Logger.Warn("observability shutdown failed", "error", shutdownErr)
		}
	}()

	return fn(providers)
}
