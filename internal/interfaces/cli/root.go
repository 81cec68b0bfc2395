// Package cli is the external loader around the analysis engine: it reads
// the model artifact, recommendation corpus, and interaction log from JSON
// files, builds the in-memory engine snapshot, and exposes the engine
// operations as subcommands of the landai binary.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/turtacn/LandArea-Intelligence/internal/application/analysis"
	"github.com/turtacn/LandArea-Intelligence/internal/config"
	"github.com/turtacn/LandArea-Intelligence/internal/infrastructure/monitoring/logging"
	prom "github.com/turtacn/LandArea-Intelligence/internal/infrastructure/monitoring/prometheus"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// RootOptions holds the global CLI flags shared by every subcommand.
type RootOptions struct {
	ConfigPath       string
	LogLevel         string
	ModelPath        string
	CorpusPath       string
	InteractionsPath string
	SnapshotVersion  string
	Verbose          bool
}

// CLIContext carries the initialized engine through the command tree.
type CLIContext struct {
	Config  *config.EngineConfig
	Logger  logging.Logger
	Service *analysis.AnalysisService
}

type cliContextKey struct{}

// NewRootCommand creates the root cobra command with global flags and the
// analyze, recommend, and version subcommands mounted.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "landai",
		Short: "landai — property valuation, scoring, and recommendation engine",
		Long: "landai analyzes a property from its raw location and attribute signals:\n" +
			"it estimates market value, scores beneficiary fit, ranks similar\n" +
			"properties from a corpus, and explains which features drove the result.",
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return persistentPreRun(cmd, opts)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "engine config file path (YAML)")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level override (debug, info, warn, error)")
	pf.StringVar(&opts.ModelPath, "model", "", "valuation model artifact (JSON); omit for heuristic-only")
	pf.StringVar(&opts.CorpusPath, "corpus", "", "recommendation corpus file (JSON)")
	pf.StringVar(&opts.InteractionsPath, "interactions", "", "user interaction log (JSON)")
	pf.StringVar(&opts.SnapshotVersion, "snapshot-version", "", "label stamped on results for this model/corpus generation")
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "debug-level logging")

	cmd.AddCommand(
		newAnalyzeCommand(),
		newRecommendCommand(),
		newVersionCommand(),
	)
	return cmd
}

// persistentPreRun loads configuration, builds the logger and metrics, loads
// the engine snapshot from the flagged files, and stores the CLIContext.
func persistentPreRun(cmd *cobra.Command, opts *RootOptions) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	if opts.Verbose {
		cfg.Log.Level = "debug"
	}
	// The CLI owns stdout for results; logs go to stderr.
	cfg.Log.OutputPaths = []string{"stderr"}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	logging.SetDefault(logger)

	metrics := prom.NewNopEngineMetrics()
	if cfg.Metrics.Enabled {
		collector, cerr := prom.NewMetricsCollector(prom.CollectorConfig{
			Namespace: cfg.Metrics.Namespace,
		}, logger)
		if cerr != nil {
			return cerr
		}
		metrics = prom.NewEngineMetrics(collector)
	}

	// The --model flag wins over the configured artifact path.
	if opts.ModelPath == "" {
		opts.ModelPath = cfg.Valuation.ModelPath
	}

	ec, err := loadEngineContext(opts, logger)
	if err != nil {
		return err
	}

	svc := analysis.NewAnalysisService(cfg, analysis.NewContextHolder(ec), logger, metrics)
	cliCtx := &CLIContext{Config: cfg, Logger: logger, Service: svc}
	cmd.SetContext(context.WithValue(cmd.Context(), cliContextKey{}, cliCtx))
	return nil
}

// getCLIContext extracts the CLIContext placed by persistentPreRun.
func getCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, fmt.Errorf("command context is not initialized")
	}
	cliCtx, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok || cliCtx == nil {
		return nil, fmt.Errorf("command context is not initialized")
	}
	return cliCtx, nil
}

// Execute runs the CLI and reports errors on stderr.
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %s\n", err.Error())
		return err
	}
	return nil
}

// printJSON writes data as indented JSON to the command's stdout.
func printJSON(cmd *cobra.Command, data interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// readInput reads from path, or from the command's stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}
