package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ppiankov/revstat/internal/metrics"
	"github.com/ppiankov/revstat/internal/model"
	"github.com/ppiankov/revstat/internal/pipeline"
)

var (
	outJSON  string
	outMD    string
	noCache  bool
	noFooter bool
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Analyze a single review export",
	Long: heredoc.Doc(`
		Analyze reads one delimited review export and:
		- Drops rows with missing, null-like or malformed values
		- Labels each review by rating (above 4 positive, below 2 negative)
		- Counts sentiment per app and per language
		- Reports the most reviewed app, the most used device and the average rating

		Use "-" to read from standard input. Without --json or --md the JSON
		report is written to standard output.

		Example:
		  revstat analyze reviews.csv
		  revstat analyze reviews.csv --json report.json --md report.md
		  revstat analyze reviews.tsv --delimiter '\t' --include-rejections
		  cat reviews.csv | revstat analyze -
	`),
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	// Output flags
	analyzeCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path")
	analyzeCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	analyzeCmd.Flags().Bool("include-reviews", false, "include cleaned reviews in the report")
	analyzeCmd.Flags().Bool("include-rejections", false, "include rejected rows in the report")
	analyzeCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	// Input flags
	analyzeCmd.Flags().String("delimiter", ",", `field delimiter (use '\t' for tabs)`)
	analyzeCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh analysis)")
	analyzeCmd.Flags().String("metrics-file", "", "write Prometheus metrics to this textfile")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	path := args[0]

	if err := bindFlags(cmd.Flags(), map[string]string{
		"input.delimiter":           "delimiter",
		"output.include_reviews":    "include-reviews",
		"output.include_rejections": "include-rejections",
		"metrics.textfile":          "metrics-file",
	}); err != nil {
		return err
	}

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	applyCommonFlags(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "Analyzing: %s\n", path)
		fmt.Fprintf(os.Stderr, "Cache: %v\n", cfg.Cache.Enabled)
		fmt.Fprintln(os.Stderr)
	}

	reg, m := newMetrics(cfg)
	p := newPipeline(cfg, logger, m)

	var result *pipeline.AnalyzeResult
	if path == "-" {
		result, err = p.AnalyzeReader(ctx, path, cmd.InOrStdin())
	} else {
		result, err = p.Analyze(ctx, path)
	}
	if err != nil {
		return fmt.Errorf("analyze failed: %w", err)
	}

	if err := writeMetrics(reg, cfg.Metrics.Textfile, logger); err != nil {
		return err
	}

	// Without output files the report itself goes to stdout
	if outJSON == "" && outMD == "" {
		if err := p.Renderer().WriteJSON(cmd.OutOrStdout(), result.Report); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
		if cfg.Output.Verbose {
			p.Renderer().RenderSummary(os.Stderr, result.Report)
		}
		return nil
	}

	if err := p.RenderReport(result.Report, outJSON, outMD, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	return nil
}

// applyCommonFlags applies inverted boolean flags on top of the config
func applyCommonFlags(cfg *model.Config) {
	if noCache {
		cfg.Cache.Enabled = false
	}
	if noFooter {
		cfg.Output.IncludeFooter = false
	}
}

// newMetrics returns a registry only when a metrics textfile is configured
func newMetrics(cfg *model.Config) (*prometheus.Registry, *metrics.Metrics) {
	if cfg.Metrics.Textfile == "" {
		return nil, nil
	}
	return metrics.NewRegistry()
}

func newPipeline(cfg *model.Config, logger zerolog.Logger, m *metrics.Metrics) *pipeline.Pipeline {
	var opts []pipeline.Option
	if m != nil {
		opts = append(opts, pipeline.WithMetrics(m))
	}
	return pipeline.NewPipeline(cfg, logger, opts...)
}

func writeMetrics(reg *prometheus.Registry, path string, logger zerolog.Logger) error {
	if reg == nil || path == "" {
		return nil
	}
	if err := metrics.WriteTextfile(reg, path); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	logger.Debug().Str("path", path).Msg("wrote metrics textfile")
	return nil
}
