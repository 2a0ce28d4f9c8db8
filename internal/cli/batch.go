package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/ppiankov/revstat/internal/worker"
)

var (
	listFile     string
	outputDir    string
	batchTimeout time.Duration
	// noCache and noFooter are defined in analyze.go and shared here
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file|dir|glob>...",
	Short: "Analyze multiple review exports in parallel",
	Long: heredoc.Doc(`
		Batch analyzes many review exports concurrently:
		- Accept files, directories (their *.csv files) and glob patterns
		- Optionally read more paths from a list file (one per line)
		- Analyze files in parallel with a configurable worker count
		- Write a JSON and a Markdown report per file

		Example:
		  revstat batch exports/
		  revstat batch 'exports/*.csv' --concurrency 8 --output-dir ./reports
		  revstat batch --list paths.txt --timeout 5m
	`),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	// Concurrency flags
	batchCmd.Flags().StringVar(&listFile, "list", "", "file with input paths, one per line")
	batchCmd.Flags().Int("concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./revstat-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")

	// Inherit flags from analyze command
	batchCmd.Flags().String("delimiter", ",", `field delimiter (use '\t' for tabs)`)
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh analysis)")
	batchCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	batchCmd.Flags().String("metrics-file", "", "write Prometheus metrics to this textfile")
}

func runBatch(cmd *cobra.Command, args []string) error {
	if err := bindFlags(cmd.Flags(), map[string]string{
		"concurrency.workers": "concurrency",
		"input.delimiter":     "delimiter",
		"metrics.textfile":    "metrics-file",
	}); err != nil {
		return err
	}

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	applyCommonFlags(cfg)

	// Collect input paths
	inputs := append([]string(nil), args...)
	if listFile != "" {
		listed, err := worker.ReadPathsFromFile(listFile)
		if err != nil {
			return fmt.Errorf("read list: %w", err)
		}
		inputs = append(inputs, listed...)
	}

	paths, err := worker.ExpandInputs(inputs)
	if err != nil {
		return fmt.Errorf("expand inputs: %w", err)
	}
	if len(paths) == 0 {
		return fmt.Errorf("no input files (pass files, directories or --list)")
	}

	errOut := cmd.ErrOrStderr()
	workers := cfg.Concurrency.Workers

	fmt.Fprintf(errOut, "\n")
	fmt.Fprintf(errOut, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(errOut, "  revstat Batch Analysis\n")
	fmt.Fprintf(errOut, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(errOut, "\n")
	fmt.Fprintf(errOut, "  Files:        %d\n", len(paths))
	fmt.Fprintf(errOut, "  Workers:      %d\n", workers)
	fmt.Fprintf(errOut, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(errOut, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(errOut, "\n")

	// Create output directory
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	reg, m := newMetrics(cfg)
	p := newPipeline(cfg, logger, m)
	processor := worker.NewBatchProcessor(p, workers)

	results := processor.ProcessFiles(ctx, paths)

	successCount := 0
	failureCount := 0
	used := make(map[string]int)
	renderer := p.Renderer()

	for _, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(errOut, "✗ %s: %v\n", result.Path, result.Error)
			continue
		}

		report := result.Result.Report

		// Generate output file names; identical subjects get a numeric suffix
		slug := sanitizeFilename(report.Subject)
		used[slug]++
		if n := used[slug]; n > 1 {
			slug = fmt.Sprintf("%s-%d", slug, n)
		}
		jsonPath := filepath.Join(outputDir, slug+".json")
		mdPath := filepath.Join(outputDir, slug+".md")

		if err := renderer.RenderJSON(report, jsonPath); err != nil {
			failureCount++
			fmt.Fprintf(errOut, "✗ %s: failed to write JSON: %v\n", result.Path, err)
			continue
		}
		if err := renderer.RenderMarkdown(report, mdPath); err != nil {
			failureCount++
			fmt.Fprintf(errOut, "✗ %s: failed to write Markdown: %v\n", result.Path, err)
			continue
		}

		successCount++
		cached := ""
		if result.Result.Cached {
			cached = ", cached"
		}
		fmt.Fprintf(errOut, "✓ %s (%d reviews, avg %.3f%s)\n",
			result.Path, report.Input.Cleaned, report.Summary.AvgRating, cached)
	}

	if err := writeMetrics(reg, cfg.Metrics.Textfile, logger); err != nil {
		return err
	}

	// Summary
	fmt.Fprintf(errOut, "\n")
	fmt.Fprintf(errOut, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(errOut, "  Batch Complete\n")
	fmt.Fprintf(errOut, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(errOut, "\n")
	fmt.Fprintf(errOut, "  Total:     %d files\n", len(results))
	fmt.Fprintf(errOut, "  Success:   %d\n", successCount)
	fmt.Fprintf(errOut, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(errOut, "  Output:    %s\n", outputDir)
	fmt.Fprintf(errOut, "\n")

	if failureCount > 0 {
		return fmt.Errorf("%d of %d files failed", failureCount, len(results))
	}
	return nil
}

// sanitizeFilename turns a report subject into a safe file name
func sanitizeFilename(s string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "-",
	)
	s = replacer.Replace(strings.TrimSpace(s))
	s = strings.Trim(s, ".")

	if s == "" {
		s = "report"
	}

	// Limit length
	if len(s) > 100 {
		s = s[:100]
	}

	return s
}
