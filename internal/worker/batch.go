package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ppiankov/revstat/internal/pipeline"
)

// Analyzer defines the interface for analyzing one input file
type Analyzer interface {
	Analyze(ctx context.Context, path string) (*pipeline.AnalyzeResult, error)
}

// FileJob analyzes a single file
type FileJob struct {
	Path     string
	Analyzer Analyzer
}

// Execute executes the analysis job
func (j *FileJob) Execute(ctx context.Context) Result {
	result, err := j.Analyzer.Analyze(ctx, j.Path)
	if err != nil {
		return &FileResult{Path: j.Path, Error: err}
	}
	return &FileResult{Path: j.Path, Result: result}
}

// FileResult represents the outcome of one file analysis
type FileResult struct {
	Path   string
	Result *pipeline.AnalyzeResult
	Error  error
}

// GetError returns the error from the file result
func (r *FileResult) GetError() error {
	return r.Error
}

// BatchProcessor analyzes multiple files concurrently
type BatchProcessor struct {
	analyzer    Analyzer
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(analyzer Analyzer, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		analyzer:    analyzer,
		concurrency: concurrency,
	}
}

// ProcessFiles analyzes every path and returns one result per path, in order
func (b *BatchProcessor) ProcessFiles(ctx context.Context, paths []string) []*FileResult {
	if len(paths) == 0 {
		return []*FileResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for _, path := range paths {
		pool.Submit(&FileJob{Path: path, Analyzer: b.analyzer})
	}

	results := pool.Wait()

	out := make([]*FileResult, len(paths))
	for i, res := range results {
		if res == nil {
			err := ctx.Err()
			if err == nil {
				err = context.Canceled
			}
			out[i] = &FileResult{Path: paths[i], Error: fmt.Errorf("not analyzed: %w", err)}
			continue
		}
		out[i] = res.(*FileResult)
	}

	return out
}

// ReadPathsFromFile reads input paths from a file (one per line).
// Blank lines and # comments are skipped; duplicates are dropped.
func ReadPathsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return paths, nil
}

// ExpandInputs resolves command-line inputs into file paths.
// Directories expand to their *.csv files, patterns are globbed and plain
// paths pass through unchanged. Duplicates are dropped, order is kept.
func ExpandInputs(inputs []string) ([]string, error) {
	var paths []string
	seen := make(map[string]bool)
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}

	for _, in := range inputs {
		if info, err := os.Stat(in); err == nil && info.IsDir() {
			matches, err := filepath.Glob(filepath.Join(in, "*.csv"))
			if err != nil {
				return nil, fmt.Errorf("list %s: %w", in, err)
			}
			sort.Strings(matches)
			for _, m := range matches {
				add(m)
			}
			continue
		}

		if strings.ContainsAny(in, "*?[") {
			matches, err := filepath.Glob(in)
			if err != nil {
				return nil, fmt.Errorf("glob %s: %w", in, err)
			}
			if len(matches) == 0 {
				return nil, fmt.Errorf("no files match %s", in)
			}
			sort.Strings(matches)
			for _, m := range matches {
				add(m)
			}
			continue
		}

		add(in)
	}

	return paths, nil
}
