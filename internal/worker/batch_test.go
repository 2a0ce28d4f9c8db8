package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/revstat/internal/model"
	"github.com/ppiankov/revstat/internal/pipeline"
)

// mockAnalyzer implements Analyzer
type mockAnalyzer struct {
	failOn string
}

func (m *mockAnalyzer) Analyze(ctx context.Context, path string) (*pipeline.AnalyzeResult, error) {
	time.Sleep(5 * time.Millisecond) // Simulate work
	if path == m.failOn {
		return nil, errors.New("analyze error")
	}
	return &pipeline.AnalyzeResult{
		Report: &model.Report{
			Subject: strings.TrimSuffix(filepath.Base(path), ".csv"),
			Source:  path,
		},
	}, nil
}

func TestBatchProcessor_ProcessFiles(t *testing.T) {
	processor := NewBatchProcessor(&mockAnalyzer{}, 2)

	paths := []string{"a.csv", "b.csv", "c.csv", "d.csv", "e.csv"}
	results := processor.ProcessFiles(context.Background(), paths)

	if len(results) != len(paths) {
		t.Fatalf("expected %d results, got %d", len(paths), len(results))
	}

	for i, res := range results {
		if res.Path != paths[i] {
			t.Errorf("expected result %d for %s, got %s", i, paths[i], res.Path)
		}
		if res.Error != nil {
			t.Errorf("unexpected error for %s: %v", res.Path, res.Error)
			continue
		}
		if res.Result == nil || res.Result.Report.Source != paths[i] {
			t.Errorf("expected report for %s", paths[i])
		}
	}
}

func TestBatchProcessor_PartialFailure(t *testing.T) {
	processor := NewBatchProcessor(&mockAnalyzer{failOn: "bad.csv"}, 3)

	results := processor.ProcessFiles(context.Background(), []string{"ok.csv", "bad.csv", "fine.csv"})

	if results[0].Error != nil || results[2].Error != nil {
		t.Errorf("expected good files to succeed, got %v and %v", results[0].Error, results[2].Error)
	}
	if results[1].Error == nil {
		t.Error("expected error for bad.csv")
	}
	if results[1].Result != nil {
		t.Error("expected no result for failed file")
	}
}

func TestBatchProcessor_Empty(t *testing.T) {
	processor := NewBatchProcessor(&mockAnalyzer{}, 2)

	results := processor.ProcessFiles(context.Background(), nil)
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestBatchProcessor_CanceledContext(t *testing.T) {
	processor := NewBatchProcessor(&mockAnalyzer{}, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	paths := []string{"a.csv", "b.csv", "c.csv"}
	results := processor.ProcessFiles(ctx, paths)

	if len(results) != len(paths) {
		t.Fatalf("expected %d results, got %d", len(paths), len(results))
	}
	for i, res := range results {
		if res == nil {
			t.Fatalf("result %d is nil", i)
		}
		if res.Path != paths[i] {
			t.Errorf("expected path %s, got %s", paths[i], res.Path)
		}
	}
}

func TestReadPathsFromFile(t *testing.T) {
	content := `
# Review exports
data/a.csv
data/b.csv

data/a.csv
  data/c.csv
`
	tmpfile, err := os.CreateTemp("", "paths-*.txt")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Remove(tmpfile.Name()) }()

	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}

	paths, err := ReadPathsFromFile(tmpfile.Name())
	if err != nil {
		t.Fatalf("ReadPathsFromFile failed: %v", err)
	}

	expected := []string{"data/a.csv", "data/b.csv", "data/c.csv"}
	if len(paths) != len(expected) {
		t.Fatalf("expected %d paths, got %d: %v", len(expected), len(paths), paths)
	}
	for i, p := range paths {
		if p != expected[i] {
			t.Errorf("expected %s at %d, got %s", expected[i], i, p)
		}
	}
}

func TestReadPathsFromFile_Missing(t *testing.T) {
	_, err := ReadPathsFromFile(filepath.Join(t.TempDir(), "missing.txt"))
	if err == nil {
		t.Error("expected error for missing file")
	}
}

func TestExpandInputs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.csv", "a.csv", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	paths, err := ExpandInputs([]string{dir, filepath.Join(dir, "*.csv"), "other.csv"})
	if err != nil {
		t.Fatalf("ExpandInputs failed: %v", err)
	}

	expected := []string{
		filepath.Join(dir, "a.csv"),
		filepath.Join(dir, "b.csv"),
		"other.csv",
	}
	if len(paths) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, paths)
	}
	for i, p := range paths {
		if p != expected[i] {
			t.Errorf("expected %s at %d, got %s", expected[i], i, p)
		}
	}
}

func TestExpandInputs_NoMatch(t *testing.T) {
	_, err := ExpandInputs([]string{filepath.Join(t.TempDir(), "*.csv")})
	if err == nil {
		t.Error("expected error when a pattern matches nothing")
	}
}
