package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type recorder struct {
	errors []string
}

func (r *recorder) Helper()                   {}
func (r *recorder) Error(args ...interface{}) { r.errors = append(r.errors, fmt.Sprint(args...)) }
func (r *recorder) Fatal(args ...interface{}) { r.errors = append(r.errors, fmt.Sprint(args...)) }

func TestCheckGoldenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.golden")

	rec := &recorder{}
	CheckGoldenFile(rec, []byte("a\nb\n"), path)
	if len(rec.errors) != 0 {
		t.Fatalf("expected golden file to be created, got %v", rec.errors)
	}
	if data, _ := os.ReadFile(path); string(data) != "a\nb\n" {
		t.Fatalf("unexpected golden content %q", data)
	}

	CheckGoldenFile(rec, []byte("a\nb\n"), path)
	if len(rec.errors) != 0 {
		t.Errorf("expected match, got %v", rec.errors)
	}

	CheckGoldenFile(rec, []byte("a\nc\n"), path)
	if len(rec.errors) != 1 {
		t.Fatalf("expected one diff error, got %d", len(rec.errors))
	}
	if !strings.Contains(rec.errors[0], "-b") || !strings.Contains(rec.errors[0], "+c") {
		t.Errorf("diff should show changed line, got:\n%s", rec.errors[0])
	}
}
