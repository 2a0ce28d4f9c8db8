// Package testutil holds helpers shared by package tests.
package testutil

import (
	"os"
	"path/filepath"

	"github.com/pmezard/go-difflib/difflib"
)

// TestingT is the subset of testing.TB the helpers need
type TestingT interface {
	Helper()
	Error(args ...interface{})
	Fatal(args ...interface{})
}

// CheckGoldenFile compares actual with the file at expectFilePath and reports
// a unified diff on mismatch. A missing golden file is created from actual.
func CheckGoldenFile(t TestingT, actual []byte, expectFilePath string) {
	t.Helper()

	expect, err := os.ReadFile(expectFilePath)
	if os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(expectFilePath), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(expectFilePath, actual, 0644); err != nil {
			t.Fatal(err)
		}
		return
	} else if err != nil {
		t.Error(err)
		return
	}

	if string(expect) != string(actual) {
		diff := difflib.UnifiedDiff{
			A:        difflib.SplitLines(string(expect)),
			B:        difflib.SplitLines(string(actual)),
			FromFile: expectFilePath,
			ToFile:   "actual",
			Context:  5,
		}
		d, err := difflib.GetUnifiedDiffString(diff)
		if err != nil {
			t.Fatal(err)
		}
		t.Error(d)
	}
}
