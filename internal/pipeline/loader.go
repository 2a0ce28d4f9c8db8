package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Loader reads input files into memory with a size limit
type Loader struct {
	maxBytes int64
}

// NewLoader creates a new Loader that refuses inputs larger than maxBytes
func NewLoader(maxBytes int64) *Loader {
	return &Loader{maxBytes: maxBytes}
}

// LoadResult contains the input bytes and what we know about them
type LoadResult struct {
	Data    []byte
	Source  string
	Subject string
	SHA256  string
}

// Load reads the file at path
func (l *Loader) Load(path string) (*LoadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer func() { _ = f.Close() }()

	return l.Read(path, f)
}

// Read consumes r entirely; source labels the input in reports
func (l *Loader) Read(source string, r io.Reader) (*LoadResult, error) {
	limited := io.LimitReader(r, l.maxBytes+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	if int64(len(data)) > l.maxBytes {
		return nil, fmt.Errorf("input %s exceeds %d bytes", source, l.maxBytes)
	}

	sum := sha256.Sum256(data)
	return &LoadResult{
		Data:    data,
		Source:  source,
		Subject: extractSubject(source),
		SHA256:  hex.EncodeToString(sum[:]),
	}, nil
}

// extractSubject derives a human-readable name from a file path
func extractSubject(source string) string {
	base := filepath.Base(source)
	if base == "." || base == string(filepath.Separator) || base == "-" {
		return "stdin"
	}

	// Remove file extension
	if idx := strings.LastIndex(base, "."); idx > 0 {
		base = base[:idx]
	}

	// De-slugify: replace underscores and hyphens with spaces
	base = strings.ReplaceAll(base, "_", " ")
	base = strings.ReplaceAll(base, "-", " ")

	return strings.Join(strings.Fields(base), " ")
}
