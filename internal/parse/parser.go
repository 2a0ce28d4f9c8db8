// Package parse turns delimited review exports into raw header-keyed records.
package parse

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ppiankov/revstat/internal/model"
)

const utf8BOM = "\ufeff"

// Parser reads delimited text whose first line is the header
type Parser struct {
	delimiter rune
}

// NewParser creates a parser for the given field delimiter
func NewParser(delimiter rune) *Parser {
	if delimiter == 0 {
		delimiter = ','
	}
	return &Parser{delimiter: delimiter}
}

// ParseFile opens path and parses its contents
func (p *Parser) ParseFile(path string) ([]model.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := p.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return rows, nil
}

// Parse reads all rows from r.
// Header cells are whitespace-trimmed and values are left untouched. Blank
// lines yield no row. A row shorter than the header leaves the trailing
// columns out of its record; cells beyond the header are ignored.
func (p *Parser) Parse(r io.Reader) ([]model.Row, error) {
	reader := csv.NewReader(r)
	reader.Comma = p.delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []model.Row{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		header[i] = strings.TrimSpace(h)
	}

	rows := []model.Row{}
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		if isBlank(fields) {
			continue
		}

		line, _ := reader.FieldPos(0)

		record := make(model.RawRecord, len(header))
		for i, name := range header {
			if i >= len(fields) {
				break
			}
			record[name] = fields[i]
		}

		rows = append(rows, model.Row{Line: line, Record: record})
	}

	return rows, nil
}

// isBlank reports whether a row holds only whitespace
func isBlank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
