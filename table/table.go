// Copyright 2026 The CommuneCheck Authors
// SPDX-License-Identifier: Apache-2.0

// Package table loads and writes the delimited text tables holding the
// addresses to verify.
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

// Common errors returned when loading a table.
var (
	ErrEmptyTable   = errors.New("the table is empty")
	ErrNoRows       = errors.New("the table has a header but no rows")
	ErrUnknownField = errors.New("unknown field")
)

// Separators lists the supported column separators.
var Separators = []rune{',', ';', '\t', '|'}

const utf8BOM = "\uFEFF"

// Table is a fully loaded delimited text table. Rows are identified by their
// position.
type Table struct {
	Header []string
	Rows   [][]string
}

// Len returns the number of rows, header excluded.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Index returns the position of the named field in the header.
func (t *Table) Index(field string) (int, error) {
	for i, name := range t.Header {
		if name == field {
			return i, nil
		}
	}

	return -1, fmt.Errorf("%w: %q", ErrUnknownField, field)
}

// ParseSeparator accepts a separator as typed on a command line.
func ParseSeparator(s string) (rune, error) {
	switch s {
	case "tab", `\t`:
		return '\t', nil
	case "comma":
		return ',', nil
	case "semicolon":
		return ';', nil
	case "pipe":
		return '|', nil
	}

	for _, sep := range Separators {
		if s == string(sep) {
			return sep, nil
		}
	}

	return 0, fmt.Errorf("unsupported separator %q", s)
}

// LoadOptions configures Load.
type LoadOptions struct {
	// Separator between columns. Defaults to a comma.
	Separator rune

	// Charset label of the input (e.g. "windows-1252", "latin1"). Defaults
	// to UTF-8.
	Charset string
}

// Load reads a whole table. The first record is the header.
func Load(r io.Reader, opts LoadOptions) (*Table, error) {
	if opts.Charset != "" {
		decoded, err := charset.NewReaderLabel(opts.Charset, r)
		if err != nil {
			return nil, fmt.Errorf("decoding %s input: %w", opts.Charset, err)
		}

		r = decoded
	}

	reader := csv.NewReader(r)
	if opts.Separator != 0 {
		reader.Comma = opts.Separator
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing table, the file may be malformed or the separator wrong: %w", err)
	}

	if len(records) == 0 {
		return nil, ErrEmptyTable
	}

	header := records[0]
	header[0] = strings.TrimPrefix(header[0], utf8BOM)

	if len(records) == 1 {
		return nil, ErrNoRows
	}

	return &Table{Header: header, Rows: records[1:]}, nil
}

// Write writes records as delimited text.
func Write(w io.Writer, records [][]string, separator rune) error {
	writer := csv.NewWriter(w)
	if separator != 0 {
		writer.Comma = separator
	}

	if err := writer.WriteAll(records); err != nil {
		return fmt.Errorf("writing table: %w", err)
	}

	return nil
}
