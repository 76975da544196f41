// Package tables decodes user-supplied tables and renders them as fixed
// text blocks for prompt templates.
package tables

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Record is one row of a decoded table. Numbers keep their source text as
// json.Number.
type Record map[string]any

// DecodeError reports input that is not a non-empty JSON array of objects
// with at least one field.
type DecodeError struct {
	// Offset is the byte offset of a syntax error, or -1 when unknown.
	Offset int64
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e == nil {
		return "decode table"
	}
	if e.Offset >= 0 {
		return fmt.Sprintf("decode table: %s (at byte %d)", e.Reason, e.Offset)
	}
	return "decode table: " + e.Reason
}

func (e *DecodeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Decode parses raw as a JSON array of objects.
func Decode(raw string) ([]Record, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, &DecodeError{Offset: -1, Reason: "input is empty"}
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var rows []json.RawMessage
	if err := dec.Decode(&rows); err != nil {
		return nil, newDecodeError(err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &DecodeError{Offset: dec.InputOffset(), Reason: "unexpected data after table"}
	}
	if len(rows) == 0 {
		return nil, &DecodeError{Offset: -1, Reason: "table has no rows"}
	}

	records := make([]Record, 0, len(rows))
	for i, row := range rows {
		rowDec := json.NewDecoder(bytes.NewReader(row))
		rowDec.UseNumber()
		var record Record
		if err := rowDec.Decode(&record); err != nil || record == nil {
			return nil, &DecodeError{Offset: -1, Reason: fmt.Sprintf("row %d is not an object", i+1), Err: err}
		}
		records = append(records, record)
	}
	if !hasFields(records) {
		return nil, &DecodeError{Offset: -1, Reason: "table has no columns"}
	}
	return records, nil
}

func hasFields(records []Record) bool {
	for _, record := range records {
		if len(record) > 0 {
			return true
		}
	}
	return false
}

func newDecodeError(err error) *DecodeError {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return &DecodeError{Offset: syntaxErr.Offset, Reason: syntaxErr.Error(), Err: err}
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return &DecodeError{Offset: typeErr.Offset, Reason: "expected a JSON array of objects", Err: err}
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return &DecodeError{Offset: -1, Reason: "unexpected end of input", Err: err}
	}
	return &DecodeError{Offset: -1, Reason: err.Error(), Err: err}
}
