package results

import (
	"github.com/roach88/wikisparql/internal/ir"
)

// ErrorCode classifies how an endpoint call went.
type ErrorCode int

const (
	// ErrorNone means the result is complete.
	ErrorNone ErrorCode = 0

	// ErrorUnreachable means the endpoint could not be reached or refused
	// the query; the result has no rows.
	ErrorUnreachable ErrorCode = 1

	// ErrorIncomplete means the endpoint answered with a partial result.
	ErrorIncomplete ErrorCode = 2
)

func (c ErrorCode) String() string {
	switch c {
	case ErrorNone:
		return "none"
	case ErrorUnreachable:
		return "unreachable"
	case ErrorIncomplete:
		return "incomplete"
	}
	return "unknown"
}

// FederatedResult is a decoded endpoint answer: column names, rows of
// elements (nil for unbound cells), an error code and comments.
//
// Rows are read with a forward cursor:
//
//	for fr.Next() {
//	    row := fr.Row()
//	}
//
// The header, rows and comments never change after construction.
type FederatedResult struct {
	header    []string
	rows      [][]ir.Element
	errorCode ErrorCode
	comments  []string
	cursor    int
}

// NewFederatedResult creates a result. Rows shorter than the header are
// padded with unbound cells.
func NewFederatedResult(header []string, rows [][]ir.Element, code ErrorCode, comments ...string) *FederatedResult {
	for i, row := range rows {
		if len(row) < len(header) {
			padded := make([]ir.Element, len(header))
			copy(padded, row)
			rows[i] = padded
		}
	}
	return &FederatedResult{
		header:    header,
		rows:      rows,
		errorCode: code,
		comments:  comments,
		cursor:    -1,
	}
}

// Failed creates an empty result carrying an error code.
func Failed(code ErrorCode, comments ...string) *FederatedResult {
	return NewFederatedResult(nil, nil, code, comments...)
}

// WithErrorCode returns a copy of the result with a different error code
// and extra comments. The cursor of the copy is rewound.
func (r *FederatedResult) WithErrorCode(code ErrorCode, comments ...string) *FederatedResult {
	all := append(append([]string(nil), r.comments...), comments...)
	return NewFederatedResult(r.header, r.rows, code, all...)
}

// Header returns the column names.
func (r *FederatedResult) Header() []string {
	return r.header
}

// ErrorCode returns the error code.
func (r *FederatedResult) ErrorCode() ErrorCode {
	return r.errorCode
}

// Comments returns the comments found in the response.
func (r *FederatedResult) Comments() []string {
	return r.comments
}

// NumRows returns the number of rows.
func (r *FederatedResult) NumRows() int {
	return len(r.rows)
}

// ColumnIndex returns the index of a column, or -1.
func (r *FederatedResult) ColumnIndex(name string) int {
	for i, h := range r.header {
		if h == name {
			return i
		}
	}
	return -1
}

// Next advances the cursor and reports whether a row is available.
func (r *FederatedResult) Next() bool {
	if r.cursor+1 >= len(r.rows) {
		r.cursor = len(r.rows)
		return false
	}
	r.cursor++
	return true
}

// Row returns the row under the cursor, or nil before the first Next and
// after the last.
func (r *FederatedResult) Row() []ir.Element {
	if r.cursor < 0 || r.cursor >= len(r.rows) {
		return nil
	}
	return r.rows[r.cursor]
}

// Rewind moves the cursor back before the first row.
func (r *FederatedResult) Rewind() {
	r.cursor = -1
}

// Rows returns every row, independent of the cursor.
func (r *FederatedResult) Rows() [][]ir.Element {
	return r.rows
}

// BooleanResult returns the decoded form of an ASK answer.
func BooleanResult(answer bool) *FederatedResult {
	if !answer {
		return NewFederatedResult(nil, nil, ErrorNone)
	}
	return NewFederatedResult(nil, [][]ir.Element{{ir.NewTypedLiteral("true", ir.XSDBoolean)}}, ErrorNone)
}
