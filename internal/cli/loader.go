package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue/token"

	"github.com/roach88/wikisparql/internal/engine"
	"github.com/roach88/wikisparql/internal/ir"
	"github.com/roach88/wikisparql/internal/queryir"
	"github.com/roach88/wikisparql/internal/querysparql"
)

// LoadError represents an error that occurred while loading a query file.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadedQuery is a query file together with its executable form.
type LoadedQuery struct {
	Path  string
	File  *queryir.QueryFile
	Query engine.Query
}

// LoadQuery reads a query file and converts it for vocab.
//
// Errors are *LoadError values. A description that cannot be converted is
// an error here; structural warnings are left to queryir.Validate.
func LoadQuery(path string, vocab ir.Vocabulary) (*LoadedQuery, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("query file not found: %s", path)}
		}
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing query file: %v", err)}
	}

	qf, err := queryir.LoadFile(path)
	if err != nil {
		return nil, convertDecodeError(err, ErrCodeLoadFailed, path)
	}

	q, err := engine.QueryFromFile(qf, vocab)
	if err != nil {
		return nil, convertDecodeError(err, queryErrorCode(err), path)
	}

	return &LoadedQuery{Path: path, File: qf, Query: q}, nil
}

// queryErrorCode picks the error code for a conversion failure by the
// field it names.
func queryErrorCode(err error) string {
	var decErr *queryir.DecodeError
	if !errors.As(err, &decErr) {
		return ErrCodeInvalidQuery
	}
	switch {
	case decErr.Field == "mode":
		return ErrCodeInvalidMode
	case strings.HasPrefix(decErr.Field, "sort["):
		return ErrCodeInvalidSort
	}
	return ErrCodeInvalidQuery
}

// ParseSortFlags parses --sort values. A leading "-" sorts descending;
// an empty property (or a bare "-") sorts by the result itself.
func ParseSortFlags(values []string) []querysparql.SortKey {
	keys := make([]querysparql.SortKey, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		desc := strings.HasPrefix(v, "-")
		v = strings.TrimPrefix(v, "-")
		var p ir.PropertyID
		if v != "" {
			p = queryir.PropertyKey(v)
		}
		keys = append(keys, querysparql.SortKey{Property: p, Descending: desc})
	}
	return keys
}

// FindQueryFiles walks the directory and returns all query file paths.
func FindQueryFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && isQueryFile(path) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func isQueryFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json", ".cue":
		return true
	}
	return false
}

// convertDecodeError converts a decode error to a LoadError with position info.
func convertDecodeError(err error, code, context string) *LoadError {
	var decErr *queryir.DecodeError
	if errors.As(err, &decErr) {
		return &LoadError{
			Code:    code,
			Message: fmt.Sprintf("%s: %s", decErr.Field, decErr.Message),
			Pos:     decErr.Pos,
		}
	}
	return &LoadError{
		Code:    code,
		Message: fmt.Sprintf("%s: %v", context, err),
	}
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeNoFiles     = "E003" // No query files found
	ErrCodeLoadFailed  = "E004" // Query file could not be decoded
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeWriteFailed = "E007" // File write error

	// Query file errors
	ErrCodeInvalidQuery = "E101" // Description cannot be converted
	ErrCodeInvalidMode  = "E102" // Unknown query mode
	ErrCodeInvalidSort  = "E103" // Unknown sort order
	ErrCodeWarnings     = "E110" // Structural warnings

	// Execution errors
	ErrCodeNoEndpoint  = "E201" // No endpoint configured
	ErrCodeDatabase    = "E202" // Database could not be opened or written
	ErrCodeQueryFailed = "E203" // Query ran with errors
	ErrCodeParseFailed = "E204" // Result document could not be parsed
	ErrCodeCache       = "E205" // Response cache could not be opened
	ErrCodeImport      = "E206" // Bundle could not be imported
	ErrCodeTestFailed  = "E207" // One or more scenarios failed
)
