package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/wikisparql/internal/ir"
	"github.com/roach88/wikisparql/internal/queryir"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid bool             `json:"valid"`
	Files []FileValidation `json:"files"`
}

// FileValidation is the outcome for one query file.
type FileValidation struct {
	Path     string   `json:"path"`
	Depth    int      `json:"depth,omitempty"`
	Code     string   `json:"code,omitempty"`
	Line     int      `json:"line,omitempty"`
	Error    string   `json:"error,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

func (f FileValidation) ok() bool {
	return f.Error == "" && len(f.Warnings) == 0
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <query-file-or-dir>...",
		Short: "Check query files without running them",
		Long: `Decode query files and check their descriptions for structural
problems: empty properties, values without a comparison target, pattern
comparators on pages and similar.

Directories are searched for .yaml, .yml, .json and .cue files.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, args []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	cfg, err := opts.settings()
	if err != nil {
		return outputValidateError(formatter, ErrCodeGeneric, err.Error(), nil)
	}

	paths, err := expandQueryPaths(args)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			return outputValidateError(formatter, loadErr.Code, loadErr.Message, nil)
		}
		return outputValidateError(formatter, ErrCodeGeneric, err.Error(), nil)
	}
	formatter.VerboseLog("Found %d query file(s)", len(paths))

	result := ValidationResult{Valid: true, Files: make([]FileValidation, 0, len(paths))}
	for _, path := range paths {
		formatter.VerboseLog("Validating %s", path)
		fv := validateQueryFile(path, cfg.Vocab())
		if !fv.ok() {
			result.Valid = false
		}
		result.Files = append(result.Files, fv)
	}

	if result.Valid {
		return outputValidateSuccess(formatter, result)
	}
	return outputValidationErrors(formatter, result)
}

func validateQueryFile(path string, vocab ir.Vocabulary) FileValidation {
	fv := FileValidation{Path: path}
	loaded, err := LoadQuery(path, vocab)
	if err != nil {
		fv.Code = ErrCodeGeneric
		fv.Error = err.Error()
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			fv.Code = loadErr.Code
			fv.Error = loadErr.Message
			if loadErr.Pos.IsValid() {
				fv.Line = loadErr.Pos.Line()
			}
		}
		return fv
	}

	vr := queryir.Validate(loaded.Query.Description)
	fv.Depth = vr.Depth
	if !vr.Valid {
		fv.Code = ErrCodeWarnings
		fv.Warnings = vr.Warnings
	}
	return fv
}

// expandQueryPaths replaces directories by the query files they contain.
func expandQueryPaths(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("path not found: %s", arg)}
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		files, err := FindQueryFiles(arg)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("error scanning directory: %v", err)}
		}
		if len(files) == 0 {
			return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no query files found in %s", arg)}
		}
		paths = append(paths, files...)
	}
	return paths, nil
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ All %d query file(s) valid\n", len(result.Files))
	return nil
}

// outputValidateError outputs a single validation error.
func outputValidateError(formatter *OutputFormatter, code, message string, details any) error {
	_ = formatter.Error(code, message, details)
	// Unreadable paths are command-level errors (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationErrors outputs the files that failed validation.
func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	failed := 0
	var first FileValidation
	for _, f := range result.Files {
		if !f.ok() {
			if failed == 0 {
				first = f
			}
			failed++
		}
	}

	if formatter.Format == "json" {
		message := first.Error
		if message == "" && len(first.Warnings) > 0 {
			message = first.Warnings[0]
		}
		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    first.Code,
				Message: message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		// Validation failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed for %d file(s)", failed))
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, f := range result.Files {
		if f.ok() {
			continue
		}
		if f.Line > 0 {
			fmt.Fprintf(formatter.Writer, "%s, line %d\n", f.Path, f.Line)
		} else {
			fmt.Fprintln(formatter.Writer, f.Path)
		}
		if f.Error != "" {
			fmt.Fprintf(formatter.Writer, "  %s: %s\n", f.Code, f.Error)
		}
		for _, w := range f.Warnings {
			fmt.Fprintf(formatter.Writer, "  %s: %s\n", f.Code, w)
		}
		fmt.Fprintln(formatter.Writer)
	}

	// Validation failures = exit code 1
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed for %d file(s)", failed))
}
