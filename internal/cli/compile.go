package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/wikisparql/internal/engine"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string   // output file path
	Mode   string   // overrides the mode of the query file
	Limit  int      // overrides the limit of the query file
	Offset int      // overrides the offset of the query file
	Sort   []string // overrides the sort keys of the query file
}

// CompilationResult is the JSON payload of the compile command.
type CompilationResult struct {
	Mode   string   `json:"mode"`
	SPARQL string   `json:"sparql"`
	Errors []string `json:"errors,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <query-file>",
		Short: "Translate a query file to SPARQL",
		Long: `Translate a query description to the SPARQL text that would be sent
to the endpoint, without contacting it.

Labels and concept definitions are read from the database when it exists.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")
	cmd.Flags().StringVar(&opts.Mode, "mode", "", "query mode (instances|count); default from the query file")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum number of results")
	cmd.Flags().IntVar(&opts.Offset, "offset", 0, "number of results to skip")
	cmd.Flags().StringArrayVar(&opts.Sort, "sort", nil, "sort by property, \"-\" prefix for descending (repeatable)")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	cfg, err := opts.settings()
	if err != nil {
		formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	loaded, err := LoadQuery(path, cfg.Vocab())
	if err != nil {
		return outputLoadError(formatter, err)
	}
	q, err := applyQueryFlags(loaded.Query, cmd, opts.Mode, opts.Limit, opts.Offset, opts.Sort)
	if err != nil {
		return outputLoadError(formatter, err)
	}

	sess, err := openSession(cfg, false)
	if err != nil {
		return outputLoadError(formatter, err)
	}
	defer sess.close()

	text, compileErrs := sess.newEngine().Compile(q)
	formatter.VerboseLog("Compiled %s (%s mode, %d error(s))", path, q.Mode, len(compileErrs))

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(text), 0644); err != nil {
			formatter.Error(ErrCodeWriteFailed, fmt.Sprintf("failed to write output: %v", err), nil)
			return WrapExitError(ExitCommandError, "failed to write output", err)
		}
		formatter.VerboseLog("Wrote %s", opts.Output)
	}

	if opts.Format == "json" {
		return formatter.Success(CompilationResult{
			Mode:   q.Mode.String(),
			SPARQL: text,
			Errors: compileErrs,
		})
	}

	w := cmd.OutOrStdout()
	if opts.Output == "" {
		fmt.Fprint(w, text)
	} else {
		fmt.Fprintf(w, "✓ Compiled %s to %s\n", path, opts.Output)
	}
	for _, e := range compileErrs {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", e)
	}
	return nil
}

// applyQueryFlags overrides query file settings with the flags that were
// set on the command line.
func applyQueryFlags(q engine.Query, cmd *cobra.Command, mode string, limit, offset int, sort []string) (engine.Query, error) {
	flags := cmd.Flags()
	if flags.Changed("mode") {
		m, err := engine.ParseMode(mode)
		if err != nil {
			return q, &LoadError{Code: ErrCodeInvalidMode, Message: err.Error()}
		}
		q.Mode = m
	}
	if flags.Changed("limit") {
		q.Limit = limit
	}
	if flags.Changed("offset") {
		q.Offset = offset
	}
	if flags.Changed("sort") {
		q.SortKeys = ParseSortFlags(sort)
	}
	return q, nil
}

// outputLoadError reports a LoadError (or any other error) and returns the
// matching ExitError.
func outputLoadError(formatter *OutputFormatter, err error) error {
	code := ErrCodeGeneric
	var details map[string]any
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		code = loadErr.Code
		if loadErr.Pos.IsValid() {
			details = map[string]any{
				"file":   loadErr.Pos.Filename(),
				"line":   loadErr.Pos.Line(),
				"column": loadErr.Pos.Column(),
			}
		}
		formatter.Error(code, loadErr.Message, details)
	} else {
		formatter.Error(code, err.Error(), nil)
	}

	exit := ExitCommandError
	if strings.HasPrefix(code, "E1") {
		exit = ExitFailure
	}
	return WrapExitError(exit, "failed to load query", err)
}
