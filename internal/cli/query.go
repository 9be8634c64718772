package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/wikisparql/internal/engine"
	"github.com/roach88/wikisparql/internal/ir"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	Mode   string
	Limit  int
	Offset int
	Sort   []string
}

// QueryOutput is the JSON payload of the query command.
type QueryOutput struct {
	Mode   string `json:"mode"`
	SPARQL string `json:"sparql,omitempty"`
	*engine.QueryResult
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <query-file>",
		Short: "Run a query file against the SPARQL endpoint",
		Long: `Run a query description against the configured SPARQL endpoint.

Modes:
  instances  list matching pages (default)
  count      count matching pages
  debug      print the SPARQL text without contacting the endpoint
  none       do nothing

Endpoint failures, partial answers and unresolvable rows are listed with
the result; the command then exits with status 1.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Mode, "mode", "", "query mode (instances|count|debug|none); default from the query file")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum number of results")
	cmd.Flags().IntVar(&opts.Offset, "offset", 0, "number of results to skip")
	cmd.Flags().StringArrayVar(&opts.Sort, "sort", nil, "sort by property, \"-\" prefix for descending (repeatable)")

	return cmd
}

func runQuery(opts *QueryOptions, path string, cmd *cobra.Command) error {
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

	needsEndpoint := q.Mode == engine.ModeInstances || q.Mode == engine.ModeCount
	sess, err := openSession(cfg, needsEndpoint)
	if err != nil {
		return outputLoadError(formatter, err)
	}
	defer sess.close()

	formatter.VerboseLog("Running %s in %s mode against %s", path, q.Mode, cfg.Endpoint.QueryURL)
	result, text := sess.newEngine().GetQueryResult(cmd.Context(), q)
	result.Mode = q.Mode

	if opts.Format == "json" {
		if err := formatter.SuccessWithID(result.QueryID, QueryOutput{
			Mode:        q.Mode.String(),
			SPARQL:      text,
			QueryResult: result,
		}); err != nil {
			return err
		}
	} else {
		renderQueryResult(formatter, cmd, result, text)
	}

	if result.HasErrors() {
		return NewExitError(ExitFailure, fmt.Sprintf("query finished with %d error(s)", len(result.Errors)))
	}
	return nil
}

func renderQueryResult(formatter *OutputFormatter, cmd *cobra.Command, r *engine.QueryResult, text string) {
	w := cmd.OutOrStdout()

	switch r.Mode {
	case engine.ModeDebug:
		fmt.Fprint(w, text)
	case engine.ModeCount:
		if n, ok := r.CountValue(); ok {
			fmt.Fprintf(w, "%d\n", n)
		}
	case engine.ModeInstances:
		formatter.Table([]string{"#", "page", "namespace"}, itemRows(r.Items))
		if r.FurtherResults {
			fmt.Fprintln(w, "further results available")
		}
	}

	errW := formatter.GetErrWriter()
	for _, c := range r.Comments {
		fmt.Fprintf(errW, "note: %s\n", c)
	}
	for _, e := range r.Errors {
		fmt.Fprintf(errW, "Error [%s]: %s\n", ErrCodeQueryFailed, e)
	}
}

func itemRows(items []ir.EntityID) [][]string {
	rows := make([][]string, 0, len(items))
	for i, id := range items {
		ns, ok := ir.NamespaceName(id.Namespace)
		if !ok {
			ns = strconv.Itoa(id.Namespace)
		}
		if id.Namespace == ir.NSMain {
			ns = "(main)"
		}
		rows = append(rows, []string{strconv.Itoa(i + 1), id.String(), ns})
	}
	return rows
}
