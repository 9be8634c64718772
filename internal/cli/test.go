package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/wikisparql/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update bool   // regenerate golden files
	Filter string // scenario filter (glob pattern)
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir-or-file>",
		Short: "Run query scenarios against scripted endpoints",
		Long: `Run query scenarios end to end.

Each scenario imports its bundle into an in-memory database, answers the
engine's requests from its scripted responses and checks its assertions.
When a golden file exists next to the scenario (golden/<name>.golden) the
result snapshot must match it as well.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  wikisparql test ./scenarios
  wikisparql test ./scenarios --filter "population_*"
  wikisparql test ./scenarios --update
  wikisparql test ./scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")

	return cmd
}

func runTests(opts *TestOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	files, err := harness.DiscoverScenarios(path, opts.Filter)
	if err != nil {
		var notFound *harness.ScenarioNotFoundError
		if errors.As(err, &notFound) {
			formatter.Error(ErrCodeNotFound, fmt.Sprintf("scenarios path not found: %s", path), nil)
			return NewExitError(ExitCommandError, err.Error())
		}
		formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}

	if len(files) == 0 {
		if opts.Format == "json" {
			return outputTestJSON(cmd, &harness.SuiteResult{Scenarios: []harness.ScenarioOutcome{}})
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No scenarios found.")
		return nil
	}
	formatter.VerboseLog("Found %d scenario file(s)", len(files))

	suite := harness.RunSuite(cmd.Context(), files)
	for i := range suite.Scenarios {
		checkGolden(opts, suite, i)
	}

	if opts.Format == "json" {
		return outputTestJSON(cmd, suite)
	}
	return outputTestText(cmd, opts, suite)
}

// checkGolden updates or compares the golden file of one executed scenario.
// Scenarios that failed to load or run have nothing to compare.
func checkGolden(opts *TestOptions, suite *harness.SuiteResult, i int) {
	o := suite.Scenarios[i]
	if o.Result == nil {
		return
	}
	goldenPath := harness.GoldenFilePath(o.Path)

	if opts.Update {
		if err := harness.UpdateGoldenFile(goldenPath, o.Scenario, o.Result); err != nil {
			suite.MarkFailed(i, fmt.Sprintf("failed to update golden file: %v", err))
		}
		return
	}

	match, exists, err := harness.CompareGoldenFile(goldenPath, o.Scenario, o.Result)
	switch {
	case err != nil:
		suite.MarkFailed(i, fmt.Sprintf("golden comparison failed: %v", err))
	case exists && !match:
		suite.MarkFailed(i, "snapshot does not match golden file (run with --update to regenerate)")
	}
}

// outputTestJSON outputs the test result as JSON.
func outputTestJSON(cmd *cobra.Command, result *harness.SuiteResult) error {
	status := "ok"
	if result.Failed > 0 {
		status = "error"
	}

	response := CLIResponse{
		Status: status,
		Data:   result,
	}

	if result.Failed > 0 {
		response.Error = &CLIError{
			Code:    ErrCodeTestFailed,
			Message: fmt.Sprintf("%d scenario(s) failed", result.Failed),
		}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(response); err != nil {
		return err
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	return nil
}

// outputTestText outputs one line per scenario and a summary.
func outputTestText(cmd *cobra.Command, opts *TestOptions, result *harness.SuiteResult) error {
	w := cmd.OutOrStdout()

	for _, o := range result.Scenarios {
		if !o.Pass {
			fmt.Fprintf(w, "✗ %s\n", o.Name)
			for _, e := range o.Errors {
				fmt.Fprintf(w, "  %s\n", e)
			}
			continue
		}
		if opts.Update {
			fmt.Fprintf(w, "✓ %s (golden updated)\n", o.Name)
		} else {
			fmt.Fprintf(w, "✓ %s\n", o.Name)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}

	fmt.Fprintln(w, "✓ All scenarios passed")
	return nil
}
