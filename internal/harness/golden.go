package harness

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot renders a scenario execution as stable text: the query id, every
// query text sent (or the DEBUG text) and the result. Equal executions
// produce identical bytes.
//
//	scenario: population_instances
//	query_id: q-population
//	mode: instances
//	--- request 1
//	PREFIX ...
//	--- result
//	items:
//	  Berlin
//	further_results: true
func Snapshot(scenario *Scenario, result *Result) []byte {
	var b bytes.Buffer

	fmt.Fprintf(&b, "scenario: %s\n", scenario.Name)
	fmt.Fprintf(&b, "query_id: %s\n", result.QueryID)

	qr := result.QueryResult
	if qr != nil {
		fmt.Fprintf(&b, "mode: %s\n", qr.Mode)
	}

	for i, q := range result.Requests {
		fmt.Fprintf(&b, "--- request %d\n", i+1)
		writeBlock(&b, q)
	}
	if result.Debug != "" {
		b.WriteString("--- debug\n")
		writeBlock(&b, result.Debug)
	}

	b.WriteString("--- result\n")
	if qr == nil {
		return b.Bytes()
	}
	if len(qr.Items) > 0 {
		b.WriteString("items:\n")
		for _, id := range qr.Items {
			fmt.Fprintf(&b, "  %s\n", id)
		}
	}
	if n, ok := qr.CountValue(); ok {
		fmt.Fprintf(&b, "count: %d\n", n)
	}
	if qr.FurtherResults {
		b.WriteString("further_results: true\n")
	}
	if len(qr.Errors) > 0 {
		b.WriteString("errors:\n")
		for _, e := range qr.Errors {
			fmt.Fprintf(&b, "  %s\n", e)
		}
	}
	if len(qr.Comments) > 0 {
		b.WriteString("comments:\n")
		for _, c := range qr.Comments {
			fmt.Fprintf(&b, "  %s\n", c)
		}
	}
	return b.Bytes()
}

// writeBlock writes text and terminates it with a newline if needed.
func writeBlock(b *bytes.Buffer, text string) {
	b.WriteString(text)
	if len(text) > 0 && text[len(text)-1] != '\n' {
		b.WriteByte('\n')
	}
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	AssertGolden(t, scenario, result)
	return result, nil
}

// AssertGolden compares the snapshot of an existing result against its
// golden file without re-running the scenario.
func AssertGolden(t *testing.T, scenario *Scenario, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, Snapshot(scenario, result))
}
