package harness

import (
	"fmt"
	"slices"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string   // Assertion type for categorization
	Expected string   // Human-readable expected outcome
	Actual   string   // Human-readable actual outcome
	Requests []string // Query texts sent, for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Requests) > 0 {
		fmt.Fprintf(&buf, "\nRequests sent:\n")
		for i, q := range e.Requests {
			fmt.Fprintf(&buf, "  [%d]\n", i+1)
			for _, line := range strings.Split(strings.TrimRight(q, "\n"), "\n") {
				fmt.Fprintf(&buf, "    %s\n", line)
			}
		}
	}

	return buf.String()
}

// assertSPARQLContains checks that a query text contains the expected
// substring. With Request set only that request is searched.
func assertSPARQLContains(result *Result, a Assertion) error {
	if a.Request > 0 {
		if a.Request > len(result.Requests) {
			return &AssertionError{
				Type:     AssertSPARQLContains,
				Expected: fmt.Sprintf("request %d containing %q", a.Request, a.Text),
				Actual:   fmt.Sprintf("%d request(s) sent", len(result.Requests)),
				Requests: result.Requests,
			}
		}
		if strings.Contains(result.Requests[a.Request-1], a.Text) {
			return nil
		}
		return &AssertionError{
			Type:     AssertSPARQLContains,
			Expected: fmt.Sprintf("request %d containing %q", a.Request, a.Text),
			Actual:   "not found",
			Requests: result.Requests,
		}
	}

	for _, q := range result.sparql() {
		if strings.Contains(q, a.Text) {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertSPARQLContains,
		Expected: fmt.Sprintf("query text containing %q", a.Text),
		Actual:   "not found in any query text",
		Requests: result.sparql(),
	}
}

// assertRequests checks the number of requests the endpoint received.
func assertRequests(result *Result, a Assertion) error {
	if len(result.Requests) == *a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertRequests,
		Expected: fmt.Sprintf("%d request(s)", *a.Count),
		Actual:   fmt.Sprintf("%d request(s)", len(result.Requests)),
		Requests: result.Requests,
	}
}

// assertItems checks the result items, as prefixed titles, in order.
func assertItems(result *Result, a Assertion) error {
	actual := itemTitles(result)
	expected := a.Items
	if expected == nil {
		expected = []string{}
	}
	if slices.Equal(actual, expected) {
		return nil
	}
	return &AssertionError{
		Type:     AssertItems,
		Expected: fmt.Sprintf("%v", expected),
		Actual:   fmt.Sprintf("%v", actual),
		Requests: result.Requests,
	}
}

// assertCount checks the COUNT result.
func assertCount(result *Result, a Assertion) error {
	if result.QueryResult != nil {
		if n, ok := result.QueryResult.CountValue(); ok && n == *a.Count {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertCount,
		Expected: fmt.Sprintf("count %d", *a.Count),
		Actual:   formatCount(result),
		Requests: result.Requests,
	}
}

// assertFurtherResults checks the further-results flag.
func assertFurtherResults(result *Result, a Assertion) error {
	actual := result.QueryResult != nil && result.QueryResult.FurtherResults
	if actual == *a.Expect {
		return nil
	}
	return &AssertionError{
		Type:     AssertFurtherResults,
		Expected: fmt.Sprintf("further_results=%t", *a.Expect),
		Actual:   fmt.Sprintf("further_results=%t", actual),
		Requests: result.Requests,
	}
}

// assertErrorContains checks that some result error contains the text.
func assertErrorContains(result *Result, a Assertion) error {
	errs := resultErrors(result)
	for _, e := range errs {
		if strings.Contains(e, a.Text) {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertErrorContains,
		Expected: fmt.Sprintf("an error containing %q", a.Text),
		Actual:   fmt.Sprintf("errors %q", errs),
		Requests: result.Requests,
	}
}

// assertNoErrors checks that the result carries no errors.
func assertNoErrors(result *Result) error {
	errs := resultErrors(result)
	if len(errs) == 0 {
		return nil
	}
	return &AssertionError{
		Type:     AssertNoErrors,
		Expected: "no errors",
		Actual:   fmt.Sprintf("errors %q", errs),
		Requests: result.Requests,
	}
}

func itemTitles(result *Result) []string {
	if result.QueryResult == nil {
		return []string{}
	}
	out := make([]string, len(result.QueryResult.Items))
	for i, id := range result.QueryResult.Items {
		out[i] = id.String()
	}
	return out
}

func resultErrors(result *Result) []string {
	if result.QueryResult == nil {
		return nil
	}
	return result.QueryResult.Errors
}

func formatCount(result *Result) string {
	if result.QueryResult == nil {
		return "no result"
	}
	if n, ok := result.QueryResult.CountValue(); ok {
		return fmt.Sprintf("count %d", n)
	}
	return "count unknown"
}

// EvaluateAssertions runs all assertions and returns their failures.
// Assertions are evaluated in order; all of them run even after a failure.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertSPARQLContains:
			err = assertSPARQLContains(result, assertion)
		case AssertRequests:
			err = assertRequests(result, assertion)
		case AssertItems:
			err = assertItems(result, assertion)
		case AssertCount:
			err = assertCount(result, assertion)
		case AssertFurtherResults:
			err = assertFurtherResults(result, assertion)
		case AssertErrorContains:
			err = assertErrorContains(result, assertion)
		case AssertNoErrors:
			err = assertNoErrors(result)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
