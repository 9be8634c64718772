package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/wikisparql/internal/ir"
	"github.com/roach88/wikisparql/internal/queryir"
	"github.com/roach88/wikisparql/internal/testutil"
)

// Scenario defines one end-to-end query scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Vocabulary overrides the default local wiki vocabulary.
	Vocabulary *VocabularySpec `yaml:"vocabulary,omitempty"`

	// Options configure the compiler and the engine.
	Options Options `yaml:"options,omitempty"`

	// Bundle is an optional wiki bundle imported before the query runs.
	// Relative paths are resolved against the scenario's base path.
	Bundle string `yaml:"bundle,omitempty"`

	// Query is the query to run, in query file form.
	Query *queryir.QueryFile `yaml:"query"`

	// QueryID fixes the query id for deterministic snapshots.
	// If empty, testutil.DefaultQueryID is used.
	QueryID string `yaml:"query_id,omitempty"`

	// Responses are the endpoint's answers, one per request. The last one
	// repeats once the list is exhausted.
	Responses []testutil.Response `yaml:"responses,omitempty"`

	// Assertions validate the outcome.
	Assertions []Assertion `yaml:"assertions"`
}

// VocabularySpec sets the IRI bases of the wiki under test.
type VocabularySpec struct {
	WikiBase     string `yaml:"wiki_base"`
	PropertyBase string `yaml:"property_base,omitempty"`
}

// Options mirror the compiler and engine settings of the configuration file.
type Options struct {
	SubcategoryInference bool   `yaml:"subcategory_inference,omitempty"`
	MaxConceptDepth      int    `yaml:"max_concept_depth,omitempty"`
	ReorderByWeight      bool   `yaml:"reorder_by_weight,omitempty"`
	DefaultGraph         string `yaml:"default_graph,omitempty"`
	DefaultLimit         int    `yaml:"default_limit,omitempty"`
	IgnoreQueryErrors    bool   `yaml:"ignore_query_errors,omitempty"`
}

// Assertion validates the outcome of a scenario.
type Assertion struct {
	// Type specifies the assertion type:
	// - "sparql_contains": a query text contains Text
	// - "requests": the endpoint received exactly Count requests
	// - "items": the result items equal Items, in order
	// - "count": the COUNT result equals Count
	// - "further_results": FurtherResults equals Expect
	// - "error_contains": some result error contains Text
	// - "no_errors": the result carries no errors
	Type string `yaml:"type"`

	// Text is the expected substring (sparql_contains, error_contains).
	Text string `yaml:"text,omitempty"`

	// Request selects the 1-based request sparql_contains looks at.
	// Zero means any query text, the DEBUG text included.
	Request int `yaml:"request,omitempty"`

	// Count is the expected number (requests, count).
	Count *int `yaml:"count,omitempty"`

	// Items are prefixed page titles, e.g. "Category:Cities" (items).
	Items []string `yaml:"items,omitempty"`

	// Expect is the expected flag (further_results).
	Expect *bool `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertSPARQLContains = "sparql_contains"
	AssertRequests       = "requests"
	AssertItems          = "items"
	AssertCount          = "count"
	AssertFurtherResults = "further_results"
	AssertErrorContains  = "error_contains"
	AssertNoErrors       = "no_errors"
)

// vocab returns the scenario vocabulary.
func (s *Scenario) vocab() ir.Vocabulary {
	if s.Vocabulary == nil {
		return ir.DefaultVocabulary()
	}
	return ir.Vocabulary{WikiBase: s.Vocabulary.WikiBase, PropertyBase: s.Vocabulary.PropertyBase}
}

// LoadScenario reads and parses a scenario YAML file. A relative bundle
// path is resolved against the scenario file's directory.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving the bundle path relative to basePath.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Resolve the bundle path BEFORE validation
	if scenario.Bundle != "" && !filepath.IsAbs(scenario.Bundle) && basePath != "" {
		scenario.Bundle = filepath.Join(basePath, scenario.Bundle)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Query == nil || s.Query.Description == nil {
		return fmt.Errorf("query.description is required")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	if s.Vocabulary != nil && s.Vocabulary.WikiBase == "" {
		return fmt.Errorf("vocabulary.wiki_base is required when vocabulary is set")
	}

	if s.Options.MaxConceptDepth < 0 {
		return fmt.Errorf("options.max_concept_depth must not be negative")
	}

	if s.Bundle != "" {
		if _, err := os.Stat(s.Bundle); os.IsNotExist(err) {
			return fmt.Errorf("bundle file not found: %s", s.Bundle)
		}
	}

	for i, r := range s.Responses {
		if r.Status != 0 && (r.Status < 100 || r.Status > 599) {
			return fmt.Errorf("responses[%d]: invalid status %d", i, r.Status)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertSPARQLContains:
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for sparql_contains", index)
		}
		if a.Request < 0 {
			return fmt.Errorf("assertions[%d]: request must be non-negative for sparql_contains", index)
		}
	case AssertRequests, AssertCount:
		if a.Count == nil {
			return fmt.Errorf("assertions[%d]: count is required for %s", index, a.Type)
		}
		if *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertItems:
		// An absent list expects no items.
	case AssertFurtherResults:
		if a.Expect == nil {
			return fmt.Errorf("assertions[%d]: expect is required for further_results", index)
		}
	case AssertErrorContains:
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for error_contains", index)
		}
	case AssertNoErrors:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
