package harness

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ScenarioNotFoundError is returned when a scenario path doesn't exist.
type ScenarioNotFoundError struct {
	Path string
}

// Error implements the error interface.
func (e *ScenarioNotFoundError) Error() string {
	return fmt.Sprintf("scenario path %q does not exist", e.Path)
}

// DiscoverScenarios returns the scenario files under path in lexical order.
// A file path is returned as is. filter is an optional glob matched
// against the file name without extension. Directories named "golden" are
// skipped.
func DiscoverScenarios(path, filter string) ([]string, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &ScenarioNotFoundError{Path: path}
	}
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	if filter != "" {
		if _, err := filepath.Match(filter, ""); err != nil {
			return nil, fmt.Errorf("invalid filter pattern: %w", err)
		}
	}

	var files []string
	err = filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if p != path && info.Name() == "golden" {
				return filepath.SkipDir
			}
			return nil
		}

		ext := filepath.Ext(p)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(p), ext)
			if ok, _ := filepath.Match(filter, name); !ok {
				return nil
			}
		}

		files = append(files, p)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// ScenarioOutcome is the result of loading and running one scenario file.
type ScenarioOutcome struct {
	Name   string   `json:"name"`
	Path   string   `json:"path"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`

	Scenario *Scenario `json:"-"`
	Result   *Result   `json:"-"`
}

// SuiteResult summarizes a set of scenario runs.
type SuiteResult struct {
	Scenarios []ScenarioOutcome `json:"scenarios"`
	Passed    int               `json:"passed"`
	Failed    int               `json:"failed"`
	Total     int               `json:"total"`
}

// RunSuite loads and runs every scenario file in order. Load and setup
// failures count as failed scenarios; RunSuite itself never fails.
func RunSuite(ctx context.Context, paths []string) *SuiteResult {
	suite := &SuiteResult{
		Scenarios: make([]ScenarioOutcome, 0, len(paths)),
		Total:     len(paths),
	}

	for _, path := range paths {
		outcome := ScenarioOutcome{Name: filepath.Base(path), Path: path}

		scenario, err := LoadScenario(path)
		if err != nil {
			outcome.Errors = []string{fmt.Sprintf("failed to load scenario: %v", err)}
			suite.add(outcome)
			continue
		}
		outcome.Name = scenario.Name
		outcome.Scenario = scenario

		result, err := RunContext(ctx, scenario)
		if err != nil {
			outcome.Errors = []string{fmt.Sprintf("scenario execution failed: %v", err)}
			suite.add(outcome)
			continue
		}
		outcome.Result = result
		outcome.Pass = result.Pass
		outcome.Errors = result.Errors
		suite.add(outcome)
	}

	return suite
}

func (s *SuiteResult) add(o ScenarioOutcome) {
	s.Scenarios = append(s.Scenarios, o)
	if o.Pass {
		s.Passed++
	} else {
		s.Failed++
	}
}

// MarkFailed records a failure found after the run, e.g. a golden mismatch.
func (s *SuiteResult) MarkFailed(i int, msg string) {
	o := &s.Scenarios[i]
	if o.Pass {
		o.Pass = false
		s.Passed--
		s.Failed++
	}
	o.Errors = append(o.Errors, msg)
}

// GoldenFilePath returns the golden file of a scenario file:
// <dir>/golden/<file name without extension>.golden.
func GoldenFilePath(scenarioFile string) string {
	dir := filepath.Dir(scenarioFile)
	base := filepath.Base(scenarioFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, "golden", name+".golden")
}

// UpdateGoldenFile writes the snapshot of a result as the golden file.
func UpdateGoldenFile(goldenPath string, scenario *Scenario, result *Result) error {
	if err := os.MkdirAll(filepath.Dir(goldenPath), 0755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	if err := os.WriteFile(goldenPath, Snapshot(scenario, result), 0644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}

// CompareGoldenFile reports whether the snapshot of a result equals the
// golden file. A missing golden file is not an error: exists is false.
func CompareGoldenFile(goldenPath string, scenario *Scenario, result *Result) (match, exists bool, err error) {
	golden, err := os.ReadFile(goldenPath)
	if os.IsNotExist(err) {
		return false, false, nil
	}
	if err != nil {
		return false, true, fmt.Errorf("failed to read golden file: %w", err)
	}
	return bytes.Equal(golden, Snapshot(scenario, result)), true, nil
}
