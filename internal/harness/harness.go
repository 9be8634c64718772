package harness

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/wikisparql/internal/endpoint"
	"github.com/roach88/wikisparql/internal/engine"
	"github.com/roach88/wikisparql/internal/querysparql"
	"github.com/roach88/wikisparql/internal/store"
	"github.com/roach88/wikisparql/internal/testutil"
)

// Run executes a scenario with a background context.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database against its own
// scripted endpoint, so scenarios never see each other's state.
//
// Execution flow:
// 1. Create fresh in-memory database and import the bundle
// 2. Convert the query file for the scenario vocabulary
// 3. Start the scripted endpoint
// 4. Run the query through an engine wired to both
// 5. Evaluate assertions
//
// A returned error means the scenario could not be set up; failing
// assertions are reported in Result.Errors.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	vocab := scenario.vocab()

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	if scenario.Bundle != "" {
		stats, err := st.ImportFile(ctx, scenario.Bundle, vocab)
		if err != nil {
			return nil, fmt.Errorf("failed to import bundle: %w", err)
		}
		slog.Debug("bundle imported",
			"scenario", scenario.Name,
			"entities", stats.Entities,
			"labels", stats.Labels,
			"concepts", stats.Concepts,
		)
	}

	q, err := engine.QueryFromFile(scenario.Query, vocab)
	if err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	ep := testutil.NewScriptedEndpoint(scenario.Responses...)
	defer ep.Close()

	o := scenario.Options
	eng := engine.New(endpoint.NewHTTPConnection(ep.URL()), vocab,
		engine.WithQueryIDGenerator(testutil.NewFixedQueryID(scenario.QueryID)),
		engine.WithResolver(engine.ChainResolver{st, engine.IRIResolver{Vocabulary: vocab}}),
		engine.WithLabels(st),
		engine.WithConcepts(st.Concepts(vocab)),
		engine.WithCompilerOptions(querysparql.Options{
			SubcategoryInference: o.SubcategoryInference,
			MaxConceptDepth:      o.MaxConceptDepth,
			ReorderByWeight:      o.ReorderByWeight,
		}),
		engine.WithDefaultGraph(o.DefaultGraph),
		engine.WithDefaultLimit(o.DefaultLimit),
		engine.WithIgnoreQueryErrors(o.IgnoreQueryErrors),
	)

	qr, debug := eng.GetQueryResult(ctx, q)

	result := NewResult()
	result.QueryID = qr.QueryID
	result.Requests = append(result.Requests, ep.Queries()...)
	result.Debug = debug
	result.QueryResult = qr

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	slog.Debug("scenario executed",
		"scenario", scenario.Name,
		"query_id", result.QueryID,
		"requests", len(result.Requests),
		"pass", result.Pass,
	)
	return result, nil
}
