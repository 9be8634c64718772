package querysparql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/wikisparql/internal/condition"
	"github.com/roach88/wikisparql/internal/ir"
	"github.com/roach88/wikisparql/internal/queryir"
)

// ResultVariable is the name of the top-level result variable.
const ResultVariable = "result"

// DefaultMaxConceptDepth bounds nested concept expansion.
const DefaultMaxConceptDepth = 8

// ConditionBuilder lowers one description variant.
type ConditionBuilder interface {
	// CanHandle reports whether the builder accepts d.
	CanHandle(d queryir.Description) bool

	// Build lowers d within the build context b. Sub-descriptions are
	// lowered with b.Lower.
	Build(b *Builder, d queryir.Description) condition.Condition
}

// PropertyLabelResolver maps a property id to the label used in its IRI.
type PropertyLabelResolver interface {
	Label(p ir.PropertyID) string
}

// ConceptResolver looks up the stored definition of a concept.
type ConceptResolver interface {
	Concept(id ir.EntityID) (queryir.Description, bool)
}

// SortKey orders results by the value of a property. An empty Property
// sorts by the result itself.
type SortKey struct {
	Property   ir.PropertyID
	Descending bool
}

// Options tune the lowering.
type Options struct {
	// SubcategoryInference makes Class match members of subcategories via
	// rdfs:subClassOf*.
	SubcategoryInference bool

	// MaxConceptDepth bounds nested concept expansion. Zero means
	// DefaultMaxConceptDepth.
	MaxConceptDepth int

	// ReorderByWeight evaluates cheaper conjunction operands first.
	ReorderByWeight bool
}

// Option configures a Builder.
type Option func(*Builder)

// WithOptions sets the lowering options.
func WithOptions(o Options) Option {
	return func(b *Builder) {
		b.opts = o
	}
}

// WithLabels sets the property label resolver. Without one, property ids
// are used as labels.
func WithLabels(r PropertyLabelResolver) Option {
	return func(b *Builder) {
		b.labels = r
	}
}

// WithConcepts sets the concept resolver. Without one, every concept
// lowers to False.
func WithConcepts(r ConceptResolver) Option {
	return func(b *Builder) {
		b.concepts = r
	}
}

// WithRenderer replaces the SPARQL renderer.
func WithRenderer(r condition.Renderer) Option {
	return func(b *Builder) {
		b.renderer = r
	}
}

// Builder is the build context of one query.
type Builder struct {
	registry *Registry
	vocab    ir.Vocabulary
	labels   PropertyLabelResolver
	concepts ConceptResolver
	renderer condition.Renderer
	opts     Options

	counter      int
	resultVar    string
	sortKeys     []SortKey
	orderByVars  map[ir.PropertyID]string
	conceptDepth int
	errors       []string
}

// NewBuilder creates a build context dispatching through registry.
func NewBuilder(registry *Registry, vocab ir.Vocabulary, opts ...Option) *Builder {
	b := &Builder{
		registry:  registry,
		vocab:     vocab,
		resultVar: ResultVariable,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.registry == nil {
		b.registry = WithDefaultStrategies()
	}
	if b.renderer == nil {
		b.renderer = condition.NewSPARQLRenderer(vocab)
	}
	if b.opts.MaxConceptDepth <= 0 {
		b.opts.MaxConceptDepth = DefaultMaxConceptDepth
	}
	return b
}

// BuildCondition lowers a whole description for the result variable.
//
// The variable counter, concept depth and build errors are reset first.
// Sort keys not bound by the description get weak OPTIONAL bindings so
// that ORDER BY can refer to them.
func (b *Builder) BuildCondition(d queryir.Description) condition.Condition {
	b.counter = 0
	b.resultVar = ResultVariable
	b.conceptDepth = 0
	b.errors = nil
	b.orderByVars = make(map[ir.PropertyID]string)

	c := b.Lower(d)
	b.addMissingOrderBy(c)
	return c
}

// Lower dispatches d to its registered builder.
func (b *Builder) Lower(d queryir.Description) condition.Condition {
	if d = queryir.Unwrap(d); d == nil {
		return b.registry.Fallback().Build(b, queryir.Thing{})
	}
	return b.registry.Find(d).Build(b, d)
}

// NewVariable allocates the next variable name (without "?").
func (b *Builder) NewVariable() string {
	b.counter++
	return "v" + strconv.Itoa(b.counter)
}

// ResultVariable returns the variable the current sub-description restricts.
func (b *Builder) ResultVariable() string {
	return b.resultVar
}

// WithResultVariable lowers with v as the result variable, restoring the
// previous one afterwards.
func (b *Builder) WithResultVariable(v string, fn func() condition.Condition) condition.Condition {
	prev := b.resultVar
	b.resultVar = v
	defer func() { b.resultVar = prev }()
	return fn()
}

// SetSortKeys sets the sort keys of the next BuildCondition.
func (b *Builder) SetSortKeys(keys []SortKey) {
	b.sortKeys = append([]SortKey(nil), keys...)
}

// SortKeys returns the configured sort keys.
func (b *Builder) SortKeys() []SortKey {
	return b.sortKeys
}

// Vocabulary returns the vocabulary used for IRIs.
func (b *Builder) Vocabulary() ir.Vocabulary {
	return b.vocab
}

// Options returns the lowering options.
func (b *Builder) Options() Options {
	return b.opts
}

// Errors returns the problems recorded by the last BuildCondition.
func (b *Builder) Errors() []string {
	return b.errors
}

// AddError records a build problem. Lowering continues.
func (b *Builder) AddError(format string, args ...any) {
	b.errors = append(b.errors, fmt.Sprintf(format, args...))
}

// PropertyPredicate returns the predicate of a property, using the label
// resolver when one is set.
func (b *Builder) PropertyPredicate(p ir.PropertyID) condition.QName {
	if b.labels != nil {
		if label := b.labels.Label(p); label != "" {
			return condition.PropertyName(ir.PropertyID(label))
		}
	}
	return condition.PropertyName(p)
}

// sortKeyVariable returns the variable reserved for a sort-key property, and
// false when p is not a sort key or the builder is not at the top level.
// The first restriction of a sort key allocates the variable; later ones
// reuse it.
func (b *Builder) sortKeyVariable(p ir.PropertyID) (string, bool) {
	if b.resultVar != ResultVariable || p == "" {
		return "", false
	}
	for _, k := range b.sortKeys {
		if k.Property != p {
			continue
		}
		if v, ok := b.orderByVars[p]; ok {
			return v, true
		}
		v := b.NewVariable()
		b.orderByVars[p] = v
		return v, true
	}
	return "", false
}

func (b *Builder) addMissingOrderBy(c condition.Condition) {
	if len(b.sortKeys) == 0 {
		return
	}
	switch c.(type) {
	case *condition.False, *condition.Singleton:
		return
	}
	m := c.Metadata()
	for _, k := range b.sortKeys {
		if k.Property == "" {
			continue
		}
		if _, ok := b.orderByVars[k.Property]; !ok {
			v := b.NewVariable()
			b.orderByVars[k.Property] = v
			m.Weak = append(m.Weak, condition.Optional{Patterns: []condition.Pattern{
				condition.NewTriple(condition.Var(ResultVariable), b.PropertyPredicate(k.Property), condition.Var(v)),
			}})
		}
		m.SetOrderBy(k.Property, b.orderByVars[k.Property])
	}
}

// ConvertConditionToString renders c for the result variable.
func (b *Builder) ConvertConditionToString(c condition.Condition) string {
	return b.renderer.Render(c, ResultVariable)
}

// OrderByClause renders the ORDER BY clause for the sort keys of the last
// BuildCondition, or "" when there are none.
func (b *Builder) OrderByClause() string {
	if len(b.sortKeys) == 0 {
		return ""
	}
	parts := make([]string, 0, len(b.sortKeys))
	for _, k := range b.sortKeys {
		v := ResultVariable
		if k.Property != "" {
			var ok bool
			if v, ok = b.orderByVars[k.Property]; !ok {
				continue
			}
		}
		dir := "ASC"
		if k.Descending {
			dir = "DESC"
		}
		parts = append(parts, dir+"(?"+v+")")
	}
	if len(parts) == 0 {
		return ""
	}
	return "ORDER BY " + strings.Join(parts, " ")
}
