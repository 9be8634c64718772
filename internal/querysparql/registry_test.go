package querysparql

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/wikisparql/internal/condition"
	"github.com/roach88/wikisparql/internal/ir"
	"github.com/roach88/wikisparql/internal/queryir"
)

type falseBuilder struct{}

func (falseBuilder) CanHandle(queryir.Description) bool { return true }

func (falseBuilder) Build(*Builder, queryir.Description) condition.Condition {
	return &condition.False{}
}

func TestRegistryDefaults(t *testing.T) {
	r := WithDefaultStrategies()

	assert.Equal(t, 8, r.Len())
	assert.IsType(t, ValueConditionBuilder{}, r.Find(queryir.Value{}))
	assert.IsType(t, PropertyConditionBuilder{}, r.Find(&queryir.SomeProperty{}))
	assert.IsType(t, ClassConditionBuilder{}, r.Find(queryir.Class{}))
	assert.IsType(t, NamespaceConditionBuilder{}, r.Find(queryir.Namespace{}))
	assert.IsType(t, ConceptConditionBuilder{}, r.Find(queryir.Concept{}))
	assert.IsType(t, ConjunctionConditionBuilder{}, r.Find(queryir.Conjunction{}))
	assert.IsType(t, DisjunctionConditionBuilder{}, r.Find(queryir.Disjunction{}))
	assert.IsType(t, ThingConditionBuilder{}, r.Find(queryir.Thing{}))
}

func TestRegistryFallback(t *testing.T) {
	r := NewRegistry()

	assert.Zero(t, r.Len())
	for _, d := range []queryir.Description{nil, queryir.Value{}, queryir.Class{}, queryir.Disjunction{}} {
		assert.IsType(t, ThingConditionBuilder{}, r.Find(d))
	}

	b := NewBuilder(r, ir.DefaultVocabulary())
	assert.IsType(t, &condition.True{}, b.BuildCondition(queryir.Namespace{Index: 4}), "unregistered kinds lower to True")
}

func TestRegistryFirstRegistrationWins(t *testing.T) {
	r := NewRegistry()

	assert.True(t, r.Register(queryir.KindClass, falseBuilder{}))
	assert.False(t, r.Register(queryir.KindClass, ClassConditionBuilder{}))
	assert.False(t, r.Register(queryir.KindValue, nil))
	assert.IsType(t, falseBuilder{}, r.Find(queryir.Class{}))

	d := WithDefaultStrategies()
	assert.False(t, d.Register(queryir.KindClass, falseBuilder{}))
}

func TestRegistryClear(t *testing.T) {
	r := NewRegistry()
	r.Register(queryir.KindClass, falseBuilder{})
	r.Clear()
	assert.Zero(t, r.Len())

	d := WithDefaultStrategies()
	d.Clear()
	assert.Equal(t, 8, d.Len(), "defaults come back")
}

func TestRegistryCanHandleMismatch(t *testing.T) {
	r := NewRegistry()
	r.Register(queryir.KindValue, ClassConditionBuilder{})

	assert.IsType(t, ThingConditionBuilder{}, r.Find(queryir.Value{}), "builder refusing the description falls back")
}

func TestRegistryConcurrentFind(t *testing.T) {
	r := WithDefaultStrategies()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.Find(queryir.Class{})
				r.Register(queryir.Kind(100+j), falseBuilder{})
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 108, r.Len())
}
