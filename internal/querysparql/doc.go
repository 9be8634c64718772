// Package querysparql lowers descriptions to SPARQL condition trees.
//
// One ConditionBuilder exists per description variant. A Registry maps
// description kinds to builders and falls back to the Thing builder for any
// kind it does not know. A Builder is the build context of one query: it
// owns the variable counter, the result variable stack, the sort keys and
// the concept expansion depth, and it dispatches sub-descriptions through
// the registry.
//
//	b := querysparql.NewBuilder(querysparql.WithDefaultStrategies(), vocab)
//	cond := b.BuildCondition(desc)
//	where := b.ConvertConditionToString(cond)
//
// Variables are allocated in pre-order as ?v1, ?v2, ... and the counter is
// reset by every BuildCondition call, so equal descriptions always produce
// byte-identical text. A Builder is not safe for concurrent use; a Registry is.
package querysparql
