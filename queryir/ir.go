// Package queryir defines the intermediate representation produced by both
// the fluent builder and the text query parser, and consumed by the JSON
// dialect serializer.
package queryir

import (
	"github.com/google/uuid"

	"github.com/shinydb/shinydb-go/value"
)

// QueryType narrows how a populated IR should be executed.
type QueryType byte

const (
	QueryTypeUnset QueryType = iota
	QueryTypeSelect
	QueryTypeCount
	QueryTypeExists
	QueryTypeAggregate
)

// QueryIR is the typed, mutable description of a query or mutation. It is
// created empty, mutated by builder chaining or parser population, and
// serialized once per execution.
type QueryIR struct {
	Space string
	Store string

	Filters    []value.FilterExpr
	Projection []string
	OrderBy    []value.OrderBy

	Limit    *uint32
	Skip     *uint32
	GroupBy  []string
	Aggs     []value.Aggregation

	Mutation *value.Mutation

	QueryType QueryType

	// DocumentID, when set, is a direct read-by-id target.
	DocumentID *uuid.UUID
}

// New returns an empty QueryIR.
func New() *QueryIR {
	return &QueryIR{}
}

// HasFilters reports whether any filter clause has been added.
func (q *QueryIR) HasFilters() bool {
	return len(q.Filters) > 0
}

// HasModifiers reports whether any non-filter query modifier (limit, skip,
// ordering, projection, store) has been set — used by the builder's
// dispatch precedence.
func (q *QueryIR) HasModifiers() bool {
	return q.Limit != nil || q.Skip != nil || len(q.OrderBy) > 0 ||
		len(q.Projection) > 0 || q.Store != ""
}

// HasAggregations reports whether any aggregation has been appended.
func (q *QueryIR) HasAggregations() bool {
	return len(q.Aggs) > 0
}

// Namespace joins space[.store[.index]] in order.
func Namespace(space, store, index string) string {
	ns := space
	if store != "" {
		ns += "." + store
	}
	if index != "" {
		ns += "." + index
	}
	return ns
}

// AppendFilter appends a new filter with LogicNone, the normal shape of a
// bare `where`/first `filter` clause.
func (q *QueryIR) AppendFilter(field string, op value.FilterOp, v value.Value) {
	q.Filters = append(q.Filters, value.FilterExpr{Field: field, Op: op, Value: v, Logic: value.LogicNone})
}

// SetPrevLogic rewrites the logic of the last filter in the list. If the
// list is empty it changes nothing and returns false; otherwise it returns
// true.
func (q *QueryIR) SetPrevLogic(logic value.LogicOp) bool {
	if len(q.Filters) == 0 {
		return false
	}
	q.Filters[len(q.Filters)-1].Logic = logic
	return true
}
