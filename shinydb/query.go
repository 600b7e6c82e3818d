package shinydb

import (
	"github.com/google/uuid"

	"github.com/shinydb/shinydb-go/queryir"
	"github.com/shinydb/shinydb-go/queryjson"
	"github.com/shinydb/shinydb-go/shinyerr"
	"github.com/shinydb/shinydb-go/value"
	"github.com/shinydb/shinydb-go/wire"
)

// scanParams records Scan's arguments.
type scanParams struct {
	set      bool
	startKey *uuid.UUID
	count    uint32
}

// Query is the fluent builder. Every mutator returns the same
// *Query so calls chain left to right. A method that can fail (Create,
// Update — document encoding) records the first error and every
// subsequent filter, modifier, aggregation, mutation, ReadByID or Scan call
// becomes a no-op (Space, Store and Index still apply); Run reports it.
type Query struct {
	client  *Client
	encoder DocumentEncoder

	space string
	store string
	index string

	ir *queryir.QueryIR

	readByID *uuid.UUID
	scan     scanParams

	err error
}

// NewQuery starts a builder bound to client, encoding documents with encoder.
func NewQuery(client *Client, encoder DocumentEncoder) *Query {
	return &Query{client: client, encoder: encoder, ir: queryir.New()}
}

// Space sets the space component of the namespace and mirrors it into the IR.
func (q *Query) Space(name string) *Query {
	q.space = name
	q.ir.Space = name
	return q
}

// Store sets the store component of the namespace and mirrors it into the IR.
func (q *Query) Store(name string) *Query {
	q.store = name
	q.ir.Store = name
	return q
}

// Index sets the index component of the namespace.
func (q *Query) Index(name string) *Query {
	q.index = name
	return q
}

// Where appends a filter with logic = none.
func (q *Query) Where(field string, op value.FilterOp, v value.Value) *Query {
	if q.err != nil {
		return q
	}
	q.ir.AppendFilter(field, op, v)
	return q
}

// And rewrites the preceding filter's logic to `and`, then appends a new
// filter with logic = none.
func (q *Query) And(field string, op value.FilterOp, v value.Value) *Query {
	if q.err != nil {
		return q
	}
	q.ir.SetPrevLogic(value.LogicAnd)
	q.ir.AppendFilter(field, op, v)
	return q
}

// Or rewrites the preceding filter's logic to `or`, then appends a new
// filter with logic = none. Calling Or as the first filter has no preceding
// filter to rewrite; rather than silently dropping the connective (which
// would change which documents match), a marker filter is inserted ahead
// of it carrying the `or` logic, so the compound shape the caller asked for
// still appears in the serialized query. This is a deliberate deviation,
// not a neutral no-op — see DESIGN.md.
func (q *Query) Or(field string, op value.FilterOp, v value.Value) *Query {
	if q.err != nil {
		return q
	}
	if !q.ir.SetPrevLogic(value.LogicOr) {
		q.ir.Filters = append(q.ir.Filters, value.FilterExpr{
			Op:    value.OpExists,
			Value: value.Bool(false),
			Logic: value.LogicOr,
		})
	}
	q.ir.AppendFilter(field, op, v)
	return q
}

// OrderBy replaces the ordering with a single-entry list (the source only
// ever supports one).
func (q *Query) OrderBy(field string, dir value.Direction) *Query {
	if q.err != nil {
		return q
	}
	q.ir.OrderBy = []value.OrderBy{{Field: field, Direction: dir}}
	return q
}

// Limit sets the result-count cap.
func (q *Query) Limit(n uint32) *Query {
	if q.err != nil {
		return q
	}
	q.ir.Limit = &n
	return q
}

// Skip sets the number of leading results to discard.
func (q *Query) Skip(n uint32) *Query {
	if q.err != nil {
		return q
	}
	q.ir.Skip = &n
	return q
}

// Select sets the field projection.
func (q *Query) Select(fields ...string) *Query {
	if q.err != nil {
		return q
	}
	q.ir.Projection = fields
	return q
}

// GroupBy appends a field to the group-by list.
func (q *Query) GroupBy(field string) *Query {
	if q.err != nil {
		return q
	}
	q.ir.GroupBy = append(q.ir.GroupBy, field)
	return q
}

func (q *Query) aggregate(outputName string, fn value.AggFunc, field string) *Query {
	if q.err != nil {
		return q
	}
	q.ir.Aggs = append(q.ir.Aggs, value.Aggregation{OutputName: outputName, Func: fn, Field: field})
	return q
}

// Count appends a $count aggregation named outputName.
func (q *Query) Count(outputName string) *Query { return q.aggregate(outputName, value.AggCount, "") }

// Sum appends a $sum(field) aggregation named outputName.
func (q *Query) Sum(outputName, field string) *Query { return q.aggregate(outputName, value.AggSum, field) }

// Avg appends a $avg(field) aggregation named outputName.
func (q *Query) Avg(outputName, field string) *Query { return q.aggregate(outputName, value.AggAvg, field) }

// Min appends a $min(field) aggregation named outputName.
func (q *Query) Min(outputName, field string) *Query { return q.aggregate(outputName, value.AggMin, field) }

// Max appends a $max(field) aggregation named outputName.
func (q *Query) Max(outputName, field string) *Query { return q.aggregate(outputName, value.AggMax, field) }

// Create encodes doc via the DocumentEncoder and stores it as an insert
// mutation.
func (q *Query) Create(doc any) *Query {
	if q.err != nil {
		return q
	}
	payload, err := q.encoder.Encode(doc)
	if err != nil {
		q.err = err
		return q
	}
	q.ir.Mutation = &value.Mutation{Kind: value.MutationInsert, Payload: payload}
	return q
}

// Update encodes doc via the DocumentEncoder and stores it as an update
// mutation. An update with no prior ReadByID
// fails fast at Run rather than silently sending id = 0.
func (q *Query) Update(doc any) *Query {
	if q.err != nil {
		return q
	}
	payload, err := q.encoder.Encode(doc)
	if err != nil {
		q.err = err
		return q
	}
	q.ir.Mutation = &value.Mutation{Kind: value.MutationUpdate, Payload: payload}
	return q
}

// Delete sets a delete mutation.
func (q *Query) Delete() *Query {
	if q.err != nil {
		return q
	}
	q.ir.Mutation = &value.Mutation{Kind: value.MutationDelete}
	return q
}

// ReadByID records id for the execution layer.
func (q *Query) ReadByID(id uuid.UUID) *Query {
	if q.err != nil {
		return q
	}
	q.readByID = &id
	return q
}

// Scan records scan parameters: count results starting after startKey (nil
// for the beginning of the collection).
func (q *Query) Scan(count uint32, startKey *uuid.UUID) *Query {
	if q.err != nil {
		return q
	}
	q.scan = scanParams{set: true, startKey: startKey, count: count}
	return q
}

// namespace joins space[.store[.index]], requiring space to be set.
func (q *Query) namespace() (string, error) {
	if q.space == "" {
		return "", shinyerr.ErrNoSpaceSpecified
	}
	return queryir.Namespace(q.space, q.store, q.index), nil
}

// Run dispatches by precedence and executes through
// the bound Client.
//
// Mutation is checked ahead of the bare read_by_id case, reordered from
// the naive reading of the precedence list, since Update needs to route through
// a preceding ReadByID so the document id propagates to the wire operation,
// which only works if a ReadByID+Update combination dispatches as the
// mutation rather than short-circuiting to a plain Read.
func (q *Query) Run() (QueryResponse, error) {
	if q.err != nil {
		return QueryResponse{}, q.err
	}

	ns, err := q.namespace()
	if err != nil {
		return QueryResponse{}, err
	}

	switch {
	case q.scan.set:
		op := wire.Operation{Kind: wire.OpScan, Namespace: ns, ScanCount: q.scan.count}
		if q.scan.startKey != nil {
			op.HasStartKey = true
			op.StartKey = *q.scan.startKey
		}
		return q.execute(op)

	case q.ir.Mutation != nil:
		return q.runMutation(ns)

	case q.readByID != nil:
		return q.execute(wire.Operation{Kind: wire.OpRead, Namespace: ns, DocumentID: *q.readByID})

	case q.ir.HasAggregations():
		q.ir.QueryType = queryir.QueryTypeAggregate
		return q.execute(wire.Operation{Kind: wire.OpAggregate, Namespace: ns, Payload: []byte(queryjson.Serialize(q.ir))})

	case q.ir.HasFilters() || q.ir.HasModifiers():
		return q.execute(wire.Operation{Kind: wire.OpQuery, Namespace: ns, Payload: []byte(queryjson.Serialize(q.ir))})

	default:
		return QueryResponse{}, shinyerr.ErrNoOperation
	}
}

func (q *Query) runMutation(ns string) (QueryResponse, error) {
	switch q.ir.Mutation.Kind {
	case value.MutationInsert:
		return q.execute(wire.Operation{Kind: wire.OpInsert, Namespace: ns, Payload: q.ir.Mutation.Payload})
	case value.MutationUpdate:
		if q.readByID == nil {
			return QueryResponse{}, shinyerr.ErrNoOperation
		}
		return q.execute(wire.Operation{Kind: wire.OpUpdate, Namespace: ns, DocumentID: *q.readByID, Payload: q.ir.Mutation.Payload})
	case value.MutationDelete:
		op := wire.Operation{Kind: wire.OpDelete, Namespace: ns}
		if q.readByID != nil {
			op.DocumentID = *q.readByID
		}
		return q.execute(op)
	default:
		return QueryResponse{}, shinyerr.ErrNoOperation
	}
}

func (q *Query) execute(op wire.Operation) (QueryResponse, error) {
	reply, err := q.client.DoOperation(op)
	if err != nil {
		return QueryResponse{}, err
	}
	return toResponse(op.Kind, reply)
}
