// Package value defines the tagged types shared between the query builder,
// the text query parser, and the JSON dialect serializer.
package value

import "fmt"

// Kind tags the variant a Value holds.
type Kind byte

const (
	KindNull Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindArray
)

// Value is a tagged union over {string, int64, float64, bool, null, []Value}.
type Value struct {
	Kind  Kind
	Str   string
	Int   int64
	Float float64
	Bool  bool
	Arr   []Value
}

func Null() Value               { return Value{Kind: KindNull} }
func String(s string) Value     { return Value{Kind: KindString, Str: s} }
func Int(i int64) Value         { return Value{Kind: KindInt, Int: i} }
func Float(f float64) Value     { return Value{Kind: KindFloat, Float: f} }
func Bool(b bool) Value         { return Value{Kind: KindBool, Bool: b} }
func Array(vs ...Value) Value   { return Value{Kind: KindArray, Arr: vs} }

func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return "null"
	case KindString:
		return v.Str
	case KindInt:
		return fmt.Sprintf("%d", v.Int)
	case KindFloat:
		return fmt.Sprintf("%g", v.Float)
	case KindBool:
		return fmt.Sprintf("%t", v.Bool)
	case KindArray:
		return fmt.Sprintf("%v", v.Arr)
	default:
		return ""
	}
}

// FilterOp is the comparison or predicate a FilterExpr applies.
type FilterOp byte

const (
	OpEq FilterOp = iota
	OpNe
	OpGt
	OpGte
	OpLt
	OpLte
	OpRegex
	OpIn
	OpContains
	OpStartsWith
	OpExists
)

// Mnemonic returns the canonical JSON operator mnemonic, e.g. "$eq".
func (op FilterOp) Mnemonic() string {
	switch op {
	case OpEq:
		return "$eq"
	case OpNe:
		return "$ne"
	case OpGt:
		return "$gt"
	case OpGte:
		return "$gte"
	case OpLt:
		return "$lt"
	case OpLte:
		return "$lte"
	case OpRegex:
		return "$regex"
	case OpIn:
		return "$in"
	case OpContains:
		return "$contains"
	case OpStartsWith:
		return "$startsWith"
	case OpExists:
		return "$exists"
	default:
		return "$eq"
	}
}

// LogicOp describes how a FilterExpr connects to the *next* filter in the
// list. The last filter in any list carries LogicNone.
type LogicOp byte

const (
	LogicNone LogicOp = iota
	LogicAnd
	LogicOr
)

// FilterExpr is one filter clause.
type FilterExpr struct {
	Field string
	Op    FilterOp
	Value Value
	Logic LogicOp
}

// Direction is ascending or descending sort order.
type Direction byte

const (
	DirAsc Direction = iota
	DirDesc
)

func (d Direction) String() string {
	if d == DirDesc {
		return "desc"
	}
	return "asc"
}

// OrderBy is one sort key.
type OrderBy struct {
	Field     string
	Direction Direction
}

// AggFunc is an aggregation function.
type AggFunc byte

const (
	AggCount AggFunc = iota
	AggSum
	AggAvg
	AggMin
	AggMax
)

func (f AggFunc) Mnemonic() string {
	switch f {
	case AggCount:
		return "$count"
	case AggSum:
		return "$sum"
	case AggAvg:
		return "$avg"
	case AggMin:
		return "$min"
	case AggMax:
		return "$max"
	default:
		return "$count"
	}
}

// Aggregation names an output field computed by Func over Field (Field is
// unused, empty, for AggCount).
type Aggregation struct {
	OutputName string
	Func       AggFunc
	Field      string
}

// MutationKind tags a Mutation variant.
type MutationKind byte

const (
	MutationNone MutationKind = iota
	MutationInsert
	MutationUpdate
	MutationDelete
)

// Mutation is a tagged write operation; Payload is an opaque document
// encoding produced by a DocumentEncoder and is meaningless for Delete.
type Mutation struct {
	Kind    MutationKind
	Payload []byte
}
