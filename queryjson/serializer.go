// Package queryjson serializes a queryir.QueryIR into ShinyDB's query JSON
// dialect. The emitter is context-sensitive: it merges same-field
// filters, splits AND/OR groups, and picks object vs array shapes based on
// the IR's shape rather than always emitting a generic encoding.
//
// Values are formatted by hand rather than via encoding/json because the
// dialect has two deliberate quirks the server expects: floats always carry
// a fractional digit (so "42" is never sent for a float 42.0), and string
// values are embedded between double quotes without escaping. The second
// quirk is a known latent issue in the source this dialect was distilled
// from — it is preserved here, not fixed, and pinned by a
// test so a future change to introduce escaping is deliberate and reviewed.
package queryjson

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/shinydb/shinydb-go/queryir"
	"github.com/shinydb/shinydb-go/value"
)

// Serialize renders ir as a single JSON object.
func Serialize(ir *queryir.QueryIR) string {
	var b strings.Builder
	b.WriteByte('{')

	first := true
	field := func(name, body string) {
		if !first {
			b.WriteByte(',')
		}
		first = false
		b.WriteByte('"')
		b.WriteString(name)
		b.WriteString("\":")
		b.WriteString(body)
	}

	field("filter", filterBody(ir.Filters))

	if len(ir.Projection) > 0 {
		field("projection", stringArray(ir.Projection))
	}
	if len(ir.OrderBy) > 0 {
		field("orderBy", orderByBody(ir.OrderBy))
	}
	if ir.Limit != nil {
		field("limit", strconv.FormatUint(uint64(*ir.Limit), 10))
	}
	if ir.Skip != nil {
		field("skip", strconv.FormatUint(uint64(*ir.Skip), 10))
	}
	if len(ir.GroupBy) > 0 {
		field("group_by", stringArray(ir.GroupBy))
	}
	if len(ir.Aggs) > 0 {
		field("aggregate", aggregateBody(ir.Aggs))
	}
	if ir.QueryType == queryir.QueryTypeCount {
		field("count", "true")
	}
	if ir.Mutation != nil {
		field("mutation", mutationBody(*ir.Mutation))
	}

	b.WriteByte('}')
	return b.String()
}

// filterBody groups filters into AND-clauses at OR boundaries.
func filterBody(filters []value.FilterExpr) string {
	if len(filters) == 0 {
		return "{}"
	}
	if !hasOr(filters) {
		return groupBody(filters)
	}
	groups := splitGroups(filters)
	rendered := lo.Map(groups, func(g []value.FilterExpr, _ int) string {
		return groupBody(g)
	})
	return `{"$or":[` + strings.Join(rendered, ",") + `]}`
}

func hasOr(filters []value.FilterExpr) bool {
	return lo.SomeBy(filters, func(f value.FilterExpr) bool { return f.Logic == value.LogicOr })
}

// splitGroups partitions filters into consecutive AND-groups, ending each
// group at (and including) a filter whose Logic is LogicOr. Group count
// equals the number of OR-logic occurrences plus one.
func splitGroups(filters []value.FilterExpr) [][]value.FilterExpr {
	var groups [][]value.FilterExpr
	var cur []value.FilterExpr
	for _, f := range filters {
		cur = append(cur, f)
		if f.Logic == value.LogicOr {
			groups = append(groups, cur)
			cur = nil
		}
	}
	if len(cur) > 0 {
		groups = append(groups, cur)
	}
	return groups
}

// groupBody renders one AND-group, field-major: filters on the same field
// are merged into a single object, field order is first-appearance order.
func groupBody(group []value.FilterExpr) string {
	var order []string
	byField := map[string][]value.FilterExpr{}
	for _, f := range group {
		if _, seen := byField[f.Field]; !seen {
			order = append(order, f.Field)
		}
		byField[f.Field] = append(byField[f.Field], f)
	}

	parts := lo.Map(order, func(field string, _ int) string {
		ops := lo.Map(byField[field], func(f value.FilterExpr, _ int) string {
			return `"` + f.Op.Mnemonic() + `":` + formatValue(f.Value)
		})
		return `"` + field + `":{` + strings.Join(ops, ",") + `}`
	})
	return "{" + strings.Join(parts, ",") + "}"
}

func orderByBody(obs []value.OrderBy) string {
	if len(obs) == 1 {
		return orderByObj(obs[0])
	}
	parts := lo.Map(obs, func(ob value.OrderBy, _ int) string { return orderByObj(ob) })
	return "[" + strings.Join(parts, ",") + "]"
}

func orderByObj(ob value.OrderBy) string {
	return fmt.Sprintf(`{"field":"%s","direction":"%s"}`, ob.Field, ob.Direction)
}

func aggregateBody(aggs []value.Aggregation) string {
	parts := lo.Map(aggs, func(a value.Aggregation, _ int) string {
		var body string
		if a.Func == value.AggCount {
			body = `"$count":true`
		} else {
			body = `"` + a.Func.Mnemonic() + `":"` + a.Field + `"`
		}
		return `"` + a.OutputName + `":{` + body + "}"
	})
	return "{" + strings.Join(parts, ",") + "}"
}

func mutationBody(m value.Mutation) string {
	switch m.Kind {
	case value.MutationInsert:
		return `{"type":"insert","payload":"` + base64.StdEncoding.EncodeToString(m.Payload) + `"}`
	case value.MutationUpdate:
		return `{"type":"update","payload":"` + base64.StdEncoding.EncodeToString(m.Payload) + `"}`
	case value.MutationDelete:
		return `{"type":"delete"}`
	default:
		return `{}`
	}
}

func stringArray(ss []string) string {
	quoted := lo.Map(ss, func(s string, _ int) string { return `"` + s + `"` })
	return "[" + strings.Join(quoted, ",") + "]"
}

// formatValue renders a Value the way the dialect expects: strings are wrapped in
// double quotes verbatim (no escaping — see the package doc), integers in
// base 10, floats always with at least one fractional digit, booleans as
// true/false, null as null, arrays comma-space separated.
func formatValue(v value.Value) string {
	switch v.Kind {
	case value.KindString:
		return `"` + v.Str + `"`
	case value.KindInt:
		return strconv.FormatInt(v.Int, 10)
	case value.KindFloat:
		return formatFloat(v.Float)
	case value.KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case value.KindArray:
		parts := lo.Map(v.Arr, func(e value.Value, _ int) string { return formatValue(e) })
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return "null"
	}
}

func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
