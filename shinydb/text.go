package shinydb

import (
	"github.com/shinydb/shinydb-go/queryir"
	"github.com/shinydb/shinydb-go/queryjson"
	"github.com/shinydb/shinydb-go/querylang"
	"github.com/shinydb/shinydb-go/value"
	"github.com/shinydb/shinydb-go/wire"
)

// RunText parses src as a text query and runs it directly
// against the server, without going through the fluent Query builder. This
// is the single dispatch path cmd/shinydb-cli, cmd/shinydb-shell, and the
// admin HTTP surface all share.
func (c *Client) RunText(src string) (QueryResponse, error) {
	ir, err := querylang.Parse(src)
	if err != nil {
		return QueryResponse{}, err
	}

	op := operationFromIR(ir)
	reply, err := c.DoOperation(op)
	if err != nil {
		return QueryResponse{}, err
	}
	return toResponse(op.Kind, reply)
}

// operationFromIR maps a parsed QueryIR onto the single wire.Operation a
// bare text query can express, mirroring Query.Run's dispatch precedence
// for the subset of operations a flat (non-builder) query supports.
func operationFromIR(ir *queryir.QueryIR) wire.Operation {
	ns := queryir.Namespace(ir.Space, ir.Store, "")

	if ir.Mutation != nil {
		switch ir.Mutation.Kind {
		case value.MutationInsert:
			return wire.Operation{Kind: wire.OpInsert, Namespace: ns, Payload: ir.Mutation.Payload}
		case value.MutationUpdate:
			return wire.Operation{Kind: wire.OpUpdate, Namespace: ns, Payload: ir.Mutation.Payload}
		case value.MutationDelete:
			return wire.Operation{Kind: wire.OpDelete, Namespace: ns}
		}
	}

	if ir.HasAggregations() {
		ir.QueryType = queryir.QueryTypeAggregate
		return wire.Operation{Kind: wire.OpAggregate, Namespace: ns, Payload: []byte(queryjson.Serialize(ir))}
	}

	return wire.Operation{Kind: wire.OpQuery, Namespace: ns, Payload: []byte(queryjson.Serialize(ir))}
}
