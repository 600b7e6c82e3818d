package shinydb

import (
	"github.com/google/uuid"

	"github.com/shinydb/shinydb-go/shinyerr"
	"github.com/shinydb/shinydb-go/wire"
)

// QueryResponse is the value a Query's run() (or a direct Client call)
// resolves to. Data is always a copy owned by the response, never an
// interior reference to a transport receive buffer.
type QueryResponse struct {
	Success    bool
	Data       []byte
	Count      uint32
	DocumentID uuid.UUID
}

// DocumentEncoder turns a caller-supplied document value into the opaque
// byte payload a Mutation carries. ShinyDB never looks inside this payload
// (spec's Non-goals exclude document schema validation and a BSON codec).
type DocumentEncoder interface {
	Encode(doc any) ([]byte, error)
}

// failureFor maps a non-ok reply, in the context of op, to the
// component-specific error.
func failureFor(op wire.OperationKind, reply *wire.Packet) error {
	if reply.Op.Status == wire.StatusNotFound {
		return shinyerr.ErrDocumentNotFound
	}

	switch op {
	case wire.OpUpdate:
		return shinyerr.ErrUpdateFailed
	case wire.OpDelete:
		return shinyerr.ErrDeleteFailed
	case wire.OpQuery:
		return shinyerr.ErrQueryFailed
	case wire.OpAggregate:
		return shinyerr.ErrAggregateFailed
	case wire.OpScan:
		return shinyerr.ErrScanFailed
	default:
		return shinyerr.ErrOperationFailed
	}
}

// toResponse converts a decoded reply Packet to a QueryResponse, copying
// the payload so the caller owns it independently of the transport's
// reusable receive buffer.
func toResponse(op wire.OperationKind, reply *wire.Packet) (QueryResponse, error) {
	if reply.Op.Status != wire.StatusOK {
		return QueryResponse{}, failureFor(op, reply)
	}

	var data []byte
	if len(reply.Op.Payload) > 0 {
		data = append([]byte(nil), reply.Op.Payload...)
	}

	return QueryResponse{
		Success:    true,
		Data:       data,
		Count:      reply.Op.ScanCount,
		DocumentID: reply.Op.DocumentID,
	}, nil
}
