// Package wire implements the ShinyDB wire codec: the tagged Operation
// union and Packet envelope, and the length-prefixed frame
// around them.
package wire

import (
	"encoding/binary"

	"github.com/google/uuid"

	"github.com/shinydb/shinydb-go/shinyerr"
)

// MaxPayloadBytes is the declared-length cap; a frame or payload larger
// than this is rejected as InvalidResponse.
const MaxPayloadBytes = 16 << 20

// OperationKind tags the Operation variant.
type OperationKind byte

const (
	OpInsert OperationKind = iota
	OpRead
	OpUpdate
	OpDelete
	OpQuery
	OpAggregate
	OpScan
	OpCreate
	OpDrop
	OpList
	OpFlush
	OpAuthenticate
	OpAuthenticateApiKey
	OpLogout
	OpReply
)

func (k OperationKind) valid() bool {
	return k <= OpReply
}

// Status is the reply status enum; StatusOK is the success sentinel.
type Status byte

const (
	StatusOK Status = iota
	StatusError
	StatusNotFound
	StatusUnauthorized
	StatusInvalid
)

// Operation is the tagged request/response variant carried by a Packet.
// Fields not meaningful for a given Kind are left zero-valued; the codec
// always encodes the full fixed layout rather than a variant-specific one,
// trading a few wasted bytes for a simpler, allocate-once decode path.
type Operation struct {
	Kind OperationKind

	// Namespace is "space[.store[.index]]" for document operations, or an
	// entity/doc-type name for Create/Drop/List.
	Namespace string

	// DocumentID addresses a single document for Read/Insert/Delete (and,
	// when routed through a prior ReadByID, Update).
	DocumentID uuid.UUID

	HasStartKey bool
	StartKey    uuid.UUID
	ScanCount   uint32

	// Payload is the opaque document encoding (insert/update), the
	// serialized query JSON (query/aggregate), or reply data.
	Payload []byte

	// Status is meaningful only when Kind == OpReply.
	Status Status
}

// Packet is one wire-level message: header fields plus an Operation.
type Packet struct {
	PacketID      uint32
	SessionID     uint32
	CorrelationID uint64
	TimestampMs   uint64
	Op            Operation
}

// headerFixedLen is the size, in bytes, of every fixed-width field before
// the variable-length namespace and payload sections.
const headerFixedLen = 4 /*checksum*/ + 4 /*declaredLen*/ + 4 /*packetID*/ + 4 /*sessionID*/ + 8 /*corrID*/ + 8 /*ts*/ + 1 /*kind*/

// Encode serializes p into buf (reusing its backing array if it has enough
// capacity) and returns the resulting slice. This is the packet body only;
// it does not include the outer 4-byte frame length prefix.
func Encode(p *Packet, buf []byte) []byte {
	ns := []byte(p.Op.Namespace)
	total := headerFixedLen + 2 + len(ns) + 16 + 1 + 16 + 4 + 1 + 4 + len(p.Op.Payload)

	if cap(buf) < total {
		buf = make([]byte, total)
	} else {
		buf = buf[:total]
	}

	off := 0
	binary.LittleEndian.PutUint32(buf[off:], 0) // checksum placeholder
	off += 4
	binary.LittleEndian.PutUint32(buf[off:], uint32(total)) // declared length placeholder
	off += 4
	binary.LittleEndian.PutUint32(buf[off:], p.PacketID)
	off += 4
	binary.LittleEndian.PutUint32(buf[off:], p.SessionID)
	off += 4
	binary.LittleEndian.PutUint64(buf[off:], p.CorrelationID)
	off += 8
	binary.LittleEndian.PutUint64(buf[off:], p.TimestampMs)
	off += 8
	buf[off] = byte(p.Op.Kind)
	off++

	binary.LittleEndian.PutUint16(buf[off:], uint16(len(ns)))
	off += 2
	copy(buf[off:], ns)
	off += len(ns)

	docID, _ := p.Op.DocumentID.MarshalBinary()
	copy(buf[off:], docID)
	off += 16

	if p.Op.HasStartKey {
		buf[off] = 1
	} else {
		buf[off] = 0
	}
	off++
	startKey, _ := p.Op.StartKey.MarshalBinary()
	copy(buf[off:], startKey)
	off += 16

	binary.LittleEndian.PutUint32(buf[off:], p.Op.ScanCount)
	off += 4

	buf[off] = byte(p.Op.Status)
	off++

	binary.LittleEndian.PutUint32(buf[off:], uint32(len(p.Op.Payload)))
	off += 4
	copy(buf[off:], p.Op.Payload)

	return buf
}

// Decode parses a packet body (as produced by Encode, without the frame
// length prefix) from buf.
func Decode(buf []byte) (*Packet, error) {
	if len(buf) < headerFixedLen+2 {
		return nil, shinyerr.ErrInvalidResponse
	}

	off := 0
	off += 4 // checksum, ignored
	off += 4 // declared length, ignored (outer frame already enforces the cap)

	p := &Packet{}
	p.PacketID = binary.LittleEndian.Uint32(buf[off:])
	off += 4
	p.SessionID = binary.LittleEndian.Uint32(buf[off:])
	off += 4
	p.CorrelationID = binary.LittleEndian.Uint64(buf[off:])
	off += 8
	p.TimestampMs = binary.LittleEndian.Uint64(buf[off:])
	off += 8

	kind := OperationKind(buf[off])
	if !kind.valid() {
		return nil, shinyerr.ErrInvalidResponse
	}
	p.Op.Kind = kind
	off++

	if off+2 > len(buf) {
		return nil, shinyerr.ErrInvalidResponse
	}
	nsLen := int(binary.LittleEndian.Uint16(buf[off:]))
	off += 2
	if off+nsLen > len(buf) {
		return nil, shinyerr.ErrInvalidResponse
	}
	p.Op.Namespace = string(buf[off : off+nsLen])
	off += nsLen

	if off+16 > len(buf) {
		return nil, shinyerr.ErrInvalidResponse
	}
	if err := p.Op.DocumentID.UnmarshalBinary(buf[off : off+16]); err != nil {
		return nil, shinyerr.ErrInvalidResponse
	}
	off += 16

	if off+1+16+4+1+4 > len(buf) {
		return nil, shinyerr.ErrInvalidResponse
	}
	p.Op.HasStartKey = buf[off] == 1
	off++
	if err := p.Op.StartKey.UnmarshalBinary(buf[off : off+16]); err != nil {
		return nil, shinyerr.ErrInvalidResponse
	}
	off += 16
	p.Op.ScanCount = binary.LittleEndian.Uint32(buf[off:])
	off += 4
	p.Op.Status = Status(buf[off])
	off++

	payloadLen := binary.LittleEndian.Uint32(buf[off:])
	off += 4
	if payloadLen > MaxPayloadBytes {
		return nil, shinyerr.ErrInvalidResponse
	}
	if off+int(payloadLen) != len(buf) {
		return nil, shinyerr.ErrInvalidResponse
	}
	if payloadLen > 0 {
		p.Op.Payload = append([]byte(nil), buf[off:off+int(payloadLen)]...)
	}

	return p, nil
}
