package transport

import (
	"bytes"
	"net"
	"testing"
	"time"

	"github.com/shinydb/shinydb-go/shinyerr"
	"github.com/shinydb/shinydb-go/wire"
)

// pipeConn wires a Transport to an in-memory net.Pipe so tests never touch
// a real socket.
func pipeConn(t *testing.T) (*Transport, net.Conn) {
	t.Helper()
	client, server := net.Pipe()
	tr := New("unused", 0)
	tr.conn = client
	tr.sessionID = 1
	return tr, server
}

func TestTransport_SendAsync_AssignsIncreasingCorrelationIDs(t *testing.T) {
	tr, server := pipeConn(t)
	defer server.Close()

	go func() {
		buf := make([]byte, 4096)
		_, _ = server.Read(buf)
		_, _ = server.Read(buf)
	}()

	op := wire.Operation{Kind: wire.OpRead, Namespace: "db.users"}

	id1, err := tr.SendAsync(op, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	id2, err := tr.SendAsync(op, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if id1 == 0 || id2 != id1+1 {
		t.Fatalf("expected strictly increasing correlation ids, got %d then %d", id1, id2)
	}
	if tr.PendingCount() != 2 {
		t.Fatalf("expected 2 pending requests, got %d", tr.PendingCount())
	}
}

func TestTransport_ReceiveAsync_DrainsPendingFIFOInOrder(t *testing.T) {
	tr, server := pipeConn(t)
	defer server.Close()

	go func() {
		buf := make([]byte, 4096)
		server.Read(buf)
	}()

	op := wire.Operation{Kind: wire.OpRead, Namespace: "db.users"}
	if _, err := tr.SendAsync(op, 0); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if tr.PendingCount() != 1 {
		t.Fatalf("expected 1 pending, got %d", tr.PendingCount())
	}

	reply := &wire.Packet{
		PacketID:      1,
		SessionID:     1,
		CorrelationID: 1,
		Op: wire.Operation{
			Kind:    wire.OpReply,
			Status:  wire.StatusOK,
			Payload: []byte(`{"ok":true}`),
		},
	}
	body := wire.Encode(reply, nil)
	frame := make([]byte, wire.FrameLenBytes+len(body))
	wire.PutFrameLen(frame, uint32(len(body)))
	copy(frame[wire.FrameLenBytes:], body)

	go func() {
		server.Write(frame)
	}()

	got, err := tr.ReceiveAsync(2 * time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Op.Status != wire.StatusOK {
		t.Fatalf("expected StatusOK, got %v", got.Op.Status)
	}
	if !bytes.Equal(got.Op.Payload, []byte(`{"ok":true}`)) {
		t.Fatalf("unexpected payload: %s", got.Op.Payload)
	}
	if tr.PendingCount() != 0 {
		t.Fatalf("expected pending FIFO drained, got %d remaining", tr.PendingCount())
	}
}

func TestTransport_ReceiveAsync_WithEmptyPendingFailsFastWithoutTouchingSocket(t *testing.T) {
	tr, server := pipeConn(t)
	defer server.Close()

	_, err := tr.ReceiveAsync(100 * time.Millisecond)
	if err != shinyerr.ErrInvalidResponse {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
}

func TestTransport_SendAsync_WithoutConnectionFails(t *testing.T) {
	tr := New("127.0.0.1", 9999)
	_, err := tr.SendAsync(wire.Operation{Kind: wire.OpRead}, 0)
	if err == nil {
		t.Fatal("expected an error sending without a connection")
	}
}

func TestTransport_Disconnect_IsIdempotent(t *testing.T) {
	tr, server := pipeConn(t)
	defer server.Close()

	if err := tr.Disconnect(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tr.Disconnect(); err != nil {
		t.Fatalf("second disconnect should be a no-op, got: %v", err)
	}
	if tr.Connected() {
		t.Fatal("expected transport to report disconnected")
	}
}
