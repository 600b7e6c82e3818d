// Package transport implements the pipelined TCP request/response
// connection: length-prefixed framing, a FIFO of
// in-flight correlation IDs, and deadline-driven reads/writes. There is no
// internal locking here — a Transport is single-owner, with the
// caller's own synchronization (if any) happening above this layer. The
// deadline idiom (SetReadDeadline/SetWriteDeadline bracketing a blocking
// call) is grounded on dcrodman-franz-go's writeConn/readConn.
package transport

import (
	"io"
	"net"
	"strconv"
	"time"

	"github.com/shinydb/shinydb-go/shinyerr"
	"github.com/shinydb/shinydb-go/wire"
)

// pending is one in-flight request awaiting its reply.
type pending struct {
	correlationID uint64
}

// Transport owns one TCP connection to a ShinyDB server and the pipeline of
// requests sent but not yet replied to.
type Transport struct {
	conn net.Conn

	host string
	port int

	sessionID   uint32
	nextPacket  uint32
	correlation uint64

	inFlight []pending

	sendBuf []byte
	readBuf []byte
}

// New constructs an unconnected Transport for host:port.
func New(host string, port int) *Transport {
	return &Transport{
		host:    host,
		port:    port,
		sendBuf: make([]byte, 0, 4096),
		readBuf: make([]byte, 0, 4096),
	}
}

// Connected reports whether the transport currently owns a live connection.
func (t *Transport) Connected() bool {
	return t.conn != nil
}

// Connect dials host:port, bounded by connectTimeout (zero means no
// deadline), and resets pipeline and session state.
func (t *Transport) Connect(connectTimeout time.Duration) error {
	var conn net.Conn
	var err error

	addr := net.JoinHostPort(t.host, strconv.Itoa(t.port))
	if connectTimeout > 0 {
		conn, err = net.DialTimeout("tcp", addr, connectTimeout)
	} else {
		conn, err = net.Dial("tcp", addr)
	}
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return shinyerr.ErrTimeout
		}
		return shinyerr.ErrConnectionFailed
	}

	t.conn = conn
	t.sessionID = newSessionID()
	t.nextPacket = 0
	t.correlation = 0
	t.inFlight = t.inFlight[:0]
	return nil
}

// Disconnect closes the underlying connection, if any, and drops pipeline
// state. It is always safe to call, including on an already-closed
// transport.
func (t *Transport) Disconnect() error {
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	t.inFlight = t.inFlight[:0]
	if err != nil {
		return shinyerr.ErrConnectionReset
	}
	return nil
}

// SendAsync encodes op, assigns it the next correlation ID, writes it to the
// wire within writeTimeout, and enqueues it on the pending FIFO. It does not
// wait for a reply.
func (t *Transport) SendAsync(op wire.Operation, writeTimeout time.Duration) (uint64, error) {
	if t.conn == nil {
		return 0, shinyerr.ErrConnectionFailed
	}

	t.correlation++
	corrID := t.correlation
	t.nextPacket++

	pkt := &wire.Packet{
		PacketID:      t.nextPacket,
		SessionID:     t.sessionID,
		CorrelationID: corrID,
		TimestampMs:   uint64(time.Now().UnixMilli()),
		Op:            op,
	}

	body := wire.Encode(pkt, t.sendBuf[:0])
	t.sendBuf = body

	frame := make([]byte, wire.FrameLenBytes+len(body))
	wire.PutFrameLen(frame, uint32(len(body)))
	copy(frame[wire.FrameLenBytes:], body)

	if writeTimeout > 0 {
		if err := t.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
			return 0, shinyerr.ErrConnectionReset
		}
	} else {
		_ = t.conn.SetWriteDeadline(time.Time{})
	}
	defer t.conn.SetWriteDeadline(time.Time{})

	if _, err := t.conn.Write(frame); err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return 0, shinyerr.ErrWriteTimeout
		}
		return 0, shinyerr.ErrConnectionReset
	}

	t.inFlight = append(t.inFlight, pending{correlationID: corrID})
	return corrID, nil
}

// ReceiveAsync blocks (bounded by readTimeout) for the next full reply frame
// and decodes it. It does not validate the reply's correlation ID against
// the pending FIFO — ordering validation is left to the caller,
// since the pipeline is assumed to be strictly FIFO per connection.
func (t *Transport) ReceiveAsync(readTimeout time.Duration) (*wire.Packet, error) {
	if t.conn == nil {
		return nil, shinyerr.ErrConnectionFailed
	}
	if len(t.inFlight) == 0 {
		return nil, shinyerr.ErrInvalidResponse
	}

	if readTimeout > 0 {
		if err := t.conn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
			return nil, shinyerr.ErrConnectionReset
		}
	} else {
		_ = t.conn.SetReadDeadline(time.Time{})
	}
	defer t.conn.SetReadDeadline(time.Time{})

	lenBuf := make([]byte, wire.FrameLenBytes)
	if _, err := io.ReadFull(t.conn, lenBuf); err != nil {
		return nil, classifyReadErr(err)
	}

	declared := wire.FrameLen(lenBuf)
	if declared == 0 || declared > wire.MaxPayloadBytes {
		return nil, shinyerr.ErrInvalidResponse
	}

	if cap(t.readBuf) < int(declared) {
		t.readBuf = make([]byte, declared)
	} else {
		t.readBuf = t.readBuf[:declared]
	}

	if _, err := io.ReadFull(t.conn, t.readBuf); err != nil {
		return nil, classifyReadErr(err)
	}

	pkt, err := wire.Decode(t.readBuf)
	if err != nil {
		return nil, err
	}

	t.inFlight = t.inFlight[1:]

	return pkt, nil
}

// PendingCount reports how many requests are in flight awaiting a reply.
func (t *Transport) PendingCount() int {
	return len(t.inFlight)
}

func classifyReadErr(err error) error {
	if ne, ok := err.(net.Error); ok && ne.Timeout() {
		return shinyerr.ErrReadTimeout
	}
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return shinyerr.ErrConnectionReset
	}
	return shinyerr.ErrNetworkError
}

func newSessionID() uint32 {
	return uint32(time.Now().UnixNano())
}
