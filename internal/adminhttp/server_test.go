package adminhttp

import (
	"encoding/json"
	"net"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/shinydb/shinydb-go/resilience"
	"github.com/shinydb/shinydb-go/shinydb"
	"github.com/shinydb/shinydb-go/wire"
)

// fakeQueryServer accepts one connection and replies to every request with
// an OpReply carrying status and payload, mirroring shinydb's own
// loopback-socket fake servers since Client dials a real address.
func fakeQueryServer(t *testing.T, status wire.Status, payload []byte) (addr string, stop func()) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		for {
			lenBuf := make([]byte, wire.FrameLenBytes)
			if _, err := readFull(conn, lenBuf); err != nil {
				return
			}
			n := wire.FrameLen(lenBuf)
			body := make([]byte, n)
			if _, err := readFull(conn, body); err != nil {
				return
			}
			req, err := wire.Decode(body)
			if err != nil {
				return
			}

			reply := &wire.Packet{
				PacketID:      req.PacketID,
				SessionID:     req.SessionID,
				CorrelationID: req.CorrelationID,
				Op:            wire.Operation{Kind: wire.OpReply, Status: status, Payload: payload},
			}
			replyBody := wire.Encode(reply, nil)
			frame := make([]byte, wire.FrameLenBytes+len(replyBody))
			wire.PutFrameLen(frame, uint32(len(replyBody)))
			copy(frame[wire.FrameLenBytes:], replyBody)
			if _, err := conn.Write(frame); err != nil {
				return
			}
		}
	}()

	return ln.Addr().String(), func() { ln.Close() }
}

func readFull(conn net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func dialClient(t *testing.T, addr string) *shinydb.Client {
	t.Helper()
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		t.Fatalf("split addr: %v", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("parse port: %v", err)
	}

	c := shinydb.New(host, port, nil)
	c.SetTimeoutConfig(resilience.TimeoutConfig{})
	if err := c.Connect(); err != nil {
		t.Fatalf("connect: %v", err)
	}
	return c
}

func TestHealth_ReportsConnectedAndCounters(t *testing.T) {
	addr, stop := fakeQueryServer(t, wire.StatusOK, []byte(`{"ok":true}`))
	defer stop()

	client := dialClient(t, addr)
	defer client.Disconnect()

	if err := client.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	app := New(client, nil)
	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	var got healthResp
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !got.Connected {
		t.Fatal("Connected = false, want true")
	}
	if got.BreakerState != "closed" {
		t.Fatalf("BreakerState = %q, want closed", got.BreakerState)
	}
	if got.RequestCount != 1 {
		t.Fatalf("RequestCount = %d, want 1", got.RequestCount)
	}
}

func TestQuery_RejectsEmptyQuery(t *testing.T) {
	addr, stop := fakeQueryServer(t, wire.StatusOK, nil)
	defer stop()

	client := dialClient(t, addr)
	defer client.Disconnect()

	app := New(client, nil)
	body := `{"query":""}`
	req := httptest.NewRequest("POST", "/query", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 400 {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestQuery_RunsTextQueryAgainstClient(t *testing.T) {
	addr, stop := fakeQueryServer(t, wire.StatusOK, []byte(`[{"id":"1"}]`))
	defer stop()

	client := dialClient(t, addr)
	defer client.Disconnect()

	app := New(client, nil)
	body := `{"query":"users"}`
	req := httptest.NewRequest("POST", "/query", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var got queryResp
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !got.Success {
		t.Fatal("Success = false, want true")
	}
}
