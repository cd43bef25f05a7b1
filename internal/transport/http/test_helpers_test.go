package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/hypertac-server/internal/config"
	"github.com/vovakirdan/hypertac-server/internal/core"
	"github.com/vovakirdan/hypertac-server/internal/proto"
	"github.com/vovakirdan/hypertac-server/internal/store"
	"github.com/vovakirdan/hypertac-server/internal/store/sqlite"
)

type testServer struct {
	*httptest.Server
	hub *core.Hub
}

func (ts *testServer) wsURL() string {
	return strings.Replace(ts.URL, "http", "ws", 1) + "/ws"
}

// startTestServer runs the full router over httptest. matches may be nil.
func startTestServer(t *testing.T, matches store.MatchStore, tweak func(*config.Config)) *testServer {
	t.Helper()

	cfg := config.Default()
	cfg.Addr = ":0"
	cfg.ReadHeaderTimeout = time.Second
	cfg.ShutdownTimeout = time.Second
	if tweak != nil {
		tweak(&cfg)
	}

	disabledLogger := zerolog.New(nil)
	hub := core.NewHub(core.NewDirectory(cfg.Game, nil, &disabledLogger), &disabledLogger)
	server := NewServer(hub, matches, &cfg, &disabledLogger)

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return &testServer{Server: ts, hub: hub}
}

// createTestStore creates an in-memory SQLite archive.
func createTestStore(t *testing.T) *sqlite.SQLiteStore {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

// wireOutbound mirrors proto.Outbound with the payload left raw.
type wireOutbound struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error"`
}

func dial(ctx context.Context, t *testing.T, ts *testServer) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.Dial(ctx, ts.wsURL(), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "done") })
	return conn
}

func send(ctx context.Context, t *testing.T, conn *websocket.Conn, typ string, data any) {
	t.Helper()
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			t.Fatalf("marshal %s: %v", typ, err)
		}
		raw = b
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: typ, Data: raw}); err != nil {
		t.Fatalf("send %s: %v", typ, err)
	}
}

// readUntil reads messages until one matches typ and event, and returns it.
// For errors pass proto.OutboundTypeError and an empty event.
func readUntil(ctx context.Context, t *testing.T, conn *websocket.Conn, typ, event string) wireOutbound {
	t.Helper()
	for {
		var out wireOutbound
		if err := wsjson.Read(ctx, conn, &out); err != nil {
			t.Fatalf("waiting for %s/%s: %v", typ, event, err)
		}
		if out.Type == typ && out.Event == event {
			return out
		}
	}
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("decode %T: %v", v, err)
	}
	return v
}
