package ws

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	persistlog "github.com/konrad-jamrozik/game-ts-sub002/internal/persistence/log"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/protocol"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/game"
	"github.com/konrad-jamrozik/game-ts-sub002/internal/sim/gametest"
)

type memAudit struct{ entries []persistlog.AuditEntry }

func (m *memAudit) WriteAudit(e persistlog.AuditEntry) error {
	m.entries = append(m.entries, e)
	return nil
}

func newServer(t *testing.T, opts Options) *Server {
	t.Helper()
	e := gametest.New(t, 11)
	opts.Log = gametest.QuietLogger()
	s, err := NewServer(e, opts)
	if err != nil {
		t.Fatalf("server: %v", err)
	}
	return s
}

func TestHandleCommands(t *testing.T) {
	audit := &memAudit{}
	s := newServer(t, Options{Audit: audit})

	cases := []struct {
		msg     string
		ok      bool
		code    string
		changed bool
	}{
		{`{"type":"CMD","protocol_version":"1.0","req_id":"1","action":"hireAgent"}`, true, "", true},
		{`{"type":"CMD","protocol_version":"1.0","req_id":"2","action":"sackAgents","args":{"agent_ids":["agent-999"]}}`, false, protocol.ErrInvalidTarget, false},
		{`{"type":"CMD","protocol_version":"1.0","req_id":"3","action":"debugGrantMoney","args":{"amount":5}}`, false, protocol.ErrNoPermission, false},
		{`{"type":"CMD","protocol_version":"1.0","req_id":"4","action":"buyUpgrade","args":{"upgrade":"warp_drive"}}`, false, protocol.ErrProtoBadRequest, false},
		{`{"type":"CMD","protocol_version":"0.1","req_id":"5","action":"hireAgent"}`, false, protocol.ErrProtoBadRequest, false},
		{`{"type":"HISTORY","protocol_version":"1.0","req_id":"6","op":"undo"}`, true, "", true},
		{`{"type":"HISTORY","protocol_version":"1.0","req_id":"7","op":"undo"}`, false, protocol.ErrConflict, false},
		{`{"type":"HISTORY","protocol_version":"1.0","req_id":"8","op":"redo"}`, true, "", true},
		{`not json`, false, protocol.ErrProtoBadRequest, false},
	}
	for _, c := range cases {
		res, changed := s.Handle("S1", []byte(c.msg))
		if res.Success != c.ok || res.Code != c.code || changed != c.changed {
			t.Fatalf("%s: got %+v changed=%v", c.msg, res, changed)
		}
	}
	if len(audit.entries) != 2 || !audit.entries[0].Accepted || audit.entries[1].Code != protocol.ErrInvalidTarget {
		t.Fatalf("audit = %+v", audit.entries)
	}
}

func TestHandleDelegate(t *testing.T) {
	s := newServer(t, Options{})
	res, changed := s.Handle("S1", []byte(`{"type":"DELEGATE","protocol_version":"1.0","req_id":"d","intellect":"basic","turns":3}`))
	if !res.Success || res.TurnsPlayed != 3 || !changed {
		t.Fatalf("got %+v", res)
	}
	s.Do(func(e *game.Engine) {
		if e.GameState().Turn != 4 {
			t.Fatalf("turn = %d", e.GameState().Turn)
		}
	})

	res, _ = s.Handle("S1", []byte(`{"type":"DELEGATE","protocol_version":"1.0","req_id":"d","intellect":"oracle","turns":3}`))
	if res.Success || res.Code != protocol.ErrInternal {
		t.Fatalf("unknown intellect: %+v", res)
	}
}

func TestWebsocketSession(t *testing.T) {
	s := newServer(t, Options{})
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	read := func() map[string]any {
		t.Helper()
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, b, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var m map[string]any
		if err := json.Unmarshal(b, &m); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return m
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"HELLO","protocol_version":"1.0","client_name":"ui"}`)); err != nil {
		t.Fatalf("hello: %v", err)
	}
	if m := read(); m["type"] != protocol.TypeWelcome || m["seed"].(float64) != 11 {
		t.Fatalf("welcome = %v", m)
	}
	if m := read(); m["type"] != protocol.TypeState || m["turn"].(float64) != 1 {
		t.Fatalf("state = %v", m)
	}

	_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"CMD","protocol_version":"1.0","req_id":"a","action":"advanceTurn"}`))
	if m := read(); m["type"] != protocol.TypeResult || m["success"] != true || m["req_id"] != "a" {
		t.Fatalf("result = %v", m)
	}
	if m := read(); m["type"] != protocol.TypeState || m["turn"].(float64) != 2 || m["can_undo"] != true {
		t.Fatalf("state = %v", m)
	}
}
