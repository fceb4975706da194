package protocol_test

import (
	"testing"

	"github.com/konrad-jamrozik/game-ts-sub002/internal/protocol"
)

func TestSchemas_ValidateSamples(t *testing.T) {
	v, err := protocol.NewValidator()
	if err != nil {
		t.Fatalf("validator: %v", err)
	}

	cases := []struct {
		typ string
		doc string
		ok  bool
	}{
		{protocol.TypeHello, `{"type":"HELLO","protocol_version":"1.0","client_name":"ui"}`, true},
		{protocol.TypeHello, `{"type":"HELLO","protocol_version":"1.0"}`, false},
		{protocol.TypeCmd, `{"type":"CMD","protocol_version":"1.0","req_id":"r1","action":"hireAgent"}`, true},
		{protocol.TypeCmd, `{"type":"CMD","protocol_version":"1.0","req_id":"r2","action":"deployAgentsToMission",
			"args":{"mission_id":"mission-001","agent_ids":["agent-001","agent-002"]}}`, true},
		{protocol.TypeCmd, `{"type":"CMD","protocol_version":"1.0","req_id":"r3","action":"buyUpgrade","args":{"upgrade":"training_cap"}}`, true},
		{protocol.TypeCmd, `{"type":"CMD","protocol_version":"1.0","req_id":"r4","action":"launchNukes"}`, false},
		{protocol.TypeCmd, `{"type":"CMD","protocol_version":"1.0","req_id":"r5","action":"sackAgents","args":{"agent_ids":"agent-001"}}`, false},
		{protocol.TypeCmd, `{"type":"CMD","protocol_version":"1.0","req_id":"r6","action":"hireAgent","args":{"extra":1}}`, false},
		{protocol.TypeHistory, `{"type":"HISTORY","protocol_version":"1.0","req_id":"h1","op":"jump_past","index":2}`, true},
		{protocol.TypeHistory, `{"type":"HISTORY","protocol_version":"1.0","req_id":"h2","op":"rewind"}`, false},
		{protocol.TypeDelegate, `{"type":"DELEGATE","protocol_version":"1.0","req_id":"d1","intellect":"basic","turns":10}`, true},
		{protocol.TypeDelegate, `{"type":"DELEGATE","protocol_version":"1.0","req_id":"d2","intellect":"basic","turns":0}`, false},
		{protocol.TypeState, `{}`, false},
	}
	for i, c := range cases {
		err := v.Validate(c.typ, []byte(c.doc))
		if (err == nil) != c.ok {
			t.Fatalf("case %d (%s): err = %v, want ok=%v", i, c.typ, err, c.ok)
		}
	}
}
