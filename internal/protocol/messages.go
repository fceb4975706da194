package protocol

import "encoding/json"

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ClientName      string `json:"client_name"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string            `json:"type"`
	ProtocolVersion string            `json:"protocol_version"`
	SessionID       string            `json:"session_id"`
	Seed            int64             `json:"seed"`
	Intellects      []string          `json:"intellects"`
	Catalogs        map[string]string `json:"catalogs"`
}

// CMD (client -> server): one player action. Args are decoded by the action
// codec after schema validation.
type CmdMsg struct {
	Type            string          `json:"type"`
	ProtocolVersion string          `json:"protocol_version"`
	ReqID           string          `json:"req_id"`
	Action          string          `json:"action"`
	Args            json.RawMessage `json:"args,omitempty"`
}

// History operations.
const (
	HistoryUndo       = "undo"
	HistoryRedo       = "redo"
	HistoryJumpPast   = "jump_past"
	HistoryJumpFuture = "jump_future"
	HistoryClear      = "clear"
	HistoryCompact    = "compact"
)

// HISTORY (client -> server)
type HistoryMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ReqID           string `json:"req_id"`
	Op              string `json:"op"`
	Index           int    `json:"index,omitempty"`
}

// DELEGATE (client -> server): let an intellect play some turns.
type DelegateMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ReqID           string `json:"req_id"`
	Intellect       string `json:"intellect"`
	Turns           int    `json:"turns"`
}

// RESULT (server -> client) answers exactly one request.
type ResultMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ReqID           string `json:"req_id,omitempty"`
	Success         bool   `json:"success"`
	Code            string `json:"code,omitempty"`
	Message         string `json:"error_message,omitempty"`
	TurnsPlayed     int    `json:"turns_played,omitempty"`
}

// STATE (server -> client) follows every accepted request. Game and AI are
// the engine's own JSON encodings.
type StateMsg struct {
	Type            string          `json:"type"`
	ProtocolVersion string          `json:"protocol_version"`
	Turn            int             `json:"turn"`
	Digest          string          `json:"digest"`
	GameOver        bool            `json:"game_over"`
	GameWon         bool            `json:"game_won"`
	CanUndo         bool            `json:"can_undo"`
	CanRedo         bool            `json:"can_redo"`
	Labels          []string        `json:"labels,omitempty"`
	Game            json.RawMessage `json:"game"`
	AI              json.RawMessage `json:"ai"`
}

// NewResult fills in a generic message for codes without one.
func NewResult(reqID string, ok bool, code, msg string) ResultMsg {
	if !ok && msg == "" {
		msg = Describe(code)
	}
	return ResultMsg{Type: TypeResult, ProtocolVersion: Version, ReqID: reqID, Success: ok, Code: code, Message: msg}
}
