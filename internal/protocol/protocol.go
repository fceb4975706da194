// Package protocol defines the JSON messages spoken between the game server
// and an external client.
package protocol

import "encoding/json"

const Version = "1.0"

// Message types.
const (
	// client -> server
	TypeHello    = "HELLO"
	TypeCmd      = "CMD"
	TypeHistory  = "HISTORY"
	TypeDelegate = "DELEGATE"

	// server -> client
	TypeWelcome = "WELCOME"
	TypeState   = "STATE"
	TypeResult  = "RESULT"
)

// BaseMessage lets us route unknown JSON messages by type.
type BaseMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version,omitempty"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}
