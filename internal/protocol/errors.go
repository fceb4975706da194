package protocol

// Result codes carried by RESULT messages and action results. Rule codes
// are produced by action validation; the rest by the transport.
const (
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"
	ErrNoPermission    = "E_NO_PERMISSION"
	ErrInternal        = "E_INTERNAL"

	ErrGameOver      = "E_GAME_OVER"
	ErrBadRequest    = "E_BAD_REQUEST"
	ErrNoResource    = "E_NO_RESOURCE"
	ErrInvalidTarget = "E_INVALID_TARGET"
	ErrCapacity      = "E_CAPACITY"
	ErrConflict      = "E_CONFLICT"
	ErrBlocked       = "E_BLOCKED"
)

var codeText = map[string]string{
	ErrProtoBadRequest: "message failed schema or decoding",
	ErrNoPermission:    "not allowed for this session",
	ErrInternal:        "server error",
	ErrGameOver:        "the game has ended",
	ErrBadRequest:      "malformed action arguments",
	ErrNoResource:      "not enough money",
	ErrInvalidTarget:   "unknown agent, lead, investigation, mission or faction",
	ErrCapacity:        "a cap would be exceeded",
	ErrConflict:        "target is in the wrong state",
	ErrBlocked:         "agent or lead is not ready",
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := codeText[code]
	return ok
}

// Describe returns a short generic text for code.
func Describe(code string) string {
	if t, ok := codeText[code]; ok {
		return t
	}
	return "unknown error"
}
