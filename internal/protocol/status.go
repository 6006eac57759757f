package protocol

import (
	"encoding/json"
)

// IdleState is the idle-inhibit status reported to clients.
type IdleState struct {
	Inhibited bool `json:"inhibited"`
}

// EncodeStatus serializes a status response payload.
func EncodeStatus(state IdleState) ([]byte, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return nil, &SerializationError{Op: OpEncode, Err: err}
	}
	return data, nil
}

// DecodeStatus parses a status response payload.
// An empty payload means the daemon acknowledged without reporting a status,
// and yields a nil state.
func DecodeStatus(data []byte) (*IdleState, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var state IdleState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, &SerializationError{Op: OpDecode, Err: err}
	}
	return &state, nil
}
