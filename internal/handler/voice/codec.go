package voice

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
)

// envelope frames every message on the voice channel.
type envelope struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// encode builds a JSON-encoded envelope around a typed payload.
func encode(msgType, sessionID string, payload any) ([]byte, error) {
	var raw json.RawMessage
	if payload != nil {
		b, err := sonic.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("voice: marshal payload for %q: %w", msgType, err)
		}
		raw = b
	}
	return sonic.Marshal(envelope{
		Type:      msgType,
		SessionID: sessionID,
		Data:      raw,
		Timestamp: time.Now().Unix(),
	})
}

// decode parses a JSON-encoded envelope.
func decode(data []byte) (envelope, error) {
	var env envelope
	if err := sonic.Unmarshal(data, &env); err != nil {
		return envelope{}, fmt.Errorf("voice: unmarshal envelope: %w", err)
	}
	if env.Type == "" {
		return envelope{}, fmt.Errorf("voice: envelope missing type field")
	}
	return env, nil
}

// decodePayload decodes a raw envelope payload into a typed struct.
func decodePayload[T any](raw json.RawMessage) (T, error) {
	var v T
	if len(raw) == 0 {
		return v, nil
	}
	if err := sonic.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("voice: unmarshal payload: %w", err)
	}
	return v, nil
}
