package websocket

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessageSetsTimestamp(t *testing.T) {
	msg := NewMessage(MessageTypePostCreated, PostCreatedPayload{PostID: "abc"})

	assert.Equal(t, MessageTypePostCreated, msg.Type)
	assert.False(t, msg.Timestamp.IsZero())
}

func TestParsePayloadTypesIncomingJSON(t *testing.T) {
	// Incoming messages decode payloads as map[string]interface{};
	// ParsePayload recovers the concrete type.
	raw := `{"type":"post_created","payload":{"post_id":"p1","content":"hi","created_at":1700000000000}}`

	var msg Message
	require.NoError(t, json.Unmarshal([]byte(raw), &msg))

	var payload PostCreatedPayload
	require.NoError(t, msg.ParsePayload(&payload))
	assert.Equal(t, "p1", payload.PostID)
	assert.Equal(t, "hi", payload.Content)
	assert.Equal(t, int64(1700000000000), payload.CreatedAt)
}

func TestParsePayloadNilIsNoOp(t *testing.T) {
	msg := &Message{Type: MessageTypePing}

	var payload PingPayload
	require.NoError(t, msg.ParsePayload(&payload))
	assert.Zero(t, payload.ClientTime)
}

func TestErrorMessageCarriesCode(t *testing.T) {
	msg := NewErrorMessage("UNKNOWN_TYPE", "unsupported message type")

	assert.Equal(t, MessageTypeError, msg.Type)
	payload, ok := msg.Payload.(ErrorPayload)
	require.True(t, ok)
	assert.Equal(t, "UNKNOWN_TYPE", payload.Code)
}
