package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRectContainsIsInclusive(t *testing.T) {
	r := Rect{Left: 10, Top: 20, Right: 110, Bottom: 70}

	assert.True(t, r.Contains(10, 20))
	assert.True(t, r.Contains(110, 70))
	assert.True(t, r.Contains(60, 45))
	assert.False(t, r.Contains(9.9, 45))
	assert.False(t, r.Contains(60, 70.1))
}

func TestNewMessageEnvelope(t *testing.T) {
	msg := NewMessage(MessageScreencast, ScreencastPayload{Image: "abc", UserID: "u1"})
	require.Equal(t, MessageScreencast, msg.Type)

	var payload ScreencastPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	assert.Equal(t, "abc", payload.Image)
	assert.Equal(t, "u1", payload.UserID)
}
