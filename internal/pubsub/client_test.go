package pubsub

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func TestDecodePushRoundTrip(t *testing.T) {
	notice := ChangeNotice{
		TenantID:   "club-a",
		Categories: []string{"mens_singles"},
		Source:     "import",
		Reference:  "batch-1",
		Succeeded:  3,
		OccurredAt: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	payload, err := msgpack.Marshal(notice)
	require.NoError(t, err)

	var env PushEnvelope
	env.Message.Data = payload
	env.Message.MessageID = "m-1"
	env.Subscription = "projects/p/subscriptions/s"
	body, err := json.Marshal(env)
	require.NoError(t, err)

	data, got, err := DecodePush(bytes.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, "m-1", got.Message.MessageID)

	var decoded ChangeNotice
	require.NoError(t, NewNoop().ProcessMessage(data, &decoded))
	assert.Equal(t, notice.TenantID, decoded.TenantID)
	assert.Equal(t, notice.Categories, decoded.Categories)
	assert.Equal(t, 3, decoded.Succeeded)
	assert.True(t, notice.OccurredAt.Equal(decoded.OccurredAt))
}

func TestDecodePushRejectsEmptyData(t *testing.T) {
	_, _, err := DecodePush(bytes.NewReader([]byte(`{"message":{"messageId":"1"}}`)))
	assert.Error(t, err)

	_, _, err = DecodePush(bytes.NewReader([]byte(`not json`)))
	assert.Error(t, err)
}

func TestNoopSendMessage(t *testing.T) {
	c := NewNoop()
	defer c.Close()
	assert.NoError(t, c.SendMessage(context.Background(), EventResultsChanged, ChangeNotice{TenantID: "t"}))
	assert.Error(t, c.SendMessage(context.Background(), EventResultsChanged, make(chan int)))
}
