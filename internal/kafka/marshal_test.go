package kafka

import (
	"encoding/json"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type samplePayload struct {
	OrderID int    `json:"order_id"`
	Reason  string `json:"reason"`
}

func TestUnwrapPayload(t *testing.T) {
	raw := json.RawMessage(MustMarshal(samplePayload{OrderID: 3, Reason: "declined"}))

	p, err := UnwrapPayload[samplePayload](raw)
	require.NoError(t, err)
	assert.Equal(t, samplePayload{OrderID: 3, Reason: "declined"}, p)

	_, err = UnwrapPayload[samplePayload](json.RawMessage(`{"order_id":"x"}`))
	assert.ErrorContains(t, err, "decode payload")
}

func TestMustMarshalPanicsOnUnsupported(t *testing.T) {
	assert.Panics(t, func() { MustMarshal(make(chan int)) })
}

func TestEventHeaders(t *testing.T) {
	m := kafka.Message{Headers: EventHeaders("OrderCreated", 1)}
	assert.Equal(t, "OrderCreated", HeaderValue(m, HeaderEventType))
	assert.Equal(t, "1", HeaderValue(m, HeaderEventVersion))
	assert.Empty(t, HeaderValue(m, "x-missing"))
}
