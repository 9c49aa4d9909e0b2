package kafka

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventType(t *testing.T) {
	payload, err := json.Marshal(BookingEvent{Type: EventBookingCreated, PNR: "AB12CD"})
	require.NoError(t, err)

	typ, err := EventType(payload)
	require.NoError(t, err)
	assert.Equal(t, EventBookingCreated, typ)

	payload, err = json.Marshal(AccountEvent{Type: EventPasswordResetRequested, Email: "a@b.c"})
	require.NoError(t, err)

	typ, err = EventType(payload)
	require.NoError(t, err)
	assert.Equal(t, EventPasswordResetRequested, typ)

	_, err = EventType([]byte("not json"))
	assert.Error(t, err)
}

func TestNewProducer_CheckConnectionWithoutBrokers(t *testing.T) {
	p := NewProducer(nil)
	assert.Error(t, p.CheckConnection(t.Context()))
	assert.NoError(t, p.Close())
}
