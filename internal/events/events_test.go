package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	event, err := Decode([]byte(`{"resource":"meal-plans","id":"m1","operation":"replaced","published":"2024-09-01T10:00:00Z"}`))
	require.NoError(t, err)

	assert.Equal(t, "meal-plans", event.Resource)
	assert.Equal(t, "m1", event.ID)
	assert.Equal(t, OperationReplaced, event.Operation)
	assert.Equal(t, 2024, event.PublishedAt.Year())
}

func TestDecode_Invalid(t *testing.T) {
	_, err := Decode([]byte(`not json`))
	assert.Error(t, err)

	_, err = Decode([]byte(`{"id":"m1"}`))
	assert.Error(t, err)
}

func TestDiscard(t *testing.T) {
	var n Notifier = Discard{}
	assert.NoError(t, n.Notify(context.Background(), ChangeNotification{Resource: "terms"}))
	n.Close()
}
