package sse

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendToUserTargetsOnlyThatUser(t *testing.T) {
	hub := NewHub()
	a := hub.Register("a", 1)
	b := hub.Register("b", 2)
	defer hub.Unregister("a")
	defer hub.Unregister("b")

	NewHubNotifier(hub).NotifyLogin(1, "master")

	require.Len(t, a.Events, 1)
	assert.Len(t, b.Events, 0)

	var ev SessionEvent
	require.NoError(t, json.Unmarshal(<-a.Events, &ev))
	assert.Equal(t, EventSessionLogin, ev.Event)
	assert.Equal(t, "master", ev.Role)
}

func TestSendDropsWhenBufferFull(t *testing.T) {
	hub := NewHub()
	c := hub.Register("a", 1)
	for i := 0; i < 70; i++ {
		hub.SendToUser(1, &SessionEvent{Event: EventSessionLogout, UserID: 1})
	}
	assert.Len(t, c.Events, 64)
}

func TestUnregisterClosesChannel(t *testing.T) {
	hub := NewHub()
	c := hub.Register("a", 1)
	hub.Unregister("a")
	hub.Unregister("a")

	_, ok := <-c.Events
	assert.False(t, ok)
	assert.Equal(t, 0, hub.ClientCount())
}
