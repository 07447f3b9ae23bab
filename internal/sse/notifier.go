package sse

import "time"

// SessionNotifier is the interface services use to emit session events.
type SessionNotifier interface {
	NotifyLogin(userID int, role string)
	NotifyLogout(userID int)
}

// HubNotifier implements SessionNotifier using the SSE Hub.
type HubNotifier struct {
	hub *Hub
}

// NewHubNotifier creates a notifier backed by the given Hub.
func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) NotifyLogin(userID int, role string) {
	if n.hub.ClientCount() == 0 {
		return
	}
	n.hub.SendToUser(userID, &SessionEvent{Event: EventSessionLogin, UserID: userID, Role: role, Timestamp: time.Now()})
}

func (n *HubNotifier) NotifyLogout(userID int) {
	if n.hub.ClientCount() == 0 {
		return
	}
	n.hub.SendToUser(userID, &SessionEvent{Event: EventSessionLogout, UserID: userID, Timestamp: time.Now()})
}

// NopNotifier is a no-op implementation for when SSE is not needed.
type NopNotifier struct{}

func (n *NopNotifier) NotifyLogin(userID int, role string) {}
func (n *NopNotifier) NotifyLogout(userID int)             {}
