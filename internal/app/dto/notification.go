package dto

import (
	"time"

	domainnotification "threadly/internal/domain/notification"
)

type Notification struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	Link      string    `json:"link,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func MapNotification(n *domainnotification.Notification) Notification {
	if n == nil {
		return Notification{}
	}
	return Notification{
		ID:        n.ID,
		Type:      string(n.Type),
		Message:   n.Message,
		Read:      n.Read,
		Link:      n.Link,
		CreatedAt: n.CreatedAt,
	}
}

func MapNotifications(ns []*domainnotification.Notification) []Notification {
	items := make([]Notification, 0, len(ns))
	for _, n := range ns {
		items = append(items, MapNotification(n))
	}
	return items
}
