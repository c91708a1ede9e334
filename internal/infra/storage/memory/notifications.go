package memory

import (
	"context"
	"sort"
	"sync"

	domainnotification "threadly/internal/domain/notification"
)

// NotificationRepository stores notifications in memory.
type NotificationRepository struct {
	mu   sync.RWMutex
	byID map[string]*domainnotification.Notification
}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{byID: make(map[string]*domainnotification.Notification)}
}

func (r *NotificationRepository) ByRecipient(ctx context.Context, userID string) ([]*domainnotification.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []*domainnotification.Notification
	for _, n := range r.byID {
		if n.Recipient == userID {
			result = append(result, cloneNotification(n))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *NotificationRepository) Create(ctx context.Context, n *domainnotification.Notification) error {
	r.mu.Lock()
	r.byID[n.ID] = cloneNotification(n)
	r.mu.Unlock()
	return nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.byID[id]
	if !ok || n.Recipient != userID {
		return domainnotification.ErrNotFound
	}
	n.Read = true
	return nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.byID {
		if n.Recipient == userID {
			n.Read = true
		}
	}
	return nil
}

func cloneNotification(n *domainnotification.Notification) *domainnotification.Notification {
	if n == nil {
		return nil
	}
	copyNotification := *n
	return &copyNotification
}

var _ domainnotification.Repository = (*NotificationRepository)(nil)
