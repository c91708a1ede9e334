package notification

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("notification: not found")

type Type string

const (
	TypeNewOrder       Type = "new_order"
	TypeOrderConfirmed Type = "order_confirmed"
	TypeOrderShipped   Type = "order_shipped"
	TypeOrderDelivered Type = "order_delivered"
	TypeSwapProposed   Type = "swap_proposed"
	TypeSwapAccepted   Type = "swap_accepted"
	TypeSwapRejected   Type = "swap_rejected"
	TypeSwapCountered  Type = "swap_countered"
	TypeNewMessage     Type = "new_message"
	TypeNewReview      Type = "new_review"
	TypeListingExpired Type = "listing_expired"
)

type Notification struct {
	ID        string
	Recipient string
	Type      Type
	Message   string
	Read      bool
	Link      string
	CreatedAt time.Time
}

type Repository interface {
	ByRecipient(ctx context.Context, userID string) ([]*Notification, error)
	Create(ctx context.Context, n *Notification) error
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) error
}
