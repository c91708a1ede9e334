package order

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound        = errors.New("order: not found")
	ErrBuyerIsSeller   = errors.New("order: cannot buy your own listing")
	ErrNotBuyer        = errors.New("order: only the buyer may perform this action")
	ErrNotSeller       = errors.New("order: only the seller may perform this action")
	ErrInvalidState    = errors.New("order: invalid state for this transition")
	ErrPaymentRequired = errors.New("order: payment has not been confirmed")
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

type ShippingAddress struct {
	Name    string
	Phone   string
	Street  string
	City    string
	State   string
	Pincode string
}

// Order tracks an escrow-style purchase: payment is confirmed up front and
// released to the seller only after the buyer confirms delivery.
type Order struct {
	ID              string
	Buyer           string
	Seller          string
	ListingID       string
	Amount          float64
	Currency        string
	PaymentIntentID string
	PaymentID       string
	PaymentStatus   PaymentStatus
	Status          Status
	EscrowReleased  bool
	Shipping        ShippingAddress
	DeliveryNote    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Stats is a platform-wide order rollup. Revenue sums completed orders only.
type Stats struct {
	Total     int64
	Completed int64
	Revenue   float64
}

type Repository interface {
	ByID(ctx context.Context, id string) (*Order, error)
	ByParticipant(ctx context.Context, userID string) ([]*Order, error)
	// Recent returns the newest orders across all users.
	Recent(ctx context.Context, limit int) ([]*Order, error)
	Stats(ctx context.Context) (Stats, error)
	Save(ctx context.Context, o *Order) error
}

func New(id, buyer, seller, listingID string, amount float64, intentID string, shipping ShippingAddress, now time.Time) (*Order, error) {
	if buyer == seller {
		return nil, ErrBuyerIsSeller
	}
	now = now.UTC()
	return &Order{
		ID:              id,
		Buyer:           buyer,
		Seller:          seller,
		ListingID:       listingID,
		Amount:          amount,
		Currency:        "INR",
		PaymentIntentID: intentID,
		PaymentStatus:   PaymentPending,
		Status:          StatusPending,
		Shipping:        shipping,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// ConfirmPayment records a verified provider payment and confirms the order.
func (o *Order) ConfirmPayment(paymentID string, now time.Time) error {
	if o.Status != StatusPending {
		return ErrInvalidState
	}
	o.PaymentID = paymentID
	o.PaymentStatus = PaymentPaid
	o.Status = StatusConfirmed
	o.UpdatedAt = now.UTC()
	return nil
}

// MarkShipped is a seller-only transition from confirmed to shipped.
func (o *Order) MarkShipped(actor string, now time.Time) error {
	if actor != o.Seller {
		return ErrNotSeller
	}
	if o.Status != StatusConfirmed {
		return ErrInvalidState
	}
	o.Status = StatusShipped
	o.UpdatedAt = now.UTC()
	return nil
}

// ConfirmDelivery is a buyer-only transition that completes the order and
// releases escrow.
func (o *Order) ConfirmDelivery(actor string, now time.Time) error {
	if actor != o.Buyer {
		return ErrNotBuyer
	}
	if o.Status != StatusShipped && o.Status != StatusDelivered {
		return ErrInvalidState
	}
	o.Status = StatusCompleted
	o.EscrowReleased = true
	o.UpdatedAt = now.UTC()
	return nil
}

// Cancel is a buyer-only transition allowed until the seller ships. A paid
// order flips its payment to refunded; the refund itself is the caller's job.
func (o *Order) Cancel(actor string, now time.Time) error {
	if actor != o.Buyer {
		return ErrNotBuyer
	}
	if o.Status != StatusPending && o.Status != StatusConfirmed {
		return ErrInvalidState
	}
	o.Status = StatusCancelled
	if o.PaymentStatus == PaymentPaid {
		o.PaymentStatus = PaymentRefunded
	}
	o.UpdatedAt = now.UTC()
	return nil
}

// Involves reports whether userID is the buyer or the seller.
func (o *Order) Involves(userID string) bool {
	return o.Buyer == userID || o.Seller == userID
}
