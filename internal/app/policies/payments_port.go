package policies

import "context"

// PaymentIntent is the provider-side handle for an escrow hold.
type PaymentIntent struct {
	ID           string
	ClientSecret string
}

// PaymentsPort abstracts the payment provider. Capture moves a confirmed hold
// into escrow; Release pays the seller out after delivery is confirmed.
type PaymentsPort interface {
	CreateIntent(ctx context.Context, orderID string, amount float64, currency string) (PaymentIntent, error)
	Capture(ctx context.Context, intentID string) (string, error)
	Release(ctx context.Context, intentID string) error
	Refund(ctx context.Context, intentID string) error
}
