package payments

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"threadly/internal/app/policies"
)

// FakeProvider approves everything. Backs dev mode and tests, where no
// gateway is reachable.
type FakeProvider struct {
	mu       sync.Mutex
	captured map[string]bool
	released map[string]bool
	refunded map[string]bool
}

func NewFakeProvider() *FakeProvider {
	return &FakeProvider{
		captured: make(map[string]bool),
		released: make(map[string]bool),
		refunded: make(map[string]bool),
	}
}

func (p *FakeProvider) CreateIntent(ctx context.Context, orderID string, amount float64, currency string) (policies.PaymentIntent, error) {
	id := "pi_" + uuid.NewString()
	return policies.PaymentIntent{ID: id, ClientSecret: id + "_secret"}, nil
}

func (p *FakeProvider) Capture(ctx context.Context, intentID string) (string, error) {
	p.mu.Lock()
	p.captured[intentID] = true
	p.mu.Unlock()
	return "pay_" + uuid.NewString(), nil
}

func (p *FakeProvider) Release(ctx context.Context, intentID string) error {
	p.mu.Lock()
	p.released[intentID] = true
	p.mu.Unlock()
	return nil
}

func (p *FakeProvider) Refund(ctx context.Context, intentID string) error {
	p.mu.Lock()
	p.refunded[intentID] = true
	p.mu.Unlock()
	return nil
}

// Captured reports whether the intent has been captured. Test helper.
func (p *FakeProvider) Captured(intentID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.captured[intentID]
}

// Released reports whether escrow was released for the intent. Test helper.
func (p *FakeProvider) Released(intentID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.released[intentID]
}

var _ policies.PaymentsPort = (*FakeProvider)(nil)
