package memory

import (
	"context"
	"sort"
	"sync"

	domainorder "threadly/internal/domain/order"
)

// OrderRepository stores orders in memory.
type OrderRepository struct {
	mu   sync.RWMutex
	byID map[string]*domainorder.Order
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{byID: make(map[string]*domainorder.Order)}
}

func (r *OrderRepository) ByID(ctx context.Context, id string) (*domainorder.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if o, ok := r.byID[id]; ok {
		return cloneOrder(o), nil
	}
	return nil, domainorder.ErrNotFound
}

func (r *OrderRepository) ByParticipant(ctx context.Context, userID string) ([]*domainorder.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []*domainorder.Order
	for _, o := range r.byID {
		if o.Involves(userID) {
			result = append(result, cloneOrder(o))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *OrderRepository) Recent(ctx context.Context, limit int) ([]*domainorder.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]*domainorder.Order, 0, len(r.byID))
	for _, o := range r.byID {
		result = append(result, cloneOrder(o))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *OrderRepository) Stats(ctx context.Context) (domainorder.Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var stats domainorder.Stats
	for _, o := range r.byID {
		stats.Total++
		if o.Status == domainorder.StatusCompleted {
			stats.Completed++
			stats.Revenue += o.Amount
		}
	}
	return stats, nil
}

func (r *OrderRepository) Save(ctx context.Context, o *domainorder.Order) error {
	r.mu.Lock()
	r.byID[o.ID] = cloneOrder(o)
	r.mu.Unlock()
	return nil
}

func cloneOrder(o *domainorder.Order) *domainorder.Order {
	if o == nil {
		return nil
	}
	copyOrder := *o
	return &copyOrder
}

var _ domainorder.Repository = (*OrderRepository)(nil)
