package memory

import (
	"context"
	"sort"
	"sync"

	domainswap "threadly/internal/domain/swap"
)

// SwapRepository stores swap proposals in memory.
type SwapRepository struct {
	mu   sync.RWMutex
	byID map[string]*domainswap.Swap
}

func NewSwapRepository() *SwapRepository {
	return &SwapRepository{byID: make(map[string]*domainswap.Swap)}
}

func (r *SwapRepository) ByID(ctx context.Context, id string) (*domainswap.Swap, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.byID[id]; ok {
		return cloneSwap(s), nil
	}
	return nil, domainswap.ErrNotFound
}

func (r *SwapRepository) ByParticipant(ctx context.Context, userID string) ([]*domainswap.Swap, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []*domainswap.Swap
	for _, s := range r.byID {
		if s.Involves(userID) {
			result = append(result, cloneSwap(s))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *SwapRepository) FindOpen(ctx context.Context, proposerListing, receiverListing string) (*domainswap.Swap, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.byID {
		if s.ProposerListing != proposerListing || s.ReceiverListing != receiverListing {
			continue
		}
		if s.Status == domainswap.StatusProposed || s.Status == domainswap.StatusCountered {
			return cloneSwap(s), nil
		}
	}
	return nil, domainswap.ErrNotFound
}

func (r *SwapRepository) Stats(ctx context.Context) (domainswap.Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var stats domainswap.Stats
	for _, s := range r.byID {
		stats.Total++
		if s.Status == domainswap.StatusCompleted {
			stats.Completed++
		}
	}
	return stats, nil
}

func (r *SwapRepository) Save(ctx context.Context, s *domainswap.Swap) error {
	r.mu.Lock()
	r.byID[s.ID] = cloneSwap(s)
	r.mu.Unlock()
	return nil
}

func cloneSwap(s *domainswap.Swap) *domainswap.Swap {
	if s == nil {
		return nil
	}
	copySwap := *s
	return &copySwap
}

var _ domainswap.Repository = (*SwapRepository)(nil)
