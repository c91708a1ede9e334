package memory

import (
	"context"
	"sort"
	"sync"

	domainreview "threadly/internal/domain/review"
)

// ReviewRepository stores reviews in memory.
type ReviewRepository struct {
	mu   sync.RWMutex
	byID map[string]*domainreview.Review
}

func NewReviewRepository() *ReviewRepository {
	return &ReviewRepository{byID: make(map[string]*domainreview.Review)}
}

func (r *ReviewRepository) BySeller(ctx context.Context, sellerID string) ([]*domainreview.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []*domainreview.Review
	for _, rev := range r.byID {
		if rev.Seller == sellerID {
			result = append(result, cloneReview(rev))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *ReviewRepository) ByReviewerAndOrder(ctx context.Context, reviewerID, orderID string) (*domainreview.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rev := range r.byID {
		if rev.Reviewer == reviewerID && rev.OrderID == orderID {
			return cloneReview(rev), nil
		}
	}
	return nil, domainreview.ErrNotFound
}

func (r *ReviewRepository) Create(ctx context.Context, rev *domainreview.Review) error {
	r.mu.Lock()
	r.byID[rev.ID] = cloneReview(rev)
	r.mu.Unlock()
	return nil
}

func (r *ReviewRepository) SellerStats(ctx context.Context, sellerID string) (float64, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var sum, count int
	for _, rev := range r.byID {
		if rev.Seller == sellerID {
			sum += rev.Rating
			count++
		}
	}
	if count == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(count), count, nil
}

func cloneReview(rev *domainreview.Review) *domainreview.Review {
	if rev == nil {
		return nil
	}
	copyReview := *rev
	return &copyReview
}

var _ domainreview.Repository = (*ReviewRepository)(nil)
