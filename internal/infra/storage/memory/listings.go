package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	domainlisting "threadly/internal/domain/listing"
)

// ListingRepository stores listings in memory. Search applies the same filters
// the Mongo implementation expresses as query documents.
type ListingRepository struct {
	mu   sync.RWMutex
	byID map[domainlisting.ID]*domainlisting.Listing
}

func NewListingRepository() *ListingRepository {
	return &ListingRepository{byID: make(map[domainlisting.ID]*domainlisting.Listing)}
}

func (r *ListingRepository) ByID(ctx context.Context, id domainlisting.ID) (*domainlisting.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if l, ok := r.byID[id]; ok {
		return cloneListing(l), nil
	}
	return nil, domainlisting.ErrNotFound
}

func (r *ListingRepository) Search(ctx context.Context, q domainlisting.Query) ([]*domainlisting.Listing, int64, error) {
	r.mu.RLock()
	var matched []*domainlisting.Listing
	for _, l := range r.byID {
		if matches(l, q) {
			matched = append(matched, cloneListing(l))
		}
	}
	r.mu.RUnlock()

	sortListings(matched, q.Sort)
	total := int64(len(matched))

	page, limit := q.Page, q.Limit
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	start := (page - 1) * limit
	if start >= len(matched) {
		return nil, total, nil
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *ListingRepository) Save(ctx context.Context, l *domainlisting.Listing) error {
	r.mu.Lock()
	r.byID[l.ID] = cloneListing(l)
	r.mu.Unlock()
	return nil
}

func (r *ListingRepository) UpdateStatus(ctx context.Context, id domainlisting.ID, status domainlisting.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.byID[id]
	if !ok {
		return domainlisting.ErrNotFound
	}
	l.Status = status
	l.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *ListingRepository) IncrementViews(ctx context.Context, id domainlisting.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.byID[id]
	if !ok {
		return domainlisting.ErrNotFound
	}
	l.Views++
	return nil
}

func (r *ListingRepository) Delete(ctx context.Context, id domainlisting.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domainlisting.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *ListingRepository) ExpireOlderThan(ctx context.Context, cutoff time.Time) ([]*domainlisting.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var expired []*domainlisting.Listing
	for _, l := range r.byID {
		if l.Status == domainlisting.StatusActive && l.CreatedAt.Before(cutoff) {
			l.Status = domainlisting.StatusExpired
			l.UpdatedAt = time.Now().UTC()
			expired = append(expired, cloneListing(l))
		}
	}
	return expired, nil
}

func matches(l *domainlisting.Listing, q domainlisting.Query) bool {
	if q.Status != "" && l.Status != q.Status {
		return false
	}
	if q.Seller != "" && l.Seller != q.Seller {
		return false
	}
	if q.Category != "" && l.Category != q.Category {
		return false
	}
	if q.Size != "" && l.Size != q.Size {
		return false
	}
	if q.Cond != "" && l.Condition != q.Cond {
		return false
	}
	if q.PriceMin > 0 && l.Price < q.PriceMin {
		return false
	}
	if q.PriceMax > 0 && l.Price > q.PriceMax {
		return false
	}
	if q.Search != "" {
		needle := strings.ToLower(q.Search)
		if !strings.Contains(strings.ToLower(l.Title), needle) &&
			!strings.Contains(strings.ToLower(l.Description), needle) &&
			!strings.Contains(strings.ToLower(l.Brand), needle) {
			return false
		}
	}
	return true
}

func sortListings(listings []*domainlisting.Listing, order string) {
	less := func(i, j int) bool { return listings[i].CreatedAt.After(listings[j].CreatedAt) }
	switch order {
	case "price_asc":
		less = func(i, j int) bool { return listings[i].Price < listings[j].Price }
	case "price_desc":
		less = func(i, j int) bool { return listings[i].Price > listings[j].Price }
	case "popular":
		less = func(i, j int) bool { return listings[i].Views > listings[j].Views }
	}
	sort.SliceStable(listings, less)
}

func cloneListing(l *domainlisting.Listing) *domainlisting.Listing {
	if l == nil {
		return nil
	}
	copyListing := *l
	copyListing.Images = append([]domainlisting.Image(nil), l.Images...)
	copyListing.Tags = append([]string(nil), l.Tags...)
	return &copyListing
}

var _ domainlisting.Repository = (*ListingRepository)(nil)
