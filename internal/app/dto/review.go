package dto

import (
	"time"

	domainreview "threadly/internal/domain/review"
)

type Review struct {
	ID        string    `json:"id"`
	Reviewer  string    `json:"reviewer_id"`
	Seller    string    `json:"seller_id"`
	OrderID   string    `json:"order_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func MapReview(r *domainreview.Review) Review {
	if r == nil {
		return Review{}
	}
	return Review{
		ID:        r.ID,
		Reviewer:  r.Reviewer,
		Seller:    r.Seller,
		OrderID:   r.OrderID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
}

func MapReviews(reviews []*domainreview.Review) []Review {
	items := make([]Review, 0, len(reviews))
	for _, r := range reviews {
		items = append(items, MapReview(r))
	}
	return items
}
