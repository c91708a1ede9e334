package review

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound        = errors.New("review: not found")
	ErrInvalidRating   = errors.New("review: rating must be between 1 and 5")
	ErrCommentTooLong  = errors.New("review: comment exceeds 500 characters")
	ErrAlreadyReviewed = errors.New("review: order already reviewed")
	ErrOrderIncomplete = errors.New("review: only completed orders can be reviewed")
	ErrNotOrderBuyer   = errors.New("review: only the buyer can leave a review")
)

type Review struct {
	ID        string
	Reviewer  string
	Seller    string
	OrderID   string
	Rating    int
	Comment   string
	CreatedAt time.Time
}

type Repository interface {
	BySeller(ctx context.Context, sellerID string) ([]*Review, error)
	ByReviewerAndOrder(ctx context.Context, reviewerID, orderID string) (*Review, error)
	Create(ctx context.Context, r *Review) error
	// SellerStats returns the average rating and review count for a seller.
	SellerStats(ctx context.Context, sellerID string) (float64, int, error)
}

func New(id, reviewer, seller, orderID string, rating int, comment string, now time.Time) (*Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}
	comment = strings.TrimSpace(comment)
	if len(comment) > 500 {
		return nil, ErrCommentTooLong
	}
	return &Review{
		ID:        id,
		Reviewer:  reviewer,
		Seller:    seller,
		OrderID:   orderID,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: now.UTC(),
	}, nil
}
