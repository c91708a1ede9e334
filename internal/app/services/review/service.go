package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	domainnotification "threadly/internal/domain/notification"
	domainorder "threadly/internal/domain/order"
	domainreview "threadly/internal/domain/review"
	domainuser "threadly/internal/domain/user"
)

type Service struct {
	Reviews       domainreview.Repository
	Orders        domainorder.Repository
	Users         domainuser.Repository
	Notifications domainnotification.Repository
	Logger        *slog.Logger
}

type SubmitParams struct {
	Reviewer string
	OrderID  string
	Rating   int
	Comment  string
}

// Submit lets the buyer of a completed order rate the seller once. The
// seller's cached rating is recomputed from all stored reviews afterwards.
func (s *Service) Submit(ctx context.Context, params SubmitParams) (*domainreview.Review, error) {
	o, err := s.Orders.ByID(ctx, params.OrderID)
	if err != nil {
		return nil, err
	}
	if o.Buyer != params.Reviewer {
		return nil, domainreview.ErrNotOrderBuyer
	}
	if o.Status != domainorder.StatusCompleted {
		return nil, domainreview.ErrOrderIncomplete
	}
	if _, err := s.Reviews.ByReviewerAndOrder(ctx, params.Reviewer, params.OrderID); err == nil {
		return nil, domainreview.ErrAlreadyReviewed
	} else if !errors.Is(err, domainreview.ErrNotFound) {
		return nil, err
	}

	rev, err := domainreview.New(uuid.NewString(), params.Reviewer, o.Seller, params.OrderID, params.Rating, params.Comment, time.Now())
	if err != nil {
		return nil, err
	}
	if err := s.Reviews.Create(ctx, rev); err != nil {
		return nil, err
	}

	s.refreshSellerRating(ctx, o.Seller)
	s.notifySeller(ctx, o.Seller, params.Rating)
	if s.Logger != nil {
		s.Logger.Info("review submitted", "order_id", o.ID, "seller", o.Seller, "rating", params.Rating)
	}
	return rev, nil
}

func (s *Service) BySeller(ctx context.Context, sellerID string) ([]*domainreview.Review, error) {
	return s.Reviews.BySeller(ctx, sellerID)
}

func (s *Service) refreshSellerRating(ctx context.Context, sellerID string) {
	rating, count, err := s.Reviews.SellerStats(ctx, sellerID)
	if err != nil {
		if s.Logger != nil {
			s.Logger.Warn("seller stats not computed", "seller", sellerID, "error", err)
		}
		return
	}
	if err := s.Users.UpdateRating(ctx, domainuser.ID(sellerID), rating, count); err != nil && s.Logger != nil {
		s.Logger.Warn("seller rating not updated", "seller", sellerID, "error", err)
	}
}

func (s *Service) notifySeller(ctx context.Context, sellerID string, rating int) {
	if s.Notifications == nil {
		return
	}
	n := &domainnotification.Notification{
		ID:        uuid.NewString(),
		Recipient: sellerID,
		Type:      domainnotification.TypeNewReview,
		Message:   fmt.Sprintf("You received a %d-star review", rating),
		Link:      "/profile/reviews",
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Notifications.Create(ctx, n); err != nil && s.Logger != nil {
		s.Logger.Warn("notification not stored", "recipient", sellerID, "error", err)
	}
}
