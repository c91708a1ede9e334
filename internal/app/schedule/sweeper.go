package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	listingsvc "threadly/internal/app/services/listing"
	domainnotification "threadly/internal/domain/notification"
)

// ExpirySweeper periodically expires listings that sat active past their TTL
// and tells the sellers about it.
type ExpirySweeper struct {
	Listings      *listingsvc.Service
	Notifications domainnotification.Repository
	TTL           time.Duration
	Every         time.Duration
	Logger        *slog.Logger
}

func (s *ExpirySweeper) Run(ctx context.Context) {
	every := s.Every
	if every <= 0 {
		every = time.Hour
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *ExpirySweeper) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-s.TTL)
	expired, err := s.Listings.ExpireStale(ctx, cutoff)
	if err != nil {
		if s.Logger != nil {
			s.Logger.Error("expiry sweep failed", "error", err)
		}
		return
	}
	if len(expired) == 0 {
		return
	}
	if s.Logger != nil {
		s.Logger.Info("expired stale listings", "count", len(expired))
	}
	if s.Notifications == nil {
		return
	}
	for _, l := range expired {
		n := &domainnotification.Notification{
			ID:        uuid.NewString(),
			Recipient: l.Seller,
			Type:      domainnotification.TypeListingExpired,
			Message:   fmt.Sprintf("Your listing %q has expired", l.Title),
			Link:      "/listings/" + string(l.ID),
			CreatedAt: time.Now().UTC(),
		}
		if err := s.Notifications.Create(ctx, n); err != nil && s.Logger != nil {
			s.Logger.Warn("expiry notification failed", "listing", l.ID, "error", err)
		}
	}
}
