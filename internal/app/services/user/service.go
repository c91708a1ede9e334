package user

import (
	"context"
	"log/slog"

	domainlisting "threadly/internal/domain/listing"
	domainnotification "threadly/internal/domain/notification"
	domainuser "threadly/internal/domain/user"
)

// Service covers the profile-adjacent features: public profiles, wishlists
// and the notification inbox.
type Service struct {
	Users         domainuser.Repository
	Listings      domainlisting.Repository
	Notifications domainnotification.Repository
	Logger        *slog.Logger
}

// PublicProfile is a user as other users see them.
type PublicProfile struct {
	ID           domainuser.ID
	Name         string
	Avatar       string
	TrustScore   float64
	SellerRating float64
	TotalReviews int
}

func (s *Service) Profile(ctx context.Context, id domainuser.ID) (*PublicProfile, error) {
	u, err := s.Users.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &PublicProfile{
		ID:           u.ID,
		Name:         u.Name,
		Avatar:       u.Avatar,
		TrustScore:   u.TrustScore,
		SellerRating: u.SellerRating,
		TotalReviews: u.TotalReviews,
	}, nil
}

// ToggleWishlist adds the listing to the caller's wishlist, or removes it if
// already present. Returns true when the listing ended up wishlisted.
func (s *Service) ToggleWishlist(ctx context.Context, callerID domainuser.ID, listingID domainlisting.ID) (bool, error) {
	if _, err := s.Listings.ByID(ctx, listingID); err != nil {
		return false, err
	}
	u, err := s.Users.ByID(ctx, callerID)
	if err != nil {
		return false, err
	}
	add := !u.Wishlisted(string(listingID))
	if err := s.Users.ToggleWishlist(ctx, callerID, string(listingID), add); err != nil {
		return false, err
	}
	return add, nil
}

// Wishlist resolves the caller's wishlisted ids into listings, silently
// skipping ones that were deleted since.
func (s *Service) Wishlist(ctx context.Context, callerID domainuser.ID) ([]*domainlisting.Listing, error) {
	u, err := s.Users.ByID(ctx, callerID)
	if err != nil {
		return nil, err
	}
	result := make([]*domainlisting.Listing, 0, len(u.Wishlist))
	for _, id := range u.Wishlist {
		l, err := s.Listings.ByID(ctx, domainlisting.ID(id))
		if err != nil {
			continue
		}
		result = append(result, l)
	}
	return result, nil
}

func (s *Service) Inbox(ctx context.Context, callerID domainuser.ID) ([]*domainnotification.Notification, error) {
	return s.Notifications.ByRecipient(ctx, string(callerID))
}

func (s *Service) MarkNotificationRead(ctx context.Context, callerID domainuser.ID, notificationID string) error {
	return s.Notifications.MarkRead(ctx, notificationID, string(callerID))
}

func (s *Service) MarkInboxRead(ctx context.Context, callerID domainuser.ID) error {
	return s.Notifications.MarkAllRead(ctx, string(callerID))
}
