package admin

import (
	"context"
	"log/slog"

	domainlisting "threadly/internal/domain/listing"
	domainorder "threadly/internal/domain/order"
	domainswap "threadly/internal/domain/swap"
	domainuser "threadly/internal/domain/user"
)

const recentLimit = 5

// Service covers the moderation surface: platform stats, account
// activation and listing takedowns.
type Service struct {
	Users    domainuser.Repository
	Listings domainlisting.Repository
	Orders   domainorder.Repository
	Swaps    domainswap.Repository
	Logger   *slog.Logger
}

// Dashboard is the platform rollup shown to moderators.
type Dashboard struct {
	TotalUsers      int64
	TotalListings   int64
	ActiveListings  int64
	TotalOrders     int64
	CompletedOrders int64
	TotalSwaps      int64
	CompletedSwaps  int64
	Revenue         float64
	RecentOrders    []*domainorder.Order
	RecentUsers     []*domainuser.User
}

func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	users, err := s.Users.All(ctx)
	if err != nil {
		return nil, err
	}
	_, totalListings, err := s.Listings.Search(ctx, domainlisting.Query{Limit: 1})
	if err != nil {
		return nil, err
	}
	_, activeListings, err := s.Listings.Search(ctx, domainlisting.Query{Status: domainlisting.StatusActive, Limit: 1})
	if err != nil {
		return nil, err
	}
	orderStats, err := s.Orders.Stats(ctx)
	if err != nil {
		return nil, err
	}
	swapStats, err := s.Swaps.Stats(ctx)
	if err != nil {
		return nil, err
	}
	recentOrders, err := s.Orders.Recent(ctx, recentLimit)
	if err != nil {
		return nil, err
	}

	// Users.All is newest first, so the head is the recent signups.
	recentUsers := users
	if len(recentUsers) > recentLimit {
		recentUsers = recentUsers[:recentLimit]
	}
	return &Dashboard{
		TotalUsers:      int64(len(users)),
		TotalListings:   totalListings,
		ActiveListings:  activeListings,
		TotalOrders:     orderStats.Total,
		CompletedOrders: orderStats.Completed,
		TotalSwaps:      swapStats.Total,
		CompletedSwaps:  swapStats.Completed,
		Revenue:         orderStats.Revenue,
		RecentOrders:    recentOrders,
		RecentUsers:     recentUsers,
	}, nil
}

func (s *Service) AllUsers(ctx context.Context) ([]*domainuser.User, error) {
	return s.Users.All(ctx)
}

// SetUserActive flips the account gate. Deactivated users keep their data
// but fail authentication until reactivated.
func (s *Service) SetUserActive(ctx context.Context, id domainuser.ID, active bool) (*domainuser.User, error) {
	if err := s.Users.SetActive(ctx, id, active); err != nil {
		return nil, err
	}
	u, err := s.Users.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("user activation changed", "user_id", u.ID, "active", active)
	}
	return u, nil
}

// AllListings returns the catalog without the status filter buyers see,
// so moderators can inspect drafts, sold and expired items too.
func (s *Service) AllListings(ctx context.Context, q domainlisting.Query) ([]*domainlisting.Listing, int64, error) {
	return s.Listings.Search(ctx, q)
}

// RemoveListing takes a listing off the catalog without destroying the
// record: the status flips to expired so order and swap history stays intact.
func (s *Service) RemoveListing(ctx context.Context, id domainlisting.ID) (*domainlisting.Listing, error) {
	if err := s.Listings.UpdateStatus(ctx, id, domainlisting.StatusExpired); err != nil {
		return nil, err
	}
	l, err := s.Listings.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("listing removed by moderator", "listing_id", l.ID)
	}
	return l, nil
}
