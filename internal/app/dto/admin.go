package dto

import (
	"time"

	adminsvc "threadly/internal/app/services/admin"
	domainuser "threadly/internal/domain/user"
)

// AdminUser is the full account view moderators see, including the
// activation flag UserProfile omits.
type AdminUser struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	Active       bool      `json:"active"`
	TrustScore   float64   `json:"trust_score"`
	SellerRating float64   `json:"seller_rating"`
	TotalReviews int       `json:"total_reviews"`
	CreatedAt    time.Time `json:"created_at"`
}

type AdminDashboard struct {
	TotalUsers      int64       `json:"total_users"`
	TotalListings   int64       `json:"total_listings"`
	ActiveListings  int64       `json:"active_listings"`
	TotalOrders     int64       `json:"total_orders"`
	CompletedOrders int64       `json:"completed_orders"`
	TotalSwaps      int64       `json:"total_swaps"`
	CompletedSwaps  int64       `json:"completed_swaps"`
	Revenue         float64     `json:"revenue"`
	RecentOrders    []Order     `json:"recent_orders"`
	RecentUsers     []AdminUser `json:"recent_users"`
}

func MapAdminUser(user *domainuser.User) AdminUser {
	if user == nil {
		return AdminUser{}
	}
	return AdminUser{
		ID:           string(user.ID),
		Email:        user.Email,
		Name:         user.Name,
		Role:         string(user.Role),
		Active:       user.Active,
		TrustScore:   user.TrustScore,
		SellerRating: user.SellerRating,
		TotalReviews: user.TotalReviews,
		CreatedAt:    user.CreatedAt,
	}
}

func MapAdminUsers(users []*domainuser.User) []AdminUser {
	result := make([]AdminUser, 0, len(users))
	for _, u := range users {
		result = append(result, MapAdminUser(u))
	}
	return result
}

func MapAdminDashboard(d *adminsvc.Dashboard) AdminDashboard {
	if d == nil {
		return AdminDashboard{}
	}
	return AdminDashboard{
		TotalUsers:      d.TotalUsers,
		TotalListings:   d.TotalListings,
		ActiveListings:  d.ActiveListings,
		TotalOrders:     d.TotalOrders,
		CompletedOrders: d.CompletedOrders,
		TotalSwaps:      d.TotalSwaps,
		CompletedSwaps:  d.CompletedSwaps,
		Revenue:         d.Revenue,
		RecentOrders:    MapOrders(d.RecentOrders),
		RecentUsers:     MapAdminUsers(d.RecentUsers),
	}
}
