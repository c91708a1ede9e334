package dto

import (
	"time"

	usersvc "threadly/internal/app/services/user"
	domainuser "threadly/internal/domain/user"
)

type UserProfile struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	Avatar       string    `json:"avatar,omitempty"`
	TrustScore   float64   `json:"trust_score"`
	SellerRating float64   `json:"seller_rating"`
	TotalReviews int       `json:"total_reviews"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PublicProfile is what other users see: no email, no wishlist.
type PublicProfile struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Avatar       string  `json:"avatar,omitempty"`
	TrustScore   float64 `json:"trust_score"`
	SellerRating float64 `json:"seller_rating"`
	TotalReviews int     `json:"total_reviews"`
}

type AuthResponse struct {
	User        UserProfile `json:"user"`
	AccessToken string      `json:"access_token"`
}

func MapUserProfile(user *domainuser.User) UserProfile {
	if user == nil {
		return UserProfile{}
	}
	return UserProfile{
		ID:           string(user.ID),
		Email:        user.Email,
		Name:         user.Name,
		Role:         string(user.Role),
		Avatar:       user.Avatar,
		TrustScore:   user.TrustScore,
		SellerRating: user.SellerRating,
		TotalReviews: user.TotalReviews,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
}

func MapPublicProfile(p *usersvc.PublicProfile) PublicProfile {
	if p == nil {
		return PublicProfile{}
	}
	return PublicProfile{
		ID:           string(p.ID),
		Name:         p.Name,
		Avatar:       p.Avatar,
		TrustScore:   p.TrustScore,
		SellerRating: p.SellerRating,
		TotalReviews: p.TotalReviews,
	}
}

func NewAuthResponse(user *domainuser.User, accessToken string) AuthResponse {
	return AuthResponse{
		User:        MapUserProfile(user),
		AccessToken: accessToken,
	}
}
