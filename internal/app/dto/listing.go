package dto

import (
	"time"

	domainlisting "threadly/internal/domain/listing"
)

type ListingImage struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id,omitempty"`
}

type Listing struct {
	ID          string         `json:"id"`
	Seller      string         `json:"seller_id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Brand       string         `json:"brand"`
	Category    string         `json:"category"`
	Size        string         `json:"size"`
	Condition   string         `json:"condition"`
	Price       float64        `json:"price"`
	Images      []ListingImage `json:"images"`
	Status      string         `json:"status"`
	AIGenerated bool           `json:"ai_generated"`
	Views       int64          `json:"views"`
	Slug        string         `json:"slug"`
	Tags        []string       `json:"tags,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// ListingPage is a paginated catalog slice.
type ListingPage struct {
	Items []Listing `json:"items"`
	Total int64     `json:"total"`
	Page  int       `json:"page"`
	Limit int       `json:"limit"`
}

func MapListing(l *domainlisting.Listing) Listing {
	if l == nil {
		return Listing{}
	}
	images := make([]ListingImage, 0, len(l.Images))
	for _, img := range l.Images {
		images = append(images, ListingImage{URL: img.URL, PublicID: img.PublicID})
	}
	return Listing{
		ID:          string(l.ID),
		Seller:      l.Seller,
		Title:       l.Title,
		Description: l.Description,
		Brand:       l.Brand,
		Category:    string(l.Category),
		Size:        string(l.Size),
		Condition:   string(l.Condition),
		Price:       l.Price,
		Images:      images,
		Status:      string(l.Status),
		AIGenerated: l.AIGenerated,
		Views:       l.Views,
		Slug:        l.Slug,
		Tags:        l.Tags,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}

func MapListings(listings []*domainlisting.Listing) []Listing {
	items := make([]Listing, 0, len(listings))
	for _, l := range listings {
		items = append(items, MapListing(l))
	}
	return items
}

func NewListingPage(listings []*domainlisting.Listing, total int64, page, limit int) ListingPage {
	return ListingPage{
		Items: MapListings(listings),
		Total: total,
		Page:  page,
		Limit: limit,
	}
}
