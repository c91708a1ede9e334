package listing

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	ErrTitleRequired       = errors.New("listing: title is required")
	ErrTitleTooLong        = errors.New("listing: title exceeds 100 characters")
	ErrDescriptionRequired = errors.New("listing: description is required")
	ErrDescriptionTooLong  = errors.New("listing: description exceeds 1000 characters")
	ErrInvalidCategory     = errors.New("listing: invalid category")
	ErrInvalidSize         = errors.New("listing: invalid size")
	ErrInvalidCondition    = errors.New("listing: invalid condition")
	ErrInvalidStatus       = errors.New("listing: invalid status")
	ErrNegativePrice       = errors.New("listing: price must not be negative")
	ErrSellerRequired      = errors.New("listing: seller is required")
	ErrNotFound            = errors.New("listing: not found")
	ErrNotActive           = errors.New("listing: not active")
)

type ID string

type Category string

const (
	CategoryTops        Category = "tops"
	CategoryBottoms     Category = "bottoms"
	CategoryDresses     Category = "dresses"
	CategoryOuterwear   Category = "outerwear"
	CategoryShoes       Category = "shoes"
	CategoryAccessories Category = "accessories"
	CategoryEthnic      Category = "ethnic"
	CategoryActivewear  Category = "activewear"
	CategoryOther       Category = "other"
)

type Size string

const (
	SizeXS       Size = "XS"
	SizeS        Size = "S"
	SizeM        Size = "M"
	SizeL        Size = "L"
	SizeXL       Size = "XL"
	SizeXXL      Size = "XXL"
	SizeFreeSize Size = "Free Size"
	SizeCustom   Size = "Custom"
)

type Condition string

const (
	ConditionNewWithTags Condition = "new_with_tags"
	ConditionLikeNew     Condition = "like_new"
	ConditionGood        Condition = "good"
	ConditionFair        Condition = "fair"
	ConditionWorn        Condition = "worn"
)

type Status string

const (
	StatusDraft   Status = "draft"
	StatusActive  Status = "active"
	StatusSold    Status = "sold"
	StatusSwapped Status = "swapped"
	StatusExpired Status = "expired"
)

type Image struct {
	URL      string
	PublicID string
}

type Listing struct {
	ID          ID
	Seller      string
	Title       string
	Description string
	Brand       string
	Category    Category
	Size        Size
	Condition   Condition
	Price       float64
	Images      []Image
	Status      Status
	AIGenerated bool
	Views       int64
	Slug        string
	Tags        []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Query describes catalog browse filters. Zero values mean "no filter".
type Query struct {
	Search   string
	Category Category
	Size     Size
	Cond     Condition
	PriceMin float64
	PriceMax float64
	Seller   string
	Status   Status
	Sort     string
	Page     int
	Limit    int
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Listing, error)
	Search(ctx context.Context, q Query) ([]*Listing, int64, error)
	Save(ctx context.Context, l *Listing) error
	UpdateStatus(ctx context.Context, id ID, status Status) error
	IncrementViews(ctx context.Context, id ID) error
	Delete(ctx context.Context, id ID) error
	ExpireOlderThan(ctx context.Context, cutoff time.Time) ([]*Listing, error)
}

type CreateParams struct {
	ID          ID
	Seller      string
	Title       string
	Description string
	Brand       string
	Category    Category
	Size        Size
	Condition   Condition
	Price       float64
	Images      []Image
	Status      Status
	Tags        []string
	AIGenerated bool
	CreatedAt   time.Time
}

func New(params CreateParams) (*Listing, error) {
	if strings.TrimSpace(params.Seller) == "" {
		return nil, ErrSellerRequired
	}
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if len(title) > 100 {
		return nil, ErrTitleTooLong
	}
	description := strings.TrimSpace(params.Description)
	if description == "" {
		return nil, ErrDescriptionRequired
	}
	if len(description) > 1000 {
		return nil, ErrDescriptionTooLong
	}
	if !validCategory(params.Category) {
		return nil, ErrInvalidCategory
	}
	if !validSize(params.Size) {
		return nil, ErrInvalidSize
	}
	if !validCondition(params.Condition) {
		return nil, ErrInvalidCondition
	}
	if params.Price < 0 {
		return nil, ErrNegativePrice
	}
	status := params.Status
	if status == "" {
		status = StatusDraft
	}
	if status != StatusDraft && status != StatusActive {
		return nil, ErrInvalidStatus
	}
	brand := strings.TrimSpace(params.Brand)
	if brand == "" {
		brand = "Unbranded"
	}

	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	return &Listing{
		ID:          params.ID,
		Seller:      params.Seller,
		Title:       title,
		Description: description,
		Brand:       brand,
		Category:    params.Category,
		Size:        params.Size,
		Condition:   params.Condition,
		Price:       params.Price,
		Images:      params.Images,
		Status:      status,
		AIGenerated: params.AIGenerated,
		Slug:        Slugify(title, now),
		Tags:        params.Tags,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (l *Listing) IsActive() bool {
	return l.Status == StatusActive
}

// MarkSold transitions an active listing to sold after a completed purchase.
func (l *Listing) MarkSold(now time.Time) error {
	if l.Status != StatusActive {
		return ErrNotActive
	}
	l.Status = StatusSold
	l.UpdatedAt = now.UTC()
	return nil
}

// MarkSwapped transitions an active listing to swapped after an accepted swap.
func (l *Listing) MarkSwapped(now time.Time) error {
	if l.Status != StatusActive {
		return ErrNotActive
	}
	l.Status = StatusSwapped
	l.UpdatedAt = now.UTC()
	return nil
}

var slugUnsafe = regexp.MustCompile(`[\s\W-]+`)

// Slugify produces a URL slug from the title with a timestamp suffix so two
// listings with the same title never collide.
func Slugify(title string, now time.Time) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = slugUnsafe.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	return fmt.Sprintf("%s-%d", slug, now.UnixMilli())
}

func validCategory(c Category) bool {
	switch c {
	case CategoryTops, CategoryBottoms, CategoryDresses, CategoryOuterwear,
		CategoryShoes, CategoryAccessories, CategoryEthnic, CategoryActivewear, CategoryOther:
		return true
	}
	return false
}

func validSize(s Size) bool {
	switch s {
	case SizeXS, SizeS, SizeM, SizeL, SizeXL, SizeXXL, SizeFreeSize, SizeCustom:
		return true
	}
	return false
}

func validCondition(c Condition) bool {
	switch c {
	case ConditionNewWithTags, ConditionLikeNew, ConditionGood, ConditionFair, ConditionWorn:
		return true
	}
	return false
}
