package listing

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	appoutbox "threadly/internal/app/outbox"
	"threadly/internal/app/policies"
	domainlisting "threadly/internal/domain/listing"
	"threadly/internal/domain/shared/events"
)

var (
	ErrNotOwner = errors.New("listing: only the seller may modify this listing")
)

type Service struct {
	Listings  domainlisting.Repository
	Describer policies.DescriberPort
	Outbox    appoutbox.Outbox
	Logger    *slog.Logger
}

type CreateParams struct {
	Seller         string
	Title          string
	Description    string
	Brand          string
	Category       domainlisting.Category
	Size           domainlisting.Size
	Condition      domainlisting.Condition
	Price          float64
	Images         []domainlisting.Image
	Tags           []string
	AutoDescribe   bool
	PublishAtDraft bool
}

// Create validates and stores a new listing. With AutoDescribe set and a
// describer configured, a missing description is generated from the title and
// photos; describer failures fall back to whatever the seller typed.
func (s *Service) Create(ctx context.Context, params CreateParams) (*domainlisting.Listing, error) {
	if s.Listings == nil {
		return nil, errors.New("listing: repository required")
	}

	description := params.Description
	tags := params.Tags
	aiGenerated := false
	if params.AutoDescribe && s.Describer != nil {
		urls := make([]string, 0, len(params.Images))
		for _, img := range params.Images {
			urls = append(urls, img.URL)
		}
		generated, err := s.Describer.Describe(ctx, params.Title, string(params.Category), string(params.Condition), urls)
		if err != nil {
			if s.Logger != nil {
				s.Logger.Warn("description generation failed", "title", params.Title, "error", err)
			}
		} else {
			if generated.Description != "" {
				description = generated.Description
				aiGenerated = true
			}
			if len(generated.Tags) > 0 {
				tags = generated.Tags
			}
		}
	}

	status := domainlisting.StatusActive
	if params.PublishAtDraft {
		status = domainlisting.StatusDraft
	}
	now := time.Now()
	l, err := domainlisting.New(domainlisting.CreateParams{
		ID:          domainlisting.ID(uuid.NewString()),
		Seller:      params.Seller,
		Title:       params.Title,
		Description: description,
		Brand:       params.Brand,
		Category:    params.Category,
		Size:        params.Size,
		Condition:   params.Condition,
		Price:       params.Price,
		Images:      params.Images,
		Status:      status,
		AIGenerated: aiGenerated,
		Tags:        tags,
		CreatedAt:   now,
	})
	if err != nil {
		return nil, err
	}
	if err := s.Listings.Save(ctx, l); err != nil {
		return nil, err
	}

	if l.Status == domainlisting.StatusActive {
		if err := appoutbox.Record(ctx, s.Outbox, events.NewListingEvent("listing.published", string(l.ID), l.Seller, string(l.Status), now)); err != nil && s.Logger != nil {
			s.Logger.Warn("listing event not recorded", "listing_id", l.ID, "error", err)
		}
	}
	if s.Logger != nil {
		s.Logger.Info("listing created", "listing_id", l.ID, "seller", l.Seller, "status", l.Status)
	}
	return l, nil
}

type UpdateParams struct {
	Title       *string
	Description *string
	Brand       *string
	Price       *float64
	Size        *domainlisting.Size
	Condition   *domainlisting.Condition
	Tags        []string
	Images      []domainlisting.Image
}

// Update applies partial edits. Sold and swapped listings are frozen.
func (s *Service) Update(ctx context.Context, callerID string, id domainlisting.ID, params UpdateParams) (*domainlisting.Listing, error) {
	l, err := s.Listings.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.Seller != callerID {
		return nil, ErrNotOwner
	}
	if l.Status == domainlisting.StatusSold || l.Status == domainlisting.StatusSwapped {
		return nil, domainlisting.ErrNotActive
	}

	if params.Title != nil {
		title := strings.TrimSpace(*params.Title)
		if title == "" {
			return nil, domainlisting.ErrTitleRequired
		}
		if len(title) > 100 {
			return nil, domainlisting.ErrTitleTooLong
		}
		l.Title = title
	}
	if params.Description != nil {
		description := strings.TrimSpace(*params.Description)
		if description == "" {
			return nil, domainlisting.ErrDescriptionRequired
		}
		if len(description) > 1000 {
			return nil, domainlisting.ErrDescriptionTooLong
		}
		l.Description = description
		l.AIGenerated = false
	}
	if params.Brand != nil {
		l.Brand = *params.Brand
	}
	if params.Price != nil {
		if *params.Price < 0 {
			return nil, domainlisting.ErrNegativePrice
		}
		l.Price = *params.Price
	}
	if params.Size != nil {
		l.Size = *params.Size
	}
	if params.Condition != nil {
		l.Condition = *params.Condition
	}
	if params.Tags != nil {
		l.Tags = params.Tags
	}
	if params.Images != nil {
		l.Images = params.Images
	}
	l.UpdatedAt = time.Now().UTC()
	if err := s.Listings.Save(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *Service) Delete(ctx context.Context, callerID string, id domainlisting.ID, isAdmin bool) error {
	l, err := s.Listings.ByID(ctx, id)
	if err != nil {
		return err
	}
	if l.Seller != callerID && !isAdmin {
		return ErrNotOwner
	}
	return s.Listings.Delete(ctx, id)
}

// Get returns one listing and bumps its view counter. The bump is
// best-effort; a miscounted view never fails the read.
func (s *Service) Get(ctx context.Context, id domainlisting.ID) (*domainlisting.Listing, error) {
	l, err := s.Listings.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.Listings.IncrementViews(ctx, id); err != nil && s.Logger != nil {
		s.Logger.Debug("view counter not bumped", "listing_id", id, "error", err)
	}
	return l, nil
}

// Browse searches the public catalog. Only active listings are visible unless
// the query pins a status explicitly (seller dashboards do).
func (s *Service) Browse(ctx context.Context, q domainlisting.Query) ([]*domainlisting.Listing, int64, error) {
	if q.Status == "" && q.Seller == "" {
		q.Status = domainlisting.StatusActive
	}
	return s.Listings.Search(ctx, q)
}

// ExpireStale sweeps active listings older than the cutoff and returns what
// was expired so callers can notify sellers.
func (s *Service) ExpireStale(ctx context.Context, cutoff time.Time) ([]*domainlisting.Listing, error) {
	expired, err := s.Listings.ExpireOlderThan(ctx, cutoff)
	if err != nil {
		return nil, err
	}
	for _, l := range expired {
		if err := appoutbox.Record(ctx, s.Outbox, events.NewListingEvent("listing.expired", string(l.ID), l.Seller, string(domainlisting.StatusExpired), time.Now())); err != nil && s.Logger != nil {
			s.Logger.Warn("listing event not recorded", "listing_id", l.ID, "error", err)
		}
	}
	if len(expired) > 0 && s.Logger != nil {
		s.Logger.Info("stale listings expired", "count", len(expired))
	}
	return expired, nil
}
