package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	gin "github.com/gin-gonic/gin"

	"threadly/internal/app/dto"
	listingsvc "threadly/internal/app/services/listing"
	domainlisting "threadly/internal/domain/listing"
)

type ListingHandler struct {
	Service *listingsvc.Service
	Logger  *slog.Logger
}

type listingImageRequest struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
}

type createListingRequest struct {
	Title          string                `json:"title"`
	Description    string                `json:"description"`
	Brand          string                `json:"brand"`
	Category       string                `json:"category"`
	Size           string                `json:"size"`
	Condition      string                `json:"condition"`
	Price          float64               `json:"price"`
	Images         []listingImageRequest `json:"images"`
	Tags           []string              `json:"tags"`
	AutoDescribe   bool                  `json:"auto_describe"`
	Draft          bool                  `json:"draft"`
}

type updateListingRequest struct {
	Title       *string               `json:"title"`
	Description *string               `json:"description"`
	Brand       *string               `json:"brand"`
	Price       *float64              `json:"price"`
	Size        *string               `json:"size"`
	Condition   *string               `json:"condition"`
	Tags        []string              `json:"tags"`
	Images      []listingImageRequest `json:"images"`
}

func (h ListingHandler) Browse(c *gin.Context) {
	limit := parseIntWithDefault(c.Query("limit"), 20)
	page := parseIntWithDefault(c.Query("page"), 1)

	q := domainlisting.Query{
		Search:   strings.TrimSpace(c.Query("search")),
		Category: domainlisting.Category(c.Query("category")),
		Size:     domainlisting.Size(c.Query("size")),
		Cond:     domainlisting.Condition(c.Query("condition")),
		Seller:   strings.TrimSpace(c.Query("seller")),
		Status:   domainlisting.Status(c.Query("status")),
		Sort:     strings.TrimSpace(c.Query("sort")),
		Page:     page,
		Limit:    limit,
	}
	if v, err := strconv.ParseFloat(c.Query("price_min"), 64); err == nil {
		q.PriceMin = v
	}
	if v, err := strconv.ParseFloat(c.Query("price_max"), 64); err == nil {
		q.PriceMax = v
	}

	listings, total, err := h.Service.Browse(c.Request.Context(), q)
	if err != nil {
		h.respondListingError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewListingPage(listings, total, page, limit))
}

func (h ListingHandler) Get(c *gin.Context) {
	l, err := h.Service.Get(c.Request.Context(), domainlisting.ID(c.Param("id")))
	if err != nil {
		h.respondListingError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapListing(l))
}

func (h ListingHandler) Create(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	var req createListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	l, err := h.Service.Create(c.Request.Context(), listingsvc.CreateParams{
		Seller:         p.ID,
		Title:          req.Title,
		Description:    req.Description,
		Brand:          req.Brand,
		Category:       domainlisting.Category(req.Category),
		Size:           domainlisting.Size(req.Size),
		Condition:      domainlisting.Condition(req.Condition),
		Price:          req.Price,
		Images:         mapImageRequests(req.Images),
		Tags:           req.Tags,
		AutoDescribe:   req.AutoDescribe,
		PublishAtDraft: req.Draft,
	})
	if err != nil {
		h.respondListingError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.MapListing(l))
}

func (h ListingHandler) Update(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	var req updateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	params := listingsvc.UpdateParams{
		Title:       req.Title,
		Description: req.Description,
		Brand:       req.Brand,
		Price:       req.Price,
		Tags:        req.Tags,
		Images:      mapImageRequests(req.Images),
	}
	if req.Size != nil {
		size := domainlisting.Size(*req.Size)
		params.Size = &size
	}
	if req.Condition != nil {
		cond := domainlisting.Condition(*req.Condition)
		params.Condition = &cond
	}
	l, err := h.Service.Update(c.Request.Context(), p.ID, domainlisting.ID(c.Param("id")), params)
	if err != nil {
		h.respondListingError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapListing(l))
}

func (h ListingHandler) Delete(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	err := h.Service.Delete(c.Request.Context(), p.ID, domainlisting.ID(c.Param("id")), p.HasRole("admin"))
	if err != nil {
		h.respondListingError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func mapImageRequests(images []listingImageRequest) []domainlisting.Image {
	if len(images) == 0 {
		return nil
	}
	mapped := make([]domainlisting.Image, 0, len(images))
	for _, img := range images {
		mapped = append(mapped, domainlisting.Image{URL: img.URL, PublicID: img.PublicID})
	}
	return mapped
}

func (h ListingHandler) respondListingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainlisting.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "listing not found"})
	case errors.Is(err, listingsvc.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, domainlisting.ErrNotActive):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domainlisting.ErrTitleRequired),
		errors.Is(err, domainlisting.ErrTitleTooLong),
		errors.Is(err, domainlisting.ErrDescriptionRequired),
		errors.Is(err, domainlisting.ErrDescriptionTooLong),
		errors.Is(err, domainlisting.ErrInvalidCategory),
		errors.Is(err, domainlisting.ErrInvalidSize),
		errors.Is(err, domainlisting.ErrInvalidCondition),
		errors.Is(err, domainlisting.ErrInvalidStatus),
		errors.Is(err, domainlisting.ErrNegativePrice):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		if h.Logger != nil {
			h.Logger.Error("listing operation failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
