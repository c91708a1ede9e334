package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"threadly/internal/app/dto"
	listingsvc "threadly/internal/app/services/listing"
	usersvc "threadly/internal/app/services/user"
	domainlisting "threadly/internal/domain/listing"
	domainnotification "threadly/internal/domain/notification"
	domainuser "threadly/internal/domain/user"
)

// MeHandler serves the caller's own corner of the API: profile lookups,
// wishlist, notifications and their listings across every status.
type MeHandler struct {
	Users    *usersvc.Service
	Listings *listingsvc.Service
	Logger   *slog.Logger
}

func (h MeHandler) Profile(c *gin.Context) {
	profile, err := h.Users.Profile(c.Request.Context(), domainuser.ID(c.Param("id")))
	if err != nil {
		h.respondMeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapPublicProfile(profile))
}

func (h MeHandler) MyListings(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	limit := parseIntWithDefault(c.Query("limit"), 20)
	page := parseIntWithDefault(c.Query("page"), 1)
	listings, total, err := h.Listings.Browse(c.Request.Context(), domainlisting.Query{
		Seller: p.ID,
		Status: domainlisting.Status(c.Query("status")),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		h.respondMeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewListingPage(listings, total, page, limit))
}

func (h MeHandler) Wishlist(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	listings, err := h.Users.Wishlist(c.Request.Context(), domainuser.ID(p.ID))
	if err != nil {
		h.respondMeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": dto.MapListings(listings)})
}

func (h MeHandler) ToggleWishlist(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	wishlisted, err := h.Users.ToggleWishlist(c.Request.Context(), domainuser.ID(p.ID), domainlisting.ID(c.Param("listingID")))
	if err != nil {
		h.respondMeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"wishlisted": wishlisted})
}

func (h MeHandler) Notifications(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	notifications, err := h.Users.Inbox(c.Request.Context(), domainuser.ID(p.ID))
	if err != nil {
		h.respondMeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": dto.MapNotifications(notifications)})
}

func (h MeHandler) MarkNotificationRead(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	if err := h.Users.MarkNotificationRead(c.Request.Context(), domainuser.ID(p.ID), c.Param("id")); err != nil {
		h.respondMeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h MeHandler) MarkAllNotificationsRead(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	if err := h.Users.MarkInboxRead(c.Request.Context(), domainuser.ID(p.ID)); err != nil {
		h.respondMeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h MeHandler) respondMeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainuser.ErrNotFound),
		errors.Is(err, domainlisting.ErrNotFound),
		errors.Is(err, domainnotification.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		if h.Logger != nil {
			h.Logger.Error("profile operation failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
