package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"threadly/internal/app/dto"
	adminsvc "threadly/internal/app/services/admin"
	domainlisting "threadly/internal/domain/listing"
	domainuser "threadly/internal/domain/user"
)

// AdminHandler serves the moderation API. Every route requires the
// admin role.
type AdminHandler struct {
	Service *adminsvc.Service
	Logger  *slog.Logger
}

func (h AdminHandler) Dashboard(c *gin.Context) {
	if _, ok := requireRole(c, "admin"); !ok {
		return
	}
	dashboard, err := h.Service.Dashboard(c.Request.Context())
	if err != nil {
		h.respondAdminError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapAdminDashboard(dashboard))
}

func (h AdminHandler) Users(c *gin.Context) {
	if _, ok := requireRole(c, "admin"); !ok {
		return
	}
	users, err := h.Service.AllUsers(c.Request.Context())
	if err != nil {
		h.respondAdminError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": dto.MapAdminUsers(users)})
}

func (h AdminHandler) ActivateUser(c *gin.Context) {
	h.setUserActive(c, true)
}

func (h AdminHandler) DeactivateUser(c *gin.Context) {
	h.setUserActive(c, false)
}

func (h AdminHandler) setUserActive(c *gin.Context, active bool) {
	if _, ok := requireRole(c, "admin"); !ok {
		return
	}
	user, err := h.Service.SetUserActive(c.Request.Context(), domainuser.ID(c.Param("id")), active)
	if err != nil {
		h.respondAdminError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapAdminUser(user))
}

func (h AdminHandler) Listings(c *gin.Context) {
	if _, ok := requireRole(c, "admin"); !ok {
		return
	}
	limit := parseIntWithDefault(c.Query("limit"), 20)
	page := parseIntWithDefault(c.Query("page"), 1)
	listings, total, err := h.Service.AllListings(c.Request.Context(), domainlisting.Query{
		Status: domainlisting.Status(c.Query("status")),
		Seller: c.Query("seller"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		h.respondAdminError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewListingPage(listings, total, page, limit))
}

func (h AdminHandler) RemoveListing(c *gin.Context) {
	if _, ok := requireRole(c, "admin"); !ok {
		return
	}
	listing, err := h.Service.RemoveListing(c.Request.Context(), domainlisting.ID(c.Param("id")))
	if err != nil {
		h.respondAdminError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapListing(listing))
}

func (h AdminHandler) respondAdminError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainuser.ErrNotFound),
		errors.Is(err, domainlisting.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		if h.Logger != nil {
			h.Logger.Error("admin operation failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
