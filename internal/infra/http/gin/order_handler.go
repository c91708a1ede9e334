package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"threadly/internal/app/dto"
	ordersvc "threadly/internal/app/services/order"
	domainlisting "threadly/internal/domain/listing"
	domainorder "threadly/internal/domain/order"
)

type OrderHandler struct {
	Service *ordersvc.Service
	Logger  *slog.Logger
}

type createOrderRequest struct {
	ListingID string              `json:"listing_id"`
	Shipping  dto.ShippingAddress `json:"shipping"`
}

type shipOrderRequest struct {
	Note string `json:"note"`
}

func (h OrderHandler) Create(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	result, err := h.Service.Create(c.Request.Context(), ordersvc.CreateParams{
		Buyer:   p.ID,
		Listing: domainlisting.ID(req.ListingID),
		Shipping: domainorder.ShippingAddress{
			Name:    req.Shipping.Name,
			Phone:   req.Shipping.Phone,
			Street:  req.Shipping.Street,
			City:    req.Shipping.City,
			State:   req.Shipping.State,
			Pincode: req.Shipping.Pincode,
		},
	})
	if err != nil {
		h.respondOrderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.CheckoutResponse{
		Order:        dto.MapOrder(result.Order),
		ClientSecret: result.ClientSecret,
	})
}

func (h OrderHandler) ConfirmPayment(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	o, err := h.Service.ConfirmPayment(c.Request.Context(), p.ID, c.Param("id"))
	if err != nil {
		h.respondOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapOrder(o))
}

func (h OrderHandler) Ship(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	// the note body is optional
	var req shipOrderRequest
	_ = c.ShouldBindJSON(&req)
	o, err := h.Service.MarkShipped(c.Request.Context(), p.ID, c.Param("id"), req.Note)
	if err != nil {
		h.respondOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapOrder(o))
}

func (h OrderHandler) ConfirmDelivery(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	o, err := h.Service.ConfirmDelivery(c.Request.Context(), p.ID, c.Param("id"))
	if err != nil {
		h.respondOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapOrder(o))
}

func (h OrderHandler) Cancel(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	o, err := h.Service.Cancel(c.Request.Context(), p.ID, c.Param("id"))
	if err != nil {
		h.respondOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapOrder(o))
}

func (h OrderHandler) Get(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	o, err := h.Service.Get(c.Request.Context(), p.ID, c.Param("id"))
	if err != nil {
		h.respondOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapOrder(o))
}

func (h OrderHandler) MyOrders(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	orders, err := h.Service.MyOrders(c.Request.Context(), p.ID)
	if err != nil {
		h.respondOrderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": dto.MapOrders(orders)})
}

func (h OrderHandler) respondOrderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainorder.ErrNotFound), errors.Is(err, domainlisting.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, ordersvc.ErrNotInvolved),
		errors.Is(err, domainorder.ErrNotBuyer),
		errors.Is(err, domainorder.ErrNotSeller):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, ordersvc.ErrListingUnavailable),
		errors.Is(err, domainlisting.ErrNotActive),
		errors.Is(err, domainorder.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domainorder.ErrBuyerIsSeller):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		if h.Logger != nil {
			h.Logger.Error("order operation failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
