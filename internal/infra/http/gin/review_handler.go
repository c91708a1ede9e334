package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"threadly/internal/app/dto"
	reviewsvc "threadly/internal/app/services/review"
	domainorder "threadly/internal/domain/order"
	domainreview "threadly/internal/domain/review"
)

type ReviewHandler struct {
	Service *reviewsvc.Service
	Logger  *slog.Logger
}

type submitReviewRequest struct {
	OrderID string `json:"order_id"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (h ReviewHandler) Submit(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	var req submitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	r, err := h.Service.Submit(c.Request.Context(), reviewsvc.SubmitParams{
		Reviewer: p.ID,
		OrderID:  req.OrderID,
		Rating:   req.Rating,
		Comment:  req.Comment,
	})
	if err != nil {
		h.respondReviewError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.MapReview(r))
}

func (h ReviewHandler) BySeller(c *gin.Context) {
	reviews, err := h.Service.BySeller(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondReviewError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": dto.MapReviews(reviews)})
}

func (h ReviewHandler) respondReviewError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainorder.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
	case errors.Is(err, domainreview.ErrNotOrderBuyer):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, domainreview.ErrAlreadyReviewed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domainreview.ErrOrderIncomplete),
		errors.Is(err, domainreview.ErrInvalidRating),
		errors.Is(err, domainreview.ErrCommentTooLong):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		if h.Logger != nil {
			h.Logger.Error("review operation failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
