package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"threadly/internal/app/dto"
	swapsvc "threadly/internal/app/services/swap"
	domainlisting "threadly/internal/domain/listing"
	domainswap "threadly/internal/domain/swap"
)

type SwapHandler struct {
	Service *swapsvc.Service
	Logger  *slog.Logger
}

type proposeSwapRequest struct {
	ProposerListing string `json:"proposer_listing_id"`
	ReceiverListing string `json:"receiver_listing_id"`
	Message         string `json:"message"`
}

type counterSwapRequest struct {
	CounterListing string `json:"counter_listing_id"`
	Message        string `json:"message"`
}

func (h SwapHandler) Propose(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	var req proposeSwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	sw, err := h.Service.Propose(c.Request.Context(), swapsvc.ProposeParams{
		Proposer:        p.ID,
		ProposerListing: domainlisting.ID(req.ProposerListing),
		ReceiverListing: domainlisting.ID(req.ReceiverListing),
		Message:         req.Message,
	})
	if err != nil {
		h.respondSwapError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.MapSwap(sw))
}

func (h SwapHandler) Accept(c *gin.Context) {
	h.respond(c, func(p principal) (*domainswap.Swap, error) {
		return h.Service.Accept(c.Request.Context(), p.ID, c.Param("id"))
	})
}

func (h SwapHandler) Reject(c *gin.Context) {
	h.respond(c, func(p principal) (*domainswap.Swap, error) {
		return h.Service.Reject(c.Request.Context(), p.ID, c.Param("id"))
	})
}

func (h SwapHandler) Counter(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	var req counterSwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	sw, err := h.Service.Counter(c.Request.Context(), swapsvc.CounterParams{
		Caller:         p.ID,
		SwapID:         c.Param("id"),
		CounterListing: domainlisting.ID(req.CounterListing),
		Message:        req.Message,
	})
	if err != nil {
		h.respondSwapError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapSwap(sw))
}

func (h SwapHandler) AcceptCounter(c *gin.Context) {
	h.respond(c, func(p principal) (*domainswap.Swap, error) {
		return h.Service.AcceptCounter(c.Request.Context(), p.ID, c.Param("id"))
	})
}

func (h SwapHandler) Complete(c *gin.Context) {
	h.respond(c, func(p principal) (*domainswap.Swap, error) {
		return h.Service.Complete(c.Request.Context(), p.ID, c.Param("id"))
	})
}

func (h SwapHandler) Cancel(c *gin.Context) {
	h.respond(c, func(p principal) (*domainswap.Swap, error) {
		return h.Service.Cancel(c.Request.Context(), p.ID, c.Param("id"))
	})
}

func (h SwapHandler) Get(c *gin.Context) {
	h.respond(c, func(p principal) (*domainswap.Swap, error) {
		return h.Service.Get(c.Request.Context(), p.ID, c.Param("id"))
	})
}

func (h SwapHandler) MySwaps(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	swaps, err := h.Service.MySwaps(c.Request.Context(), p.ID)
	if err != nil {
		h.respondSwapError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": dto.MapSwaps(swaps)})
}

func (h SwapHandler) respond(c *gin.Context, fn func(p principal) (*domainswap.Swap, error)) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	sw, err := fn(p)
	if err != nil {
		h.respondSwapError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapSwap(sw))
}

func (h SwapHandler) respondSwapError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainswap.ErrNotFound), errors.Is(err, domainlisting.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, domainswap.ErrNotProposer),
		errors.Is(err, domainswap.ErrNotReceiver),
		errors.Is(err, domainswap.ErrNotInvolved),
		errors.Is(err, swapsvc.ErrNotListingOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, domainswap.ErrInvalidState),
		errors.Is(err, domainswap.ErrDuplicateSwap),
		errors.Is(err, domainlisting.ErrNotActive):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domainswap.ErrSelfSwap),
		errors.Is(err, domainswap.ErrCounterRequired),
		errors.Is(err, domainswap.ErrListingsRequired),
		errors.Is(err, domainswap.ErrMessageTooLong):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		if h.Logger != nil {
			h.Logger.Error("swap operation failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
