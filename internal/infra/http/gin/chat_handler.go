package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"threadly/internal/app/dto"
	chatsvc "threadly/internal/app/services/chat"
	domainchat "threadly/internal/domain/chat"
	domainlisting "threadly/internal/domain/listing"
)

type ChatHandler struct {
	Service *chatsvc.Service
	Logger  *slog.Logger
}

// StartConversation returns the thread between the caller and the listing's
// seller, creating it on first contact.
func (h ChatHandler) StartConversation(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	conv, err := h.Service.GetOrCreate(c.Request.Context(), p.ID, domainlisting.ID(c.Param("id")))
	if err != nil {
		h.respondChatError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapConversation(conv))
}

func (h ChatHandler) MyConversations(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	convs, err := h.Service.MyConversations(c.Request.Context(), p.ID)
	if err != nil {
		h.respondChatError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": dto.MapConversations(convs)})
}

// History pages a conversation oldest-first and marks the page read for the
// caller.
func (h ChatHandler) History(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	page := parseIntWithDefault(c.Query("page"), 1)
	limit := parseIntWithDefault(c.Query("limit"), 50)
	msgs, err := h.Service.History(c.Request.Context(), p.ID, c.Param("id"), page, limit)
	if err != nil {
		h.respondChatError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": dto.MapChatMessages(msgs)})
}

func (h ChatHandler) respondChatError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainchat.ErrNotFound), errors.Is(err, domainlisting.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, domainchat.ErrNotParticipant):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, domainchat.ErrSelfConversation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		if h.Logger != nil {
			h.Logger.Error("chat operation failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
