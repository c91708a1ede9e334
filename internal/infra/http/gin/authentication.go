package ginserver

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	gin "github.com/gin-gonic/gin"

	domainuser "threadly/internal/domain/user"
)

const principalContextKey = "threadly.principal"

type principal struct {
	ID    string
	Email string
	Name  string
	Role  string
}

func (p principal) HasRole(role string) bool {
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		return false
	}
	return strings.ToLower(p.Role) == role
}

// TokenVerifier checks an access token and returns the subject user ID.
type TokenVerifier interface {
	VerifyAccessToken(token string) (string, error)
}

// AuthMiddleware resolves the bearer token into a principal. Requests without
// a valid token simply pass through anonymous; the per-route guards decide
// whether that is acceptable.
type AuthMiddleware struct {
	Tokens TokenVerifier
	Users  domainuser.Repository
	Logger *slog.Logger
}

func (m AuthMiddleware) Handle(c *gin.Context) {
	token := extractBearerToken(c.GetHeader("Authorization"))
	if token == "" || m.Tokens == nil || m.Users == nil {
		c.Next()
		return
	}
	userID, err := m.Tokens.VerifyAccessToken(token)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Debug("token verification failed", "error", err)
		}
		c.Next()
		return
	}
	user, err := m.Users.ByID(c.Request.Context(), domainuser.ID(userID))
	if err != nil || !user.Active {
		c.Next()
		return
	}
	setPrincipal(c, principal{
		ID:    string(user.ID),
		Email: user.Email,
		Name:  user.Name,
		Role:  string(user.Role),
	})
	c.Next()
}

func setPrincipal(c *gin.Context, p principal) {
	c.Set(principalContextKey, p)
}

func currentPrincipal(c *gin.Context) (principal, bool) {
	val, exists := c.Get(principalContextKey)
	if !exists {
		return principal{}, false
	}
	p, ok := val.(principal)
	return p, ok
}

func requireAuth(c *gin.Context) (principal, bool) {
	p, ok := currentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "auth required"})
		return principal{}, false
	}
	return p, true
}

func requireRole(c *gin.Context, role string) (principal, bool) {
	p, ok := requireAuth(c)
	if !ok {
		return principal{}, false
	}
	if role != "" && !p.HasRole(role) {
		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
		return principal{}, false
	}
	return p, true
}

func extractBearerToken(header string) string {
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

func parseInt(value string) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return n
}

func parseIntWithDefault(value string, fallback int) int {
	if n := parseInt(value); n > 0 {
		return n
	}
	return fallback
}
