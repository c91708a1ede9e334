package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"threadly/internal/infra/config"
	"threadly/internal/infra/obs"
)

type AuthHTTP interface {
	Register(c *gin.Context)
	Login(c *gin.Context)
	Refresh(c *gin.Context)
	Logout(c *gin.Context)
	Me(c *gin.Context)
}

type ListingHTTP interface {
	Browse(c *gin.Context)
	Get(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

type ChatHTTP interface {
	StartConversation(c *gin.Context)
	MyConversations(c *gin.Context)
	History(c *gin.Context)
}

type OrderHTTP interface {
	Create(c *gin.Context)
	ConfirmPayment(c *gin.Context)
	Ship(c *gin.Context)
	ConfirmDelivery(c *gin.Context)
	Cancel(c *gin.Context)
	Get(c *gin.Context)
	MyOrders(c *gin.Context)
}

type SwapHTTP interface {
	Propose(c *gin.Context)
	Accept(c *gin.Context)
	Reject(c *gin.Context)
	Counter(c *gin.Context)
	AcceptCounter(c *gin.Context)
	Complete(c *gin.Context)
	Cancel(c *gin.Context)
	Get(c *gin.Context)
	MySwaps(c *gin.Context)
}

type ReviewHTTP interface {
	Submit(c *gin.Context)
	BySeller(c *gin.Context)
}

type MeHTTP interface {
	Profile(c *gin.Context)
	MyListings(c *gin.Context)
	Wishlist(c *gin.Context)
	ToggleWishlist(c *gin.Context)
	Notifications(c *gin.Context)
	MarkNotificationRead(c *gin.Context)
	MarkAllNotificationsRead(c *gin.Context)
}

type AdminHTTP interface {
	Dashboard(c *gin.Context)
	Users(c *gin.Context)
	ActivateUser(c *gin.Context)
	DeactivateUser(c *gin.Context)
	Listings(c *gin.Context)
	RemoveListing(c *gin.Context)
}

type Handlers struct {
	Auth           AuthHTTP
	Listing        ListingHTTP
	Chat           ChatHTTP
	Order          OrderHTTP
	Swap           SwapHTTP
	Review         ReviewHTTP
	Me             MeHTTP
	Admin          AdminHTTP
	Realtime       gin.HandlerFunc
	AuthMiddleware gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(corsConfig(cfg.ClientURL)))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	if h.Realtime != nil {
		router.GET("/ws", h.Realtime)
	}

	api := router.Group("/api/v1")
	if h.Auth != nil {
		api.POST("/auth/register", h.Auth.Register)
		api.POST("/auth/login", h.Auth.Login)
		api.POST("/auth/refresh", h.Auth.Refresh)
		api.POST("/auth/logout", h.Auth.Logout)
		api.GET("/auth/me", h.Auth.Me)
	}
	if h.Listing != nil {
		api.GET("/listings", h.Listing.Browse)
		api.GET("/listings/:id", h.Listing.Get)
		api.POST("/listings", h.Listing.Create)
		api.PUT("/listings/:id", h.Listing.Update)
		api.DELETE("/listings/:id", h.Listing.Delete)
	}
	if h.Chat != nil {
		api.POST("/listings/:id/conversation", h.Chat.StartConversation)
		api.GET("/conversations", h.Chat.MyConversations)
		api.GET("/conversations/:id/messages", h.Chat.History)
	}
	if h.Order != nil {
		api.POST("/orders", h.Order.Create)
		api.POST("/orders/:id/confirm-payment", h.Order.ConfirmPayment)
		api.POST("/orders/:id/ship", h.Order.Ship)
		api.POST("/orders/:id/deliver", h.Order.ConfirmDelivery)
		api.POST("/orders/:id/cancel", h.Order.Cancel)
		api.GET("/orders/:id", h.Order.Get)
		api.GET("/orders", h.Order.MyOrders)
	}
	if h.Swap != nil {
		api.POST("/swaps", h.Swap.Propose)
		api.POST("/swaps/:id/accept", h.Swap.Accept)
		api.POST("/swaps/:id/reject", h.Swap.Reject)
		api.POST("/swaps/:id/counter", h.Swap.Counter)
		api.POST("/swaps/:id/accept-counter", h.Swap.AcceptCounter)
		api.POST("/swaps/:id/complete", h.Swap.Complete)
		api.POST("/swaps/:id/cancel", h.Swap.Cancel)
		api.GET("/swaps/:id", h.Swap.Get)
		api.GET("/swaps", h.Swap.MySwaps)
	}
	if h.Review != nil {
		api.POST("/reviews", h.Review.Submit)
		api.GET("/users/:id/reviews", h.Review.BySeller)
	}
	if h.Me != nil {
		api.GET("/users/:id", h.Me.Profile)
		meGroup := api.Group("/me")
		meGroup.GET("/listings", h.Me.MyListings)
		meGroup.GET("/wishlist", h.Me.Wishlist)
		meGroup.POST("/wishlist/:listingID", h.Me.ToggleWishlist)
		meGroup.GET("/notifications", h.Me.Notifications)
		meGroup.POST("/notifications/:id/read", h.Me.MarkNotificationRead)
		meGroup.POST("/notifications/read-all", h.Me.MarkAllNotificationsRead)
	}
	if h.Admin != nil {
		adminGroup := api.Group("/admin")
		adminGroup.GET("/dashboard", h.Admin.Dashboard)
		adminGroup.GET("/users", h.Admin.Users)
		adminGroup.PATCH("/users/:id/activate", h.Admin.ActivateUser)
		adminGroup.PATCH("/users/:id/deactivate", h.Admin.DeactivateUser)
		adminGroup.GET("/listings", h.Admin.Listings)
		adminGroup.PATCH("/listings/:id/remove", h.Admin.RemoveListing)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func corsConfig(clientURL string) cors.Config {
	origins := []string{"*"}
	credentials := false
	if clientURL = strings.TrimSpace(clientURL); clientURL != "" {
		origins = strings.Split(clientURL, ",")
		credentials = true
	}
	return cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", "X-Request-ID"},
		AllowCredentials: credentials,
		MaxAge:           12 * time.Hour,
	}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
