package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appoutbox "threadly/internal/app/outbox"
	"threadly/internal/app/policies"
	"threadly/internal/app/schedule"
	adminsvc "threadly/internal/app/services/admin"
	authsvc "threadly/internal/app/services/auth"
	chatsvc "threadly/internal/app/services/chat"
	listingsvc "threadly/internal/app/services/listing"
	ordersvc "threadly/internal/app/services/order"
	reviewsvc "threadly/internal/app/services/review"
	swapsvc "threadly/internal/app/services/swap"
	usersvc "threadly/internal/app/services/user"
	domainchat "threadly/internal/domain/chat"
	domainlisting "threadly/internal/domain/listing"
	domainnotification "threadly/internal/domain/notification"
	domainorder "threadly/internal/domain/order"
	domainreview "threadly/internal/domain/review"
	domainswap "threadly/internal/domain/swap"
	domainuser "threadly/internal/domain/user"
	"threadly/internal/infra/ai"
	"threadly/internal/infra/broker/kafka"
	"threadly/internal/infra/config"
	mongodb "threadly/internal/infra/db/mongo"
	ginserver "threadly/internal/infra/http/gin"
	"threadly/internal/infra/obs"
	infraoutbox "threadly/internal/infra/outbox"
	"threadly/internal/infra/payments"
	"threadly/internal/infra/security"
	"threadly/internal/infra/storage/memory"
	"threadly/internal/realtime"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loaded := config.LoadDotEnv()
	cfg, err := config.Load()
	if err != nil {
		logger := obs.NewLogger("dev")
		logger.Error("configuration invalid", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)
	if len(loaded) > 0 {
		logger.Info("env files loaded", "files", loaded)
	}

	tokens := security.NewTokenManager(cfg.JWTSecret, cfg.JWTRefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	stores, err := buildStores(cfg, logger)
	if err != nil {
		logger.Error("storage init failed", "error", err)
		os.Exit(1)
	}
	defer stores.close()

	paymentsPort := buildPayments(cfg, logger)

	authService := &authsvc.Service{
		Users:     stores.users,
		Passwords: security.BcryptHasher{},
		Tokens:    tokens,
		Logger:    logger,
	}
	listingService := &listingsvc.Service{
		Listings:  stores.listings,
		Describer: buildDescriber(cfg, logger),
		Outbox:    stores.box,
		Logger:    logger,
	}
	chatService := &chatsvc.Service{
		Conversations: stores.conversations,
		Messages:      stores.messages,
		Listings:      stores.listings,
		Logger:        logger,
	}
	orderService := &ordersvc.Service{
		Orders:        stores.orders,
		Listings:      stores.listings,
		Notifications: stores.notifications,
		Payments:      paymentsPort,
		Outbox:        stores.box,
		Logger:        logger,
	}
	swapService := &swapsvc.Service{
		Swaps:         stores.swaps,
		Listings:      stores.listings,
		Notifications: stores.notifications,
		Outbox:        stores.box,
		Logger:        logger,
	}
	reviewService := &reviewsvc.Service{
		Reviews:       stores.reviews,
		Orders:        stores.orders,
		Users:         stores.users,
		Notifications: stores.notifications,
		Logger:        logger,
	}
	userService := &usersvc.Service{
		Users:         stores.users,
		Listings:      stores.listings,
		Notifications: stores.notifications,
		Logger:        logger,
	}
	adminService := &adminsvc.Service{
		Users:    stores.users,
		Listings: stores.listings,
		Orders:   stores.orders,
		Swaps:    stores.swaps,
		Logger:   logger,
	}

	presence := realtime.NewPresence()
	rooms := realtime.NewRooms()
	pipeline := realtime.NewPipeline(
		stores.conversations,
		stores.messages,
		usersvc.IdentityResolver{Users: stores.users},
		rooms,
		presence,
		logger,
	)
	gateway := realtime.NewGateway(tokens, pipeline, presence, rooms, logger)

	handlers := ginserver.Handlers{
		Auth: ginserver.AuthHandler{
			Service:       authService,
			RefreshTTL:    cfg.RefreshTokenTTL,
			SecureCookies: cfg.Env != "dev",
			Logger:        logger,
		},
		Listing:  ginserver.ListingHandler{Service: listingService, Logger: logger},
		Chat:     ginserver.ChatHandler{Service: chatService, Logger: logger},
		Order:    ginserver.OrderHandler{Service: orderService, Logger: logger},
		Swap:     ginserver.SwapHandler{Service: swapService, Logger: logger},
		Review:   ginserver.ReviewHandler{Service: reviewService, Logger: logger},
		Me:       ginserver.MeHandler{Users: userService, Listings: listingService, Logger: logger},
		Admin:    ginserver.AdminHandler{Service: adminService, Logger: logger},
		Realtime: gateway.Handle,
		AuthMiddleware: ginserver.AuthMiddleware{
			Tokens: tokens,
			Users:  stores.users,
			Logger: logger,
		}.Handle,
	}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{Ready: stores.ready}, handlers)

	sweeper := &schedule.ExpirySweeper{
		Listings:      listingService,
		Notifications: stores.notifications,
		TTL:           cfg.ListingTTL,
		Every:         cfg.ExpirySweepEvery,
		Logger:        logger,
	}
	go sweeper.Run(ctx)

	if stores.outboxStore != nil && len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			logger.Error("kafka producer init failed", "error", err)
			os.Exit(1)
		}
		defer producer.Close()
		worker := &infraoutbox.Worker{
			Store:       stores.outboxStore,
			Producer:    producer,
			Logger:      logger,
			Interval:    cfg.OutboxPollInterval,
			TopicPrefix: cfg.KafkaTopicPrefix,
			Backoff:     cfg.RetryBackoff,
		}
		go func() {
			if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		}()
	} else if len(cfg.KafkaBrokers) > 0 {
		logger.Warn("kafka brokers configured but no durable outbox store, events stay local")
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type stores struct {
	users         domainuser.Repository
	listings      domainlisting.Repository
	orders        domainorder.Repository
	swaps         domainswap.Repository
	reviews       domainreview.Repository
	notifications domainnotification.Repository
	conversations domainchat.ConversationStore
	messages      domainchat.MessageStore
	box           appoutbox.Outbox
	outboxStore   *infraoutbox.Store
	ready         func() error
	close         func()
}

// buildStores wires Mongo-backed repositories when MONGO_URI is set and falls
// back to the in-memory stores otherwise.
func buildStores(cfg config.Config, logger *slog.Logger) (stores, error) {
	if cfg.MongoURI == "" {
		logger.Warn("MONGO_URI not set, using in-memory stores")
		chatStore := memory.NewChatStore()
		return stores{
			users:         memory.NewUserRepository(),
			listings:      memory.NewListingRepository(),
			orders:        memory.NewOrderRepository(),
			swaps:         memory.NewSwapRepository(),
			reviews:       memory.NewReviewRepository(),
			notifications: memory.NewNotificationRepository(),
			conversations: chatStore,
			messages:      chatStore.MessageStore(),
			box:           memory.NewOutbox(),
			ready:         func() error { return nil },
			close:         func() {},
		}, nil
	}

	client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return stores{}, err
	}
	logger.Info("mongo connected", "database", cfg.MongoDB)
	outboxStore := infraoutbox.NewStore(client.DB)
	return stores{
		users:         mongodb.NewUserRepository(client.DB),
		listings:      mongodb.NewListingRepository(client.DB),
		orders:        mongodb.NewOrderRepository(client.DB),
		swaps:         mongodb.NewSwapRepository(client.DB),
		reviews:       mongodb.NewReviewRepository(client.DB),
		notifications: mongodb.NewNotificationRepository(client.DB),
		conversations: mongodb.NewConversationRepository(client.DB),
		messages:      mongodb.NewMessageRepository(client.DB),
		box:           outboxStore,
		outboxStore:   outboxStore,
		ready: func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(pingCtx)
		},
		close: func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Close(closeCtx); err != nil {
				logger.Error("mongo close failed", "error", err)
			}
		},
	}, nil
}

func buildPayments(cfg config.Config, logger *slog.Logger) policies.PaymentsPort {
	if cfg.PaymentAPIURL == "" {
		logger.Warn("PAYMENT_API_URL not set, using the approve-everything fake provider")
		return payments.NewFakeProvider()
	}
	return &payments.HTTPProvider{
		Client:   &http.Client{Timeout: 10 * time.Second},
		Endpoint: cfg.PaymentAPIURL,
		APIKey:   cfg.PaymentAPIKey,
		Logger:   logger,
	}
}

func buildDescriber(cfg config.Config, logger *slog.Logger) policies.DescriberPort {
	if cfg.AIServiceURL == "" {
		return nil
	}
	return &ai.Describer{
		Client:   &http.Client{Timeout: 15 * time.Second},
		Endpoint: cfg.AIServiceURL,
		Logger:   logger,
	}
}
