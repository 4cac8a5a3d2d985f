package cmd

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	pubnub "github.com/pubnub/go"

	"eventhive/config"
	"eventhive/handlers"
	"eventhive/internal/services/chain"
	"eventhive/internal/services/wallet"
	"eventhive/monitoring"
	"eventhive/security"
	"eventhive/services"
	"eventhive/utils"
)

func Start() error {
	app := pocketbase.New()

	// Load configuration
	cfg := config.LoadConfig()

	// Initialize Redis
	redisClient := utils.NewRedisClient(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
	defer redisClient.Close()

	// Initialize PubNub when keys are present
	var pn *pubnub.PubNub
	if cfg.PubNubPublishKey != "" && cfg.PubNubSubscribeKey != "" {
		pnConfig := pubnub.NewConfig()
		pnConfig.PublishKey = cfg.PubNubPublishKey
		pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
		pnConfig.SecretKey = cfg.PubNubSecretKey
		pn = pubnub.NewPubNub(pnConfig)
	} else {
		slog.Info("pubnub keys not set, external broadcast disabled")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize the wallet provider
	wallets, err := wallet.New(ctx, wallet.Provider(cfg.WalletProvider), cfg)
	if err != nil {
		return err
	}
	defer wallets.Close(ctx)

	// The registry contract is optional; without it the app runs local-only.
	var chainRegistry chain.Registry
	if cfg.EventRegistryContractID != "" {
		chainRegistry, err = chain.NewHederaRegistry(cfg.HederaNetwork, cfg.EventRegistryContractID, cfg.HederaOperatorID, cfg.HederaOperatorKey, utils.BreakerSettings{
			MaxRequests:  uint32(cfg.BreakerMaxRequests),
			Interval:     cfg.BreakerInterval,
			Timeout:      cfg.BreakerTimeout,
			FailureRatio: cfg.BreakerFailureRatio,
		})
		if err != nil {
			return err
		}
		slog.Info("event registry contract configured", "contract", cfg.EventRegistryContractID)
	} else {
		slog.Info("no registry contract configured, running local-only")
	}

	// Initialize services
	notifier := services.NewNotifier(pn, cfg.PubNubChannel)
	store := services.NewEventStore(&utils.RedisSnapshotStore{Redis: redisClient}, notifier)
	store.Load(ctx)

	if cfg.SeedSampleEvents && cfg.Environment != "production" {
		services.SeedSampleEvents(ctx, store)
	}

	registry := services.NewRegistry(store, wallets, chainRegistry, cfg.DemoMode)

	if chainRegistry != nil {
		if _, err := registry.RefreshFromChain(ctx); err != nil {
			slog.Warn("initial chain sync failed, serving local snapshot", "error", err)
		}
	}

	// Initialize handlers
	eventHandler := handlers.NewEventHandler(registry, store, cfg.Environment)
	ticketHandler := handlers.NewTicketHandler(registry, store)
	rateLimiter := security.NewRateLimiter(redisClient, cfg.PurchaseRateLimit, cfg.PurchaseRateWindow)

	// Metrics
	if cfg.EnableMetrics {
		monitor := monitoring.NewMonitor(store.Count)
		go monitor.Start(ctx)
		go func() {
			addr := ":" + cfg.MetricsPort
			slog.Info("metrics server listening", "addr", addr)
			if err := http.ListenAndServe(addr, promhttp.Handler()); err != nil {
				slog.Error("metrics server stopped", "error", err)
			}
		}()
	}

	// Setup graceful shutdown
	go handleShutdown(cancel)

	app.OnServe().BindFunc(func(e *core.ServeEvent) error {
		// Event endpoints
		e.Router.GET("/api/v1/events", eventHandler.ListEvents)
		e.Router.GET("/api/v1/events/{eventId}", eventHandler.GetEvent)
		e.Router.POST("/api/v1/events", eventHandler.CreateEvent)
		e.Router.POST("/api/v1/events/refresh", eventHandler.RefreshEvents)
		e.Router.POST("/api/v1/events/{eventId}/purchase", rateLimiter.Guard(eventHandler.PurchaseTicket))
		e.Router.DELETE("/api/v1/events/{eventId}", eventHandler.DeactivateEvent)

		// Ticket endpoints
		e.Router.GET("/api/v1/tickets", ticketHandler.ListTickets)
		e.Router.POST("/api/v1/tickets/transfer", ticketHandler.TransferTicket)
		e.Router.POST("/api/v1/tickets/associate", ticketHandler.AssociateToken)

		// Dev helpers
		if cfg.Environment == "development" {
			e.Router.POST("/api/v1/dev/clear", eventHandler.ClearEvents)
		}

		// Health check
		e.Router.GET("/health", func(e *core.RequestEvent) error {
			if err := utils.RedisHealthCheck(redisClient); err != nil {
				return e.JSON(503, map[string]string{
					"status": "unhealthy",
					"error":  err.Error(),
				})
			}
			return e.JSON(200, map[string]string{"status": "healthy"})
		})

		log.Println("Server routes registered")

		return e.Next()
	})

	// Start server
	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
	return nil
}

func handleShutdown(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	slog.Info("shutting down")
	cancel()
}
