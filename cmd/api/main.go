package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/bargainmart/backend/internal/config"
	"github.com/bargainmart/backend/internal/handler"
	"github.com/bargainmart/backend/internal/kafka"
	catalogModel "github.com/bargainmart/backend/internal/model/catalog"
	"github.com/bargainmart/backend/internal/model/identity"
	"github.com/bargainmart/backend/internal/model/order"
	"github.com/bargainmart/backend/internal/postgres"
	"github.com/bargainmart/backend/internal/redisx"
	aiService "github.com/bargainmart/backend/internal/service/ai"
	assistantService "github.com/bargainmart/backend/internal/service/assistant"
	cartService "github.com/bargainmart/backend/internal/service/cart"
	checkoutService "github.com/bargainmart/backend/internal/service/checkout"
	negotiationService "github.com/bargainmart/backend/internal/service/negotiation"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Catalog + orders: Postgres when configured, seeded memory otherwise.
	var catalogStore catalogModel.Store
	var checkoutSvc *checkoutService.Service
	var orderRepo *postgres.OrderRepo
	if cfg.Postgres.Enabled() {
		if err := postgres.RunMigrations(cfg.Postgres.DSN); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
		pool, err := postgres.Connect(ctx, cfg.Postgres.DSN)
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
		defer pool.Close()
		catalogStore = postgres.NewCatalogStore(pool)
		orderRepo = postgres.NewOrderRepo(pool)
		log.Println("postgres catalog and order storage initialized")
	} else {
		catalogStore = catalogModel.NewMemoryStore(catalogModel.Seed())
		log.Println("POSTGRES_DSN not set, using in-memory catalog; checkout disabled")
	}

	// Cart snapshots live in Redis; fall back to memory when unreachable.
	var cartStore cartService.Store
	rdb := redisx.New(cfg.Redis.Addr)
	if err := redisx.Ping(ctx, rdb); err != nil {
		log.Printf("warning: redis unreachable at %s: %v", cfg.Redis.Addr, err)
		log.Println("cart snapshots will not survive restarts")
		cartStore = cartService.NewMemoryStore()
	} else {
		cartStore = redisx.NewCartStore(rdb)
		log.Println("redis cart storage initialized")
	}

	cartSvc := cartService.NewService(catalogStore, cartStore)
	defer cartSvc.Close()

	// Order events are best effort; no brokers means no publication. The
	// producer closes only after the HTTP server has drained, so in-flight
	// checkouts can still publish during graceful shutdown.
	var publisher checkoutService.Publisher
	if cfg.Kafka.Enabled() {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, order.TopicOrderCreated, 256)
		producer.Start()
		defer producer.WaitClosed()
		defer producer.Close()
		publisher = producer
		log.Println("kafka order-event producer initialized")
	}

	if orderRepo != nil {
		checkoutSvc = checkoutService.NewService(catalogStore, cartSvc, orderRepo, publisher, cfg.Kafka.ServiceName)
	}

	var aiSvc *aiService.Service
	var negotiationSvc *negotiationService.Service
	if cfg.AI.Enabled() {
		aiSvc, err = aiService.NewService(ctx, cfg.AI)
		if err != nil {
			log.Printf("warning: failed to initialize AI service: %v", err)
			log.Println("continuing without negotiation and assistant replies")
		} else {
			negotiationSvc = negotiationService.NewService(aiSvc, catalogStore, cfg.Negotiation)
			log.Println("AI service initialized successfully")
		}
	} else {
		log.Println("completion credentials not configured, skipping AI initialization")
	}

	assistantSvc := assistantService.NewService(catalogStore)
	identities := identity.NewHeaderProvider()

	router := handler.NewRouter(handler.Services{
		Catalog:     catalogStore,
		Identities:  identities,
		Cart:        cartSvc,
		Checkout:    checkoutSvc,
		Negotiation: negotiationSvc,
		Assistant:   assistantSvc,
		AI:          aiSvc,
	})

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("storefront backend listening on %s", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
