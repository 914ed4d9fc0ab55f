package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/yeremiapane/restaurant-booking/config"
	"github.com/yeremiapane/restaurant-booking/database"
	"github.com/yeremiapane/restaurant-booking/hub"
	"github.com/yeremiapane/restaurant-booking/middlewares"
	"github.com/yeremiapane/restaurant-booking/router"
	"github.com/yeremiapane/restaurant-booking/services"
	"github.com/yeremiapane/restaurant-booking/utils"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		utils.InfoLogger.Println("Warning: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		utils.ErrorLogger.Fatalf("Invalid configuration: %v", err)
	}
	utils.InitLogger(cfg.LogLevel)
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := database.NewGateway(database.Opener(cfg))
	defer store.Close()
	// Warm the connection so configuration errors show up at startup. A
	// failure is not fatal: the gateway retries on the next request.
	if _, err := store.DB(ctx); err != nil {
		utils.ErrorLogger.Printf("Database not ready yet: %v", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	var blacklist utils.TokenBlacklist
	if cfg.RedisURL != "" {
		redisList, err := utils.OpenRedisBlacklist(ctx, cfg.RedisURL)
		if err != nil {
			utils.ErrorLogger.Printf("Redis unavailable, falling back to in-memory token blacklist: %v", err)
		} else {
			defer redisList.Close()
			blacklist = redisList
			utils.InfoLogger.Println("Using Redis token blacklist")
		}
	}
	if blacklist == nil {
		memList := utils.NewMemoryBlacklist()
		g.Go(func() error {
			memList.RunCleanup(ctx, 10*time.Minute)
			return nil
		})
		blacklist = memList
	}

	liveFeed := hub.New()
	limiter := middlewares.NewRateLimiter(cfg.AuthRateLimit)
	g.Go(func() error {
		limiter.RunCleanup(ctx, 10*time.Minute)
		return nil
	})

	expiry := services.NewPaymentExpiryMonitor(store, liveFeed, cfg.OrderPaymentTimeout)
	g.Go(func() error {
		expiry.Run(ctx)
		return nil
	})

	r := router.SetupRouter(router.Deps{
		Config:      cfg,
		Store:       store,
		Creds:       utils.NewCredentialService([]byte(cfg.JWTSecret)),
		Blacklist:   blacklist,
		Hub:         liveFeed,
		Orders:      services.NewOrderService(store),
		AuthLimiter: limiter,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		utils.InfoLogger.Printf("Listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		utils.InfoLogger.Println("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		utils.ErrorLogger.Fatalf("Server stopped: %v", err)
	}
	utils.InfoLogger.Println("Server stopped")
}
