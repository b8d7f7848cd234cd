package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/httpserver"
	"storefront/internal/keylock"
	"storefront/internal/logging"
	"storefront/internal/medusa"
	"storefront/internal/migrate"
	"storefront/internal/repository/session"
	accountsvc "storefront/internal/service/account"
	cartsvc "storefront/internal/service/cart"
	checkoutsvc "storefront/internal/service/checkout"
	couponsvc "storefront/internal/service/coupon"
	"storefront/internal/service/imagery"
	ordersvc "storefront/internal/service/order"
	productsvc "storefront/internal/service/product"
	regionsvc "storefront/internal/service/region"
)

const (
	sessionIdleTTL   = 30 * 24 * time.Hour
	pruneEvery       = time.Hour
	redisPingTimeout = 2 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// The logger config is part of Config, so fall back to a default one.
		zap.NewExample().Fatal("load config", zap.Error(err))
	}
	logger, err := logging.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString, db.PoolOptions{MaxConns: cfg.DBMaxConns})
	if err != nil {
		logger.Fatal("connect to db", zap.Error(err))
	}
	defer dbpool.Close()

	if _, err := migrate.Apply(ctx, dbpool, logger); err != nil {
		logger.Fatal("apply migrations", zap.Error(err))
	}

	imageCache := newImageCache(ctx, cfg, logger)

	backend := medusa.New(medusa.Options{
		BaseURL:        cfg.Medusa.BackendURL,
		PublishableKey: cfg.Medusa.PublishableKey,
		Timeout:        cfg.Medusa.Timeout,
		Logger:         logger.Named("medusa"),
	})

	locks := keylock.New()
	sessions := session.NewPostgres(dbpool, logger)
	regionService := regionsvc.New(backend, cfg.Store.DefaultRegion, cfg.Store.RegionCacheTTL, logger)
	cartService := cartsvc.New(backend, sessions, locks, logger)
	couponService := couponsvc.New(backend, backend, sessions, locks, logger.Named("coupon"))
	checkoutService := checkoutsvc.New(backend, cartService, locks, cfg.Medusa.PaymentProvider, logger)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		Sessions: sessions,
		Regions:  regionService,
		Products: productsvc.New(backend, cfg.Store.PlaceholderImage),
		Carts:    cartService,
		Coupons:  couponService,
		Images:   imagery.NewMapper(backend, imageCache, logger),
		Checkout: checkoutService,
		Orders:   ordersvc.New(backend, logger),
		Accounts: accountsvc.New(backend, sessions, cartService, logger),
	}, httpserver.Options{
		AllowOrigins: cfg.CORS.AllowOrigins,
		Cookie: httpserver.CookieOptions{
			Name:   cfg.Sessions.CookieName,
			Secure: cfg.Sessions.Secure,
			MaxAge: cfg.Sessions.MaxAge,
		},
	})
	if err != nil {
		logger.Fatal("init server", zap.Error(err))
	}

	pruneCtx, stopPrune := context.WithCancel(ctx)
	defer stopPrune()
	go pruneSessions(pruneCtx, sessions, logger)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting http server", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		logger.Error("server error", zap.Error(err))
	}

	stopPrune()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	} else {
		logger.Info("server stopped")
	}
}

// newImageCache uses Redis when it answers, and an in-process cache otherwise.
func newImageCache(ctx context.Context, cfg config.Config, logger *zap.Logger) cache.ImageCache {
	if cfg.RedisAddr == "" {
		return cache.NewMemoryImageCache()
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unavailable, using in-memory image cache", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		_ = client.Close()
		return cache.NewMemoryImageCache()
	}
	return cache.NewRedisImageCache(client, cfg.Store.ImageCacheTTL)
}

func pruneSessions(ctx context.Context, sessions session.Repository, logger *zap.Logger) {
	ticker := time.NewTicker(pruneEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sessions.DeleteIdleBefore(ctx, time.Now().Add(-sessionIdleTTL))
			if err != nil {
				logger.Warn("prune idle sessions failed", zap.Error(err))
				continue
			}
			if n > 0 {
				logger.Info("pruned idle sessions", zap.Int64("count", n))
			}
		}
	}
}
