package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/justasSav/eeps/internal/config"
	"github.com/justasSav/eeps/internal/db"
	"github.com/justasSav/eeps/internal/httpserver"
	"github.com/justasSav/eeps/internal/realtime"
	cartrepo "github.com/justasSav/eeps/internal/repository/cart"
	menurepo "github.com/justasSav/eeps/internal/repository/menu"
	orderrepo "github.com/justasSav/eeps/internal/repository/order"
	authsvc "github.com/justasSav/eeps/internal/service/auth"
	cartsvc "github.com/justasSav/eeps/internal/service/cart"
	menusvc "github.com/justasSav/eeps/internal/service/menu"
	ordersvc "github.com/justasSav/eeps/internal/service/order"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	rdb, err := db.ConnectRedis(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Fatalf("connect to redis: %v", err)
	}
	defer rdb.Close()

	orderRepo, err := buildOrderRepo(cfg, dbpool, logger)
	if err != nil {
		logger.Fatalf("init order store: %v", err)
	}
	if closer, ok := orderRepo.(io.Closer); ok {
		defer closer.Close()
	}

	menuRepo := menurepo.NewPostgres(dbpool)
	cartRepo := cartrepo.NewRedis(rdb)
	bridge := realtime.NewBridge()

	authService, err := authsvc.New(cfg.AdminUsername, cfg.AdminPassword, cfg.JWTSecret)
	if err != nil {
		logger.Fatalf("init auth: %v", err)
	}

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		Menu:   menusvc.New(menuRepo),
		Cart:   cartsvc.New(cartRepo),
		Orders: ordersvc.New(orderRepo, bridge, logger),
		Auth:   authService,
		Bridge: bridge,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s (storage mode %s)", cfg.HTTPAddr, cfg.StorageMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}

// buildOrderRepo picks the order store per STORAGE_MODE: postgres only,
// local bbolt only, or the hybrid that prefers postgres and falls back to
// the local file.
func buildOrderRepo(cfg config.Config, dbpool *pgxpool.Pool, logger *log.Logger) (orderrepo.Repository, error) {
	switch cfg.StorageMode {
	case config.StoragePostgres:
		return orderrepo.NewPostgres(dbpool), nil
	case config.StorageLocal:
		return orderrepo.NewBolt(cfg.LocalStorePath)
	default:
		local, err := orderrepo.NewBolt(cfg.LocalStorePath)
		if err != nil {
			return nil, err
		}
		return orderrepo.NewHybrid(orderrepo.NewPostgres(dbpool), local, logger), nil
	}
}
