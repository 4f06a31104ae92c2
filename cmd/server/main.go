// Package main is the entry point for the stitchstock API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stitchstock/internal/domain/auth"
	"stitchstock/internal/domain/catalogs/material"
	"stitchstock/internal/domain/catalogs/product"
	"stitchstock/internal/domain/events"
	"stitchstock/internal/domain/orders"
	"stitchstock/internal/domain/production"
	"stitchstock/internal/domain/reports"
	v1 "stitchstock/internal/infrastructure/http/v1"
	"stitchstock/internal/infrastructure/storage/postgres"
	"stitchstock/pkg/config"
	"stitchstock/pkg/logger"
)

const version = "0.1.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.App.LogLevel,
		Development: cfg.App.Env == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := logger.WithLogger(context.Background(), log)
	log.Info("starting stitchstock server")

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(cfg.DB.ConnectionString())
	if cfg.DB.MaxConns > 0 {
		poolCfg.MaxConns = int32(cfg.DB.MaxConns)
	}
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Repositories ---
	materialRepo := postgres.NewMaterialRepo(txManager)
	productRepo := postgres.NewProductRepo(txManager)
	orderRepo := postgres.NewOrderRepo(txManager)
	productionRepo := postgres.NewProductionRepo(txManager)
	reportRepo := postgres.NewReportRepo(txManager)
	userRepo := postgres.NewUserRepo(txManager)

	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit service", "error", err)
	}

	// --- Domain services ---
	bus := events.NewBus()

	materialService := material.NewService(materialRepo, productRepo, txManager)
	productService := product.NewService(productRepo, materialRepo, bus, txManager)
	orderService := orders.NewService(orderRepo, productRepo, materialRepo, productionRepo, txManager)
	recorder := production.NewRecorder(productionRepo, orderRepo, materialRepo, postgres.NewLogNumberer(txManager), txManager)
	reportService := reports.NewService(reportRepo, orderRepo)

	// Expected-wastage edits on a style ripple into its open orders.
	projector := orders.NewWastageProjector(orderRepo, productRepo, txManager)
	bus.SubscribeProductWastageChanged(projector)

	jwtService := auth.NewJWTService(auth.JWTConfig{
		Secret:         cfg.JWT.Secret,
		Issuer:         cfg.JWT.Issuer,
		AccessTokenTTL: time.Duration(cfg.JWT.Expiration) * time.Minute,
	})
	authService := auth.NewService(userRepo, txManager, jwtService)

	// --- HTTP ---
	router := v1.NewRouter(v1.RouterConfig{
		Logger:            log,
		Pool:              pool,
		Version:           version,
		JWTValidator:      jwtService,
		AuthService:       authService,
		MaterialService:   materialService,
		ProductService:    productService,
		OrderService:      orderService,
		ProductionService: recorder,
		ReportsService:    reportService,
		AuditService:      auditService,
	})

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infow("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("http server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("graceful shutdown failed", "error", err)
	}

	log.Info("server stopped")
}
