// Package main provides a CLI tool for seeding the database with initial data.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"stitchstock/internal/core/apperror"
	"stitchstock/internal/core/types"
	"stitchstock/internal/domain/auth"
	"stitchstock/internal/domain/catalogs/material"
	"stitchstock/internal/domain/catalogs/product"
	"stitchstock/internal/domain/events"
	"stitchstock/internal/domain/orders"
	"stitchstock/internal/infrastructure/storage/postgres"
	"stitchstock/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := logger.WithLogger(context.Background(), log)

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	txManager := postgres.NewTxManager(pool)

	if err := seedAdminUser(ctx, txManager, log); err != nil {
		log.Fatalw("failed to seed admin user", "error", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoData(ctx, txManager, log); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

func seedAdminUser(ctx context.Context, txManager *postgres.TxManager, log *logger.Logger) error {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@stitchstock.local"
	}
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "Admin123!"
	}

	userRepo := postgres.NewUserRepo(txManager)
	jwtService := auth.NewJWTService(auth.JWTConfig{Secret: "seed", AccessTokenTTL: time.Minute})
	authService := auth.NewService(userRepo, txManager, jwtService)

	user, err := authService.Register(ctx, adminEmail, adminPassword, "Administrator", auth.RoleAdmin)
	if err != nil {
		if apperror.IsConflict(err) {
			log.Infow("admin user already exists", "email", adminEmail)
			return nil
		}
		return err
	}

	log.Infow("admin user created", "email", user.Email)
	return nil
}

func seedDemoData(ctx context.Context, txManager *postgres.TxManager, log *logger.Logger) error {
	materialRepo := postgres.NewMaterialRepo(txManager)
	productRepo := postgres.NewProductRepo(txManager)
	orderRepo := postgres.NewOrderRepo(txManager)
	productionRepo := postgres.NewProductionRepo(txManager)

	materialService := material.NewService(materialRepo, productRepo, txManager)
	productService := product.NewService(productRepo, materialRepo, events.NewBus(), txManager)
	orderService := orders.NewService(orderRepo, productRepo, materialRepo, productionRepo, txManager)

	fabric := material.NewRawMaterial("FAB-001", "Denim 12oz", material.UnitMeter)
	fabric.CurrentStock = types.MustQuantity("500.0")
	if err := materialService.Create(ctx, fabric); err != nil {
		if apperror.IsDuplicate(err) {
			log.Info("demo data already seeded")
			return nil
		}
		return fmt.Errorf("create fabric: %w", err)
	}

	thread := material.NewRawMaterial("THR-001", "Polyester Thread", material.UnitPiece)
	thread.CurrentStock = types.MustQuantity("1000")
	if err := materialService.Create(ctx, thread); err != nil {
		return fmt.Errorf("create thread: %w", err)
	}

	jacket := product.NewProduct("ST-1001", "Denim Jacket")
	jacket.AddRequirement(fabric.ID, types.MustQuantity("2.5"), types.MustPercent("5"), "", true)
	jacket.AddRequirement(thread.ID, types.MustQuantity("2"), types.MustPercent("1"), "", false)
	if err := productService.Create(ctx, jacket); err != nil {
		return fmt.Errorf("create product: %w", err)
	}

	if _, err := orderService.Create(ctx, "PO-2026-001", jacket.ID, time.Now().UTC(), 100, "demo order"); err != nil {
		return fmt.Errorf("create order: %w", err)
	}

	log.Info("demo data seeded")
	return nil
}
