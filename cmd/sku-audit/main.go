package main

import (
	"encoding/json"
	"log"
	"os"

	"go-store-catalog/internal/repository"
	"go-store-catalog/internal/service"
	"go-store-catalog/pkg/config"
	"go-store-catalog/pkg/database"
	"go-store-catalog/pkg/logger"

	"go.uber.org/zap"
)

// sku-audit lists products whose SKU cannot seed the next allocation.
// It exits with status 1 when any are found.
func main() {
	// 1. Load Config
	cfg := config.Load()

	zlog, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zlog.Sync()

	// 2. Setup Database
	db, err := database.Connect(cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to connect database", zap.Error(err))
	}

	// 3. Audit
	products, err := repository.NewProductRepo(db).FindAllByCategoryAndName()
	if err != nil {
		zlog.Fatal("failed to load products", zap.Error(err))
	}
	issues := service.AuditSKUs(products)

	enc := json.NewEncoder(os.Stdout)
	for _, issue := range issues {
		if err := enc.Encode(issue); err != nil {
			zlog.Fatal("failed to write report", zap.Error(err))
		}
	}

	zlog.Info("SKU audit finished", zap.Int("products", len(products)), zap.Int("issues", len(issues)))
	if len(issues) > 0 {
		zlog.Sync()
		os.Exit(1)
	}
}
