package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-store-catalog/internal/events"
	"go-store-catalog/internal/handler"
	"go-store-catalog/internal/middleware"
	"go-store-catalog/internal/oauth"
	"go-store-catalog/internal/repository"
	"go-store-catalog/internal/service"
	"go-store-catalog/internal/storage"
	"go-store-catalog/internal/ws"
	"go-store-catalog/pkg/config"
	"go-store-catalog/pkg/database"
	"go-store-catalog/pkg/jwt"
	"go-store-catalog/pkg/logger"
	"go-store-catalog/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/session"
	"go.uber.org/zap"
)

func main() {
	// 1. Load Config
	cfg := config.Load()

	zlog, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zlog.Sync()

	if cfg.SecretKey == "" {
		zlog.Fatal("SECRET_KEY must be set")
	}

	// 2. Setup Database
	db, err := database.Connect(cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to connect database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		zlog.Fatal("failed to migrate database", zap.Error(err))
	}

	// 3. Photo storage
	files, closeFiles := openStorage(cfg, zlog)
	defer closeFiles()

	// 4. Event fan-out: websocket hub, plus RabbitMQ when configured
	wsHub := ws.NewHub(zlog)
	go wsHub.Run()
	publishers := events.Fanout{wsHub}
	if cfg.RabbitMQURL != "" {
		mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, zlog)
		if err != nil {
			zlog.Warn("RabbitMQ unavailable, catalog events stay local", zap.Error(err))
		} else {
			defer mq.Close()
			publishers = append(publishers, events.NewBroker(mq, zlog))
		}
	}

	// 5. Dependency Injection (Wiring Layers)
	userRepo := repository.NewUserRepo(db)
	categoryRepo := repository.NewCategoryRepo(db)
	productRepo := repository.NewProductRepo(db)
	photoRepo := repository.NewPhotoRepo(db)

	allocator := service.NewSKUAllocator(categoryRepo, productRepo)
	identity := service.NewIdentityResolver(userRepo)
	authService := service.NewAuthService(identity, userRepo, jwt.NewManager(cfg.SecretKey, cfg.SessionTTL))
	catalogService := service.NewCatalogService(categoryRepo, productRepo, files)
	categoryService := service.NewCategoryService(categoryRepo, productRepo, photoRepo, allocator, files, db, publishers, zlog)
	productService := service.NewProductService(categoryRepo, productRepo, photoRepo, allocator, files, db, publishers, zlog)
	statsService := service.NewStatsService(productRepo)

	flash := middleware.NewFlash(session.New(session.Config{
		Expiration:     cfg.SessionTTL,
		KeyLookup:      "cookie:catalog_flash",
		CookieHTTPOnly: true,
		CookieSecure:   cfg.CookieSecure,
		CookieSameSite: fiber.CookieSameSiteLaxMode,
	}))
	provider := oauth.NewGoogle(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)

	routes := handler.Routes{
		Auth:     handler.NewAuthHandler(authService, provider, flash, zlog, cfg.CookieSecure, cfg.SessionTTL),
		Catalog:  handler.NewCatalogHandler(catalogService, flash, zlog),
		Category: handler.NewCategoryHandler(categoryService, flash, zlog),
		Product:  handler.NewProductHandler(productService, flash, zlog, int64(cfg.MaxUploadBytes)),
		Stats:    handler.NewStatsHandler(statsService),
		Hub:      wsHub,
	}

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName:   cfg.AppName,
		BodyLimit: cfg.MaxUploadBytes + 1<<20,
	})

	// Middleware
	app.Use(fiberlogger.New()) // Logging request
	app.Use(recover.New())     // Panic recovery
	app.Use(cors.New())        // CORS

	// 7. Routes
	routes.Register(app, authService)

	// 8. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			zlog.Panic("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("Shutting down server...")
	wsHub.Stop()
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		zlog.Error("Server forced to shutdown", zap.Error(err))
	}

	zlog.Info("Server exited")
}

// openStorage selects the photo backend. The returned func releases it.
func openStorage(cfg *config.Config, zlog *zap.Logger) (storage.FileStorage, func()) {
	switch cfg.StorageDriver {
	case "gcs":
		gcs, err := storage.NewGCS(context.Background(), cfg.GCSBucket)
		if err != nil {
			zlog.Fatal("failed to open GCS bucket", zap.String("bucket", cfg.GCSBucket), zap.Error(err))
		}
		return gcs, func() {
			if err := gcs.Close(); err != nil {
				zlog.Warn("failed to close GCS client", zap.Error(err))
			}
		}
	default:
		local, err := storage.NewLocal(cfg.UploadDir)
		if err != nil {
			zlog.Fatal("failed to prepare upload dir", zap.Error(err))
		}
		return local, func() {}
	}
}
