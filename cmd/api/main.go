package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cardvault-rest-api/internal/cache"
	"cardvault-rest-api/internal/config"
	"cardvault-rest-api/internal/handler"
	"cardvault-rest-api/internal/middleware"
	"cardvault-rest-api/internal/repository"
	"cardvault-rest-api/internal/router"
	"cardvault-rest-api/internal/service"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting CardVault API...")

	// Load configuration
	cfg := config.MustLoad()
	log.Printf("Environment: %s", cfg.App.Environment)

	// Initialize collection store based on config
	var store repository.CollectionStore
	switch cfg.CollectionDB.Type {
	case "postgres", "postgresql":
		pgStore, err := repository.NewPostgresStore(cfg.CollectionDB.PostgresDSN())
		if err != nil {
			log.Fatalf("Failed to initialize PostgreSQL: %v", err)
		}
		store = pgStore
		log.Println("PostgreSQL collection store initialized")
	default: // sqlite
		sqliteStore, err := repository.NewSQLiteStore(cfg.CollectionDB.Path)
		if err != nil {
			log.Fatalf("Failed to initialize SQLite: %v", err)
		}
		store = sqliteStore
		log.Println("SQLite collection store initialized")
	}
	defer store.Close()

	// Initialize MySQL connection for accounts (optional)
	var err error
	var mysqlDB *sql.DB
	var accountRepo *repository.MySQLAccountRepository

	mysqlDSN := cfg.Database.DSN()
	mysqlDB, err = sql.Open("mysql", mysqlDSN)
	if err != nil {
		log.Printf("Warning: MySQL connection failed: %v", err)
	} else {
		mysqlDB.SetMaxOpenConns(10)
		mysqlDB.SetMaxIdleConns(5)
		mysqlDB.SetConnMaxLifetime(5 * time.Minute)

		if err := mysqlDB.Ping(); err != nil {
			log.Printf("Warning: MySQL ping failed: %v", err)
			mysqlDB.Close()
			mysqlDB = nil
		} else {
			accountRepo = repository.NewMySQLAccountRepository(mysqlDB)
			log.Println("MySQL account repository initialized")
		}
	}
	if mysqlDB != nil {
		defer mysqlDB.Close()
	}

	// Initialize Redis client
	redisAddr := cfg.Cache.RedisAddress()
	redisClient := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: cfg.Cache.RedisPassword,
		DB:       cfg.Cache.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: Redis connection failed: %v", err)
		redisClient = nil
	} else {
		log.Println("Redis client initialized")
	}
	cancel()

	// Initialize cache: Redis when available, in-memory otherwise
	var appCache cache.Cache
	if redisClient != nil && cfg.Cache.Type != "memory" {
		appCache = cache.NewRedisCache(redisClient)
		log.Println("Redis cache initialized")
	} else {
		memCache := cache.NewMemoryCache()
		defer memCache.Close()
		appCache = memCache
		log.Println("Memory cache initialized")
	}

	// Initialize services
	editBuffer := service.NewEditBuffer(cfg.Edit.BufferTTL)
	collectionService := service.NewCollectionService(store, appCache, editBuffer)
	transferService := service.NewTransferService(store)
	prefsService := service.NewPrefsService(appCache)

	var tokenService *service.TokenService
	if redisClient != nil {
		tokenService = service.NewTokenService(redisClient)
	}

	// Sweep abandoned row edits in the background
	sweeper := service.NewEditSweeper(editBuffer, cfg.Edit.SweepInterval)
	sweeper.Start()
	defer sweeper.Stop()

	// Initialize handlers
	healthHandler := handler.New()
	zoneHandler := handler.NewZoneHandler(collectionService)
	containerHandler := handler.NewContainerHandler(collectionService)
	cardHandler := handler.NewCardHandler(collectionService)
	comicHandler := handler.NewComicHandler(collectionService)
	itemsHandler := handler.NewItemsHandler(collectionService)
	transferHandler := handler.NewTransferHandler(transferService, collectionService)
	prefsHandler := handler.NewPrefsHandler(prefsService)
	adminHandler := handler.NewAdminHandler(collectionService, cfg.CollectionDB.Type)

	var authHandler *handler.AuthHandler
	if tokenService != nil && accountRepo != nil {
		authHandler = handler.NewAuthHandler(tokenService, accountRepo)
	}

	// Create auth middleware with injected dependencies (NO GLOBALS!)
	authMiddleware := middleware.NewAuthMiddleware(middleware.AuthConfig{
		TokenService: tokenService,
	})

	// Create router
	r := router.New(router.Config{
		Handler:          healthHandler,
		AuthHandler:      authHandler,
		ZoneHandler:      zoneHandler,
		ContainerHandler: containerHandler,
		CardHandler:      cardHandler,
		ComicHandler:     comicHandler,
		ItemsHandler:     itemsHandler,
		TransferHandler:  transferHandler,
		PrefsHandler:     prefsHandler,
		AdminHandler:     adminHandler,
		AuthMiddleware:   authMiddleware,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server listening on %s", cfg.Server.Address())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel = context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
	fmt.Println("Goodbye!")
}
