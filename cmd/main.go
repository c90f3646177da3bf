package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fidellopezm03/inventory-admin/cmd/api"
	"github.com/fidellopezm03/inventory-admin/cmd/internal/cache"
	"github.com/fidellopezm03/inventory-admin/cmd/internal/db"
	"github.com/fidellopezm03/inventory-admin/cmd/internal/env"
	"github.com/fidellopezm03/inventory-admin/cmd/internal/events"
	"github.com/fidellopezm03/inventory-admin/cmd/internal/health"
	"github.com/fidellopezm03/inventory-admin/cmd/repository"
	"github.com/fidellopezm03/inventory-admin/cmd/service"
)

func main() {
	log.Println("Starting server...")
	cfg := env.Start()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	log.Printf("Configuration: %s", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := db.GetConnection(db.DBConfig{
		Driver:   cfg.DBDriver,
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPass,
		Name:     cfg.DBName,
		SSLMode:  cfg.SSLMode,
		Path:     cfg.DBPath,
		Debug:    cfg.IsDevelopment(),
	})
	if err != nil {
		log.Fatalf("error connecting to the database: %v", err)
	}
	defer db.Close(conn)

	if err := db.ApplyMigrations(conn); err != nil {
		log.Fatalf("error applying migrations: %v", err)
	}
	log.Println("Migrations applied successfully")

	if cfg.AuthMode == env.AuthModeTable {
		if _, err := db.SeedAdmin(ctx, conn, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.Fatalf("error seeding admin: %v", err)
		}
	}

	if err := os.MkdirAll(cfg.UploadDir, 0755); err != nil {
		log.Fatalf("error creating upload directory: %v", err)
	}

	var store cache.Store = cache.NewMemory(cfg.CacheTTL)
	if cfg.RedisAddr != "" {
		rdb, err := cache.ConnectRedis(ctx, cfg.RedisAddr)
		if err != nil {
			log.Fatalf("error connecting to redis: %v", err)
		}
		defer rdb.Close()
		store = cache.NewRedis(rdb, cfg.CacheTTL, "inventory:")
	}

	var publisher events.Publisher = events.Log{}
	if len(cfg.KafkaBrokers) > 0 {
		k, err := events.NewKafka(cfg.KafkaBrokers, 10, 5*time.Second)
		if err != nil {
			log.Fatalf("error starting kafka producer: %v", err)
		}
		publisher = k
	}
	defer publisher.Close()

	users := repository.NewUserRepo(conn)
	var creds service.CredentialStore
	var accounts repository.UserRepo
	if cfg.AuthMode == env.AuthModeStatic {
		creds, err = service.NewStaticCredentials(cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			log.Fatalf("error preparing static credentials: %v", err)
		}
	} else {
		creds = service.NewTableCredentials(users)
		accounts = users
	}
	sessions := service.NewSessions(cfg.SecretKey, cfg.TokenTTL, !cfg.IsDevelopment())
	authService := service.NewAuthService(creds, accounts, sessions)

	if cfg.GRPCHealthAddr != "" {
		shutdownHealth, err := health.StartGRPC(cfg.GRPCHealthAddr, repository.NewDashboardRepo(conn))
		if err != nil {
			log.Fatalf("error starting gRPC health server: %v", err)
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownHealth(sctx)
		}()
	}

	router := api.NewRouter(api.Deps{
		Env:    cfg,
		DB:     conn,
		Auth:   authService,
		Cache:  store,
		Events: publisher,
	})

	if err := api.NewApi(cfg.Addr).Run(ctx, router); err != nil {
		log.Printf("Error in server: %v", err)
	}
	log.Println("Server stopped")
}
