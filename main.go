package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	repoPg "student-progress-dashboard/app/repository/postgresql"
	"student-progress-dashboard/config"
	"student-progress-dashboard/database"
	fiberapp "student-progress-dashboard/fiber"
	"student-progress-dashboard/route"
	"student-progress-dashboard/utils"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// 2. Connect to the stores
	if err := database.ConnectPostgres(cfg.Postgres); err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer database.PostgresDB.Close()

	if err := database.ConnectMongo(cfg.Mongo); err != nil {
		log.Fatalf("mongo: %v", err)
	}
	defer database.DisconnectMongo(context.Background())

	if err := database.ConnectRedis(cfg.Redis); err != nil {
		// The cache is optional; dashboards are computed on every request.
		utils.LogError("redis: %v", err)
	}
	if database.RedisClient != nil {
		defer database.RedisClient.Close()
	}

	seedAdmin(cfg)

	// 3. Setup Fiber app and routes
	app := fiberapp.SetupFiber()
	route.SetupRoutes(app, cfg, database.PostgresDB, database.MongoDB, database.RedisClient)

	// 4. Start server
	go func() {
		utils.LogInfo("Server running on :%s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			utils.LogError("Server stopped: %v", err)
		}
	}()

	// 5. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		utils.LogError("Server forced to shutdown: %v", err)
	}
}

// seedAdmin creates the configured admin account on first start.
func seedAdmin(cfg *config.Config) {
	if cfg.AdminPassword == "" {
		utils.LogInfo("ADMIN_PASSWORD not set, skipping admin seed")
		return
	}
	hash, err := utils.HashPassword(cfg.AdminPassword)
	if err != nil {
		log.Fatalf("hash admin password: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	created, err := repoPg.NewUserRepository(database.PostgresDB).EnsureUser(ctx, cfg.AdminUsername, hash, "admin")
	if err != nil {
		log.Fatalf("seed admin: %v", err)
	}
	if created {
		utils.LogSuccess("Created admin user %q", cfg.AdminUsername)
	}
}
