package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"spa-booking-be/internal/bootstrap"
	"spa-booking-be/internal/config"
	"spa-booking-be/internal/model"
	"spa-booking-be/internal/server"
	"spa-booking-be/internal/tracer"
	"spa-booking-be/pkg/database"

	"gorm.io/gorm/logger"
)

func main() {
	// 0. Initialize Tracer
	shutdownTracer := tracer.InitTracer("spa-booking-backend")
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	logLevel := logger.Warn
	if cfg.App.Environment != "production" {
		logLevel = logger.Info
	}
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection, logLevel)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}
	if cfg.Database.AutoMigrate {
		if err := database.Migrate(gormDB, model.All()...); err != nil {
			log.Panicf("Migration failed: %v", err)
		}
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)
	defer container.Close()

	// 4. Start Background Services
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Println("Background: Starting Consumer Service...")
	if err := container.ConsumerService.Consume(ctx); err != nil {
		log.Printf("Background Consumer Error: %v", err)
	}

	// 5. Initialize Server
	srv := server.New(cfg, container)

	go func() {
		<-ctx.Done()
		if err := srv.Shutdown(); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	// 6. Run Server
	if err := srv.Run(); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}
