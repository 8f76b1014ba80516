package main

import (
	"log"
	"os"

	"spa-booking-be/internal/model"
	"spa-booking-be/pkg/database"

	"github.com/joho/godotenv"
	"gorm.io/gorm/logger"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(dsn, logger.Warn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Step 1: Setting up extensions...")
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		log.Printf("Warning: pgcrypto extension: %v", err)
	}

	log.Println("Step 2: Migrating tables...")
	if err := database.Migrate(db, model.All()...); err != nil {
		log.Fatal("Error: Migration failed:", err)
	}

	log.Println("Migration finished")
}
