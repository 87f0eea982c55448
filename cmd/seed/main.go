package main

import (
	"fmt"
	"log"
	"os"

	"github.com/connectos/backend/internal/database"
	"github.com/connectos/backend/internal/logger"
	"github.com/connectos/backend/internal/seed"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}
	if err := logger.Initialize(os.Getenv("LOG_LEVEL"), ""); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	command := "dev"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	switch command {
	case "dev":
		seedDev()
	default:
		fmt.Println("Usage: seed [dev]")
		fmt.Println("  dev - Seed development database with realistic data")
		os.Exit(1)
	}
}

func seedDev() {
	if err := database.Initialize(); err != nil {
		logger.FatalWithFields("Failed to connect to database", err)
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		logger.FatalWithFields("Failed to run migrations", err)
	}

	seeder := seed.NewSeeder(database.DB)
	if err := seeder.SeedDev(); err != nil {
		logger.FatalWithFields("Seeding failed", err)
	}
}
