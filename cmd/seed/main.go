package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/murmurhq/murmur/internal/database"
	"github.com/murmurhq/murmur/internal/seed"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	command := "dev"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	if err := database.Initialize(); err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		log.Fatalf("❌ Failed to run migrations: %v", err)
	}

	seeder := seed.NewSeeder(database.DB)

	switch command {
	case "dev":
		log.Println("🌱 Seeding development database...")
		if err := seeder.SeedDev(seed.DefaultOptions()); err != nil {
			log.Fatalf("❌ Seeding failed: %v", err)
		}
		log.Println("🌱 Done")

	case "clean":
		log.Println("🧹 Removing seed data...")
		if err := seeder.Clean(); err != nil {
			log.Fatalf("❌ Clean failed: %v", err)
		}
		log.Println("🧹 Done")

	default:
		fmt.Println("Usage: seed [dev|clean]")
		fmt.Println("  dev   - Seed development database with realistic data")
		fmt.Println("  clean - Remove all data (use with caution)")
		os.Exit(1)
	}
}
