// seed/main.go
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/geoid-labs/geoid_api/model"
	"github.com/geoid-labs/geoid_api/seed/seeders"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	var (
		seedType = flag.String("type", "all", "Type of seeding: all, badges, games")
		dsn      = flag.String("dsn", "", "Database DSN (overrides DB_DATABASE env var)")
		help     = flag.Bool("help", false, "Show help message")
	)
	flag.Parse()

	if *help {
		showHelp()
		return
	}

	database := *dsn
	if database == "" {
		database = os.Getenv("DB_DATABASE")
		if database == "" {
			log.Fatal("DB_DATABASE is not set")
		}
	}

	db, err := gorm.Open(postgres.Open(database), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	log.Println("Connected to database")

	if err := db.AutoMigrate(&model.Badge{}, &model.Game{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	mainSeeder := seeders.NewMainSeeder(db)

	switch *seedType {
	case "all":
		log.Println("Running complete database seeding...")
		err = mainSeeder.SeedAll()
	case "badges":
		log.Println("Seeding badge catalog...")
		err = mainSeeder.SeedBadgesOnly()
	case "games":
		log.Println("Seeding daily challenges...")
		err = mainSeeder.SeedGamesOnly()
	default:
		log.Fatalf("Unknown seed type: %s", *seedType)
	}

	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}

func showHelp() {
	fmt.Println("Database seeder")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  go run ./seed [flags]")
	fmt.Println()
	fmt.Println("Flags:")
	flag.PrintDefaults()
}
