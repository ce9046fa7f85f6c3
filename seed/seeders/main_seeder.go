package seeders

import (
	"log"

	"gorm.io/gorm"
)

// MainSeeder coordinates all seeding operations
type MainSeeder struct {
	db *gorm.DB
}

// NewMainSeeder creates a new main seeder
func NewMainSeeder(db *gorm.DB) *MainSeeder {
	return &MainSeeder{db: db}
}

// SeedAll runs all seeders in the correct order
func (s *MainSeeder) SeedAll() error {
	log.Println("Starting database seeding...")

	// 1. Badges first: games reference the daily badge
	badgeSeeder := NewBadgeSeeder(s.db)
	if err := badgeSeeder.SeedBadges(); err != nil {
		log.Printf("Badge seeding failed: %v", err)
		return err
	}

	// 2. Daily challenges
	gameSeeder := NewGameSeeder(s.db)
	if err := gameSeeder.SeedGames(); err != nil {
		log.Printf("Game seeding failed: %v", err)
		return err
	}

	log.Println("Database seeding completed successfully!")
	return nil
}

// SeedBadgesOnly seeds only the badge catalog
func (s *MainSeeder) SeedBadgesOnly() error {
	badgeSeeder := NewBadgeSeeder(s.db)
	return badgeSeeder.SeedBadges()
}

// SeedGamesOnly seeds only the daily challenges
func (s *MainSeeder) SeedGamesOnly() error {
	gameSeeder := NewGameSeeder(s.db)
	return gameSeeder.SeedGames()
}
