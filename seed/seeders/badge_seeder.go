package seeders

import (
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/geoid-labs/geoid_api/model"
	"github.com/geoid-labs/geoid_api/shared"
)

// BadgeSeeder handles seeding the badge catalog
type BadgeSeeder struct {
	db *gorm.DB
}

// NewBadgeSeeder creates a new badge seeder
func NewBadgeSeeder(db *gorm.DB) *BadgeSeeder {
	return &BadgeSeeder{db: db}
}

// SeedBadges seeds the badge catalog, skipping badges that already exist
func (s *BadgeSeeder) SeedBadges() error {
	badges := s.getBadgeCatalog()

	for _, badge := range badges {
		var existing model.Badge
		if err := s.db.Where("id = ?", badge.ID).First(&existing).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				if err := s.db.Create(&badge).Error; err != nil {
					log.Printf("Error creating badge %s: %v", badge.Name, err)
					return err
				}
				log.Printf("Created badge: %s", badge.Name)
			} else {
				log.Printf("Error checking badge %s: %v", badge.Name, err)
				return err
			}
		} else {
			log.Printf("Badge %s already exists, skipping", badge.Name)
		}
	}

	log.Println("Badge seeding completed successfully")
	return nil
}

// getBadgeCatalog returns the full badge catalog: the daily game badge, the
// streak milestone badges and the locked specials.
func (s *BadgeSeeder) getBadgeCatalog() []model.Badge {
	now := time.Now()

	return []model.Badge{
		{
			ID:          7,
			Name:        "Geo Guesser",
			Description: "Complete a daily geography challenge",
			Category:    shared.CategoryDaily,
			ImageURL:    "/assets/badges/geo-guesser.png",
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          8,
			Name:        "1 Day Streak",
			Description: "Play on one day",
			Category:    shared.CategoryStreak,
			StreakDays:  1,
			ImageURL:    "/assets/badges/1-day-streak.png",
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          9,
			Name:        "3 Day Streak",
			Description: "Play three days in a row",
			Category:    shared.CategoryStreak,
			StreakDays:  3,
			ImageURL:    "/assets/badges/3-day-streak.png",
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          10,
			Name:        "5 Day Streak",
			Description: "Play five days in a row",
			Category:    shared.CategoryStreak,
			StreakDays:  5,
			ImageURL:    "/assets/badges/5-day-streak.png",
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          20,
			Name:        "Founders Badge",
			Description: "Reserved for launch events",
			Category:    shared.CategorySpecial,
			Locked:      true,
			ImageURL:    "/assets/badges/founders.png",
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}
}
