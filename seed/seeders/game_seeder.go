package seeders

import (
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/geoid-labs/geoid_api/model"
)

// GameSeeder handles seeding daily challenges
type GameSeeder struct {
	db *gorm.DB
}

// NewGameSeeder creates a new game seeder
func NewGameSeeder(db *gorm.DB) *GameSeeder {
	return &GameSeeder{db: db}
}

// SeedGames seeds one challenge per day starting today, skipping existing rows
func (s *GameSeeder) SeedGames() error {
	games := s.getDailyChallenges()

	for _, game := range games {
		var existing model.Game
		if err := s.db.Where("id = ?", game.ID).First(&existing).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				if err := s.db.Create(&game).Error; err != nil {
					log.Printf("Error creating game %s: %v", game.Name, err)
					return err
				}
				log.Printf("Created game: %s (%s)", game.Name, game.Date)
			} else {
				log.Printf("Error checking game %s: %v", game.Name, err)
				return err
			}
		} else {
			log.Printf("Game %s already exists, skipping", game.Name)
		}
	}

	log.Println("Game seeding completed successfully")
	return nil
}

// getDailyChallenges returns a week of launch challenges, one per day.
func (s *GameSeeder) getDailyChallenges() []model.Game {
	now := time.Now()

	locations := []struct {
		name   string
		coords string
	}{
		{"Eiffel Tower", "48.8584,2.2945"},
		{"Statue of Liberty", "40.6892,-74.0445"},
		{"Sydney Opera House", "-33.8568,151.2153"},
		{"Machu Picchu", "-13.1631,-72.5450"},
		{"Great Pyramid of Giza", "29.9792,31.1342"},
		{"Mount Fuji", "35.3606,138.7274"},
		{"Table Mountain", "-33.9628,18.4098"},
	}

	games := make([]model.Game, 0, len(locations))
	for i, loc := range locations {
		day := now.AddDate(0, 0, i)
		games = append(games, model.Game{
			ID:        uint64(i + 1),
			Name:      loc.name,
			Coords:    loc.coords,
			Date:      day.Format("2006-01-02"),
			BadgeID:   7,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	return games
}
