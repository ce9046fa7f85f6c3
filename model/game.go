package model

import "time"

// Game is one daily challenge. Coords is the true location stored as a
// "lat,lng" string; if it fails to parse the round is unscorable.
type Game struct {
	ID        uint64    `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null"`
	Coords    string    `json:"coords"`
	Date      string    `json:"date" gorm:"index;not null"` // calendar date, YYYY-MM-DD
	BadgeID   uint64    `json:"badge_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserGame is one completed play of a challenge.
type UserGame struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"index;not null"`
	GameID    uint64    `json:"game_id" gorm:"not null"`
	Score     int       `json:"score" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`

	Game Game `json:"game" gorm:"foreignKey:GameID"`
}
