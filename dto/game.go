package dto

import "time"

type SaveGameRequest struct {
	GameID uint64 `json:"game_id" validate:"required"`
	Score  int    `json:"score" validate:"gte=0,lte=5000"`
}

type SaveGameResponse struct {
	GameResult GameResultResponse `json:"game_result"`
	NewStreak  int                `json:"new_streak"`
}

// GameResponse describes a challenge. Coords carries the true location and is
// only populated for finished games (history, results); today's challenge is
// served without it.
type GameResponse struct {
	ID      uint64 `json:"id"`
	Name    string `json:"name"`
	Date    string `json:"date"`
	BadgeID uint64 `json:"badge_id"`
	Coords  string `json:"coords,omitempty"`
}

type GameResultResponse struct {
	ID        string       `json:"id"`
	Score     int          `json:"score"`
	CreatedAt time.Time    `json:"created_at"`
	Game      GameResponse `json:"game"`
}

type GameHistoryResponse struct {
	Games []GameResultResponse `json:"games"`
}

type ProfileResponse struct {
	Fid            string               `json:"fid"`
	PrimaryAddress string               `json:"primary_address,omitempty"`
	LastSignIn     *time.Time           `json:"last_sign_in,omitempty"`
	Streak         int                  `json:"streak"`
	Games          []GameResultResponse `json:"games"`
	Badges         []BadgeResponse      `json:"badges"`
}
