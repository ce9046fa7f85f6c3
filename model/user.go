package model

import "time"

// Profile is an authenticated player. Identity is verified upstream; the
// backend only ever sees the fid carried in the JWT.
type Profile struct {
	ID             string     `json:"id" gorm:"primaryKey"`
	Fid            string     `json:"fid" gorm:"uniqueIndex;not null"`
	PrimaryAddress string     `json:"primary_address"`
	Streak         int        `json:"streak" gorm:"default:0"`
	LastSignIn     *time.Time `json:"last_sign_in"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
