package model

import "time"

// Badge is a catalog entry. StreakDays > 0 marks a streak milestone badge
// awarded implicitly when a profile's streak reaches that value.
type Badge struct {
	ID          uint64    `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description"`
	Category    string    `json:"category"` // daily, streak, special
	ImageURL    string    `json:"image_url"`
	Locked      bool      `json:"locked" gorm:"default:false"`
	StreakDays  int       `json:"streak_days" gorm:"default:0"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UserBadge records that a profile owns a badge. The composite unique index is
// what makes claims race-safe: concurrent duplicates fall out as a constraint
// violation rather than a second row.
type UserBadge struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"not null;uniqueIndex:idx_user_badge"`
	BadgeID   uint64    `json:"badge_id" gorm:"not null;uniqueIndex:idx_user_badge"`
	ClaimedAt time.Time `json:"claimed_at"`
	CreatedAt time.Time `json:"created_at"`

	Badge Badge `json:"badge" gorm:"foreignKey:BadgeID"`
}

// MintReceipt is the side record of a best-effort on-chain mint. Its absence
// or failure never invalidates the UserBadge it refers to.
type MintReceipt struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	UserBadgeID  string    `json:"user_badge_id" gorm:"index;not null"`
	BadgeID      uint64    `json:"badge_id" gorm:"not null"`
	ChainAddress string    `json:"chain_address"`
	Status       string    `json:"status" gorm:"not null"` // skipped, submitted, confirmed, failed
	TxHash       string    `json:"tx_hash"`
	Error        string    `json:"error"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
