package dto

import "time"

type BadgeResponse struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	ImageURL    string `json:"image_url,omitempty"`
	Locked      bool   `json:"locked"`
	StreakDays  int    `json:"streak_days,omitempty"`
	Claimed     bool   `json:"claimed"`
}

type BadgeCollectionResponse struct {
	Badges []BadgeResponse `json:"badges"`
}

type ClaimedBadgeResponse struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Locked      bool      `json:"locked"`
	ClaimedAt   time.Time `json:"claimed_at"`
}

// ClaimBadgeRequest optionally overrides the mint recipient. Without an
// address here or on the profile the mint is skipped.
type ClaimBadgeRequest struct {
	Address string `json:"address,omitempty"`
}

// SettleResponse aggregates everything one claim request produced. TxHashes
// holds only confirmed mints, in the order the claims were attempted.
type SettleResponse struct {
	Success       bool                   `json:"success"`
	ClaimedBadges []ClaimedBadgeResponse `json:"claimed_badges"`
	TxHashes      []string               `json:"tx_hashes"`
	Streak        int                    `json:"streak"`
}

type MediaUploadResponse struct {
	URL      string `json:"url"`
	ObjectID string `json:"object_id"`
	Size     int64  `json:"size"`
}
