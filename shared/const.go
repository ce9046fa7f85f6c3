package shared

const (
	UserID         = "user_id"
	PrimaryAddress = "primary_address"

	CategoryDaily   = "daily"
	CategoryStreak  = "streak"
	CategorySpecial = "special"

	MintStatusSkipped   = "skipped"
	MintStatusSubmitted = "submitted"
	MintStatusConfirmed = "confirmed"
	MintStatusFailed    = "failed"
)

// RoundDurationSeconds is the guess window for a single round.
const RoundDurationSeconds = 120
