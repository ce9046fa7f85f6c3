package dto

import "github.com/geoid-labs/geoid_api/shared"

type GuessRequest struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" validate:"gte=-180,lte=180"`
}

type RoundStateResponse struct {
	State            string             `json:"state"`
	RemainingSeconds float64            `json:"remaining_seconds"`
	Guess            *shared.Coordinate `json:"guess,omitempty"`
	DistanceKm       *float64           `json:"distance_km,omitempty"`
	Score            *int               `json:"score,omitempty"`
	Scorable         bool               `json:"scorable"`
}
