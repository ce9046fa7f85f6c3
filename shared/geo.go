package shared

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	earthRadiusKm = 6371

	// maxDistanceKm scales the score decay; roughly half the Earth's circumference.
	maxDistanceKm = 20000

	MaxScore = 5000
)

// Coordinate is a point in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// ScoreResult is the outcome of scoring a guess against the true location.
// Distance is nil when no guess was made or the truth was unparsable.
type ScoreResult struct {
	DistanceKm *float64 `json:"distance_km,omitempty"`
	Score      int      `json:"score"`
}

// ParseCoordinates parses a stored "lat,lng" string. Challenge locations are
// stored in this form; a malformed value means the round cannot be scored.
func ParseCoordinates(s string) (*Coordinate, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return nil, fmt.Errorf("expected \"lat,lng\", got %q", s)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid latitude %q: %w", parts[0], err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid longitude %q: %w", parts[1], err)
	}

	coord := Coordinate{Lat: lat, Lng: lng}
	if !coord.Valid() {
		return nil, fmt.Errorf("coordinate out of range: %v", coord)
	}
	return &coord, nil
}

// HaversineKm returns the great-circle distance between two points in km.
func HaversineKm(a, b Coordinate) float64 {
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Lat*math.Pi/180)*math.Cos(b.Lat*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c
}

// Score maps a distance to a 0-5000 score with exponential decay. The curve is
// intentionally unclamped below 5000: a linear cutoff would flatten mid-range
// distances and change competitive ordering.
func Score(distanceKm float64) int {
	return int(math.Round(MaxScore * math.Exp(-10*distanceKm/maxDistanceKm)))
}

// ScoreGuess scores a guess against the true location.
func ScoreGuess(guess, truth Coordinate) ScoreResult {
	d := HaversineKm(guess, truth)
	return ScoreResult{DistanceKm: &d, Score: Score(d)}
}
