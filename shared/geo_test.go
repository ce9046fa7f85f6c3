package shared

import (
	"math"
	"testing"
)

func TestHaversineKm(t *testing.T) {
	// Paris to London is roughly 344 km.
	paris := Coordinate{Lat: 48.8566, Lng: 2.3522}
	london := Coordinate{Lat: 51.5074, Lng: -0.1278}

	d := HaversineKm(paris, london)
	if d < 330 || d > 360 {
		t.Fatalf("unexpected distance: %v", d)
	}
}

func TestHaversineKmZero(t *testing.T) {
	p := Coordinate{Lat: -33.8688, Lng: 151.2093}
	if d := HaversineKm(p, p); d != 0 {
		t.Fatalf("distance to self = %v, want 0", d)
	}
}

func TestScorePerfectGuess(t *testing.T) {
	coords := []Coordinate{
		{Lat: 0, Lng: 0},
		{Lat: 48.8566, Lng: 2.3522},
		{Lat: -90, Lng: 180},
	}
	for _, c := range coords {
		res := ScoreGuess(c, c)
		if res.Score != MaxScore {
			t.Fatalf("score(%v, %v) = %d, want %d", c, c, res.Score, MaxScore)
		}
		if res.DistanceKm == nil || *res.DistanceKm != 0 {
			t.Fatalf("expected zero distance, got %v", res.DistanceKm)
		}
	}
}

func TestScoreMonotonicDecay(t *testing.T) {
	prev := MaxScore + 1
	for _, d := range []float64{0, 1, 10, 100, 500, 1000, 2500, 5000, 10000, 20000} {
		s := Score(d)
		if s > prev {
			t.Fatalf("score increased at distance %v: %d > %d", d, s, prev)
		}
		if s < 0 {
			t.Fatalf("negative score at distance %v: %d", d, s)
		}
		prev = s
	}
}

func TestScoreNoLinearClamp(t *testing.T) {
	// The curve must stay exponential: halfway around the globe still scores
	// round(5000*e^-5), not zero.
	want := int(math.Round(5000 * math.Exp(-5)))
	if got := Score(10000); got != want {
		t.Fatalf("Score(10000) = %d, want %d", got, want)
	}
}

func TestParseCoordinates(t *testing.T) {
	tests := []struct {
		in      string
		want    *Coordinate
		wantErr bool
	}{
		{"48.8566, 2.3522", &Coordinate{Lat: 48.8566, Lng: 2.3522}, false},
		{"-33.8688,151.2093", &Coordinate{Lat: -33.8688, Lng: 151.2093}, false},
		{"", nil, true},
		{"48.85", nil, true},
		{"abc,def", nil, true},
		{"91.0,10.0", nil, true},
		{"45.0,181.0", nil, true},
	}

	for _, tt := range tests {
		got, err := ParseCoordinates(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("ParseCoordinates(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseCoordinates(%q): %v", tt.in, err)
		}
		if got.Lat != tt.want.Lat || got.Lng != tt.want.Lng {
			t.Fatalf("ParseCoordinates(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
