package services

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/geoid-labs/geoid_api/model"
	"github.com/geoid-labs/geoid_api/shared"
)

type memoryRoundStore struct {
	mu       sync.Mutex
	sessions map[string]roundSession
}

func newMemoryRoundStore() *memoryRoundStore {
	return &memoryRoundStore{sessions: map[string]roundSession{}}
}

func (s *memoryRoundStore) Load(_ context.Context, key string) (*roundSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[key]
	if !ok {
		return nil, nil
	}
	cp := sess
	return &cp, nil
}

func (s *memoryRoundStore) Save(_ context.Context, key string, sess *roundSession, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[key] = *sess
	return nil
}

func (s *memoryRoundStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, key)
	return nil
}

var (
	parisTruth  = shared.Coordinate{Lat: 48.8566, Lng: 2.3522}
	londonGuess = shared.Coordinate{Lat: 51.5074, Lng: -0.1278}
)

func newTestRoundService(t *testing.T) (*RoundService, *fakeClock, *PostgresService) {
	t.Helper()

	sqlSvc := newTestDB(t)
	if _, err := sqlSvc.CreateGame(&model.Game{
		ID:     1,
		Name:   "Eiffel Tower",
		Coords: "48.8566,2.3522",
		Date:   "2026-08-20",
	}); err != nil {
		t.Fatalf("failed to seed game: %v", err)
	}

	clock := &fakeClock{now: time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)}
	svc := &RoundService{
		sqlSvc: sqlSvc,
		store:  newMemoryRoundStore(),
		clock:  clock,
	}
	return svc, clock, sqlSvc
}

func TestRoundStartOpensWindow(t *testing.T) {
	svc, clock, _ := newTestRoundService(t)
	ctx := context.Background()

	resp, err := svc.StartRound(ctx, "profile-1", 1)
	if err != nil {
		t.Fatalf("StartRound: %v", err)
	}
	if resp.State != RoundStateActive {
		t.Fatalf("state = %q, want %q", resp.State, RoundStateActive)
	}
	if resp.RemainingSeconds != shared.RoundDurationSeconds {
		t.Fatalf("remaining = %v, want %d", resp.RemainingSeconds, shared.RoundDurationSeconds)
	}

	clock.Advance(30 * time.Second)
	state, err := svc.RoundState(ctx, "profile-1", 1)
	if err != nil {
		t.Fatalf("RoundState: %v", err)
	}
	if state.State != RoundStateActive {
		t.Fatalf("state = %q, want %q", state.State, RoundStateActive)
	}
	if state.RemainingSeconds != 90 {
		t.Fatalf("remaining = %v, want 90", state.RemainingSeconds)
	}
}

func TestRoundStartUnknownGame(t *testing.T) {
	svc, _, _ := newTestRoundService(t)

	_, err := svc.StartRound(context.Background(), "profile-1", 99)
	appErr, ok := shared.GetAppError(err)
	if !ok || appErr.StatusCode != http.StatusNotFound {
		t.Fatalf("want 404 AppError, got %v", err)
	}
}

func TestRoundStartWhileActiveRejected(t *testing.T) {
	svc, _, _ := newTestRoundService(t)
	ctx := context.Background()

	if _, err := svc.StartRound(ctx, "profile-1", 1); err != nil {
		t.Fatalf("StartRound: %v", err)
	}
	_, err := svc.StartRound(ctx, "profile-1", 1)
	appErr, ok := shared.GetAppError(err)
	if !ok || appErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("want 400 AppError, got %v", err)
	}
}

func TestRoundLockScoresImmediately(t *testing.T) {
	svc, clock, _ := newTestRoundService(t)
	ctx := context.Background()

	if _, err := svc.StartRound(ctx, "profile-1", 1); err != nil {
		t.Fatalf("StartRound: %v", err)
	}
	clock.Advance(10 * time.Second)
	if _, err := svc.SubmitGuess(ctx, "profile-1", 1, parisTruth); err != nil {
		t.Fatalf("SubmitGuess: %v", err)
	}

	resp, err := svc.LockRound(ctx, "profile-1", 1)
	if err != nil {
		t.Fatalf("LockRound: %v", err)
	}
	if resp.State != RoundStateScored {
		t.Fatalf("state = %q, want %q", resp.State, RoundStateScored)
	}
	if resp.Score == nil || *resp.Score != shared.MaxScore {
		t.Fatalf("score = %v, want %d", resp.Score, shared.MaxScore)
	}
	if !resp.Scorable {
		t.Fatal("round should be scorable")
	}

	// session retired, next read starts fresh
	state, err := svc.RoundState(ctx, "profile-1", 1)
	if err != nil {
		t.Fatalf("RoundState: %v", err)
	}
	if state.State != RoundStateReady {
		t.Fatalf("state after lock = %q, want %q", state.State, RoundStateReady)
	}
}

func TestRoundTimeoutWithoutGuessScoresZero(t *testing.T) {
	svc, clock, _ := newTestRoundService(t)
	ctx := context.Background()

	if _, err := svc.StartRound(ctx, "profile-1", 1); err != nil {
		t.Fatalf("StartRound: %v", err)
	}
	clock.Advance(shared.RoundDurationSeconds*time.Second + time.Second)

	resp, err := svc.RoundState(ctx, "profile-1", 1)
	if err != nil {
		t.Fatalf("RoundState: %v", err)
	}
	if resp.State != RoundStateScored {
		t.Fatalf("state = %q, want %q", resp.State, RoundStateScored)
	}
	if resp.Score == nil || *resp.Score != 0 {
		t.Fatalf("score = %v, want 0", resp.Score)
	}
	if resp.DistanceKm != nil {
		t.Fatalf("distance = %v, want nil", *resp.DistanceKm)
	}
}

func TestRoundResumeReproducesGuessScore(t *testing.T) {
	svc, clock, _ := newTestRoundService(t)
	ctx := context.Background()

	if _, err := svc.StartRound(ctx, "profile-1", 1); err != nil {
		t.Fatalf("StartRound: %v", err)
	}
	if _, err := svc.SubmitGuess(ctx, "profile-1", 1, londonGuess); err != nil {
		t.Fatalf("SubmitGuess: %v", err)
	}

	// simulate a crash: nothing touches the session until well past the deadline
	clock.Advance(1 * time.Hour)

	resp, err := svc.RoundState(ctx, "profile-1", 1)
	if err != nil {
		t.Fatalf("RoundState: %v", err)
	}
	if resp.State != RoundStateScored {
		t.Fatalf("state = %q, want %q", resp.State, RoundStateScored)
	}

	want := shared.ScoreGuess(londonGuess, parisTruth)
	if resp.Score == nil || *resp.Score != want.Score {
		t.Fatalf("score = %v, want %d", resp.Score, want.Score)
	}
	if resp.DistanceKm == nil || *resp.DistanceKm != *want.DistanceKm {
		t.Fatalf("distance = %v, want %v", resp.DistanceKm, *want.DistanceKm)
	}
}

func TestRoundGuessAfterDeadlineRejected(t *testing.T) {
	svc, clock, _ := newTestRoundService(t)
	ctx := context.Background()

	if _, err := svc.StartRound(ctx, "profile-1", 1); err != nil {
		t.Fatalf("StartRound: %v", err)
	}
	clock.Advance(shared.RoundDurationSeconds*time.Second + time.Second)

	_, err := svc.SubmitGuess(ctx, "profile-1", 1, londonGuess)
	appErr, ok := shared.GetAppError(err)
	if !ok || appErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("want 400 AppError, got %v", err)
	}

	// rejection must not consume the session; the scored result is still there
	resp, err := svc.RoundState(ctx, "profile-1", 1)
	if err != nil {
		t.Fatalf("RoundState: %v", err)
	}
	if resp.State != RoundStateScored || resp.Score == nil || *resp.Score != 0 {
		t.Fatalf("state = %q score = %v, want scored with 0", resp.State, resp.Score)
	}
}

func TestRoundGuessOutOfRange(t *testing.T) {
	svc, _, _ := newTestRoundService(t)
	ctx := context.Background()

	if _, err := svc.StartRound(ctx, "profile-1", 1); err != nil {
		t.Fatalf("StartRound: %v", err)
	}
	_, err := svc.SubmitGuess(ctx, "profile-1", 1, shared.Coordinate{Lat: 91, Lng: 0})
	appErr, ok := shared.GetAppError(err)
	if !ok || appErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("want 400 AppError, got %v", err)
	}
}

func TestRoundUnparsableLocationNotScorable(t *testing.T) {
	svc, clock, sqlSvc := newTestRoundService(t)
	ctx := context.Background()

	if _, err := sqlSvc.CreateGame(&model.Game{
		ID:     2,
		Name:   "Broken",
		Coords: "not-a-coordinate",
		Date:   "2026-08-21",
	}); err != nil {
		t.Fatalf("failed to seed game: %v", err)
	}

	if _, err := svc.StartRound(ctx, "profile-1", 2); err != nil {
		t.Fatalf("StartRound: %v", err)
	}
	if _, err := svc.SubmitGuess(ctx, "profile-1", 2, londonGuess); err != nil {
		t.Fatalf("SubmitGuess: %v", err)
	}
	clock.Advance(shared.RoundDurationSeconds*time.Second + time.Second)

	resp, err := svc.RoundState(ctx, "profile-1", 2)
	if err != nil {
		t.Fatalf("RoundState: %v", err)
	}
	if resp.Scorable {
		t.Fatal("round with unparsable location must not be scorable")
	}
	if resp.Score == nil || *resp.Score != 0 {
		t.Fatalf("score = %v, want 0", resp.Score)
	}
}
