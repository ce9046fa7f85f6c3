package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	appContext "github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/geoid-labs/geoid_api/dto"
	"github.com/geoid-labs/geoid_api/shared"
)

const (
	RoundStateReady  = "ready"
	RoundStateActive = "active"
	RoundStateScored = "scored"
)

// roundSession is the persisted state of one play-through. Only the anchor
// timestamp and the latest guess are stored; everything else is derived from
// the wall clock on read, so a client can crash and resume mid-round.
type roundSession struct {
	StartedAt time.Time          `json:"started_at"`
	Guess     *shared.Coordinate `json:"guess,omitempty"`
}

func (s *roundSession) deadline() time.Time {
	return s.StartedAt.Add(shared.RoundDurationSeconds * time.Second)
}

// RoundStore persists round sessions keyed by profile and game.
type RoundStore interface {
	Load(ctx context.Context, key string) (*roundSession, error)
	Save(ctx context.Context, key string, sess *roundSession, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

type RoundService struct {
	appContext.DefaultService

	sqlSvc *PostgresService

	store RoundStore
	clock Clock
}

const ROUND_SVC = "round_svc"

// sessionTTL keeps abandoned sessions around long enough for a resume to land
// on the scored result before the key ages out.
const sessionTTL = 24 * time.Hour

func (svc RoundService) Id() string {
	return ROUND_SVC
}

func (svc *RoundService) Configure(ctx *appContext.Context) error {
	svc.clock = systemClock{}
	return svc.DefaultService.Configure(ctx)
}

func (svc *RoundService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)

	if svc.store == nil {
		redisSvc := svc.Service(REDIS_SVC).(*RedisService)
		svc.store = &redisRoundStore{redis: redisSvc}
	}
	return nil
}

func roundKey(profileID string, gameID uint64) string {
	return fmt.Sprintf("round:%s:%d", profileID, gameID)
}

// StartRound opens the guess window for the given game. Starting while a
// window is still open is rejected; a session past its deadline is finalized
// first so the expired result is not silently discarded.
func (svc *RoundService) StartRound(ctx context.Context, profileID string, gameID uint64) (*dto.RoundStateResponse, error) {
	if _, err := svc.sqlSvc.GetGame(gameID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError(err, "Game not found")
		}
		return nil, shared.NewInternalError(err, "Failed to load game")
	}

	key := roundKey(profileID, gameID)
	existing, err := svc.store.Load(ctx, key)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to load round")
	}

	now := svc.clock.Now()
	if existing != nil {
		if now.Before(existing.deadline()) {
			return nil, shared.NewBadRequestError(nil, "Round already in progress")
		}
		if _, err := svc.finalize(ctx, key, gameID, existing); err != nil {
			return nil, err
		}
	}

	sess := &roundSession{StartedAt: now}
	if err := svc.store.Save(ctx, key, sess, sessionTTL); err != nil {
		return nil, shared.NewInternalError(err, "Failed to persist round")
	}

	log.WithFields(log.Fields{
		"profile_id": profileID,
		"game_id":    gameID,
	}).Info("Round started")

	return &dto.RoundStateResponse{
		State:            RoundStateActive,
		RemainingSeconds: shared.RoundDurationSeconds,
	}, nil
}

// SubmitGuess replaces the pending guess. Guesses are only accepted while the
// window is open; the last one standing at lock or timeout is scored.
func (svc *RoundService) SubmitGuess(ctx context.Context, profileID string, gameID uint64, guess shared.Coordinate) (*dto.RoundStateResponse, error) {
	if !guess.Valid() {
		return nil, shared.NewBadRequestError(nil, "Coordinate out of range")
	}

	key := roundKey(profileID, gameID)
	sess, err := svc.store.Load(ctx, key)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to load round")
	}
	if sess == nil {
		return nil, shared.NewBadRequestError(nil, "No active round")
	}

	now := svc.clock.Now()
	if !now.Before(sess.deadline()) {
		return nil, shared.NewBadRequestError(nil, "Round is over")
	}

	sess.Guess = &guess
	if err := svc.store.Save(ctx, key, sess, sessionTTL); err != nil {
		return nil, shared.NewInternalError(err, "Failed to persist guess")
	}

	return &dto.RoundStateResponse{
		State:            RoundStateActive,
		RemainingSeconds: sess.deadline().Sub(now).Seconds(),
		Guess:            sess.Guess,
	}, nil
}

// LockRound commits the current guess early and scores it immediately.
func (svc *RoundService) LockRound(ctx context.Context, profileID string, gameID uint64) (*dto.RoundStateResponse, error) {
	key := roundKey(profileID, gameID)
	sess, err := svc.store.Load(ctx, key)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to load round")
	}
	if sess == nil {
		return nil, shared.NewBadRequestError(nil, "No active round")
	}

	return svc.finalize(ctx, key, gameID, sess)
}

// RoundState reconciles the session against the wall clock. A session whose
// deadline has passed is scored on the spot, whether or not the process that
// started it ever came back.
func (svc *RoundService) RoundState(ctx context.Context, profileID string, gameID uint64) (*dto.RoundStateResponse, error) {
	key := roundKey(profileID, gameID)
	sess, err := svc.store.Load(ctx, key)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to load round")
	}
	if sess == nil {
		return &dto.RoundStateResponse{State: RoundStateReady}, nil
	}

	now := svc.clock.Now()
	if now.Before(sess.deadline()) {
		return &dto.RoundStateResponse{
			State:            RoundStateActive,
			RemainingSeconds: sess.deadline().Sub(now).Seconds(),
			Guess:            sess.Guess,
		}, nil
	}

	return svc.finalize(ctx, key, gameID, sess)
}

// finalize scores the session and retires it. With no guess the score is 0;
// with a guess the score is reproduced from the persisted coordinates, so a
// resume after the deadline lands on the same number the live client saw.
func (svc *RoundService) finalize(ctx context.Context, key string, gameID uint64, sess *roundSession) (*dto.RoundStateResponse, error) {
	resp := &dto.RoundStateResponse{State: RoundStateScored}

	game, err := svc.sqlSvc.GetGame(gameID)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to load game")
	}

	truth, err := shared.ParseCoordinates(game.Coords)
	if err != nil {
		log.WithError(err).WithField("game_id", gameID).Warn("Challenge location unparsable, round not scorable")
	} else {
		resp.Scorable = true
	}

	score := 0
	if sess.Guess != nil && truth != nil {
		result := shared.ScoreGuess(*sess.Guess, *truth)
		resp.DistanceKm = result.DistanceKm
		score = result.Score
	}
	resp.Score = &score
	resp.Guess = sess.Guess

	if err := svc.store.Delete(ctx, key); err != nil {
		log.WithError(err).WithField("key", key).Warn("Failed to delete round session")
	}

	return resp, nil
}

// redisRoundStore backs round sessions with redis so sessions survive API
// restarts and are shared across replicas.
type redisRoundStore struct {
	redis *RedisService
}

func (s *redisRoundStore) Load(ctx context.Context, key string) (*roundSession, error) {
	raw, err := s.redis.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, nil
	}

	var sess roundSession
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *redisRoundStore) Save(ctx context.Context, key string, sess *roundSession, ttl time.Duration) error {
	return s.redis.Set(ctx, key, sess, ttl)
}

func (s *redisRoundStore) Delete(ctx context.Context, key string) error {
	return s.redis.Delete(ctx, key)
}
