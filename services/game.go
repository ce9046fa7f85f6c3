package services

import (
	"context"
	"errors"

	appContext "github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/geoid-labs/geoid_api/dto"
	"github.com/geoid-labs/geoid_api/model"
	"github.com/geoid-labs/geoid_api/shared"
)

// GameService serves the daily challenge, records finished plays and renders
// play history and profile summaries.
type GameService struct {
	appContext.DefaultService

	sqlSvc    *PostgresService
	ledgerSvc *BadgeLedgerService

	clock Clock
}

const GAME_SVC = "game_svc"

func (svc GameService) Id() string {
	return GAME_SVC
}

func (svc *GameService) Configure(ctx *appContext.Context) error {
	svc.clock = systemClock{}
	return svc.DefaultService.Configure(ctx)
}

func (svc *GameService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.ledgerSvc = svc.Service(BADGE_LEDGER_SVC).(*BadgeLedgerService)
	return nil
}

// TodayGame returns the challenge for the current calendar date. The true
// location stays server-side until the round is over.
func (svc *GameService) TodayGame() (*dto.GameResponse, error) {
	game, err := svc.sqlSvc.GetGameByDate(DateOf(svc.clock.Now()))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError(err, "No challenge available today")
		}
		return nil, shared.NewInternalError(err, "Failed to load today's challenge")
	}

	return &dto.GameResponse{
		ID:      game.ID,
		Name:    game.Name,
		Date:    game.Date,
		BadgeID: game.BadgeID,
	}, nil
}

// SaveResult records a finished play and refreshes the cached streak.
func (svc *GameService) SaveResult(profileID string, req *dto.SaveGameRequest) (*dto.SaveGameResponse, error) {
	game, err := svc.sqlSvc.GetGame(req.GameID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError(err, "Game not found")
		}
		return nil, shared.NewInternalError(err, "Failed to load game")
	}

	userGame, err := svc.sqlSvc.CreateUserGame(&model.UserGame{
		UserID: profileID,
		GameID: game.ID,
		Score:  req.Score,
	})
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to save game result")
	}

	streak := 0
	dates, err := svc.sqlSvc.GetUserPlayDates(profileID)
	if err != nil {
		log.WithError(err).WithField("profile_id", profileID).Warn("Failed to load play dates")
	} else {
		streak = ConsecutiveDayStreak(dates, DateOf(svc.clock.Now()))
		if err := svc.sqlSvc.UpdateProfileStreak(profileID, streak); err != nil {
			log.WithError(err).WithField("profile_id", profileID).Warn("Failed to cache profile streak")
		}
	}

	return &dto.SaveGameResponse{
		GameResult: toGameResult(userGame, game),
		NewStreak:  streak,
	}, nil
}

// History lists the profile's finished plays, newest first, with the true
// locations revealed.
func (svc *GameService) History(profileID string) (*dto.GameHistoryResponse, error) {
	userGames, err := svc.sqlSvc.GetUserGames(profileID)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to load game history")
	}

	resp := &dto.GameHistoryResponse{Games: make([]dto.GameResultResponse, 0, len(userGames))}
	for i := range userGames {
		resp.Games = append(resp.Games, toGameResult(&userGames[i], &userGames[i].Game))
	}
	return resp, nil
}

// ProfileSummary aggregates everything the profile screen shows.
func (svc *GameService) ProfileSummary(ctx context.Context, profileID string) (*dto.ProfileResponse, error) {
	profile, err := svc.sqlSvc.GetProfile(profileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError(err, "Profile not found")
		}
		return nil, shared.NewInternalError(err, "Failed to load profile")
	}

	history, err := svc.History(profileID)
	if err != nil {
		return nil, err
	}

	badges, err := svc.ledgerSvc.ListWithClaimed(ctx, profileID)
	if err != nil {
		return nil, err
	}

	return &dto.ProfileResponse{
		Fid:            profile.Fid,
		PrimaryAddress: profile.PrimaryAddress,
		LastSignIn:     profile.LastSignIn,
		Streak:         profile.Streak,
		Games:          history.Games,
		Badges:         badges.Badges,
	}, nil
}

func toGameResult(userGame *model.UserGame, game *model.Game) dto.GameResultResponse {
	return dto.GameResultResponse{
		ID:        userGame.ID,
		Score:     userGame.Score,
		CreatedAt: userGame.CreatedAt,
		Game: dto.GameResponse{
			ID:      game.ID,
			Name:    game.Name,
			Date:    game.Date,
			BadgeID: game.BadgeID,
			Coords:  game.Coords,
		},
	}
}
