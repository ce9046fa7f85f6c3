package handlers

import (
	"context"
	"mime/multipart"

	"github.com/geoid-labs/geoid_api/dto"
	"github.com/geoid-labs/geoid_api/shared"
)

type GameServiceInterface interface {
	TodayGame() (*dto.GameResponse, error)
	SaveResult(profileID string, req *dto.SaveGameRequest) (*dto.SaveGameResponse, error)
	History(profileID string) (*dto.GameHistoryResponse, error)
	ProfileSummary(ctx context.Context, profileID string) (*dto.ProfileResponse, error)
}

type BadgeLedgerInterface interface {
	ListWithClaimed(ctx context.Context, profileID string) (*dto.BadgeCollectionResponse, error)
}

type SettlementServiceInterface interface {
	Settle(ctx context.Context, profileID string, badgeID uint64, chainAddress string) (*dto.SettleResponse, error)
}

type RoundServiceInterface interface {
	StartRound(ctx context.Context, profileID string, gameID uint64) (*dto.RoundStateResponse, error)
	SubmitGuess(ctx context.Context, profileID string, gameID uint64, guess shared.Coordinate) (*dto.RoundStateResponse, error)
	LockRound(ctx context.Context, profileID string, gameID uint64) (*dto.RoundStateResponse, error)
	RoundState(ctx context.Context, profileID string, gameID uint64) (*dto.RoundStateResponse, error)
}

type MediaServiceInterface interface {
	UploadBadgeArtwork(badgeID uint64, file *multipart.FileHeader) (*dto.MediaUploadResponse, error)
}
