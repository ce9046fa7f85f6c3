package services

import (
	"context"
	"errors"
	"time"

	appContext "github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/geoid-labs/geoid_api/dto"
	"github.com/geoid-labs/geoid_api/model"
	"github.com/geoid-labs/geoid_api/shared"
)

// SettlementService runs the post-game pipeline: claim the game badge, mint
// it, recompute the streak, and award any streak milestone badge reached.
// Only the authoritative claim can fail the pipeline; minting and streak
// follow-ups degrade to log lines.
type SettlementService struct {
	appContext.DefaultService

	sqlSvc    *PostgresService
	ledgerSvc *BadgeLedgerService
	mintSvc   *MintService

	clock Clock
}

const SETTLEMENT_SVC = "settlement_svc"

func (svc SettlementService) Id() string {
	return SETTLEMENT_SVC
}

func (svc *SettlementService) Configure(ctx *appContext.Context) error {
	svc.clock = systemClock{}
	return svc.DefaultService.Configure(ctx)
}

func (svc *SettlementService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.ledgerSvc = svc.Service(BADGE_LEDGER_SVC).(*BadgeLedgerService)
	svc.mintSvc = svc.Service(MINT_SVC).(*MintService)
	return nil
}

// Settle claims the given game badge for the profile and settles everything
// that follows from it. The response aggregates each badge awarded during
// this call, in order, plus the tx hashes of the mints that confirmed.
func (svc *SettlementService) Settle(ctx context.Context, profileID string, gameBadgeID uint64, chainAddress string) (*dto.SettleResponse, error) {
	start := time.Now()
	defer func() { observeSettlement(time.Since(start)) }()

	award, badge, err := svc.ledgerSvc.Claim(profileID, gameBadgeID)
	if err != nil {
		return nil, err
	}

	resp := &dto.SettleResponse{
		Success:       true,
		ClaimedBadges: []dto.ClaimedBadgeResponse{toClaimedBadge(badge, award)},
		TxHashes:      []string{},
	}

	receipt := svc.mintSvc.MintBadge(ctx, award, badge, chainAddress)
	if receipt.Status == shared.MintStatusConfirmed {
		resp.TxHashes = append(resp.TxHashes, receipt.TxHash)
	}

	resp.Streak = svc.recomputeStreak(profileID)

	if StreakMilestones[resp.Streak] {
		svc.settleStreakBadge(ctx, profileID, resp.Streak, chainAddress, resp)
	}

	log.WithFields(log.Fields{
		"profile_id": profileID,
		"badge_id":   gameBadgeID,
		"streak":     resp.Streak,
		"claimed":    len(resp.ClaimedBadges),
	}).Info("Settlement complete")

	return resp, nil
}

// recomputeStreak derives the streak from play history and caches it on the
// profile. Failures fall back to 0 rather than aborting a committed claim.
func (svc *SettlementService) recomputeStreak(profileID string) int {
	dates, err := svc.sqlSvc.GetUserPlayDates(profileID)
	if err != nil {
		log.WithError(err).WithField("profile_id", profileID).Warn("Failed to load play dates, streak defaults to 0")
		return 0
	}

	streak := ConsecutiveDayStreak(dates, DateOf(svc.clock.Now()))

	if err := svc.sqlSvc.UpdateProfileStreak(profileID, streak); err != nil {
		log.WithError(err).WithField("profile_id", profileID).Warn("Failed to cache profile streak")
	}
	return streak
}

// settleStreakBadge awards the milestone badge for the given streak. The
// profile may well have claimed it on an earlier settlement; that conflict is
// expected and swallowed. Anything else is logged and skipped so the game
// badge claim still settles.
func (svc *SettlementService) settleStreakBadge(ctx context.Context, profileID string, streak int, chainAddress string, resp *dto.SettleResponse) {
	streakBadge, err := svc.sqlSvc.GetBadgeByStreakDays(streak)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.WithField("streak", streak).Warn("No badge configured for streak milestone")
		} else {
			log.WithError(err).Warn("Failed to load streak badge")
		}
		return
	}

	award, badge, err := svc.ledgerSvc.Claim(profileID, streakBadge.ID)
	if err != nil {
		if appErr, ok := shared.GetAppError(err); ok && appErr.Code == shared.ErrCodeAlreadyClaimed {
			return
		}
		log.WithError(err).WithFields(log.Fields{
			"profile_id": profileID,
			"badge_id":   streakBadge.ID,
		}).Warn("Streak badge claim failed")
		return
	}

	resp.ClaimedBadges = append(resp.ClaimedBadges, toClaimedBadge(badge, award))

	receipt := svc.mintSvc.MintBadge(ctx, award, badge, chainAddress)
	if receipt.Status == shared.MintStatusConfirmed {
		resp.TxHashes = append(resp.TxHashes, receipt.TxHash)
	}
}

func toClaimedBadge(badge *model.Badge, award *model.UserBadge) dto.ClaimedBadgeResponse {
	return dto.ClaimedBadgeResponse{
		ID:          badge.ID,
		Name:        badge.Name,
		Description: badge.Description,
		Category:    badge.Category,
		Locked:      badge.Locked,
		ClaimedAt:   award.ClaimedAt,
	}
}
