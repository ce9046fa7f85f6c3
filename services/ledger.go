package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	appContext "github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/geoid-labs/geoid_api/dto"
	"github.com/geoid-labs/geoid_api/model"
	"github.com/geoid-labs/geoid_api/shared"
)

// BadgeLedgerService owns badge awards. A claim is at-most-once per profile
// and badge; the unique index on user_badges is the arbiter, not a
// read-then-write check, so racing claims cannot double-award.
type BadgeLedgerService struct {
	appContext.DefaultService

	sqlSvc   *PostgresService
	redisSvc *RedisService
}

const BADGE_LEDGER_SVC = "badge_ledger_svc"

const (
	badgeCatalogKey = "badges:catalog"
	badgeCatalogTTL = 10 * time.Minute
)

func (svc BadgeLedgerService) Id() string {
	return BADGE_LEDGER_SVC
}

func (svc *BadgeLedgerService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.redisSvc = svc.Service(REDIS_SVC).(*RedisService)
	return nil
}

// Claim awards the badge to the profile. Outcomes map to stable error codes:
// BADGE_NOT_FOUND, BADGE_LOCKED, ALREADY_CLAIMED.
func (svc *BadgeLedgerService) Claim(profileID string, badgeID uint64) (*model.UserBadge, *model.Badge, error) {
	badge, err := svc.sqlSvc.GetBadge(badgeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			recordClaim("not_found")
			return nil, nil, shared.NewAppError(http.StatusNotFound, shared.ErrCodeBadgeNotFound, err, "Badge not found")
		}
		return nil, nil, shared.NewInternalError(err, "Failed to load badge")
	}

	if badge.Locked {
		recordClaim("locked")
		return nil, nil, shared.NewAppError(http.StatusBadRequest, shared.ErrCodeBadgeLocked, nil, "Badge is not claimable yet")
	}

	award := &model.UserBadge{
		UserID:  profileID,
		BadgeID: badgeID,
	}
	if err := svc.sqlSvc.CreateUserBadge(award); err != nil {
		if IsDuplicateKey(err) {
			recordClaim("already_claimed")
			return nil, nil, shared.NewAppError(http.StatusConflict, shared.ErrCodeAlreadyClaimed, err, "Badge already claimed")
		}
		recordClaim("error")
		return nil, nil, shared.NewInternalError(err, "Failed to record claim")
	}

	recordClaim("awarded")
	log.WithFields(log.Fields{
		"profile_id": profileID,
		"badge_id":   badgeID,
		"badge_name": badge.Name,
	}).Info("Badge claimed")

	return award, badge, nil
}

// Catalog returns the full badge list, served from the redis cache when warm.
func (svc *BadgeLedgerService) Catalog(ctx context.Context) ([]model.Badge, error) {
	if svc.redisSvc != nil {
		var cached []model.Badge
		if err := svc.redisSvc.GetJSON(ctx, badgeCatalogKey, &cached); err != nil {
			log.WithError(err).Warn("Badge catalog cache read failed")
		} else if len(cached) > 0 {
			return cached, nil
		}
	}

	badges, err := svc.sqlSvc.GetBadges()
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to load badges")
	}

	if svc.redisSvc != nil && len(badges) > 0 {
		if err := svc.redisSvc.Set(ctx, badgeCatalogKey, badges, badgeCatalogTTL); err != nil {
			log.WithError(err).Warn("Badge catalog cache write failed")
		}
	}
	return badges, nil
}

// ListWithClaimed renders the catalog annotated with the profile's awards.
func (svc *BadgeLedgerService) ListWithClaimed(ctx context.Context, profileID string) (*dto.BadgeCollectionResponse, error) {
	badges, err := svc.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	awards, err := svc.sqlSvc.GetUserBadges(profileID)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to load claimed badges")
	}

	claimed := make(map[uint64]bool, len(awards))
	for _, a := range awards {
		claimed[a.BadgeID] = true
	}

	resp := &dto.BadgeCollectionResponse{Badges: make([]dto.BadgeResponse, 0, len(badges))}
	for _, b := range badges {
		resp.Badges = append(resp.Badges, dto.BadgeResponse{
			ID:          b.ID,
			Name:        b.Name,
			Description: b.Description,
			Category:    b.Category,
			ImageURL:    b.ImageURL,
			Locked:      b.Locked,
			StreakDays:  b.StreakDays,
			Claimed:     claimed[b.ID],
		})
	}
	return resp, nil
}
