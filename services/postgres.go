package services

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/geoid-labs/geoid_api/model"
)

type PostgresService struct {
	context.DefaultService
	db *gorm.DB

	database string
}

const POSTGRES_SVC = "postgres_svc"

// Id returns Service ID
func (ds PostgresService) Id() string {
	return POSTGRES_SVC
}

// Db Access to raw PostgresService db
func (ds PostgresService) Db() *gorm.DB {
	return ds.db
}

// Configure the service
func (ds *PostgresService) Configure(ctx *context.Context) error {
	ds.database = os.Getenv("DB_DATABASE")

	return ds.DefaultService.Configure(ctx)
}

// Start the service and open connection to the database
// Migrate any tables that have changed since last runtime
func (ds *PostgresService) Start() (err error) {
	maxRetries := 10
	retryDelay := time.Second

	for attempt := 1; attempt <= maxRetries; attempt++ {
		log.Printf("Attempting to connect to database (attempt %d/%d)...", attempt, maxRetries)

		ds.db, err = gorm.Open(postgres.Open(ds.database), &gorm.Config{
			Logger:         logger.Default.LogMode(logger.Error),
			TranslateError: true,
		})

		if err == nil {
			sqlDB, dbErr := ds.db.DB()
			if dbErr == nil {
				if pingErr := sqlDB.Ping(); pingErr == nil {
					log.Println("Successfully connected to database")
					break
				} else {
					err = pingErr
				}
			} else {
				err = dbErr
			}
		}

		if attempt == maxRetries {
			log.Printf("Failed to connect to database after %d attempts: %v", maxRetries, err)
			return err
		}

		time.Sleep(retryDelay)
		retryDelay *= 2
	}

	return ds.migrate()
}

func (ds *PostgresService) migrate() error {
	models := []interface{}{
		&model.Profile{},
		&model.Game{},
		&model.UserGame{},
		&model.Badge{},
		&model.UserBadge{},
		&model.MintReceipt{},
	}

	if err := ds.db.AutoMigrate(models...); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		return err
	}

	log.Println("Database connected and migrated successfully")
	return nil
}

func (ds *PostgresService) Shutdown() {
}

// IsDuplicateKey reports whether err is a unique constraint violation. The
// badge ledger relies on this to turn a racing duplicate insert into an
// already-claimed outcome.
func IsDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value violates unique constraint") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

func (ds *PostgresService) HandleError(err error) error {
	if err == nil {
		return nil
	}

	var statusCode int
	var errorType string

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		statusCode = http.StatusNotFound
		errorType = "NOT_FOUND"
	case IsDuplicateKey(err):
		statusCode = http.StatusConflict
		errorType = "CONFLICT"
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		statusCode = http.StatusBadRequest
		errorType = "FOREIGN_KEY_VIOLATION"
	case errors.Is(err, gorm.ErrInvalidTransaction):
		statusCode = http.StatusInternalServerError
		errorType = "TRANSACTION_ERROR"
	default:
		statusCode = http.StatusInternalServerError
		errorType = "INTERNAL_ERROR"
	}

	logEntry := log.WithFields(log.Fields{
		"status_code": statusCode,
		"error_type":  errorType,
		"error":       err.Error(),
	})

	if statusCode >= 500 {
		logEntry.Error("Database error occurred")
	} else {
		logEntry.Warn("Database operation failed")
	}

	return fmt.Errorf("%s: %w", errorType, err)
}

// ==================== PROFILE METHODS ====================

func (ds *PostgresService) GetProfileByFid(fid string) (*model.Profile, error) {
	var profile model.Profile
	if err := ds.db.Where("fid = ?", fid).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (ds *PostgresService) GetProfile(id string) (*model.Profile, error) {
	var profile model.Profile
	if err := ds.db.Where("id = ?", id).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (ds *PostgresService) CreateProfile(profile *model.Profile) (*model.Profile, error) {
	if profile.ID == "" {
		id, _ := uuid.NewV7()
		profile.ID = id.String()
	}
	profile.CreatedAt = time.Now()
	profile.UpdatedAt = time.Now()

	if err := ds.db.Create(profile).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return profile, nil
}

func (ds *PostgresService) TouchLastSignIn(profileID string) error {
	now := time.Now()
	if err := ds.db.Model(&model.Profile{}).Where("id = ?", profileID).
		Updates(map[string]interface{}{"last_sign_in": now, "updated_at": now}).Error; err != nil {
		return ds.HandleError(err)
	}
	return nil
}

func (ds *PostgresService) UpdateProfileAddress(profileID string, address string) error {
	if err := ds.db.Model(&model.Profile{}).Where("id = ?", profileID).
		Updates(map[string]interface{}{"primary_address": address, "updated_at": time.Now()}).Error; err != nil {
		return ds.HandleError(err)
	}
	return nil
}

func (ds *PostgresService) UpdateProfileStreak(profileID string, streak int) error {
	if err := ds.db.Model(&model.Profile{}).Where("id = ?", profileID).
		Updates(map[string]interface{}{"streak": streak, "updated_at": time.Now()}).Error; err != nil {
		return ds.HandleError(err)
	}
	return nil
}

// ==================== GAME METHODS ====================

func (ds *PostgresService) GetGame(id uint64) (*model.Game, error) {
	var game model.Game
	if err := ds.db.Where("id = ?", id).First(&game).Error; err != nil {
		return nil, err
	}
	return &game, nil
}

func (ds *PostgresService) GetGameByDate(date string) (*model.Game, error) {
	var game model.Game
	if err := ds.db.Where("date = ?", date).First(&game).Error; err != nil {
		return nil, err
	}
	return &game, nil
}

func (ds *PostgresService) CreateGame(game *model.Game) (*model.Game, error) {
	game.CreatedAt = time.Now()
	game.UpdatedAt = time.Now()

	if err := ds.db.Create(game).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return game, nil
}

func (ds *PostgresService) CreateUserGame(userGame *model.UserGame) (*model.UserGame, error) {
	if userGame.ID == "" {
		id, _ := uuid.NewV7()
		userGame.ID = id.String()
	}
	userGame.CreatedAt = time.Now()

	if err := ds.db.Create(userGame).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return userGame, nil
}

func (ds *PostgresService) GetUserGames(userID string) ([]model.UserGame, error) {
	var games []model.UserGame
	if err := ds.db.Preload("Game").Where("user_id = ?", userID).
		Order("created_at DESC").Find(&games).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return games, nil
}

// GetUserPlayDates returns the distinct challenge dates the profile has played,
// newest first. The streak is computed over these, not over row timestamps.
func (ds *PostgresService) GetUserPlayDates(userID string) ([]string, error) {
	var dates []string
	if err := ds.db.Model(&model.UserGame{}).
		Distinct("games.date").
		Joins("JOIN games ON games.id = user_games.game_id").
		Where("user_games.user_id = ?", userID).
		Order("games.date DESC").
		Pluck("games.date", &dates).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return dates, nil
}

// ==================== BADGE METHODS ====================

func (ds *PostgresService) GetBadge(id uint64) (*model.Badge, error) {
	var badge model.Badge
	if err := ds.db.Where("id = ?", id).First(&badge).Error; err != nil {
		return nil, err
	}
	return &badge, nil
}

func (ds *PostgresService) GetBadges() ([]model.Badge, error) {
	var badges []model.Badge
	if err := ds.db.Order("id").Find(&badges).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return badges, nil
}

func (ds *PostgresService) GetBadgeByStreakDays(days int) (*model.Badge, error) {
	var badge model.Badge
	if err := ds.db.Where("streak_days = ?", days).First(&badge).Error; err != nil {
		return nil, err
	}
	return &badge, nil
}

func (ds *PostgresService) CreateBadge(badge *model.Badge) (*model.Badge, error) {
	badge.CreatedAt = time.Now()
	badge.UpdatedAt = time.Now()

	if err := ds.db.Create(badge).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return badge, nil
}

func (ds *PostgresService) UpdateBadge(badge *model.Badge) error {
	badge.UpdatedAt = time.Now()
	if err := ds.db.Save(badge).Error; err != nil {
		return ds.HandleError(err)
	}
	return nil
}

// CreateUserBadge inserts the award row. Callers must inspect the raw error
// with IsDuplicateKey; the unique index is the atomicity boundary for claims.
func (ds *PostgresService) CreateUserBadge(userBadge *model.UserBadge) error {
	if userBadge.ID == "" {
		id, _ := uuid.NewV7()
		userBadge.ID = id.String()
	}
	userBadge.CreatedAt = time.Now()
	if userBadge.ClaimedAt.IsZero() {
		userBadge.ClaimedAt = userBadge.CreatedAt
	}

	return ds.db.Create(userBadge).Error
}

func (ds *PostgresService) GetUserBadges(userID string) ([]model.UserBadge, error) {
	var userBadges []model.UserBadge
	if err := ds.db.Preload("Badge").Where("user_id = ?", userID).
		Find(&userBadges).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return userBadges, nil
}

func (ds *PostgresService) HasUserBadge(userID string, badgeID uint64) (bool, error) {
	var count int64
	if err := ds.db.Model(&model.UserBadge{}).
		Where("user_id = ? AND badge_id = ?", userID, badgeID).
		Count(&count).Error; err != nil {
		return false, ds.HandleError(err)
	}
	return count > 0, nil
}

// ==================== MINT RECEIPT METHODS ====================

func (ds *PostgresService) CreateMintReceipt(receipt *model.MintReceipt) (*model.MintReceipt, error) {
	if receipt.ID == "" {
		id, _ := uuid.NewV7()
		receipt.ID = id.String()
	}
	receipt.CreatedAt = time.Now()
	receipt.UpdatedAt = time.Now()

	if err := ds.db.Create(receipt).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return receipt, nil
}

func (ds *PostgresService) UpdateMintReceipt(receipt *model.MintReceipt) error {
	receipt.UpdatedAt = time.Now()
	if err := ds.db.Save(receipt).Error; err != nil {
		return ds.HandleError(err)
	}
	return nil
}
