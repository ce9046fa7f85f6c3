package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/geoid-labs/geoid_api/model"
)

func newTestDB(t *testing.T) *PostgresService {
	t.Helper()

	// shared-cache named DSN so every pooled connection sees the same database
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(
		&model.Profile{},
		&model.Game{},
		&model.UserGame{},
		&model.Badge{},
		&model.UserBadge{},
		&model.MintReceipt{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return &PostgresService{db: db}
}

func newTestProfile(t *testing.T, sqlSvc *PostgresService, fid string) *model.Profile {
	t.Helper()

	profile, err := sqlSvc.CreateProfile(&model.Profile{Fid: fid})
	if err != nil {
		t.Fatalf("failed to create test profile: %v", err)
	}
	return profile
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }
