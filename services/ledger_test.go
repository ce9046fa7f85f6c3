package services

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/geoid-labs/geoid_api/model"
	"github.com/geoid-labs/geoid_api/shared"
)

func newTestLedger(t *testing.T) (*BadgeLedgerService, *PostgresService) {
	t.Helper()

	sqlSvc := newTestDB(t)
	badges := []*model.Badge{
		{ID: 7, Name: "Geo Guesser", Description: "Complete a daily challenge", Category: shared.CategoryDaily},
		{ID: 8, Name: "1 Day Streak", Category: shared.CategoryStreak, StreakDays: 1},
		{ID: 20, Name: "Founders Badge", Category: shared.CategorySpecial, Locked: true},
	}
	for _, b := range badges {
		if _, err := sqlSvc.CreateBadge(b); err != nil {
			t.Fatalf("failed to seed badge: %v", err)
		}
	}

	return &BadgeLedgerService{sqlSvc: sqlSvc}, sqlSvc
}

func TestClaimAwardsBadge(t *testing.T) {
	ledger, sqlSvc := newTestLedger(t)
	profile := newTestProfile(t, sqlSvc, "fid-1")

	award, badge, err := ledger.Claim(profile.ID, 7)
	if err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if badge.Name != "Geo Guesser" {
		t.Fatalf("badge name = %q", badge.Name)
	}
	if award.ClaimedAt.IsZero() {
		t.Fatal("claimed_at not set")
	}

	has, err := sqlSvc.HasUserBadge(profile.ID, 7)
	if err != nil || !has {
		t.Fatalf("award row missing: has=%v err=%v", has, err)
	}
}

func TestClaimTwiceIsConflict(t *testing.T) {
	ledger, sqlSvc := newTestLedger(t)
	profile := newTestProfile(t, sqlSvc, "fid-1")

	if _, _, err := ledger.Claim(profile.ID, 7); err != nil {
		t.Fatalf("first Claim: %v", err)
	}

	_, _, err := ledger.Claim(profile.ID, 7)
	appErr, ok := shared.GetAppError(err)
	if !ok {
		t.Fatalf("want AppError, got %v", err)
	}
	if appErr.StatusCode != http.StatusConflict || appErr.Code != shared.ErrCodeAlreadyClaimed {
		t.Fatalf("got %d %s, want 409 %s", appErr.StatusCode, appErr.Code, shared.ErrCodeAlreadyClaimed)
	}
}

func TestClaimLockedBadge(t *testing.T) {
	ledger, sqlSvc := newTestLedger(t)
	profile := newTestProfile(t, sqlSvc, "fid-1")

	_, _, err := ledger.Claim(profile.ID, 20)
	appErr, ok := shared.GetAppError(err)
	if !ok || appErr.Code != shared.ErrCodeBadgeLocked {
		t.Fatalf("want %s AppError, got %v", shared.ErrCodeBadgeLocked, err)
	}
}

func TestClaimUnknownBadge(t *testing.T) {
	ledger, sqlSvc := newTestLedger(t)
	profile := newTestProfile(t, sqlSvc, "fid-1")

	_, _, err := ledger.Claim(profile.ID, 999)
	appErr, ok := shared.GetAppError(err)
	if !ok || appErr.StatusCode != http.StatusNotFound || appErr.Code != shared.ErrCodeBadgeNotFound {
		t.Fatalf("want 404 %s AppError, got %v", shared.ErrCodeBadgeNotFound, err)
	}
}

// Two racing claims for the same badge must produce exactly one award.
func TestClaimConcurrentDuplicate(t *testing.T) {
	ledger, sqlSvc := newTestLedger(t)
	profile := newTestProfile(t, sqlSvc, "fid-1")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = ledger.Claim(profile.ID, 7)
		}(i)
	}
	wg.Wait()

	var awarded, conflicts int
	for _, err := range errs {
		if err == nil {
			awarded++
			continue
		}
		if appErr, ok := shared.GetAppError(err); ok && appErr.Code == shared.ErrCodeAlreadyClaimed {
			conflicts++
		}
	}
	if awarded != 1 || conflicts != 1 {
		t.Fatalf("awarded=%d conflicts=%d, want 1 and 1 (errs: %v)", awarded, conflicts, errs)
	}

	awards, err := sqlSvc.GetUserBadges(profile.ID)
	if err != nil {
		t.Fatalf("GetUserBadges: %v", err)
	}
	if len(awards) != 1 {
		t.Fatalf("award rows = %d, want 1", len(awards))
	}
}

func TestListWithClaimedFlags(t *testing.T) {
	ledger, sqlSvc := newTestLedger(t)
	profile := newTestProfile(t, sqlSvc, "fid-1")

	if _, _, err := ledger.Claim(profile.ID, 7); err != nil {
		t.Fatalf("Claim: %v", err)
	}

	resp, err := ledger.ListWithClaimed(context.Background(), profile.ID)
	if err != nil {
		t.Fatalf("ListWithClaimed: %v", err)
	}
	if len(resp.Badges) != 3 {
		t.Fatalf("badges = %d, want 3", len(resp.Badges))
	}

	byID := map[uint64]bool{}
	for _, b := range resp.Badges {
		byID[b.ID] = b.Claimed
	}
	if !byID[7] {
		t.Fatal("badge 7 should be claimed")
	}
	if byID[8] || byID[20] {
		t.Fatal("unclaimed badges flagged as claimed")
	}
}
