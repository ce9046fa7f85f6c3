package services

import (
	"context"
	"errors"
	"testing"

	"github.com/geoid-labs/geoid_api/model"
	"github.com/geoid-labs/geoid_api/shared"
)

type fakeChainBackend struct {
	txHash string
	err    error

	calls     int
	lastTo    string
	lastToken string
}

func (b *fakeChainBackend) Mint(_ context.Context, to string, tokenURI string) (string, error) {
	b.calls++
	b.lastTo = to
	b.lastToken = tokenURI
	return b.txHash, b.err
}

func newTestMintService(t *testing.T, backend ChainBackend) (*MintService, *PostgresService) {
	t.Helper()

	sqlSvc := newTestDB(t)
	return &MintService{
		sqlSvc:       sqlSvc,
		backend:      backend,
		tokenURIBase: "https://badges.geoid.xyz/",
	}, sqlSvc
}

func TestTokenURISlug(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"Geo Guesser", "geo-guesser"},
		{"1 Day Streak", "1-day-streak"},
		{"World's Best", "worlds-best"},
		{"Founders", "founders"},
	}
	for _, tc := range cases {
		if got := TokenURISlug(tc.name); got != tc.want {
			t.Errorf("TokenURISlug(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestMintWithoutAddressIsSkipped(t *testing.T) {
	backend := &fakeChainBackend{txHash: "0xabc"}
	svc, _ := newTestMintService(t, backend)

	award := &model.UserBadge{ID: "award-1", BadgeID: 7}
	badge := &model.Badge{ID: 7, Name: "Geo Guesser"}

	receipt := svc.MintBadge(context.Background(), award, badge, "")
	if receipt.Status != shared.MintStatusSkipped {
		t.Fatalf("status = %q, want %q", receipt.Status, shared.MintStatusSkipped)
	}
	if backend.calls != 0 {
		t.Fatalf("backend called %d times, want 0", backend.calls)
	}
}

func TestMintConfirmed(t *testing.T) {
	backend := &fakeChainBackend{txHash: "0xdeadbeef"}
	svc, sqlSvc := newTestMintService(t, backend)

	award := &model.UserBadge{ID: "award-1", BadgeID: 7}
	badge := &model.Badge{ID: 7, Name: "Geo Guesser"}

	receipt := svc.MintBadge(context.Background(), award, badge, "0x1111111111111111111111111111111111111111")
	if receipt.Status != shared.MintStatusConfirmed {
		t.Fatalf("status = %q, want %q", receipt.Status, shared.MintStatusConfirmed)
	}
	if receipt.TxHash != "0xdeadbeef" {
		t.Fatalf("tx hash = %q", receipt.TxHash)
	}
	if backend.lastToken != "https://badges.geoid.xyz/geo-guesser" {
		t.Fatalf("token URI = %q", backend.lastToken)
	}

	var stored model.MintReceipt
	if err := sqlSvc.Db().Where("user_badge_id = ?", "award-1").First(&stored).Error; err != nil {
		t.Fatalf("receipt not persisted: %v", err)
	}
	if stored.Status != shared.MintStatusConfirmed {
		t.Fatalf("stored status = %q", stored.Status)
	}
}

func TestMintFailureIsRecordedNotReturned(t *testing.T) {
	backend := &fakeChainBackend{err: errors.New("rpc timeout")}
	svc, sqlSvc := newTestMintService(t, backend)

	award := &model.UserBadge{ID: "award-1", BadgeID: 7}
	badge := &model.Badge{ID: 7, Name: "Geo Guesser"}

	receipt := svc.MintBadge(context.Background(), award, badge, "0x1111111111111111111111111111111111111111")
	if receipt.Status != shared.MintStatusFailed {
		t.Fatalf("status = %q, want %q", receipt.Status, shared.MintStatusFailed)
	}
	if receipt.Error == "" {
		t.Fatal("failure reason not recorded")
	}

	var stored model.MintReceipt
	if err := sqlSvc.Db().Where("user_badge_id = ?", "award-1").First(&stored).Error; err != nil {
		t.Fatalf("receipt not persisted: %v", err)
	}
	if stored.Status != shared.MintStatusFailed || stored.Error == "" {
		t.Fatalf("stored receipt = %+v", stored)
	}
}

func TestMintDisabledBackendIsSkipped(t *testing.T) {
	svc, _ := newTestMintService(t, nil)

	award := &model.UserBadge{ID: "award-1", BadgeID: 7}
	badge := &model.Badge{ID: 7, Name: "Geo Guesser"}

	receipt := svc.MintBadge(context.Background(), award, badge, "0x1111111111111111111111111111111111111111")
	if receipt.Status != shared.MintStatusSkipped {
		t.Fatalf("status = %q, want %q", receipt.Status, shared.MintStatusSkipped)
	}
}
