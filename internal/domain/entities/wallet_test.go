package entities

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestTopupPackage_Bonus(t *testing.T) {
	fixed := &TopupPackage{Amount: 50000, BonusAmount: 5000, BonusPercent: 20}
	if got := fixed.Bonus(); got != 5000 {
		t.Fatalf("expected fixed bonus 5000 got %d", got)
	}

	percent := &TopupPackage{Amount: 33333, BonusPercent: 10}
	if got := percent.Bonus(); got != 3333 {
		t.Fatalf("expected percent bonus 3333 got %d", got)
	}

	none := &TopupPackage{Amount: 10000}
	if got := none.Bonus(); got != 0 {
		t.Fatalf("expected no bonus got %d", got)
	}
}

func TestPGOrderID(t *testing.T) {
	now := time.Date(2025, 3, 9, 7, 5, 1, 0, time.UTC)
	if got := PGOrderID(now, "AB12CD"); got != "CTT_20250309070501_AB12CD" {
		t.Fatalf("unexpected order id %s", got)
	}
}

func TestTouchpoint_Increments(t *testing.T) {
	game := Touchpoint{Type: TouchpointCouponGame, Amount: 9999}
	if got := game.Increments(); got != (TouchpointIncrements{Coupons: 1}) {
		t.Fatalf("unexpected game increments %+v", got)
	}

	order := Touchpoint{Type: TouchpointTableOrder, Amount: 12000}
	if got := order.Increments(); got != (TouchpointIncrements{Visits: 1, Spent: 12000}) {
		t.Fatalf("unexpected order increments %+v", got)
	}
}

func TestPrincipal_CanManage(t *testing.T) {
	merchantID := uuid.New()
	other := uuid.New()

	owner := Principal{Role: UserRoleMerchant, MerchantID: &merchantID}
	if !owner.CanManage(merchantID) || owner.CanManage(other) {
		t.Fatal("merchant may only manage its own records")
	}

	admin := Principal{Role: UserRoleAdmin}
	if !admin.CanManage(other) {
		t.Fatal("admin manages every merchant")
	}

	consumer := Principal{Role: UserRoleConsumer, MerchantID: &merchantID}
	if consumer.CanManage(merchantID) {
		t.Fatal("consumer never manages a merchant")
	}
}

func TestApprovalAction_TargetStatus(t *testing.T) {
	if s, ok := ActionApprove.TargetStatus(); !ok || s != ApprovalApproved {
		t.Fatalf("unexpected approve target %s", s)
	}
	if _, ok := ApprovalAction("delete").TargetStatus(); ok {
		t.Fatal("unknown action must not map")
	}
}
