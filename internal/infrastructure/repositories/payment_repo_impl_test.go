package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"couponmap.backend/internal/domain/entities"
	domainerrors "couponmap.backend/internal/domain/errors"
	"couponmap.backend/internal/infrastructure/models"
)

func newPayment(orderID string) *entities.Payment {
	return &entities.Payment{
		ID:          uuid.New(),
		MerchantID:  uuid.New(),
		PaymentType: entities.PaymentTypeTopup,
		Amount:      50000,
		BonusAmount: 5000,
		FinalAmount: 50000,
		PGOrderID:   orderID,
		Status:      entities.PaymentStatusPending,
		CreatedAt:   fixedNow,
		UpdatedAt:   fixedNow,
	}
}

func TestPaymentRepository_MarkPaidOnce(t *testing.T) {
	db := newTestDB(t)
	repo := NewPaymentRepository(db)
	ctx := context.Background()

	p := newPayment("CTT_20250601030000_ABC123")
	require.NoError(t, repo.Create(ctx, p))
	require.ErrorIs(t, repo.Create(ctx, newPayment(p.PGOrderID)), domainerrors.ErrAlreadyExists)

	approval := &entities.GatewayApproval{PaymentKey: "pk_1", Method: "카드", ReceiptURL: "https://receipt", ApprovedAt: fixedNow}
	ok, err := repo.MarkPaid(ctx, p.ID, approval)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = repo.MarkPaid(ctx, p.ID, approval)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = repo.MarkFailed(ctx, p.ID, &entities.GatewayDecline{Code: "REJECT", Message: "no"})
	require.NoError(t, err)
	require.False(t, ok, "paid payments cannot fail")

	got, err := repo.GetByPGOrderID(ctx, p.PGOrderID)
	require.NoError(t, err)
	require.Equal(t, entities.PaymentStatusPaid, got.Status)
	require.Equal(t, null.StringFrom("pk_1"), got.PGPaymentKey)
	require.Equal(t, "https://receipt", got.ReceiptURL.String)
	require.True(t, got.ApprovedAt.Valid)
}

func TestPaymentRepository_MarkFailed(t *testing.T) {
	db := newTestDB(t)
	repo := NewPaymentRepository(db)
	ctx := context.Background()

	p := newPayment("CTT_20250601030000_FAIL01")
	require.NoError(t, repo.Create(ctx, p))

	ok, err := repo.MarkFailed(ctx, p.ID, &entities.GatewayDecline{Status: 400, Code: "INVALID_CARD", Message: "카드 정보가 올바르지 않습니다"})
	require.NoError(t, err)
	require.True(t, ok)

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, entities.PaymentStatusFailed, got.Status)
	require.Equal(t, "INVALID_CARD", got.FailureCode.String)
	require.True(t, got.FailedAt.Valid)

	_, err = repo.GetByID(ctx, uuid.New())
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestTopupPackageRepository_ActiveOnly(t *testing.T) {
	db := newTestDB(t)
	repo := NewTopupPackageRepository(db)
	ctx := context.Background()

	active := uuid.New()
	hidden := uuid.New()
	require.NoError(t, db.Create(&models.TopupPackage{ID: active, Name: "5만원", Amount: 50000, BonusPercent: 10, IsActive: true, DisplayOrder: 2, CreatedAt: fixedNow}).Error)
	require.NoError(t, db.Create(&models.TopupPackage{ID: uuid.New(), Name: "1만원", Amount: 10000, IsActive: true, DisplayOrder: 1, CreatedAt: fixedNow}).Error)
	require.NoError(t, db.Create(&models.TopupPackage{ID: hidden, Name: "old", Amount: 30000, IsActive: false, CreatedAt: fixedNow}).Error)

	list, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, int64(10000), list[0].Amount)

	pkg, err := repo.GetActiveByID(ctx, active)
	require.NoError(t, err)
	require.Equal(t, int64(5000), pkg.Bonus())

	_, err = repo.GetActiveByID(ctx, hidden)
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestGameSessionRepository_FinishOnce(t *testing.T) {
	db := newTestDB(t)
	repo := NewGameSessionRepository(db)
	ctx := context.Background()

	s := &entities.GameSession{
		ID:         uuid.New(),
		ConsumerID: uuid.New(),
		GameType:   "stack",
		Status:     entities.GamePlaying,
		StartedAt:  fixedNow,
	}
	require.NoError(t, repo.Create(ctx, s))

	issueID := uuid.New()
	s.StepsCleared = 7
	s.Success = true
	s.RewardType = null.StringFrom(string(entities.RewardCoupon))
	s.IssueID = &issueID
	s.FinishedAt = null.TimeFrom(fixedNow)

	ok, err := repo.Finish(ctx, s)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = repo.Finish(ctx, s)
	require.NoError(t, err)
	require.False(t, ok, "a finished game cannot be finished again")

	got, err := repo.GetByID(ctx, s.ID)
	require.NoError(t, err)
	require.Equal(t, entities.GameFinished, got.Status)
	require.Equal(t, 7, got.StepsCleared)
	require.True(t, got.Success)
	require.Equal(t, issueID, *got.IssueID)
}

func TestPaymentRepository_ListPaidAndRefundedBetween(t *testing.T) {
	db := newTestDB(t)
	repo := NewPaymentRepository(db)
	ctx := context.Background()
	merchantID := uuid.New()

	inside := newPayment("CTT_IN")
	inside.MerchantID = merchantID
	outside := newPayment("CTT_OUT")
	outside.MerchantID = merchantID
	foreign := newPayment("CTT_FOREIGN")
	pending := newPayment("CTT_PENDING")
	pending.MerchantID = merchantID
	for _, p := range []*entities.Payment{inside, outside, foreign, pending} {
		require.NoError(t, repo.Create(ctx, p))
	}
	for _, p := range []*entities.Payment{inside, foreign} {
		ok, err := repo.MarkPaid(ctx, p.ID, &entities.GatewayApproval{PaymentKey: "pk_" + p.PGOrderID, ApprovedAt: fixedNow})
		require.NoError(t, err)
		require.True(t, ok)
	}
	ok, err := repo.MarkPaid(ctx, outside.ID, &entities.GatewayApproval{PaymentKey: "pk_out", ApprovedAt: fixedNow.AddDate(0, 0, -30)})
	require.NoError(t, err)
	require.True(t, ok)

	from, to := fixedNow.AddDate(0, 0, -7), fixedNow
	paid, err := repo.ListPaidBetween(ctx, merchantID, from, to)
	require.NoError(t, err)
	require.Len(t, paid, 1)
	require.Equal(t, inside.ID, paid[0].ID)

	mustExec(t, db, "UPDATE payments SET status = ?, refund_amount = ?, refunded_at = ? WHERE id = ?",
		string(entities.PaymentStatusRefunded), 50000, fixedNow.Add(-time.Hour), outside.ID)
	refunded, err := repo.ListRefundedBetween(ctx, merchantID, from, to)
	require.NoError(t, err)
	require.Len(t, refunded, 1)
	require.EqualValues(t, 50000, refunded[0].RefundAmount)
	require.True(t, refunded[0].RefundedAt.Valid)
}
