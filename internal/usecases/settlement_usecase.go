package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"couponmap.backend/internal/domain/entities"
	domainerrors "couponmap.backend/internal/domain/errors"
	"couponmap.backend/internal/domain/repositories"
)

// SettlementUsecase aggregates merchant payments into payouts
type SettlementUsecase struct {
	uow            repositories.UnitOfWork
	settlementRepo repositories.SettlementRepository
	paymentRepo    repositories.PaymentRepository
	merchantRepo   repositories.MerchantRepository
	feeRate        float64
	now            func() time.Time
}

// NewSettlementUsecase creates a new settlement usecase. A non-positive
// feeRate falls back to DefaultSettlementFeeRate.
func NewSettlementUsecase(
	uow repositories.UnitOfWork,
	settlementRepo repositories.SettlementRepository,
	paymentRepo repositories.PaymentRepository,
	merchantRepo repositories.MerchantRepository,
	feeRate float64,
) *SettlementUsecase {
	if feeRate <= 0 {
		feeRate = entities.DefaultSettlementFeeRate
	}
	return &SettlementUsecase{
		uow:            uow,
		settlementRepo: settlementRepo,
		paymentRepo:    paymentRepo,
		merchantRepo:   merchantRepo,
		feeRate:        feeRate,
		now:            time.Now,
	}
}

// Create settles one merchant's paid payments of a period, net of the
// platform fee and of refunds issued in the same period
func (u *SettlementUsecase) Create(ctx context.Context, principal entities.Principal, input *entities.CreateSettlementInput) (*entities.Settlement, error) {
	if !principal.IsAdmin() {
		return nil, domainerrors.Forbidden("Admin role required")
	}
	merchantID, err := uuid.Parse(strings.TrimSpace(input.MerchantID))
	if err != nil {
		return nil, domainerrors.BadRequest("invalid merchant_id")
	}
	end := u.now().UTC()
	if input.PeriodEnd != nil {
		end = input.PeriodEnd.UTC()
	}
	start := end.Add(-entities.DefaultSettlementPeriod)
	if input.PeriodStart != nil {
		start = input.PeriodStart.UTC()
	}
	if start.After(end) {
		return nil, domainerrors.BadRequest("period_start must not be after period_end")
	}
	if _, err := u.merchantRepo.GetByID(ctx, merchantID); err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("Merchant not found")
		}
		return nil, err
	}

	var settlement *entities.Settlement
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		paid, err := u.paymentRepo.ListPaidBetween(txCtx, merchantID, start, end)
		if err != nil {
			return err
		}
		refunded, err := u.paymentRepo.ListRefundedBetween(txCtx, merchantID, start, end)
		if err != nil {
			return err
		}
		settlement = entities.BuildSettlement(merchantID, start, end, paid, refunded, u.feeRate)
		if err := u.settlementRepo.Create(txCtx, settlement); err != nil {
			if errors.Is(err, domainerrors.ErrAlreadyExists) {
				return domainerrors.AlreadyExists("Settlement already exists for this period")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return settlement, nil
}

// List returns a merchant's settlements with totals. Merchants see their
// own; admins name the merchant.
func (u *SettlementUsecase) List(ctx context.Context, principal entities.Principal, merchantID *uuid.UUID, status string) (*entities.SettlementList, error) {
	target := principal.MerchantID
	if principal.IsAdmin() && merchantID != nil {
		target = merchantID
	}
	if target == nil {
		return nil, domainerrors.BadRequest("merchant_id is required")
	}
	if !principal.CanManage(*target) {
		return nil, domainerrors.Forbidden("Not allowed to view these settlements")
	}
	var filter *entities.SettlementStatus
	if status != "" {
		st := entities.SettlementStatus(status)
		if _, ok := entities.SettlementSources[st]; !ok {
			return nil, domainerrors.BadRequest("invalid status")
		}
		filter = &st
	}
	settlements, err := u.settlementRepo.ListByMerchant(ctx, *target, filter)
	if err != nil {
		return nil, err
	}
	return &entities.SettlementList{Settlements: settlements, Summary: entities.Summarize(settlements)}, nil
}

// Get returns one settlement with its items
func (u *SettlementUsecase) Get(ctx context.Context, principal entities.Principal, id uuid.UUID) (*entities.Settlement, error) {
	settlement, err := u.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !principal.CanManage(settlement.MerchantID) {
		return nil, domainerrors.Forbidden("Not allowed to view this settlement")
	}
	return settlement, nil
}

// UpdateStatus moves a settlement along the payout lifecycle and records
// the bank details given with the move
func (u *SettlementUsecase) UpdateStatus(ctx context.Context, principal entities.Principal, id uuid.UUID, input *entities.UpdateSettlementInput) (*entities.Settlement, error) {
	if !principal.IsAdmin() {
		return nil, domainerrors.Forbidden("Admin role required")
	}
	from, ok := entities.SettlementSources[input.Status]
	if !ok {
		return nil, domainerrors.BadRequest("invalid status")
	}
	current, err := u.get(ctx, id)
	if err != nil {
		return nil, err
	}
	moved, err := u.settlementRepo.UpdateStatus(ctx, id, from, input, u.now().UTC())
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, domainerrors.Conflict(fmt.Sprintf("Cannot move settlement from %s to %s", current.Status, input.Status))
	}
	return u.get(ctx, id)
}

func (u *SettlementUsecase) get(ctx context.Context, id uuid.UUID) (*entities.Settlement, error) {
	settlement, err := u.settlementRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("Settlement not found")
		}
		return nil, err
	}
	return settlement, nil
}
