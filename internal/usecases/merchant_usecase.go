package usecases

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"couponmap.backend/internal/domain/entities"
	domainerrors "couponmap.backend/internal/domain/errors"
	"couponmap.backend/internal/domain/repositories"
	"couponmap.backend/pkg/crypto"
	"couponmap.backend/pkg/logger"
	"couponmap.backend/pkg/utils"
)

const (
	DefaultMerchantCategory = "restaurant"
	DefaultStoreRadius      = 5000

	StatsPeriodToday = "today"
	StatsPeriodWeek  = "week"
	StatsPeriodMonth = "month"
)

var couponTemplates = map[string][]entities.CouponTemplate{
	"restaurant": {
		{Title: "First visit 10% off", DiscountType: entities.DiscountPercent, DiscountValue: 10},
		{Title: "3,000 off orders over 20,000", DiscountType: entities.DiscountAmount, DiscountValue: 3000, MinOrderAmount: 20000},
		{Title: "Free drink", DiscountType: entities.DiscountAmount, DiscountValue: 2000},
	},
	"cafe": {
		{Title: "Free size upgrade", DiscountType: entities.DiscountAmount, DiscountValue: 500},
		{Title: "1,000 off any dessert", DiscountType: entities.DiscountAmount, DiscountValue: 1000},
		{Title: "Morning 20% off", DiscountType: entities.DiscountPercent, DiscountValue: 20},
	},
	"beauty": {
		{Title: "First treatment 20% off", DiscountType: entities.DiscountPercent, DiscountValue: 20},
		{Title: "10,000 off over 50,000", DiscountType: entities.DiscountAmount, DiscountValue: 10000, MinOrderAmount: 50000},
	},
	"retail": {
		{Title: "5% off everything", DiscountType: entities.DiscountPercent, DiscountValue: 5},
		{Title: "5,000 off over 30,000", DiscountType: entities.DiscountAmount, DiscountValue: 5000, MinOrderAmount: 30000},
	},
}

// RecommendedTemplates returns the starter coupons for a category,
// falling back to the restaurant set
func RecommendedTemplates(category string) []entities.CouponTemplate {
	if templates, ok := couponTemplates[category]; ok {
		return templates
	}
	return couponTemplates[DefaultMerchantCategory]
}

// MerchantUsecase handles merchant sign-up, approval and reporting
type MerchantUsecase struct {
	uow          repositories.UnitOfWork
	merchantRepo repositories.MerchantRepository
	userRepo     repositories.UserRepository
	storeRepo    repositories.StoreRepository
	walletRepo   repositories.WalletRepository
	statsRepo    repositories.StatsRepository
	now          func() time.Time
}

// NewMerchantUsecase creates a new merchant usecase
func NewMerchantUsecase(
	uow repositories.UnitOfWork,
	merchantRepo repositories.MerchantRepository,
	userRepo repositories.UserRepository,
	storeRepo repositories.StoreRepository,
	walletRepo repositories.WalletRepository,
	statsRepo repositories.StatsRepository,
) *MerchantUsecase {
	return &MerchantUsecase{
		uow:          uow,
		merchantRepo: merchantRepo,
		userRepo:     userRepo,
		storeRepo:    storeRepo,
		walletRepo:   walletRepo,
		statsRepo:    statsRepo,
		now:          time.Now,
	}
}

// Register creates the owner account, the pending merchant, its first
// store and its wallet in one transaction
func (u *MerchantUsecase) Register(ctx context.Context, input *entities.MerchantRegisterInput) (*entities.MerchantRegistration, error) {
	businessName := strings.TrimSpace(input.BusinessName)
	ownerName := strings.TrimSpace(input.OwnerName)
	phone := strings.TrimSpace(input.Phone)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if businessName == "" || ownerName == "" || phone == "" || email == "" || input.Password == "" {
		return nil, domainerrors.BadRequest("businessName, ownerName, phone, email and password are required")
	}
	if (input.Lat == nil) != (input.Lng == nil) {
		return nil, domainerrors.BadRequest("lat and lng must be provided together")
	}
	if input.Lat != nil && (*input.Lat < -90 || *input.Lat > 90 || *input.Lng < -180 || *input.Lng > 180) {
		return nil, domainerrors.BadRequest("lat/lng out of range")
	}

	slug := strings.TrimSpace(input.Slug)
	if slug == "" {
		slug = businessName
	}
	slug = utils.GenerateSlug(slug)
	category := strings.ToLower(strings.TrimSpace(input.Category))
	if category == "" {
		category = DefaultMerchantCategory
	}

	taken, err := u.merchantRepo.SlugExists(ctx, slug)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domainerrors.AlreadyExists("Slug already taken")
	}
	if _, err := u.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, domainerrors.AlreadyExists("Email already registered")
	} else if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	passwordHash, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	userID := utils.GenerateUUIDv7()
	merchantID := utils.GenerateUUIDv7()
	merchant := &entities.Merchant{
		ID:             merchantID,
		OwnerUserID:    userID,
		BusinessName:   businessName,
		OwnerName:      ownerName,
		Phone:          phone,
		Email:          email,
		Slug:           slug,
		Category:       category,
		Address:        optionalString(input.Address),
		Description:    optionalString(input.Description),
		ApprovalStatus: entities.ApprovalPending,
	}
	store := &entities.Store{
		MerchantID:   merchantID,
		Name:         businessName,
		Slug:         slug,
		Category:     category,
		Address:      merchant.Address,
		Phone:        null.StringFrom(phone),
		RadiusMeters: DefaultStoreRadius,
		IsActive:     true,
	}
	if input.Lat != nil {
		store.Lat = null.Float64From(*input.Lat)
		store.Lng = null.Float64From(*input.Lng)
	}

	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := u.userRepo.Create(txCtx, &entities.User{
			ID:           userID,
			Email:        email,
			Name:         ownerName,
			PasswordHash: passwordHash,
			Role:         entities.UserRoleMerchant,
			MerchantID:   &merchantID,
		}); err != nil {
			return err
		}
		if err := u.merchantRepo.Create(txCtx, merchant); err != nil {
			return err
		}
		if err := u.storeRepo.Create(txCtx, store); err != nil {
			return err
		}
		return u.walletRepo.Ensure(txCtx, entities.MerchantWallet(merchantID))
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists("Slug or email already registered")
		}
		return nil, err
	}

	logger.Info(ctx, "Merchant registered", zap.String("merchant_id", merchantID.String()), zap.String("slug", slug))
	return &entities.MerchantRegistration{
		Merchant:             merchant,
		Store:                store,
		RecommendedTemplates: RecommendedTemplates(category),
	}, nil
}

// ListApprovals pages through merchants, optionally by status, with per-status counts
func (u *MerchantUsecase) ListApprovals(ctx context.Context, status string, page, limit int) (*entities.ApprovalList, error) {
	var filter *entities.ApprovalStatus
	if s := strings.TrimSpace(status); s != "" {
		st := entities.ApprovalStatus(s)
		if !validApprovalStatus(st) {
			return nil, domainerrors.BadRequest("unknown status " + s)
		}
		filter = &st
	}

	params := utils.GetPaginationParams(page, limit)
	merchants, total, err := u.merchantRepo.List(ctx, filter, params)
	if err != nil {
		return nil, err
	}
	counts, err := u.merchantRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	for _, st := range entities.AllApprovalStatuses {
		if _, ok := counts[st]; !ok {
			counts[st] = 0
		}
	}
	if merchants == nil {
		merchants = []*entities.Merchant{}
	}
	return &entities.ApprovalList{
		Merchants:  merchants,
		Counts:     counts,
		Pagination: utils.CalculateMeta(total, params.Page, params.Limit),
	}, nil
}

// ApplyApprovalAction moves a merchant to the status the action produces
// and logs the decision in the same transaction
func (u *MerchantUsecase) ApplyApprovalAction(ctx context.Context, admin entities.Principal, input *entities.ApprovalActionInput) (*entities.Merchant, error) {
	if !admin.IsAdmin() {
		return nil, domainerrors.Forbidden("Admin role required")
	}
	merchantID, err := uuid.Parse(strings.TrimSpace(input.MerchantID))
	if err != nil {
		return nil, domainerrors.BadRequest("valid merchant_id is required")
	}
	action := entities.ApprovalAction(strings.ToLower(strings.TrimSpace(input.Action)))
	target, ok := action.TargetStatus()
	if !ok {
		return nil, domainerrors.BadRequest("unknown action " + input.Action)
	}
	reason := optionalString(input.Reason)

	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		merchant, err := u.getMerchant(txCtx, merchantID)
		if err != nil {
			return err
		}
		from := merchant.ApprovalStatus
		moved, err := u.merchantRepo.UpdateApproval(txCtx, merchant.ID, from, target, reason)
		if err != nil {
			return err
		}
		if !moved {
			return domainerrors.Conflict(fmt.Sprintf("Merchant status changed concurrently from %s", from))
		}
		return u.merchantRepo.AppendApprovalLog(txCtx, &entities.ApprovalLog{
			MerchantID: merchant.ID,
			AdminID:    admin.UserID,
			Action:     action,
			FromStatus: from,
			ToStatus:   target,
			Reason:     reason,
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "Merchant approval updated",
		zap.String("merchant_id", merchantID.String()),
		zap.String("action", string(action)),
		zap.String("admin_id", admin.UserID.String()),
	)
	return u.getMerchant(ctx, merchantID)
}

// MerchantStats aggregates the merchant's activity since the start of the period
func (u *MerchantUsecase) MerchantStats(ctx context.Context, principal entities.Principal, period string) (*entities.MerchantStats, error) {
	if principal.MerchantID == nil {
		return nil, domainerrors.Forbidden("Merchant account required")
	}
	merchantID := *principal.MerchantID
	if period == "" {
		period = StatsPeriodToday
	}
	since, err := periodStart(period, u.now().UTC())
	if err != nil {
		return nil, err
	}

	stats := &entities.MerchantStats{Period: period, From: since}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := u.statsRepo.CountCouponsIssued(gctx, merchantID, since)
		stats.CouponsIssued = n
		return err
	})
	g.Go(func() error {
		n, err := u.statsRepo.CountCouponsUsed(gctx, merchantID, since)
		stats.CouponsUsed = n
		return err
	})
	g.Go(func() error {
		orders, err := u.statsRepo.SummarizeOrders(gctx, merchantID, since)
		stats.Orders, stats.Revenue = orders.Orders, orders.Revenue
		return err
	})
	g.Go(func() error {
		customers, err := u.statsRepo.SummarizeCustomers(gctx, merchantID, since)
		stats.Customers, stats.NewCustomers = customers.Total, customers.New
		return err
	})
	g.Go(func() error {
		wallet, err := u.walletRepo.GetByOwner(gctx, entities.MerchantWallet(merchantID))
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		stats.WalletBalance = wallet.Balance
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}

func (u *MerchantUsecase) getMerchant(ctx context.Context, id uuid.UUID) (*entities.Merchant, error) {
	merchant, err := u.merchantRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("Merchant not found")
		}
		return nil, err
	}
	return merchant, nil
}

func periodStart(period string, now time.Time) (time.Time, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	switch period {
	case StatsPeriodToday:
		return today, nil
	case StatsPeriodWeek:
		return today.AddDate(0, 0, -6), nil
	case StatsPeriodMonth:
		return today.AddDate(0, 0, -29), nil
	}
	return time.Time{}, domainerrors.Wrap(http.StatusBadRequest, "period must be today, week or month", domainerrors.ErrInvalidInput)
}

func validApprovalStatus(s entities.ApprovalStatus) bool {
	for _, st := range entities.AllApprovalStatuses {
		if st == s {
			return true
		}
	}
	return false
}

func optionalString(s string) null.String {
	s = strings.TrimSpace(s)
	return null.NewString(s, s != "")
}
