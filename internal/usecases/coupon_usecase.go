package usecases

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"couponmap.backend/internal/domain/entities"
	domainerrors "couponmap.backend/internal/domain/errors"
	"couponmap.backend/internal/domain/repositories"
	"couponmap.backend/pkg/crypto"
	"couponmap.backend/pkg/geo"
	"couponmap.backend/pkg/utils"
)

// DefaultNearbyRadiusKm applies when a nearby query carries no radius
const DefaultNearbyRadiusKm = 5.0

// CouponUsecase handles coupon templates, issuance and redemption
type CouponUsecase struct {
	uow        repositories.UnitOfWork
	couponRepo repositories.CouponRepository
	issueRepo  repositories.CouponIssueRepository
	storeRepo  repositories.StoreRepository
	effects    *SideEffects
	now        func() time.Time
}

// NewCouponUsecase creates a new coupon usecase
func NewCouponUsecase(
	uow repositories.UnitOfWork,
	couponRepo repositories.CouponRepository,
	issueRepo repositories.CouponIssueRepository,
	storeRepo repositories.StoreRepository,
	effects *SideEffects,
) *CouponUsecase {
	return &CouponUsecase{
		uow:        uow,
		couponRepo: couponRepo,
		issueRepo:  issueRepo,
		storeRepo:  storeRepo,
		effects:    effects,
		now:        time.Now,
	}
}

// CreateCoupon creates a coupon template for the caller's merchant
func (u *CouponUsecase) CreateCoupon(ctx context.Context, principal entities.Principal, input *entities.CreateCouponInput) (*entities.Coupon, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, domainerrors.BadRequest("title is required")
	}
	if !input.DiscountType.Valid() {
		return nil, domainerrors.BadRequest("discount_type must be percent or amount")
	}
	if input.DiscountValue <= 0 {
		return nil, domainerrors.BadRequest("discount_value must be positive")
	}
	if input.DiscountType == entities.DiscountPercent && input.DiscountValue > 100 {
		return nil, domainerrors.BadRequest("percent discount cannot exceed 100")
	}
	if input.ValidFrom != nil && input.ValidTo != nil && input.ValidTo.Before(*input.ValidFrom) {
		return nil, domainerrors.BadRequest("valid_to must not precede valid_from")
	}
	for _, limit := range []*int64{input.MinOrderAmount, input.TotalIssuable, input.PerUserLimit} {
		if limit != nil && *limit < 0 {
			return nil, domainerrors.BadRequest("limits cannot be negative")
		}
	}

	coupon := &entities.Coupon{
		Title:          title,
		Description:    null.NewString(input.Description, input.Description != ""),
		Category:       null.NewString(input.Category, input.Category != ""),
		DiscountType:   input.DiscountType,
		DiscountValue:  input.DiscountValue,
		MinOrderAmount: null.Int64FromPtr(input.MinOrderAmount),
		ValidFrom:      null.TimeFromPtr(input.ValidFrom),
		ValidTo:        null.TimeFromPtr(input.ValidTo),
		TotalIssuable:  null.Int64FromPtr(input.TotalIssuable),
		PerUserLimit:   null.Int64FromPtr(input.PerUserLimit),
		IsActive:       true,
	}

	switch {
	case strings.TrimSpace(input.StoreID) != "":
		storeID, err := uuid.Parse(strings.TrimSpace(input.StoreID))
		if err != nil {
			return nil, domainerrors.BadRequest("invalid store_id")
		}
		store, err := u.storeRepo.GetByID(ctx, storeID)
		if err != nil {
			if errors.Is(err, domainerrors.ErrNotFound) {
				return nil, domainerrors.NotFound("Store not found")
			}
			return nil, err
		}
		if !principal.CanManage(store.MerchantID) {
			return nil, domainerrors.Forbidden("Store belongs to another merchant")
		}
		coupon.MerchantID = store.MerchantID
		coupon.StoreID = &store.ID
		if !coupon.Category.Valid && store.Category != "" {
			coupon.Category = null.StringFrom(store.Category)
		}
	case principal.MerchantID != nil:
		coupon.MerchantID = *principal.MerchantID
	default:
		return nil, domainerrors.BadRequest("store_id is required")
	}

	if err := u.couponRepo.Create(ctx, coupon); err != nil {
		return nil, err
	}
	return coupon, nil
}

// Issue grants a coupon to a consumer on behalf of the merchant owning it
func (u *CouponUsecase) Issue(ctx context.Context, principal entities.Principal, input *entities.IssueCouponInput) (*entities.IssueResult, error) {
	if strings.TrimSpace(input.ConsumerID) == "" || strings.TrimSpace(input.CouponID) == "" {
		return nil, domainerrors.BadRequest("consumer_id and coupon_id are required")
	}
	consumerID, err := uuid.Parse(strings.TrimSpace(input.ConsumerID))
	if err != nil {
		return nil, domainerrors.BadRequest("invalid consumer_id")
	}
	couponID, err := uuid.Parse(strings.TrimSpace(input.CouponID))
	if err != nil {
		return nil, domainerrors.BadRequest("invalid coupon_id")
	}

	channel := entities.ChannelMerchant
	if input.Channel != "" {
		channel = entities.IssueChannel(input.Channel)
		if !channel.Valid() {
			return nil, domainerrors.BadRequest("invalid channel")
		}
	}
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		reason = entities.DefaultIssueReason
	}

	coupon, err := u.getCoupon(ctx, couponID)
	if err != nil {
		return nil, err
	}
	if !principal.CanManage(coupon.MerchantID) {
		return nil, domainerrors.Forbidden("Coupon belongs to another merchant")
	}

	issue, err := u.issue(ctx, coupon.ID, consumerID, channel, reason)
	if err != nil {
		return nil, err
	}
	return &entities.IssueResult{CouponIssueID: issue.ID, Code: issue.Code, Status: issue.Status}, nil
}

func (u *CouponUsecase) issue(ctx context.Context, couponID, consumerID uuid.UUID, channel entities.IssueChannel, reason string) (*entities.CouponIssue, error) {
	var (
		issue  *entities.CouponIssue
		coupon *entities.Coupon
	)
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		var err error
		issue, coupon, err = u.issueTx(txCtx, couponID, consumerID, channel, reason)
		return err
	})
	if err != nil {
		return nil, err
	}
	u.issued(ctx, issue, coupon)
	return issue, nil
}

// issueTx reserves stock, checks the per-user limit and inserts the issue.
// It must run inside a transaction: the stock reservation locks the coupon
// row, so the limit check cannot race another issuer of the same coupon.
func (u *CouponUsecase) issueTx(txCtx context.Context, couponID, consumerID uuid.UUID, channel entities.IssueChannel, reason string) (*entities.CouponIssue, *entities.Coupon, error) {
	now := u.now().UTC()
	coupon, err := u.getCoupon(txCtx, couponID)
	if err != nil {
		return nil, nil, err
	}
	if !coupon.IsActive {
		return nil, nil, domainerrors.Conflict("Coupon is not active")
	}
	if coupon.IsExpired(now) {
		return nil, nil, domainerrors.Expired("Coupon has expired")
	}
	if coupon.ValidFrom.Valid && now.Before(coupon.ValidFrom.Time) {
		return nil, nil, domainerrors.Conflict("Coupon is not valid yet")
	}

	reserved, err := u.couponRepo.ReserveIssue(txCtx, coupon.ID)
	if err != nil {
		return nil, nil, err
	}
	if !reserved {
		return nil, nil, domainerrors.Wrap(http.StatusBadRequest, "Coupon issue limit reached", domainerrors.ErrIssueLimitReached)
	}

	if coupon.PerUserLimit.Valid {
		count, err := u.issueRepo.CountByConsumer(txCtx, coupon.ID, consumerID)
		if err != nil {
			return nil, nil, err
		}
		if count >= coupon.PerUserLimit.Int64 {
			return nil, nil, domainerrors.Wrap(http.StatusBadRequest, "Per-user issue limit reached", domainerrors.ErrIssueLimitReached)
		}
	}

	code, err := crypto.GenerateCode()
	if err != nil {
		return nil, nil, err
	}
	issue := &entities.CouponIssue{
		CouponID:   coupon.ID,
		ConsumerID: consumerID,
		Code:       code,
		Status:     entities.IssueStatusIssued,
		Channel:    channel,
		Reason:     reason,
		IssuedAt:   now,
	}
	if err := u.issueRepo.Create(txCtx, issue); err != nil {
		return nil, nil, err
	}
	return issue, coupon, nil
}

// issued schedules the follow-ups of a committed issue
func (u *CouponUsecase) issued(ctx context.Context, issue *entities.CouponIssue, coupon *entities.Coupon) {
	event := entities.NewTransactionEvent(entities.EventCouponIssued, 0, map[string]any{
		"coupon_id":       coupon.ID,
		"coupon_issue_id": issue.ID,
		"channel":         issue.Channel,
		"reason":          issue.Reason,
	})
	event.MerchantID = &coupon.MerchantID
	event.StoreID = coupon.StoreID
	event.ConsumerID = &issue.ConsumerID
	u.effects.Record(ctx, event)
}

// Redeem marks an issued coupon as used at a store. The caller must manage
// the store's merchant or own the issue. Of any number of concurrent calls
// for the same issue exactly one succeeds.
func (u *CouponUsecase) Redeem(ctx context.Context, principal entities.Principal, input *entities.RedeemInput) (*entities.RedeemResult, error) {
	if strings.TrimSpace(input.CouponIssueID) == "" || strings.TrimSpace(input.StoreID) == "" {
		return nil, domainerrors.BadRequest("coupon_issue_id and store_id are required")
	}
	issueID, err := uuid.Parse(strings.TrimSpace(input.CouponIssueID))
	if err != nil {
		return nil, domainerrors.BadRequest("invalid coupon_issue_id")
	}
	storeID, err := uuid.Parse(strings.TrimSpace(input.StoreID))
	if err != nil {
		return nil, domainerrors.BadRequest("invalid store_id")
	}

	issue, err := u.issueRepo.GetByID(ctx, issueID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("Coupon issue not found")
		}
		return nil, err
	}
	if issue.Status != entities.IssueStatusIssued {
		return nil, notRedeemable(issue.Status)
	}

	coupon, err := u.getCoupon(ctx, issue.CouponID)
	if err != nil {
		return nil, err
	}
	now := u.now().UTC()
	if coupon.IsExpired(now) {
		return nil, domainerrors.Expired("Coupon has expired")
	}

	store, err := u.storeRepo.GetByID(ctx, storeID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("Store not found")
		}
		return nil, err
	}
	if !principal.CanManage(store.MerchantID) && principal.UserID != issue.ConsumerID {
		return nil, domainerrors.Forbidden("Not allowed to redeem this coupon")
	}
	if !coupon.ValidAt(store) {
		return nil, domainerrors.Conflict("Coupon is not valid at this store")
	}

	// A lost race reports whatever state the winner left behind
	if err := markIssueUsed(ctx, u.issueRepo, issue, store.ID, now); err != nil {
		return nil, err
	}

	u.effects.Touchpoint(ctx, entities.Touchpoint{
		MerchantID: store.MerchantID,
		ConsumerID: issue.ConsumerID,
		Type:       entities.TouchpointVisit,
	})
	event := entities.NewTransactionEvent(entities.EventCouponUsed, coupon.DiscountValue, map[string]any{
		"coupon_id":       coupon.ID,
		"coupon_issue_id": issue.ID,
	})
	event.MerchantID = &store.MerchantID
	event.StoreID = &store.ID
	event.ConsumerID = &issue.ConsumerID
	u.effects.Record(ctx, event)

	return &entities.RedeemResult{ID: issue.ID, Status: entities.IssueStatusUsed}, nil
}

// markIssueUsed consumes a coupon as part of a larger transaction
func markIssueUsed(txCtx context.Context, issueRepo repositories.CouponIssueRepository, issue *entities.CouponIssue, storeID uuid.UUID, now time.Time) error {
	used, err := issueRepo.MarkUsed(txCtx, issue.ID, storeID, now)
	if err != nil {
		return err
	}
	if !used {
		current, err := issueRepo.GetByID(txCtx, issue.ID)
		if err != nil {
			return err
		}
		return notRedeemable(current.Status)
	}
	return nil
}

// ListConsumerCoupons returns a consumer's issues with their effective status
func (u *CouponUsecase) ListConsumerCoupons(ctx context.Context, consumerID uuid.UUID) ([]*entities.IssuedCoupon, error) {
	issues, err := u.issueRepo.ListByConsumer(ctx, consumerID)
	if err != nil {
		return nil, err
	}
	if len(issues) == 0 {
		return []*entities.IssuedCoupon{}, nil
	}

	ids := make([]uuid.UUID, 0, len(issues))
	for _, issue := range issues {
		ids = append(ids, issue.CouponID)
	}
	coupons, err := u.couponRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	now := u.now().UTC()
	out := make([]*entities.IssuedCoupon, 0, len(issues))
	for _, issue := range issues {
		coupon := coupons[issue.CouponID]
		out = append(out, &entities.IssuedCoupon{
			CouponIssue:     issue,
			Coupon:          coupon,
			EffectiveStatus: issue.EffectiveStatus(coupon, now),
		})
	}
	return out, nil
}

// CheckCoupon looks an issue up by id or code for the merchant counter
func (u *CouponUsecase) CheckCoupon(ctx context.Context, principal entities.Principal, issueID, code string) (*entities.CouponCheck, error) {
	var (
		issue *entities.CouponIssue
		err   error
	)
	switch {
	case strings.TrimSpace(issueID) != "":
		id, perr := uuid.Parse(strings.TrimSpace(issueID))
		if perr != nil {
			return nil, domainerrors.BadRequest("invalid coupon_issue_id")
		}
		issue, err = u.issueRepo.GetByID(ctx, id)
	case strings.TrimSpace(code) != "":
		issue, err = u.issueRepo.GetByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	default:
		return nil, domainerrors.BadRequest("coupon_issue_id or code is required")
	}
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("Coupon issue not found")
		}
		return nil, err
	}

	coupon, err := u.getCoupon(ctx, issue.CouponID)
	if err != nil {
		return nil, err
	}
	if !principal.CanManage(coupon.MerchantID) {
		return nil, domainerrors.Forbidden("Coupon belongs to another merchant")
	}

	now := u.now().UTC()
	status := issue.EffectiveStatus(coupon, now)
	check := &entities.CouponCheck{
		Issue:     issue,
		Coupon:    coupon,
		Status:    status,
		CheckedAt: now,
	}
	switch {
	case status != entities.IssueStatusIssued:
		check.Reason = null.StringFrom("Coupon cannot be used: " + string(status))
	case !coupon.InWindow(now):
		check.Reason = null.StringFrom("Coupon is not valid yet")
	default:
		check.CanUse = true
	}
	return check, nil
}

// NearbyCoupons returns active coupons within radius of the consumer,
// nearest first.
func (u *CouponUsecase) NearbyCoupons(ctx context.Context, query entities.NearbyCouponQuery) ([]*entities.NearbyCoupon, error) {
	origin := &geo.Point{Lat: query.Lat, Lng: query.Lng}
	if origin.Validate() != nil {
		return nil, domainerrors.BadRequest("invalid lat/lng")
	}
	if math.IsNaN(query.RadiusKm) || math.IsInf(query.RadiusKm, 0) {
		return nil, domainerrors.BadRequest("invalid radius")
	}
	if query.RadiusKm <= 0 {
		query.RadiusKm = DefaultNearbyRadiusKm
	}
	query.Limit = utils.ClampLimit(query.Limit)

	candidates, err := u.couponRepo.ListNearbyCandidates(ctx, strings.TrimSpace(query.Category), u.now().UTC(), query.Limit*geo.OverFetchFactor)
	if err != nil {
		return nil, err
	}

	radius := query.RadiusKm * 1000
	ranked := geo.FilterByRadius(origin, candidates, func(c *entities.NearbyCoupon) geo.Located {
		loc := geo.Located{RadiusMeters: radius}
		if c.StoreLat.Valid && c.StoreLng.Valid {
			loc.Location = &geo.Point{Lat: c.StoreLat.Float64, Lng: c.StoreLng.Float64}
		}
		return loc
	})
	if len(ranked) > query.Limit {
		ranked = ranked[:query.Limit]
	}

	out := make([]*entities.NearbyCoupon, 0, len(ranked))
	for _, r := range ranked {
		if r.DistanceMeters != nil {
			km := geo.RoundKm(*r.DistanceMeters)
			r.Item.DistanceKm = &km
		}
		out = append(out, r.Item)
	}
	return out, nil
}

func (u *CouponUsecase) getCoupon(ctx context.Context, id uuid.UUID) (*entities.Coupon, error) {
	coupon, err := u.couponRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("Coupon not found")
		}
		return nil, err
	}
	return coupon, nil
}

func notRedeemable(status entities.CouponIssueStatus) error {
	return domainerrors.Conflict("Coupon cannot be used: " + string(status))
}
