package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"couponmap.backend/internal/domain/entities"
	domainerrors "couponmap.backend/internal/domain/errors"
	"couponmap.backend/internal/interfaces/http/response"
)

type couponService interface {
	CreateCoupon(ctx context.Context, principal entities.Principal, input *entities.CreateCouponInput) (*entities.Coupon, error)
	Issue(ctx context.Context, principal entities.Principal, input *entities.IssueCouponInput) (*entities.IssueResult, error)
	Redeem(ctx context.Context, principal entities.Principal, input *entities.RedeemInput) (*entities.RedeemResult, error)
	ListConsumerCoupons(ctx context.Context, consumerID uuid.UUID) ([]*entities.IssuedCoupon, error)
	CheckCoupon(ctx context.Context, principal entities.Principal, issueID, code string) (*entities.CouponCheck, error)
	NearbyCoupons(ctx context.Context, query entities.NearbyCouponQuery) ([]*entities.NearbyCoupon, error)
}

// CouponHandler handles coupon endpoints
type CouponHandler struct {
	couponUsecase couponService
}

// NewCouponHandler creates a new coupon handler
func NewCouponHandler(couponUsecase couponService) *CouponHandler {
	return &CouponHandler{couponUsecase: couponUsecase}
}

// CreateCoupon creates a coupon template
// POST /api/v1/merchant/coupons
func (h *CouponHandler) CreateCoupon(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var input entities.CreateCouponInput
	if err := bindJSON(c, &input); err != nil {
		response.Error(c, err)
		return
	}

	coupon, err := h.couponUsecase.CreateCoupon(c.Request.Context(), p, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"coupon": coupon})
}

// Issue grants a coupon to a consumer
// POST /api/v1/coupons/issue
func (h *CouponHandler) Issue(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var input entities.IssueCouponInput
	if err := bindJSON(c, &input); err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.couponUsecase.Issue(c.Request.Context(), p, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, result)
}

// Redeem marks an issued coupon as used
// POST /api/v1/coupons/use
func (h *CouponHandler) Redeem(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var input entities.RedeemInput
	if err := bindJSON(c, &input); err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.couponUsecase.Redeem(c.Request.Context(), p, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// ListMyCoupons lists a consumer's coupons
// GET /api/v1/coupons/my?consumer_id=
func (h *CouponHandler) ListMyCoupons(c *gin.Context) {
	consumerID, err := uuidQuery(c, "consumer_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	coupons, err := h.couponUsecase.ListConsumerCoupons(c.Request.Context(), consumerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"coupons": coupons, "count": len(coupons)})
}

// CheckCoupon looks up an issue for the counter
// GET /api/v1/merchant/check-coupon?coupon_issue_id=|code=
func (h *CouponHandler) CheckCoupon(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	check, err := h.couponUsecase.CheckCoupon(c.Request.Context(), p, c.Query("coupon_issue_id"), c.Query("code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, check)
}

// NearbyCoupons lists coupons of stores around the consumer
// GET /api/v1/coupons/nearby?lat=&lng=&radius=&category=&limit=
func (h *CouponHandler) NearbyCoupons(c *gin.Context) {
	origin, err := originQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if origin == nil {
		response.Error(c, domainerrors.BadRequest("lat and lng are required"))
		return
	}
	radius, err := floatQuery(c, "radius")
	if err != nil {
		response.Error(c, err)
		return
	}
	limit, err := intQuery(c, "limit")
	if err != nil {
		response.Error(c, err)
		return
	}

	query := entities.NearbyCouponQuery{
		Lat:      origin.Lat,
		Lng:      origin.Lng,
		Category: c.Query("category"),
		Limit:    limit,
	}
	if radius != nil {
		query.RadiusKm = *radius
	}

	coupons, err := h.couponUsecase.NearbyCoupons(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"coupons": coupons, "count": len(coupons)})
}
