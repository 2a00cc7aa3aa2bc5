package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"couponmap.backend/internal/domain/entities"
	"couponmap.backend/internal/interfaces/http/response"
)

type orderService interface {
	StartSession(ctx context.Context, input *entities.StartSessionInput) (*entities.TableSession, error)
	GetSession(ctx context.Context, id, code string) (*entities.TableSession, error)
	AddToCart(ctx context.Context, input *entities.AddToCartInput) (*entities.CartItem, error)
	UpdateCartItem(ctx context.Context, input *entities.UpdateCartInput) (*entities.Cart, error)
	RemoveCartItem(ctx context.Context, itemID uuid.UUID) (*entities.Cart, error)
	GetCart(ctx context.Context, sessionID uuid.UUID) (*entities.Cart, error)
	SubmitOrder(ctx context.Context, input *entities.SubmitOrderInput) (*entities.SubmittedOrder, error)
	UpdateSessionStatus(ctx context.Context, principal entities.Principal, sessionID uuid.UUID, status entities.SessionStatus) (*entities.TableSession, error)
}

// OrderHandler handles the table-order flow
type OrderHandler struct {
	orderUsecase orderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderUsecase orderService) *OrderHandler {
	return &OrderHandler{orderUsecase: orderUsecase}
}

// StartSession opens or joins the session of a table
// POST /api/v1/order/session
func (h *OrderHandler) StartSession(c *gin.Context) {
	var input entities.StartSessionInput
	if err := bindJSON(c, &input); err != nil {
		response.Error(c, err)
		return
	}

	session, err := h.orderUsecase.StartSession(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": session})
}

// GetSession finds a session by id or code
// GET /api/v1/order/session?session_id=|code=
func (h *OrderHandler) GetSession(c *gin.Context) {
	session, err := h.orderUsecase.GetSession(c.Request.Context(), c.Query("session_id"), c.Query("code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": session})
}

// AddToCart adds a pending cart line
// POST /api/v1/order/cart
func (h *OrderHandler) AddToCart(c *gin.Context) {
	var input entities.AddToCartInput
	if err := bindJSON(c, &input); err != nil {
		response.Error(c, err)
		return
	}

	item, err := h.orderUsecase.AddToCart(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"item": item})
}

// UpdateCartItem changes the quantity of a pending line
// PUT /api/v1/order/cart
func (h *OrderHandler) UpdateCartItem(c *gin.Context) {
	var input entities.UpdateCartInput
	if err := bindJSON(c, &input); err != nil {
		response.Error(c, err)
		return
	}

	cart, err := h.orderUsecase.UpdateCartItem(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, cart)
}

// RemoveCartItem deletes a pending line
// DELETE /api/v1/order/cart?item_id=
func (h *OrderHandler) RemoveCartItem(c *gin.Context) {
	itemID, err := uuidQuery(c, "item_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	cart, err := h.orderUsecase.RemoveCartItem(c.Request.Context(), itemID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, cart)
}

// GetCart returns the cart of a session
// GET /api/v1/order/cart?session_id=
func (h *OrderHandler) GetCart(c *gin.Context) {
	sessionID, err := uuidQuery(c, "session_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	cart, err := h.orderUsecase.GetCart(c.Request.Context(), sessionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, cart)
}

// SubmitOrder sends the pending lines to the kitchen
// POST /api/v1/order/submit
func (h *OrderHandler) SubmitOrder(c *gin.Context) {
	var input entities.SubmitOrderInput
	if err := bindJSON(c, &input); err != nil {
		response.Error(c, err)
		return
	}

	order, err := h.orderUsecase.SubmitOrder(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, order)
}

// UpdateSessionStatus settles or closes a session
// PUT /api/v1/merchant/sessions/:id/status
func (h *OrderHandler) UpdateSessionStatus(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req entities.SessionStatusInput
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	session, err := h.orderUsecase.UpdateSessionStatus(c.Request.Context(), p, id, req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": session})
}
