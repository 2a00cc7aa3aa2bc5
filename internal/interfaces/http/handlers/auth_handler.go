package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"couponmap.backend/internal/domain/entities"
	domainerrors "couponmap.backend/internal/domain/errors"
	"couponmap.backend/internal/interfaces/http/response"
)

type authService interface {
	Register(ctx context.Context, input *entities.RegisterInput) (*entities.AuthResponse, error)
	Login(ctx context.Context, input *entities.LoginInput) (*entities.AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*entities.AuthResponse, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authUsecase authService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authUsecase authService) *AuthHandler {
	return &AuthHandler{authUsecase: authUsecase}
}

// Register handles consumer sign-up
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var input entities.RegisterInput
	if err := bindJSON(c, &input); err != nil {
		response.Error(c, err)
		return
	}

	auth, err := h.authUsecase.Register(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, auth)
}

// Login handles user login
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var input entities.LoginInput
	if err := bindJSON(c, &input); err != nil {
		response.Error(c, err)
		return
	}

	auth, err := h.authUsecase.Login(c.Request.Context(), &input)
	if err != nil {
		if errors.Is(err, domainerrors.ErrInvalidCredentials) {
			response.Error(c, domainerrors.Wrap(http.StatusUnauthorized, "Invalid email or password", domainerrors.ErrInvalidCredentials))
			return
		}
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, auth)
}

// RefreshToken exchanges a refresh token
// POST /api/v1/auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var input entities.RefreshInput
	if err := bindJSON(c, &input); err != nil {
		response.Error(c, err)
		return
	}

	auth, err := h.authUsecase.RefreshToken(c.Request.Context(), input.RefreshToken)
	if err != nil {
		if errors.Is(err, domainerrors.ErrUnauthorized) {
			response.Error(c, domainerrors.Unauthorized("Invalid refresh token"))
			return
		}
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, auth)
}

// GetMe returns the current user
// GET /api/v1/auth/me
func (h *AuthHandler) GetMe(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	user, err := h.authUsecase.GetUserByID(c.Request.Context(), p.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": user})
}
