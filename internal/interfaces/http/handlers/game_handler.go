package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"couponmap.backend/internal/domain/entities"
	"couponmap.backend/internal/interfaces/http/response"
)

type gameService interface {
	StartGame(ctx context.Context, input *entities.StartGameInput) (*entities.GameSession, error)
	FinishGame(ctx context.Context, input *entities.FinishGameInput) (*entities.GameReward, error)
}

// GameHandler handles the mini-game endpoints
type GameHandler struct {
	gameUsecase gameService
}

// NewGameHandler creates a new game handler
func NewGameHandler(gameUsecase gameService) *GameHandler {
	return &GameHandler{gameUsecase: gameUsecase}
}

// StartGame opens a game session
// POST /api/v1/game/start
func (h *GameHandler) StartGame(c *gin.Context) {
	var input entities.StartGameInput
	if err := bindJSON(c, &input); err != nil {
		response.Error(c, err)
		return
	}

	session, err := h.gameUsecase.StartGame(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"session": session})
}

// FinishGame settles a session and draws the reward
// POST /api/v1/game/finish
func (h *GameHandler) FinishGame(c *gin.Context) {
	var input entities.FinishGameInput
	if err := bindJSON(c, &input); err != nil {
		response.Error(c, err)
		return
	}

	reward, err := h.gameUsecase.FinishGame(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, reward)
}
