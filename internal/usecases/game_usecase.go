package usecases

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"

	"couponmap.backend/internal/domain/entities"
	domainerrors "couponmap.backend/internal/domain/errors"
	"couponmap.backend/internal/domain/repositories"
	"couponmap.backend/pkg/logger"
)

// GameUsecase runs mini-game sessions and pays out their rewards
type GameUsecase struct {
	uow          repositories.UnitOfWork
	gameRepo     repositories.GameSessionRepository
	merchantRepo repositories.MerchantRepository
	couponRepo   repositories.CouponRepository
	coupons      *CouponUsecase
	wallets      *WalletUsecase
	effects      *SideEffects
	rewards      *RewardTable
	rng          func(n int) int
	now          func() time.Time
}

// NewGameUsecase creates a new game usecase. A nil reward table uses
// DefaultRewardTable.
func NewGameUsecase(
	uow repositories.UnitOfWork,
	gameRepo repositories.GameSessionRepository,
	merchantRepo repositories.MerchantRepository,
	couponRepo repositories.CouponRepository,
	coupons *CouponUsecase,
	wallets *WalletUsecase,
	effects *SideEffects,
	rewards *RewardTable,
) *GameUsecase {
	if rewards == nil {
		rewards = DefaultRewardTable()
	}
	return &GameUsecase{
		uow:          uow,
		gameRepo:     gameRepo,
		merchantRepo: merchantRepo,
		couponRepo:   couponRepo,
		coupons:      coupons,
		wallets:      wallets,
		effects:      effects,
		rewards:      rewards,
		rng:          rand.Intn,
		now:          time.Now,
	}
}

// StartGame opens a playing session
func (u *GameUsecase) StartGame(ctx context.Context, input *entities.StartGameInput) (*entities.GameSession, error) {
	gameType := strings.TrimSpace(input.GameType)
	if strings.TrimSpace(input.ConsumerID) == "" || gameType == "" {
		return nil, domainerrors.BadRequest("consumer_id and game_type are required")
	}
	consumerID, err := uuid.Parse(strings.TrimSpace(input.ConsumerID))
	if err != nil {
		return nil, domainerrors.BadRequest("invalid consumer_id")
	}
	merchantID, err := parseOptionalID(input.MerchantID, "merchant_id")
	if err != nil {
		return nil, err
	}

	session := &entities.GameSession{
		ConsumerID: consumerID,
		MerchantID: merchantID,
		GameType:   gameType,
		Status:     entities.GamePlaying,
		StartedAt:  u.now().UTC(),
	}
	if err := u.gameRepo.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// FinishGame closes a session and pays its reward. A won game hands out a
// coupon of the session merchant when one is issuable, otherwise a point
// draw from the reward table.
func (u *GameUsecase) FinishGame(ctx context.Context, input *entities.FinishGameInput) (*entities.GameReward, error) {
	sessionID, err := uuid.Parse(strings.TrimSpace(input.SessionID))
	if err != nil {
		return nil, domainerrors.BadRequest("valid session_id is required")
	}
	if input.StepsCleared < 0 {
		return nil, domainerrors.BadRequest("steps_cleared cannot be negative")
	}

	session, err := u.gameRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("Game session not found")
		}
		return nil, err
	}
	if session.Status == entities.GameFinished {
		return nil, errGameFinished
	}
	session.StepsCleared = input.StepsCleared
	session.Success = input.Success

	var candidate *entities.Coupon
	if input.Success {
		candidate, err = u.rewardCoupon(ctx, session)
		if err != nil {
			return nil, err
		}
	}

	out, err := u.finish(ctx, session, candidate)
	if candidate != nil && errors.Is(err, domainerrors.ErrIssueLimitReached) {
		// Stock or the per-user limit ran out since the lookup
		out, err = u.finish(ctx, session, nil)
	}
	if err != nil {
		return nil, err
	}

	if out.issue != nil {
		u.coupons.issued(ctx, out.issue, out.coupon)
		u.effects.Touchpoint(ctx, entities.Touchpoint{
			MerchantID: out.coupon.MerchantID,
			ConsumerID: session.ConsumerID,
			Type:       entities.TouchpointCouponGame,
		})
	}

	event := entities.NewTransactionEvent(entities.EventGameFinished, out.reward.RewardValue, map[string]any{
		"game_session_id": session.ID,
		"game_type":       session.GameType,
		"steps_cleared":   session.StepsCleared,
		"success":         session.Success,
		"reward_type":     out.reward.RewardType,
	})
	event.ConsumerID = &session.ConsumerID
	if out.coupon != nil {
		event.MerchantID = &out.coupon.MerchantID
	} else {
		event.MerchantID = session.MerchantID
	}
	u.effects.Record(ctx, event)

	return out.reward, nil
}

var errGameFinished = domainerrors.Conflict("Game session already finished")

type gameOutcome struct {
	reward *entities.GameReward
	issue  *entities.CouponIssue
	coupon *entities.Coupon
}

// finish pays the reward and closes the session in one transaction
func (u *GameUsecase) finish(ctx context.Context, session *entities.GameSession, candidate *entities.Coupon) (*gameOutcome, error) {
	out := &gameOutcome{reward: &entities.GameReward{
		SessionID:  session.ID,
		Success:    session.Success,
		RewardType: entities.RewardNone,
	}}
	now := u.now().UTC()

	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		switch {
		case candidate != nil:
			issue, coupon, err := u.coupons.issueTx(txCtx, candidate.ID, session.ConsumerID, entities.ChannelEvent, entities.GameRewardReason)
			if err != nil {
				return err
			}
			out.issue, out.coupon = issue, coupon
			out.reward.RewardType = entities.RewardCoupon
			out.reward.RewardValue = coupon.DiscountValue
			out.reward.CouponTitle = coupon.Title
			out.reward.IssueID = &issue.ID
		case session.Success:
			points := u.rewards.Draw(u.rng)
			if points > 0 {
				if _, err := u.wallets.ApplyDelta(txCtx, entities.WalletDelta{
					Owner:       entities.ConsumerWallet(session.ConsumerID),
					Type:        entities.WalletTxGameReward,
					Amount:      points,
					Description: "Game reward " + session.GameType,
				}); err != nil {
					return err
				}
				out.reward.RewardType = entities.RewardPoints
				out.reward.RewardValue = points
			}
		}

		session.RewardType = null.StringFrom(string(out.reward.RewardType))
		session.RewardValue = out.reward.RewardValue
		session.IssueID = out.reward.IssueID
		session.FinishedAt = null.TimeFrom(now)
		finished, err := u.gameRepo.Finish(txCtx, session)
		if err != nil {
			return err
		}
		if !finished {
			return errGameFinished
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	session.Status = entities.GameFinished
	return out, nil
}

// rewardCoupon finds an issuable coupon of the session merchant, or of
// the first approved merchant when the session has none.
func (u *GameUsecase) rewardCoupon(ctx context.Context, session *entities.GameSession) (*entities.Coupon, error) {
	var merchantID uuid.UUID
	if session.MerchantID != nil {
		merchantID = *session.MerchantID
	} else {
		merchant, err := u.merchantRepo.FirstApproved(ctx)
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		merchantID = merchant.ID
	}

	coupon, err := u.couponRepo.FindIssuableForMerchant(ctx, merchantID, u.now())
	if errors.Is(err, domainerrors.ErrNotFound) {
		logger.Debug(ctx, "No issuable coupon for game reward", zap.String("merchant_id", merchantID.String()))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return coupon, nil
}
