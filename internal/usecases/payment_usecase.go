package usecases

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"couponmap.backend/internal/domain/entities"
	domainerrors "couponmap.backend/internal/domain/errors"
	"couponmap.backend/internal/domain/repositories"
	"couponmap.backend/pkg/crypto"
	"couponmap.backend/pkg/logger"
)

const pgOrderSuffixLength = 6

// PaymentGateway confirms card payments with the external processor
type PaymentGateway interface {
	Confirm(ctx context.Context, paymentKey, orderID string, amount int64) (*entities.GatewayApproval, error)
}

var errPaymentSettled = errors.New("payment already settled")

// PaymentUsecase handles merchant wallet topups through the card gateway
type PaymentUsecase struct {
	uow          repositories.UnitOfWork
	paymentRepo  repositories.PaymentRepository
	packageRepo  repositories.TopupPackageRepository
	merchantRepo repositories.MerchantRepository
	eventRepo    repositories.TransactionEventRepository
	wallets      *WalletUsecase
	gateway      PaymentGateway
	effects      *SideEffects
	now          func() time.Time
}

// NewPaymentUsecase creates a new payment usecase
func NewPaymentUsecase(
	uow repositories.UnitOfWork,
	paymentRepo repositories.PaymentRepository,
	packageRepo repositories.TopupPackageRepository,
	merchantRepo repositories.MerchantRepository,
	eventRepo repositories.TransactionEventRepository,
	wallets *WalletUsecase,
	gateway PaymentGateway,
	effects *SideEffects,
) *PaymentUsecase {
	return &PaymentUsecase{
		uow:          uow,
		paymentRepo:  paymentRepo,
		packageRepo:  packageRepo,
		merchantRepo: merchantRepo,
		eventRepo:    eventRepo,
		wallets:      wallets,
		gateway:      gateway,
		effects:      effects,
		now:          time.Now,
	}
}

// ListPackages returns the active topup packages
func (u *PaymentUsecase) ListPackages(ctx context.Context) ([]*entities.TopupPackage, error) {
	packages, err := u.packageRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if packages == nil {
		packages = []*entities.TopupPackage{}
	}
	return packages, nil
}

// CreateTopup opens a pending payment for a package or a custom amount
func (u *PaymentUsecase) CreateTopup(ctx context.Context, principal entities.Principal, input *entities.CreateTopupInput) (*entities.TopupCheckout, error) {
	if principal.MerchantID == nil {
		return nil, domainerrors.Forbidden("Merchant account required")
	}
	merchant, err := u.merchantRepo.GetByID(ctx, *principal.MerchantID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("Merchant not found")
		}
		return nil, err
	}
	if merchant.ApprovalStatus == entities.ApprovalRejected || merchant.ApprovalStatus == entities.ApprovalSuspended {
		return nil, domainerrors.Wrap(http.StatusForbidden, "Merchant is not active", domainerrors.ErrMerchantNotActive)
	}

	payment := &entities.Payment{
		MerchantID:  merchant.ID,
		PaymentType: entities.PaymentTypeTopup,
		Status:      entities.PaymentStatusPending,
	}
	orderName := "Wallet topup"

	switch {
	case strings.TrimSpace(input.PackageID) != "":
		packageID, err := uuid.Parse(strings.TrimSpace(input.PackageID))
		if err != nil {
			return nil, domainerrors.BadRequest("invalid package_id")
		}
		pkg, err := u.packageRepo.GetActiveByID(ctx, packageID)
		if err != nil {
			if errors.Is(err, domainerrors.ErrNotFound) {
				return nil, domainerrors.NotFound("Topup package not found")
			}
			return nil, err
		}
		payment.PackageID = &pkg.ID
		payment.Amount = pkg.Amount
		payment.BonusAmount = pkg.Bonus()
		orderName = pkg.Name
	case input.CustomAmount > 0:
		if input.CustomAmount < entities.MinCustomTopupAmount {
			return nil, domainerrors.BadRequest(fmt.Sprintf("custom_amount must be at least %d", entities.MinCustomTopupAmount))
		}
		payment.Amount = input.CustomAmount
	default:
		return nil, domainerrors.BadRequest("package_id or custom_amount is required")
	}
	payment.FinalAmount = payment.Amount + payment.BonusAmount

	suffix, err := crypto.RandomString(crypto.UpperAlnum, pgOrderSuffixLength)
	if err != nil {
		return nil, err
	}
	now := u.now().UTC()
	payment.PGOrderID = entities.PGOrderID(now, suffix)
	payment.CreatedAt = now
	payment.UpdatedAt = now

	if err := u.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}

	return &entities.TopupCheckout{
		PaymentID:   payment.ID,
		PGOrderID:   payment.PGOrderID,
		Amount:      payment.Amount,
		BonusAmount: payment.BonusAmount,
		TotalCredit: payment.FinalAmount,
		OrderName:   orderName,
	}, nil
}

// ConfirmPayment asks the gateway to capture a pending payment and credits
// the merchant wallet. Confirming an already paid order returns the stored
// result without calling the gateway again.
func (u *PaymentUsecase) ConfirmPayment(ctx context.Context, principal entities.Principal, input *entities.ConfirmPaymentInput) (*entities.PaymentConfirmation, error) {
	paymentKey := strings.TrimSpace(input.PaymentKey)
	orderID := strings.TrimSpace(input.OrderID)
	if paymentKey == "" || orderID == "" || input.Amount <= 0 {
		return nil, domainerrors.BadRequest("paymentKey, orderId and amount are required")
	}

	payment, err := u.getByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !principal.CanManage(payment.MerchantID) {
		return nil, domainerrors.Forbidden("Payment belongs to another merchant")
	}

	switch payment.Status {
	case entities.PaymentStatusPaid:
		return confirmation(payment), nil
	case entities.PaymentStatusFailed:
		return nil, domainerrors.Wrap(http.StatusBadRequest, "Payment already failed", domainerrors.ErrPaymentFailed)
	}
	if input.Amount != payment.Amount {
		return nil, domainerrors.BadRequest("Amount does not match the order")
	}

	approval, err := u.gateway.Confirm(ctx, paymentKey, orderID, payment.Amount)
	if err != nil {
		var decline *entities.GatewayDecline
		if errors.As(err, &decline) {
			if _, markErr := u.paymentRepo.MarkFailed(ctx, payment.ID, decline); markErr != nil {
				logger.Error(ctx, "Failed to mark payment failed", zap.String("pg_order_id", orderID), zap.Error(markErr))
			}
			msg := decline.Message
			if decline.Code != "" {
				msg = fmt.Sprintf("%s (%s)", decline.Message, decline.Code)
			}
			return nil, domainerrors.Wrap(http.StatusBadRequest, msg, domainerrors.ErrPaymentFailed)
		}
		logger.Error(ctx, "Payment gateway unavailable", zap.String("pg_order_id", orderID), zap.Error(err))
		return nil, domainerrors.Dependency(err)
	}
	if approval.PaymentKey == "" {
		approval.PaymentKey = paymentKey
	}

	var event *entities.TransactionEvent
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		paid, err := u.paymentRepo.MarkPaid(txCtx, payment.ID, approval)
		if err != nil {
			return err
		}
		if !paid {
			return errPaymentSettled
		}

		owner := entities.MerchantWallet(payment.MerchantID)
		if _, err := u.wallets.ApplyDelta(txCtx, entities.WalletDelta{
			Owner:       owner,
			Type:        entities.WalletTxCharge,
			Amount:      payment.Amount,
			PaymentID:   &payment.ID,
			Description: "Topup " + payment.PGOrderID,
		}); err != nil {
			return err
		}
		if payment.BonusAmount > 0 {
			if _, err := u.wallets.ApplyDelta(txCtx, entities.WalletDelta{
				Owner:       owner,
				Type:        entities.WalletTxBonus,
				Amount:      payment.BonusAmount,
				PaymentID:   &payment.ID,
				Description: "Topup bonus " + payment.PGOrderID,
			}); err != nil {
				return err
			}
		}

		event = entities.NewTransactionEvent(entities.EventPaymentCompleted, payment.Amount, map[string]any{
			"payment_id":   payment.ID,
			"pg_order_id":  payment.PGOrderID,
			"bonus_amount": payment.BonusAmount,
			"method":       approval.Method,
		})
		event.MerchantID = &payment.MerchantID
		event.StoreID = payment.StoreID
		return u.eventRepo.Create(txCtx, event)
	})
	if errors.Is(err, errPaymentSettled) {
		// A concurrent confirm won; answer with whatever it stored
		current, gerr := u.getByOrderID(ctx, orderID)
		if gerr != nil {
			return nil, gerr
		}
		if current.Status == entities.PaymentStatusPaid {
			return confirmation(current), nil
		}
		return nil, domainerrors.Conflict("Payment is " + string(current.Status))
	}
	if err != nil {
		logger.Error(ctx, "Approved payment could not be recorded", zap.String("pg_order_id", orderID), zap.Error(err))
		return nil, err
	}

	u.effects.Publish(ctx, event)

	paid, err := u.paymentRepo.GetByID(ctx, payment.ID)
	if err != nil {
		return nil, err
	}
	return confirmation(paid), nil
}

func (u *PaymentUsecase) getByOrderID(ctx context.Context, orderID string) (*entities.Payment, error) {
	payment, err := u.paymentRepo.GetByPGOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("Payment not found")
		}
		return nil, err
	}
	return payment, nil
}

func confirmation(p *entities.Payment) *entities.PaymentConfirmation {
	return &entities.PaymentConfirmation{
		PaymentID:   p.ID,
		Amount:      p.Amount,
		BonusAmount: p.BonusAmount,
		TotalCredit: p.Amount + p.BonusAmount,
		ReceiptURL:  p.ReceiptURL,
	}
}
