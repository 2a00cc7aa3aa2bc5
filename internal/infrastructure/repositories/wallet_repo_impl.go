package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"couponmap.backend/internal/domain/entities"
	domainerrors "couponmap.backend/internal/domain/errors"
	domainRepos "couponmap.backend/internal/domain/repositories"
	"couponmap.backend/internal/infrastructure/models"
	"couponmap.backend/pkg/utils"
)

// WalletRepository implements wallet and ledger data operations
type WalletRepository struct {
	db *gorm.DB
}

// NewWalletRepository creates a new wallet repository
func NewWalletRepository(db *gorm.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

// GetByOwner gets the wallet of owner
func (r *WalletRepository) GetByOwner(ctx context.Context, owner entities.WalletOwner) (*entities.Wallet, error) {
	var m models.Wallet
	if err := GetDB(ctx, r.db).
		Where("owner_type = ? AND owner_id = ?", string(owner.Type), owner.ID).
		First(&m).Error; err != nil {
		return nil, translateError(err)
	}
	return walletEntity(&m), nil
}

// Ensure creates an empty wallet when owner has none
func (r *WalletRepository) Ensure(ctx context.Context, owner entities.WalletOwner) error {
	now := time.Now().UTC()
	m := &models.Wallet{
		ID:        utils.GenerateUUIDv7(),
		OwnerType: string(owner.Type),
		OwnerID:   owner.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{DoNothing: true}).Create(m).Error
}

// ApplyBalance adds change in one UPDATE ... RETURNING so concurrent deltas
// never read a stale balance.
func (r *WalletRepository) ApplyBalance(ctx context.Context, owner entities.WalletOwner, change domainRepos.BalanceChange) (*entities.Wallet, error) {
	query := `UPDATE wallets
		SET balance = balance + ?, total_charged = total_charged + ?, total_used = total_used + ?, updated_at = ?
		WHERE owner_type = ? AND owner_id = ?`
	args := []interface{}{change.Amount, change.Charged, change.Used, time.Now().UTC(), string(owner.Type), owner.ID}
	if change.NonNegative {
		query += ` AND balance + ? >= 0`
		args = append(args, change.Amount)
	}
	query += ` RETURNING id, owner_type, owner_id, balance, total_charged, total_used, created_at, updated_at`

	var m models.Wallet
	res := GetDB(ctx, r.db).Raw(query, args...).Scan(&m)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		if change.NonNegative {
			if _, err := r.GetByOwner(ctx, owner); err == nil {
				return nil, domainerrors.ErrInsufficientFunds
			}
		}
		return nil, domainerrors.ErrNotFound
	}
	return walletEntity(&m), nil
}

// AppendTransaction writes one ledger row
func (r *WalletRepository) AppendTransaction(ctx context.Context, tx *entities.WalletTransaction) error {
	assignIdentity(&tx.ID, &tx.CreatedAt)
	m := &models.WalletTransaction{
		ID:            tx.ID,
		WalletID:      tx.WalletID,
		OwnerID:       tx.OwnerID,
		Type:          string(tx.Type),
		Amount:        tx.Amount,
		BalanceBefore: tx.BalanceBefore,
		BalanceAfter:  tx.BalanceAfter,
		PaymentID:     tx.PaymentID,
		Description:   tx.Description.Ptr(),
		CreatedAt:     tx.CreatedAt,
	}
	return translateError(GetDB(ctx, r.db).Create(m).Error)
}

// ListTransactions returns the newest ledger rows of a wallet
func (r *WalletRepository) ListTransactions(ctx context.Context, walletID uuid.UUID, limit int) ([]*entities.WalletTransaction, error) {
	var ms []models.WalletTransaction
	q := GetDB(ctx, r.db).Where("wallet_id = ?", walletID).Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]*entities.WalletTransaction, 0, len(ms))
	for i := range ms {
		m := &ms[i]
		out = append(out, &entities.WalletTransaction{
			ID:            m.ID,
			WalletID:      m.WalletID,
			OwnerID:       m.OwnerID,
			Type:          entities.WalletTxType(m.Type),
			Amount:        m.Amount,
			BalanceBefore: m.BalanceBefore,
			BalanceAfter:  m.BalanceAfter,
			PaymentID:     m.PaymentID,
			Description:   null.StringFromPtr(m.Description),
			CreatedAt:     m.CreatedAt,
		})
	}
	return out, nil
}

func walletEntity(m *models.Wallet) *entities.Wallet {
	return &entities.Wallet{
		ID:           m.ID,
		OwnerType:    entities.WalletOwnerType(m.OwnerType),
		OwnerID:      m.OwnerID,
		Balance:      m.Balance,
		TotalCharged: m.TotalCharged,
		TotalUsed:    m.TotalUsed,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
