package repository

import (
	"context"

	"earnly/internal/models"

	"gorm.io/gorm"
)

// WalletRepository stores the wallet transaction history that accompanies
// every balance change.
type WalletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

func (r *WalletRepository) WithTx(tx *gorm.DB) *WalletRepository {
	return &WalletRepository{db: tx}
}

func (r *WalletRepository) RecordTransaction(ctx context.Context, userID uint, amountCents, balanceAfter int64, txType, reference string) error {
	return r.db.WithContext(ctx).Create(&models.WalletTransaction{
		UserID:       userID,
		AmountCents:  amountCents,
		BalanceAfter: balanceAfter,
		Type:         txType,
		Reference:    reference,
	}).Error
}

// Exists reports whether a transaction of txType with reference was already
// recorded for the user.
func (r *WalletRepository) Exists(ctx context.Context, userID uint, txType, reference string) (bool, error) {
	var c int64
	err := r.db.WithContext(ctx).Model(&models.WalletTransaction{}).
		Where("user_id = ? AND type = ? AND reference = ?", userID, txType, reference).
		Count(&c).Error
	return c > 0, err
}

func (r *WalletRepository) ListByUser(ctx context.Context, userID uint, page, limit int) ([]models.WalletTransaction, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.WalletTransaction{}).Where("user_id = ?", userID)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	limit, offset := paginate(page, limit)
	var list []models.WalletTransaction
	err := q.Order("id DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, total, err
}

// SumByType totals amounts of one transaction type across all users.
func (r *WalletRepository) SumByType(ctx context.Context, txType string) (int64, error) {
	var out struct{ Total int64 }
	err := r.db.WithContext(ctx).Model(&models.WalletTransaction{}).
		Select("COALESCE(SUM(amount_cents), 0) as total").
		Where("type = ?", txType).Scan(&out).Error
	return out.Total, err
}
