package models

import "time"

// WalletTransaction records every balance change (task rewards, withdrawal holds
// and refunds, plan purchases, referral commission). Reference points at the
// record that caused it, so each cause moves the balance at most once.
type WalletTransaction struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;uniqueIndex:idx_wallet_tx_cause" json:"user_id"`
	AmountCents  int64     `gorm:"not null" json:"amount_cents"` // positive = credit, negative = debit
	BalanceAfter int64     `gorm:"not null" json:"balance_after_cents"`
	Type         string    `gorm:"size:30;not null;uniqueIndex:idx_wallet_tx_cause" json:"type"`
	Reference    string    `gorm:"size:128;not null;uniqueIndex:idx_wallet_tx_cause" json:"reference"`
	CreatedAt    time.Time `json:"created_at"`
}

func (WalletTransaction) TableName() string {
	return "wallet_transactions"
}
