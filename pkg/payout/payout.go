// Package payout sends approved withdrawals to the user's wallet or bank.
package payout

import (
	"context"
	"time"
)

type Request struct {
	OrderID     string
	UserID      uint
	AmountCents int64
	Currency    string
	Method      string // EASYPAISA, JAZZCASH, BANK
	Destination string // normalized MSISDN or IBAN
}

type Result struct {
	Reference string
	Status    string
	SentAt    time.Time
}

type Provider interface {
	Send(ctx context.Context, req Request) (*Result, error)
}
