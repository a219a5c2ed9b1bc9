package payout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const StatusSent = "SENT"

// StubProvider accepts every payout without moving money. It is the only
// provider wired today; a gateway client would satisfy the same interface.
type StubProvider struct {
	Now func() time.Time
}

func (s *StubProvider) Send(ctx context.Context, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.AmountCents <= 0 || req.Destination == "" {
		return nil, fmt.Errorf("payout %s: invalid request", req.OrderID)
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return &Result{
		Reference: "stub_" + strings.ToLower(req.Method) + "_" + uuid.NewString(),
		Status:    StatusSent,
		SentAt:    now(),
	}, nil
}

// IsStubReference reports whether ref was issued by StubProvider.
func IsStubReference(ref string) bool {
	return strings.HasPrefix(ref, "stub_")
}
