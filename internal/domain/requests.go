package domain

import "time"

// Actor is the authenticated caller as supplied by the auth layer.
type Actor struct {
	ID     uint
	Role   string
	Banned bool
}

type (
	CreateSubmissionRequest struct {
		TaskID    uint   `json:"task_id" validate:"required"`
		ProofRef  string `json:"proof_ref" validate:"omitempty,max=512"`
		ProofText string `json:"proof_text" validate:"omitempty,max=4000"`
	}

	CreateWithdrawalRequest struct {
		AmountCents int64  `json:"amount_cents"`
		Method      string `json:"method" validate:"required,oneof=EASYPAISA JAZZCASH BANK"`
		Destination string `json:"destination" validate:"required,max=64"`
	}

	ResolveRequest struct {
		Decision string `json:"decision" validate:"required,oneof=APPROVE REJECT"`
		Reason   string `json:"reason" validate:"omitempty,max=255"`
	}

	PublishPlanRequest struct {
		Name              string `json:"name" validate:"required,max=100"`
		PriceCents        int64  `json:"price_cents" validate:"gte=0"`
		DailyLimit        int    `json:"daily_limit" validate:"required,gt=0"`
		ValidityDays      int    `json:"validity_days" validate:"required,gt=0"`
		CommissionPercent string `json:"commission_percent" validate:"omitempty,numeric"`
		SortOrder         int    `json:"sort_order"`
		Supersedes        *uint  `json:"supersedes"`
	}

	TaskRequest struct {
		Title       string `json:"title" validate:"required,max=150"`
		Description string `json:"description" validate:"max=2000"`
		Category    string `json:"category" validate:"required,max=50"`
		RewardCents int64  `json:"reward_cents" validate:"required,gt=0"`
		Active      *bool  `json:"active"`
	}

	RegisterRequest struct {
		Email        string `json:"email" validate:"required,email,max=255"`
		Username     string `json:"username" validate:"required,alphanum,min=3,max=64"`
		Password     string `json:"password" validate:"required,min=8,max=72"`
		ReferralCode string `json:"referral_code" validate:"omitempty,alphanum,max=16"`
	}

	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	RoleChangeRequest struct {
		Role string `json:"role" validate:"required"`
	}

	BanRequest struct {
		Reason string `json:"reason" validate:"max=255"`
	}

	AuditFilter struct {
		AdminID *uint
		Action  string
		From    *time.Time
		To      *time.Time
		Page    int
		Limit   int
	}
)
