package domain

const (
	RoleUser       = "user"
	RoleSuperAdmin = "super_admin"
	RoleManager    = "manager"
	RoleSupport    = "support"
)

// Roles lists every role a user record may carry.
var Roles = []string{RoleUser, RoleSuperAdmin, RoleManager, RoleSupport}

func IsKnownRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

const (
	UserStatusActive = "active"
	UserStatusBanned = "banned"
)

const (
	PlanStatusNone    = "none"
	PlanStatusActive  = "active"
	PlanStatusExpired = "expired"
)

// Submission and withdrawal share the same three-state lifecycle.
const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

const (
	DecisionApprove = "APPROVE"
	DecisionReject  = "REJECT"
)

const (
	MethodEasyPaisa = "EASYPAISA"
	MethodJazzCash  = "JAZZCASH"
	MethodBank      = "BANK"
)

// Audit actions.
const (
	ActionApproveSubmission = "APPROVE_SUBMISSION"
	ActionRejectSubmission  = "REJECT_SUBMISSION"
	ActionApproveWithdrawal = "APPROVE_WITHDRAWAL"
	ActionRejectWithdrawal  = "REJECT_WITHDRAWAL"
	ActionBanUser           = "BAN_USER"
	ActionUnbanUser         = "UNBAN_USER"
	ActionChangeRole        = "CHANGE_ROLE"
	ActionCreateTask        = "CREATE_TASK"
	ActionUpdateTask        = "UPDATE_TASK"
	ActionDeleteTask        = "DELETE_TASK"
	ActionPublishPlan       = "PUBLISH_PLAN"
	ActionUpdateSettings    = "UPDATE_SETTINGS"
)

const (
	TargetSubmission = "submission"
	TargetWithdrawal = "withdrawal"
	TargetUser       = "user"
	TargetTask       = "task"
	TargetPlan       = "plan"
	TargetSettings   = "settings"
)

// Wallet transaction types
const (
	WalletTxTypeTaskReward         = "TASK_REWARD"
	WalletTxTypeWithdrawalHold     = "WITHDRAWAL_HOLD"
	WalletTxTypeWithdrawalRefund   = "WITHDRAWAL_REFUND"
	WalletTxTypePlanPurchase       = "PLAN_PURCHASE"
	WalletTxTypeReferralCommission = "REFERRAL_COMMISSION"
)

// System setting keys (admin-configurable)
const (
	SettingMinWithdrawalCents = "min_withdrawal_cents"
	SettingMaxWithdrawalCents = "max_withdrawal_cents"
	SettingReferralsEnabled   = "referrals_enabled"
)

// EditableSettings is the whitelist accepted by the settings endpoint.
var EditableSettings = map[string]bool{
	SettingMinWithdrawalCents: true,
	SettingMaxWithdrawalCents: true,
	SettingReferralsEnabled:   true,
}
