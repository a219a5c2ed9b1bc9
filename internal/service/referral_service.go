package service

import (
	"context"
	"errors"
	"strings"

	"earnly/internal/domain"
	"earnly/internal/repository"
)

// ReferralService resolves referral codes at signup. Commission on approved
// submissions is paid by SubmissionService.
type ReferralService struct {
	referrals *repository.ReferralRepository
	settings  *SettingsService
}

func NewReferralService(referrals *repository.ReferralRepository, settings *SettingsService) *ReferralService {
	return &ReferralService{referrals: referrals, settings: settings}
}

// ResolveReferrer returns the user id owning code, or nil when code is
// empty or referrals are switched off. An unknown code is a validation error.
func (s *ReferralService) ResolveReferrer(ctx context.Context, code string) (*uint, error) {
	code = strings.TrimSpace(code)
	if code == "" || s.referrals == nil {
		return nil, nil
	}
	if s.settings != nil && !s.settings.ReferralsEnabled(ctx) {
		return nil, nil
	}
	rc, err := s.referrals.GetByCode(ctx, code)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.Validationf("unknown referral code")
	}
	if err != nil {
		return nil, err
	}
	id := rc.UserID
	return &id, nil
}
