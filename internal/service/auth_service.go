package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"earnly/config"
	"earnly/internal/auth"
	"earnly/internal/domain"
	"earnly/internal/ledger"
	"earnly/internal/models"
	"earnly/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailExists    = fmt.Errorf("%w: email already registered", domain.ErrConflict)
	ErrUsernameExists = fmt.Errorf("%w: username already taken", domain.ErrConflict)
	ErrInvalidCreds   = fmt.Errorf("%w: invalid email or password", domain.ErrUnauthenticated)
)

type AuthService struct {
	db        *gorm.DB
	cfg       *config.JWTConfig
	ledger    *ledger.Ledger
	users     *repository.UserRepository
	referrals *ReferralService
}

func NewAuthService(db *gorm.DB, cfg *config.JWTConfig, l *ledger.Ledger, users *repository.UserRepository, referrals *ReferralService) *AuthService {
	return &AuthService{db: db, cfg: cfg, ledger: l, users: users, referrals: referrals}
}

// Register creates a worker with an empty account and signs them in.
func (s *AuthService) Register(ctx context.Context, req domain.RegisterRequest) (*models.User, *auth.TokenPair, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Username = strings.TrimSpace(req.Username)
	if err := domain.Validate(req); err != nil {
		return nil, nil, err
	}
	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return nil, nil, ErrEmailExists
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, nil, err
	}
	if _, err := s.users.GetByUsername(ctx, req.Username); err == nil {
		return nil, nil, ErrUsernameExists
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, nil, err
	}
	referrer, err := s.referrals.ResolveReferrer(ctx, req.ReferralCode)
	if err != nil {
		return nil, nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, err
	}
	u := &models.User{
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		Status:       domain.UserStatusActive,
		ReferredByID: referrer,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.users.WithTx(tx).Create(ctx, u); err != nil {
			return err
		}
		_, err := s.ledger.Open(ctx, tx, u.ID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	tokens, err := auth.IssuePair(s.cfg, u.ID, u.Role, time.Now())
	if err != nil {
		return nil, nil, err
	}
	return u, tokens, nil
}

func (s *AuthService) Login(ctx context.Context, req domain.LoginRequest) (*models.User, *auth.TokenPair, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := domain.Validate(req); err != nil {
		return nil, nil, err
	}
	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, ErrInvalidCreds
		}
		return nil, nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, nil, ErrInvalidCreds
	}
	if u.IsBanned() {
		return nil, nil, domain.ErrAccessDenied
	}
	tokens, err := auth.IssuePair(s.cfg, u.ID, u.Role, time.Now())
	if err != nil {
		return nil, nil, err
	}
	return u, tokens, nil
}

// Refresh exchanges a refresh token for a new pair carrying the current role.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	id, err := auth.ParseRefreshToken(s.cfg, refreshToken)
	if err != nil {
		return nil, ErrInvalidCreds
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidCreds
		}
		return nil, err
	}
	if u.IsBanned() {
		return nil, domain.ErrAccessDenied
	}
	return auth.IssuePair(s.cfg, u.ID, u.Role, time.Now())
}

// Actor resolves a token's user to the actor the engine sees. The stored
// role wins over the one in the token, and a ban revokes every token at once.
func (s *AuthService) Actor(ctx context.Context, userID uint) (domain.Actor, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Actor{}, ErrInvalidCreds
		}
		return domain.Actor{}, err
	}
	a := domain.Actor{ID: u.ID, Role: u.Role, Banned: u.IsBanned()}
	if a.Banned {
		return a, domain.ErrAccessDenied
	}
	return a, nil
}
