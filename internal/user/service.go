package user

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"fulfillment-be/internal/apperr"
	"fulfillment-be/internal/logger"
	"fulfillment-be/internal/utils"

	"go.uber.org/zap"
)

const (
	tokenTTL          = 24 * time.Hour
	minPasswordLength = 8
)

type TokenIssuer interface {
	Issue(userID, role string, ttl time.Duration) (string, error)
}

type Service interface {
	Login(ctx context.Context, email, password string) (*Session, error)
	// CreateAccount provisions a staff account. Officer accounts get a
	// procurement profile and become eligible for assignment right away.
	CreateAccount(ctx context.Context, p CreateParams) (*User, error)
}

type service struct {
	repo   Repository
	tokens TokenIssuer
	now    func() time.Time
}

func NewService(repo Repository, tokens TokenIssuer) Service {
	return &service{repo: repo, tokens: tokens, now: time.Now}
}

func (s *service) Login(ctx context.Context, email, password string) (*Session, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Login"),
	)

	u, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, ErrUserNotFound) {
		log.Info("login for unknown email")
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !u.Active || !CheckPasswordHash(password, u.PasswordHash) {
		log.Info("login rejected", zap.String("user_id", u.ID))
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(u.ID, u.Role, tokenTTL)
	if err != nil {
		log.Error("failed to issue token", zap.String("user_id", u.ID), zap.Error(err))
		return nil, err
	}

	log.Info("login succeeded", zap.String("user_id", u.ID), zap.String("role", u.Role))
	return &Session{Token: token, ExpiresAt: s.now().Add(tokenTTL), User: u}, nil
}

func (s *service) CreateAccount(ctx context.Context, p CreateParams) (*User, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateAccount"),
		zap.String("role", p.Role),
	)

	email := normalizeEmail(p.Email)
	switch {
	case strings.TrimSpace(p.Name) == "":
		return nil, apperr.Validation("name is required")
	case !validEmail(email):
		return nil, apperr.Validation("invalid email %q", p.Email)
	case len(p.Password) < minPasswordLength:
		return nil, apperr.Validation("password must be at least %d characters", minPasswordLength)
	case p.Role != utils.RoleAdmin && p.Role != utils.RoleOfficer:
		return nil, apperr.Validation("role must be ADMIN or OFFICER")
	case p.MaxActiveOrders < 0:
		return nil, apperr.Validation("maxActiveOrders must not be negative")
	}

	hashed, err := HashPassword(p.Password)
	if err != nil {
		log.Error("failed to hash password", zap.Error(err))
		return nil, err
	}

	u := &User{
		Name:         strings.TrimSpace(p.Name),
		Email:        email,
		PasswordHash: hashed,
		Role:         p.Role,
		Active:       true,
	}
	if err := s.repo.Create(ctx, u, p.MaxActiveOrders); err != nil {
		return nil, err
	}

	log.Info("account created", zap.String("user_id", u.ID))
	return u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
