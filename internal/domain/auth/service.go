package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stitchstock/internal/core/apperror"
	"stitchstock/internal/core/id"
	"stitchstock/internal/core/tx"
	"stitchstock/pkg/logger"
)

// LoginResult is the outcome of a successful authentication.
type LoginResult struct {
	User        *User     `json:"user"`
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Service provides authentication logic.
type Service struct {
	userRepo   UserRepository
	txManager  tx.Manager
	jwtService *JWTService
}

// NewService creates a new auth service.
func NewService(userRepo UserRepository, txManager tx.Manager, jwtService *JWTService) *Service {
	return &Service{
		userRepo:   userRepo,
		txManager:  txManager,
		jwtService: jwtService,
	}
}

// Register creates a new user account. An empty role defaults to
// operator; the caller is responsible for gating admin assignment.
func (s *Service) Register(ctx context.Context, email, password, fullName, role string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, apperror.NewValidation("email is required").WithDetail("field", "email")
	}
	if role != "" && role != RoleAdmin && role != RoleOperator {
		return nil, apperror.NewValidation("unknown role").WithDetail("role", role)
	}

	exists, err := s.userRepo.Exists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email exists: %w", err)
	}
	if exists {
		return nil, apperror.NewConflict("email already registered").WithDetail("email", email)
	}

	user, err := NewUser(email, password, fullName)
	if err != nil {
		return nil, err
	}
	if role != "" {
		user.Role = role
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.userRepo.Create(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "user registered", "user_id", user.ID, "email", user.Email)

	return user, nil
}

// Login authenticates a user and issues an access token.
// Both unknown-email and wrong-password respond with the same error.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewUnauthorized("invalid email or password")
		}
		return nil, err
	}

	if err := user.CanLogin(); err != nil {
		return nil, err
	}

	if !user.CheckPassword(password) {
		return nil, apperror.NewUnauthorized("invalid email or password")
	}

	user.RecordLogin()
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.userRepo.Update(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.jwtService.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	logger.Info(ctx, "user logged in", "user_id", user.ID, "email", user.Email)

	return &LoginResult{User: user, AccessToken: token, ExpiresAt: expiresAt}, nil
}

// GetByID loads a user profile.
func (s *Service) GetByID(ctx context.Context, userID id.ID) (*User, error) {
	return s.userRepo.GetByID(ctx, userID)
}
