package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/mtodo/internal/model"
	appErr "github.com/xxxsen/mtodo/internal/pkg/errors"
	"github.com/xxxsen/mtodo/internal/pkg/jwt"
	"github.com/xxxsen/mtodo/internal/pkg/password"
	"github.com/xxxsen/mtodo/internal/pkg/timeutil"
	"github.com/xxxsen/mtodo/internal/repo"
)

const (
	TokenTypeBearer = "bearer"

	// bcrypt ignores input past 72 bytes and newer versions reject it.
	maxPasswordBytes = 72
)

type AuthService struct {
	users  *repo.UserRepo
	hasher *password.Hasher
	issuer *jwt.Issuer
	now    func() time.Time
}

func NewAuthService(users *repo.UserRepo, hasher *password.Hasher, issuer *jwt.Issuer) *AuthService {
	return &AuthService{users: users, hasher: hasher, issuer: issuer, now: time.Now}
}

type SignupInput struct {
	Email    string
	Password string
	FullName string
}

type LoginResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*model.User, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" {
		return nil, appErr.NewValidationError("email", "required")
	}
	if len(input.Password) > maxPasswordBytes {
		return nil, appErr.NewValidationError("password", "must be at most 72 bytes")
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, appErr.ErrConflict
	} else if !appErr.IsNotFound(err) {
		return nil, err
	}
	hash, err := s.hasher.Hash(ctx, input.Password)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Email:        email,
		FullName:     input.FullName,
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    timeutil.ToMillis(s.now()),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	logutil.GetLogger(ctx).Info("user signed up", zap.Int64("user_id", user.ID))
	return user, nil
}

// Login checks the credentials and issues an access token. Unknown email,
// wrong password and deactivated account all return ErrBadCredentials.
func (s *AuthService) Login(ctx context.Context, email, plainPassword string) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if appErr.IsNotFound(err) {
			return nil, appErr.ErrBadCredentials
		}
		return nil, err
	}
	ok, err := s.hasher.Verify(ctx, plainPassword, user.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok || !user.IsActive {
		return nil, appErr.ErrBadCredentials
	}
	token, err := s.issuer.Issue(user.ID, s.now())
	if err != nil {
		return nil, err
	}
	return &LoginResult{AccessToken: token, TokenType: TokenTypeBearer}, nil
}

// Resolve maps a bearer token to an active user with one point lookup.
// Every authentication failure collapses into ErrUnauthorized.
func (s *AuthService) Resolve(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, appErr.ErrUnauthorized
	}
	userID, err := s.issuer.Verify(token, s.now())
	if err != nil {
		if errors.Is(err, jwt.ErrExpiredToken) {
			logutil.GetLogger(ctx).Debug("expired token presented")
		}
		return nil, appErr.ErrUnauthorized
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if appErr.IsNotFound(err) {
			return nil, appErr.ErrUnauthorized
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, appErr.ErrUnauthorized
	}
	return user, nil
}
