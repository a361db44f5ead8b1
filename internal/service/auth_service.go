package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"time"

	"croppo/internal/middleware"
	"croppo/internal/model"
	"croppo/internal/permission"
	"croppo/internal/repository"
	"croppo/pkg/apperr"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

// DTOs for Request validation
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type SwitchUserRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// SessionResponse describes the authenticated user plus the permission set
// their role grants, so clients can render the UI without re-deriving the
// matrix.
type SessionResponse struct {
	User        UserResponse       `json:"user"`
	Permissions []permission.Entry `json:"permissions"`
	CanApprove  bool               `json:"can_approve"`
}

// AuthService handles login, token refresh, and session introspection.
// SwitchUser is a development convenience and must stay disabled outside
// APP_ENV=development.
type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (*TokenPair, *SessionResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	Session(ctx context.Context, actor *permission.Identity) (*SessionResponse, error)
	SwitchUser(ctx context.Context, actor *permission.Identity, userID string) (*TokenPair, *SessionResponse, error)
}

type authService struct {
	userRepo  repository.UserRepository
	tokenRepo repository.TokenRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
}

func NewAuthService(
	userRepo repository.UserRepository,
	tokenRepo repository.TokenRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) AuthService {
	return &authService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		auditRepo: auditRepo,
		txManager: txManager,
	}
}

func (s *authService) Login(ctx context.Context, req LoginRequest) (*TokenPair, *SessionResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		// Same error for unknown email and wrong password.
		return nil, nil, apperr.Authentication("INVALID_CREDENTIALS", "invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, nil, apperr.Authentication("INVALID_CREDENTIALS", "invalid email or password")
	}

	if !user.IsActive {
		return nil, nil, apperr.Authentication("ACCOUNT_DISABLED", "account is deactivated")
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, nil, fmt.Errorf("failed to record login time: %w", err)
	}

	return pair, sessionFor(user), nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, apperr.Authentication("MISSING_REFRESH_TOKEN", "refresh token is required")
	}

	stored, err := s.tokenRepo.FindByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Authentication("INVALID_REFRESH_TOKEN", "refresh token is invalid")
		}
		return nil, fmt.Errorf("failed to look up refresh token: %w", err)
	}

	if time.Now().After(stored.ExpiresAt) {
		_ = s.tokenRepo.DeleteByToken(ctx, refreshToken)
		return nil, apperr.Authentication("EXPIRED_REFRESH_TOKEN", "refresh token has expired")
	}

	if !stored.User.IsActive {
		return nil, apperr.Authentication("ACCOUNT_DISABLED", "account is deactivated")
	}

	// Rotate: the old token is consumed by the new pair.
	if err := s.tokenRepo.DeleteByToken(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("failed to rotate refresh token: %w", err)
	}

	return s.issueTokens(ctx, &stored.User)
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := s.tokenRepo.DeleteByToken(ctx, refreshToken); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

func (s *authService) Session(ctx context.Context, actor *permission.Identity) (*SessionResponse, error) {
	if actor == nil {
		return nil, apperr.Authentication("AUTH_REQUIRED", "not logged in")
	}
	user, err := s.userRepo.GetByID(ctx, actor.ID.String())
	if err != nil {
		return nil, apperr.NotFound("USER_NOT_FOUND", "user %s not found", actor.ID)
	}
	return sessionFor(user), nil
}

// SwitchUser re-authenticates the session as another account without a
// password. It exists for demo walkthroughs of the role matrix and is
// rejected outright outside the development environment.
func (s *authService) SwitchUser(ctx context.Context, actor *permission.Identity, userID string) (*TokenPair, *SessionResponse, error) {
	if os.Getenv("APP_ENV") != "development" {
		return nil, nil, apperr.Permission("SWITCH_USER_DISABLED", "user switching is only available in development")
	}
	if actor == nil {
		return nil, nil, apperr.Authentication("AUTH_REQUIRED", "not logged in")
	}

	target, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, apperr.NotFound("USER_NOT_FOUND", "user %s not found", userID)
	}
	if !target.IsActive {
		return nil, nil, apperr.Validation("ACCOUNT_DISABLED", "cannot switch to a deactivated account")
	}

	pair, err := s.issueTokens(ctx, target)
	if err != nil {
		return nil, nil, err
	}

	actorID := actor.ID
	entry := model.AuditLog{
		UserID:     &actorID,
		Action:     model.ActionSwitchUser,
		EntityID:   target.ID.String(),
		EntityName: target.Name,
		Details:    fmt.Sprintf(`{"from":%q,"to":%q}`, actor.Name, target.Name),
	}
	if err := s.auditRepo.Create(ctx, &entry); err != nil {
		return nil, nil, fmt.Errorf("failed to write audit log: %w", err)
	}

	return pair, sessionFor(target), nil
}

// --- Helpers ---

func (s *authService) issueTokens(ctx context.Context, user *model.User) (*TokenPair, error) {
	claims := jwt.MapClaims{
		"sub":    user.ID.String(),
		"name":   user.Name,
		"role":   user.Role,
		"active": user.IsActive,
		"exp":    time.Now().Add(accessTokenTTL).Unix(),
		"iat":    time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	accessToken, err := token.SignedString(middleware.GetJWTSecret())
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshToken, err := randomToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	stored := model.RefreshToken{
		UserID:    user.ID,
		Token:     refreshToken,
		ExpiresAt: time.Now().Add(refreshTokenTTL),
	}
	if err := s.tokenRepo.Create(ctx, &stored); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func sessionFor(user *model.User) *SessionResponse {
	role := permission.Role(user.Role)
	return &SessionResponse{
		User:        toUserResponse(user),
		Permissions: permission.PermissionsFor(role),
		CanApprove:  permission.CanApproveRequests(role),
	}
}
