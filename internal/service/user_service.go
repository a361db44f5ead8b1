package service

import (
	"context"
	"errors"
	"time"

	"croppo/internal/model"
	"croppo/internal/permission"
	"croppo/internal/repository"
	"croppo/pkg/apperr"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DTOs for Request validation
type CreateUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"required"`
	FarmID   string `json:"farm_id"`
}

type UpdateUserRequest struct {
	Name     string `json:"name"`
	Role     string `json:"role"`
	IsActive *bool  `json:"is_active"`
}

// UserResponse returns User data without exposing sensitive fields
type UserResponse struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	Name        string  `json:"name"`
	Role        string  `json:"role"`
	IsActive    bool    `json:"is_active"`
	FarmID      *string `json:"farm_id,omitempty"`
	LastLoginAt *string `json:"last_login_at,omitempty"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

// UserService defines the interface for business logic related to User
type UserService interface {
	CreateUser(ctx context.Context, actor *permission.Identity, req CreateUserRequest) (*UserResponse, error)
	GetUserByID(ctx context.Context, id string) (*UserResponse, error)
	ListUsers(ctx context.Context, page, limit int) ([]UserResponse, int64, error)
	UpdateUser(ctx context.Context, actor *permission.Identity, id string, req UpdateUserRequest) (*UserResponse, error)
	DeactivateUser(ctx context.Context, actor *permission.Identity, id string) error
}

type userService struct {
	repo repository.UserRepository
}

// NewUserService returns a new instance of UserService
func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

func toUserResponse(user *model.User) UserResponse {
	resp := UserResponse{
		ID:        user.ID.String(),
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
		UpdatedAt: user.UpdatedAt.Format(time.RFC3339),
	}
	if user.FarmID != nil {
		str := user.FarmID.String()
		resp.FarmID = &str
	}
	if user.LastLoginAt != nil {
		str := user.LastLoginAt.Format(time.RFC3339)
		resp.LastLoginAt = &str
	}
	return resp
}

func (s *userService) CreateUser(ctx context.Context, actor *permission.Identity, req CreateUserRequest) (*UserResponse, error) {
	gate := permission.NewGate(actor)
	if gate.Cannot(permission.ModuleUserManagement, permission.ActionCreate) {
		return nil, apperr.Permission("CREATE_USER_DENIED", "role %s cannot create users", actorRole(actor))
	}

	if !permission.Role(req.Role).Valid() {
		return nil, apperr.Validation("INVALID_ROLE", "unknown role '%s'", req.Role)
	}

	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, apperr.Validation("EMAIL_TAKEN", "email already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Validation("HASH_FAILED", "failed to hash password")
	}

	actorID := actor.ID
	user := &model.User{
		Email:     req.Email,
		Name:      req.Name,
		Password:  string(hashedPassword),
		Role:      req.Role,
		IsActive:  true,
		CreatedBy: &actorID,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	resp := toUserResponse(user)
	return &resp, nil
}

func (s *userService) GetUserByID(ctx context.Context, id string) (*UserResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("USER_NOT_FOUND", "user %s not found", id)
		}
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *userService) ListUsers(ctx context.Context, page, limit int) ([]UserResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}

	users, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, toUserResponse(&users[i]))
	}

	return responses, total, nil
}

func (s *userService) UpdateUser(ctx context.Context, actor *permission.Identity, id string, req UpdateUserRequest) (*UserResponse, error) {
	gate := permission.NewGate(actor)
	if gate.Cannot(permission.ModuleUserManagement, permission.ActionUpdate) {
		return nil, apperr.Permission("UPDATE_USER_DENIED", "role %s cannot update users", actorRole(actor))
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("USER_NOT_FOUND", "user %s not found", id)
		}
		return nil, err
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Role != "" {
		if !permission.Role(req.Role).Valid() {
			return nil, apperr.Validation("INVALID_ROLE", "unknown role '%s'", req.Role)
		}
		user.Role = req.Role
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	resp := toUserResponse(user)
	return &resp, nil
}

// DeactivateUser soft-deletes the account. Existing refresh tokens stop
// working the next time the account flag is checked.
func (s *userService) DeactivateUser(ctx context.Context, actor *permission.Identity, id string) error {
	gate := permission.NewGate(actor)
	if gate.Cannot(permission.ModuleUserManagement, permission.ActionDelete) {
		return apperr.Permission("DELETE_USER_DENIED", "role %s cannot delete users", actorRole(actor))
	}

	if actor != nil && actor.ID.String() == id {
		return apperr.Validation("SELF_DELETE_DENIED", "cannot deactivate your own account")
	}

	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("USER_NOT_FOUND", "user %s not found", id)
		}
		return err
	}

	return s.repo.Delete(ctx, id)
}

func actorRole(actor *permission.Identity) permission.Role {
	if actor == nil {
		return ""
	}
	return actor.Role
}
