package service

import (
	"strings"

	"github.com/shipping-engine/internal/constants"
	"github.com/shipping-engine/internal/models"
	"github.com/shipping-engine/internal/repository"
)

// UserInput 后台创建用户
type UserInput struct {
	Email       string `json:"email" validate:"required,email,max=255"`
	DisplayName string `json:"display_name" validate:"max=100"`
}

// UserService 用户服务（优惠券资格用户）
type UserService struct {
	repo repository.UserRepository
}

// NewUserService 创建用户服务
func NewUserService(repo repository.UserRepository) *UserService {
	return &UserService{repo: repo}
}

// List 用户列表
func (s *UserService) List(filter repository.UserListFilter) ([]models.User, int64, error) {
	return s.repo.List(filter)
}

// Get 获取用户
func (s *UserService) Get(id uint) (*models.User, error) {
	user, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// Create 创建用户
func (s *UserService) Create(input UserInput) (*models.User, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.DisplayName = strings.TrimSpace(input.DisplayName)
	if err := validateInput(input, ErrInvalidInput); err != nil {
		return nil, err
	}
	exist, err := s.repo.GetByEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if exist != nil {
		return nil, ErrUserEmailExists
	}
	displayName := input.DisplayName
	if displayName == "" {
		displayName = strings.SplitN(input.Email, "@", 2)[0]
	}
	user := &models.User{
		Email:       input.Email,
		DisplayName: displayName,
		Status:      constants.UserStatusActive,
	}
	if err := s.repo.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

// BatchUpdateStatus 批量启用/禁用用户
func (s *UserService) BatchUpdateStatus(ids []uint, status string) error {
	status = strings.ToLower(strings.TrimSpace(status))
	if status != constants.UserStatusActive && status != constants.UserStatusDisabled {
		return ErrInvalidInput
	}
	if len(ids) == 0 {
		return ErrInvalidInput
	}
	return s.repo.BatchUpdateStatus(ids, status)
}
