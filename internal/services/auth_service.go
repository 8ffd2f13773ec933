// internal/services/auth_service.go
package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/artfolio/artfolio-backend/internal/config"
	"github.com/artfolio/artfolio-backend/internal/models"
	"github.com/artfolio/artfolio-backend/internal/utils"
)

type AuthService struct {
	db     *gorm.DB
	config *config.Config
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	UserType string `json:"user_type" validate:"omitempty,oneof=artist buyer"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	User        *models.User `json:"user"`
	AccessToken string       `json:"access_token"`
	ExpiresIn   int          `json:"expires_in"` // seconds
}

func NewAuthService(db *gorm.DB, config *config.Config) *AuthService {
	return &AuthService{db: db, config: config}
}

func (s *AuthService) Register(req *RegisterRequest) (*AuthResponse, error) {
	var count int64
	if err := s.db.Model(&models.User{}).
		Where("email = ? OR username = ?", req.Email, req.Username).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if count > 0 {
		return nil, NewConflictError("email or username already in use")
	}

	userType := models.UserTypeArtist
	if req.UserType != "" {
		userType = models.UserType(req.UserType)
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		UserType: userType,
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.issueTokens(user)
}

func (s *AuthService) Login(req *LoginRequest) (*AuthResponse, error) {
	var user models.User
	if err := s.db.First(&user, "email = ?", req.Email).Error; err != nil {
		return nil, NewValidationError("invalid email or password")
	}

	if err := user.CheckPassword(req.Password); err != nil {
		return nil, NewValidationError("invalid email or password")
	}

	if user.ModerationStatus == models.ModerationStatusBanned {
		return nil, NewForbiddenError("this account has been banned")
	}

	// An expired suspension clears itself on next login.
	if user.ModerationStatus == models.ModerationStatusSuspended && !user.IsSuspended(time.Now()) {
		user.ModerationStatus = models.ModerationStatusActive
		user.SuspendedUntil = nil
		s.db.Save(&user)
	}

	return s.issueTokens(&user)
}

func (s *AuthService) GetProfile(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, translateNotFound(err, "user")
	}
	return &user, nil
}

func (s *AuthService) issueTokens(user *models.User) (*AuthResponse, error) {
	token, err := utils.GenerateJWT(user.ID, user.Username, string(user.UserType), s.config.JWT.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &AuthResponse{
		User:        user,
		AccessToken: token,
		ExpiresIn:   s.config.JWT.AccessTokenTTL * 3600,
	}, nil
}
