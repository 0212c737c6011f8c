package user

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pixistaking/backend/internal/apperrors"
	"github.com/pixistaking/backend/internal/models"
	"github.com/pixistaking/backend/internal/utils"
)

const referralCodeLength = 8

// Service handles registration, authentication and user reads
type Service struct {
	db *gorm.DB
}

// NewService creates a new user service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Register creates a new user with a zero balance, a unique referral code and
// a generated deposit address. ReferredBy stores the raw referral code as
// supplied; it is resolved lazily at commission time, so a dangling code is
// allowed here.
func (s *Service) Register(username, email, password, referredBy string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if username == "" || email == "" {
		return nil, apperrors.NewValidation("username and email are required")
	}
	if len(password) < 8 {
		return nil, apperrors.NewValidation("password must be at least 8 characters")
	}

	var existing models.User
	err := s.db.Where("username = ? OR email = ?", username, email).First(&existing).Error
	if err == nil {
		return nil, apperrors.NewConflict("username or email already in use")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("error checking existing user: %w", err)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	code, err := s.uniqueReferralCode()
	if err != nil {
		return nil, err
	}

	address, err := utils.GenerateDepositAddress()
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username:       username,
		Email:          email,
		PasswordHash:   hash,
		DepositAddress: address,
		ReferralCode:   code,
		ReferredBy:     strings.TrimSpace(referredBy),
	}

	if err := s.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return &user, nil
}

// Authenticate looks a user up by username or email and verifies the password.
// Unknown identity and wrong password both return NotFoundError so callers
// cannot probe which accounts exist.
func (s *Service) Authenticate(identifier, password string) (*models.User, error) {
	var user models.User
	err := s.db.Where("username = ? OR email = ?", identifier, identifier).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("invalid credentials")
		}
		return nil, fmt.Errorf("error finding user: %w", err)
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, apperrors.NewNotFound("invalid credentials")
	}

	return &user, nil
}

// GetByID returns a user by id.
func (s *Service) GetByID(id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("user not found")
		}
		return nil, fmt.Errorf("error finding user: %w", err)
	}
	return &user, nil
}

// List returns all users, newest first.
func (s *Service) List() ([]models.User, error) {
	var users []models.User
	if err := s.db.Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	return users, nil
}

// ReferredUsers returns the users who registered with this user's referral code.
func (s *Service) ReferredUsers(user *models.User) ([]models.User, error) {
	var referred []models.User
	if err := s.db.Where("referred_by = ?", user.ReferralCode).Order("created_at DESC").Find(&referred).Error; err != nil {
		return nil, fmt.Errorf("error listing referred users: %w", err)
	}
	return referred, nil
}

func (s *Service) uniqueReferralCode() (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		code := utils.GenerateReferralCode(referralCodeLength)

		var count int64
		if err := s.db.Model(&models.User{}).Where("referral_code = ?", code).Count(&count).Error; err != nil {
			return "", fmt.Errorf("error checking referral code: %w", err)
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", fmt.Errorf("could not generate a unique referral code")
}
