package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/yigit/greenleaf/internal/app/models/dto"
	"github.com/yigit/greenleaf/internal/app/repositories"
	"github.com/yigit/greenleaf/internal/pkg/apperrors"
	"github.com/yigit/greenleaf/internal/pkg/auth"
)

// UserService defines the interface for the caller's own profile
type UserService interface {
	GetProfile(ctx context.Context, userID string) (*dto.UserResponse, error)
	UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)
	DeleteAccount(ctx context.Context, userID string) error
}

// userServiceImpl implements UserService
type userServiceImpl struct {
	userRepo            repositories.UserRepository
	defaultProfileImage string
	logger              zerolog.Logger
}

// NewUserService creates a new UserService
func NewUserService(userRepo repositories.UserRepository, defaultProfileImage string, logger zerolog.Logger) UserService {
	return &userServiceImpl{
		userRepo:            userRepo,
		defaultProfileImage: defaultProfileImage,
		logger:              logger,
	}
}

// GetProfile returns the profile of userID
func (s *userServiceImpl) GetProfile(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := dto.NewUserResponse(user)
	return &resp, nil
}

// UpdateProfile applies the fields present in req. Uniqueness is checked
// against other accounts only, so resubmitting one's own email is fine.
func (s *userServiceImpl) UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var email, fullName string
	if req.FullName != nil {
		fullName = strings.TrimSpace(*req.FullName)
		if fullName == "" {
			return nil, apperrors.NewValidationError("fullName", "Full name cannot be blank")
		}
		user.FullName = fullName
	}
	if req.Email != nil {
		email = strings.TrimSpace(*req.Email)
		if email == "" {
			return nil, apperrors.NewValidationError("email", "Email cannot be blank")
		}
		user.Email = email
	}
	if err := ensureUnique(ctx, s.userRepo, userID, email, fullName); err != nil {
		return nil, err
	}

	if req.Password != nil {
		hashed, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("error hashing password: %w", err)
		}
		user.Password = hashed
	}
	if req.ProfileImage != nil {
		// Blank resets to the same default Register assigns
		user.ProfileImage = strings.TrimSpace(*req.ProfileImage)
		if user.ProfileImage == "" {
			user.ProfileImage = s.defaultProfileImage
		}
	}
	if req.Location != nil {
		user.Location = optional(*req.Location)
	}
	if req.ContactNo != nil {
		user.ContactNo = optional(*req.ContactNo)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrResourceAlreadyExists) || errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error updating user: %w", err)
	}

	s.logger.Info().Str("userID", userID).Msg("Profile updated")
	resp := dto.NewUserResponse(user)
	return &resp, nil
}

// DeleteAccount removes the account. Communities, posts and replies that
// reference it are left in place.
func (s *userServiceImpl) DeleteAccount(ctx context.Context, userID string) error {
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return err
	}
	s.logger.Info().Str("userID", userID).Msg("Account deleted")
	return nil
}
