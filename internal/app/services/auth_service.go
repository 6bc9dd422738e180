package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/yigit/greenleaf/internal/app/models"
	"github.com/yigit/greenleaf/internal/app/models/dto"
	"github.com/yigit/greenleaf/internal/app/repositories"
	"github.com/yigit/greenleaf/internal/pkg/apperrors"
	"github.com/yigit/greenleaf/internal/pkg/auth"
	"github.com/yigit/greenleaf/internal/pkg/validation"
)

// ErrLoginFailed is returned for both an unknown email and a wrong password
var ErrLoginFailed = apperrors.NewCustomError(apperrors.ErrInvalidCredentials, "Invalid email or password")

// AuthService handles registration and login
type AuthService struct {
	userRepo            repositories.UserRepository
	jwtService          *auth.JWTService
	defaultProfileImage string
	logger              zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo repositories.UserRepository,
	jwtService *auth.JWTService,
	defaultProfileImage string,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		userRepo:            userRepo,
		jwtService:          jwtService,
		defaultProfileImage: defaultProfileImage,
		logger:              logger,
	}
}

// ensureUnique checks that no account other than selfID holds email or fullName
func ensureUnique(ctx context.Context, repo repositories.UserRepository, selfID, email, fullName string) error {
	if email != "" {
		existing, err := repo.GetByEmail(ctx, email)
		switch {
		case err == nil && existing.ID != selfID:
			return apperrors.ErrEmailAlreadyExists
		case err != nil && !errors.Is(err, apperrors.ErrResourceNotFound):
			return fmt.Errorf("error checking if email exists: %w", err)
		}
	}
	if fullName != "" {
		existing, err := repo.GetByFullName(ctx, fullName)
		switch {
		case err == nil && existing.ID != selfID:
			return apperrors.ErrNameAlreadyExists
		case err != nil && !errors.Is(err, apperrors.ErrResourceNotFound):
			return fmt.Errorf("error checking if full name exists: %w", err)
		}
	}
	return nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Register creates an account and signs the caller in
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	fullName := strings.TrimSpace(req.FullName)
	email := strings.TrimSpace(req.Email)
	if fullName == "" {
		return nil, apperrors.NewValidationError("fullName", "Full name is required")
	}
	if email == "" {
		return nil, apperrors.NewValidationError("email", "Email is required")
	}
	if len(req.Password) < validation.PasswordMinLength {
		return nil, apperrors.NewValidationError("password",
			fmt.Sprintf("Password must be at least %d characters", validation.PasswordMinLength))
	}

	if err := ensureUnique(ctx, s.userRepo, "", email, fullName); err != nil {
		return nil, err
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	profileImage := strings.TrimSpace(req.ProfileImage)
	if profileImage == "" {
		profileImage = s.defaultProfileImage
	}

	user := &models.User{
		FullName:     fullName,
		Email:        email,
		Password:     hashed,
		ProfileImage: profileImage,
		Location:     optional(req.Location),
		ContactNo:    optional(req.ContactNo),
		RoleType:     models.RoleMember,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrResourceAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("user creation error: %w", err)
	}

	s.logger.Info().Str("userID", user.ID).Msg("User registered")
	return s.authResponse(user)
}

// Login verifies the credentials and issues a new token
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, ErrLoginFailed
		}
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	if !auth.CheckPassword(user.Password, req.Password) {
		s.logger.Debug().Str("userID", user.ID).Msg("Password mismatch")
		return nil, ErrLoginFailed
	}
	return s.authResponse(user)
}

func (s *AuthService) authResponse(user *models.User) (*dto.AuthResponse, error) {
	token, expiresIn, err := s.jwtService.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("error generating access token: %w", err)
	}
	return &dto.AuthResponse{
		Token: dto.TokenResponse{
			AccessToken: token,
			TokenType:   "Bearer",
			ExpiresIn:   expiresIn,
		},
		User: dto.NewUserResponse(user),
	}, nil
}
