// Package seed creates demo data on startup when enabled.
package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/yigit/greenleaf/internal/app/models"
	"github.com/yigit/greenleaf/internal/app/repositories"
	"github.com/yigit/greenleaf/internal/pkg/apperrors"
	"github.com/yigit/greenleaf/internal/pkg/auth"
)

// Demo data
const (
	AdminFullName        = "Greenleaf Admin"
	CommunityName        = "Tea Growers"
	CommunityDescription = "For tea farmers"
)

// Options configures CreateDefaultData
type Options struct {
	AdminEmail          string
	AdminPassword       string
	DefaultProfileImage string
}

// CreateDefaultData creates the demo admin and its community if they don't exist.
// Running it again leaves existing data untouched.
func CreateDefaultData(ctx context.Context, repos *repositories.Repositories, opts Options, lgr zerolog.Logger) error {
	if opts.AdminEmail == "" || opts.AdminPassword == "" {
		lgr.Warn().Msg("Seed enabled without admin credentials, skipping")
		return nil
	}

	lgr.Info().Str("email", opts.AdminEmail).Msg("Checking/Creating default data...")

	admin, err := ensureAdmin(ctx, repos.UserRepository, opts)
	if err != nil {
		return err
	}

	member, _, err := repos.CommunityRepository.ListByMembership(ctx, admin.ID)
	if err != nil {
		return fmt.Errorf("list admin communities: %w", err)
	}
	for _, c := range member {
		if c.Name == CommunityName && c.IsAdmin(admin.ID) {
			lgr.Info().Str("communityID", c.ID).Msg("Default community already exists")
			return nil
		}
	}

	community := &models.Community{
		Name:        CommunityName,
		Description: CommunityDescription,
		AdminID:     admin.ID,
		MemberIDs:   []string{admin.ID},
		PostIDs:     []string{},
	}
	if err := repos.CommunityRepository.Create(ctx, community); err != nil {
		return fmt.Errorf("create default community: %w", err)
	}

	lgr.Info().Str("communityID", community.ID).Msg("Default community created")
	return nil
}

func ensureAdmin(ctx context.Context, users repositories.UserRepository, opts Options) (*models.User, error) {
	existing, err := users.GetByEmail(ctx, opts.AdminEmail)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, apperrors.ErrResourceNotFound) {
		return nil, fmt.Errorf("look up seed admin: %w", err)
	}

	hash, err := auth.HashPassword(opts.AdminPassword)
	if err != nil {
		return nil, err
	}

	admin := &models.User{
		FullName:     AdminFullName,
		Email:        opts.AdminEmail,
		Password:     hash,
		ProfileImage: opts.DefaultProfileImage,
		RoleType:     models.RoleAdmin,
	}
	if err := users.Create(ctx, admin); err != nil {
		return nil, fmt.Errorf("create seed admin: %w", err)
	}
	return admin, nil
}
