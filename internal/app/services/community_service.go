package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/yigit/greenleaf/internal/app/auth"
	"github.com/yigit/greenleaf/internal/app/models"
	"github.com/yigit/greenleaf/internal/app/models/dto"
	"github.com/yigit/greenleaf/internal/app/repositories"
	"github.com/yigit/greenleaf/internal/pkg/apperrors"
)

// CommunityService defines the interface for community operations
type CommunityService interface {
	ListForUser(ctx context.Context, userID string) (*dto.CommunityListResponse, error)
	CreateCommunity(ctx context.Context, adminID string, req *dto.CreateCommunityRequest) (*dto.CommunityResponse, error)
	UpdateCommunity(ctx context.Context, communityID, callerID string, req *dto.UpdateCommunityRequest) (*dto.CommunityResponse, error)
	DeleteCommunity(ctx context.Context, communityID, callerID string) error
	GetCommunityDetail(ctx context.Context, communityID string) (*dto.CommunityDetailResponse, error)
	JoinCommunity(ctx context.Context, communityID, userID string) error
	LeaveCommunity(ctx context.Context, communityID, userID string) error
	ListMembers(ctx context.Context, communityID string) ([]dto.MemberResponse, error)
	RemoveMember(ctx context.Context, communityID, callerID, memberID string) error
}

// communityServiceImpl implements CommunityService
type communityServiceImpl struct {
	communityRepo repositories.CommunityRepository
	postRepo      repositories.PostRepository
	userRepo      repositories.UserRepository
	authzService  *auth.AuthorizationService
	resolve       resolver
	logger        zerolog.Logger
}

// NewCommunityService creates a new CommunityService
func NewCommunityService(
	repos *repositories.Repositories,
	authzService *auth.AuthorizationService,
	logger zerolog.Logger,
) CommunityService {
	return &communityServiceImpl{
		communityRepo: repos.CommunityRepository,
		postRepo:      repos.PostRepository,
		userRepo:      repos.UserRepository,
		authzService:  authzService,
		resolve:       resolver{users: repos.UserRepository, communities: repos.CommunityRepository},
		logger:        logger,
	}
}

func communityResponses(communities []*models.Community) []dto.CommunityResponse {
	out := make([]dto.CommunityResponse, 0, len(communities))
	for _, c := range communities {
		out = append(out, dto.NewCommunityResponse(c))
	}
	return out
}

// ListForUser splits every community by whether userID is a member
func (s *communityServiceImpl) ListForUser(ctx context.Context, userID string) (*dto.CommunityListResponse, error) {
	member, nonMember, err := s.communityRepo.ListByMembership(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing communities: %w", err)
	}
	return &dto.CommunityListResponse{
		UserCommunities:    communityResponses(member),
		NonUserCommunities: communityResponses(nonMember),
	}, nil
}

// CreateCommunity creates a community administered, and joined, by adminID
func (s *communityServiceImpl) CreateCommunity(ctx context.Context, adminID string, req *dto.CreateCommunityRequest) (*dto.CommunityResponse, error) {
	name := strings.TrimSpace(req.Name)
	description := strings.TrimSpace(req.Description)
	if name == "" {
		return nil, apperrors.NewValidationError("name", "Community name is required")
	}
	if description == "" {
		return nil, apperrors.NewValidationError("description", "Community description is required")
	}

	community := &models.Community{
		Name:        name,
		Description: description,
		ImageURL:    req.ImageURL,
		AdminID:     adminID,
		MemberIDs:   []string{adminID},
		PostIDs:     []string{},
	}
	if err := s.communityRepo.Create(ctx, community); err != nil {
		return nil, fmt.Errorf("error creating community: %w", err)
	}

	s.logger.Info().Str("communityID", community.ID).Str("adminID", adminID).Msg("Community created")
	resp := dto.NewCommunityResponse(community)
	return &resp, nil
}

// UpdateCommunity applies the fields present in req. Only the admin may update.
func (s *communityServiceImpl) UpdateCommunity(ctx context.Context, communityID, callerID string, req *dto.UpdateCommunityRequest) (*dto.CommunityResponse, error) {
	community, err := s.communityRepo.GetByID(ctx, communityID)
	if err != nil {
		return nil, err
	}
	if err := s.authzService.ValidateCommunityAdmin(community, callerID); err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("name", "Community name cannot be blank")
		}
		community.Name = name
	}
	if req.Description != nil {
		description := strings.TrimSpace(*req.Description)
		if description == "" {
			return nil, apperrors.NewValidationError("description", "Community description cannot be blank")
		}
		community.Description = description
	}
	if req.ImageURL != nil {
		community.ImageURL = req.ImageURL
	}

	if err := s.communityRepo.UpdateDetails(ctx, community); err != nil {
		return nil, err
	}
	resp := dto.NewCommunityResponse(community)
	return &resp, nil
}

// DeleteCommunity removes the community. Its posts are not deleted.
func (s *communityServiceImpl) DeleteCommunity(ctx context.Context, communityID, callerID string) error {
	community, err := s.communityRepo.GetByID(ctx, communityID)
	if err != nil {
		return err
	}
	if err := s.authzService.ValidateCommunityDeletion(community, callerID); err != nil {
		return err
	}
	if err := s.communityRepo.Delete(ctx, communityID); err != nil {
		return err
	}
	s.logger.Info().Str("communityID", communityID).Str("userID", callerID).Msg("Community deleted")
	return nil
}

// GetCommunityDetail resolves the admin and the posts of the community, newest first
func (s *communityServiceImpl) GetCommunityDetail(ctx context.Context, communityID string) (*dto.CommunityDetailResponse, error) {
	community, err := s.communityRepo.GetByID(ctx, communityID)
	if err != nil {
		return nil, err
	}

	posts, err := s.postRepo.ListByCommunities(ctx, []string{communityID})
	if err != nil {
		return nil, fmt.Errorf("error listing community posts: %w", err)
	}
	postResponses, err := s.resolve.posts(ctx, posts)
	if err != nil {
		return nil, err
	}

	admins, err := s.resolve.lookupUsers(ctx, []string{community.AdminID})
	if err != nil {
		return nil, err
	}

	return &dto.CommunityDetailResponse{
		ID:          community.ID,
		Name:        community.Name,
		Description: community.Description,
		ImageURL:    community.ImageURL,
		Admin:       dto.NewUserSummary(admins[community.AdminID], true),
		MemberIDs:   community.MemberIDs,
		Posts:       postResponses,
		CreatedAt:   community.CreatedAt,
	}, nil
}

// JoinCommunity adds userID to the members
func (s *communityServiceImpl) JoinCommunity(ctx context.Context, communityID, userID string) error {
	community, err := s.communityRepo.GetByID(ctx, communityID)
	if err != nil {
		return err
	}
	if community.HasMember(userID) {
		return apperrors.ErrAlreadyMember
	}
	if err := s.communityRepo.AddMember(ctx, communityID, userID); err != nil {
		return err
	}
	s.logger.Debug().Str("communityID", communityID).Str("userID", userID).Msg("User joined community")
	return nil
}

// LeaveCommunity removes userID from the members. The admin may leave too;
// it keeps its admin rights.
func (s *communityServiceImpl) LeaveCommunity(ctx context.Context, communityID, userID string) error {
	community, err := s.communityRepo.GetByID(ctx, communityID)
	if err != nil {
		return err
	}
	if !community.HasMember(userID) {
		return apperrors.ErrNotMember
	}
	if err := s.communityRepo.RemoveMember(ctx, communityID, userID); err != nil {
		return err
	}
	s.logger.Debug().Str("communityID", communityID).Str("userID", userID).Msg("User left community")
	return nil
}

// ListMembers returns every member except the admin. Members whose account
// was deleted are skipped.
func (s *communityServiceImpl) ListMembers(ctx context.Context, communityID string) ([]dto.MemberResponse, error) {
	community, err := s.communityRepo.GetByID(ctx, communityID)
	if err != nil {
		return nil, err
	}
	ids := models.RemoveID(community.MemberIDs, community.AdminID)
	users, err := s.resolve.lookupUsers(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]dto.MemberResponse, 0, len(ids))
	for _, id := range ids {
		u, ok := users[id]
		if !ok {
			continue
		}
		out = append(out, dto.MemberResponse{ID: u.ID, FullName: u.FullName, ProfileImage: u.ProfileImage})
	}
	return out, nil
}

// RemoveMember lets the admin remove memberID. The admin itself cannot be removed.
func (s *communityServiceImpl) RemoveMember(ctx context.Context, communityID, callerID, memberID string) error {
	community, err := s.communityRepo.GetByID(ctx, communityID)
	if err != nil {
		return err
	}
	if err := s.authzService.ValidateMemberRemoval(community, callerID, memberID); err != nil {
		return err
	}
	if !community.HasMember(memberID) {
		return apperrors.ErrNotMember
	}
	if err := s.communityRepo.RemoveMember(ctx, communityID, memberID); err != nil {
		return err
	}
	s.logger.Info().Str("communityID", communityID).Str("memberID", memberID).Msg("Member removed")
	return nil
}
