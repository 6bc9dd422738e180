package auth

import (
	"github.com/rs/zerolog"

	"github.com/yigit/greenleaf/internal/app/models"
	"github.com/yigit/greenleaf/internal/pkg/apperrors"
)

// Messages returned on failed ownership checks
const (
	msgNotCommunityAdmin = "Only the community admin can perform this action"
	msgNotPostAuthor     = "Only the author can delete this post"
	msgNotReplyAuthor    = "Only the author can delete this reply"
	msgAdminNotRemovable = "The community admin cannot be removed"
)

// AuthorizationService holds the ownership rules applied before mutations.
//
// Update and member removal always require the community admin. Deletes of
// communities, posts and replies only require an authenticated caller unless
// enforceOwnerOnDelete is set, in which case they require the admin or author.
type AuthorizationService struct {
	enforceOwnerOnDelete bool
	logger               zerolog.Logger
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(enforceOwnerOnDelete bool, logger zerolog.Logger) *AuthorizationService {
	return &AuthorizationService{
		enforceOwnerOnDelete: enforceOwnerOnDelete,
		logger:               logger,
	}
}

// EnforcesOwnerOnDelete reports the configured delete policy
func (s *AuthorizationService) EnforcesOwnerOnDelete() bool {
	return s.enforceOwnerOnDelete
}

func (s *AuthorizationService) deny(kind, id, userID, message string) error {
	s.logger.Warn().
		Str("resource", kind).
		Str("resourceID", id).
		Str("userID", userID).
		Msg("Permission denied")
	return apperrors.NewForbiddenError(message)
}

// ValidateCommunityAdmin fails with a forbidden error unless userID is the admin
func (s *AuthorizationService) ValidateCommunityAdmin(community *models.Community, userID string) error {
	if !community.IsAdmin(userID) {
		return s.deny("community", community.ID, userID, msgNotCommunityAdmin)
	}
	return nil
}

// ValidateMemberRemoval checks that callerID may remove memberID from the community
func (s *AuthorizationService) ValidateMemberRemoval(community *models.Community, callerID, memberID string) error {
	if err := s.ValidateCommunityAdmin(community, callerID); err != nil {
		return err
	}
	if community.IsAdmin(memberID) {
		return s.deny("community", community.ID, callerID, msgAdminNotRemovable)
	}
	return nil
}

// ValidatePostAuthor fails with a forbidden error unless userID wrote the post
func (s *AuthorizationService) ValidatePostAuthor(post *models.Post, userID string) error {
	if post.AuthorID != userID {
		return s.deny("post", post.ID, userID, msgNotPostAuthor)
	}
	return nil
}

// ValidateReplyAuthor fails with a forbidden error unless userID wrote the reply
func (s *AuthorizationService) ValidateReplyAuthor(reply *models.Reply, userID string) error {
	if reply.AuthorID != userID {
		return s.deny("reply", reply.ID, userID, msgNotReplyAuthor)
	}
	return nil
}

// ValidateCommunityDeletion applies the delete policy to a community
func (s *AuthorizationService) ValidateCommunityDeletion(community *models.Community, userID string) error {
	if !s.enforceOwnerOnDelete {
		return nil
	}
	return s.ValidateCommunityAdmin(community, userID)
}

// ValidatePostDeletion applies the delete policy to a post
func (s *AuthorizationService) ValidatePostDeletion(post *models.Post, userID string) error {
	if !s.enforceOwnerOnDelete {
		return nil
	}
	return s.ValidatePostAuthor(post, userID)
}

// ValidateReplyDeletion applies the delete policy to a reply
func (s *AuthorizationService) ValidateReplyDeletion(reply *models.Reply, userID string) error {
	if !s.enforceOwnerOnDelete {
		return nil
	}
	return s.ValidateReplyAuthor(reply, userID)
}
