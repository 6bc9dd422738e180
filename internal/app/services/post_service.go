package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/yigit/greenleaf/internal/app/auth"
	"github.com/yigit/greenleaf/internal/app/models"
	"github.com/yigit/greenleaf/internal/app/models/dto"
	"github.com/yigit/greenleaf/internal/app/repositories"
	"github.com/yigit/greenleaf/internal/pkg/apperrors"
	"github.com/yigit/greenleaf/internal/pkg/metrics"
)

// Feed and like messages
const (
	MsgNoCommunities = "User has not joined any community"
	MsgPostLiked     = "Post liked"
	MsgPostUnliked   = "Post unliked"
)

// PostService defines the interface for post operations
type PostService interface {
	CreatePost(ctx context.Context, authorID string, req *dto.CreatePostRequest) (*dto.PostResponse, error)
	GetPost(ctx context.Context, postID string) (*dto.PostResponse, error)
	ListByCommunity(ctx context.Context, communityID string) ([]dto.PostResponse, error)
	ListFeed(ctx context.Context, userID string) (*dto.FeedResponse, error)
	DeletePost(ctx context.Context, postID, callerID string) error
	ToggleLike(ctx context.Context, postID, userID string) (*dto.LikeResponse, error)
}

// postServiceImpl implements PostService
type postServiceImpl struct {
	postRepo      repositories.PostRepository
	communityRepo repositories.CommunityRepository
	authzService  *auth.AuthorizationService
	resolve       resolver
	logger        zerolog.Logger
}

// NewPostService creates a new PostService
func NewPostService(
	repos *repositories.Repositories,
	authzService *auth.AuthorizationService,
	logger zerolog.Logger,
) PostService {
	return &postServiceImpl{
		postRepo:      repos.PostRepository,
		communityRepo: repos.CommunityRepository,
		authzService:  authzService,
		resolve:       resolver{users: repos.UserRepository, communities: repos.CommunityRepository},
		logger:        logger,
	}
}

// CreatePost stores the post, then appends it to its community. The two
// writes are independent: if the community does not exist the post is kept
// and the append is skipped.
func (s *postServiceImpl) CreatePost(ctx context.Context, authorID string, req *dto.CreatePostRequest) (*dto.PostResponse, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, apperrors.NewValidationError("content", "Content required")
	}
	communityID := strings.TrimSpace(req.CommunityID)
	if communityID == "" {
		return nil, apperrors.NewValidationError("communityId", "Community ID required")
	}

	post := &models.Post{
		Content:     content,
		AuthorID:    authorID,
		CommunityID: communityID,
		ImageURL:    req.ImageURL,
		LikedBy:     []string{},
		ReplyIDs:    []string{},
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		if errors.Is(err, apperrors.ErrValidationFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating post: %w", err)
	}

	appended, err := s.communityRepo.AppendPost(ctx, communityID, post.ID)
	switch {
	case err != nil:
		s.logger.Error().Err(err).Str("postID", post.ID).Str("communityID", communityID).
			Msg("Failed to append post to community")
	case !appended:
		s.logger.Warn().Str("postID", post.ID).Str("communityID", communityID).
			Msg("Community not found, post stored without community reference")
		metrics.RecordSkippedAppend("community")
	}

	resp := dto.NewPostResponse(post, nil, nil)
	return &resp, nil
}

// GetPost returns the post with its author and community name
func (s *postServiceImpl) GetPost(ctx context.Context, postID string) (*dto.PostResponse, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	resolved, err := s.resolve.posts(ctx, []*models.Post{post})
	if err != nil {
		return nil, err
	}
	return &resolved[0], nil
}

// ListByCommunity returns the posts of an existing community, newest first
func (s *postServiceImpl) ListByCommunity(ctx context.Context, communityID string) ([]dto.PostResponse, error) {
	if _, err := s.communityRepo.GetByID(ctx, communityID); err != nil {
		return nil, err
	}
	posts, err := s.postRepo.ListByCommunities(ctx, []string{communityID})
	if err != nil {
		return nil, fmt.Errorf("error listing posts: %w", err)
	}
	return s.resolve.posts(ctx, posts)
}

// ListFeed returns the posts of every community userID belongs to, newest first
func (s *postServiceImpl) ListFeed(ctx context.Context, userID string) (*dto.FeedResponse, error) {
	member, _, err := s.communityRepo.ListByMembership(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing communities: %w", err)
	}
	if len(member) == 0 {
		return &dto.FeedResponse{Message: MsgNoCommunities, Posts: []dto.PostResponse{}}, nil
	}

	ids := make([]string, 0, len(member))
	for _, c := range member {
		ids = append(ids, c.ID)
	}
	posts, err := s.postRepo.ListByCommunities(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("error listing posts: %w", err)
	}
	resolved, err := s.resolve.posts(ctx, posts)
	if err != nil {
		return nil, err
	}
	return &dto.FeedResponse{Posts: resolved}, nil
}

// DeletePost removes the post. Its id stays in the community's post list.
func (s *postServiceImpl) DeletePost(ctx context.Context, postID, callerID string) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if err := s.authzService.ValidatePostDeletion(post, callerID); err != nil {
		return err
	}
	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return err
	}
	s.logger.Info().Str("postID", postID).Str("userID", callerID).Msg("Post deleted")
	return nil
}

// ToggleLike likes the post for userID, or unlikes it if already liked
func (s *postServiceImpl) ToggleLike(ctx context.Context, postID, userID string) (*dto.LikeResponse, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	likes, liked := models.ToggleID(post.LikedBy, userID)
	if err := s.postRepo.SetLikes(ctx, postID, likes); err != nil {
		return nil, err
	}

	message := MsgPostUnliked
	if liked {
		message = MsgPostLiked
	}
	return &dto.LikeResponse{Message: message, Liked: liked, Likes: likes}, nil
}
