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

// Reply like messages
const (
	MsgReplyLiked   = "Reply liked"
	MsgReplyUnliked = "Reply unliked"
)

// ReplyService defines the interface for reply operations
type ReplyService interface {
	CreateReply(ctx context.Context, authorID string, req *dto.CreateReplyRequest) (*dto.ReplyResponse, error)
	ListRepliesForPost(ctx context.Context, postID string) ([]*dto.ReplyResponse, error)
	GetReply(ctx context.Context, replyID string) (*dto.ReplyResponse, error)
	ToggleLike(ctx context.Context, replyID, userID string) (*dto.LikeResponse, error)
	DeleteReply(ctx context.Context, replyID, callerID string) error
}

// replyServiceImpl implements ReplyService
type replyServiceImpl struct {
	replyRepo    repositories.ReplyRepository
	postRepo     repositories.PostRepository
	authzService *auth.AuthorizationService
	resolve      resolver
	logger       zerolog.Logger
}

// NewReplyService creates a new ReplyService
func NewReplyService(
	repos *repositories.Repositories,
	authzService *auth.AuthorizationService,
	logger zerolog.Logger,
) ReplyService {
	return &replyServiceImpl{
		replyRepo:    repos.ReplyRepository,
		postRepo:     repos.PostRepository,
		authzService: authzService,
		resolve:      resolver{users: repos.UserRepository, communities: repos.CommunityRepository},
		logger:       logger,
	}
}

// CreateReply stores a reply on an existing post and appends it to its parent
// reply, or to the post when it is top-level. A missing parent reply only
// skips the append.
func (s *replyServiceImpl) CreateReply(ctx context.Context, authorID string, req *dto.CreateReplyRequest) (*dto.ReplyResponse, error) {
	content := strings.TrimSpace(req.Content)
	postID := strings.TrimSpace(req.PostID)
	communityID := strings.TrimSpace(req.CommunityID)
	if content == "" || postID == "" || communityID == "" {
		return nil, apperrors.NewValidationError("content", "Content, postId, and communityId are required")
	}

	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	var parentID *string
	if req.ParentReplyID != nil && strings.TrimSpace(*req.ParentReplyID) != "" {
		id := strings.TrimSpace(*req.ParentReplyID)
		parentID = &id
	}

	reply := &models.Reply{
		Content:       content,
		AuthorID:      authorID,
		PostID:        postID,
		CommunityID:   communityID,
		ParentReplyID: parentID,
		LikedBy:       []string{},
		ReplyIDs:      []string{},
	}
	if err := s.replyRepo.Create(ctx, reply); err != nil {
		if errors.Is(err, apperrors.ErrValidationFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating reply: %w", err)
	}

	var (
		appended bool
		err      error
		parent   = "post"
	)
	if parentID != nil {
		parent = "reply"
		appended, err = s.replyRepo.AppendChild(ctx, *parentID, reply.ID)
	} else {
		appended, err = s.postRepo.AppendReply(ctx, postID, reply.ID)
	}
	switch {
	case err != nil:
		s.logger.Error().Err(err).Str("replyID", reply.ID).Str("parent", parent).
			Msg("Failed to append reply to its parent")
	case !appended:
		s.logger.Warn().Str("replyID", reply.ID).Str("parent", parent).
			Msg("Parent not found, reply stored without back reference")
		metrics.RecordSkippedAppend(parent)
	}

	return dto.NewReplyResponse(reply), nil
}

// replyFrame is one pending node of the reply tree traversal
type replyFrame struct {
	reply          *models.Reply
	node           *dto.ReplyResponse
	parentAuthorID string
}

// ListRepliesForPost returns the top-level replies of a post, oldest first,
// each carrying its full subtree. The tree is walked with an explicit stack,
// one ListChildren call per node, and leaves end the walk. Authors and
// communities are resolved in one batch afterwards.
func (s *replyServiceImpl) ListRepliesForPost(ctx context.Context, postID string) ([]*dto.ReplyResponse, error) {
	tops, err := s.replyRepo.ListTopLevel(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("error listing replies: %w", err)
	}
	roots := make([]*dto.ReplyResponse, 0, len(tops))
	if len(tops) == 0 {
		return roots, nil
	}

	for _, r := range tops {
		roots = append(roots, dto.NewReplyResponse(r))
	}
	stack := make([]replyFrame, 0, len(tops))
	for i := len(tops) - 1; i >= 0; i-- {
		stack = append(stack, replyFrame{reply: tops[i], node: roots[i]})
	}

	var visited []replyFrame
	seen := make(map[string]bool)
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[f.reply.ID] {
			continue
		}
		seen[f.reply.ID] = true
		visited = append(visited, f)

		children, err := s.replyRepo.ListChildren(ctx, f.reply.ID)
		if err != nil {
			return nil, fmt.Errorf("error listing nested replies: %w", err)
		}
		f.node.Replies = make([]*dto.ReplyResponse, 0, len(children))
		for _, c := range children {
			f.node.Replies = append(f.node.Replies, dto.NewReplyResponse(c))
		}
		// pushed in reverse so the oldest child is expanded first
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, replyFrame{
				reply:          children[i],
				node:           f.node.Replies[i],
				parentAuthorID: f.reply.AuthorID,
			})
		}
	}

	if err := s.hydrate(ctx, postID, visited); err != nil {
		return nil, err
	}
	return roots, nil
}

// hydrate fills author, community, parent author and, for top-level nodes, the post reference
func (s *replyServiceImpl) hydrate(ctx context.Context, postID string, frames []replyFrame) error {
	var postRef *dto.PostRef
	userIDs := make([]string, 0, len(frames)+1)
	communityIDs := make([]string, 0, len(frames))

	post, err := s.postRepo.GetByID(ctx, postID)
	switch {
	case err == nil:
		postRef = &dto.PostRef{ID: post.ID, AuthorID: post.AuthorID}
		userIDs = append(userIDs, post.AuthorID)
	case !errors.Is(err, apperrors.ErrResourceNotFound):
		return fmt.Errorf("error getting post: %w", err)
	}

	for _, f := range frames {
		userIDs = append(userIDs, f.reply.AuthorID)
		communityIDs = append(communityIDs, f.reply.CommunityID)
	}
	users, err := s.resolve.lookupUsers(ctx, userIDs)
	if err != nil {
		return err
	}
	communities, err := s.resolve.lookupCommunities(ctx, communityIDs)
	if err != nil {
		return err
	}

	if postRef != nil {
		if author, ok := users[postRef.AuthorID]; ok {
			postRef.AuthorName = author.FullName
		}
	}
	for _, f := range frames {
		f.node.Author = dto.NewUserSummary(users[f.reply.AuthorID], false)
		f.node.Community = dto.NewCommunityRef(communities[f.reply.CommunityID])
		if f.reply.IsTopLevel() {
			f.node.Post = postRef
		} else {
			f.node.ParentAuthor = dto.NewUserSummary(users[f.parentAuthorID], false)
		}
	}
	return nil
}

// GetReply returns a reply with its author, post and community resolved
func (s *replyServiceImpl) GetReply(ctx context.Context, replyID string) (*dto.ReplyResponse, error) {
	reply, err := s.replyRepo.GetByID(ctx, replyID)
	if err != nil {
		return nil, err
	}

	node := dto.NewReplyResponse(reply)
	userIDs := []string{reply.AuthorID}
	post, err := s.postRepo.GetByID(ctx, reply.PostID)
	switch {
	case err == nil:
		node.Post = &dto.PostRef{ID: post.ID, AuthorID: post.AuthorID}
		userIDs = append(userIDs, post.AuthorID)
	case !errors.Is(err, apperrors.ErrResourceNotFound):
		return nil, fmt.Errorf("error getting post: %w", err)
	}

	users, err := s.resolve.lookupUsers(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	communities, err := s.resolve.lookupCommunities(ctx, []string{reply.CommunityID})
	if err != nil {
		return nil, err
	}

	node.Author = dto.NewUserSummary(users[reply.AuthorID], false)
	node.Community = dto.NewCommunityRef(communities[reply.CommunityID])
	if node.Post != nil {
		if author, ok := users[node.Post.AuthorID]; ok {
			node.Post.AuthorName = author.FullName
		}
	}
	return node, nil
}

// ToggleLike likes the reply for userID, or unlikes it if already liked
func (s *replyServiceImpl) ToggleLike(ctx context.Context, replyID, userID string) (*dto.LikeResponse, error) {
	reply, err := s.replyRepo.GetByID(ctx, replyID)
	if err != nil {
		return nil, err
	}
	likes, liked := models.ToggleID(reply.LikedBy, userID)
	if err := s.replyRepo.SetLikes(ctx, replyID, likes); err != nil {
		return nil, err
	}

	message := MsgReplyUnliked
	if liked {
		message = MsgReplyLiked
	}
	return &dto.LikeResponse{Message: message, Liked: liked, Likes: likes}, nil
}

// DeleteReply removes the reply and its id from the parent reply or post.
// Nested replies are left in place and drop out of the post's tree.
func (s *replyServiceImpl) DeleteReply(ctx context.Context, replyID, callerID string) error {
	reply, err := s.replyRepo.GetByID(ctx, replyID)
	if err != nil {
		return err
	}
	if err := s.authzService.ValidateReplyDeletion(reply, callerID); err != nil {
		return err
	}
	if err := s.replyRepo.Delete(ctx, replyID); err != nil {
		return err
	}

	if reply.ParentReplyID != nil {
		err = s.replyRepo.RemoveChild(ctx, *reply.ParentReplyID, replyID)
	} else {
		err = s.postRepo.RemoveReply(ctx, reply.PostID, replyID)
	}
	if err != nil {
		return fmt.Errorf("error detaching reply: %w", err)
	}

	s.logger.Info().Str("replyID", replyID).Str("userID", callerID).Msg("Reply deleted")
	return nil
}
