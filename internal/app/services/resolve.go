package services

import (
	"context"
	"fmt"

	"github.com/yigit/greenleaf/internal/app/models"
	"github.com/yigit/greenleaf/internal/app/models/dto"
	"github.com/yigit/greenleaf/internal/app/repositories"
)

// resolver batches the author and community lookups behind list responses.
// Missing references (deleted users or communities) resolve to nil.
type resolver struct {
	users       repositories.UserRepository
	communities repositories.CommunityRepository
}

func (r resolver) lookupUsers(ctx context.Context, ids []string) (map[string]*models.User, error) {
	users, err := r.users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("error resolving users: %w", err)
	}
	return users, nil
}

func (r resolver) lookupCommunities(ctx context.Context, ids []string) (map[string]*models.Community, error) {
	communities, err := r.communities.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("error resolving communities: %w", err)
	}
	return communities, nil
}

// posts maps posts to responses with author and community resolved
func (r resolver) posts(ctx context.Context, posts []*models.Post) ([]dto.PostResponse, error) {
	authorIDs := make([]string, 0, len(posts))
	communityIDs := make([]string, 0, len(posts))
	for _, p := range posts {
		authorIDs = append(authorIDs, p.AuthorID)
		communityIDs = append(communityIDs, p.CommunityID)
	}
	users, err := r.lookupUsers(ctx, authorIDs)
	if err != nil {
		return nil, err
	}
	communities, err := r.lookupCommunities(ctx, communityIDs)
	if err != nil {
		return nil, err
	}

	out := make([]dto.PostResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, dto.NewPostResponse(p, users[p.AuthorID], communities[p.CommunityID]))
	}
	return out, nil
}
