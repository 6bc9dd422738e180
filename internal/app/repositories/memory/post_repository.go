package memory

import (
	"context"
	"sort"

	"github.com/yigit/greenleaf/internal/app/models"
	"github.com/yigit/greenleaf/internal/pkg/apperrors"
)

// PostRepository is an in-memory repositories.PostRepository.
type PostRepository struct {
	t *table[*models.Post]
}

// NewPostRepository creates an empty post store.
func NewPostRepository() *PostRepository {
	return &PostRepository{t: newTable(clonePost)}
}

func clonePost(p *models.Post) *models.Post {
	out := *p
	out.ImageURL = cloneString(p.ImageURL)
	out.LikedBy = cloneIDs(p.LikedBy)
	out.ReplyIDs = cloneIDs(p.ReplyIDs)
	return &out
}

// Create stores a new post.
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()

	post.ID = newID()
	post.CreatedAt = stamp(post.CreatedAt)
	r.t.insertLocked(post.ID, post)
	return nil
}

// GetByID returns the post with the given id.
func (r *PostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	p, ok := r.t.get(id)
	if !ok {
		return nil, apperrors.ErrPostNotFound
	}
	return p, nil
}

// ListByCommunities returns the posts of the given communities, newest first.
func (r *PostRepository) ListByCommunities(ctx context.Context, communityIDs []string) ([]*models.Post, error) {
	if len(communityIDs) == 0 {
		return []*models.Post{}, nil
	}
	posts := r.t.filter(func(p *models.Post) bool { return models.ContainsID(communityIDs, p.CommunityID) })
	// filter returns insertion order; reversing it first keeps equal timestamps newest first
	for i, j := 0, len(posts)-1; i < j; i, j = i+1, j-1 {
		posts[i], posts[j] = posts[j], posts[i]
	}
	sort.SliceStable(posts, func(i, j int) bool { return posts[i].CreatedAt.After(posts[j].CreatedAt) })
	return posts, nil
}

// Delete removes the post.
func (r *PostRepository) Delete(ctx context.Context, id string) error {
	if !r.t.delete(id) {
		return apperrors.ErrPostNotFound
	}
	return nil
}

// SetLikes replaces the like set.
func (r *PostRepository) SetLikes(ctx context.Context, postID string, likes []string) error {
	ok := r.t.update(postID, func(p *models.Post) { p.LikedBy = cloneIDs(likes) })
	if !ok {
		return apperrors.ErrPostNotFound
	}
	return nil
}

// AppendReply appends a top-level reply id.
func (r *PostRepository) AppendReply(ctx context.Context, postID, replyID string) (bool, error) {
	return r.t.update(postID, func(p *models.Post) { p.ReplyIDs = append(p.ReplyIDs, replyID) }), nil
}

// RemoveReply pulls a reply id from the post.
func (r *PostRepository) RemoveReply(ctx context.Context, postID, replyID string) error {
	r.t.update(postID, func(p *models.Post) { p.ReplyIDs = models.RemoveID(p.ReplyIDs, replyID) })
	return nil
}
