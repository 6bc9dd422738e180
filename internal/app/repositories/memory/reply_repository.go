package memory

import (
	"context"

	"github.com/yigit/greenleaf/internal/app/models"
	"github.com/yigit/greenleaf/internal/pkg/apperrors"
)

// ReplyRepository is an in-memory repositories.ReplyRepository.
type ReplyRepository struct {
	t *table[*models.Reply]
}

// NewReplyRepository creates an empty reply store.
func NewReplyRepository() *ReplyRepository {
	return &ReplyRepository{t: newTable(cloneReply)}
}

func cloneReply(r *models.Reply) *models.Reply {
	out := *r
	out.ParentReplyID = cloneString(r.ParentReplyID)
	out.LikedBy = cloneIDs(r.LikedBy)
	out.ReplyIDs = cloneIDs(r.ReplyIDs)
	return &out
}

// Create stores a new reply.
func (r *ReplyRepository) Create(ctx context.Context, reply *models.Reply) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()

	reply.ID = newID()
	reply.CreatedAt = stamp(reply.CreatedAt)
	r.t.insertLocked(reply.ID, reply)
	return nil
}

// GetByID returns the reply with the given id.
func (r *ReplyRepository) GetByID(ctx context.Context, id string) (*models.Reply, error) {
	reply, ok := r.t.get(id)
	if !ok {
		return nil, apperrors.ErrReplyNotFound
	}
	return reply, nil
}

// ListTopLevel returns the parentless replies of a post in creation order.
func (r *ReplyRepository) ListTopLevel(ctx context.Context, postID string) ([]*models.Reply, error) {
	return r.t.filter(func(reply *models.Reply) bool {
		return reply.PostID == postID && reply.IsTopLevel()
	}), nil
}

// ListChildren returns the direct children of a reply in creation order.
func (r *ReplyRepository) ListChildren(ctx context.Context, parentID string) ([]*models.Reply, error) {
	return r.t.filter(func(reply *models.Reply) bool {
		return reply.ParentReplyID != nil && *reply.ParentReplyID == parentID
	}), nil
}

// Delete removes the reply. Its children keep pointing at it.
func (r *ReplyRepository) Delete(ctx context.Context, id string) error {
	if !r.t.delete(id) {
		return apperrors.ErrReplyNotFound
	}
	return nil
}

// SetLikes replaces the like set.
func (r *ReplyRepository) SetLikes(ctx context.Context, replyID string, likes []string) error {
	ok := r.t.update(replyID, func(reply *models.Reply) { reply.LikedBy = cloneIDs(likes) })
	if !ok {
		return apperrors.ErrReplyNotFound
	}
	return nil
}

// AppendChild appends a nested reply id to its parent.
func (r *ReplyRepository) AppendChild(ctx context.Context, parentID, childID string) (bool, error) {
	return r.t.update(parentID, func(reply *models.Reply) { reply.ReplyIDs = append(reply.ReplyIDs, childID) }), nil
}

// RemoveChild pulls a nested reply id from its parent.
func (r *ReplyRepository) RemoveChild(ctx context.Context, parentID, childID string) error {
	r.t.update(parentID, func(reply *models.Reply) { reply.ReplyIDs = models.RemoveID(reply.ReplyIDs, childID) })
	return nil
}
