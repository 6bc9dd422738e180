package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yigit/greenleaf/internal/app/models"
	"github.com/yigit/greenleaf/internal/pkg/apperrors"
)

const replyColumns = `id, content, author_id, post_id, community_id, parent_reply_id, liked_by, reply_ids, created_at`

// ReplyRepository handles reply database operations
type ReplyRepository struct {
	db querier
}

// NewReplyRepository creates a new ReplyRepository
func NewReplyRepository(db querier) *ReplyRepository {
	return &ReplyRepository{db: db}
}

func scanReply(row pgx.Row) (*models.Reply, error) {
	var r models.Reply
	err := row.Scan(&r.ID, &r.Content, &r.AuthorID, &r.PostID, &r.CommunityID,
		&r.ParentReplyID, &r.LikedBy, &r.ReplyIDs, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	r.LikedBy = ids(r.LikedBy)
	r.ReplyIDs = ids(r.ReplyIDs)
	return &r, nil
}

// Create inserts a new reply
func (r *ReplyRepository) Create(ctx context.Context, reply *models.Reply) error {
	id := newID()
	createdAt := stamp(reply.CreatedAt)
	_, err := r.db.Exec(ctx,
		`INSERT INTO replies (`+replyColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		id, reply.Content, reply.AuthorID, reply.PostID, reply.CommunityID, reply.ParentReplyID,
		ids(reply.LikedBy), ids(reply.ReplyIDs), createdAt)
	if err != nil {
		return fmt.Errorf("failed to insert reply: %w", err)
	}
	reply.ID = id
	reply.CreatedAt = createdAt
	return nil
}

// GetByID retrieves a reply by id
func (r *ReplyRepository) GetByID(ctx context.Context, id string) (*models.Reply, error) {
	if !validID(id) {
		return nil, apperrors.ErrReplyNotFound
	}
	reply, err := scanReply(r.db.QueryRow(ctx, `SELECT `+replyColumns+` FROM replies WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrReplyNotFound
		}
		return nil, fmt.Errorf("failed to get reply: %w", err)
	}
	return reply, nil
}

func (r *ReplyRepository) list(ctx context.Context, where string, arg any) ([]*models.Reply, error) {
	rows, err := r.db.Query(ctx, `SELECT `+replyColumns+` FROM replies WHERE `+where+` ORDER BY created_at, id`, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query replies: %w", err)
	}
	out, err := collect(rows, scanReply)
	if err != nil {
		return nil, fmt.Errorf("failed to scan replies: %w", err)
	}
	return out, nil
}

// ListTopLevel returns the parentless replies of a post, oldest first
func (r *ReplyRepository) ListTopLevel(ctx context.Context, postID string) ([]*models.Reply, error) {
	return r.list(ctx, `post_id = $1 AND parent_reply_id IS NULL`, postID)
}

// ListChildren returns the direct children of a reply, oldest first
func (r *ReplyRepository) ListChildren(ctx context.Context, parentID string) ([]*models.Reply, error) {
	return r.list(ctx, `parent_reply_id = $1`, parentID)
}

// Delete removes a reply. Children keep their parent reference.
func (r *ReplyRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM replies WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete reply: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrReplyNotFound
	}
	return nil
}

func (r *ReplyRepository) exec(ctx context.Context, sql string, args ...any) (bool, error) {
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("failed to update reply: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// SetLikes replaces the like set
func (r *ReplyRepository) SetLikes(ctx context.Context, replyID string, likes []string) error {
	ok, err := r.exec(ctx, `UPDATE replies SET liked_by = $2 WHERE id = $1`, replyID, ids(likes))
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.ErrReplyNotFound
	}
	return nil
}

// AppendChild appends a nested reply id to its parent
func (r *ReplyRepository) AppendChild(ctx context.Context, parentID, childID string) (bool, error) {
	return r.exec(ctx, `UPDATE replies SET reply_ids = array_append(reply_ids, $2) WHERE id = $1`, parentID, childID)
}

// RemoveChild pulls a nested reply id from its parent
func (r *ReplyRepository) RemoveChild(ctx context.Context, parentID, childID string) error {
	_, err := r.exec(ctx, `UPDATE replies SET reply_ids = array_remove(reply_ids, $2) WHERE id = $1`, parentID, childID)
	return err
}
