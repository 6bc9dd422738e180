package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yigit/greenleaf/internal/app/models"
	"github.com/yigit/greenleaf/internal/pkg/apperrors"
)

const postColumns = `id, content, author_id, community_id, image_url, liked_by, reply_ids, created_at`

// PostRepository handles post database operations
type PostRepository struct {
	db querier
}

// NewPostRepository creates a new PostRepository
func NewPostRepository(db querier) *PostRepository {
	return &PostRepository{db: db}
}

func scanPost(row pgx.Row) (*models.Post, error) {
	var p models.Post
	if err := row.Scan(&p.ID, &p.Content, &p.AuthorID, &p.CommunityID, &p.ImageURL, &p.LikedBy, &p.ReplyIDs, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.LikedBy = ids(p.LikedBy)
	p.ReplyIDs = ids(p.ReplyIDs)
	return &p, nil
}

// Create inserts a new post
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	id := newID()
	createdAt := stamp(post.CreatedAt)
	_, err := r.db.Exec(ctx,
		`INSERT INTO posts (`+postColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, post.Content, post.AuthorID, post.CommunityID, post.ImageURL,
		ids(post.LikedBy), ids(post.ReplyIDs), createdAt)
	if err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}
	post.ID = id
	post.CreatedAt = createdAt
	return nil
}

// GetByID retrieves a post by id
func (r *PostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	if !validID(id) {
		return nil, apperrors.ErrPostNotFound
	}
	p, err := scanPost(r.db.QueryRow(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return p, nil
}

// ListByCommunities returns the posts of the given communities, newest first
func (r *PostRepository) ListByCommunities(ctx context.Context, communityIDs []string) ([]*models.Post, error) {
	if len(communityIDs) == 0 {
		return []*models.Post{}, nil
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+postColumns+` FROM posts WHERE community_id = ANY($1) ORDER BY created_at DESC, id DESC`, communityIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	posts, err := collect(rows, scanPost)
	if err != nil {
		return nil, fmt.Errorf("failed to scan posts: %w", err)
	}
	return posts, nil
}

// Delete removes a post
func (r *PostRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrPostNotFound
	}
	return nil
}

func (r *PostRepository) exec(ctx context.Context, sql string, args ...any) (bool, error) {
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("failed to update post: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// SetLikes replaces the like set
func (r *PostRepository) SetLikes(ctx context.Context, postID string, likes []string) error {
	ok, err := r.exec(ctx, `UPDATE posts SET liked_by = $2 WHERE id = $1`, postID, ids(likes))
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.ErrPostNotFound
	}
	return nil
}

// AppendReply appends a top-level reply id
func (r *PostRepository) AppendReply(ctx context.Context, postID, replyID string) (bool, error) {
	return r.exec(ctx, `UPDATE posts SET reply_ids = array_append(reply_ids, $2) WHERE id = $1`, postID, replyID)
}

// RemoveReply pulls a reply id from the post. A missing post is not an error.
func (r *PostRepository) RemoveReply(ctx context.Context, postID, replyID string) error {
	_, err := r.exec(ctx, `UPDATE posts SET reply_ids = array_remove(reply_ids, $2) WHERE id = $1`, postID, replyID)
	return err
}
