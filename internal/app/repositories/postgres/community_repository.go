package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yigit/greenleaf/internal/app/models"
	"github.com/yigit/greenleaf/internal/pkg/apperrors"
)

const communityColumns = `id, name, description, image_url, admin_id, member_ids, post_ids, created_at`

// CommunityRepository handles community database operations
type CommunityRepository struct {
	db querier
}

// NewCommunityRepository creates a new CommunityRepository
func NewCommunityRepository(db querier) *CommunityRepository {
	return &CommunityRepository{db: db}
}

func scanCommunity(row pgx.Row) (*models.Community, error) {
	var c models.Community
	if err := row.Scan(&c.ID, &c.Name, &c.Description, &c.ImageURL, &c.AdminID, &c.MemberIDs, &c.PostIDs, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.MemberIDs = ids(c.MemberIDs)
	c.PostIDs = ids(c.PostIDs)
	return &c, nil
}

// Create inserts a new community
func (r *CommunityRepository) Create(ctx context.Context, community *models.Community) error {
	id := newID()
	createdAt := stamp(community.CreatedAt)
	_, err := r.db.Exec(ctx,
		`INSERT INTO communities (`+communityColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, community.Name, community.Description, community.ImageURL, community.AdminID,
		ids(community.MemberIDs), ids(community.PostIDs), createdAt)
	if err != nil {
		return fmt.Errorf("failed to insert community: %w", err)
	}
	community.ID = id
	community.CreatedAt = createdAt
	return nil
}

// GetByID retrieves a community by id
func (r *CommunityRepository) GetByID(ctx context.Context, id string) (*models.Community, error) {
	if !validID(id) {
		return nil, apperrors.ErrCommunityNotFound
	}
	c, err := scanCommunity(r.db.QueryRow(ctx, `SELECT `+communityColumns+` FROM communities WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCommunityNotFound
		}
		return nil, fmt.Errorf("failed to get community: %w", err)
	}
	return c, nil
}

func (r *CommunityRepository) list(ctx context.Context, where string, args ...any) ([]*models.Community, error) {
	rows, err := r.db.Query(ctx, `SELECT `+communityColumns+` FROM communities WHERE `+where+` ORDER BY created_at, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query communities: %w", err)
	}
	out, err := collect(rows, scanCommunity)
	if err != nil {
		return nil, fmt.Errorf("failed to scan communities: %w", err)
	}
	return out, nil
}

// GetByIDs retrieves the existing communities among ids
func (r *CommunityRepository) GetByIDs(ctx context.Context, communityIDs []string) (map[string]*models.Community, error) {
	out := make(map[string]*models.Community, len(communityIDs))
	if len(communityIDs) == 0 {
		return out, nil
	}
	found, err := r.list(ctx, `id = ANY($1)`, communityIDs)
	if err != nil {
		return nil, err
	}
	for _, c := range found {
		out[c.ID] = c
	}
	return out, nil
}

// ListByMembership splits all communities by membership of userID
func (r *CommunityRepository) ListByMembership(ctx context.Context, userID string) ([]*models.Community, []*models.Community, error) {
	member, err := r.list(ctx, `$1 = ANY(member_ids)`, userID)
	if err != nil {
		return nil, nil, err
	}
	nonMember, err := r.list(ctx, `NOT ($1 = ANY(member_ids))`, userID)
	if err != nil {
		return nil, nil, err
	}
	return member, nonMember, nil
}

// exec runs a single-row update and reports whether the row existed
func (r *CommunityRepository) exec(ctx context.Context, sql string, args ...any) (bool, error) {
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("failed to update community: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *CommunityRepository) mustExec(ctx context.Context, sql string, args ...any) error {
	ok, err := r.exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.ErrCommunityNotFound
	}
	return nil
}

// UpdateDetails writes name, description and image url
func (r *CommunityRepository) UpdateDetails(ctx context.Context, community *models.Community) error {
	return r.mustExec(ctx,
		`UPDATE communities SET name = $2, description = $3, image_url = $4 WHERE id = $1`,
		community.ID, community.Name, community.Description, community.ImageURL)
}

// Delete removes a community
func (r *CommunityRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM communities WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete community: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCommunityNotFound
	}
	return nil
}

// AddMember adds userID to the member set if absent
func (r *CommunityRepository) AddMember(ctx context.Context, communityID, userID string) error {
	return r.mustExec(ctx, `
		UPDATE communities
		SET member_ids = CASE WHEN $2 = ANY(member_ids) THEN member_ids ELSE array_append(member_ids, $2) END
		WHERE id = $1`, communityID, userID)
}

// RemoveMember removes userID from the member set
func (r *CommunityRepository) RemoveMember(ctx context.Context, communityID, userID string) error {
	return r.mustExec(ctx, `UPDATE communities SET member_ids = array_remove(member_ids, $2) WHERE id = $1`, communityID, userID)
}

// AppendPost appends postID to the post list
func (r *CommunityRepository) AppendPost(ctx context.Context, communityID, postID string) (bool, error) {
	return r.exec(ctx, `UPDATE communities SET post_ids = array_append(post_ids, $2) WHERE id = $1`, communityID, postID)
}
