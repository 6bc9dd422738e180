package memory

import (
	"context"

	"github.com/yigit/greenleaf/internal/app/models"
	"github.com/yigit/greenleaf/internal/pkg/apperrors"
)

// CommunityRepository is an in-memory repositories.CommunityRepository.
type CommunityRepository struct {
	t *table[*models.Community]
}

// NewCommunityRepository creates an empty community store.
func NewCommunityRepository() *CommunityRepository {
	return &CommunityRepository{t: newTable(cloneCommunity)}
}

func cloneCommunity(c *models.Community) *models.Community {
	out := *c
	out.ImageURL = cloneString(c.ImageURL)
	out.MemberIDs = cloneIDs(c.MemberIDs)
	out.PostIDs = cloneIDs(c.PostIDs)
	return &out
}

// Create stores a new community.
func (r *CommunityRepository) Create(ctx context.Context, community *models.Community) error {
	r.t.mu.Lock()
	defer r.t.mu.Unlock()

	community.ID = newID()
	community.CreatedAt = stamp(community.CreatedAt)
	r.t.insertLocked(community.ID, community)
	return nil
}

// GetByID returns the community with the given id.
func (r *CommunityRepository) GetByID(ctx context.Context, id string) (*models.Community, error) {
	c, ok := r.t.get(id)
	if !ok {
		return nil, apperrors.ErrCommunityNotFound
	}
	return c, nil
}

// GetByIDs returns the existing communities among ids.
func (r *CommunityRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*models.Community, error) {
	out := make(map[string]*models.Community, len(ids))
	for _, id := range ids {
		if c, ok := r.t.get(id); ok {
			out[id] = c
		}
	}
	return out, nil
}

// ListByMembership splits all communities by membership of userID.
func (r *CommunityRepository) ListByMembership(ctx context.Context, userID string) ([]*models.Community, []*models.Community, error) {
	member := make([]*models.Community, 0)
	nonMember := make([]*models.Community, 0)
	for _, c := range r.t.filter(func(*models.Community) bool { return true }) {
		if c.HasMember(userID) {
			member = append(member, c)
		} else {
			nonMember = append(nonMember, c)
		}
	}
	return member, nonMember, nil
}

// UpdateDetails writes name, description and image url.
func (r *CommunityRepository) UpdateDetails(ctx context.Context, community *models.Community) error {
	ok := r.t.update(community.ID, func(c *models.Community) {
		c.Name = community.Name
		c.Description = community.Description
		c.ImageURL = cloneString(community.ImageURL)
	})
	if !ok {
		return apperrors.ErrCommunityNotFound
	}
	return nil
}

// Delete removes the community.
func (r *CommunityRepository) Delete(ctx context.Context, id string) error {
	if !r.t.delete(id) {
		return apperrors.ErrCommunityNotFound
	}
	return nil
}

// AddMember adds userID to the member set.
func (r *CommunityRepository) AddMember(ctx context.Context, communityID, userID string) error {
	ok := r.t.update(communityID, func(c *models.Community) {
		if !c.HasMember(userID) {
			c.MemberIDs = append(c.MemberIDs, userID)
		}
	})
	if !ok {
		return apperrors.ErrCommunityNotFound
	}
	return nil
}

// RemoveMember removes userID from the member set.
func (r *CommunityRepository) RemoveMember(ctx context.Context, communityID, userID string) error {
	ok := r.t.update(communityID, func(c *models.Community) {
		c.MemberIDs = models.RemoveID(c.MemberIDs, userID)
	})
	if !ok {
		return apperrors.ErrCommunityNotFound
	}
	return nil
}

// AppendPost appends postID to the post list.
func (r *CommunityRepository) AppendPost(ctx context.Context, communityID, postID string) (bool, error) {
	return r.t.update(communityID, func(c *models.Community) {
		c.PostIDs = append(c.PostIDs, postID)
	}), nil
}
