package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yigit/greenleaf/internal/app/models"
	"github.com/yigit/greenleaf/internal/pkg/apperrors"
)

// CommunityRepository stores communities in the communities collection.
type CommunityRepository struct {
	coll *mongo.Collection
}

// NewCommunityRepository creates a new CommunityRepository
func NewCommunityRepository(db *mongo.Database) *CommunityRepository {
	return &CommunityRepository{coll: db.Collection(communitiesCollection)}
}

// Create inserts a new community
func (r *CommunityRepository) Create(ctx context.Context, community *models.Community) error {
	admin, ok := objectID(community.AdminID)
	if !ok {
		return apperrors.NewValidationError("admin", "Invalid admin id")
	}
	members, err := referenceIDs("members", community.MemberIDs)
	if err != nil {
		return err
	}
	posts, err := referenceIDs("posts", community.PostIDs)
	if err != nil {
		return err
	}
	if community.CreatedAt.IsZero() {
		community.CreatedAt = time.Now().UTC()
	}

	doc := communityDocument{
		ID:          primitive.NewObjectID(),
		Name:        community.Name,
		Description: community.Description,
		ImageURL:    community.ImageURL,
		Admin:       admin,
		Members:     members,
		Posts:       posts,
		CreatedAt:   community.CreatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert community: %w", err)
	}
	community.ID = doc.ID.Hex()
	return nil
}

// GetByID retrieves a community by id
func (r *CommunityRepository) GetByID(ctx context.Context, id string) (*models.Community, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, apperrors.ErrCommunityNotFound
	}
	var doc communityDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrCommunityNotFound
		}
		return nil, fmt.Errorf("failed to find community: %w", err)
	}
	return doc.toModel(), nil
}

func (r *CommunityRepository) find(ctx context.Context, filter bson.M) ([]*models.Community, error) {
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(oldestFirst))
	if err != nil {
		return nil, fmt.Errorf("failed to query communities: %w", err)
	}
	var docs []communityDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode communities: %w", err)
	}
	out := make([]*models.Community, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toModel())
	}
	return out, nil
}

// GetByIDs retrieves the existing communities among ids
func (r *CommunityRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*models.Community, error) {
	out := make(map[string]*models.Community, len(ids))
	oids := objectIDs(ids)
	if len(oids) == 0 {
		return out, nil
	}
	found, err := r.find(ctx, bson.M{"_id": bson.M{"$in": oids}})
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
	oid, ok := objectID(userID)
	if !ok {
		all, err := r.find(ctx, bson.M{})
		return []*models.Community{}, all, err
	}
	member, err := r.find(ctx, bson.M{"members": oid})
	if err != nil {
		return nil, nil, err
	}
	nonMember, err := r.find(ctx, bson.M{"members": bson.M{"$ne": oid}})
	if err != nil {
		return nil, nil, err
	}
	return member, nonMember, nil
}

func (r *CommunityRepository) updateByID(ctx context.Context, id string, update bson.M) (bool, error) {
	oid, ok := objectID(id)
	if !ok {
		return false, nil
	}
	res, err := r.coll.UpdateByID(ctx, oid, update)
	if err != nil {
		return false, fmt.Errorf("failed to update community: %w", err)
	}
	return res.MatchedCount > 0, nil
}

func (r *CommunityRepository) mustUpdate(ctx context.Context, id string, update bson.M) error {
	matched, err := r.updateByID(ctx, id, update)
	if err != nil {
		return err
	}
	if !matched {
		return apperrors.ErrCommunityNotFound
	}
	return nil
}

// UpdateDetails writes name, description and image url
func (r *CommunityRepository) UpdateDetails(ctx context.Context, community *models.Community) error {
	return r.mustUpdate(ctx, community.ID, bson.M{"$set": bson.M{
		"name":        community.Name,
		"description": community.Description,
		"imageUrl":    community.ImageURL,
	}})
}

// Delete removes a community
func (r *CommunityRepository) Delete(ctx context.Context, id string) error {
	oid, ok := objectID(id)
	if !ok {
		return apperrors.ErrCommunityNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete community: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperrors.ErrCommunityNotFound
	}
	return nil
}

// AddMember adds userID to the member set
func (r *CommunityRepository) AddMember(ctx context.Context, communityID, userID string) error {
	member, ok := objectID(userID)
	if !ok {
		return apperrors.NewValidationError("userId", "Invalid user id")
	}
	return r.mustUpdate(ctx, communityID, bson.M{"$addToSet": bson.M{"members": member}})
}

// RemoveMember pulls userID from the member set
func (r *CommunityRepository) RemoveMember(ctx context.Context, communityID, userID string) error {
	member, ok := objectID(userID)
	if !ok {
		return apperrors.NewValidationError("userId", "Invalid user id")
	}
	return r.mustUpdate(ctx, communityID, bson.M{"$pull": bson.M{"members": member}})
}

// AppendPost pushes postID onto the post list
func (r *CommunityRepository) AppendPost(ctx context.Context, communityID, postID string) (bool, error) {
	post, ok := objectID(postID)
	if !ok {
		return false, apperrors.NewValidationError("postId", "Invalid post id")
	}
	return r.updateByID(ctx, communityID, bson.M{"$push": bson.M{"posts": post}})
}
