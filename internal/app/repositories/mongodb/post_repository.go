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

// PostRepository stores posts in the posts collection.
type PostRepository struct {
	coll *mongo.Collection
}

// NewPostRepository creates a new PostRepository
func NewPostRepository(db *mongo.Database) *PostRepository {
	return &PostRepository{coll: db.Collection(postsCollection)}
}

// Create inserts a new post
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	author, ok := objectID(post.AuthorID)
	if !ok {
		return apperrors.NewValidationError("userId", "Invalid user id")
	}
	community, ok := objectID(post.CommunityID)
	if !ok {
		return apperrors.NewValidationError("communityId", "Invalid community id")
	}
	likes, err := referenceIDs("likes", post.LikedBy)
	if err != nil {
		return err
	}
	replies, err := referenceIDs("replies", post.ReplyIDs)
	if err != nil {
		return err
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}

	doc := postDocument{
		ID:          primitive.NewObjectID(),
		Content:     post.Content,
		UserID:      author,
		CommunityID: community,
		ImageURL:    post.ImageURL,
		Likes:       likes,
		Replies:     replies,
		CreatedAt:   post.CreatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}
	post.ID = doc.ID.Hex()
	return nil
}

// GetByID retrieves a post by id
func (r *PostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, apperrors.ErrPostNotFound
	}
	var doc postDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to find post: %w", err)
	}
	return doc.toModel(), nil
}

// ListByCommunities returns the posts of the given communities, newest first
func (r *PostRepository) ListByCommunities(ctx context.Context, communityIDs []string) ([]*models.Post, error) {
	oids := objectIDs(communityIDs)
	if len(oids) == 0 {
		return []*models.Post{}, nil
	}
	cursor, err := r.coll.Find(ctx, bson.M{"communityId": bson.M{"$in": oids}}, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	var docs []postDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode posts: %w", err)
	}
	out := make([]*models.Post, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toModel())
	}
	return out, nil
}

// Delete removes a post
func (r *PostRepository) Delete(ctx context.Context, id string) error {
	oid, ok := objectID(id)
	if !ok {
		return apperrors.ErrPostNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperrors.ErrPostNotFound
	}
	return nil
}

func (r *PostRepository) updateByID(ctx context.Context, id string, update bson.M) (bool, error) {
	oid, ok := objectID(id)
	if !ok {
		return false, nil
	}
	res, err := r.coll.UpdateByID(ctx, oid, update)
	if err != nil {
		return false, fmt.Errorf("failed to update post: %w", err)
	}
	return res.MatchedCount > 0, nil
}

// SetLikes replaces the like set
func (r *PostRepository) SetLikes(ctx context.Context, postID string, likes []string) error {
	oids, err := referenceIDs("likes", likes)
	if err != nil {
		return err
	}
	matched, err := r.updateByID(ctx, postID, bson.M{"$set": bson.M{"likes": oids}})
	if err != nil {
		return err
	}
	if !matched {
		return apperrors.ErrPostNotFound
	}
	return nil
}

// AppendReply pushes a top-level reply id
func (r *PostRepository) AppendReply(ctx context.Context, postID, replyID string) (bool, error) {
	reply, ok := objectID(replyID)
	if !ok {
		return false, apperrors.NewValidationError("replyId", "Invalid reply id")
	}
	return r.updateByID(ctx, postID, bson.M{"$push": bson.M{"replies": reply}})
}

// RemoveReply pulls a reply id from the post. A missing post is not an error.
func (r *PostRepository) RemoveReply(ctx context.Context, postID, replyID string) error {
	reply, ok := objectID(replyID)
	if !ok {
		return nil
	}
	_, err := r.updateByID(ctx, postID, bson.M{"$pull": bson.M{"replies": reply}})
	return err
}
