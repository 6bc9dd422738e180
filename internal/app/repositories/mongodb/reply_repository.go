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

// ReplyRepository stores replies in the replies collection.
type ReplyRepository struct {
	coll *mongo.Collection
}

// NewReplyRepository creates a new ReplyRepository
func NewReplyRepository(db *mongo.Database) *ReplyRepository {
	return &ReplyRepository{coll: db.Collection(repliesCollection)}
}

// Create inserts a new reply
func (r *ReplyRepository) Create(ctx context.Context, reply *models.Reply) error {
	author, ok := objectID(reply.AuthorID)
	if !ok {
		return apperrors.NewValidationError("userId", "Invalid user id")
	}
	post, ok := objectID(reply.PostID)
	if !ok {
		return apperrors.NewValidationError("postId", "Invalid post id")
	}
	community, ok := objectID(reply.CommunityID)
	if !ok {
		return apperrors.NewValidationError("communityId", "Invalid community id")
	}
	var parent *primitive.ObjectID
	if reply.ParentReplyID != nil {
		oid, ok := objectID(*reply.ParentReplyID)
		if !ok {
			return apperrors.NewValidationError("parentReplyId", "Invalid parent reply id")
		}
		parent = &oid
	}
	likes, err := referenceIDs("likes", reply.LikedBy)
	if err != nil {
		return err
	}
	children, err := referenceIDs("replies", reply.ReplyIDs)
	if err != nil {
		return err
	}
	if reply.CreatedAt.IsZero() {
		reply.CreatedAt = time.Now().UTC()
	}

	doc := replyDocument{
		ID:            primitive.NewObjectID(),
		Content:       reply.Content,
		UserID:        author,
		PostID:        post,
		CommunityID:   community,
		ParentReplyID: parent,
		Likes:         likes,
		Replies:       children,
		CreatedAt:     reply.CreatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert reply: %w", err)
	}
	reply.ID = doc.ID.Hex()
	return nil
}

// GetByID retrieves a reply by id
func (r *ReplyRepository) GetByID(ctx context.Context, id string) (*models.Reply, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, apperrors.ErrReplyNotFound
	}
	var doc replyDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrReplyNotFound
		}
		return nil, fmt.Errorf("failed to find reply: %w", err)
	}
	return doc.toModel(), nil
}

func (r *ReplyRepository) find(ctx context.Context, filter bson.M) ([]*models.Reply, error) {
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(oldestFirst))
	if err != nil {
		return nil, fmt.Errorf("failed to query replies: %w", err)
	}
	var docs []replyDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode replies: %w", err)
	}
	out := make([]*models.Reply, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toModel())
	}
	return out, nil
}

// ListTopLevel returns the parentless replies of a post, oldest first.
// A null filter also matches documents where the field is absent.
func (r *ReplyRepository) ListTopLevel(ctx context.Context, postID string) ([]*models.Reply, error) {
	oid, ok := objectID(postID)
	if !ok {
		return []*models.Reply{}, nil
	}
	return r.find(ctx, bson.M{"postId": oid, "parentReplyId": nil})
}

// ListChildren returns the direct children of a reply, oldest first
func (r *ReplyRepository) ListChildren(ctx context.Context, parentID string) ([]*models.Reply, error) {
	oid, ok := objectID(parentID)
	if !ok {
		return []*models.Reply{}, nil
	}
	return r.find(ctx, bson.M{"parentReplyId": oid})
}

// Delete removes a reply. Children keep their parent reference.
func (r *ReplyRepository) Delete(ctx context.Context, id string) error {
	oid, ok := objectID(id)
	if !ok {
		return apperrors.ErrReplyNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete reply: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperrors.ErrReplyNotFound
	}
	return nil
}

func (r *ReplyRepository) updateByID(ctx context.Context, id string, update bson.M) (bool, error) {
	oid, ok := objectID(id)
	if !ok {
		return false, nil
	}
	res, err := r.coll.UpdateByID(ctx, oid, update)
	if err != nil {
		return false, fmt.Errorf("failed to update reply: %w", err)
	}
	return res.MatchedCount > 0, nil
}

// SetLikes replaces the like set
func (r *ReplyRepository) SetLikes(ctx context.Context, replyID string, likes []string) error {
	oids, err := referenceIDs("likes", likes)
	if err != nil {
		return err
	}
	matched, err := r.updateByID(ctx, replyID, bson.M{"$set": bson.M{"likes": oids}})
	if err != nil {
		return err
	}
	if !matched {
		return apperrors.ErrReplyNotFound
	}
	return nil
}

// AppendChild pushes a nested reply id onto its parent
func (r *ReplyRepository) AppendChild(ctx context.Context, parentID, childID string) (bool, error) {
	child, ok := objectID(childID)
	if !ok {
		return false, apperrors.NewValidationError("replyId", "Invalid reply id")
	}
	return r.updateByID(ctx, parentID, bson.M{"$push": bson.M{"replies": child}})
}

// RemoveChild pulls a nested reply id from its parent
func (r *ReplyRepository) RemoveChild(ctx context.Context, parentID, childID string) error {
	child, ok := objectID(childID)
	if !ok {
		return nil
	}
	_, err := r.updateByID(ctx, parentID, bson.M{"$pull": bson.M{"replies": child}})
	return err
}
