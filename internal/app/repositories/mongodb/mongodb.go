// Package mongodb implements the repositories on MongoDB. Ids are ObjectIDs in
// storage and hex strings everywhere else.
package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yigit/greenleaf/internal/app/repositories"
	"github.com/yigit/greenleaf/internal/pkg/apperrors"
)

// Collection names
const (
	usersCollection       = "users"
	communitiesCollection = "communities"
	postsCollection       = "posts"
	repliesCollection     = "replies"
)

// Unique index names, used to tell duplicate key errors apart
const (
	userEmailIndex    = "email_1"
	userFullNameIndex = "fullName_1"
)

var (
	_ repositories.UserRepository      = (*UserRepository)(nil)
	_ repositories.CommunityRepository = (*CommunityRepository)(nil)
	_ repositories.PostRepository      = (*PostRepository)(nil)
	_ repositories.ReplyRepository     = (*ReplyRepository)(nil)
)

// NewRepositories builds all repositories on db.
func NewRepositories(db *mongo.Database) *repositories.Repositories {
	return &repositories.Repositories{
		UserRepository:      NewUserRepository(db),
		CommunityRepository: NewCommunityRepository(db),
		PostRepository:      NewPostRepository(db),
		ReplyRepository:     NewReplyRepository(db),
		Close: func(ctx context.Context) error {
			return db.Client().Disconnect(ctx)
		},
	}
}

// EnsureIndexes creates the indexes the repositories rely on. It is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName(userEmailIndex)},
			{Keys: bson.D{{Key: "fullName", Value: 1}}, Options: options.Index().SetUnique(true).SetName(userFullNameIndex)},
		},
		communitiesCollection: {
			{Keys: bson.D{{Key: "members", Value: 1}}},
		},
		postsCollection: {
			{Keys: bson.D{{Key: "communityId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		repliesCollection: {
			{Keys: bson.D{{Key: "postId", Value: 1}, {Key: "parentReplyId", Value: 1}}},
			{Keys: bson.D{{Key: "parentReplyId", Value: 1}}},
		},
	}
	for coll, models := range indexes {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", coll, err)
		}
	}
	return nil
}

// objectID parses a hex id. Invalid ids never match a stored document.
func objectID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	return oid, err == nil
}

// objectIDs parses ids, dropping invalid ones.
func objectIDs(ids []string) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, ok := objectID(id); ok {
			out = append(out, oid)
		}
	}
	return out
}

// referenceIDs parses ids that must all be valid, failing with a validation error naming field.
func referenceIDs(field string, ids []string) ([]primitive.ObjectID, error) {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, ok := objectID(id)
		if !ok {
			return nil, apperrors.NewValidationError(field, fmt.Sprintf("Invalid %s: %q", field, id))
		}
		out = append(out, oid)
	}
	return out, nil
}

func hexIDs(oids []primitive.ObjectID) []string {
	out := make([]string, 0, len(oids))
	for _, oid := range oids {
		out = append(out, oid.Hex())
	}
	return out
}

var (
	newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}
	oldestFirst = bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}
)
