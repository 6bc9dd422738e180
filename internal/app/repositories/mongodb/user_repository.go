package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/yigit/greenleaf/internal/app/models"
	"github.com/yigit/greenleaf/internal/pkg/apperrors"
	"github.com/yigit/greenleaf/internal/pkg/dberrors"
)

// UserRepository stores users in the users collection.
type UserRepository struct {
	coll *mongo.Collection
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(usersCollection)}
}

// mapUserWriteError turns unique index violations into the matching domain errors.
func mapUserWriteError(err error) error {
	switch {
	case dberrors.IsDuplicateKeyIndexError(err, userEmailIndex):
		return apperrors.ErrEmailAlreadyExists
	case dberrors.IsDuplicateKeyIndexError(err, userFullNameIndex):
		return apperrors.ErrNameAlreadyExists
	}
	return err
}

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	oid := primitive.NewObjectID()
	if _, err := r.coll.InsertOne(ctx, newUserDocument(oid, user)); err != nil {
		if mapped := mapUserWriteError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	user.ID = oid.Hex()
	return nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return doc.toModel(), nil
}

// GetByID retrieves a user by id
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// GetByFullName retrieves a user by full name
func (r *UserRepository) GetByFullName(ctx context.Context, fullName string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"fullName": fullName})
}

// GetByIDs retrieves the existing users among ids
func (r *UserRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*models.User, error) {
	out := make(map[string]*models.User, len(ids))
	oids := objectIDs(ids)
	if len(oids) == 0 {
		return out, nil
	}
	cursor, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	for i := range docs {
		u := docs[i].toModel()
		out[u.ID] = u
	}
	return out, nil
}

// Update writes the profile fields of user
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	oid, ok := objectID(user.ID)
	if !ok {
		return apperrors.ErrUserNotFound
	}
	set := bson.M{
		"fullName":     user.FullName,
		"email":        user.Email,
		"password":     user.Password,
		"profileImage": user.ProfileImage,
		"location":     user.Location,
		"contactNo":    user.ContactNo,
	}
	res, err := r.coll.UpdateByID(ctx, oid, bson.M{"$set": set})
	if err != nil {
		if mapped := mapUserWriteError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// Delete removes a user
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	oid, ok := objectID(id)
	if !ok {
		return apperrors.ErrUserNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}
