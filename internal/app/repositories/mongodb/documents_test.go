package mongodb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/yigit/greenleaf/internal/app/models"
	"github.com/yigit/greenleaf/internal/pkg/apperrors"
)

func TestObjectIDs(t *testing.T) {
	valid := primitive.NewObjectID()

	oid, ok := objectID(valid.Hex())
	assert.True(t, ok)
	assert.Equal(t, valid, oid)

	_, ok = objectID("not-an-id")
	assert.False(t, ok)

	assert.Equal(t, []primitive.ObjectID{valid}, objectIDs([]string{"bad", valid.Hex(), ""}))
	assert.Equal(t, []string{valid.Hex()}, hexIDs([]primitive.ObjectID{valid}))
}

func TestReferenceIDsRejectsInvalidHex(t *testing.T) {
	_, err := referenceIDs("likes", []string{primitive.NewObjectID().Hex(), "nope"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	oids, err := referenceIDs("likes", nil)
	require.NoError(t, err)
	assert.Empty(t, oids)
}

func TestUserDocumentRoundTrip(t *testing.T) {
	loc := "Kandy"
	created := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	user := &models.User{
		FullName:     "Nimal Perera",
		Email:        "nimal@example.com",
		Password:     "hash",
		ProfileImage: "https://img/default.png",
		Location:     &loc,
		RoleType:     models.RoleMember,
		CreatedAt:    created,
	}
	oid := primitive.NewObjectID()

	raw, err := bson.Marshal(newUserDocument(oid, user))
	require.NoError(t, err)

	var decoded userDocument
	require.NoError(t, bson.Unmarshal(raw, &decoded))
	got := decoded.toModel()

	assert.Equal(t, oid.Hex(), got.ID)
	assert.Equal(t, user.FullName, got.FullName)
	assert.Equal(t, "Kandy", *got.Location)
	assert.Nil(t, got.ContactNo)
	assert.Equal(t, models.RoleMember, got.RoleType)
	assert.True(t, created.Equal(got.CreatedAt))
}

func TestReplyDocumentStoresNullParent(t *testing.T) {
	doc := replyDocument{ID: primitive.NewObjectID(), Content: "top"}
	raw, err := bson.Marshal(doc)
	require.NoError(t, err)

	// the top-level query filters on parentReplyId: null, so the key must be present
	val, err := bson.Raw(raw).LookupErr("parentReplyId")
	require.NoError(t, err)
	assert.Equal(t, bson.TypeNull, val.Type)
	assert.Nil(t, doc.toModel().ParentReplyID)

	parent := primitive.NewObjectID()
	doc.ParentReplyID = &parent
	got := doc.toModel()
	require.NotNil(t, got.ParentReplyID)
	assert.Equal(t, parent.Hex(), *got.ParentReplyID)
}

func TestCommunityDocumentToModel(t *testing.T) {
	admin := primitive.NewObjectID()
	doc := communityDocument{
		ID:      primitive.NewObjectID(),
		Name:    "Tea Growers",
		Admin:   admin,
		Members: []primitive.ObjectID{admin},
	}
	got := doc.toModel()
	assert.Equal(t, admin.Hex(), got.AdminID)
	assert.Equal(t, []string{admin.Hex()}, got.MemberIDs)
	assert.Empty(t, got.PostIDs)
	assert.True(t, got.IsAdmin(admin.Hex()))
}
