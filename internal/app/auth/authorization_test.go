package auth

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/yigit/greenleaf/internal/app/models"
	"github.com/yigit/greenleaf/internal/pkg/apperrors"
)

func TestValidateCommunityAdmin(t *testing.T) {
	s := NewAuthorizationService(false, zerolog.Nop())
	c := &models.Community{ID: "c1", AdminID: "ann", MemberIDs: []string{"ann", "bob"}}

	assert.NoError(t, s.ValidateCommunityAdmin(c, "ann"))
	assert.ErrorIs(t, s.ValidateCommunityAdmin(c, "bob"), apperrors.ErrPermissionDenied)
}

func TestValidateMemberRemoval(t *testing.T) {
	s := NewAuthorizationService(false, zerolog.Nop())
	c := &models.Community{ID: "c1", AdminID: "ann", MemberIDs: []string{"ann", "bob"}}

	assert.NoError(t, s.ValidateMemberRemoval(c, "ann", "bob"))
	assert.ErrorIs(t, s.ValidateMemberRemoval(c, "bob", "ann"), apperrors.ErrPermissionDenied)
	// the admin cannot remove themselves either
	assert.ErrorIs(t, s.ValidateMemberRemoval(c, "ann", "ann"), apperrors.ErrPermissionDenied)
}

func TestDeletePolicy(t *testing.T) {
	community := &models.Community{ID: "c1", AdminID: "ann"}
	post := &models.Post{ID: "p1", AuthorID: "ann"}
	reply := &models.Reply{ID: "r1", AuthorID: "ann"}

	t.Run("authenticated callers may delete by default", func(t *testing.T) {
		s := NewAuthorizationService(false, zerolog.Nop())
		assert.False(t, s.EnforcesOwnerOnDelete())
		assert.NoError(t, s.ValidateCommunityDeletion(community, "bob"))
		assert.NoError(t, s.ValidatePostDeletion(post, "bob"))
		assert.NoError(t, s.ValidateReplyDeletion(reply, "bob"))
	})

	t.Run("owner required when enforced", func(t *testing.T) {
		s := NewAuthorizationService(true, zerolog.Nop())
		assert.ErrorIs(t, s.ValidateCommunityDeletion(community, "bob"), apperrors.ErrPermissionDenied)
		assert.ErrorIs(t, s.ValidatePostDeletion(post, "bob"), apperrors.ErrPermissionDenied)
		assert.ErrorIs(t, s.ValidateReplyDeletion(reply, "bob"), apperrors.ErrPermissionDenied)

		assert.NoError(t, s.ValidateCommunityDeletion(community, "ann"))
		assert.NoError(t, s.ValidatePostDeletion(post, "ann"))
		assert.NoError(t, s.ValidateReplyDeletion(reply, "ann"))
	})
}
