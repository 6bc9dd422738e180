package services

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/greenleaf/internal/app/models/dto"
	"github.com/yigit/greenleaf/internal/pkg/apperrors"
)

// treeNode is the part of a reply tree the tests compare
type treeNode struct {
	Content      string
	Author       string
	ParentAuthor string
	Children     []treeNode
}

func shape(nodes []*dto.ReplyResponse) []treeNode {
	out := make([]treeNode, 0, len(nodes))
	for _, n := range nodes {
		node := treeNode{Content: n.Content, Children: shape(n.Replies)}
		if n.Author != nil {
			node.Author = n.Author.FullName
		}
		if n.ParentAuthor != nil {
			node.ParentAuthor = n.ParentAuthor.FullName
		}
		out = append(out, node)
	}
	return out
}

func TestReplyTree(t *testing.T) {
	f := newFixture(t, false)
	ann := f.register(t, "Ann")
	bob := f.register(t, "Bob")
	cat := f.register(t, "Cat")
	communityID := f.community(t, ann, "Tea Growers")
	postID := f.post(t, ann, communityID, "Blister blight?")

	q1 := f.reply(t, bob, postID, communityID, nil, "q1")
	q1a := f.reply(t, ann, postID, communityID, &q1, "q1a")
	f.reply(t, cat, postID, communityID, &q1a, "q1a-i")
	f.reply(t, cat, postID, communityID, &q1, "q1b")
	f.reply(t, cat, postID, communityID, nil, "q2")

	tree, err := f.replies.ListRepliesForPost(f.ctx, postID)
	require.NoError(t, err)

	want := []treeNode{
		{Content: "q1", Author: "Bob", Children: []treeNode{
			{Content: "q1a", Author: "Ann", ParentAuthor: "Bob", Children: []treeNode{
				{Content: "q1a-i", Author: "Cat", ParentAuthor: "Ann", Children: []treeNode{}},
			}},
			{Content: "q1b", Author: "Cat", ParentAuthor: "Bob", Children: []treeNode{}},
		}},
		{Content: "q2", Author: "Cat", Children: []treeNode{}},
	}
	if diff := cmp.Diff(want, shape(tree)); diff != "" {
		t.Errorf("reply tree mismatch (-want +got):\n%s", diff)
	}

	// top-level nodes carry the post reference, nested ones do not
	require.NotNil(t, tree[0].Post)
	assert.Equal(t, postID, tree[0].Post.ID)
	assert.Equal(t, "Ann", tree[0].Post.AuthorName)
	assert.Nil(t, tree[0].Replies[0].Post)
	assert.Equal(t, "Tea Growers", tree[0].Replies[0].Community.Name)

	// back references
	post, err := f.repos.PostRepository.GetByID(f.ctx, postID)
	require.NoError(t, err)
	assert.Len(t, post.ReplyIDs, 2)
	parent, err := f.repos.ReplyRepository.GetByID(f.ctx, q1)
	require.NoError(t, err)
	assert.Len(t, parent.ReplyIDs, 2)
}

func TestReplyTreeDeepThread(t *testing.T) {
	f := newFixture(t, false)
	ann := f.register(t, "Ann")
	communityID := f.community(t, ann, "Tea Growers")
	postID := f.post(t, ann, communityID, "deep")

	var parent *string
	for i := 0; i < 200; i++ {
		id := f.reply(t, ann, postID, communityID, parent, "level")
		parent = &id
	}

	tree, err := f.replies.ListRepliesForPost(f.ctx, postID)
	require.NoError(t, err)
	depth := 0
	for nodes := tree; len(nodes) > 0; nodes = nodes[0].Replies {
		depth++
	}
	assert.Equal(t, 200, depth)
}

func TestReplyTreeForMissingPostIsEmpty(t *testing.T) {
	f := newFixture(t, false)
	tree, err := f.replies.ListRepliesForPost(f.ctx, "missing")
	require.NoError(t, err)
	assert.NotNil(t, tree)
	assert.Empty(t, tree)
}

func TestCreateReplyValidation(t *testing.T) {
	f := newFixture(t, false)
	ann := f.register(t, "Ann")
	communityID := f.community(t, ann, "Tea Growers")
	postID := f.post(t, ann, communityID, "Hello")

	_, err := f.replies.CreateReply(f.ctx, ann, &dto.CreateReplyRequest{Content: "", PostID: postID, CommunityID: communityID})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = f.replies.CreateReply(f.ctx, ann, &dto.CreateReplyRequest{Content: "hi", PostID: "missing", CommunityID: communityID})
	assert.ErrorIs(t, err, apperrors.ErrPostNotFound)
}

func TestCreateReplyWithMissingParentSkipsAppend(t *testing.T) {
	f := newFixture(t, false)
	ann := f.register(t, "Ann")
	communityID := f.community(t, ann, "Tea Growers")
	postID := f.post(t, ann, communityID, "Hello")

	ghost := "ghost"
	id := f.reply(t, ann, postID, communityID, &ghost, "orphan")

	stored, err := f.repos.ReplyRepository.GetByID(f.ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "ghost", *stored.ParentReplyID)

	post, err := f.repos.PostRepository.GetByID(f.ctx, postID)
	require.NoError(t, err)
	assert.Empty(t, post.ReplyIDs)
}

func TestDeleteReplyOrphansChildren(t *testing.T) {
	f := newFixture(t, false)
	ann := f.register(t, "Ann")
	communityID := f.community(t, ann, "Tea Growers")
	postID := f.post(t, ann, communityID, "Hello")

	top := f.reply(t, ann, postID, communityID, nil, "top")
	nested := f.reply(t, ann, postID, communityID, &top, "nested")

	require.NoError(t, f.replies.DeleteReply(f.ctx, top, ann))

	tree, err := f.replies.ListRepliesForPost(f.ctx, postID)
	require.NoError(t, err)
	assert.Empty(t, tree)

	got, err := f.replies.GetReply(f.ctx, nested)
	require.NoError(t, err)
	assert.Equal(t, "nested", got.Content)

	post, err := f.repos.PostRepository.GetByID(f.ctx, postID)
	require.NoError(t, err)
	assert.Empty(t, post.ReplyIDs)

	_, err = f.replies.GetReply(f.ctx, top)
	assert.ErrorIs(t, err, apperrors.ErrReplyNotFound)
	assert.ErrorIs(t, f.replies.DeleteReply(f.ctx, top, ann), apperrors.ErrReplyNotFound)
}

func TestDeleteNestedReplyPullsFromParent(t *testing.T) {
	f := newFixture(t, false)
	ann := f.register(t, "Ann")
	communityID := f.community(t, ann, "Tea Growers")
	postID := f.post(t, ann, communityID, "Hello")
	top := f.reply(t, ann, postID, communityID, nil, "top")
	nested := f.reply(t, ann, postID, communityID, &top, "nested")

	require.NoError(t, f.replies.DeleteReply(f.ctx, nested, ann))

	parent, err := f.repos.ReplyRepository.GetByID(f.ctx, top)
	require.NoError(t, err)
	assert.Empty(t, parent.ReplyIDs)
	post, err := f.repos.PostRepository.GetByID(f.ctx, postID)
	require.NoError(t, err)
	assert.Equal(t, []string{top}, post.ReplyIDs)
}

func TestDeleteReplyPolicyEnforced(t *testing.T) {
	f := newFixture(t, true)
	ann := f.register(t, "Ann")
	bob := f.register(t, "Bob")
	communityID := f.community(t, ann, "Tea Growers")
	postID := f.post(t, ann, communityID, "Hello")
	id := f.reply(t, ann, postID, communityID, nil, "mine")

	assert.ErrorIs(t, f.replies.DeleteReply(f.ctx, id, bob), apperrors.ErrPermissionDenied)
	assert.NoError(t, f.replies.DeleteReply(f.ctx, id, ann))
}

func TestGetReply(t *testing.T) {
	f := newFixture(t, false)
	ann := f.register(t, "Ann")
	bob := f.register(t, "Bob")
	communityID := f.community(t, ann, "Tea Growers")
	postID := f.post(t, ann, communityID, "Hello")
	id := f.reply(t, bob, postID, communityID, nil, "hi")

	got, err := f.replies.GetReply(f.ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Bob", got.Author.FullName)
	assert.Equal(t, "Tea Growers", got.Community.Name)
	require.NotNil(t, got.Post)
	assert.Equal(t, postID, got.Post.ID)
	assert.Equal(t, "Ann", got.Post.AuthorName)
	assert.Nil(t, got.ParentReplyID)
}

func TestToggleReplyLike(t *testing.T) {
	f := newFixture(t, false)
	ann := f.register(t, "Ann")
	communityID := f.community(t, ann, "Tea Growers")
	postID := f.post(t, ann, communityID, "Hello")
	id := f.reply(t, ann, postID, communityID, nil, "hi")

	liked, err := f.replies.ToggleLike(f.ctx, id, ann)
	require.NoError(t, err)
	assert.Equal(t, MsgReplyLiked, liked.Message)
	assert.Equal(t, []string{ann}, liked.Likes)

	unliked, err := f.replies.ToggleLike(f.ctx, id, ann)
	require.NoError(t, err)
	assert.Equal(t, MsgReplyUnliked, unliked.Message)
	assert.Empty(t, unliked.Likes)
}

// register, login, community, post, join, reply, then read the tree back
func TestCommunityWalkthrough(t *testing.T) {
	f := newFixture(t, false)

	reg, err := f.auth.Register(f.ctx, &dto.RegisterRequest{FullName: "Ann", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)
	login, err := f.auth.Login(f.ctx, &dto.LoginRequest{Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)
	ann := login.User.ID
	assert.Equal(t, reg.User.ID, ann)

	community, err := f.communities.CreateCommunity(f.ctx, ann, &dto.CreateCommunityRequest{Name: "Tea Growers", Description: "For tea farmers"})
	require.NoError(t, err)
	assert.Equal(t, ann, community.AdminID)
	assert.Equal(t, []string{ann}, community.MemberIDs)

	postID := f.post(t, ann, community.ID, "Hello")
	stored, err := f.repos.CommunityRepository.GetByID(f.ctx, community.ID)
	require.NoError(t, err)
	assert.Len(t, stored.PostIDs, 1)

	bob := f.register(t, "Bob")
	require.NoError(t, f.communities.JoinCommunity(f.ctx, community.ID, bob))
	f.reply(t, bob, postID, community.ID, nil, "Welcome")

	tree, err := f.replies.ListRepliesForPost(f.ctx, postID)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Equal(t, bob, tree[0].AuthorID)
	assert.Equal(t, "Bob", tree[0].Author.FullName)

	_, err = f.communities.UpdateCommunity(f.ctx, community.ID, bob, &dto.UpdateCommunityRequest{Name: strPtr("Mine")})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}
