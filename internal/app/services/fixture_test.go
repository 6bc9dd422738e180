package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	appauth "github.com/yigit/greenleaf/internal/app/auth"
	"github.com/yigit/greenleaf/internal/app/models/dto"
	"github.com/yigit/greenleaf/internal/app/repositories"
	"github.com/yigit/greenleaf/internal/app/repositories/memory"
	"github.com/yigit/greenleaf/internal/pkg/auth"
)

const testDefaultImage = "https://img.test/default.png"

type fixture struct {
	ctx         context.Context
	repos       *repositories.Repositories
	jwt         *auth.JWTService
	auth        *AuthService
	users       UserService
	communities CommunityService
	posts       PostService
	replies     ReplyService
}

func newFixture(t *testing.T, enforceOwnerOnDelete bool) *fixture {
	t.Helper()
	log := zerolog.Nop()
	repos := memory.NewRepositories()
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: time.Hour,
		TokenIssuer:    "greenleaf-test",
	})
	authz := appauth.NewAuthorizationService(enforceOwnerOnDelete, log)

	return &fixture{
		ctx:         context.Background(),
		repos:       repos,
		jwt:         jwtService,
		auth:        NewAuthService(repos.UserRepository, jwtService, testDefaultImage, log),
		users:       NewUserService(repos.UserRepository, testDefaultImage, log),
		communities: NewCommunityService(repos, authz, log),
		posts:       NewPostService(repos, authz, log),
		replies:     NewReplyService(repos, authz, log),
	}
}

// register creates an account named name and returns its id
func (f *fixture) register(t *testing.T, name string) string {
	t.Helper()
	resp, err := f.auth.Register(f.ctx, &dto.RegisterRequest{
		FullName: name,
		Email:    name + "@example.com",
		Password: "secret1",
	})
	require.NoError(t, err)
	return resp.User.ID
}

func (f *fixture) community(t *testing.T, adminID, name string) string {
	t.Helper()
	resp, err := f.communities.CreateCommunity(f.ctx, adminID, &dto.CreateCommunityRequest{
		Name:        name,
		Description: "About " + name,
	})
	require.NoError(t, err)
	return resp.ID
}

func (f *fixture) post(t *testing.T, authorID, communityID, content string) string {
	t.Helper()
	resp, err := f.posts.CreatePost(f.ctx, authorID, &dto.CreatePostRequest{Content: content, CommunityID: communityID})
	require.NoError(t, err)
	return resp.ID
}

func (f *fixture) reply(t *testing.T, authorID, postID, communityID string, parentID *string, content string) string {
	t.Helper()
	resp, err := f.replies.CreateReply(f.ctx, authorID, &dto.CreateReplyRequest{
		Content:       content,
		PostID:        postID,
		CommunityID:   communityID,
		ParentReplyID: parentID,
	})
	require.NoError(t, err)
	return resp.ID
}
