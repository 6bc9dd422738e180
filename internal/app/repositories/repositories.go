package repositories

import (
	"context"

	"github.com/yigit/greenleaf/internal/app/models"
)

// UserRepository stores accounts. Lookups of unknown ids return apperrors.ErrUserNotFound.
type UserRepository interface {
	// Create assigns ID and CreatedAt. Duplicate email or full name return
	// apperrors.ErrEmailAlreadyExists / apperrors.ErrNameAlreadyExists.
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByFullName(ctx context.Context, fullName string) (*models.User, error)
	// GetByIDs returns the users that exist; missing ids are simply absent from the map.
	GetByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
}

// CommunityRepository stores communities. Lookups of unknown ids return apperrors.ErrCommunityNotFound.
type CommunityRepository interface {
	Create(ctx context.Context, community *models.Community) error
	GetByID(ctx context.Context, id string) (*models.Community, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*models.Community, error)
	// ListByMembership splits all communities by whether userID is in the member set.
	ListByMembership(ctx context.Context, userID string) (member, nonMember []*models.Community, err error)
	// UpdateDetails writes name, description and image url.
	UpdateDetails(ctx context.Context, community *models.Community) error
	Delete(ctx context.Context, id string) error
	AddMember(ctx context.Context, communityID, userID string) error
	RemoveMember(ctx context.Context, communityID, userID string) error
	// AppendPost adds postID to the post list. It reports false, with no error,
	// when the community does not exist.
	AppendPost(ctx context.Context, communityID, postID string) (bool, error)
}

// PostRepository stores posts. Lookups of unknown ids return apperrors.ErrPostNotFound.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	// ListByCommunities returns posts of any of the communities, newest first.
	ListByCommunities(ctx context.Context, communityIDs []string) ([]*models.Post, error)
	Delete(ctx context.Context, id string) error
	SetLikes(ctx context.Context, postID string, likes []string) error
	AppendReply(ctx context.Context, postID, replyID string) (bool, error)
	RemoveReply(ctx context.Context, postID, replyID string) error
}

// ReplyRepository stores replies. Lookups of unknown ids return apperrors.ErrReplyNotFound.
type ReplyRepository interface {
	Create(ctx context.Context, reply *models.Reply) error
	GetByID(ctx context.Context, id string) (*models.Reply, error)
	// ListTopLevel returns the replies of postID without a parent, oldest first.
	ListTopLevel(ctx context.Context, postID string) ([]*models.Reply, error)
	// ListChildren returns the replies whose parent is parentID, oldest first.
	ListChildren(ctx context.Context, parentID string) ([]*models.Reply, error)
	Delete(ctx context.Context, id string) error
	SetLikes(ctx context.Context, replyID string, likes []string) error
	AppendChild(ctx context.Context, parentID, childID string) (bool, error)
	RemoveChild(ctx context.Context, parentID, childID string) error
}

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository      UserRepository
	CommunityRepository CommunityRepository
	PostRepository      PostRepository
	ReplyRepository     ReplyRepository

	// Close releases the underlying connection, if any.
	Close func(ctx context.Context) error
}
