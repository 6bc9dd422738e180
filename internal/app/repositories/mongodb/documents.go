package mongodb

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/yigit/greenleaf/internal/app/models"
)

type userDocument struct {
	ID           primitive.ObjectID `bson:"_id"`
	FullName     string             `bson:"fullName"`
	Email        string             `bson:"email"`
	Password     string             `bson:"password"`
	ProfileImage string             `bson:"profileImage"`
	Location     *string            `bson:"location,omitempty"`
	ContactNo    *string            `bson:"contactNo,omitempty"`
	RoleType     string             `bson:"roleType"`
	CreatedAt    time.Time          `bson:"createdAt"`
}

func (d *userDocument) toModel() *models.User {
	return &models.User{
		ID:           d.ID.Hex(),
		FullName:     d.FullName,
		Email:        d.Email,
		Password:     d.Password,
		ProfileImage: d.ProfileImage,
		Location:     d.Location,
		ContactNo:    d.ContactNo,
		RoleType:     models.RoleType(d.RoleType),
		CreatedAt:    d.CreatedAt,
	}
}

func newUserDocument(id primitive.ObjectID, u *models.User) *userDocument {
	return &userDocument{
		ID:           id,
		FullName:     u.FullName,
		Email:        u.Email,
		Password:     u.Password,
		ProfileImage: u.ProfileImage,
		Location:     u.Location,
		ContactNo:    u.ContactNo,
		RoleType:     string(u.RoleType),
		CreatedAt:    u.CreatedAt,
	}
}

type communityDocument struct {
	ID          primitive.ObjectID   `bson:"_id"`
	Name        string               `bson:"name"`
	Description string               `bson:"description"`
	ImageURL    *string              `bson:"imageUrl,omitempty"`
	Admin       primitive.ObjectID   `bson:"admin"`
	Members     []primitive.ObjectID `bson:"members"`
	Posts       []primitive.ObjectID `bson:"posts"`
	CreatedAt   time.Time            `bson:"createdAt"`
}

func (d *communityDocument) toModel() *models.Community {
	return &models.Community{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Description: d.Description,
		ImageURL:    d.ImageURL,
		AdminID:     d.Admin.Hex(),
		MemberIDs:   hexIDs(d.Members),
		PostIDs:     hexIDs(d.Posts),
		CreatedAt:   d.CreatedAt,
	}
}

type postDocument struct {
	ID          primitive.ObjectID   `bson:"_id"`
	Content     string               `bson:"content"`
	UserID      primitive.ObjectID   `bson:"userId"`
	CommunityID primitive.ObjectID   `bson:"communityId"`
	ImageURL    *string              `bson:"imageUrl,omitempty"`
	Likes       []primitive.ObjectID `bson:"likes"`
	Replies     []primitive.ObjectID `bson:"replies"`
	CreatedAt   time.Time            `bson:"createdAt"`
}

func (d *postDocument) toModel() *models.Post {
	return &models.Post{
		ID:          d.ID.Hex(),
		Content:     d.Content,
		AuthorID:    d.UserID.Hex(),
		CommunityID: d.CommunityID.Hex(),
		ImageURL:    d.ImageURL,
		LikedBy:     hexIDs(d.Likes),
		ReplyIDs:    hexIDs(d.Replies),
		CreatedAt:   d.CreatedAt,
	}
}

type replyDocument struct {
	ID            primitive.ObjectID   `bson:"_id"`
	Content       string               `bson:"content"`
	UserID        primitive.ObjectID   `bson:"userId"`
	PostID        primitive.ObjectID   `bson:"postId"`
	CommunityID   primitive.ObjectID   `bson:"communityId"`
	ParentReplyID *primitive.ObjectID  `bson:"parentReplyId"`
	Likes         []primitive.ObjectID `bson:"likes"`
	Replies       []primitive.ObjectID `bson:"replies"`
	CreatedAt     time.Time            `bson:"createdAt"`
}

func (d *replyDocument) toModel() *models.Reply {
	var parent *string
	if d.ParentReplyID != nil {
		hex := d.ParentReplyID.Hex()
		parent = &hex
	}
	return &models.Reply{
		ID:            d.ID.Hex(),
		Content:       d.Content,
		AuthorID:      d.UserID.Hex(),
		PostID:        d.PostID.Hex(),
		CommunityID:   d.CommunityID.Hex(),
		ParentReplyID: parent,
		LikedBy:       hexIDs(d.Likes),
		ReplyIDs:      hexIDs(d.Replies),
		CreatedAt:     d.CreatedAt,
	}
}
