package dto

import (
	"time"

	"github.com/yigit/greenleaf/internal/app/models"
)

// CreatePostRequest represents the body of a post creation request
type CreatePostRequest struct {
	Content     string  `json:"content" binding:"required"`
	CommunityID string  `json:"communityId" binding:"required"`
	ImageURL    *string `json:"imageUrl"`
}

// PostResponse is a post with its author and community resolved where available
type PostResponse struct {
	ID          string        `json:"id"`
	Content     string        `json:"content"`
	AuthorID    string        `json:"authorId"`
	Author      *UserSummary  `json:"author,omitempty"`
	CommunityID string        `json:"communityId"`
	Community   *CommunityRef `json:"community,omitempty"`
	ImageURL    *string       `json:"imageUrl,omitempty"`
	Likes       []string      `json:"likes"`
	ReplyIDs    []string      `json:"replyIds"`
	CreatedAt   time.Time     `json:"createdAt"`
}

// FeedResponse is the post feed across the caller's communities
type FeedResponse struct {
	Message string         `json:"message,omitempty"`
	Posts   []PostResponse `json:"posts"`
}

// LikeResponse is returned by both like toggles
type LikeResponse struct {
	Message string   `json:"message"`
	Liked   bool     `json:"liked"`
	Likes   []string `json:"likes"`
}

// NewPostResponse maps a post model; author and community may be nil.
func NewPostResponse(p *models.Post, author *models.User, community *models.Community) PostResponse {
	return PostResponse{
		ID:          p.ID,
		Content:     p.Content,
		AuthorID:    p.AuthorID,
		Author:      NewUserSummary(author, true),
		CommunityID: p.CommunityID,
		Community:   NewCommunityRef(community),
		ImageURL:    p.ImageURL,
		Likes:       nonNil(p.LikedBy),
		ReplyIDs:    nonNil(p.ReplyIDs),
		CreatedAt:   p.CreatedAt,
	}
}
