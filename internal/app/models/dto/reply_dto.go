package dto

import (
	"time"

	"github.com/yigit/greenleaf/internal/app/models"
)

// CreateReplyRequest represents the body of a reply creation request
type CreateReplyRequest struct {
	Content       string  `json:"content" binding:"required"`
	PostID        string  `json:"postId" binding:"required"`
	CommunityID   string  `json:"communityId" binding:"required"`
	ParentReplyID *string `json:"parentReplyId"`
}

// PostRef identifies the post a reply belongs to and who wrote it
type PostRef struct {
	ID         string `json:"id"`
	AuthorID   string `json:"authorId"`
	AuthorName string `json:"authorName,omitempty"`
}

// ReplyResponse is a reply node. Replies holds the hydrated subtree and is
// only filled by the post reply-tree endpoint.
type ReplyResponse struct {
	ID            string           `json:"id"`
	Content       string           `json:"content"`
	AuthorID      string           `json:"authorId"`
	Author        *UserSummary     `json:"author,omitempty"`
	PostID        string           `json:"postId"`
	Post          *PostRef         `json:"post,omitempty"`
	CommunityID   string           `json:"communityId"`
	Community     *CommunityRef    `json:"community,omitempty"`
	ParentReplyID *string          `json:"parentReplyId"`
	ParentAuthor  *UserSummary     `json:"parentAuthor,omitempty"`
	Likes         []string         `json:"likes"`
	ReplyIDs      []string         `json:"replyIds"`
	Replies       []*ReplyResponse `json:"replies,omitempty"`
	CreatedAt     time.Time        `json:"createdAt"`
}

// NewReplyResponse maps a reply model without resolved references.
func NewReplyResponse(r *models.Reply) *ReplyResponse {
	return &ReplyResponse{
		ID:            r.ID,
		Content:       r.Content,
		AuthorID:      r.AuthorID,
		PostID:        r.PostID,
		CommunityID:   r.CommunityID,
		ParentReplyID: r.ParentReplyID,
		Likes:         nonNil(r.LikedBy),
		ReplyIDs:      nonNil(r.ReplyIDs),
		CreatedAt:     r.CreatedAt,
	}
}
