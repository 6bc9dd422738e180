package models

import "time"

// Post is a content item scoped to one community.
type Post struct {
	ID          string    `json:"id" db:"id"`
	Content     string    `json:"content" db:"content"`
	AuthorID    string    `json:"authorId" db:"author_id"`
	CommunityID string    `json:"communityId" db:"community_id"`
	ImageURL    *string   `json:"imageUrl,omitempty" db:"image_url"`
	LikedBy     []string  `json:"likes" db:"liked_by"`
	ReplyIDs    []string  `json:"replyIds" db:"reply_ids"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}
