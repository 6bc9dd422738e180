package models

import "time"

// Reply is a comment on a post. ParentReplyID is nil for top-level replies.
type Reply struct {
	ID            string    `json:"id" db:"id"`
	Content       string    `json:"content" db:"content"`
	AuthorID      string    `json:"authorId" db:"author_id"`
	PostID        string    `json:"postId" db:"post_id"`
	CommunityID   string    `json:"communityId" db:"community_id"`
	ParentReplyID *string   `json:"parentReplyId" db:"parent_reply_id"`
	LikedBy       []string  `json:"likes" db:"liked_by"`
	ReplyIDs      []string  `json:"replyIds" db:"reply_ids"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
}

// IsTopLevel reports whether the reply hangs directly off its post.
func (r *Reply) IsTopLevel() bool {
	return r.ParentReplyID == nil
}
