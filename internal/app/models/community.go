package models

import "time"

// Community is a named group with one admin. The admin is added to MemberIDs at creation.
type Community struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	ImageURL    *string   `json:"imageUrl,omitempty" db:"image_url"`
	AdminID     string    `json:"adminId" db:"admin_id"`
	MemberIDs   []string  `json:"memberIds" db:"member_ids"`
	PostIDs     []string  `json:"postIds" db:"post_ids"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// IsAdmin reports whether userID owns the community.
func (c *Community) IsAdmin(userID string) bool {
	return c.AdminID == userID
}

// HasMember reports whether userID is in the member set.
func (c *Community) HasMember(userID string) bool {
	return ContainsID(c.MemberIDs, userID)
}
