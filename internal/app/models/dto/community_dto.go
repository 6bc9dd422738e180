package dto

import (
	"time"

	"github.com/yigit/greenleaf/internal/app/models"
)

// CreateCommunityRequest represents the body of a community creation request
type CreateCommunityRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description" binding:"required"`
	ImageURL    *string `json:"imageUrl"`
}

// UpdateCommunityRequest applies only the fields that are present
type UpdateCommunityRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	ImageURL    *string `json:"imageUrl"`
}

// CommunityResponse is a community without resolved references
type CommunityResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ImageURL    *string   `json:"imageUrl,omitempty"`
	AdminID     string    `json:"adminId"`
	MemberIDs   []string  `json:"memberIds"`
	PostIDs     []string  `json:"postIds"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CommunityListResponse splits communities by the caller's membership
type CommunityListResponse struct {
	UserCommunities    []CommunityResponse `json:"userCommunities"`
	NonUserCommunities []CommunityResponse `json:"nonUserCommunities"`
}

// CommunityDetailResponse resolves the admin and every post of the community
type CommunityDetailResponse struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	ImageURL    *string        `json:"imageUrl,omitempty"`
	Admin       *UserSummary   `json:"admin"`
	MemberIDs   []string       `json:"memberIds"`
	Posts       []PostResponse `json:"posts"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// CommunityRef is the community name block embedded in posts and replies
type CommunityRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// MemberResponse is one non-admin member
type MemberResponse struct {
	ID           string `json:"id"`
	FullName     string `json:"fullName"`
	ProfileImage string `json:"profileImage"`
}

// NewCommunityResponse maps a community model.
func NewCommunityResponse(c *models.Community) CommunityResponse {
	return CommunityResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		ImageURL:    c.ImageURL,
		AdminID:     c.AdminID,
		MemberIDs:   nonNil(c.MemberIDs),
		PostIDs:     nonNil(c.PostIDs),
		CreatedAt:   c.CreatedAt,
	}
}

// NewCommunityRef returns nil for a missing community.
func NewCommunityRef(c *models.Community) *CommunityRef {
	if c == nil {
		return nil
	}
	return &CommunityRef{ID: c.ID, Name: c.Name}
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
