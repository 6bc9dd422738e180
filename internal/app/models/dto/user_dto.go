package dto

import (
	"time"

	"github.com/yigit/greenleaf/internal/app/models"
)

// UserResponse is the public view of an account.
type UserResponse struct {
	ID           string    `json:"id"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	ProfileImage string    `json:"profileImage"`
	Location     *string   `json:"location,omitempty"`
	ContactNo    *string   `json:"contactNo,omitempty"`
	RoleType     string    `json:"roleType"`
	CreatedAt    time.Time `json:"createdAt"`
}

// UserSummary is the author block embedded in posts, replies and community details.
type UserSummary struct {
	ID           string `json:"id"`
	FullName     string `json:"fullName"`
	ProfileImage string `json:"profileImage,omitempty"`
	Email        string `json:"email,omitempty"`
}

// UpdateProfileRequest carries a partial profile update. Nil fields are left unchanged.
type UpdateProfileRequest struct {
	FullName     *string `json:"fullName" binding:"omitempty,notblank"`
	Email        *string `json:"email" binding:"omitempty,email"`
	Password     *string `json:"password" binding:"omitempty,min=6"`
	ProfileImage *string `json:"profileImage"`
	Location     *string `json:"location"`
	ContactNo    *string `json:"contactNo"`
}

// NewUserResponse maps a user model to its public view.
func NewUserResponse(user *models.User) UserResponse {
	return UserResponse{
		ID:           user.ID,
		FullName:     user.FullName,
		Email:        user.Email,
		ProfileImage: user.ProfileImage,
		Location:     user.Location,
		ContactNo:    user.ContactNo,
		RoleType:     string(user.RoleType),
		CreatedAt:    user.CreatedAt,
	}
}

// NewUserSummary returns nil for a missing (deleted) user.
func NewUserSummary(user *models.User, withEmail bool) *UserSummary {
	if user == nil {
		return nil
	}
	s := &UserSummary{
		ID:           user.ID,
		FullName:     user.FullName,
		ProfileImage: user.ProfileImage,
	}
	if withEmail {
		s.Email = user.Email
	}
	return s
}
