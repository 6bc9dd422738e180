package models

import (
	"time"
)

// User is a registered account. FullName and Email are both unique.
type User struct {
	ID           string    `json:"id" db:"id"`
	FullName     string    `json:"fullName" db:"full_name"`
	Email        string    `json:"email" db:"email"`
	Password     string    `json:"-" db:"password"` // bcrypt hash
	ProfileImage string    `json:"profileImage" db:"profile_image"`
	Location     *string   `json:"location,omitempty" db:"location"`
	ContactNo    *string   `json:"contactNo,omitempty" db:"contact_no"`
	RoleType     RoleType  `json:"roleType" db:"role_type"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}
