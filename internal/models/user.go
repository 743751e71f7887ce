package models

import "time"

// Roles a user can hold. Assigned at first login and immutable afterwards.
const (
	RoleTutor   = "TUTOR"
	RoleStudent = "STUDENT"
)

// User represents an authenticated account, either a tutor or a student.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:255;uniqueIndex;not null" json:"username"`
	Email     string    `gorm:"size:255" json:"email,omitempty"`
	Role      string    `gorm:"size:16;not null" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsTutor reports whether the user holds the tutor role.
func (u User) IsTutor() bool {
	return u.Role == RoleTutor
}

// IsStudent reports whether the user holds the student role.
func (u User) IsStudent() bool {
	return u.Role == RoleStudent
}

// ValidRole reports whether the given role is one of the known roles.
func ValidRole(role string) bool {
	return role == RoleTutor || role == RoleStudent
}
