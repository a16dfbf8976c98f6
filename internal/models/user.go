package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleTutor   UserRole = "tutor"
	RoleAdmin   UserRole = "admin"
)

// CanReview reports whether the role may review open answers.
func (r UserRole) CanReview() bool {
	return r == RoleTutor || r == RoleAdmin
}

// User is the aggregated identity view. The ID comes from the identity
// provider, so it is a string, not an auto-increment key.
type User struct {
	ID       string   `json:"id" gorm:"primaryKey;size:255"`
	FullName string   `json:"full_name" gorm:"not null;size:255" validate:"required,min=1,max=255"`
	Email    string   `json:"email" gorm:"uniqueIndex;not null;size:255" validate:"required,email"`
	Role     UserRole `json:"role" gorm:"not null;default:student;index" validate:"omitempty,user_role"`

	Preferences datatypes.JSON `json:"preferences,omitempty" gorm:"type:jsonb"`

	IsActive    bool       `json:"is_active" gorm:"default:true"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (User) TableName() string {
	return "users"
}
