package models

import (
	"time"

	"gorm.io/datatypes"
)

type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleTeacher UserRole = "TEACHER"
	RoleStudent UserRole = "STUDENT"
)

// IsValid reports whether r is one of the three known roles.
func (r UserRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return true
	}
	return false
}

type User struct {
	ID       uint     `json:"id" gorm:"primaryKey"`
	UserCode string   `json:"user_id" gorm:"uniqueIndex:uk_users_user_code;not null;size:12"`
	Name     string   `json:"name" gorm:"not null;size:100"`
	Email    string   `json:"email" gorm:"uniqueIndex:uk_users_email;not null;size:255"`
	Password string   `json:"-" gorm:"not null;size:100"`
	Role     UserRole `json:"role" gorm:"not null;size:20;index"`

	// Profile info
	BirthDate    *datatypes.Date `json:"birth_date,omitempty"`
	BirthCountry string          `json:"birth_country,omitempty" gorm:"size:100"`
	BirthCity    string          `json:"birth_city,omitempty" gorm:"size:100"`
	Address      string          `json:"address,omitempty" gorm:"size:255"`
	Gender       string          `json:"gender,omitempty" gorm:"size:20"`
	PhoneNumber  string          `json:"phone_number,omitempty" gorm:"size:30"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// HasRole reports whether the user carries any of the given roles.
func (u *User) HasRole(roles ...UserRole) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}
