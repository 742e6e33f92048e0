package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleStudent     UserRole = "student"
	RoleMaintenance UserRole = "maintenance"
	RoleAdmin       UserRole = "admin"
)

// Identity is the credential record behind a user account. Profile data
// lives in User; the two share the same id.
type Identity struct {
	ID           string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	Email        string    `json:"email" gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// User is the profile row shown throughout the app
type User struct {
	ID        string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	Username  string    `json:"username" gorm:"size:255;not null"`
	Email     string    `json:"email" gorm:"size:255;not null"`
	Role      UserRole  `json:"role" gorm:"type:varchar(20);not null;default:'student';check:role IN ('student','maintenance','admin')"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (Identity) TableName() string {
	return "identities"
}

func (User) TableName() string {
	return "users"
}

// BeforeCreate is a GORM hook that runs before creating an identity
func (i *Identity) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// BeforeCreate is a GORM hook that runs before creating a user
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = RoleStudent
	}
	return nil
}

// IsValidRole checks if the user role is valid
func (u *User) IsValidRole() bool {
	switch u.Role {
	case RoleStudent, RoleMaintenance, RoleAdmin:
		return true
	default:
		return false
	}
}

// IsStaff reports whether the user may triage hazards
func (u *User) IsStaff() bool {
	return u.Role == RoleMaintenance || u.Role == RoleAdmin
}

// IsAdmin checks if the user is an admin
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
