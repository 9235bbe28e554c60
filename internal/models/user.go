package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleClient     Role = "client"
	RoleFreelancer Role = "freelancer"
)

type AuthProvider string

const (
	ProviderCredentials AuthProvider = "credentials"
	ProviderGoogle      AuthProvider = "google"
)

// ValidRole reports whether r is a role a user may sign up with.
func ValidRole(r Role) bool {
	return r == RoleClient || r == RoleFreelancer
}

type User struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name  string    `gorm:"not null" json:"name"`
	Email string    `gorm:"uniqueIndex;not null" json:"email"`

	Password string       `gorm:"not null" json:"-"`
	Role     Role         `gorm:"type:varchar(20);not null;index" json:"role"`
	Provider AuthProvider `gorm:"type:varchar(20);not null;default:'credentials'" json:"provider"`
	IsActive bool         `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
