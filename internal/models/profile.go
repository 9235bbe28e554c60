package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Profile is a freelancer's discoverable public listing, one per user,
// created lazily on first save.
type Profile struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`

	Title      string                       `gorm:"type:varchar(120)" json:"title"`
	Bio        string                       `gorm:"type:text" json:"bio"`
	Skills     datatypes.JSONSlice[string]  `json:"skills"`
	HourlyRate float64                      `json:"hourly_rate"`
	Location   string                       `gorm:"type:varchar(120)" json:"location"`
	Phone      string                       `gorm:"type:varchar(30)" json:"phone"`
	Website    string                       `gorm:"type:varchar(200)" json:"website"`
	AvatarURL  string                       `gorm:"type:text" json:"avatar_url"`
	Available  bool                         `gorm:"default:true" json:"available"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relation
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
