package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Job struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Budget      float64   `gorm:"not null" json:"budget"`
	Category    string    `gorm:"type:varchar(80);not null;index" json:"category"`
	OwnerID     uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Owner      *User          `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Applicants []JobApplicant `gorm:"foreignKey:JobID" json:"applicants,omitempty"`
}

func (j *Job) BeforeCreate(tx *gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	return nil
}

// JobApplicant is one row per freelancer on the lightweight apply path.
// The composite unique index makes a duplicate apply fail at the store,
// so two concurrent applies can never both succeed.
type JobApplicant struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	JobID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uniq_job_applicant" json:"job_id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uniq_job_applicant" json:"user_id"`

	CreatedAt time.Time `json:"created_at"`
}

func (a *JobApplicant) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
