package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InvitationStatus string

const (
	InvitationPending   InvitationStatus = "pending"
	InvitationAccepted  InvitationStatus = "accepted"
	InvitationRejected  InvitationStatus = "rejected"
	InvitationCancelled InvitationStatus = "cancelled"
)

// invitationTransitions: anything absent is denied. Accepted, rejected and
// cancelled are terminal. No endpoint sets cancelled; the status exists
// because the pending-uniqueness index keys off it.
var invitationTransitions = map[InvitationStatus]map[InvitationStatus]bool{
	InvitationPending: {
		InvitationAccepted:  true,
		InvitationRejected:  true,
		InvitationCancelled: true,
	},
}

func (s InvitationStatus) CanTransitionTo(next InvitationStatus) bool {
	return invitationTransitions[s][next]
}

// ValidInvitationResponse reports whether s is a status a freelancer may answer with.
func ValidInvitationResponse(s InvitationStatus) bool {
	return s == InvitationAccepted || s == InvitationRejected
}

type Invitation struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	JobID        uuid.UUID `gorm:"type:uuid;not null;index:uniq_pending_invite,unique,where:status = 'pending'" json:"job_id"`
	ClientID     uuid.UUID `gorm:"type:uuid;not null;index" json:"client_id"`
	FreelancerID uuid.UUID `gorm:"type:uuid;not null;index:uniq_pending_invite,unique" json:"freelancer_id"`

	Message string `gorm:"type:text" json:"message"`

	// Partial unique index above: at most one pending invitation per
	// (job, freelancer). Resolved invitations free the slot.
	Status InvitationStatus `gorm:"type:varchar(20);not null;default:'pending';index:uniq_pending_invite,unique" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Job        *Job  `gorm:"foreignKey:JobID" json:"job,omitempty"`
	Client     *User `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Freelancer *User `gorm:"foreignKey:FreelancerID" json:"freelancer,omitempty"`
}

func (i *Invitation) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
