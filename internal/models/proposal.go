package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProposalStatus string

const (
	ProposalPending  ProposalStatus = "pending"
	ProposalAccepted ProposalStatus = "accepted"
	ProposalRejected ProposalStatus = "rejected"
)

// proposalTransitions is the full legality table: anything absent is denied.
// Accepted and rejected are terminal.
var proposalTransitions = map[ProposalStatus]map[ProposalStatus]bool{
	ProposalPending: {
		ProposalAccepted: true,
		ProposalRejected: true,
	},
}

func (s ProposalStatus) CanTransitionTo(next ProposalStatus) bool {
	return proposalTransitions[s][next]
}

// ValidProposalDecision reports whether s is a status a client may set.
func ValidProposalDecision(s ProposalStatus) bool {
	return s == ProposalAccepted || s == ProposalRejected
}

type Proposal struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	JobID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uniq_job_proposal" json:"job_id"`
	FreelancerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uniq_job_proposal" json:"freelancer_id"`

	CoverLetter      string  `gorm:"type:text;not null" json:"cover_letter"`
	ProposedPrice    float64 `gorm:"not null" json:"proposed_price"`
	DeliveryTimeDays int     `gorm:"not null" json:"delivery_time_days"`

	// One proposal per (job, freelancer) forever: the unique index above
	// covers every status, so a rejection does not free the slot.
	Status ProposalStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Job        *Job  `gorm:"foreignKey:JobID" json:"job,omitempty"`
	Freelancer *User `gorm:"foreignKey:FreelancerID" json:"freelancer,omitempty"`
}

func (p *Proposal) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
