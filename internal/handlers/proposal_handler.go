package handlers

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"giglink/internal/models"
	"giglink/internal/realtime"
)

type ProposalHandler struct {
	DB  *gorm.DB
	Hub *realtime.Hub
}

func NewProposalHandler(db *gorm.DB, hub *realtime.Hub) *ProposalHandler {
	return &ProposalHandler{DB: db, Hub: hub}
}

type SubmitProposalReq struct {
	JobID            string  `json:"job_id"`
	CoverLetter      string  `json:"cover_letter"`
	ProposedPrice    float64 `json:"proposed_price"`
	DeliveryTimeDays int     `json:"delivery_time_days"`
}

type JobMini struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type ProposalResponse struct {
	ID               string    `json:"id"`
	JobID            string    `json:"job_id"`
	FreelancerID     string    `json:"freelancer_id"`
	CoverLetter      string    `json:"cover_letter"`
	ProposedPrice    float64   `json:"proposed_price"`
	DeliveryTimeDays int       `json:"delivery_time_days"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`

	// Read-side enrichment. Contact blocks only appear once the proposal
	// is accepted; before that the fields are absent, not blank.
	Freelancer        *UserMini    `json:"freelancer,omitempty"`
	FreelancerContact *ContactInfo `json:"freelancer_contact,omitempty"`
	Job               *JobMini     `json:"job,omitempty"`
	Client            *UserMini    `json:"client,omitempty"`
	ClientContact     *ContactInfo `json:"client_contact,omitempty"`
}

func toProposalResponse(p *models.Proposal) ProposalResponse {
	return ProposalResponse{
		ID:               p.ID.String(),
		JobID:            p.JobID.String(),
		FreelancerID:     p.FreelancerID.String(),
		CoverLetter:      p.CoverLetter,
		ProposedPrice:    p.ProposedPrice,
		DeliveryTimeDays: p.DeliveryTimeDays,
		Status:           string(p.Status),
		CreatedAt:        p.CreatedAt,
	}
}

// freelancerPhones maps user id -> profile phone for the given freelancers.
// Clients have no profile, so their contact block carries email only.
func (h *ProposalHandler) freelancerPhones(ids []uuid.UUID) map[uuid.UUID]string {
	phones := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return phones
	}
	var profiles []models.Profile
	if err := h.DB.Where("user_id IN ?", ids).Find(&profiles).Error; err != nil {
		log.Println("Error fetching profiles for contact info:", err)
		return phones
	}
	for _, pr := range profiles {
		phones[pr.UserID] = pr.Phone
	}
	return phones
}

// Submit files a formal bid. One proposal per (job, freelancer) in any
// status, enforced by the store's unique index.
func (h *ProposalHandler) Submit(c *fiber.Ctx) error {
	freelancerID, err := getAuth(c)
	if err != nil {
		return err
	}

	var req SubmitProposalReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	jobUUID, err := uuid.Parse(strings.TrimSpace(req.JobID))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"message": "Invalid job ID",
		})
	}
	if strings.TrimSpace(req.CoverLetter) == "" {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"message": "Cover letter is required",
		})
	}
	if req.ProposedPrice < 0 {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"message": "Proposed price must not be negative",
		})
	}
	if req.DeliveryTimeDays < 1 {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"message": "Delivery time must be at least 1 day",
		})
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", freelancerID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{
			"success": false,
			"message": "User not found",
		})
	}
	if user.Role != models.RoleFreelancer {
		return c.Status(403).JSON(fiber.Map{
			"success": false,
			"message": "Only freelancers can send proposals",
		})
	}

	var job models.Job
	if err := h.DB.First(&job, "id = ?", jobUUID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{
			"success": false,
			"message": "Job not found",
		})
	}

	proposal := models.Proposal{
		JobID:            jobUUID,
		FreelancerID:     freelancerID,
		CoverLetter:      strings.TrimSpace(req.CoverLetter),
		ProposedPrice:    req.ProposedPrice,
		DeliveryTimeDays: req.DeliveryTimeDays,
		Status:           models.ProposalPending,
	}

	if err := h.DB.Create(&proposal).Error; err != nil {
		if isUniqueViolation(err) {
			return c.Status(409).JSON(fiber.Map{
				"success": false,
				"message": "Proposal already submitted",
			})
		}
		log.Println("Error creating proposal:", err)
		return fail500(c, "Failed to submit proposal")
	}

	resp := toProposalResponse(&proposal)
	resp.Freelancer = &UserMini{ID: user.ID.String(), Name: user.Name}

	h.Hub.SendToUser(job.OwnerID, fiber.Map{
		"type":     "proposal_created",
		"proposal": resp,
	})

	return c.Status(201).JSON(fiber.Map{
		"success": true,
		"message": "Proposal sent successfully",
		"data":    resp,
	})
}

// ListForJob returns every proposal on a job, owner only.
func (h *ProposalHandler) ListForJob(c *fiber.Ctx) error {
	requesterID, err := getAuth(c)
	if err != nil {
		return err
	}

	jobUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"message": "Invalid job ID",
		})
	}

	var job models.Job
	if err := h.DB.First(&job, "id = ?", jobUUID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{
			"success": false,
			"message": "Job not found",
		})
	}

	if job.OwnerID != requesterID {
		return c.Status(403).JSON(fiber.Map{
			"success": false,
			"message": "Not authorized to view proposals",
		})
	}

	var proposals []models.Proposal
	if err := h.DB.
		Preload("Freelancer").
		Where("job_id = ?", jobUUID).
		Order("created_at DESC").
		Find(&proposals).Error; err != nil {
		log.Println("Error fetching proposals:", err)
		return fail500(c, "Failed to fetch proposals")
	}

	var acceptedIDs []uuid.UUID
	for _, p := range proposals {
		if p.Status == models.ProposalAccepted {
			acceptedIDs = append(acceptedIDs, p.FreelancerID)
		}
	}
	phones := h.freelancerPhones(acceptedIDs)

	out := make([]ProposalResponse, 0, len(proposals))
	for i := range proposals {
		p := &proposals[i]
		resp := toProposalResponse(p)
		if p.Freelancer != nil {
			resp.Freelancer = &UserMini{
				ID:   p.Freelancer.ID.String(),
				Name: p.Freelancer.Name,
			}
			if p.Status == models.ProposalAccepted {
				resp.FreelancerContact = &ContactInfo{
					Email: p.Freelancer.Email,
					Phone: phones[p.FreelancerID],
				}
			}
		}
		out = append(out, resp)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    out,
	})
}

// ListMine returns the authenticated freelancer's proposals with job and
// client summaries attached.
func (h *ProposalHandler) ListMine(c *fiber.Ctx) error {
	freelancerID, err := getAuth(c)
	if err != nil {
		return err
	}

	var proposals []models.Proposal
	if err := h.DB.
		Preload("Job").
		Preload("Job.Owner").
		Where("freelancer_id = ?", freelancerID).
		Order("created_at DESC").
		Find(&proposals).Error; err != nil {
		log.Println("Error fetching proposals:", err)
		return fail500(c, "Failed to fetch proposals")
	}

	out := make([]ProposalResponse, 0, len(proposals))
	for i := range proposals {
		p := &proposals[i]
		resp := toProposalResponse(p)
		if p.Job != nil {
			resp.Job = &JobMini{
				ID:          p.Job.ID.String(),
				Title:       p.Job.Title,
				Description: p.Job.Description,
			}
			if p.Job.Owner != nil {
				resp.Client = &UserMini{
					ID:   p.Job.Owner.ID.String(),
					Name: p.Job.Owner.Name,
				}
				if p.Status == models.ProposalAccepted {
					resp.ClientContact = &ContactInfo{Email: p.Job.Owner.Email}
				}
			}
		}
		out = append(out, resp)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    out,
	})
}

type SetProposalStatusReq struct {
	Status string `json:"status"`
}

// SetStatus is the client's accept/reject decision. Only the job owner may
// decide, and only while the proposal is still pending: the update is a
// compare-and-swap on status, so two concurrent decisions cannot both win.
func (h *ProposalHandler) SetStatus(c *fiber.Ctx) error {
	requesterID, err := getAuth(c)
	if err != nil {
		return err
	}

	proposalUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"message": "Invalid proposal ID",
		})
	}

	var req SetProposalStatusReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	newStatus := models.ProposalStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	if !models.ValidProposalDecision(newStatus) {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"message": "Invalid status",
		})
	}

	var proposal models.Proposal
	if err := h.DB.First(&proposal, "id = ?", proposalUUID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{
			"success": false,
			"message": "Proposal not found",
		})
	}

	var job models.Job
	if err := h.DB.First(&job, "id = ?", proposal.JobID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{
			"success": false,
			"message": "Job not found",
		})
	}
	if job.OwnerID != requesterID {
		return c.Status(403).JSON(fiber.Map{
			"success": false,
			"message": "Only the job owner can decide on proposals",
		})
	}

	if !proposal.Status.CanTransitionTo(newStatus) {
		return c.Status(409).JSON(fiber.Map{
			"success": false,
			"message": fmt.Sprintf("Proposal already %s", proposal.Status),
		})
	}

	res := h.DB.Model(&models.Proposal{}).
		Where("id = ? AND status = ?", proposalUUID, models.ProposalPending).
		Update("status", newStatus)
	if res.Error != nil {
		log.Println("Error updating proposal status:", res.Error)
		return fail500(c, "Failed to update status")
	}
	if res.RowsAffected == 0 {
		// lost the race: someone decided first
		h.DB.First(&proposal, "id = ?", proposalUUID)
		return c.Status(409).JSON(fiber.Map{
			"success": false,
			"message": fmt.Sprintf("Proposal already %s", proposal.Status),
		})
	}

	proposal.Status = newStatus
	resp := toProposalResponse(&proposal)

	h.Hub.SendToPair(job.OwnerID, proposal.FreelancerID, fiber.Map{
		"type":     "proposal_status_update",
		"proposal": resp,
	})

	return c.JSON(fiber.Map{
		"success": true,
		"message": fmt.Sprintf("Proposal %s", newStatus),
		"data":    resp,
	})
}
