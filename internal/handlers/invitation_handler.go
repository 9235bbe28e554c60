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

type InvitationHandler struct {
	DB  *gorm.DB
	Hub *realtime.Hub
}

func NewInvitationHandler(db *gorm.DB, hub *realtime.Hub) *InvitationHandler {
	return &InvitationHandler{DB: db, Hub: hub}
}

type CreateInvitationReq struct {
	JobID        string `json:"job_id"`
	FreelancerID string `json:"freelancer_id"`
	Message      string `json:"message"`
}

type InvitationResponse struct {
	ID           string    `json:"id"`
	JobID        string    `json:"job_id"`
	ClientID     string    `json:"client_id"`
	FreelancerID string    `json:"freelancer_id"`
	Message      string    `json:"message"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`

	Job        *JobMini  `json:"job,omitempty"`
	Client     *UserMini `json:"client,omitempty"`
	Freelancer *UserMini `json:"freelancer,omitempty"`
}

func toInvitationResponse(inv *models.Invitation) InvitationResponse {
	resp := InvitationResponse{
		ID:           inv.ID.String(),
		JobID:        inv.JobID.String(),
		ClientID:     inv.ClientID.String(),
		FreelancerID: inv.FreelancerID.String(),
		Message:      inv.Message,
		Status:       string(inv.Status),
		CreatedAt:    inv.CreatedAt,
	}
	if inv.Job != nil {
		resp.Job = &JobMini{ID: inv.Job.ID.String(), Title: inv.Job.Title}
	}
	if inv.Client != nil {
		resp.Client = &UserMini{
			ID:    inv.Client.ID.String(),
			Name:  inv.Client.Name,
			Email: inv.Client.Email,
		}
	}
	if inv.Freelancer != nil {
		resp.Freelancer = &UserMini{
			ID:    inv.Freelancer.ID.String(),
			Name:  inv.Freelancer.Name,
			Email: inv.Freelancer.Email,
		}
	}
	return resp
}

// Create sends an invitation to a specific freelancer. Only the job owner may
// invite, never to themselves, and at most one pending invitation per
// (job, freelancer); the partial unique index decides races.
func (h *InvitationHandler) Create(c *fiber.Ctx) error {
	clientID, err := getAuth(c)
	if err != nil {
		return err
	}

	var req CreateInvitationReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	if strings.TrimSpace(req.JobID) == "" || strings.TrimSpace(req.FreelancerID) == "" {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"message": "job_id and freelancer_id are required",
		})
	}

	jobUUID, err := uuid.Parse(strings.TrimSpace(req.JobID))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"message": "Invalid job ID",
		})
	}
	freelancerUUID, err := uuid.Parse(strings.TrimSpace(req.FreelancerID))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"message": "Invalid freelancer ID",
		})
	}

	// self-invitations are malformed regardless of roles
	if freelancerUUID == clientID {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"message": "Cannot invite yourself",
		})
	}

	var job models.Job
	if err := h.DB.First(&job, "id = ?", jobUUID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{
			"success": false,
			"message": "Job not found",
		})
	}
	if job.OwnerID != clientID {
		return c.Status(403).JSON(fiber.Map{
			"success": false,
			"message": "Only job owner can invite",
		})
	}

	var freelancer models.User
	if err := h.DB.First(&freelancer, "id = ?", freelancerUUID).Error; err != nil ||
		freelancer.Role != models.RoleFreelancer {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"message": "Invalid freelancer",
		})
	}

	invite := models.Invitation{
		JobID:        jobUUID,
		ClientID:     clientID,
		FreelancerID: freelancerUUID,
		Message:      strings.TrimSpace(req.Message),
		Status:       models.InvitationPending,
	}

	if err := h.DB.Create(&invite).Error; err != nil {
		if isUniqueViolation(err) {
			return c.Status(409).JSON(fiber.Map{
				"success": false,
				"message": "Invite already pending for this freelancer",
			})
		}
		log.Println("Error creating invitation:", err)
		return fail500(c, "Failed to create invitation")
	}

	h.DB.Preload("Job").Preload("Client").Preload("Freelancer").
		First(&invite, "id = ?", invite.ID)
	resp := toInvitationResponse(&invite)

	h.Hub.SendToUser(freelancerUUID, fiber.Map{
		"type":       "invitation_created",
		"invitation": resp,
	})

	return c.Status(201).JSON(fiber.Map{
		"success": true,
		"data":    resp,
	})
}

// Inbox lists invitations addressed to the authenticated freelancer,
// newest first.
func (h *InvitationHandler) Inbox(c *fiber.Ctx) error {
	freelancerID, err := getAuth(c)
	if err != nil {
		return err
	}
	return h.list(c, "freelancer_id = ?", freelancerID)
}

// Sent lists invitations the authenticated client has issued, newest first.
func (h *InvitationHandler) Sent(c *fiber.Ctx) error {
	clientID, err := getAuth(c)
	if err != nil {
		return err
	}
	return h.list(c, "client_id = ?", clientID)
}

func (h *InvitationHandler) list(c *fiber.Ctx, query string, id uuid.UUID) error {
	var invites []models.Invitation
	if err := h.DB.
		Preload("Job").
		Preload("Client").
		Preload("Freelancer").
		Where(query, id).
		Order("created_at DESC").
		Find(&invites).Error; err != nil {
		log.Println("Error fetching invitations:", err)
		return fail500(c, "Failed to fetch invitations")
	}

	out := make([]InvitationResponse, 0, len(invites))
	for i := range invites {
		out = append(out, toInvitationResponse(&invites[i]))
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    out,
	})
}

type RespondInvitationReq struct {
	Status string `json:"status"`
}

// Respond is the addressed freelancer's accept/reject. Compare-and-swap on
// pending, same as proposal decisions.
func (h *InvitationHandler) Respond(c *fiber.Ctx) error {
	freelancerID, err := getAuth(c)
	if err != nil {
		return err
	}

	inviteUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"message": "Invalid invitation ID",
		})
	}

	var req RespondInvitationReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	newStatus := models.InvitationStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	if !models.ValidInvitationResponse(newStatus) {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"message": "Invalid status",
		})
	}

	var invite models.Invitation
	if err := h.DB.First(&invite, "id = ?", inviteUUID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{
			"success": false,
			"message": "Invitation not found",
		})
	}

	if invite.FreelancerID != freelancerID {
		return c.Status(403).JSON(fiber.Map{
			"success": false,
			"message": "Only the invited freelancer can respond",
		})
	}

	if !invite.Status.CanTransitionTo(newStatus) {
		return c.Status(409).JSON(fiber.Map{
			"success": false,
			"message": fmt.Sprintf("Invitation already %s", invite.Status),
		})
	}

	res := h.DB.Model(&models.Invitation{}).
		Where("id = ? AND status = ?", inviteUUID, models.InvitationPending).
		Update("status", newStatus)
	if res.Error != nil {
		log.Println("Error updating invitation status:", res.Error)
		return fail500(c, "Failed to update status")
	}
	if res.RowsAffected == 0 {
		h.DB.First(&invite, "id = ?", inviteUUID)
		return c.Status(409).JSON(fiber.Map{
			"success": false,
			"message": fmt.Sprintf("Invitation already %s", invite.Status),
		})
	}

	h.DB.Preload("Job").Preload("Client").Preload("Freelancer").
		First(&invite, "id = ?", inviteUUID)
	resp := toInvitationResponse(&invite)

	h.Hub.SendToUser(invite.ClientID, fiber.Map{
		"type":       "invitation_status_update",
		"invitation": resp,
	})

	return c.JSON(fiber.Map{
		"success": true,
		"data":    resp,
	})
}
