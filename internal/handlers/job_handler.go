package handlers

import (
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"giglink/internal/cache"
	"giglink/internal/models"
)

const jobListCacheKey = "jobs:all"

type JobHandler struct {
	DB  *gorm.DB
	RDB *redis.Client
}

func NewJobHandler(db *gorm.DB, rdb *redis.Client) *JobHandler {
	return &JobHandler{DB: db, RDB: rdb}
}

type CreateJobReq struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Budget      float64 `json:"budget"`
	Category    string  `json:"category"`
}

type JobResponse struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Budget       float64   `json:"budget"`
	Category     string    `json:"category"`
	OwnerID      string    `json:"owner_id"`
	ApplicantIDs []string  `json:"applicant_ids"`
	CreatedAt    time.Time `json:"created_at"`

	Owner *UserMini `json:"owner,omitempty"`
}

func toJobResponse(job *models.Job) JobResponse {
	resp := JobResponse{
		ID:           job.ID.String(),
		Title:        job.Title,
		Description:  job.Description,
		Budget:       job.Budget,
		Category:     job.Category,
		OwnerID:      job.OwnerID.String(),
		ApplicantIDs: make([]string, 0, len(job.Applicants)),
		CreatedAt:    job.CreatedAt,
	}
	for _, a := range job.Applicants {
		resp.ApplicantIDs = append(resp.ApplicantIDs, a.UserID.String())
	}
	if job.Owner != nil {
		resp.Owner = &UserMini{
			ID:    job.Owner.ID.String(),
			Name:  job.Owner.Name,
			Email: job.Owner.Email,
			Role:  string(job.Owner.Role),
		}
	}
	return resp
}

// Create posts a new job. Route is client-only; ownership is taken from the
// verified token, never from the body.
func (h *JobHandler) Create(c *fiber.Ctx) error {
	ownerID, err := getAuth(c)
	if err != nil {
		return err
	}

	var req CreateJobReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	title := strings.TrimSpace(req.Title)
	description := strings.TrimSpace(req.Description)
	category := strings.TrimSpace(req.Category)

	if title == "" || description == "" || category == "" {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"message": "All fields are required",
		})
	}
	if req.Budget <= 0 {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"message": "Budget must be a positive number",
		})
	}

	var owner models.User
	if err := h.DB.First(&owner, "id = ?", ownerID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{
			"success": false,
			"message": "User not found",
		})
	}
	if owner.Role != models.RoleClient {
		return c.Status(403).JSON(fiber.Map{
			"success": false,
			"message": "Only clients can post jobs",
		})
	}

	job := models.Job{
		Title:       title,
		Description: description,
		Budget:      req.Budget,
		Category:    category,
		OwnerID:     ownerID,
	}

	if err := h.DB.Create(&job).Error; err != nil {
		log.Println("Error creating job:", err)
		return fail500(c, "Failed to create job")
	}
	job.Owner = &owner

	cache.Invalidate(c.Context(), h.RDB, jobListCacheKey)

	return c.Status(201).JSON(fiber.Map{
		"success": true,
		"message": "Job created successfully",
		"data":    toJobResponse(&job),
	})
}

// List returns every job with its owner summary. Unrestricted read, served
// cache-aside from Redis.
func (h *JobHandler) List(c *fiber.Ctx) error {
	var out []JobResponse

	found, err := cache.GetJSON(c.Context(), h.RDB, jobListCacheKey, &out)
	if err != nil {
		log.Println("Job list cache read error:", err)
	}
	if !found {
		var jobs []models.Job
		if err := h.DB.
			Preload("Owner").
			Preload("Applicants").
			Order("created_at DESC").
			Find(&jobs).Error; err != nil {
			log.Println("Error fetching jobs:", err)
			return fail500(c, "Failed to fetch jobs")
		}

		out = make([]JobResponse, 0, len(jobs))
		for i := range jobs {
			out = append(out, toJobResponse(&jobs[i]))
		}
		_ = cache.SetJSON(c.Context(), h.RDB, jobListCacheKey, out, 60*time.Second)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    out,
	})
}

// Apply is the lightweight application path: one applicant row per
// (job, freelancer), enforced by the store's unique index.
func (h *JobHandler) Apply(c *fiber.Ctx) error {
	userID, err := getAuth(c)
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

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{
			"success": false,
			"message": "User not found",
		})
	}
	if user.Role != models.RoleFreelancer {
		return c.Status(403).JSON(fiber.Map{
			"success": false,
			"message": "Only freelancers can apply",
		})
	}

	var job models.Job
	if err := h.DB.First(&job, "id = ?", jobUUID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{
			"success": false,
			"message": "Job not found",
		})
	}

	applicant := models.JobApplicant{JobID: jobUUID, UserID: userID}
	if err := h.DB.Create(&applicant).Error; err != nil {
		if isUniqueViolation(err) {
			return c.Status(409).JSON(fiber.Map{
				"success": false,
				"message": "Already applied",
			})
		}
		log.Println("Error applying to job:", err)
		return fail500(c, "Failed to apply")
	}

	cache.Invalidate(c.Context(), h.RDB, jobListCacheKey)

	if err := h.DB.Preload("Owner").Preload("Applicants").
		First(&job, "id = ?", jobUUID).Error; err != nil {
		log.Println("Error reloading job:", err)
		return fail500(c, "Failed to apply")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Applied successfully",
		"data":    toJobResponse(&job),
	})
}

// Delete hard-deletes a job and everything hanging off it. Proposals,
// invitations and applicant rows go in the same transaction so no orphaned
// references survive.
func (h *JobHandler) Delete(c *fiber.Ctx) error {
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
			"message": "Not authorized",
		})
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("job_id = ?", jobUUID).Delete(&models.Proposal{}).Error; err != nil {
			return err
		}
		if err := tx.Where("job_id = ?", jobUUID).Delete(&models.Invitation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("job_id = ?", jobUUID).Delete(&models.JobApplicant{}).Error; err != nil {
			return err
		}
		return tx.Delete(&job).Error
	})
	if err != nil {
		log.Println("Error deleting job:", err)
		return fail500(c, "Failed to delete job")
	}

	cache.Invalidate(c.Context(), h.RDB, jobListCacheKey)

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Job deleted successfully",
	})
}
