package handlers

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"giglink/internal/models"
)

func TestCreateJob(t *testing.T) {
	db := setupTestDB(t)
	client := createUser(t, db, "Carol", models.RoleClient)
	freelancer := createUser(t, db, "Frank", models.RoleFreelancer)
	h := NewJobHandler(db, nil)

	newApp := func(u models.User) *fiber.App {
		app := fiber.New()
		app.Post("/jobs", asUser(u.ID), h.Create)
		return app
	}

	t.Run("valid", func(t *testing.T) {
		resp := doReq(t, newApp(client), "POST", "/jobs", fiber.Map{
			"title":       "Landing page",
			"description": "Three sections, responsive",
			"budget":      500,
			"category":    "web",
		})
		require.Equal(t, 201, resp.StatusCode)

		var job JobResponse
		env := decodeData(t, resp, &job)
		assert.True(t, env.Success)
		assert.Equal(t, client.ID.String(), job.OwnerID)
		assert.Equal(t, "Landing page", job.Title)
	})

	t.Run("missing fields", func(t *testing.T) {
		resp := doReq(t, newApp(client), "POST", "/jobs", fiber.Map{
			"title":  "No description",
			"budget": 100,
		})
		assert.Equal(t, 400, resp.StatusCode)
	})

	t.Run("non-positive budget", func(t *testing.T) {
		resp := doReq(t, newApp(client), "POST", "/jobs", fiber.Map{
			"title":       "Free work",
			"description": "d",
			"budget":      0,
			"category":    "web",
		})
		assert.Equal(t, 400, resp.StatusCode)
	})

	t.Run("freelancer cannot post", func(t *testing.T) {
		resp := doReq(t, newApp(freelancer), "POST", "/jobs", fiber.Map{
			"title":       "Job",
			"description": "d",
			"budget":      100,
			"category":    "web",
		})
		assert.Equal(t, 403, resp.StatusCode)
	})
}

func TestListJobs(t *testing.T) {
	db := setupTestDB(t)
	client := createUser(t, db, "Carol", models.RoleClient)
	createJob(t, db, client, "First job")
	createJob(t, db, client, "Second job")
	h := NewJobHandler(db, nil)

	app := fiber.New()
	app.Get("/jobs", h.List)

	resp := doReq(t, app, "GET", "/jobs", nil)
	require.Equal(t, 200, resp.StatusCode)

	var jobs []JobResponse
	decodeData(t, resp, &jobs)
	require.Len(t, jobs, 2)
	require.NotNil(t, jobs[0].Owner)
	assert.Equal(t, "Carol", jobs[0].Owner.Name)
	assert.Equal(t, "carol@example.com", jobs[0].Owner.Email)
	assert.Equal(t, "client", jobs[0].Owner.Role)
}

func TestApplyToJob(t *testing.T) {
	db := setupTestDB(t)
	client := createUser(t, db, "Carol", models.RoleClient)
	freelancer := createUser(t, db, "Frank", models.RoleFreelancer)
	job := createJob(t, db, client, "Job")
	h := NewJobHandler(db, nil)

	newApp := func(u models.User) *fiber.App {
		app := fiber.New()
		app.Post("/jobs/:id/apply", asUser(u.ID), h.Apply)
		return app
	}

	t.Run("success", func(t *testing.T) {
		resp := doReq(t, newApp(freelancer), "POST", "/jobs/"+job.ID.String()+"/apply", nil)
		require.Equal(t, 200, resp.StatusCode)

		var got JobResponse
		decodeData(t, resp, &got)
		assert.Contains(t, got.ApplicantIDs, freelancer.ID.String())
		assert.Equal(t, job.ID.String(), got.ID)
		require.NotNil(t, got.Owner)
		assert.Equal(t, "Carol", got.Owner.Name)
	})

	t.Run("duplicate apply conflicts", func(t *testing.T) {
		resp := doReq(t, newApp(freelancer), "POST", "/jobs/"+job.ID.String()+"/apply", nil)
		assert.Equal(t, 409, resp.StatusCode)

		var count int64
		db.Model(&models.JobApplicant{}).Where("job_id = ?", job.ID).Count(&count)
		assert.Equal(t, int64(1), count)
	})

	t.Run("client cannot apply", func(t *testing.T) {
		resp := doReq(t, newApp(client), "POST", "/jobs/"+job.ID.String()+"/apply", nil)
		assert.Equal(t, 403, resp.StatusCode)
	})

	t.Run("missing job", func(t *testing.T) {
		resp := doReq(t, newApp(freelancer), "POST", "/jobs/"+uuidNew(t)+"/apply", nil)
		assert.Equal(t, 404, resp.StatusCode)
	})
}

func TestDeleteJob(t *testing.T) {
	db := setupTestDB(t)
	client := createUser(t, db, "Carol", models.RoleClient)
	other := createUser(t, db, "Oscar", models.RoleClient)
	freelancer := createUser(t, db, "Frank", models.RoleFreelancer)
	job := createJob(t, db, client, "Doomed job")

	require.NoError(t, db.Create(&models.Proposal{
		JobID: job.ID, FreelancerID: freelancer.ID,
		CoverLetter: "hi", ProposedPrice: 100, DeliveryTimeDays: 3,
		Status: models.ProposalPending,
	}).Error)
	require.NoError(t, db.Create(&models.Invitation{
		JobID: job.ID, ClientID: client.ID, FreelancerID: freelancer.ID,
		Status: models.InvitationPending,
	}).Error)

	h := NewJobHandler(db, nil)
	newApp := func(u models.User) *fiber.App {
		app := fiber.New()
		app.Delete("/jobs/:id", asUser(u.ID), h.Delete)
		return app
	}

	t.Run("non-owner forbidden", func(t *testing.T) {
		resp := doReq(t, newApp(other), "DELETE", "/jobs/"+job.ID.String(), nil)
		assert.Equal(t, 403, resp.StatusCode)
	})

	t.Run("owner deletes with cascade", func(t *testing.T) {
		resp := doReq(t, newApp(client), "DELETE", "/jobs/"+job.ID.String(), nil)
		require.Equal(t, 200, resp.StatusCode)

		var jobs, proposals, invites int64
		db.Model(&models.Job{}).Count(&jobs)
		db.Model(&models.Proposal{}).Count(&proposals)
		db.Model(&models.Invitation{}).Count(&invites)
		assert.Zero(t, jobs)
		assert.Zero(t, proposals)
		assert.Zero(t, invites)
	})

	t.Run("missing job", func(t *testing.T) {
		resp := doReq(t, newApp(client), "DELETE", "/jobs/"+job.ID.String(), nil)
		assert.Equal(t, 404, resp.StatusCode)
	})
}
