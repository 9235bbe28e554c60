package handlers

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"giglink/internal/models"
	"giglink/internal/realtime"
)

func newInvitationApp(h *InvitationHandler, u models.User) *fiber.App {
	app := fiber.New()
	app.Post("/invitations", asUser(u.ID), h.Create)
	app.Get("/invitations/me", asUser(u.ID), h.Inbox)
	app.Get("/invitations/sent", asUser(u.ID), h.Sent)
	app.Patch("/invitations/:id/status", asUser(u.ID), h.Respond)
	return app
}

func TestCreateInvitation(t *testing.T) {
	db := setupTestDB(t)
	client := createUser(t, db, "Carol", models.RoleClient)
	stranger := createUser(t, db, "Oscar", models.RoleClient)
	freelancer := createUser(t, db, "Frank", models.RoleFreelancer)
	job := createJob(t, db, client, "Job")
	h := NewInvitationHandler(db, realtime.NewHub())

	body := fiber.Map{
		"job_id":        job.ID.String(),
		"freelancer_id": freelancer.ID.String(),
		"message":       "Interested?",
	}

	t.Run("valid", func(t *testing.T) {
		resp := doReq(t, newInvitationApp(h, client), "POST", "/invitations", body)
		require.Equal(t, 201, resp.StatusCode)

		var inv InvitationResponse
		decodeData(t, resp, &inv)
		assert.Equal(t, "pending", inv.Status)
		require.NotNil(t, inv.Job)
		assert.Equal(t, "Job", inv.Job.Title)
		require.NotNil(t, inv.Freelancer)
		assert.Equal(t, "Frank", inv.Freelancer.Name)
	})

	t.Run("pending duplicate conflicts", func(t *testing.T) {
		resp := doReq(t, newInvitationApp(h, client), "POST", "/invitations", body)
		assert.Equal(t, 409, resp.StatusCode)
	})

	t.Run("resolved invitation frees the slot", func(t *testing.T) {
		require.NoError(t, db.Model(&models.Invitation{}).
			Where("job_id = ? AND freelancer_id = ?", job.ID, freelancer.ID).
			Update("status", models.InvitationRejected).Error)

		resp := doReq(t, newInvitationApp(h, client), "POST", "/invitations", body)
		assert.Equal(t, 201, resp.StatusCode)
	})

	t.Run("self-invitation rejected regardless of roles", func(t *testing.T) {
		resp := doReq(t, newInvitationApp(h, client), "POST", "/invitations", fiber.Map{
			"job_id":        job.ID.String(),
			"freelancer_id": client.ID.String(),
		})
		assert.Equal(t, 400, resp.StatusCode)

		env := decode(t, resp)
		assert.Contains(t, env.Message, "yourself")
	})

	t.Run("only job owner invites", func(t *testing.T) {
		resp := doReq(t, newInvitationApp(h, stranger), "POST", "/invitations", body)
		assert.Equal(t, 403, resp.StatusCode)
	})

	t.Run("client target is not a valid freelancer", func(t *testing.T) {
		resp := doReq(t, newInvitationApp(h, client), "POST", "/invitations", fiber.Map{
			"job_id":        job.ID.String(),
			"freelancer_id": stranger.ID.String(),
		})
		assert.Equal(t, 400, resp.StatusCode)
	})

	t.Run("missing job", func(t *testing.T) {
		resp := doReq(t, newInvitationApp(h, client), "POST", "/invitations", fiber.Map{
			"job_id":        uuidNew(t),
			"freelancer_id": freelancer.ID.String(),
		})
		assert.Equal(t, 404, resp.StatusCode)
	})

	t.Run("missing ids", func(t *testing.T) {
		resp := doReq(t, newInvitationApp(h, client), "POST", "/invitations", fiber.Map{
			"message": "hi",
		})
		assert.Equal(t, 400, resp.StatusCode)
	})
}

func TestInvitationInboxAndSent(t *testing.T) {
	db := setupTestDB(t)
	client := createUser(t, db, "Carol", models.RoleClient)
	freelancer := createUser(t, db, "Frank", models.RoleFreelancer)
	other := createUser(t, db, "Fred", models.RoleFreelancer)
	job := createJob(t, db, client, "Job")
	h := NewInvitationHandler(db, realtime.NewHub())

	for _, f := range []models.User{freelancer, other} {
		require.NoError(t, db.Create(&models.Invitation{
			JobID: job.ID, ClientID: client.ID, FreelancerID: f.ID,
			Status: models.InvitationPending,
		}).Error)
	}

	t.Run("inbox holds only own invitations", func(t *testing.T) {
		resp := doReq(t, newInvitationApp(h, freelancer), "GET", "/invitations/me", nil)
		require.Equal(t, 200, resp.StatusCode)

		var list []InvitationResponse
		decodeData(t, resp, &list)
		require.Len(t, list, 1)
		assert.Equal(t, freelancer.ID.String(), list[0].FreelancerID)
		require.NotNil(t, list[0].Client)
		assert.Equal(t, "carol@example.com", list[0].Client.Email)
	})

	t.Run("sent holds every outgoing invitation", func(t *testing.T) {
		resp := doReq(t, newInvitationApp(h, client), "GET", "/invitations/sent", nil)
		require.Equal(t, 200, resp.StatusCode)

		var list []InvitationResponse
		decodeData(t, resp, &list)
		assert.Len(t, list, 2)
	})
}

func TestRespondToInvitation(t *testing.T) {
	db := setupTestDB(t)
	client := createUser(t, db, "Carol", models.RoleClient)
	freelancer := createUser(t, db, "Frank", models.RoleFreelancer)
	other := createUser(t, db, "Fred", models.RoleFreelancer)
	job := createJob(t, db, client, "Job")
	h := NewInvitationHandler(db, realtime.NewHub())

	invite := models.Invitation{
		JobID: job.ID, ClientID: client.ID, FreelancerID: freelancer.ID,
		Status: models.InvitationPending,
	}
	require.NoError(t, db.Create(&invite).Error)
	target := "/invitations/" + invite.ID.String() + "/status"

	t.Run("invalid status", func(t *testing.T) {
		resp := doReq(t, newInvitationApp(h, freelancer), "PATCH", target, fiber.Map{"status": "cancelled"})
		assert.Equal(t, 400, resp.StatusCode)
	})

	t.Run("only the addressed freelancer responds", func(t *testing.T) {
		resp := doReq(t, newInvitationApp(h, other), "PATCH", target, fiber.Map{"status": "accepted"})
		assert.Equal(t, 403, resp.StatusCode)
	})

	t.Run("accept", func(t *testing.T) {
		resp := doReq(t, newInvitationApp(h, freelancer), "PATCH", target, fiber.Map{"status": "accepted"})
		require.Equal(t, 200, resp.StatusCode)

		var inv InvitationResponse
		decodeData(t, resp, &inv)
		assert.Equal(t, "accepted", inv.Status)
	})

	t.Run("terminal status is sticky", func(t *testing.T) {
		resp := doReq(t, newInvitationApp(h, freelancer), "PATCH", target, fiber.Map{"status": "rejected"})
		assert.Equal(t, 409, resp.StatusCode)

		env := decode(t, resp)
		assert.Contains(t, env.Message, "already accepted")

		var stored models.Invitation
		require.NoError(t, db.First(&stored, "id = ?", invite.ID).Error)
		assert.Equal(t, models.InvitationAccepted, stored.Status)
	})

	t.Run("missing invitation", func(t *testing.T) {
		resp := doReq(t, newInvitationApp(h, freelancer), "PATCH",
			"/invitations/"+uuidNew(t)+"/status", fiber.Map{"status": "accepted"})
		assert.Equal(t, 404, resp.StatusCode)
	})
}
