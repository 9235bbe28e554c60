package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"giglink/internal/models"
)

// setupTestDB creates an in-memory SQLite database, one per test so unique
// indexes and cascades are exercised against a clean schema.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Job{},
		&models.JobApplicant{},
		&models.Proposal{},
		&models.Invitation{},
		&models.Profile{},
	))

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})

	return db
}

// asUser stands in for the JWT middleware chain and pins the actor identity.
func asUser(id uuid.UUID) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("userId", id.String())
		return c.Next()
	}
}

func createUser(t *testing.T, db *gorm.DB, name string, role models.Role) models.User {
	t.Helper()
	u := models.User{
		Name:     name,
		Email:    strings.ToLower(name) + "@example.com",
		Password: "hashed",
		Role:     role,
		Provider: models.ProviderCredentials,
		IsActive: true,
	}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func createJob(t *testing.T, db *gorm.DB, owner models.User, title string) models.Job {
	t.Helper()
	job := models.Job{
		Title:       title,
		Description: "Build the thing",
		Budget:      500,
		Category:    "development",
		OwnerID:     owner.ID,
	}
	require.NoError(t, db.Create(&job).Error)
	return job
}

// uuidNew returns a fresh id that matches nothing in the store.
func uuidNew(t *testing.T) string {
	t.Helper()
	return uuid.New().String()
}

func doReq(t *testing.T, app *fiber.App, method, target string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, resp *http.Response) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	resp.Body.Close()
	return env
}

func decodeData(t *testing.T, resp *http.Response, dest any) envelope {
	t.Helper()
	env := decode(t, resp)
	if len(env.Data) > 0 && string(env.Data) != "null" {
		require.NoError(t, json.Unmarshal(env.Data, dest))
	}
	return env
}
