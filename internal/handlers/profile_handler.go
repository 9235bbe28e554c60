package handlers

import (
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"giglink/internal/cache"
	"giglink/internal/models"
)

const profileListCacheKey = "profiles:freelancers"

type ProfileHandler struct {
	DB  *gorm.DB
	RDB *redis.Client
}

func NewProfileHandler(db *gorm.DB, rdb *redis.Client) *ProfileHandler {
	return &ProfileHandler{DB: db, RDB: rdb}
}

type SaveProfileReq struct {
	Title      string          `json:"title"`
	Bio        string          `json:"bio"`
	Skills     json.RawMessage `json:"skills"` // list or comma-delimited string
	HourlyRate float64         `json:"hourly_rate"`
	Location   string          `json:"location"`
	Phone      string          `json:"phone"`
	Website    string          `json:"website"`
	AvatarURL  string          `json:"avatar_url"`
	Available  *bool           `json:"available"`
}

// normalizeSkills accepts either a JSON array or a comma-delimited string and
// returns an ordered list of trimmed, non-empty entries.
func normalizeSkills(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return []string{}
	}

	var parts []string
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		parts = list
	} else {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return []string{}
		}
		parts = strings.Split(s, ",")
	}

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

type ProfileResponse struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Title      string    `json:"title"`
	Bio        string    `json:"bio"`
	Skills     []string  `json:"skills"`
	HourlyRate float64   `json:"hourly_rate"`
	Location   string    `json:"location"`
	Phone      string    `json:"phone"`
	Website    string    `json:"website"`
	AvatarURL  string    `json:"avatar_url"`
	Available  bool      `json:"available"`
	UpdatedAt  time.Time `json:"updated_at"`

	User *UserMini `json:"user,omitempty"`
}

func toProfileResponse(p *models.Profile) ProfileResponse {
	resp := ProfileResponse{
		ID:         p.ID.String(),
		UserID:     p.UserID.String(),
		Title:      p.Title,
		Bio:        p.Bio,
		Skills:     append([]string{}, p.Skills...),
		HourlyRate: p.HourlyRate,
		Location:   p.Location,
		Phone:      p.Phone,
		Website:    p.Website,
		AvatarURL:  p.AvatarURL,
		Available:  p.Available,
		UpdatedAt:  p.UpdatedAt,
	}
	if p.User != nil {
		resp.User = &UserMini{
			ID:    p.User.ID.String(),
			Name:  p.User.Name,
			Email: p.User.Email,
			Role:  string(p.User.Role),
		}
	}
	return resp
}

// SaveMine creates or updates the caller's profile in one atomic statement:
// the upsert is keyed on user_id, so concurrent first saves cannot produce
// two rows.
func (h *ProfileHandler) SaveMine(c *fiber.Ctx) error {
	userID, err := getAuth(c)
	if err != nil {
		return err
	}

	var me models.User
	if err := h.DB.First(&me, "id = ?", userID).Error; err != nil ||
		me.Role != models.RoleFreelancer {
		return c.Status(403).JSON(fiber.Map{
			"success": false,
			"message": "Only freelancers can edit profile",
		})
	}

	var req SaveProfileReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	available := true
	if req.Available != nil {
		available = *req.Available
	}

	profile := models.Profile{
		UserID:     userID,
		Title:      strings.TrimSpace(req.Title),
		Bio:        strings.TrimSpace(req.Bio),
		Skills:     datatypes.NewJSONSlice(normalizeSkills(req.Skills)),
		HourlyRate: req.HourlyRate,
		Location:   strings.TrimSpace(req.Location),
		Phone:      strings.TrimSpace(req.Phone),
		Website:    strings.TrimSpace(req.Website),
		AvatarURL:  strings.TrimSpace(req.AvatarURL),
		Available:  available,
	}

	if err := h.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "bio", "skills", "hourly_rate", "location",
			"phone", "website", "avatar_url", "available", "updated_at",
		}),
	}).Create(&profile).Error; err != nil {
		log.Println("Error saving profile:", err)
		return fail500(c, "Failed to save profile")
	}

	// re-read into a fresh struct so the response carries the surviving row's
	// id and timestamps; reusing profile would pin its generated id in the WHERE
	var saved models.Profile
	if err := h.DB.First(&saved, "user_id = ?", userID).Error; err != nil {
		log.Println("Error reloading profile:", err)
		return fail500(c, "Failed to save profile")
	}

	cache.Invalidate(c.Context(), h.RDB, profileListCacheKey)

	return c.JSON(fiber.Map{
		"success": true,
		"data":    toProfileResponse(&saved),
	})
}

// GetMine returns the caller's profile, or null if none saved yet.
func (h *ProfileHandler) GetMine(c *fiber.Ctx) error {
	userID, err := getAuth(c)
	if err != nil {
		return err
	}

	var profile models.Profile
	if err := h.DB.First(&profile, "user_id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.JSON(fiber.Map{
				"success": true,
				"data":    nil,
			})
		}
		return fail500(c, "Failed to fetch profile")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    toProfileResponse(&profile),
	})
}

// GetByUser is the public profile page. Profiles whose owner no longer holds
// the freelancer role read as absent.
func (h *ProfileHandler) GetByUser(c *fiber.Ctx) error {
	userUUID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"message": "Invalid user ID",
		})
	}

	var profile models.Profile
	if err := h.DB.Preload("User").First(&profile, "user_id = ?", userUUID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{
			"success": false,
			"message": "Profile not found",
		})
	}
	if profile.User == nil || profile.User.Role != models.RoleFreelancer {
		return c.Status(404).JSON(fiber.Map{
			"success": false,
			"message": "Profile not found",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    toProfileResponse(&profile),
	})
}

// Search lists freelancer profiles, most recently updated first. A non-empty
// query keeps profiles with a case-insensitive substring match in any of:
// title, bio, joined skills, location, owner name, owner email. Stale
// profiles (owner gone or role changed) are filtered at read time.
func (h *ProfileHandler) Search(c *fiber.Ctx) error {
	query := strings.ToLower(strings.TrimSpace(c.Query("search")))

	var all []ProfileResponse
	found, err := cache.GetJSON(c.Context(), h.RDB, profileListCacheKey, &all)
	if err != nil {
		log.Println("Profile cache read error:", err)
	}
	if !found {
		var profiles []models.Profile
		if err := h.DB.
			Preload("User").
			Order("updated_at DESC").
			Find(&profiles).Error; err != nil {
			log.Println("Error fetching profiles:", err)
			return fail500(c, "Failed to fetch profiles")
		}

		all = make([]ProfileResponse, 0, len(profiles))
		for i := range profiles {
			p := &profiles[i]
			if p.User == nil || p.User.Role != models.RoleFreelancer {
				continue
			}
			all = append(all, toProfileResponse(p))
		}
		_ = cache.SetJSON(c.Context(), h.RDB, profileListCacheKey, all, 60*time.Second)
	}

	out := all
	if query != "" {
		out = make([]ProfileResponse, 0, len(all))
		for _, p := range all {
			fields := []string{
				p.Title, p.Bio, strings.Join(p.Skills, " "), p.Location,
			}
			if p.User != nil {
				fields = append(fields, p.User.Name, p.User.Email)
			}
			for _, f := range fields {
				if strings.Contains(strings.ToLower(f), query) {
					out = append(out, p)
					break
				}
			}
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    out,
	})
}
