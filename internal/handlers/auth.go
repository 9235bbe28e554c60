package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"giglink/internal/models"
	"giglink/internal/utils"
)

type AuthHandler struct {
	DB        *gorm.DB
	JWTSecret string
	Expires   int
}

type RegisterReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"` // client / freelancer
}

type FieldErrors map[string][]string

func (e FieldErrors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

func validationFail(c *fiber.Ctx, errs FieldErrors) error {
	return c.Status(400).JSON(fiber.Map{
		"success": false,
		"message": "Validation error",
		"errors":  errs,
	})
}

func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     "gl_token",
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		Secure:   false,
		SameSite: "Lax",
		MaxAge:   h.Expires * 60,
	})
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"message": "invalid body",
		})
	}

	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	password := strings.TrimSpace(req.Password)
	role := models.Role(strings.ToLower(strings.TrimSpace(req.Role)))

	errors := FieldErrors{}

	if name == "" {
		errors.Add("name", "Name is required")
	}
	if email == "" {
		errors.Add("email", "Email is required")
	} else if !strings.Contains(email, "@") {
		errors.Add("email", "Invalid email format")
	}
	if password == "" {
		errors.Add("password", "Password is required")
	} else if len(password) < 6 {
		errors.Add("password", "Password must be at least 6 characters")
	}
	if !models.ValidRole(role) {
		errors.Add("role", "Role must be 'client' or 'freelancer'")
	}

	if len(errors) > 0 {
		return validationFail(c, errors)
	}

	var existing models.User
	if err := h.DB.Where("email = ?", email).First(&existing).Error; err == nil {
		return c.Status(409).JSON(fiber.Map{
			"success": false,
			"message": "User already exists",
		})
	} else if err != gorm.ErrRecordNotFound {
		return fail500(c, "Server error")
	}

	pw, err := utils.HashPassword(password)
	if err != nil {
		return fail500(c, "Failed to process password")
	}

	u := models.User{
		Name:     name,
		Email:    email,
		Password: pw,
		Role:     role,
		Provider: models.ProviderCredentials,
		IsActive: true,
	}

	if err := h.DB.Create(&u).Error; err != nil {
		if isUniqueViolation(err) {
			return c.Status(409).JSON(fiber.Map{
				"success": false,
				"message": "User already exists",
			})
		}
		return fail500(c, "Failed to register")
	}

	token, err := utils.SignJWT(h.JWTSecret, u.ID.String(), string(u.Role), h.Expires)
	if err != nil {
		return fail500(c, "Failed to create token")
	}
	h.setSessionCookie(c, token)

	return c.Status(201).JSON(fiber.Map{
		"success": true,
		"message": "Registered successfully",
		"data": fiber.Map{
			"user": fiber.Map{
				"id":       u.ID,
				"name":     u.Name,
				"email":    u.Email,
				"role":     u.Role,
				"provider": u.Provider,
			},
		},
	})
}

type LoginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"message": "invalid body",
		})
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	password := strings.TrimSpace(req.Password)

	errors := FieldErrors{}
	if email == "" {
		errors.Add("email", "Email is required")
	}
	if password == "" {
		errors.Add("password", "Password is required")
	}
	if len(errors) > 0 {
		return validationFail(c, errors)
	}

	var u models.User
	if err := h.DB.Where("email = ?", email).First(&u).Error; err != nil {
		return c.Status(401).JSON(fiber.Map{
			"success": false,
			"message": "Invalid credentials",
		})
	}

	if !u.IsActive {
		return c.Status(403).JSON(fiber.Map{
			"success": false,
			"message": "Account is inactive",
		})
	}

	if u.Provider != models.ProviderCredentials {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"message": "Use your social login for this account",
		})
	}

	if !utils.CheckPassword(u.Password, password) {
		return c.Status(401).JSON(fiber.Map{
			"success": false,
			"message": "Invalid credentials",
		})
	}

	token, err := utils.SignJWT(h.JWTSecret, u.ID.String(), string(u.Role), h.Expires)
	if err != nil {
		return fail500(c, "Failed to create token")
	}
	h.setSessionCookie(c, token)

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Logged in successfully",
		"data": fiber.Map{
			"user": fiber.Map{
				"id":    u.ID,
				"name":  u.Name,
				"email": u.Email,
				"role":  u.Role,
			},
		},
	})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     "gl_token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   false,
		SameSite: "Lax",
	})

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Logged out",
	})
}

// Me echoes the authenticated identity from the store, not the token,
// so a deleted account stops resolving immediately.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	uID, err := getAuth(c)
	if err != nil {
		return err
	}

	var u models.User
	if err := h.DB.First(&u, "id = ?", uID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{
			"success": false,
			"message": "User not found",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"id":       u.ID,
			"name":     u.Name,
			"email":    u.Email,
			"role":     u.Role,
			"provider": u.Provider,
		},
	})
}
