package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
	"github.com/joho/godotenv"

	"giglink/internal/config"
	"giglink/internal/db"
	"giglink/internal/handlers"
	"giglink/internal/middleware"
	"giglink/internal/models"
	"giglink/internal/realtime"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	gdb, err := db.Connect(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	if err := gdb.AutoMigrate(
		&models.User{},
		&models.Job{},
		&models.JobApplicant{},
		&models.Proposal{},
		&models.Invitation{},
		&models.Profile{},
	); err != nil {
		log.Fatal(err)
	}

	rdb := realtime.NewRedis(cfg.RedisAddr)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		// cache and event fanout are optional, the store is not
		log.Println("Redis unavailable, caching disabled:", err)
		rdb = nil
	}

	hub := realtime.NewHub()
	go hub.Run()

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendBaseURL,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders:    "Content-Length",
		AllowCredentials: true,
	}))

	authH := &handlers.AuthHandler{
		DB:        gdb,
		JWTSecret: cfg.JWTSecret,
		Expires:   cfg.JWTExpiresMin,
	}
	googleH := &handlers.GoogleOAuthHandler{
		DB:              gdb,
		JWTSecret:       cfg.JWTSecret,
		Expires:         cfg.JWTExpiresMin,
		GoogleClientID:  cfg.GoogleClientID,
		GoogleSecret:    cfg.GoogleSecret,
		GoogleRedirect:  cfg.GoogleRedirect,
		FrontendBaseURL: cfg.FrontendBaseURL,
	}
	jobH := handlers.NewJobHandler(gdb, rdb)
	proposalH := handlers.NewProposalHandler(gdb, hub)
	invitationH := handlers.NewInvitationHandler(gdb, hub)
	profileH := handlers.NewProfileHandler(gdb, rdb)
	eventsH := handlers.NewEventsHandler(hub, cfg.JWTSecret)

	api := app.Group("/api")

	// public
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})
	api.Post("/auth/register", authH.Register)
	api.Post("/auth/login", authH.Login)
	api.Post("/auth/logout", authH.Logout)
	api.Get("/auth/google/start", googleH.GoogleStart)
	api.Get("/auth/google/callback", googleH.GoogleCallback)
	api.Get("/jobs", jobH.List)
	api.Get("/freelancers", profileH.Search)
	api.Get("/freelancers/:userId", profileH.GetByUser)

	// protected (JWT cookie)
	protected := api.Group("/",
		middleware.JWTFromCookie(cfg.JWTSecret),
		middleware.AttachJWTLocals(),
	)

	protected.Get("/me", authH.Me)

	protected.Post("/jobs", middleware.RequireRoles("client"), jobH.Create)
	protected.Post("/jobs/:id/apply", middleware.RequireRoles("freelancer"), jobH.Apply)
	protected.Delete("/jobs/:id", jobH.Delete)
	protected.Get("/jobs/:id/proposals", proposalH.ListForJob)

	protected.Post("/proposals", middleware.RequireRoles("freelancer"), proposalH.Submit)
	protected.Get("/proposals/me", middleware.RequireRoles("freelancer"), proposalH.ListMine)
	protected.Patch("/proposals/:id/status", middleware.RequireRoles("client"), proposalH.SetStatus)

	protected.Post("/invitations", middleware.RequireRoles("client"), invitationH.Create)
	protected.Get("/invitations/me", middleware.RequireRoles("freelancer"), invitationH.Inbox)
	protected.Get("/invitations/sent", middleware.RequireRoles("client"), invitationH.Sent)
	protected.Patch("/invitations/:id/status", middleware.RequireRoles("freelancer"), invitationH.Respond)

	protected.Get("/profiles/me", profileH.GetMine)
	protected.Put("/profiles/me", middleware.RequireRoles("freelancer"), profileH.SaveMine)

	// WebSocket event push (token auth via query param)
	app.Get("/ws/events", websocket.New(eventsH.WebSocketHandler))

	log.Fatal(app.Listen(":" + cfg.AppPort))
}
