package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/joho/godotenv"
	"github.com/yhafez/read-master-sub002/internal/cache"
	"github.com/yhafez/read-master-sub002/internal/handlers"
	"github.com/yhafez/read-master-sub002/internal/httpx"
	"github.com/yhafez/read-master-sub002/internal/middleware"
	"github.com/yhafez/read-master-sub002/internal/repository"
	"github.com/yhafez/read-master-sub002/internal/service"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName:   "ReadMaster Live Backend",
		BodyLimit: 1 * 1024 * 1024, // 1MB; session payloads are small JSON
	})

	// Middleware
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     os.Getenv("ALLOWED_ORIGINS"),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-RM-CSRF",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		AllowCredentials: true,
	}))

	// Initialize database connection
	db, err := repository.InitDB()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Initialize Redis cache
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if parsedDB, err := strconv.Atoi(dbStr); err == nil {
			redisDB = parsedDB
		}
	}

	redisCache := cache.NewRedisCache(redisAddr, redisPassword, redisDB)
	if err := redisCache.Ping(); err != nil {
		log.Printf("WARNING: Redis connection failed: %v. Running without cache.", err)
		redisCache = nil
	} else {
		log.Println("Redis cache connected successfully")
	}

	sessionCache := cache.NewSessionCache(redisCache)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	participantRepo := repository.NewParticipantRepository(db)
	messageRepo := repository.NewSessionMessageRepository(db)

	// Initialize services
	userService := service.NewUserService(userRepo)
	sessionService := service.NewSessionService(sessionRepo, participantRepo)
	messageService := service.NewMessageService(messageRepo, sessionRepo, participantRepo)
	syncService := service.NewSyncService(sessionRepo, participantRepo)

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService)
	sessionHandler := handlers.NewSessionHandler(sessionService, sessionCache)
	messageHandler := handlers.NewMessageHandler(messageService, sessionCache)
	syncHandler := handlers.NewSyncHandler(syncService, sessionCache)

	// Protected API routes
	api := app.Group("/api", middleware.OriginAllowed())
	protected := api.Group("/", middleware.AuthRequired(), middleware.CSRFRequired())

	protected.Get("/users/me", userHandler.GetCurrentUser)
	protected.Get("/users/:identifier", userHandler.GetUser)

	protected.Post("/sessions", sessionHandler.CreateSession)
	protected.Get("/sessions", sessionHandler.ListSessions)
	protected.Get("/sessions/:id", sessionHandler.GetSession)
	protected.Put("/sessions/:id", sessionHandler.UpdateSession)
	protected.Delete("/sessions/:id", sessionHandler.EndSession)
	protected.Post("/sessions/:id/join", sessionHandler.JoinSession)
	protected.Post("/sessions/:id/leave", sessionHandler.LeaveSession)
	protected.Get("/sessions/:id/participants", sessionHandler.GetParticipants)

	protected.Get("/sessions/:id/messages", messageHandler.GetMessages)
	protected.Post(
		"/sessions/:id/messages",
		limiter.New(limiter.Config{
			Max:        30,
			Expiration: time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				if uid, err := httpx.LocalUint(c, "userID"); err == nil {
					return "msg:" + strconv.FormatUint(uint64(uid), 10)
				}
				return c.IP()
			},
		}),
		messageHandler.SendMessage,
	)

	protected.Get("/sessions/:id/sync", syncHandler.GetSyncState)
	protected.Post("/sessions/:id/sync", syncHandler.UpdatePage)
	protected.Patch("/sessions/:id/participants/me", syncHandler.UpdateParticipantSync)

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"message": "ReadMaster Live is running",
		})
	})

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s...", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
