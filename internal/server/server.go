package server

import (
	"log"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"kultura.id/engagehub/internal/config"
	"kultura.id/engagehub/internal/handler"
	"kultura.id/engagehub/internal/middleware"
	"kultura.id/engagehub/internal/repository"
	"kultura.id/engagehub/internal/service"
	"kultura.id/engagehub/pkg/storage"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
}

func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	userRepo := repository.NewUserRepository(db)
	circleRepo := repository.NewCircleRepository(db)
	challengeRepo := repository.NewChallengeRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	pointsRepo := repository.NewPointsRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	proofStorage, err := storage.NewCloudinaryStorage()
	if err != nil {
		log.Fatalf("failed to initialize cloudinary storage: %v", err)
	}

	meiliHost := cfg.MeiliSearchHost
	if !strings.HasPrefix(meiliHost, "http") {
		meiliHost = "http://" + meiliHost + ":7700"
	}
	meiliClient := meilisearch.New(meiliHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
	searchSvc := service.NewSearchService(meiliClient)

	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTTTL)
	authHandler := handler.NewAuthHandler(authSvc)

	adminSvc := service.NewAdminService(userRepo)
	adminHandler := handler.NewAdminHandler(adminSvc)

	membershipSvc := service.NewMembershipService(circleRepo, userRepo)
	circleHandler := handler.NewCircleHandler(membershipSvc)

	challengeSvc := service.NewChallengeService(challengeRepo, circleRepo, searchSvc)
	challengeHandler := handler.NewChallengeHandler(challengeSvc)

	notificationSvc := service.NewNotificationService(notificationRepo, redisClient)
	notificationHandler := handler.NewNotificationHandler(notificationSvc, redisClient)

	reviewSvc := service.NewReviewService(submissionRepo, notificationSvc, proofStorage, redisClient, cfg.RateLimitSubmit)
	submissionHandler := handler.NewSubmissionHandler(reviewSvc)

	pointsSvc := service.NewPointsService(pointsRepo)
	leaderboardHandler := handler.NewLeaderboardHandler(pointsSvc)

	uploadHandler := handler.NewUploadHandler(proofStorage, cfg.CloudinaryUploadFolder)

	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	authMiddleware := middleware.NewAuthMiddleware(userRepo, cfg.JWTSecret)

	api := router.Group("/api")

	// Public routes (no auth required)
	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
	}

	// Protected routes
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		// Admin routes
		adminGroup := protected.Group("/admin")
		adminGroup.Use(authMiddleware.RequireRole("admin"))
		{
			adminGroup.POST("/tenants", adminHandler.CreateTenant)
			adminGroup.POST("/users", adminHandler.CreateUser)
		}

		// Circle routes
		protected.POST("/circles", circleHandler.CreateCircle)
		protected.GET("/circles", circleHandler.ListCircles)
		protected.POST("/circles/:circle_id/join", circleHandler.JoinCircle)
		protected.GET("/circles/:circle_id/members", circleHandler.ListMembers)
		protected.GET("/circles/:circle_id/challenges", challengeHandler.ListByCircle)
		protected.DELETE("/participations/:participation_id", circleHandler.LeaveCircle)

		// Challenge routes
		protected.POST("/challenges", challengeHandler.CreateChallenge)
		protected.GET("/challenges/search", challengeHandler.SearchChallenges)
		protected.GET("/challenges/:challenge_id", challengeHandler.GetChallenge)
		protected.DELETE("/challenges/:challenge_id", challengeHandler.DeleteChallenge)
		protected.POST("/challenges/:challenge_id/join", challengeHandler.JoinChallenge)
		protected.GET("/challenges/:challenge_id/status", challengeHandler.GetStatus)
		protected.GET("/participations/me", challengeHandler.ListMyParticipations)

		// Submission routes
		protected.POST("/submissions", submissionHandler.Submit)
		protected.GET("/submissions/:submission_id", submissionHandler.GetSubmission)
		protected.DELETE("/submissions/:submission_id", submissionHandler.Withdraw)
		protected.POST("/upload", uploadHandler.UploadProof)

		// Review routes (moderators and admins only)
		reviewGroup := protected.Group("/submissions")
		reviewGroup.Use(authMiddleware.RequireRole("moderator", "admin"))
		{
			reviewGroup.GET("/pending", submissionHandler.ListPending)
			reviewGroup.PUT("/:submission_id/approve", submissionHandler.Approve)
			reviewGroup.PUT("/:submission_id/reject", submissionHandler.Reject)
		}

		// Points routes
		protected.GET("/leaderboard", leaderboardHandler.GetLeaderboard)
		protected.GET("/points/me", leaderboardHandler.GetMyPoints)
		protected.GET("/points/me/ledger", leaderboardHandler.GetMyLedger)

		// Notification routes
		protected.GET("/notifications", notificationHandler.GetNotifications)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.PUT("/notifications/:id/read", notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.GET("/notifications/ws", notificationHandler.HandleWebSocket)
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
	}
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	var origins []string
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	} else {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
