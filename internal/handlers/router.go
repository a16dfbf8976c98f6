package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/revisa-edu/assessment-service/internal/services"
	"github.com/revisa-edu/assessment-service/internal/utils"
)

type HandlerManager struct {
	attemptHandler *AttemptHandler
	reviewHandler  *ReviewHandler
	userHandler    *UserHandler
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *utils.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		attemptHandler: NewAttemptHandler(serviceManager.Attempt(), serviceManager.Export(), validator, logger),
		reviewHandler:  NewReviewHandler(serviceManager.Review(), validator, logger),
		userHandler:    NewUserHandler(serviceManager.User(), logger),
	}
}

// SetupRoutes sets up all API routes. authMiddleware guards everything
// under /api/v1; the health endpoint stays open.
func (hm *HandlerManager) SetupRoutes(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "assessment-service",
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(authMiddleware)
	{
		// Attempt routes
		attempts := v1.Group("/attempts")
		{
			attempts.POST("/start", hm.attemptHandler.StartAttempt)
			attempts.GET("", hm.attemptHandler.ListAttempts)
			attempts.POST("/:id/answers", hm.attemptHandler.SubmitAnswer)
			attempts.POST("/:id/submit", hm.attemptHandler.SubmitAttempt)
			attempts.GET("/:id/results", hm.attemptHandler.GetResults)
			attempts.GET("/:id/results/export", hm.attemptHandler.ExportResults)
		}

		// Review routes
		reviews := v1.Group("/reviews")
		{
			reviews.GET("/pending", hm.reviewHandler.ListPendingReviews)
			reviews.POST("/answers/:answer_id", hm.reviewHandler.ReviewAnswer)
		}

		// User routes
		users := v1.Group("/users")
		{
			users.GET("", hm.userHandler.ListUsers)
			users.GET("/:id", hm.userHandler.GetUser)
		}
	}
}
