package api

import (
	"alcyxob/trainer-marketplace/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouteOptions carries the optional surfaces. Zero values disable them.
type RouteOptions struct {
	Metrics     http.Handler // served on /metrics
	UploadsPath string       // URL prefix for locally stored files, e.g. /uploads
	UploadsDir  string
}

func SetupRoutes(
	router *gin.Engine,
	tokens *service.TokenService,
	authService service.AuthService,
	trainerService service.TrainerService,
	courseService service.CourseService,
	logger *zap.Logger,
	opts RouteOptions,
) {
	RegisterValidators()

	authHandler := NewAuthHandler(authService, logger)
	trainerHandler := NewTrainerHandler(trainerService, tokens, authService, logger)
	courseHandler := NewCourseHandler(courseService, logger)

	authenticated := Authenticate(tokens, authService, logger)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if opts.Metrics != nil {
		router.GET("/metrics", gin.WrapH(opts.Metrics))
	}
	if opts.UploadsPath != "" && opts.UploadsDir != "" {
		router.Static(opts.UploadsPath, opts.UploadsDir)
	}

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.GET("/profile", authenticated, Require(service.OpProfileRead), authHandler.GetProfile)
		authGroup.PUT("/profile", authenticated, Require(service.OpProfileUpdate), authHandler.UpdateProfile)
	}

	trainerGroup := router.Group("/trainers")
	{
		trainerGroup.GET("", trainerHandler.ListTrainers)
		trainerGroup.GET("/:id", trainerHandler.GetTrainer)
		// Multipart onboarding is open; the JSON variant checks the token itself.
		trainerGroup.POST("", trainerHandler.CreateTrainer)
		trainerGroup.PUT("/:id", authenticated, Require(service.OpTrainerUpdate), trainerHandler.UpdateTrainer)
		trainerGroup.DELETE("/:id", authenticated, Require(service.OpTrainerDelete), trainerHandler.DeleteTrainer)
		trainerGroup.PUT("/:id/availability", authenticated, Require(service.OpTrainerAvailability), trainerHandler.UpdateAvailability)
		trainerGroup.PUT("/:id/documents", authenticated, Require(service.OpTrainerDocuments), trainerHandler.UpdateDocuments)
	}

	courseGroup := router.Group("/courses")
	{
		courseGroup.GET("", courseHandler.ListCourses)
		courseGroup.GET("/:id", courseHandler.GetCourse)
		courseGroup.POST("", authenticated, Require(service.OpCourseCreate), courseHandler.CreateCourse)
		courseGroup.PUT("/:id", authenticated, Require(service.OpCourseUpdate), courseHandler.UpdateCourse)
		courseGroup.DELETE("/:id", authenticated, Require(service.OpCourseDelete), courseHandler.DeleteCourse)
		courseGroup.PUT("/:id/materials", authenticated, Require(service.OpCourseMaterials), courseHandler.UpdateMaterials)
		courseGroup.PUT("/:id/schedule", authenticated, Require(service.OpCourseSchedule), courseHandler.UpdateSchedule)
	}

	router.NoRoute(func(c *gin.Context) {
		abortWithError(c, http.StatusNotFound, "Route not found")
	})
}
