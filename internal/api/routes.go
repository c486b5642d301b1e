package api

import (
	"alcyxob/fitness-tracker/internal/domain"
	"alcyxob/fitness-tracker/internal/metrics"
	"alcyxob/fitness-tracker/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Services bundles what the HTTP layer calls into.
type Services struct {
	Auth     service.AuthService
	Exercise service.ExerciseService
	Workout  service.WorkoutService
	Media    service.MediaService
}

// SetupRoutes registers every route on router. m and gatherer may be nil,
// which disables request metrics and the /metrics endpoint.
func SetupRoutes(router *gin.Engine, jwtSecret string, svc Services, m *metrics.Manager, gatherer prometheus.Gatherer) {
	authHandler := NewAuthHandler(svc.Auth)
	exerciseHandler := NewExerciseHandler(svc.Exercise)
	workoutHandler := NewWorkoutHandler(svc.Workout)
	mediaHandler := NewMediaHandler(svc.Media)

	router.Use(Recovery(m), RequestLogger())
	if m != nil {
		router.Use(MetricsMiddleware(m))
	}

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	if gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(AuthMiddleware(jwtSecret))
	{
		protected.GET("/me", func(c *gin.Context) {
			userID, ok := mustUserID(c)
			if !ok {
				return
			}
			role, _ := getUserRoleFromContext(c)
			c.JSON(http.StatusOK, gin.H{"userId": userID.Hex(), "role": role})
		})

		// --- Exercise catalog ---
		catalogEditors := RoleMiddleware(domain.RoleTrainer, domain.RoleAdmin)
		exerciseGroup := protected.Group("/exercises")
		{
			exerciseGroup.GET("", exerciseHandler.ListExercises)
			exerciseGroup.POST("", catalogEditors, exerciseHandler.CreateExercise)
			exerciseGroup.GET("/:id", exerciseHandler.GetExercise)
			exerciseGroup.PUT("/:id", catalogEditors, exerciseHandler.UpdateExercise)
			exerciseGroup.DELETE("/:id", catalogEditors, exerciseHandler.DeleteExercise)
		}

		// --- Workout sessions ---
		workoutGroup := protected.Group("/workouts")
		{
			workoutGroup.POST("", workoutHandler.CreateWorkout)
			workoutGroup.GET("", workoutHandler.ListWorkouts)
			workoutGroup.GET("/:id", workoutHandler.GetWorkout)
			workoutGroup.DELETE("/:id", workoutHandler.DeleteWorkout)
			workoutGroup.POST("/:id/start", workoutHandler.StartWorkout)
			workoutGroup.POST("/:id/complete", workoutHandler.CompleteWorkout)
			workoutGroup.POST("/:id/cancel", workoutHandler.CancelWorkout)
			workoutGroup.POST("/:id/repair", workoutHandler.RepairWorkout)

			// Exercises inside a workout
			workoutGroup.GET("/:id/exercises", workoutHandler.ListWorkoutExercises)
			workoutGroup.POST("/:id/exercises", workoutHandler.AddWorkoutExercise)
			workoutGroup.PUT("/:id/exercises/:entryId", workoutHandler.UpdateWorkoutExercise)
			workoutGroup.POST("/:id/exercises/:entryId/start", workoutHandler.StartWorkoutExercise)
			workoutGroup.POST("/:id/exercises/:entryId/complete", workoutHandler.CompleteWorkoutExercise)
			workoutGroup.POST("/:id/exercises/:entryId/skip", workoutHandler.SkipWorkoutExercise)

			// Form-check media
			workoutGroup.POST("/:id/exercises/:entryId/media/upload-url", mediaHandler.RequestUploadURL)
			workoutGroup.POST("/:id/exercises/:entryId/media/confirm", mediaHandler.ConfirmUpload)
			workoutGroup.GET("/:id/exercises/:entryId/media", mediaHandler.GetMedia)
		}

		// --- Sets ---
		// Sets are addressed by their own ids, independent of the workout path.
		protected.GET("/workout-exercises/:entryId/sets", workoutHandler.ListSets)
		protected.POST("/workout-exercises/:entryId/sets", workoutHandler.LogSet)
		protected.POST("/sets/:setId/complete", workoutHandler.CompleteSet)
	}
}
