package routes

import (
	"github.com/citypulse/backend/internal/controllers"
	"github.com/citypulse/backend/internal/middleware"
	"github.com/citypulse/backend/internal/models"
	"github.com/citypulse/backend/internal/repository"
	"github.com/citypulse/backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// SetupRoutes configures all application routes
func SetupRoutes(r *gin.Engine, db *gorm.DB, rdb *redis.Client) {
	store := repository.NewGormStore(db)

	// Redis is optional; without it notifications and the creation lock
	// degrade to no-ops and the storage constraint arbitrates races.
	var notifier services.Notifier = services.NoopNotifier{}
	var locks services.Locker = services.NoopLocker{}
	if rdb != nil {
		notifier = services.NewRedisNotifier(rdb)
		locks = services.NewRedisLocker(rdb)
	}

	// Initialize services
	lifecycleService := services.NewLifecycleService(store, notifier, locks)
	rankingService := services.NewRankingService(store, rdb)

	// Initialize controllers
	authController := controllers.NewAuthController(db)
	userController := controllers.NewUserController(db)
	complaintController := controllers.NewComplaintController(lifecycleService, store)
	dashboardController := controllers.NewDashboardController(rankingService, store)

	// API routes
	api := r.Group("/api/v1")
	{
		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/login", authController.Login)
			auth.POST("/register", authController.Register)
			auth.POST("/refresh", middleware.AuthMiddleware(), authController.RefreshToken)
		}

		// Protected routes
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware())
		{
			// Users
			users := protected.Group("/users")
			{
				users.GET("/me", userController.GetCurrentUser)
				users.PUT("/me", userController.UpdateCurrentUser)
			}

			// Complaints
			complaints := protected.Group("/complaints")
			{
				complaints.POST("", middleware.RequireRole(models.RoleCitizen), complaintController.CreateComplaint)
				complaints.GET("/my", middleware.RequireRole(models.RoleCitizen), complaintController.GetMyComplaints)
				complaints.GET("/assigned", middleware.RequireRole(models.RoleStaff), complaintController.GetAssignedComplaints)
				complaints.GET("/:id", complaintController.GetComplaint)
				complaints.GET("/:id/timeline", complaintController.GetTimeline)
				complaints.POST("/:id/comments", complaintController.AddComment)
				complaints.POST("/:id/assign", middleware.RequireRole(models.RoleAuthority), complaintController.AssignStaff)
				complaints.DELETE("/:id/assign/:staffId", middleware.RequireRole(models.RoleAuthority), complaintController.UnassignStaff)
				complaints.PATCH("/:id/status", middleware.RequireRole(models.RoleStaff, models.RoleAuthority), complaintController.UpdateStatus)
				complaints.POST("/:id/proof", middleware.RequireRole(models.RoleStaff, models.RoleAuthority), complaintController.UploadProof)
			}

			// Authority dashboard
			dashboard := protected.Group("/dashboard")
			dashboard.Use(middleware.RequireRole(models.RoleAuthority))
			{
				dashboard.GET("", dashboardController.GetDashboard)
			}

			// Staff management
			staff := protected.Group("/staff")
			staff.Use(middleware.RequireRole(models.RoleAuthority))
			{
				staff.GET("", dashboardController.GetStaff)
				staff.POST("", userController.CreateStaff)
			}
		}
	}
}
