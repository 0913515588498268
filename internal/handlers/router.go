package handlers

import (
	"log/slog"
	"net/http"

	"github.com/caroltfg2024/unitasks-backend/internal/auth"
	"github.com/caroltfg2024/unitasks-backend/internal/middleware"
	"github.com/caroltfg2024/unitasks-backend/internal/repository"
	"github.com/caroltfg2024/unitasks-backend/internal/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// NewRouter wires repositories, services and handlers onto a gin engine.
// The Authenticate middleware runs on every /api route; only the auth
// endpoints accept anonymous callers.
func NewRouter(db *gorm.DB, hasher *auth.PasswordHasher, codec *auth.TokenCodec, log *slog.Logger) *gin.Engine {
	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	authService := services.NewAuthService(userRepo, hasher, codec, log)
	userService := services.NewUserService(userRepo, taskRepo, hasher, log)
	taskService := services.NewTaskService(taskRepo, log)

	authHandler := NewAuthHandler(authService)
	userHandler := NewUserHandler(userService)
	taskHandler := NewTaskHandler(taskService)

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.Use(middleware.Authenticate(codec, userRepo, log))
	{
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		users := api.Group("/users")
		users.Use(middleware.RequireAuth())
		{
			users.GET("", userHandler.ListUsers)
			users.POST("", userHandler.CreateUser)
			users.GET("/count", userHandler.CountUsers)
			users.GET("/email", userHandler.GetUserByEmail)
			users.GET("/leaderboard", userHandler.GetLeaderboard)
			users.GET("/:id", userHandler.GetUser)
			users.PUT("/:id", userHandler.UpdateUser)
			users.PATCH("/:id/password", userHandler.ChangePassword)
			users.PATCH("/:id/activate", userHandler.ActivateUser)
			users.PATCH("/:id/deactivate", userHandler.DeactivateUser)
			users.DELETE("/:id", userHandler.DeleteUser)
		}

		tasks := api.Group("/tasks")
		tasks.Use(middleware.RequireAuth())
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/count", taskHandler.CountTasks)
			tasks.GET("/:id", taskHandler.GetTask)
			tasks.PUT("/:id", taskHandler.UpdateTask)
			tasks.PATCH("/:id/status", taskHandler.ChangeTaskStatus)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
		}
	}

	return r
}
