package main

import (
	stdlog "log"

	"github.com/gin-gonic/gin"
	"github.com/hikarock/kanban-board-api/internal/auth"
	"github.com/hikarock/kanban-board-api/internal/authz"
	"github.com/hikarock/kanban-board-api/internal/config"
	"github.com/hikarock/kanban-board-api/internal/database"
	"github.com/hikarock/kanban-board-api/internal/handlers"
	"github.com/hikarock/kanban-board-api/internal/logger"
	"github.com/hikarock/kanban-board-api/internal/middleware"
	"github.com/hikarock/kanban-board-api/internal/repository"
	"github.com/hikarock/kanban-board-api/internal/services"
)

func main() {
	// Load configuration; a missing signing secret aborts startup
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("failed to load configuration: %v", err)
	}

	log := logger.New(cfg.GinMode)
	defer log.Sync()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalw("Failed to connect to database", "error", err)
	}
	log.Infow("Database connection established", "driver", cfg.DBDriver)

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalw("Failed to run migrations", "error", err)
	}

	db := database.GetDB()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	// Access-control core
	tokenService := auth.NewTokenService(auth.TokenConfig{
		Secret:          cfg.JWTSecret,
		AccessTokenTTL:  cfg.AccessTokenTTL,
		RefreshTokenTTL: cfg.RefreshTokenTTL,
	})
	directory := authz.NewGormDirectory(db)
	engine := authz.NewEngine(directory, directory)

	// Services
	authService := services.NewAuthService(userRepo, tokenService, cfg.SignupPersonalTeam)
	teamService := services.NewTeamService(teamRepo, userRepo, engine)
	projectService := services.NewProjectService(projectRepo, teamRepo, directory, engine)
	taskService := services.NewTaskService(taskRepo, projectRepo, userRepo, engine)
	userService := services.NewUserService(userRepo, teamRepo)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	teamHandler := handlers.NewTeamHandler(teamService)
	projectHandler := handlers.NewProjectHandler(projectService)
	taskHandler := handlers.NewTaskHandler(taskService)
	userHandler := handlers.NewUserHandler(userService)

	// Initialize Gin router
	r := gin.New()
	r.Use(middleware.RequestLogger(log), gin.Recovery())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Kanban Board API is running",
		})
	})

	requireAuth := middleware.RequireAuth(tokenService)

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public except /me)
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/signup", authHandler.Signup)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.GET("/me", requireAuth, authHandler.GetCurrentUser)
		}

		// Team routes (protected; mutations are admin-only, enforced by the
		// policy engine inside the service)
		teams := api.Group("/teams")
		teams.Use(requireAuth)
		{
			teams.POST("", teamHandler.CreateTeam)
			teams.GET("", teamHandler.ListTeams)
			teams.GET("/:id", teamHandler.GetTeam)
			teams.PUT("/:id", teamHandler.UpdateTeam)
			teams.DELETE("/:id", teamHandler.DeleteTeam)
			teams.POST("/:id/members", teamHandler.AddMember)
			teams.GET("/:id/members", teamHandler.ListMembers)
			teams.DELETE("/:id/members/:user_id", teamHandler.RemoveMember)
		}

		// Project routes (protected)
		projects := api.Group("/projects")
		projects.Use(requireAuth)
		{
			projects.POST("", projectHandler.CreateProject)
			projects.GET("", projectHandler.ListProjects)
			projects.GET("/:id", projectHandler.GetProject)
			projects.PUT("/:id", projectHandler.UpdateProject)
			projects.DELETE("/:id", projectHandler.DeleteProject)
		}

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(requireAuth)
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/:id", taskHandler.GetTask)
			tasks.PUT("/:id", taskHandler.UpdateTask)
			tasks.PATCH("/:id/status", taskHandler.UpdateTaskStatus)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
			tasks.POST("/:id/assign/:user_id", taskHandler.AssignTask)
			tasks.POST("/:id/unassign", taskHandler.UnassignTask)
		}

		// User routes (protected)
		users := api.Group("/users")
		users.Use(requireAuth)
		{
			users.GET("", userHandler.ListUsers)
			users.GET("/:id", userHandler.GetUser)
			users.GET("/:id/teams", userHandler.GetUserTeams)
			users.PUT("/:id/role", middleware.RequireAdmin(), userHandler.UpdateRole)
		}
	}

	// Start server
	log.Infow("Server starting", "addr", cfg.ServerAddr)
	if err := r.Run(cfg.ServerAddr); err != nil {
		log.Fatalw("Failed to start server", "error", err)
	}
}
