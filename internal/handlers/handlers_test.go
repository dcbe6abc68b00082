package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hikarock/kanban-board-api/internal/auth"
	"github.com/hikarock/kanban-board-api/internal/authz"
	"github.com/hikarock/kanban-board-api/internal/database"
	"github.com/hikarock/kanban-board-api/internal/middleware"
	"github.com/hikarock/kanban-board-api/internal/models"
	"github.com/hikarock/kanban-board-api/internal/repository"
	"github.com/hikarock/kanban-board-api/internal/services"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// testPassword satisfies the password policy and is shared by all fixtures.
const testPassword = "supersecret1"

type testEnv struct {
	db          *gorm.DB
	router      *gin.Engine
	tokens      *auth.TokenService
	authService *services.AuthService
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Team{},
		&models.TeamMember{},
		&models.Project{},
		&models.Task{},
	)
	require.NoError(t, err)

	database.SetDB(db)

	userRepo := repository.NewUserRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	tokens := auth.NewTokenService(auth.TokenConfig{
		Secret:          "test-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
	})
	directory := authz.NewGormDirectory(db)
	engine := authz.NewEngine(directory, directory)

	authService := services.NewAuthService(userRepo, tokens, false)
	teamService := services.NewTeamService(teamRepo, userRepo, engine)
	projectService := services.NewProjectService(projectRepo, teamRepo, directory, engine)
	taskService := services.NewTaskService(taskRepo, projectRepo, userRepo, engine)
	userService := services.NewUserService(userRepo, teamRepo)

	authHandler := NewAuthHandler(authService)
	teamHandler := NewTeamHandler(teamService)
	projectHandler := NewProjectHandler(projectService)
	taskHandler := NewTaskHandler(taskService)
	userHandler := NewUserHandler(userService)

	r := gin.New()
	requireAuth := middleware.RequireAuth(tokens)

	api := r.Group("/api")
	{
		authGroup := api.Group("/auth")
		authGroup.POST("/signup", authHandler.Signup)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.GET("/me", requireAuth, authHandler.GetCurrentUser)

		teams := api.Group("/teams")
		teams.Use(requireAuth)
		teams.POST("", teamHandler.CreateTeam)
		teams.GET("", teamHandler.ListTeams)
		teams.GET("/:id", teamHandler.GetTeam)
		teams.PUT("/:id", teamHandler.UpdateTeam)
		teams.DELETE("/:id", teamHandler.DeleteTeam)
		teams.POST("/:id/members", teamHandler.AddMember)
		teams.GET("/:id/members", teamHandler.ListMembers)
		teams.DELETE("/:id/members/:user_id", teamHandler.RemoveMember)

		projects := api.Group("/projects")
		projects.Use(requireAuth)
		projects.POST("", projectHandler.CreateProject)
		projects.GET("", projectHandler.ListProjects)
		projects.GET("/:id", projectHandler.GetProject)
		projects.PUT("/:id", projectHandler.UpdateProject)
		projects.DELETE("/:id", projectHandler.DeleteProject)

		tasks := api.Group("/tasks")
		tasks.Use(requireAuth)
		tasks.GET("", taskHandler.ListTasks)
		tasks.POST("", taskHandler.CreateTask)
		tasks.GET("/:id", taskHandler.GetTask)
		tasks.PUT("/:id", taskHandler.UpdateTask)
		tasks.PATCH("/:id/status", taskHandler.UpdateTaskStatus)
		tasks.DELETE("/:id", taskHandler.DeleteTask)
		tasks.POST("/:id/assign/:user_id", taskHandler.AssignTask)
		tasks.POST("/:id/unassign", taskHandler.UnassignTask)

		users := api.Group("/users")
		users.Use(requireAuth)
		users.GET("", userHandler.ListUsers)
		users.GET("/:id", userHandler.GetUser)
		users.GET("/:id/teams", userHandler.GetUserTeams)
		users.PUT("/:id/role", middleware.RequireAdmin(), userHandler.UpdateRole)
	}

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return &testEnv{
		db:          db,
		router:      r,
		tokens:      tokens,
		authService: authService,
	}
}

func (env *testEnv) createUser(t *testing.T, username string, role models.UserRole) *models.User {
	t.Helper()

	hashed, err := auth.HashPassword(testPassword)
	require.NoError(t, err)

	user := &models.User{
		Email:        username + "@example.com",
		Username:     username,
		PasswordHash: hashed,
		Role:         role,
	}
	require.NoError(t, env.db.Create(user).Error)
	return user
}

func (env *testEnv) createTeam(t *testing.T, name string) *models.Team {
	t.Helper()

	team := &models.Team{Name: name}
	require.NoError(t, env.db.Create(team).Error)
	return team
}

func (env *testEnv) addMember(t *testing.T, teamID, userID uint64, role models.TeamRole) {
	t.Helper()

	member := &models.TeamMember{
		TeamID:   teamID,
		UserID:   userID,
		Role:     role,
		JoinedAt: time.Now(),
	}
	require.NoError(t, env.db.Create(member).Error)
}

func (env *testEnv) createProject(t *testing.T, name string, teamID, creatorID uint64) *models.Project {
	t.Helper()

	project := &models.Project{
		Name:      name,
		TeamID:    teamID,
		CreatorID: creatorID,
	}
	require.NoError(t, env.db.Create(project).Error)
	return project
}

func (env *testEnv) createTask(t *testing.T, title string, projectID uint64, assigneeID *uint64) *models.Task {
	t.Helper()

	task := &models.Task{
		Title:      title,
		Status:     models.TaskStatusTodo,
		ProjectID:  projectID,
		AssigneeID: assigneeID,
	}
	require.NoError(t, env.db.Create(task).Error)
	return task
}

func (env *testEnv) bearer(t *testing.T, user *models.User) string {
	t.Helper()

	token, err := env.tokens.IssueAccessToken(user)
	require.NoError(t, err)
	return "Bearer " + token
}

// do sends a JSON request through the router and returns the recorder.
func (env *testEnv) do(t *testing.T, method, path, authorization string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out),
		fmt.Sprintf("body: %s", w.Body.String()))
}
