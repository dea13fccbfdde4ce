package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"project-management-api/internal/apperr"
	"project-management-api/internal/auth"
	"project-management-api/internal/database"
	"project-management-api/internal/middleware"
	"project-management-api/internal/models"
	"project-management-api/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	t  *testing.T
	r  *gin.Engine
	db *gorm.DB
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	apperr.UseJSONFieldNames()

	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	database.DB = db

	prev := auth.Revocations()
	auth.SetRevocationStore(auth.NewMemoryRevocationStore())
	t.Cleanup(func() { auth.SetRevocationStore(prev) })

	r := gin.New()
	r.POST("/api/register", Register)
	r.POST("/api/login", Login)

	p := r.Group("/api")
	p.Use(middleware.JWTAuthMiddleware())
	p.POST("/logout", Logout)
	p.GET("/user", GetProfile)
	p.PUT("/user", UpdateProfile)
	p.GET("/users", GetAllUsers)
	p.GET("/projects", GetProjects)
	p.POST("/projects", CreateProject)
	p.GET("/projects/:id", GetProjectByID)
	p.PUT("/projects/:id", UpdateProject)
	p.DELETE("/projects/:id", DeleteProject)
	p.GET("/tasks", GetTasks)
	p.POST("/tasks", CreateTask)
	p.GET("/tasks/:id", GetTaskByID)
	p.PUT("/tasks/:id", UpdateTask)
	p.DELETE("/tasks/:id", DeleteTask)
	p.GET("/tasks/:id/comments", GetComments)
	p.POST("/tasks/:id/comments", CreateComment)
	p.PUT("/comments/:id", UpdateComment)
	p.DELETE("/comments/:id", DeleteComment)

	a := p.Group("/admin")
	a.Use(middleware.RequireAdmin())
	a.GET("", AdminDashboard)
	a.GET("/stats", AdminGlobalStats)
	a.GET("/users", AdminUsers)
	a.GET("/users/:id/stats", AdminUserStats)
	a.GET("/projects", AdminProjects)
	a.GET("/projects/:id/stats", AdminProjectStats)
	a.GET("/tasks", AdminTasks)

	return &testEnv{t: t, r: r, db: db}
}

// pinClock fixes the time used for derived fields.
func pinClock(t *testing.T, now time.Time) {
	t.Helper()
	models.Clock = func() time.Time { return now }
	t.Cleanup(func() { models.Clock = func() time.Time { return time.Now().UTC() } })
}

// user inserts a user with password "password123" and returns a token for it.
func (e *testEnv) user(name, email string, role models.Role) (models.User, string) {
	e.t.Helper()
	hash, err := auth.HashPassword("password123")
	require.NoError(e.t, err)
	u := models.User{Name: name, Email: email, PasswordHash: hash, Role: role}
	require.NoError(e.t, e.db.Create(&u).Error)
	token, err := auth.GenerateToken(u.ID, u.Role)
	require.NoError(e.t, err)
	return u, token
}

func (e *testEnv) project(owner models.User, name string) models.Project {
	e.t.Helper()
	p := models.Project{Name: name, Status: models.ProjectPending, OwnerID: owner.ID}
	require.NoError(e.t, e.db.Omit("Owner", "Tasks").Create(&p).Error)
	return p
}

func (e *testEnv) task(p models.Project, titre string, etat models.TaskState, deadline *time.Time) models.Task {
	e.t.Helper()
	tk := models.Task{Titre: titre, Etat: etat, ProjectID: p.ID, Deadline: deadline}
	require.NoError(e.t, e.db.Omit("Project", "AssignedUser", "Comments").Create(&tk).Error)
	return tk
}

func (e *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf *bytes.Reader
	switch b := body.(type) {
	case nil:
		buf = bytes.NewReader(nil)
	case string:
		buf = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(e.t, err)
		buf = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

type validationBody struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

func ptr[T any](v T) *T { return &v }
