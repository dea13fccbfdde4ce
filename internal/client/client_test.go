package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"project-management-api/internal/auth"
	"project-management-api/internal/config"
	"project-management-api/internal/database"
	"project-management-api/internal/models"
	"project-management-api/internal/routes"
	"project-management-api/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	database.DB = db

	prev := auth.Revocations()
	auth.SetRevocationStore(auth.NewMemoryRevocationStore())
	t.Cleanup(func() { auth.SetRevocationStore(prev) })

	srv := httptest.NewServer(routes.SetupRoutes(config.ReadConfig(), zap.NewNop()))
	t.Cleanup(srv.Close)
	return srv
}

func register(t *testing.T, baseURL, name, email string) *Session {
	t.Helper()
	s := NewSession(baseURL)
	_, err := s.Register(context.Background(), RegisterInput{
		Name:                 name,
		Email:                email,
		Password:             "password123",
		PasswordConfirmation: "password123",
	})
	require.NoError(t, err)
	require.True(t, s.Authenticated())
	return s
}

func requireStatus(t *testing.T, err error, status int) *APIError {
	t.Helper()
	apiErr, ok := AsAPIError(err)
	require.True(t, ok, "expected *APIError, got %v", err)
	require.Equal(t, status, apiErr.Status)
	return apiErr
}

func TestSession_ProjectLifecycle(t *testing.T) {
	srv := newServer(t)
	ctx := context.Background()
	alice := register(t, srv.URL, "Alice", "alice@example.com")

	budget := decimal.RequireFromString("1500.50")
	p, err := alice.CreateProject(ctx, ProjectInput{Name: "Site", Budget: &budget})
	require.NoError(t, err)
	require.Equal(t, "Site", p.Name)
	require.True(t, budget.Equal(*p.Budget))

	task, err := alice.CreateTask(ctx, TaskInput{Titre: "Maquette", Etat: string(models.TaskPending), ProjectID: p.ID})
	require.NoError(t, err)

	moved, err := alice.UpdateTask(ctx, task.ID, MoveTo(models.TaskDone))
	require.NoError(t, err)
	require.Equal(t, models.TaskDone, moved.Etat)
	require.Equal(t, "Maquette", moved.Titre)

	got, err := alice.Project(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, got.Tasks, 1)
	require.NotNil(t, got.CalculatedStatus)
	require.Equal(t, models.ProjectCompleted, *got.CalculatedStatus)

	tasks, err := alice.Tasks(ctx, TaskFilter{ProjectID: p.ID, Etat: models.TaskDone})
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	name := "Site v2"
	updated, err := alice.UpdateProject(ctx, p.ID, ProjectUpdate{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "Site v2", updated.Name)

	require.NoError(t, alice.DeleteProject(ctx, p.ID))
	_, err = alice.Project(ctx, p.ID)
	require.True(t, requireStatus(t, err, http.StatusNotFound).IsNotFound())
}

func TestProjectUpdate_SendsOnlyEditableFields(t *testing.T) {
	name := "Site v2"
	body, err := json.Marshal(ProjectUpdate{Name: &name})
	require.NoError(t, err)
	require.JSONEq(t, `{"name":"Site v2"}`, string(body))

	desc := ""
	body, err = json.Marshal(ProjectUpdate{Name: &name, Description: &desc})
	require.NoError(t, err)
	require.JSONEq(t, `{"name":"Site v2","description":""}`, string(body))
}

func TestSession_Comments(t *testing.T) {
	srv := newServer(t)
	ctx := context.Background()
	alice := register(t, srv.URL, "Alice", "alice@example.com")

	p, err := alice.CreateProject(ctx, ProjectInput{Name: "P"})
	require.NoError(t, err)
	task, err := alice.CreateTask(ctx, TaskInput{Titre: "T", Etat: string(models.TaskPending), ProjectID: p.ID})
	require.NoError(t, err)

	c, err := alice.CreateComment(ctx, task.ID, "Premier jet")
	require.NoError(t, err)
	require.Equal(t, "Premier jet", c.Texte)

	c, err = alice.UpdateComment(ctx, c.ID, "Relu")
	require.NoError(t, err)
	require.Equal(t, "Relu", c.Texte)

	comments, err := alice.Comments(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)

	require.NoError(t, alice.DeleteComment(ctx, c.ID))
	comments, err = alice.Comments(ctx, task.ID)
	require.NoError(t, err)
	require.Empty(t, comments)
}

func TestSession_ErrorClasses(t *testing.T) {
	srv := newServer(t)
	ctx := context.Background()
	alice := register(t, srv.URL, "Alice", "alice@example.com")
	bob := register(t, srv.URL, "Bob", "bob@example.com")

	p, err := alice.CreateProject(ctx, ProjectInput{Name: "Privé"})
	require.NoError(t, err)

	err = bob.DeleteProject(ctx, p.ID)
	require.True(t, requireStatus(t, err, http.StatusForbidden).IsForbidden())

	_, err = alice.CreateProject(ctx, ProjectInput{Name: ""})
	apiErr := requireStatus(t, err, http.StatusUnprocessableEntity)
	require.True(t, apiErr.IsValidation())
	require.NotEmpty(t, apiErr.FieldError("name"))

	anon := NewSession(srv.URL)
	_, err = anon.Projects(ctx)
	require.True(t, requireStatus(t, err, http.StatusUnauthorized).IsUnauthenticated())

	_, err = anon.Login(ctx, "alice@example.com", "wrong-password")
	require.True(t, requireStatus(t, err, http.StatusUnauthorized).IsUnauthenticated())
	require.False(t, anon.Authenticated())
}

func TestSession_LogoutRevokesToken(t *testing.T) {
	srv := newServer(t)
	ctx := context.Background()
	alice := register(t, srv.URL, "Alice", "alice@example.com")
	token := alice.Token

	require.NoError(t, alice.Logout(ctx))
	require.False(t, alice.Authenticated())

	stale := NewSession(srv.URL)
	stale.Token = token
	_, err := stale.Me(ctx)
	require.True(t, requireStatus(t, err, http.StatusUnauthorized).IsUnauthenticated())

	_, err = alice.Login(ctx, "alice@example.com", "password123")
	require.NoError(t, err)
	me, err := alice.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, "Alice", me.Name)
}

func TestSession_Admin(t *testing.T) {
	srv := newServer(t)
	ctx := context.Background()

	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)
	require.NoError(t, database.GetDB().Create(&models.User{
		Name: "Admin", Email: "admin@example.com", PasswordHash: hash, Role: models.RoleAdmin,
	}).Error)

	dev := register(t, srv.URL, "Dev", "dev@example.com")
	_, err = dev.AdminDashboard(ctx)
	require.True(t, requireStatus(t, err, http.StatusForbidden).IsForbidden())

	admin := NewSession(srv.URL)
	_, err = admin.Login(ctx, "admin@example.com", "password123")
	require.NoError(t, err)

	dash, err := admin.AdminDashboard(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, dash.Stats.TotalUsers)

	users, err := admin.AdminUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)

	stats, err := admin.AdminStats(ctx)
	require.NoError(t, err)
	require.Len(t, stats.UserWorkload, 2)

	_, err = admin.AdminUserStats(ctx, 999)
	require.True(t, requireStatus(t, err, http.StatusNotFound).IsNotFound())

	team, err := dev.Users(ctx)
	require.NoError(t, err)
	require.Len(t, team, 2)
}

func TestSession_ConnectionError(t *testing.T) {
	srv := newServer(t)
	url := srv.URL
	srv.Close()

	s := NewSession(url)
	_, err := s.Projects(context.Background())
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	require.True(t, apiErr.IsConnection())
	require.Equal(t, MsgConnection, apiErr.Message)
}

func TestTaskUpdate_MarshalJSON(t *testing.T) {
	b, err := MoveTo(models.TaskInProgress).MarshalJSON()
	require.NoError(t, err)
	require.JSONEq(t, `{"etat":"en cours"}`, string(b))

	id := uint(4)
	b, err = TaskUpdate{AssignedTo: &id, Unassign: true}.MarshalJSON()
	require.NoError(t, err)
	require.JSONEq(t, `{"assigned_to":null}`, string(b))
}
