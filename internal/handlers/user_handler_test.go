package handlers

import (
	"net/http"
	"testing"

	"project-management-api/internal/auth"
	"project-management-api/internal/models"

	"github.com/stretchr/testify/require"
)

func TestGetProfile_IncludesProjectsAndAssignedTasks(t *testing.T) {
	e := newEnv(t)
	alice, token := e.user("Alice", "alice@example.com", models.RoleProjectManager)
	p := e.project(alice, "Site")
	tk := e.task(p, "Maquette", models.TaskPending, nil)
	require.NoError(t, e.db.Model(&models.Task{}).Where("id = ?", tk.ID).Update("assigned_to", alice.ID).Error)

	w := e.do(http.MethodGet, "/api/user", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	me := decode[models.User](t, w)
	require.Equal(t, alice.ID, me.ID)
	require.Len(t, me.Projects, 1)
	require.Len(t, me.AssignedTasks, 1)
	require.NotNil(t, me.AssignedTasks[0].Project)
	require.Equal(t, "Site", me.AssignedTasks[0].Project.Name)
}

func TestUpdateProfile(t *testing.T) {
	e := newEnv(t)
	alice, token := e.user("Alice", "alice@example.com", models.RoleDeveloper)
	e.user("Bob", "bob@example.com", models.RoleDeveloper)

	t.Run("name and email", func(t *testing.T) {
		w := e.do(http.MethodPut, "/api/user", token, map[string]any{"name": "Alice B.", "email": "alice.b@example.com"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		resp := decode[struct {
			Message string      `json:"message"`
			User    models.User `json:"user"`
		}](t, w)
		require.Equal(t, "Profil mis à jour avec succès", resp.Message)
		require.Equal(t, "Alice B.", resp.User.Name)
		require.Equal(t, "alice.b@example.com", resp.User.Email)
	})

	t.Run("email taken by someone else", func(t *testing.T) {
		w := e.do(http.MethodPut, "/api/user", token, map[string]any{"email": "bob@example.com"})
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		require.Contains(t, decode[validationBody](t, w).Errors, "email")
	})

	t.Run("wrong current password", func(t *testing.T) {
		w := e.do(http.MethodPut, "/api/user", token, map[string]any{
			"current_password":          "nope-nope",
			"new_password":              "brand-new-pass",
			"new_password_confirmation": "brand-new-pass",
		})
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		require.Contains(t, decode[validationBody](t, w).Errors, "current_password")
	})

	t.Run("new password requires current", func(t *testing.T) {
		w := e.do(http.MethodPut, "/api/user", token, map[string]any{
			"new_password":              "brand-new-pass",
			"new_password_confirmation": "brand-new-pass",
		})
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		require.Contains(t, decode[validationBody](t, w).Errors, "current_password")
	})

	t.Run("password change", func(t *testing.T) {
		w := e.do(http.MethodPut, "/api/user", token, map[string]any{
			"current_password":          "password123",
			"new_password":              "brand-new-pass",
			"new_password_confirmation": "brand-new-pass",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var stored models.User
		require.NoError(t, e.db.First(&stored, alice.ID).Error)
		require.True(t, auth.CheckPassword(stored.PasswordHash, "brand-new-pass"))
	})
}

func TestGetAllUsers_OrderedByName(t *testing.T) {
	e := newEnv(t)
	_, token := e.user("Zoé", "zoe@example.com", models.RoleDesigner)
	e.user("Ahmed", "ahmed@example.com", models.RoleDevops)

	w := e.do(http.MethodGet, "/api/users", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotContains(t, w.Body.String(), "password")

	users := decode[[]UserSummary](t, w)
	require.Len(t, users, 2)
	require.Equal(t, "Ahmed", users[0].Name)
	require.Equal(t, models.RoleDevops, users[0].Role)
}
