package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"project-management-api/internal/models"

	"github.com/stretchr/testify/require"
)

func TestCreateComment_AcceptsBothKeys(t *testing.T) {
	e := newEnv(t)
	alice, token := e.user("Alice", "alice@example.com", models.RoleDeveloper)
	tk := e.task(e.project(alice, "P"), "T", models.TaskPending, nil)
	path := fmt.Sprintf("/api/tasks/%d/comments", tk.ID)

	w := e.do(http.MethodPost, path, token, map[string]any{"content": "<p>Premier</p> commentaire"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	first := decode[models.Comment](t, w)
	require.Equal(t, "<p>Premier</p> commentaire", first.Texte)
	require.Equal(t, alice.ID, first.AuteurID)
	require.NotNil(t, first.User)
	require.Equal(t, "Alice", first.User.Name)

	w = e.do(http.MethodPost, path, token, map[string]any{"content": "", "texte": "Second"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Equal(t, "Second", decode[models.Comment](t, w).Texte)

	list := decode[[]models.Comment](t, e.do(http.MethodGet, path, token, nil))
	require.Len(t, list, 2)
	require.Equal(t, "Second", list[0].Texte)
	require.NotNil(t, list[0].User)
}

func TestCreateComment_Validation(t *testing.T) {
	e := newEnv(t)
	alice, token := e.user("Alice", "alice@example.com", models.RoleDeveloper)
	tk := e.task(e.project(alice, "P"), "T", models.TaskPending, nil)
	path := fmt.Sprintf("/api/tasks/%d/comments", tk.ID)

	require.Equal(t, http.StatusUnprocessableEntity, e.do(http.MethodPost, path, token, map[string]any{}).Code)
	require.Equal(t, http.StatusUnprocessableEntity, e.do(http.MethodPost, path, token, map[string]any{"content": "   ", "texte": ""}).Code)

	long := strings.Repeat("é", models.MaxCommentLength+1)
	require.Equal(t, http.StatusUnprocessableEntity, e.do(http.MethodPost, path, token, map[string]any{"content": long}).Code)
	exact := strings.Repeat("é", models.MaxCommentLength)
	require.Equal(t, http.StatusCreated, e.do(http.MethodPost, path, token, map[string]any{"content": exact}).Code)

	require.Equal(t, http.StatusNotFound, e.do(http.MethodPost, "/api/tasks/999/comments", token, map[string]any{"content": "x"}).Code)
	require.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/api/tasks/999/comments", token, nil).Code)
}

func TestCommentAuthorization(t *testing.T) {
	e := newEnv(t)
	alice, aliceToken := e.user("Alice", "alice@example.com", models.RoleDeveloper)
	_, bobToken := e.user("Bob", "bob@example.com", models.RoleDeveloper)
	_, adminToken := e.user("Root", "root@example.com", models.RoleAdmin)
	tk := e.task(e.project(alice, "P"), "T", models.TaskPending, nil)

	w := e.do(http.MethodPost, fmt.Sprintf("/api/tasks/%d/comments", tk.ID), aliceToken, map[string]any{"content": "À revoir"})
	require.Equal(t, http.StatusCreated, w.Code)
	c := decode[models.Comment](t, w)
	path := fmt.Sprintf("/api/comments/%d", c.ID)

	w = e.do(http.MethodPut, path, bobToken, map[string]any{"content": "Pirate"})
	require.Equal(t, http.StatusForbidden, w.Code)
	require.JSONEq(t, `{"message":"Accès non autorisé"}`, w.Body.String())
	require.Equal(t, http.StatusForbidden, e.do(http.MethodDelete, path, bobToken, nil).Code)

	w = e.do(http.MethodPut, path, aliceToken, map[string]any{"texte": "Revu"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Revu", decode[models.Comment](t, w).Texte)

	w = e.do(http.MethodDelete, path, adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"message":"Commentaire supprimé avec succès"}`, w.Body.String())

	require.Equal(t, http.StatusNotFound, e.do(http.MethodDelete, path, adminToken, nil).Code)
}
