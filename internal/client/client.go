// Package client is a typed Go client for the project management API.
//
// All state lives in a Session value: the base URL, the bearer token and the
// HTTP client. Nothing is kept at package level, so several sessions can run
// side by side.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"project-management-api/internal/models"
	"project-management-api/internal/reporting"

	"github.com/shopspring/decimal"
)

// DefaultBaseURL matches the server's default port.
const DefaultBaseURL = "http://localhost:8008"

// Session is an API client bound to one user's token.
type Session struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

// NewSession returns a session without a token. An empty baseURL falls back
// to DefaultBaseURL.
func NewSession(baseURL string) *Session {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Session{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Authenticated reports whether the session holds a token.
func (s *Session) Authenticated() bool { return s.Token != "" }

type message struct {
	Message string `json:"message"`
}

// do sends in as JSON and decodes the response into out when out is non-nil.
func (s *Session) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	u := s.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}

	httpClient := s.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return &APIError{Message: MsgConnection, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		b, _ := io.ReadAll(resp.Body)
		if err := json.Unmarshal(b, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func idPath(prefix string, id uint) string {
	return prefix + "/" + strconv.FormatUint(uint64(id), 10)
}

// ---------------------------------------------------------------------------
// Authentication
// ---------------------------------------------------------------------------

type RegisterInput struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
	Role                 string `json:"role,omitempty"`
}

type authResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register creates an account and stores the returned token in the session.
func (s *Session) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	var res authResult
	if err := s.do(ctx, http.MethodPost, "/api/register", nil, in, &res); err != nil {
		return nil, err
	}
	s.Token = res.Token
	return res.User, nil
}

// Login stores the returned token in the session.
func (s *Session) Login(ctx context.Context, email, password string) (*models.User, error) {
	in := map[string]string{"email": email, "password": password}
	var res authResult
	if err := s.do(ctx, http.MethodPost, "/api/login", nil, in, &res); err != nil {
		return nil, err
	}
	s.Token = res.Token
	return res.User, nil
}

// Logout revokes the token server-side and clears it locally. The local
// token is cleared even when the server call fails.
func (s *Session) Logout(ctx context.Context) error {
	err := s.do(ctx, http.MethodPost, "/api/logout", nil, nil, nil)
	s.Token = ""
	return err
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

// ProfileUpdate changes the current user. Password fields are only sent
// when NewPassword is set.
type ProfileUpdate struct {
	Name                    *string `json:"name,omitempty"`
	Email                   *string `json:"email,omitempty"`
	CurrentPassword         string  `json:"current_password,omitempty"`
	NewPassword             string  `json:"new_password,omitempty"`
	NewPasswordConfirmation string  `json:"new_password_confirmation,omitempty"`
}

// Me returns the current user with owned projects and assigned tasks.
func (s *Session) Me(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := s.do(ctx, http.MethodGet, "/api/user", nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Session) UpdateProfile(ctx context.Context, in ProfileUpdate) (*models.User, error) {
	var res struct {
		Message string       `json:"message"`
		User    *models.User `json:"user"`
	}
	if err := s.do(ctx, http.MethodPut, "/api/user", nil, in, &res); err != nil {
		return nil, err
	}
	return res.User, nil
}

// UserSummary is the public view of a teammate.
type UserSummary struct {
	ID    uint        `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
}

// Users lists every teammate, for assignee pickers.
func (s *Session) Users(ctx context.Context) ([]UserSummary, error) {
	var out []UserSummary
	if err := s.do(ctx, http.MethodGet, "/api/users", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Projects
// ---------------------------------------------------------------------------

type ProjectInput struct {
	Name        string           `json:"name"`
	Description *string          `json:"description,omitempty"`
	Deadline    *string          `json:"deadline,omitempty"`
	Budget      *decimal.Decimal `json:"budget,omitempty"`
	Status      *string          `json:"status,omitempty"`
}

// ProjectUpdate sends only the fields that are set. The server edits name
// and description only.
type ProjectUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

func (s *Session) Projects(ctx context.Context) ([]models.Project, error) {
	var out []models.Project
	if err := s.do(ctx, http.MethodGet, "/api/projects", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Project returns one project with its tasks, progress and stats.
func (s *Session) Project(ctx context.Context, id uint) (*models.Project, error) {
	var p models.Project
	if err := s.do(ctx, http.MethodGet, idPath("/api/projects", id), nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Session) CreateProject(ctx context.Context, in ProjectInput) (*models.Project, error) {
	var p models.Project
	if err := s.do(ctx, http.MethodPost, "/api/projects", nil, in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Session) UpdateProject(ctx context.Context, id uint, in ProjectUpdate) (*models.Project, error) {
	var p models.Project
	if err := s.do(ctx, http.MethodPut, idPath("/api/projects", id), nil, in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Session) DeleteProject(ctx context.Context, id uint) error {
	return s.do(ctx, http.MethodDelete, idPath("/api/projects", id), nil, nil, &message{})
}

// ---------------------------------------------------------------------------
// Tasks
// ---------------------------------------------------------------------------

type TaskInput struct {
	Titre       string  `json:"titre"`
	Description *string `json:"description,omitempty"`
	Etat        string  `json:"etat"`
	Deadline    *string `json:"deadline,omitempty"`
	ProjectID   uint    `json:"project_id"`
	AssignedTo  *uint   `json:"assigned_to,omitempty"`
}

// TaskUpdate sends only the fields that are set. Unassign sends an explicit
// null assignee and wins over AssignedTo.
type TaskUpdate struct {
	Titre       *string
	Description *string
	Etat        *string
	Deadline    *string
	AssignedTo  *uint
	Unassign    bool
}

func (u TaskUpdate) MarshalJSON() ([]byte, error) {
	body := map[string]any{}
	if u.Titre != nil {
		body["titre"] = *u.Titre
	}
	if u.Description != nil {
		body["description"] = *u.Description
	}
	if u.Etat != nil {
		body["etat"] = *u.Etat
	}
	if u.Deadline != nil {
		body["deadline"] = *u.Deadline
	}
	switch {
	case u.Unassign:
		body["assigned_to"] = nil
	case u.AssignedTo != nil:
		body["assigned_to"] = *u.AssignedTo
	}
	return json.Marshal(body)
}

// MoveTo is the update a kanban drag issues: the state and nothing else.
func MoveTo(state models.TaskState) TaskUpdate {
	etat := string(state)
	return TaskUpdate{Etat: &etat}
}

// TaskFilter narrows Tasks. Zero values are not sent.
type TaskFilter struct {
	ProjectID  uint
	AssignedTo uint
	Etat       models.TaskState
}

func (f TaskFilter) values() url.Values {
	v := url.Values{}
	if f.ProjectID != 0 {
		v.Set("project_id", strconv.FormatUint(uint64(f.ProjectID), 10))
	}
	if f.AssignedTo != 0 {
		v.Set("assigned_to", strconv.FormatUint(uint64(f.AssignedTo), 10))
	}
	if f.Etat != "" {
		v.Set("etat", string(f.Etat))
	}
	return v
}

func (s *Session) Tasks(ctx context.Context, f TaskFilter) ([]models.Task, error) {
	var out []models.Task
	if err := s.do(ctx, http.MethodGet, "/api/tasks", f.values(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Session) Task(ctx context.Context, id uint) (*models.Task, error) {
	var t models.Task
	if err := s.do(ctx, http.MethodGet, idPath("/api/tasks", id), nil, nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Session) CreateTask(ctx context.Context, in TaskInput) (*models.Task, error) {
	var t models.Task
	if err := s.do(ctx, http.MethodPost, "/api/tasks", nil, in, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Session) UpdateTask(ctx context.Context, id uint, in TaskUpdate) (*models.Task, error) {
	var t models.Task
	if err := s.do(ctx, http.MethodPut, idPath("/api/tasks", id), nil, in, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Session) DeleteTask(ctx context.Context, id uint) error {
	return s.do(ctx, http.MethodDelete, idPath("/api/tasks", id), nil, nil, &message{})
}

// ---------------------------------------------------------------------------
// Comments
// ---------------------------------------------------------------------------

type commentInput struct {
	Content string `json:"content"`
}

func (s *Session) Comments(ctx context.Context, taskID uint) ([]models.Comment, error) {
	var out []models.Comment
	if err := s.do(ctx, http.MethodGet, idPath("/api/tasks", taskID)+"/comments", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Session) CreateComment(ctx context.Context, taskID uint, content string) (*models.Comment, error) {
	var c models.Comment
	path := idPath("/api/tasks", taskID) + "/comments"
	if err := s.do(ctx, http.MethodPost, path, nil, commentInput{Content: content}, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Session) UpdateComment(ctx context.Context, id uint, content string) (*models.Comment, error) {
	var c models.Comment
	if err := s.do(ctx, http.MethodPut, idPath("/api/comments", id), nil, commentInput{Content: content}, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Session) DeleteComment(ctx context.Context, id uint) error {
	return s.do(ctx, http.MethodDelete, idPath("/api/comments", id), nil, nil, &message{})
}

// ---------------------------------------------------------------------------
// Admin reporting
// ---------------------------------------------------------------------------

type Dashboard struct {
	Stats          reporting.GlobalCounts `json:"stats"`
	RecentProjects []models.Project       `json:"recent_projects"`
	OverdueTasks   []models.Task          `json:"overdue_tasks"`
}

type GlobalStats struct {
	MonthlyStats []reporting.MonthlyStat `json:"monthly_stats"`
	UserWorkload []reporting.Workload    `json:"user_workload"`
}

func (s *Session) AdminDashboard(ctx context.Context) (*Dashboard, error) {
	var d Dashboard
	if err := s.do(ctx, http.MethodGet, "/api/admin", nil, nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *Session) AdminStats(ctx context.Context) (*GlobalStats, error) {
	var g GlobalStats
	if err := s.do(ctx, http.MethodGet, "/api/admin/stats", nil, nil, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *Session) AdminUsers(ctx context.Context) ([]reporting.UserWithCounts, error) {
	var out []reporting.UserWithCounts
	if err := s.do(ctx, http.MethodGet, "/api/admin/users", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Session) AdminUserStats(ctx context.Context, userID uint) (*reporting.UserStats, error) {
	var out reporting.UserStats
	if err := s.do(ctx, http.MethodGet, idPath("/api/admin/users", userID)+"/stats", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) AdminProjects(ctx context.Context) ([]reporting.ProjectWithCount, error) {
	var out []reporting.ProjectWithCount
	if err := s.do(ctx, http.MethodGet, "/api/admin/projects", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Session) AdminProjectStats(ctx context.Context, projectID uint) (*reporting.ProjectStats, error) {
	var out reporting.ProjectStats
	if err := s.do(ctx, http.MethodGet, idPath("/api/admin/projects", projectID)+"/stats", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) AdminTasks(ctx context.Context) ([]models.Task, error) {
	var out []models.Task
	if err := s.do(ctx, http.MethodGet, "/api/admin/tasks", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
