// Package reporting computes the aggregates shown on the admin dashboard.
//
// Every function takes the database handle and, when the result depends on
// the current time, an explicit now. Task states are always compared
// through the models.TaskState constants and reported under their bucket
// names (pending, in_progress, done).
package reporting

import (
	"fmt"
	"sort"
	"time"

	"project-management-api/internal/models"

	"gorm.io/gorm"
)

const (
	RecentProjectsLimit = 5
	RecentTasksLimit    = 10
)

// GlobalCounts is the headline block of the dashboard.
type GlobalCounts struct {
	TotalUsers      int64 `json:"total_users"`
	TotalProjects   int64 `json:"total_projects"`
	TotalTasks      int64 `json:"total_tasks"`
	TotalComments   int64 `json:"total_comments"`
	PendingTasks    int64 `json:"pending_tasks"`
	InProgressTasks int64 `json:"in_progress_tasks"`
	CompletedTasks  int64 `json:"completed_tasks"`
}

// StateCounts counts tasks per bucket.
type StateCounts struct {
	Pending    int64 `json:"pending"`
	InProgress int64 `json:"in_progress"`
	Done       int64 `json:"done"`
}

func (s *StateCounts) add(state models.TaskState, n int64) {
	switch state.Bucket() {
	case "pending":
		s.Pending += n
	case "in_progress":
		s.InProgress += n
	case "done":
		s.Done += n
	}
}

// Total is the number of tasks in a known state.
func (s StateCounts) Total() int64 {
	return s.Pending + s.InProgress + s.Done
}

type stateRow struct {
	Etat  models.TaskState
	Total int64
}

// countByState groups the tasks selected by scope by state.
func countByState(scope *gorm.DB) (StateCounts, error) {
	var rows []stateRow
	if err := scope.Model(&models.Task{}).
		Select("etat, COUNT(*) AS total").
		Group("etat").
		Scan(&rows).Error; err != nil {
		return StateCounts{}, err
	}
	var out StateCounts
	for _, r := range rows {
		out.add(r.Etat, r.Total)
	}
	return out, nil
}

// Counts returns row totals for every table plus tasks per state.
func Counts(db *gorm.DB) (GlobalCounts, error) {
	var c GlobalCounts
	tables := []struct {
		model any
		dst   *int64
	}{
		{&models.User{}, &c.TotalUsers},
		{&models.Project{}, &c.TotalProjects},
		{&models.Task{}, &c.TotalTasks},
		{&models.Comment{}, &c.TotalComments},
	}
	for _, t := range tables {
		if err := db.Model(t.model).Count(t.dst).Error; err != nil {
			return c, fmt.Errorf("count: %w", err)
		}
	}

	states, err := countByState(db)
	if err != nil {
		return c, fmt.Errorf("count by state: %w", err)
	}
	c.PendingTasks = states.Pending
	c.InProgressTasks = states.InProgress
	c.CompletedTasks = states.Done
	return c, nil
}

// RecentProjects returns the newest projects with their owner and tasks.
func RecentProjects(db *gorm.DB, limit int) ([]models.Project, error) {
	projects := []models.Project{}
	err := db.Preload("Owner").
		Preload("Tasks").
		Order("created_at desc").
		Order("id desc").
		Limit(limit).
		Find(&projects).Error
	return projects, err
}

// OverdueTasks returns every task whose deadline has passed at now and that
// is not done, with project and assignee.
func OverdueTasks(db *gorm.DB, now time.Time) ([]models.Task, error) {
	var candidates []models.Task
	err := db.Preload("Project").
		Preload("AssignedUser").
		Where("deadline IS NOT NULL").
		Where("etat <> ?", models.TaskDone).
		Order("deadline").
		Find(&candidates).Error
	if err != nil {
		return nil, err
	}

	out := []models.Task{}
	for i := range candidates {
		if candidates[i].Overdue(now) {
			out = append(out, candidates[i])
		}
	}
	return out, nil
}

// UserWithCounts is a user row of the admin user list.
type UserWithCounts struct {
	models.User
	ProjectsCount      int64 `json:"projects_count"`
	AssignedTasksCount int64 `json:"assigned_tasks_count"`
}

type idCount struct {
	ID    uint
	Total int64
}

func countsBy(db *gorm.DB, model any, column string) (map[uint]int64, error) {
	var rows []idCount
	err := db.Model(model).
		Select(column + " AS id, COUNT(*) AS total").
		Where(column + " IS NOT NULL").
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uint]int64, len(rows))
	for _, r := range rows {
		out[r.ID] = r.Total
	}
	return out, nil
}

// Users lists every user, newest first, with owned project and assigned
// task counts.
func Users(db *gorm.DB) ([]UserWithCounts, error) {
	var users []models.User
	if err := db.Order("created_at desc").Order("id desc").Find(&users).Error; err != nil {
		return nil, err
	}
	projects, err := countsBy(db, &models.Project{}, "owner_id")
	if err != nil {
		return nil, err
	}
	tasks, err := countsBy(db, &models.Task{}, "assigned_to")
	if err != nil {
		return nil, err
	}

	out := make([]UserWithCounts, 0, len(users))
	for _, u := range users {
		out = append(out, UserWithCounts{
			User:               u,
			ProjectsCount:      projects[u.ID],
			AssignedTasksCount: tasks[u.ID],
		})
	}
	return out, nil
}

// UserStats is the per-user drill-down.
type UserStats struct {
	User          models.User   `json:"user"`
	ProjectsOwned int64         `json:"projects_owned"`
	TasksAssigned int64         `json:"tasks_assigned"`
	TasksByStatus StateCounts   `json:"tasks_by_status"`
	RecentTasks   []models.Task `json:"recent_tasks"`
}

// StatsForUser returns gorm.ErrRecordNotFound when the user does not exist.
func StatsForUser(db *gorm.DB, userID uint) (*UserStats, error) {
	var s UserStats
	if err := db.First(&s.User, userID).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Project{}).Where("owner_id = ?", userID).Count(&s.ProjectsOwned).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Task{}).Where("assigned_to = ?", userID).Count(&s.TasksAssigned).Error; err != nil {
		return nil, err
	}

	states, err := countByState(db.Where("assigned_to = ?", userID))
	if err != nil {
		return nil, err
	}
	s.TasksByStatus = states

	s.RecentTasks = []models.Task{}
	err = db.Preload("Project").
		Where("assigned_to = ?", userID).
		Order("created_at desc").
		Order("id desc").
		Limit(RecentTasksLimit).
		Find(&s.RecentTasks).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ProjectWithCount is a project row of the admin project list.
type ProjectWithCount struct {
	models.Project
	TasksCount int `json:"tasks_count"`
}

// Projects lists every project, newest first, with owner and tasks.
func Projects(db *gorm.DB) ([]ProjectWithCount, error) {
	var projects []models.Project
	err := db.Preload("Owner").
		Preload("Tasks").
		Order("created_at desc").
		Order("id desc").
		Find(&projects).Error
	if err != nil {
		return nil, err
	}

	out := make([]ProjectWithCount, 0, len(projects))
	for _, p := range projects {
		out = append(out, ProjectWithCount{Project: p, TasksCount: len(p.Tasks)})
	}
	return out, nil
}

// ProjectStats is the per-project drill-down.
type ProjectStats struct {
	Project            models.Project `json:"project"`
	TotalTasks         int            `json:"total_tasks"`
	TasksByStatus      StateCounts    `json:"tasks_by_status"`
	ProgressPercentage float64        `json:"progress_percentage"`
	OverdueTasks       int            `json:"overdue_tasks"`
}

// StatsForProject returns gorm.ErrRecordNotFound when the project does not exist.
func StatsForProject(db *gorm.DB, projectID uint, now time.Time) (*ProjectStats, error) {
	var s ProjectStats
	err := db.Preload("Owner").
		Preload("Tasks").
		Preload("Tasks.AssignedUser").
		First(&s.Project, projectID).Error
	if err != nil {
		return nil, err
	}

	s.TotalTasks = len(s.Project.Tasks)
	for i := range s.Project.Tasks {
		t := &s.Project.Tasks[i]
		s.TasksByStatus.add(t.Etat, 1)
		if t.Overdue(now) {
			s.OverdueTasks++
		}
	}
	s.ProgressPercentage = models.Progress(int(s.TasksByStatus.Done), s.TotalTasks)
	return &s, nil
}

// AllTasks lists every task, newest first, with project and assignee.
func AllTasks(db *gorm.DB) ([]models.Task, error) {
	tasks := []models.Task{}
	err := db.Preload("Project").
		Preload("AssignedUser").
		Order("created_at desc").
		Order("id desc").
		Find(&tasks).Error
	return tasks, err
}

// MonthlyStat counts tasks created in one calendar month.
type MonthlyStat struct {
	Year           int `json:"year"`
	Month          int `json:"month"`
	TotalTasks     int `json:"total_tasks"`
	CompletedTasks int `json:"completed_tasks"`
}

// MonthlyTaskStats groups the tasks created during now's year (UTC) by
// month, in chronological order.
func MonthlyTaskStats(db *gorm.DB, now time.Time) ([]MonthlyStat, error) {
	var tasks []models.Task
	if err := db.Select("id", "etat", "created_at").Find(&tasks).Error; err != nil {
		return nil, err
	}

	year := now.UTC().Year()
	byMonth := map[int]*MonthlyStat{}
	for _, t := range tasks {
		created := t.CreatedAt.UTC()
		if created.Year() != year {
			continue
		}
		m := int(created.Month())
		stat, ok := byMonth[m]
		if !ok {
			stat = &MonthlyStat{Year: year, Month: m}
			byMonth[m] = stat
		}
		stat.TotalTasks++
		if t.Etat.IsTerminal() {
			stat.CompletedTasks++
		}
	}

	out := make([]MonthlyStat, 0, len(byMonth))
	for _, s := range byMonth {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, nil
}

// Workload is a user's share of assigned, unfinished work.
type Workload struct {
	ID              uint        `json:"id"`
	Name            string      `json:"name"`
	Email           string      `json:"email"`
	Role            models.Role `json:"role"`
	TotalTasks      int64       `json:"total_tasks"`
	PendingTasks    int64       `json:"pending_tasks"`
	InProgressTasks int64       `json:"in_progress_tasks"`
}

type workloadRow struct {
	AssignedTo uint
	Etat       models.TaskState
	Total      int64
}

// UserWorkload returns one entry per user, ordered by id.
func UserWorkload(db *gorm.DB) ([]Workload, error) {
	var users []models.User
	if err := db.Order("id").Find(&users).Error; err != nil {
		return nil, err
	}

	var rows []workloadRow
	err := db.Model(&models.Task{}).
		Select("assigned_to, etat, COUNT(*) AS total").
		Where("assigned_to IS NOT NULL").
		Group("assigned_to, etat").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	perUser := map[uint]*StateCounts{}
	for _, r := range rows {
		sc, ok := perUser[r.AssignedTo]
		if !ok {
			sc = &StateCounts{}
			perUser[r.AssignedTo] = sc
		}
		sc.add(r.Etat, r.Total)
	}

	out := make([]Workload, 0, len(users))
	for _, u := range users {
		w := Workload{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
		if sc, ok := perUser[u.ID]; ok {
			w.TotalTasks = sc.Total()
			w.PendingTasks = sc.Pending
			w.InProgressTasks = sc.InProgress
		}
		out = append(out, w)
	}
	return out, nil
}
