package models

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProjectStatus represents the status of a project
type ProjectStatus string

const (
	ProjectPending    ProjectStatus = "pending"
	ProjectInProgress ProjectStatus = "in_progress"
	ProjectCompleted  ProjectStatus = "completed"
)

// ParseProjectStatus reports whether s is one of the project statuses.
func ParseProjectStatus(s string) (ProjectStatus, bool) {
	switch st := ProjectStatus(s); st {
	case ProjectPending, ProjectInProgress, ProjectCompleted:
		return st, true
	}
	return "", false
}

// Label returns the French display name.
func (s ProjectStatus) Label() string {
	switch s {
	case ProjectPending:
		return "En attente"
	case ProjectInProgress:
		return "En cours"
	case ProjectCompleted:
		return "Terminé"
	}
	return string(s)
}

// ProjectStats summarises a project's tasks.
type ProjectStats struct {
	TotalTasks         int     `json:"total_tasks"`
	CompletedTasks     int     `json:"completed_tasks"`
	InProgressTasks    int     `json:"in_progress_tasks"`
	PendingTasks       int     `json:"pending_tasks"`
	ProgressPercentage float64 `json:"progress_percentage"`
	IsOverdue          bool    `json:"is_overdue"`
	DaysUntilDeadline  *int    `json:"days_until_deadline"`
}

// Project is a unit of work owned by a single user.
//
// Status is the value declared by the owner. CalculatedStatus, derived from
// the task states, is authoritative for every computation.
type Project struct {
	ID          uint             `json:"id" gorm:"primaryKey"`
	Name        string           `json:"name" gorm:"not null"`
	Description *string          `json:"description"`
	Deadline    *time.Time       `json:"deadline"`
	Budget      *decimal.Decimal `json:"budget" gorm:"type:decimal(12,2)"`
	Status      ProjectStatus    `json:"status" gorm:"not null;default:'pending'"`
	OwnerID     uint             `json:"owner_id" gorm:"not null;index"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`

	Owner *User  `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Tasks []Task `json:"tasks" gorm:"foreignKey:ProjectID"`

	// Derived from Tasks; only set when the tasks were loaded.
	StatusLabel        string         `json:"status_label" gorm:"-"`
	ProgressPercentage *float64       `json:"progress_percentage,omitempty" gorm:"-"`
	CalculatedStatus   *ProjectStatus `json:"calculated_status,omitempty" gorm:"-"`
	IsOverdue          *bool          `json:"is_overdue,omitempty" gorm:"-"`
	Stats              *ProjectStats  `json:"stats,omitempty" gorm:"-"`
}

// TableName specifies the table name for Project Model
func (Project) TableName() string {
	return "projects"
}

// IsOwnedBy reports whether userID owns the project.
func (p *Project) IsOwnedBy(userID uint) bool {
	return p != nil && p.OwnerID == userID
}

func countStates(tasks []Task) (done, inProgress, pending int) {
	for i := range tasks {
		switch tasks[i].Etat {
		case TaskDone:
			done++
		case TaskInProgress:
			inProgress++
		case TaskPending:
			pending++
		}
	}
	return done, inProgress, pending
}

// Progress returns completed/total × 100 rounded to two decimals, 0 without tasks.
func Progress(completed, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(completed)/float64(total)*100*100) / 100
}

// ProgressPercent computes the completion percentage of the loaded tasks.
func (p *Project) ProgressPercent() float64 {
	done, _, _ := countStates(p.Tasks)
	return Progress(done, len(p.Tasks))
}

// StatusFromTasks derives a project status from its tasks.
func StatusFromTasks(tasks []Task) ProjectStatus {
	done, inProgress, _ := countStates(tasks)
	switch {
	case len(tasks) == 0:
		return ProjectPending
	case done == len(tasks):
		return ProjectCompleted
	case inProgress > 0:
		return ProjectInProgress
	}
	return ProjectPending
}

// Calculated derives the project status from the loaded tasks.
func (p *Project) Calculated() ProjectStatus {
	return StatusFromTasks(p.Tasks)
}

// Overdue reports whether the deadline has passed and the project is not
// completed according to its tasks.
func (p *Project) Overdue(now time.Time) bool {
	if p.Deadline == nil {
		return false
	}
	return p.Deadline.Before(now) && p.Calculated() != ProjectCompleted
}

// StatsAt summarises the loaded tasks relative to now.
func (p *Project) StatsAt(now time.Time) ProjectStats {
	done, inProgress, pending := countStates(p.Tasks)
	s := ProjectStats{
		TotalTasks:         len(p.Tasks),
		CompletedTasks:     done,
		InProgressTasks:    inProgress,
		PendingTasks:       pending,
		ProgressPercentage: Progress(done, len(p.Tasks)),
		IsOverdue:          p.Overdue(now),
	}
	if p.Deadline != nil {
		d := DaysUntil(*p.Deadline, now)
		s.DaysUntilDeadline = &d
	}
	return s
}

// Decorate fills the derived fields relative to now. Task-based fields are
// left empty when the tasks were not loaded.
func (p *Project) Decorate(now time.Time) {
	p.StatusLabel = p.Status.Label()
	p.ProgressPercentage, p.CalculatedStatus, p.IsOverdue, p.Stats = nil, nil, nil, nil
	if p.Tasks == nil {
		return
	}
	stats := p.StatsAt(now)
	calculated := p.Calculated()
	p.ProgressPercentage = &stats.ProgressPercentage
	p.CalculatedStatus = &calculated
	p.IsOverdue = &stats.IsOverdue
	p.Stats = &stats
}

func (p *Project) AfterFind(tx *gorm.DB) error {
	p.Decorate(Clock())
	return nil
}
