package models

import (
	"time"

	"gorm.io/gorm"
)

// TaskState represents the state of a task. Stored and wire values are the
// French labels used by the client.
type TaskState string

const (
	TaskPending    TaskState = "en attente"
	TaskInProgress TaskState = "en cours"
	TaskDone       TaskState = "terminée"
)

// TaskStates lists the states in board order.
func TaskStates() []TaskState {
	return []TaskState{TaskPending, TaskInProgress, TaskDone}
}

// ParseTaskState reports whether s is exactly one of the task states.
func ParseTaskState(s string) (TaskState, bool) {
	switch st := TaskState(s); st {
	case TaskPending, TaskInProgress, TaskDone:
		return st, true
	}
	return "", false
}

// IsTerminal reports whether the state denotes completion.
func (s TaskState) IsTerminal() bool {
	return s == TaskDone
}

// Label returns the capitalised display name.
func (s TaskState) Label() string {
	switch s {
	case TaskPending:
		return "En attente"
	case TaskInProgress:
		return "En cours"
	case TaskDone:
		return "Terminée"
	}
	return string(s)
}

// Color is the badge colour the client uses for the state.
func (s TaskState) Color() string {
	switch s {
	case TaskPending:
		return "red"
	case TaskInProgress:
		return "yellow"
	case TaskDone:
		return "green"
	}
	return "gray"
}

// Bucket maps the state onto the English keys used by aggregate reports.
func (s TaskState) Bucket() string {
	switch s {
	case TaskPending:
		return "pending"
	case TaskInProgress:
		return "in_progress"
	case TaskDone:
		return "done"
	}
	return ""
}

// Task is a unit of work inside a project
type Task struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Titre       string     `json:"titre" gorm:"not null"`
	Description *string    `json:"description"`
	Etat        TaskState  `json:"etat" gorm:"not null;default:'en attente';index"`
	Deadline    *time.Time `json:"deadline"`
	ProjectID   uint       `json:"project_id" gorm:"not null;index"`
	AssignedTo  *uint      `json:"assigned_to" gorm:"index"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Project      *Project  `json:"project,omitempty" gorm:"foreignKey:ProjectID"`
	AssignedUser *User     `json:"assigned_user,omitempty" gorm:"foreignKey:AssignedTo"`
	Comments     []Comment `json:"comments,omitempty" gorm:"foreignKey:TaskID"`

	// Derived on read, never persisted.
	EtatLabel         string         `json:"etat_label" gorm:"-"`
	EtatColor         string         `json:"etat_color" gorm:"-"`
	IsOverdue         bool           `json:"is_overdue" gorm:"-"`
	IsUrgent          bool           `json:"is_urgent" gorm:"-"`
	DaysUntilDeadline *int           `json:"days_until_deadline" gorm:"-"`
	DeadlineStatus    DeadlineStatus `json:"deadline_status" gorm:"-"`
}

// TableName specifies the table name for Task Model
func (Task) TableName() string {
	return "tasks"
}

// Overdue reports whether the deadline has passed and the task is not done.
func (t *Task) Overdue(now time.Time) bool {
	if t.Deadline == nil || t.Etat.IsTerminal() {
		return false
	}
	return t.Deadline.Before(now)
}

// Urgent reports whether the deadline falls within three days (or has
// already passed) and the task is not done.
func (t *Task) Urgent(now time.Time) bool {
	if t.Deadline == nil || t.Etat.IsTerminal() {
		return false
	}
	return DaysUntil(*t.Deadline, now) <= urgentWithinDays
}

// DeadlineStatusAt classifies the deadline; the checks are priority ordered.
func (t *Task) DeadlineStatusAt(now time.Time) DeadlineStatus {
	if t.Deadline == nil {
		return DeadlineNone
	}
	if t.Etat.IsTerminal() {
		return DeadlineCompleted
	}
	days := DaysUntil(*t.Deadline, now)
	switch {
	case days < 0:
		return DeadlineOverdue
	case days <= urgentWithinDays:
		return DeadlineUrgent
	case days <= soonWithinDays:
		return DeadlineSoon
	}
	return DeadlineNormal
}

// Decorate fills the derived fields relative to now.
func (t *Task) Decorate(now time.Time) {
	t.EtatLabel = t.Etat.Label()
	t.EtatColor = t.Etat.Color()
	t.IsOverdue = t.Overdue(now)
	t.IsUrgent = t.Urgent(now)
	t.DeadlineStatus = t.DeadlineStatusAt(now)
	t.DaysUntilDeadline = nil
	if t.Deadline != nil {
		d := DaysUntil(*t.Deadline, now)
		t.DaysUntilDeadline = &d
	}
}

func (t *Task) AfterFind(tx *gorm.DB) error {
	t.Decorate(Clock())
	return nil
}

func (t *Task) AfterSave(tx *gorm.DB) error {
	t.Decorate(Clock())
	return nil
}
