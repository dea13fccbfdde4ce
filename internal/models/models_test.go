package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 4, 15, 14, 30, 0, 0, time.UTC)

func tasksWith(states ...TaskState) []Task {
	out := make([]Task, 0, len(states))
	for _, s := range states {
		out = append(out, Task{Etat: s})
	}
	return out
}

func TestProgress(t *testing.T) {
	require.Zero(t, Progress(0, 0))
	require.Equal(t, 100.0, Progress(3, 3))
	require.Equal(t, 33.33, Progress(1, 3))
	require.Equal(t, 66.67, Progress(2, 3))
}

func TestStatusFromTasks(t *testing.T) {
	cases := []struct {
		name  string
		tasks []Task
		want  ProjectStatus
	}{
		{"no tasks", nil, ProjectPending},
		{"all done", tasksWith(TaskDone, TaskDone), ProjectCompleted},
		{"some in progress", tasksWith(TaskDone, TaskInProgress, TaskPending), ProjectInProgress},
		{"done and pending", tasksWith(TaskDone, TaskPending), ProjectPending},
		{"only pending", tasksWith(TaskPending), ProjectPending},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, StatusFromTasks(tc.tasks))
		})
	}
}

func TestProjectDecorate(t *testing.T) {
	deadline := testNow.AddDate(0, 0, -1)
	p := Project{Status: ProjectPending, Deadline: &deadline}

	p.Decorate(testNow)
	require.Equal(t, "En attente", p.StatusLabel)
	require.Nil(t, p.ProgressPercentage, "tasks not loaded")

	p.Tasks = tasksWith(TaskDone, TaskInProgress)
	p.Decorate(testNow)
	require.Equal(t, 50.0, *p.ProgressPercentage)
	require.Equal(t, ProjectInProgress, *p.CalculatedStatus)
	require.True(t, *p.IsOverdue)
	require.Equal(t, -1, *p.Stats.DaysUntilDeadline)

	p.Tasks = tasksWith(TaskDone, TaskDone)
	p.Decorate(testNow)
	require.False(t, *p.IsOverdue)
}

func TestTaskDerivations(t *testing.T) {
	at := func(days int) *time.Time {
		d := testNow.AddDate(0, 0, days)
		return &d
	}
	cases := []struct {
		name    string
		task    Task
		overdue bool
		urgent  bool
		status  DeadlineStatus
	}{
		{"no deadline", Task{Etat: TaskPending}, false, false, DeadlineNone},
		{"done past deadline", Task{Etat: TaskDone, Deadline: at(-5)}, false, false, DeadlineCompleted},
		{"overdue", Task{Etat: TaskInProgress, Deadline: at(-1)}, true, true, DeadlineOverdue},
		{"due today", Task{Etat: TaskPending, Deadline: at(0)}, false, true, DeadlineUrgent},
		{"urgent", Task{Etat: TaskPending, Deadline: at(3)}, false, true, DeadlineUrgent},
		{"soon", Task{Etat: TaskPending, Deadline: at(6)}, false, false, DeadlineSoon},
		{"normal", Task{Etat: TaskPending, Deadline: at(30)}, false, false, DeadlineNormal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tk := tc.task
			tk.Decorate(testNow)
			require.Equal(t, tc.overdue, tk.IsOverdue)
			require.Equal(t, tc.urgent, tk.IsUrgent)
			require.Equal(t, tc.status, tk.DeadlineStatus)
			require.Equal(t, tk.Etat.Label(), tk.EtatLabel)
			if tk.Deadline == nil {
				require.Nil(t, tk.DaysUntilDeadline)
			} else {
				require.NotNil(t, tk.DaysUntilDeadline)
			}
		})
	}
}

func TestDaysUntil_CalendarDays(t *testing.T) {
	late := time.Date(2025, 4, 15, 23, 59, 0, 0, time.UTC)
	early := time.Date(2025, 4, 16, 0, 1, 0, 0, time.UTC)
	require.Equal(t, 1, DaysUntil(early, late))
	require.Equal(t, -1, DaysUntil(late, early))
	require.Zero(t, DaysUntil(testNow, testNow.Add(time.Hour)))
}

func TestParseDeadline(t *testing.T) {
	for _, s := range []string{"2025-10-30", "2025-10-30T10:00:00Z", "2025-10-30T10:00:00+02:00", "2025-10-30 10:00:00", "30 Oct 2025"} {
		d, ok := ParseDeadline(s)
		require.True(t, ok, s)
		require.Equal(t, time.UTC, d.Location(), s)
	}
	_, ok := ParseDeadline("next week")
	require.False(t, ok)
	_, ok = ParseDeadline("  ")
	require.False(t, ok)

	d, ok := ParseDate("2025-10-30T22:15:00Z")
	require.True(t, ok)
	require.Equal(t, time.Date(2025, 10, 30, 0, 0, 0, 0, time.UTC), d)
}

func TestTaskStateVocabulary(t *testing.T) {
	for _, s := range TaskStates() {
		parsed, ok := ParseTaskState(string(s))
		require.True(t, ok)
		require.Equal(t, s, parsed)
		require.NotEmpty(t, s.Bucket())
	}
	_, ok := ParseTaskState("done")
	require.False(t, ok)
	require.Equal(t, "done", TaskDone.Bucket())
	require.Equal(t, "green", TaskDone.Color())
	require.True(t, TaskDone.IsTerminal())
}

func TestRoles(t *testing.T) {
	require.Len(t, Roles(), 11)
	r, ok := ParseRole(" Project_Manager ")
	require.True(t, ok)
	require.Equal(t, RoleProjectManager, r)
	require.Equal(t, "Chef de Projet", r.Label())
	require.True(t, RoleAdmin.IsAdmin())
	require.False(t, RoleHR.IsAdmin())

	u := &User{Role: RoleHR}
	u.Decorate()
	require.Equal(t, "Ressources Humaines", u.RoleLabel)
	var nilUser *User
	require.False(t, nilUser.IsAdmin())
}
