// Package tui is a terminal kanban board for one project's tasks.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"project-management-api/internal/client"
	"project-management-api/internal/models"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// TaskService is the part of client.Session the board needs.
type TaskService interface {
	Tasks(ctx context.Context, f client.TaskFilter) ([]models.Task, error)
	UpdateTask(ctx context.Context, id uint, in client.TaskUpdate) (*models.Task, error)
}

var _ TaskService = (*client.Session)(nil)

const requestTimeout = 10 * time.Second

// Column order follows the task lifecycle.
var columnStates = [3]models.TaskState{models.TaskPending, models.TaskInProgress, models.TaskDone}

func columnOf(state models.TaskState) int {
	for i, s := range columnStates {
		if s == state {
			return i
		}
	}
	return 0
}

// Messages
type tasksLoadedMsg struct{ tasks []models.Task }
type taskMovedMsg struct{ task models.Task }
type errMsg struct{ err error }

// Board is the bubbletea model of the kanban view.
type Board struct {
	svc       TaskService
	projectID uint
	keys      KeyMap
	help      help.Model

	columns [3][]models.Task
	col     int
	row     int

	width  int
	height int

	loading bool
	status  string
}

// NewBoard returns a board for projectID backed by svc.
func NewBoard(svc TaskService, projectID uint) Board {
	return Board{
		svc:       svc,
		projectID: projectID,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		loading:   true,
	}
}

func (b Board) Init() tea.Cmd {
	return b.loadTasks()
}

func (b Board) loadTasks() tea.Cmd {
	svc, projectID := b.svc, b.projectID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		tasks, err := svc.Tasks(ctx, client.TaskFilter{ProjectID: projectID})
		if err != nil {
			return errMsg{err: err}
		}
		return tasksLoadedMsg{tasks: tasks}
	}
}

// moveTask shifts the selected card one column. The request carries only
// the new state, the same update the task edit form sends for a state change.
func (b Board) moveTask(direction int) tea.Cmd {
	task, ok := b.selected()
	if !ok {
		return nil
	}
	target := b.col + direction
	if target < 0 || target >= len(columnStates) {
		return nil
	}

	svc, id, state := b.svc, task.ID, columnStates[target]
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		updated, err := svc.UpdateTask(ctx, id, client.MoveTo(state))
		if err != nil {
			return errMsg{err: err}
		}
		return taskMovedMsg{task: *updated}
	}
}

func (b Board) selected() (models.Task, bool) {
	col := b.columns[b.col]
	if b.row < 0 || b.row >= len(col) {
		return models.Task{}, false
	}
	return col[b.row], true
}

func (b *Board) clampRow() {
	n := len(b.columns[b.col])
	if b.row >= n {
		b.row = n - 1
	}
	if b.row < 0 {
		b.row = 0
	}
}

func (b *Board) setTasks(tasks []models.Task) {
	b.columns = [3][]models.Task{}
	for _, t := range tasks {
		i := columnOf(t.Etat)
		b.columns[i] = append(b.columns[i], t)
	}
	b.clampRow()
}

// place replaces task wherever it currently sits and selects it in its new
// column.
func (b *Board) place(task models.Task) {
	for i := range b.columns {
		kept := b.columns[i][:0]
		for _, t := range b.columns[i] {
			if t.ID != task.ID {
				kept = append(kept, t)
			}
		}
		b.columns[i] = kept
	}
	b.col = columnOf(task.Etat)
	b.columns[b.col] = append(b.columns[b.col], task)
	b.row = len(b.columns[b.col]) - 1
}

func describeError(err error) string {
	apiErr, ok := client.AsAPIError(err)
	if !ok {
		return err.Error()
	}
	switch {
	case apiErr.IsUnauthenticated():
		return "Session expirée, veuillez vous reconnecter."
	case apiErr.IsForbidden():
		return "Vous n'êtes pas autorisé à modifier cette tâche."
	case apiErr.IsValidation():
		if msg := apiErr.FieldError("etat"); msg != "" {
			return msg
		}
	}
	return apiErr.Message
}

func (b Board) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.width, b.height = msg.Width, msg.Height
		b.help.Width = msg.Width
		return b, nil

	case tasksLoadedMsg:
		b.loading = false
		b.status = ""
		b.setTasks(msg.tasks)
		return b, nil

	case taskMovedMsg:
		b.place(msg.task)
		b.status = fmt.Sprintf("« %s » → %s", msg.task.Titre, msg.task.Etat.Label())
		return b, nil

	case errMsg:
		b.loading = false
		b.status = describeError(msg.err)
		if apiErr, ok := client.AsAPIError(msg.err); ok && apiErr.IsUnauthenticated() {
			return b, tea.Quit
		}
		return b, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, b.keys.Quit):
			return b, tea.Quit
		case key.Matches(msg, b.keys.Help):
			b.help.ShowAll = !b.help.ShowAll
		case key.Matches(msg, b.keys.Up):
			if b.row > 0 {
				b.row--
			}
		case key.Matches(msg, b.keys.Down):
			if b.row < len(b.columns[b.col])-1 {
				b.row++
			}
		case key.Matches(msg, b.keys.Left):
			if b.col > 0 {
				b.col--
				b.clampRow()
			}
		case key.Matches(msg, b.keys.Right):
			if b.col < len(columnStates)-1 {
				b.col++
				b.clampRow()
			}
		case key.Matches(msg, b.keys.MoveLeft):
			return b, b.moveTask(-1)
		case key.Matches(msg, b.keys.MoveRight):
			return b, b.moveTask(1)
		case key.Matches(msg, b.keys.Refresh):
			b.loading = true
			return b, b.loadTasks()
		}
	}
	return b, nil
}

var stateColors = map[string]lipgloss.Color{
	"red":    lipgloss.Color("1"),
	"yellow": lipgloss.Color("3"),
	"green":  lipgloss.Color("2"),
	"gray":   lipgloss.Color("8"),
}

var (
	borderColor   = lipgloss.Color("8")
	activeColor   = lipgloss.Color("12")
	overdueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	urgentStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	subtleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	statusStyle   = lipgloss.NewStyle().Italic(true)
)

func (b Board) renderCard(t models.Task, width int, selected bool) string {
	lines := []string{t.Titre}
	if t.AssignedUser != nil {
		lines = append(lines, subtleStyle.Render("@ "+t.AssignedUser.Name))
	}
	if t.Deadline != nil {
		due := t.Deadline.Format("02/01/2006")
		switch {
		case t.IsOverdue:
			lines = append(lines, overdueStyle.Render("⚠ "+due))
		case t.IsUrgent:
			lines = append(lines, urgentStyle.Render("⏰ "+due))
		default:
			lines = append(lines, subtleStyle.Render(due))
		}
	}
	card := lipgloss.NewStyle().Width(width).Render(strings.Join(lines, "\n"))
	if selected {
		card = selectedStyle.Render(card)
	}
	return card
}

func (b Board) View() string {
	if b.loading {
		return "Chargement des tâches..."
	}

	colWidth := 30
	if b.width > 0 {
		colWidth = max((b.width-6)/len(columnStates), 20)
	}

	cols := make([]string, 0, len(columnStates))
	for i, state := range columnStates {
		header := lipgloss.NewStyle().
			Bold(true).
			Foreground(stateColors[state.Color()]).
			Width(colWidth).
			Align(lipgloss.Center).
			Render(fmt.Sprintf("%s (%d)", state.Label(), len(b.columns[i])))

		cards := []string{header}
		for j, t := range b.columns[i] {
			cards = append(cards, b.renderCard(t, colWidth-2, i == b.col && j == b.row))
		}

		border := borderColor
		if i == b.col {
			border = activeColor
		}
		cols = append(cols, lipgloss.NewStyle().
			Width(colWidth).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Render(strings.Join(cards, "\n")))
	}

	out := lipgloss.JoinHorizontal(lipgloss.Top, cols...)
	if b.status != "" {
		out += "\n" + statusStyle.Render(b.status)
	}
	return out + "\n" + b.help.View(b.keys)
}

// Run starts the board in the alternate screen and blocks until it exits.
func Run(svc TaskService, projectID uint) error {
	_, err := tea.NewProgram(NewBoard(svc, projectID), tea.WithAltScreen()).Run()
	return err
}
