package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"project-management-api/internal/apperr"
	"project-management-api/internal/database"
	"project-management-api/internal/models"
	"project-management-api/internal/policy"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const msgTaskForbidden = "Accès non autorisé"

// CreateTaskRequest represents the request payload for creating a task
type CreateTaskRequest struct {
	Titre       string  `json:"titre" binding:"required,max=255"`
	Description *string `json:"description"`
	Etat        string  `json:"etat" binding:"required"`
	Deadline    *string `json:"deadline"`
	ProjectID   uint    `json:"project_id" binding:"required"`
	AssignedTo  *uint   `json:"assigned_to"`
}

// UpdateTaskRequest represents the request payload for updating a task.
// Absent fields are left untouched, explicit nulls clear nullable columns.
type UpdateTaskRequest struct {
	Titre       Optional[string] `json:"titre"`
	Description Optional[string] `json:"description"`
	Etat        Optional[string] `json:"etat"`
	Deadline    Optional[string] `json:"deadline"`
	AssignedTo  Optional[uint]   `json:"assigned_to"`
}

func orderComments(db *gorm.DB) *gorm.DB {
	return db.Order("comments.created_at desc, comments.id desc")
}

// withTaskRelations preloads what every task detail response carries.
func withTaskRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("Project").
		Preload("AssignedUser").
		Preload("Comments", orderComments).
		Preload("Comments.User")
}

func findTask(tx *gorm.DB, id uint) (*models.Task, error) {
	var task models.Task
	if err := withTaskRelations(tx).First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound()
		}
		return nil, apperr.Internal("failed to fetch task", err)
	}
	return &task, nil
}

// loadManagedTask loads the task, then checks that actor may manage the
// project that owns it.
func loadManagedTask(tx *gorm.DB, actor *models.User, id uint) (*models.Task, error) {
	var task models.Task
	if err := tx.Preload("Project").First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound()
		}
		return nil, apperr.Internal("failed to fetch task", err)
	}
	if !policy.CanManageTask(actor, task.Project) {
		return nil, apperr.Forbidden(msgTaskForbidden)
	}
	return &task, nil
}

func userExists(tx *gorm.DB, id uint) (bool, error) {
	var count int64
	err := tx.Model(&models.User{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func parseUintFilter(raw string) (uint, bool) {
	n, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(n), true
}

/*
GetTasks handles GET /api/tasks
Optional query params project_id, etat and assigned_to are exact matches
and combine with AND. A blank value matches NULL, so ?assigned_to= lists
unassigned tasks and a blank project_id or etat matches nothing.
*/
func GetTasks(c *gin.Context) {
	query := withTaskRelations(database.GetDB().WithContext(c.Request.Context())).
		Order("tasks.created_at desc").
		Order("tasks.id desc")

	verr := apperr.Validation()
	for _, column := range []string{"project_id", "assigned_to"} {
		raw, ok := c.GetQuery(column)
		if !ok {
			continue
		}
		if strings.TrimSpace(raw) == "" {
			query = query.Where("tasks." + column + " IS NULL")
			continue
		}
		id, valid := parseUintFilter(raw)
		if !valid {
			verr.Add(column, fmt.Sprintf("Le filtre %s doit être un entier.", column))
			continue
		}
		query = query.Where("tasks."+column+" = ?", id)
	}
	if raw, ok := c.GetQuery("etat"); ok {
		if strings.TrimSpace(raw) == "" {
			query = query.Where("tasks.etat IS NULL")
		} else {
			query = query.Where("tasks.etat = ?", raw)
		}
	}
	if verr.HasFields() {
		apperr.Write(c, verr)
		return
	}

	tasks := []models.Task{}
	if err := query.Find(&tasks).Error; err != nil {
		apperr.Write(c, apperr.Internal("failed to fetch tasks", err))
		return
	}

	c.JSON(http.StatusOK, tasks)
}

// CreateTask handles POST /api/tasks
// The actor must be able to manage the target project.
func CreateTask(c *gin.Context) {
	me, err := actor(c)
	if err != nil {
		apperr.Write(c, err)
		return
	}

	var req CreateTaskRequest
	if err := bind(c, &req); err != nil {
		apperr.Write(c, err)
		return
	}

	task := models.Task{
		Titre:       cleanText(req.Titre),
		Description: optionalText(req.Description),
		ProjectID:   req.ProjectID,
		AssignedTo:  req.AssignedTo,
	}

	verr := apperr.Validation()
	if task.Titre == "" {
		verr.Add("titre", "Le champ titre est obligatoire.")
	}
	etat, ok := models.ParseTaskState(req.Etat)
	if !ok {
		verr.Add("etat", "L'état sélectionné est invalide.")
	}
	task.Etat = etat
	if req.Deadline != nil && strings.TrimSpace(*req.Deadline) != "" {
		d, ok := models.ParseDeadline(*req.Deadline)
		if !ok {
			verr.Add("deadline", "Le champ deadline n'est pas une date valide.")
		}
		task.Deadline = &d
	}

	var created *models.Task
	err = database.GetDB().WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var project models.Project
		err := tx.First(&project, req.ProjectID).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			verr.Add("project_id", "Le projet sélectionné est invalide.")
		case err != nil:
			return apperr.Internal("failed to fetch project", err)
		}
		if req.AssignedTo != nil {
			exists, err := userExists(tx, *req.AssignedTo)
			if err != nil {
				return apperr.Internal("failed to check assignee", err)
			}
			if !exists {
				verr.Add("assigned_to", "L'utilisateur sélectionné est invalide.")
			}
		}
		if verr.HasFields() {
			return verr
		}

		if !policy.CanManageProject(me, &project) {
			return apperr.Forbidden(msgTaskForbidden)
		}

		if err := tx.Omit(clause.Associations).Create(&task).Error; err != nil {
			return apperr.Internal("failed to create task", err)
		}
		created, err = findTaskSummary(tx, task.ID)
		return err
	})
	if err != nil {
		apperr.Write(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// findTaskSummary loads a task with its project and assignee, the shape
// returned after a write.
func findTaskSummary(tx *gorm.DB, id uint) (*models.Task, error) {
	var task models.Task
	if err := tx.Preload("Project").Preload("AssignedUser").First(&task, id).Error; err != nil {
		return nil, apperr.Internal("failed to reload task", err)
	}
	return &task, nil
}

// GetTaskByID handles GET /api/tasks/:id
func GetTaskByID(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		apperr.Write(c, err)
		return
	}

	task, err := findTask(database.GetDB().WithContext(c.Request.Context()), id)
	if err != nil {
		apperr.Write(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// UpdateTask handles PUT /api/tasks/:id
// Only the owner of the task's project or an admin may update it; an
// assignee who does not own the project cannot change the task.
func UpdateTask(c *gin.Context) {
	me, err := actor(c)
	if err != nil {
		apperr.Write(c, err)
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		apperr.Write(c, err)
		return
	}

	var req UpdateTaskRequest
	if err := bind(c, &req); err != nil {
		apperr.Write(c, err)
		return
	}

	var updated *models.Task
	err = database.GetDB().WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		task, err := loadManagedTask(tx, me, id)
		if err != nil {
			return err
		}

		updates, err := taskUpdates(tx, req)
		if err != nil {
			return err
		}
		if len(updates) > 0 {
			if err := tx.Model(task).Omit(clause.Associations).Updates(updates).Error; err != nil {
				return apperr.Internal("failed to update task", err)
			}
		}
		updated, err = findTaskSummary(tx, id)
		return err
	})
	if err != nil {
		apperr.Write(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// taskUpdates validates the partial update and returns the column changes.
func taskUpdates(tx *gorm.DB, req UpdateTaskRequest) (map[string]any, error) {
	verr := apperr.Validation()
	updates := map[string]any{}

	if req.Titre.Set {
		titre := cleanText(req.Titre.Value)
		switch {
		case req.Titre.Null || titre == "":
			verr.Add("titre", "Le champ titre est obligatoire.")
		case runeLen(titre) > maxNameLength:
			verr.Add("titre", "Le champ titre ne peut pas dépasser 255 caractères.")
		default:
			updates["titre"] = titre
		}
	}
	if req.Description.Set {
		if req.Description.Null {
			updates["description"] = nil
		} else {
			updates["description"] = optionalText(&req.Description.Value)
		}
	}
	if req.Etat.Set {
		etat, ok := models.ParseTaskState(req.Etat.Value)
		if req.Etat.Null || !ok {
			verr.Add("etat", "L'état sélectionné est invalide.")
		} else {
			updates["etat"] = etat
		}
	}
	if req.Deadline.Set {
		if req.Deadline.Null || strings.TrimSpace(req.Deadline.Value) == "" {
			updates["deadline"] = (*time.Time)(nil)
		} else if d, ok := models.ParseDeadline(req.Deadline.Value); ok {
			updates["deadline"] = d
		} else {
			verr.Add("deadline", "Le champ deadline n'est pas une date valide.")
		}
	}
	if req.AssignedTo.Set {
		if req.AssignedTo.Null {
			updates["assigned_to"] = (*uint)(nil)
		} else {
			exists, err := userExists(tx, req.AssignedTo.Value)
			if err != nil {
				return nil, apperr.Internal("failed to check assignee", err)
			}
			if !exists {
				verr.Add("assigned_to", "L'utilisateur sélectionné est invalide.")
			} else {
				updates["assigned_to"] = req.AssignedTo.Value
			}
		}
	}

	if verr.HasFields() {
		return nil, verr
	}
	return updates, nil
}

// DeleteTask handles DELETE /api/tasks/:id
func DeleteTask(c *gin.Context) {
	me, err := actor(c)
	if err != nil {
		apperr.Write(c, err)
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		apperr.Write(c, err)
		return
	}

	err = database.GetDB().WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		task, err := loadManagedTask(tx, me, id)
		if err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", task.ID).Delete(&models.Comment{}).Error; err != nil {
			return apperr.Internal("failed to delete comments", err)
		}
		if err := tx.Delete(&models.Task{}, task.ID).Error; err != nil {
			return apperr.Internal("failed to delete task", err)
		}
		return nil
	})
	if err != nil {
		apperr.Write(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Tâche supprimée avec succès"})
}
