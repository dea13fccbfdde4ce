package handlers

import (
	"errors"
	"net/http"
	"strings"

	"project-management-api/internal/apperr"
	"project-management-api/internal/database"
	"project-management-api/internal/models"
	"project-management-api/internal/policy"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const msgProjectForbidden = "Accès refusé"

// CreateProjectRequest represents the request payload for creating a project
type CreateProjectRequest struct {
	Name        string           `json:"name" binding:"required,max=255"`
	Description *string          `json:"description"`
	Deadline    *string          `json:"deadline"`
	Budget      *decimal.Decimal `json:"budget"`
	Status      *string          `json:"status"`
}

// UpdateProjectRequest represents the request payload for updating a project
type UpdateProjectRequest struct {
	Name        Optional[string] `json:"name"`
	Description Optional[string] `json:"description"`
}

func orderTasks(db *gorm.DB) *gorm.DB {
	return db.Order("tasks.id")
}

// findProject loads a project with its tasks so that the derived fields
// are always computed. detail additionally loads assignees and comments.
func findProject(tx *gorm.DB, id uint, detail bool) (*models.Project, error) {
	q := tx.Preload("Owner").Preload("Tasks", orderTasks)
	if detail {
		q = q.Preload("Tasks.AssignedUser").
			Preload("Tasks.Comments", func(db *gorm.DB) *gorm.DB {
				return db.Order("comments.created_at desc, comments.id desc")
			}).
			Preload("Tasks.Comments.User")
	}

	var project models.Project
	if err := q.First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound()
		}
		return nil, apperr.Internal("failed to fetch project", err)
	}
	return &project, nil
}

// loadManagedProject loads the project and checks that actor may manage it.
// Existence is checked before permission.
func loadManagedProject(tx *gorm.DB, actor *models.User, id uint) (*models.Project, error) {
	var project models.Project
	if err := tx.First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound()
		}
		return nil, apperr.Internal("failed to fetch project", err)
	}
	if !policy.CanManageProject(actor, &project) {
		return nil, apperr.Forbidden(msgProjectForbidden)
	}
	return &project, nil
}

/*
GetProjects handles GET /api/projects
Admins see every project, everyone else only the projects they own.
*/
func GetProjects(c *gin.Context) {
	me, err := actor(c)
	if err != nil {
		apperr.Write(c, err)
		return
	}

	query := database.GetDB().WithContext(c.Request.Context()).
		Preload("Owner").
		Preload("Tasks", orderTasks).
		Order("projects.id")
	if !policy.CanViewAllProjects(me) {
		query = query.Where("owner_id = ?", me.ID)
	}

	projects := []models.Project{}
	if err := query.Find(&projects).Error; err != nil {
		apperr.Write(c, apperr.Internal("failed to fetch projects", err))
		return
	}

	c.JSON(http.StatusOK, projects)
}

// CreateProject handles POST /api/projects
func CreateProject(c *gin.Context) {
	me, err := actor(c)
	if err != nil {
		apperr.Write(c, err)
		return
	}

	var req CreateProjectRequest
	if err := bind(c, &req); err != nil {
		apperr.Write(c, err)
		return
	}

	project := models.Project{
		Description: optionalText(req.Description),
		Status:      models.ProjectPending,
		OwnerID:     me.ID,
	}

	verr := apperr.Validation()
	project.Name = cleanText(req.Name)
	if project.Name == "" {
		verr.Add("name", "Le champ name est obligatoire.")
	}
	if req.Deadline != nil && strings.TrimSpace(*req.Deadline) != "" {
		d, ok := models.ParseDate(*req.Deadline)
		if !ok {
			verr.Add("deadline", "Le champ deadline n'est pas une date valide.")
		}
		project.Deadline = &d
	}
	if req.Budget != nil {
		if req.Budget.IsNegative() {
			verr.Add("budget", "Le champ budget doit être supérieur ou égal à 0.")
		}
		b := req.Budget.Round(2)
		project.Budget = &b
	}
	if req.Status != nil && *req.Status != "" {
		st, ok := models.ParseProjectStatus(*req.Status)
		if !ok {
			verr.Add("status", "Le statut sélectionné est invalide.")
		}
		project.Status = st
	}
	if verr.HasFields() {
		apperr.Write(c, verr)
		return
	}

	var created *models.Project
	err = database.GetDB().WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&project).Error; err != nil {
			return apperr.Internal("failed to create project", err)
		}
		p, err := findProject(tx, project.ID, false)
		created = p
		return err
	})
	if err != nil {
		apperr.Write(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// GetProjectByID handles GET /api/projects/:id
func GetProjectByID(c *gin.Context) {
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

	project, err := findProject(database.GetDB().WithContext(c.Request.Context()), id, true)
	if err != nil {
		apperr.Write(c, err)
		return
	}
	if !policy.CanManageProject(me, project) {
		apperr.Write(c, apperr.Forbidden(msgProjectForbidden))
		return
	}

	c.JSON(http.StatusOK, project)
}

// UpdateProject handles PUT /api/projects/:id
func UpdateProject(c *gin.Context) {
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

	var req UpdateProjectRequest
	if err := bind(c, &req); err != nil {
		apperr.Write(c, err)
		return
	}

	var updated *models.Project
	err = database.GetDB().WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		project, err := loadManagedProject(tx, me, id)
		if err != nil {
			return err
		}

		verr := apperr.Validation()
		updates := map[string]any{}
		if req.Name.Set {
			name := cleanText(req.Name.Value)
			switch {
			case req.Name.Null || name == "":
				verr.Add("name", "Le champ name est obligatoire.")
			case runeLen(name) > maxNameLength:
				verr.Add("name", "Le champ name ne peut pas dépasser 255 caractères.")
			default:
				updates["name"] = name
			}
		}
		if req.Description.Set {
			if req.Description.Null {
				updates["description"] = nil
			} else {
				updates["description"] = optionalText(&req.Description.Value)
			}
		}
		if verr.HasFields() {
			return verr
		}

		if len(updates) > 0 {
			if err := tx.Model(project).Updates(updates).Error; err != nil {
				return apperr.Internal("failed to update project", err)
			}
		}
		updated, err = findProject(tx, id, false)
		return err
	})
	if err != nil {
		apperr.Write(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// DeleteProject handles DELETE /api/projects/:id
// Tasks and their comments go with the project.
func DeleteProject(c *gin.Context) {
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
		project, err := loadManagedProject(tx, me, id)
		if err != nil {
			return err
		}

		taskIDs := tx.Model(&models.Task{}).Select("id").Where("project_id = ?", project.ID)
		if err := tx.Where("task_id IN (?)", taskIDs).Delete(&models.Comment{}).Error; err != nil {
			return apperr.Internal("failed to delete comments", err)
		}
		if err := tx.Where("project_id = ?", project.ID).Delete(&models.Task{}).Error; err != nil {
			return apperr.Internal("failed to delete tasks", err)
		}
		if err := tx.Delete(&models.Project{}, project.ID).Error; err != nil {
			return apperr.Internal("failed to delete project", err)
		}
		return nil
	})
	if err != nil {
		apperr.Write(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Projet supprimé"})
}
