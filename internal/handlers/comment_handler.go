package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"project-management-api/internal/apperr"
	"project-management-api/internal/database"
	"project-management-api/internal/models"
	"project-management-api/internal/policy"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CommentRequest carries the comment body. Both keys are accepted;
// a non-blank content wins over texte.
type CommentRequest struct {
	Content *string `json:"content"`
	Texte   *string `json:"texte"`
}

// text validates the body and returns it trimmed.
func (r CommentRequest) text() (string, error) {
	var texte string
	if r.Content != nil {
		texte = cleanText(*r.Content)
	}
	if texte == "" && r.Texte != nil {
		texte = cleanText(*r.Texte)
	}
	if texte == "" {
		return "", apperr.Field("content", "Le champ content est obligatoire.")
	}
	if runeLen(texte) > models.MaxCommentLength {
		return "", apperr.Field("content", fmt.Sprintf("Le champ content ne peut pas dépasser %d caractères.", models.MaxCommentLength))
	}
	return texte, nil
}

func taskExists(tx *gorm.DB, id uint) error {
	var count int64
	if err := tx.Model(&models.Task{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return apperr.Internal("failed to fetch task", err)
	}
	if count == 0 {
		return apperr.NotFound()
	}
	return nil
}

// loadModifiableComment loads the comment and checks that actor wrote it
// or is an admin.
func loadModifiableComment(tx *gorm.DB, actor *models.User, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := tx.First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound()
		}
		return nil, apperr.Internal("failed to fetch comment", err)
	}
	if !policy.CanModifyComment(actor, &comment) {
		return nil, apperr.Forbidden(msgTaskForbidden)
	}
	return &comment, nil
}

func findComment(tx *gorm.DB, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := tx.Preload("User").First(&comment, id).Error; err != nil {
		return nil, apperr.Internal("failed to reload comment", err)
	}
	return &comment, nil
}

// GetComments handles GET /api/tasks/:id/comments
// Newest first, with the author.
func GetComments(c *gin.Context) {
	taskID, err := pathID(c, "id")
	if err != nil {
		apperr.Write(c, err)
		return
	}

	db := database.GetDB().WithContext(c.Request.Context())
	if err := taskExists(db, taskID); err != nil {
		apperr.Write(c, err)
		return
	}

	comments := []models.Comment{}
	err = db.Preload("User").
		Where("task_id = ?", taskID).
		Order("created_at desc").
		Order("id desc").
		Find(&comments).Error
	if err != nil {
		apperr.Write(c, apperr.Internal("failed to fetch comments", err))
		return
	}

	c.JSON(http.StatusOK, comments)
}

// CreateComment handles POST /api/tasks/:id/comments
func CreateComment(c *gin.Context) {
	me, err := actor(c)
	if err != nil {
		apperr.Write(c, err)
		return
	}
	taskID, err := pathID(c, "id")
	if err != nil {
		apperr.Write(c, err)
		return
	}

	var req CommentRequest
	if err := bind(c, &req); err != nil {
		apperr.Write(c, err)
		return
	}

	var created *models.Comment
	err = database.GetDB().WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := taskExists(tx, taskID); err != nil {
			return err
		}
		texte, err := req.text()
		if err != nil {
			return err
		}

		comment := models.Comment{Texte: texte, AuteurID: me.ID, TaskID: taskID}
		if err := tx.Create(&comment).Error; err != nil {
			return apperr.Internal("failed to create comment", err)
		}
		created, err = findComment(tx, comment.ID)
		return err
	})
	if err != nil {
		apperr.Write(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// UpdateComment handles PUT /api/comments/:id
func UpdateComment(c *gin.Context) {
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

	var req CommentRequest
	if err := bind(c, &req); err != nil {
		apperr.Write(c, err)
		return
	}

	var updated *models.Comment
	err = database.GetDB().WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		comment, err := loadModifiableComment(tx, me, id)
		if err != nil {
			return err
		}
		texte, err := req.text()
		if err != nil {
			return err
		}
		if err := tx.Model(comment).Update("texte", texte).Error; err != nil {
			return apperr.Internal("failed to update comment", err)
		}
		updated, err = findComment(tx, comment.ID)
		return err
	})
	if err != nil {
		apperr.Write(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// DeleteComment handles DELETE /api/comments/:id
func DeleteComment(c *gin.Context) {
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
		comment, err := loadModifiableComment(tx, me, id)
		if err != nil {
			return err
		}
		if err := tx.Delete(&models.Comment{}, comment.ID).Error; err != nil {
			return apperr.Internal("failed to delete comment", err)
		}
		return nil
	})
	if err != nil {
		apperr.Write(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Commentaire supprimé avec succès"})
}
