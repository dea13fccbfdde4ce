package handlers

import (
	"errors"
	"net/http"

	"project-management-api/internal/apperr"
	"project-management-api/internal/auth"
	"project-management-api/internal/database"
	"project-management-api/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// UserSummary is the public projection used by assignment pickers
type UserSummary struct {
	ID    uint        `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
}

// UpdateProfileRequest is a partial update of the acting user
type UpdateProfileRequest struct {
	Name                    Optional[string] `json:"name"`
	Email                   Optional[string] `json:"email"`
	CurrentPassword         string           `json:"current_password"`
	NewPassword             string           `json:"new_password"`
	NewPasswordConfirmation string           `json:"new_password_confirmation"`
}

// GetProfile handles GET /api/user
func GetProfile(c *gin.Context) {
	me, err := actor(c)
	if err != nil {
		apperr.Write(c, err)
		return
	}

	var user models.User
	err = database.GetDB().WithContext(c.Request.Context()).
		Preload("Projects", func(db *gorm.DB) *gorm.DB { return db.Order("projects.id") }).
		Preload("Projects.Tasks").
		Preload("AssignedTasks", func(db *gorm.DB) *gorm.DB { return db.Order("tasks.created_at desc") }).
		Preload("AssignedTasks.Project").
		First(&user, me.ID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apperr.Write(c, apperr.Unauthenticated())
			return
		}
		apperr.Write(c, apperr.Internal("failed to load profile", err))
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateProfile handles PUT /api/user
func UpdateProfile(c *gin.Context) {
	me, err := actor(c)
	if err != nil {
		apperr.Write(c, err)
		return
	}

	var req UpdateProfileRequest
	if err := bind(c, &req); err != nil {
		apperr.Write(c, err)
		return
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

	var email string
	if req.Email.Set {
		email = normalizeEmail(req.Email.Value)
		switch {
		case req.Email.Null || email == "":
			verr.Add("email", "Le champ email est obligatoire.")
		case !validEmail(email):
			verr.Add("email", "Le champ email doit être une adresse e-mail valide.")
		default:
			updates["email"] = email
		}
	}

	if req.NewPassword != "" {
		if req.CurrentPassword == "" {
			verr.Add("current_password", "Le mot de passe actuel est obligatoire pour changer de mot de passe.")
		}
		if runeLen(req.NewPassword) < auth.MinPasswordLength {
			verr.Add("new_password", "Le champ new_password doit contenir au moins 8 caractères.")
		}
		if req.NewPassword != req.NewPasswordConfirmation {
			verr.Add("new_password", "La confirmation du mot de passe ne correspond pas.")
		}
	}
	if verr.HasFields() {
		apperr.Write(c, verr)
		return
	}

	var user models.User
	err = database.GetDB().WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, me.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.Unauthenticated()
			}
			return apperr.Internal("failed to load user", err)
		}

		if email != "" && email != user.Email {
			var count int64
			if err := tx.Model(&models.User{}).Where("email = ? AND id <> ?", email, user.ID).Count(&count).Error; err != nil {
				return apperr.Internal("failed to check email", err)
			}
			if count > 0 {
				return apperr.Field("email", msgEmailTaken)
			}
		}

		if req.NewPassword != "" {
			if !auth.CheckPassword(user.PasswordHash, req.CurrentPassword) {
				return apperr.Field("current_password", "Mot de passe actuel incorrect")
			}
			hash, err := auth.HashPassword(req.NewPassword)
			if err != nil {
				return apperr.Internal("failed to hash password", err)
			}
			updates["password_hash"] = hash
		}

		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&user).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.Field("email", msgEmailTaken)
			}
			return apperr.Internal("failed to update profile", err)
		}
		return tx.First(&user, user.ID).Error
	})
	if err != nil {
		apperr.Write(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profil mis à jour avec succès",
		"user":    user,
	})
}

// GetAllUsers handles GET /api/users
// Returns every user's public fields ordered by name.
func GetAllUsers(c *gin.Context) {
	var users []UserSummary
	err := database.GetDB().WithContext(c.Request.Context()).
		Model(&models.User{}).
		Select("id", "name", "email", "role").
		Order("name").
		Find(&users).Error
	if err != nil {
		apperr.Write(c, apperr.Internal("failed to fetch users", err))
		return
	}
	if users == nil {
		users = []UserSummary{}
	}

	c.JSON(http.StatusOK, users)
}
