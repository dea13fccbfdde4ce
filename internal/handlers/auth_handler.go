package handlers

import (
	"errors"
	"net/http"
	"strings"

	"project-management-api/internal/apperr"
	"project-management-api/internal/auth"
	"project-management-api/internal/database"
	"project-management-api/internal/middleware"
	"project-management-api/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RegisterRequest represents the registration payload
type RegisterRequest struct {
	Name                 string `json:"name" binding:"required,max=255"`
	Email                string `json:"email" binding:"required,email,max=255"`
	Password             string `json:"password" binding:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation"`
	Role                 string `json:"role"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

const msgEmailTaken = "Cette adresse e-mail est déjà utilisée."

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Register handles POST /api/register
func Register(c *gin.Context) {
	var req RegisterRequest
	if err := bind(c, &req); err != nil {
		apperr.Write(c, err)
		return
	}

	verr := apperr.Validation()
	name := cleanText(req.Name)
	if name == "" {
		verr.Add("name", "Le champ name est obligatoire.")
	}
	if req.Password != req.PasswordConfirmation {
		verr.Add("password", "La confirmation du mot de passe ne correspond pas.")
	}
	role := models.RoleDeveloper
	if strings.TrimSpace(req.Role) != "" {
		r, ok := models.ParseRole(req.Role)
		if !ok || r.IsAdmin() {
			verr.Add("role", "Le rôle sélectionné est invalide.")
		}
		role = r
	}
	if verr.HasFields() {
		apperr.Write(c, verr)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		apperr.Write(c, apperr.Internal("failed to hash password", err))
		return
	}

	user := models.User{
		Name:         name,
		Email:        normalizeEmail(req.Email),
		PasswordHash: hash,
		Role:         role,
	}

	err = database.GetDB().WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
			return apperr.Internal("failed to check email", err)
		}
		if count > 0 {
			return apperr.Field("email", msgEmailTaken)
		}
		if err := tx.Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.Field("email", msgEmailTaken)
			}
			return apperr.Internal("failed to create user", err)
		}
		return nil
	})
	if err != nil {
		apperr.Write(c, err)
		return
	}

	token, err := auth.GenerateToken(user.ID, user.Role)
	if err != nil {
		apperr.Write(c, apperr.Internal("failed to generate token", err))
		return
	}

	zap.L().Info("user registered", zap.Uint("user_id", user.ID), zap.String("role", string(user.Role)))
	c.JSON(http.StatusCreated, AuthResponse{Token: token, User: &user})
}

// Login handles POST /api/login
func Login(c *gin.Context) {
	var req LoginRequest
	if err := bind(c, &req); err != nil {
		apperr.Write(c, err)
		return
	}

	var user models.User
	err := database.GetDB().WithContext(c.Request.Context()).
		Where("email = ?", normalizeEmail(req.Email)).
		First(&user).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		apperr.Write(c, apperr.Internal("failed to load user", err))
		return
	}
	// Same answer for unknown email and wrong password
	if err != nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Identifiants invalides"})
		return
	}

	token, err := auth.GenerateToken(user.ID, user.Role)
	if err != nil {
		apperr.Write(c, apperr.Internal("failed to generate token", err))
		return
	}

	c.JSON(http.StatusOK, AuthResponse{Token: token, User: &user})
}

// Logout handles POST /api/logout
// The presented token stays revoked until it would have expired.
func Logout(c *gin.Context) {
	claims := middleware.CurrentClaims(c)
	if claims == nil {
		apperr.Write(c, apperr.Unauthenticated())
		return
	}

	if err := auth.Revocations().Revoke(c.Request.Context(), claims.ID, claims.Expiry()); err != nil {
		apperr.Write(c, apperr.Internal("failed to revoke token", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Déconnexion réussie"})
}
