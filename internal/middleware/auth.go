package middleware

import (
	"errors"
	"strings"

	"project-management-api/internal/apperr"
	"project-management-api/internal/auth"
	"project-management-api/internal/database"
	"project-management-api/internal/models"
	"project-management-api/internal/policy"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	userKey   = "user"
	claimsKey = "claims"
)

// JWTAuthMiddleware validates the bearer token, rejects revoked tokens and
// loads the acting user into the context.
func JWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Extract token from "Bearer <token>"
		tokenString := ""
		parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			tokenString = strings.TrimSpace(parts[1])
		}
		if tokenString == "" {
			apperr.Write(c, apperr.Unauthenticated())
			return
		}

		claims, err := auth.ValidateToken(tokenString)
		if err != nil {
			apperr.Write(c, apperr.Unauthenticated())
			return
		}

		revoked, err := auth.Revocations().IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			apperr.Write(c, apperr.Internal("revocation lookup failed", err))
			return
		}
		if revoked {
			apperr.Write(c, apperr.Unauthenticated())
			return
		}

		// Tokens of deleted users are no longer honoured
		var user models.User
		err = database.GetDB().WithContext(c.Request.Context()).First(&user, claims.UserID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				apperr.Write(c, apperr.Unauthenticated())
			} else {
				apperr.Write(c, apperr.Internal("failed to load user", err))
			}
			return
		}

		c.Set(userKey, &user)
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequireAdmin rejects every authenticated user that is not an admin.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !policy.CanAccessAdmin(CurrentUser(c)) {
			zap.L().Info("admin access denied", zap.Uint("user_id", userID(c)))
			apperr.Write(c, apperr.Forbidden("Accès refusé. Admins seulement."))
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user loaded by JWTAuthMiddleware, or nil.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	u, _ := v.(*models.User)
	return u
}

// CurrentClaims returns the validated token claims, or nil.
func CurrentClaims(c *gin.Context) *auth.Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}

func userID(c *gin.Context) uint {
	if u := CurrentUser(c); u != nil {
		return u.ID
	}
	return 0
}
