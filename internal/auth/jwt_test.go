package auth

import (
	"testing"
	"time"

	"project-management-api/internal/config"
	"project-management-api/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	token, err := GenerateToken(1, models.RoleDeveloper)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	require.Equal(t, uint(1), claims.UserID)
	require.Equal(t, models.RoleDeveloper, claims.Role)
	require.Equal(t, "1", claims.Subject)
	require.NotEmpty(t, claims.ID)
	require.True(t, claims.Expiry().After(time.Now()))
}

func TestGenerateToken_UniqueIDs(t *testing.T) {
	a, err := GenerateToken(7, models.RoleAdmin)
	require.NoError(t, err)
	b, err := GenerateToken(7, models.RoleAdmin)
	require.NoError(t, err)

	ca, err := ValidateToken(a)
	require.NoError(t, err)
	cb, err := ValidateToken(b)
	require.NoError(t, err)
	require.NotEqual(t, ca.ID, cb.ID)
}

func TestValidateToken_Invalid(t *testing.T) {
	_, err := ValidateToken("invalid.token")
	require.Error(t, err)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	claims := Claims{
		UserID: 1,
		Role:   models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "forged",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			Issuer:    "project-management-api",
			Audience:  jwt.ClaimStrings{"project-management-clients"},
		},
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("someone-else"))
	require.NoError(t, err)

	_, err = ValidateToken(forged)
	require.Error(t, err)
}

func TestValidateToken_Expired(t *testing.T) {
	Configure(&config.Config{
		JWTSecret:   "test-secret",
		JWTIssuer:   "project-management-api",
		JWTAudience: "project-management-clients",
		JWTTTL:      24 * time.Hour,
	})
	t.Cleanup(func() {
		Configure(&config.Config{
			JWTSecret:   "development-insecure-secret-change-me",
			JWTIssuer:   "project-management-api",
			JWTAudience: "project-management-clients",
			JWTTTL:      24 * time.Hour,
		})
	})

	claims := Claims{
		UserID: 1,
		Role:   models.RoleDeveloper,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "old",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			Issuer:    "project-management-api",
			Audience:  jwt.ClaimStrings{"project-management-clients"},
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = ValidateToken(expired)
	require.Error(t, err)
}

func TestValidateToken_WrongAudience(t *testing.T) {
	claims := Claims{
		UserID: 1,
		Role:   models.RoleDeveloper,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "aud",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			Issuer:    "project-management-api",
			Audience:  jwt.ClaimStrings{"another-service"},
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("development-insecure-secret-change-me"))
	require.NoError(t, err)

	_, err = ValidateToken(tok)
	require.Error(t, err)
}
