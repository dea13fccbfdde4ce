package auth

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"project-management-api/internal/config"
	"project-management-api/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	mu          sync.RWMutex
	jwtSecret   = []byte("development-insecure-secret-change-me")
	jwtIssuer   = "project-management-api"
	jwtAudience = "project-management-clients"
	jwtTTL      = 24 * time.Hour
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrRevokedToken = errors.New("token has been revoked")
)

// Configure sets the signing parameters from the application config.
func Configure(cfg *config.Config) {
	mu.Lock()
	defer mu.Unlock()
	jwtSecret = []byte(cfg.JWTSecret)
	jwtIssuer = cfg.JWTIssuer
	jwtAudience = cfg.JWTAudience
	if cfg.JWTTTL > 0 {
		jwtTTL = cfg.JWTTTL
	}
}

// Claims represents the JWT claims
type Claims struct {
	UserID uint        `json:"user_id"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken issues a signed token for the given user. Each token gets
// its own ID so that it can be revoked individually on logout.
func GenerateToken(userID uint, role models.Role) (string, error) {
	mu.RLock()
	secret, issuer, audience, ttl := jwtSecret, jwtIssuer, jwtAudience, jwtTTL
	mu.RUnlock()

	now := time.Now()
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{audience},
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ValidateToken validates a JWT token and returns the claims
func ValidateToken(tokenString string) (*Claims, error) {
	mu.RLock()
	secret, issuer, audience := jwtSecret, jwtIssuer, jwtAudience
	mu.RUnlock()

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.ID == "" || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Expiry returns the expiry instant, or now when the claim is missing.
func (c *Claims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Now()
	}
	return c.ExpiresAt.Time
}
