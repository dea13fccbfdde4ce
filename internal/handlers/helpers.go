package handlers

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"project-management-api/internal/apperr"
	"project-management-api/internal/middleware"
	"project-management-api/internal/models"

	"github.com/gin-gonic/gin"
)

const maxNameLength = 255

// cleanText trims surrounding whitespace and otherwise keeps free text as
// sent. The JSON encoder escapes markup on the way out.
func cleanText(s string) string {
	return strings.TrimSpace(s)
}

// optionalText trims a nullable description; blank becomes nil.
func optionalText(s *string) *string {
	if s == nil {
		return nil
	}
	clean := cleanText(*s)
	if clean == "" {
		return nil
	}
	return &clean
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// pathID parses a numeric path parameter. Anything that cannot be an id
// cannot match a row either, so it is reported as not found.
func pathID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.NotFound()
	}
	return uint(id), nil
}

// actor returns the authenticated user or an authentication error.
func actor(c *gin.Context) (*models.User, error) {
	u := middleware.CurrentUser(c)
	if u == nil {
		return nil, apperr.Unauthenticated()
	}
	return u, nil
}

// bind decodes the JSON body into req and maps binding failures onto the
// error taxonomy.
func bind(c *gin.Context, req any) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return apperr.FromBinding(err)
	}
	return nil
}
