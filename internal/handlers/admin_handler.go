package handlers

import (
	"errors"
	"net/http"

	"project-management-api/internal/apperr"
	"project-management-api/internal/database"
	"project-management-api/internal/models"
	"project-management-api/internal/reporting"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AdminDashboard handles GET /api/admin
func AdminDashboard(c *gin.Context) {
	db := database.GetDB().WithContext(c.Request.Context())

	stats, err := reporting.Counts(db)
	if err != nil {
		apperr.Write(c, apperr.Internal("failed to count rows", err))
		return
	}
	recent, err := reporting.RecentProjects(db, reporting.RecentProjectsLimit)
	if err != nil {
		apperr.Write(c, apperr.Internal("failed to fetch recent projects", err))
		return
	}
	overdue, err := reporting.OverdueTasks(db, models.Clock())
	if err != nil {
		apperr.Write(c, apperr.Internal("failed to fetch overdue tasks", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stats":           stats,
		"recent_projects": recent,
		"overdue_tasks":   overdue,
	})
}

// AdminGlobalStats handles GET /api/admin/stats
func AdminGlobalStats(c *gin.Context) {
	db := database.GetDB().WithContext(c.Request.Context())

	monthly, err := reporting.MonthlyTaskStats(db, models.Clock())
	if err != nil {
		apperr.Write(c, apperr.Internal("failed to compute monthly stats", err))
		return
	}
	workload, err := reporting.UserWorkload(db)
	if err != nil {
		apperr.Write(c, apperr.Internal("failed to compute workload", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"monthly_stats": monthly,
		"user_workload": workload,
	})
}

// AdminUsers handles GET /api/admin/users
func AdminUsers(c *gin.Context) {
	users, err := reporting.Users(database.GetDB().WithContext(c.Request.Context()))
	if err != nil {
		apperr.Write(c, apperr.Internal("failed to fetch users", err))
		return
	}
	c.JSON(http.StatusOK, users)
}

// AdminUserStats handles GET /api/admin/users/:id/stats
func AdminUserStats(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		apperr.Write(c, err)
		return
	}

	stats, err := reporting.StatsForUser(database.GetDB().WithContext(c.Request.Context()), id)
	if err != nil {
		apperr.Write(c, notFoundOr(err, "failed to compute user stats"))
		return
	}
	c.JSON(http.StatusOK, stats)
}

// AdminProjects handles GET /api/admin/projects
func AdminProjects(c *gin.Context) {
	projects, err := reporting.Projects(database.GetDB().WithContext(c.Request.Context()))
	if err != nil {
		apperr.Write(c, apperr.Internal("failed to fetch projects", err))
		return
	}
	c.JSON(http.StatusOK, projects)
}

// AdminProjectStats handles GET /api/admin/projects/:id/stats
func AdminProjectStats(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		apperr.Write(c, err)
		return
	}

	stats, err := reporting.StatsForProject(database.GetDB().WithContext(c.Request.Context()), id, models.Clock())
	if err != nil {
		apperr.Write(c, notFoundOr(err, "failed to compute project stats"))
		return
	}
	c.JSON(http.StatusOK, stats)
}

// AdminTasks handles GET /api/admin/tasks
func AdminTasks(c *gin.Context) {
	tasks, err := reporting.AllTasks(database.GetDB().WithContext(c.Request.Context()))
	if err != nil {
		apperr.Write(c, apperr.Internal("failed to fetch tasks", err))
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func notFoundOr(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound()
	}
	return apperr.Internal(msg, err)
}
