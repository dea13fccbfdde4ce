// Package policy holds the authorization rules as pure predicates over an
// actor and the resource it wants to act on.
//
// Rules:
//   - Admins may act on every project, task and comment
//   - Project owners may show, update and delete their projects
//   - Tasks inherit the rule of their project; being the assignee grants nothing
//   - Comments may be changed only by their author
//   - Any authenticated user may create projects and comment on tasks
package policy

import "project-management-api/internal/models"

// CanManageProject reports whether actor may show, update or delete p, or
// create tasks inside it.
func CanManageProject(actor *models.User, p *models.Project) bool {
	if actor == nil || p == nil {
		return false
	}
	return actor.IsAdmin() || p.IsOwnedBy(actor.ID)
}

// CanManageTask reports whether actor may update or delete a task of p.
func CanManageTask(actor *models.User, p *models.Project) bool {
	return CanManageProject(actor, p)
}

// CanModifyComment reports whether actor may update or delete c.
func CanModifyComment(actor *models.User, c *models.Comment) bool {
	if actor == nil || c == nil {
		return false
	}
	return actor.IsAdmin() || c.IsAuthoredBy(actor.ID)
}

// CanViewAllProjects reports whether project listings are unrestricted.
func CanViewAllProjects(actor *models.User) bool {
	return actor.IsAdmin()
}

// CanAccessAdmin reports whether actor may use the reporting endpoints.
func CanAccessAdmin(actor *models.User) bool {
	return actor.IsAdmin()
}
