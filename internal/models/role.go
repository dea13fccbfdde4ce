package models

import "strings"

// Role is the closed set of organisational roles a user can hold.
type Role string

const (
	RoleAdmin          Role = "admin"
	RoleDeveloper      Role = "developer"
	RoleDesigner       Role = "designer"
	RoleTester         Role = "tester"
	RoleProjectManager Role = "project_manager"
	RoleDevops         Role = "devops"
	RoleMarketing      Role = "marketing"
	RoleSupport        Role = "support"
	RoleFinance        Role = "finance"
	RoleHR             Role = "hr"
	RoleConsultant     Role = "consultant"
)

var roleLabels = map[Role]string{
	RoleAdmin:          "Administrateur",
	RoleDeveloper:      "Développeur",
	RoleDesigner:       "Designer",
	RoleTester:         "Testeur",
	RoleProjectManager: "Chef de Projet",
	RoleDevops:         "DevOps",
	RoleMarketing:      "Marketing",
	RoleSupport:        "Support",
	RoleFinance:        "Finance",
	RoleHR:             "Ressources Humaines",
	RoleConsultant:     "Consultant",
}

// Roles lists every role in display order.
func Roles() []Role {
	return []Role{
		RoleAdmin, RoleDeveloper, RoleDesigner, RoleTester, RoleProjectManager,
		RoleDevops, RoleMarketing, RoleSupport, RoleFinance, RoleHR, RoleConsultant,
	}
}

// ParseRole normalises s and reports whether it names a known role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	_, ok := roleLabels[r]
	return r, ok
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := roleLabels[r]
	return ok
}

// IsAdmin reports whether r grants administrative rights.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// Label returns the French display name, or the raw value for unknown roles.
func (r Role) Label() string {
	if l, ok := roleLabels[r]; ok {
		return l
	}
	return string(r)
}
