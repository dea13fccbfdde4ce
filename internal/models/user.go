package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a team member who can own projects and be assigned tasks
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;not null"`
	Role         Role      `json:"role" gorm:"not null;default:'developer'"`
	RoleLabel    string    `json:"role_label" gorm:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Projects      []Project `json:"projects,omitempty" gorm:"foreignKey:OwnerID"`
	AssignedTasks []Task    `json:"assigned_tasks,omitempty" gorm:"foreignKey:AssignedTo"`
}

// TableName specifies the table name for User Model
func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role.IsAdmin()
}

// Decorate fills the display-only fields.
func (u *User) Decorate() {
	u.RoleLabel = u.Role.Label()
}

func (u *User) AfterFind(tx *gorm.DB) error {
	u.Decorate()
	return nil
}

func (u *User) AfterSave(tx *gorm.DB) error {
	u.Decorate()
	return nil
}
