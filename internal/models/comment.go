package models

import "time"

// MaxCommentLength bounds the comment body, in characters.
const MaxCommentLength = 1000

// Comment is a note left by a user on a task
type Comment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Texte     string    `json:"texte" gorm:"not null"`
	AuteurID  uint      `json:"auteur_id" gorm:"not null;index"`
	TaskID    uint      `json:"task_id" gorm:"not null;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User *User `json:"user,omitempty" gorm:"foreignKey:AuteurID"`
}

// TableName specifies the table name for Comment Model
func (Comment) TableName() string {
	return "comments"
}

// IsAuthoredBy reports whether userID wrote the comment.
func (c *Comment) IsAuthoredBy(userID uint) bool {
	return c != nil && c.AuteurID == userID
}
