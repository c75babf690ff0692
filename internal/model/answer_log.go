package model

import "time"

// AnswerLog is one answered question, persisted asynchronously for audit.
type AnswerLog struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        int64     `gorm:"not null;index" json:"user_id"`
	Role          string    `gorm:"size:16;not null" json:"role"`
	Question      string    `gorm:"type:text;not null" json:"question"`
	Answer        string    `gorm:"type:text;not null" json:"answer"`
	DocumentCount int       `gorm:"not null" json:"document_count"`
	CreatedAt     time.Time `json:"created_at"`
}
