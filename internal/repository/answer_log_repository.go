package repository

import (
	"fmt"

	"gorm.io/gorm"

	"sro-assistant/internal/model"
)

type AnswerLogRepository struct {
	db *gorm.DB
}

func NewAnswerLogRepository(db *gorm.DB) *AnswerLogRepository {
	return &AnswerLogRepository{db: db}
}

func (r *AnswerLogRepository) Create(entry *model.AnswerLog) error {
	if err := r.db.Create(entry).Error; err != nil {
		return fmt.Errorf("create answer log failed: %w", err)
	}
	return nil
}

// ListByUserID returns the most recent entries for a user, newest first.
func (r *AnswerLogRepository) ListByUserID(userID int64, limit int) ([]model.AnswerLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var entries []model.AnswerLog
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("list answer logs failed: %w", err)
	}
	return entries, nil
}
