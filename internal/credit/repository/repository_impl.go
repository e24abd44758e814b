package repository

import (
	"context"

	"github.com/recvlabs/recv/internal/credit/domain"
	"gorm.io/gorm"
)

type Repository interface {
	InsertLog(ctx context.Context, db *gorm.DB, log *domain.UsageLog) error
}

type repo struct{}

func Provide() Repository {
	return &repo{}
}

func (r *repo) InsertLog(ctx context.Context, db *gorm.DB, log *domain.UsageLog) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO usage_logs (id, user_id, action, model, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		log.ID,
		log.UserID,
		log.Action,
		log.Model,
		log.Metadata,
		log.CreatedAt,
	).Error
}
