package repository

import (
	"context"

	"github.com/recvlabs/recv/internal/resource/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, resource *domain.Resource) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO resources (id, user_id, type, title, body, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		resource.ID,
		resource.UserID,
		resource.Type,
		resource.Title,
		resource.Body,
		resource.CreatedAt,
		resource.UpdatedAt,
	).Error
}

func (r *repo) CountByUser(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Resource{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repo) ListByUser(ctx context.Context, db *gorm.DB, userID string, resourceType domain.Type) ([]domain.Resource, error) {
	query := db.WithContext(ctx).
		Model(&domain.Resource{}).
		Where("user_id = ?", userID)
	if resourceType != "" {
		query = query.Where("type = ?", resourceType)
	}

	var resources []domain.Resource
	err := query.
		Order("created_at desc, id desc").
		Find(&resources).Error
	if err != nil {
		return nil, err
	}
	return resources, nil
}
