package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, resource *Resource) error
	// CountByUser derives the owned-resource count across all types on
	// demand; it is never cached or stored.
	CountByUser(ctx context.Context, db *gorm.DB, userID string) (int64, error)
	ListByUser(ctx context.Context, db *gorm.DB, userID string, resourceType Type) ([]Resource, error)
}
