package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, profile *Profile) error
	FindByUserID(ctx context.Context, db *gorm.DB, userID string) (*Profile, error)
	// FindByIDPrefix resolves a user-id fragment with an indexed prefix
	// scan. At most two rows are returned so callers can detect ambiguity.
	FindByIDPrefix(ctx context.Context, db *gorm.DB, prefix string) ([]Profile, error)
	// UpdateFields applies a partial update without clobbering
	// unspecified fields.
	UpdateFields(ctx context.Context, db *gorm.DB, userID string, fields map[string]any) error
}
