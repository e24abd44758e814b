// Package domain contains user-owned resources subject to count limits.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Type distinguishes the resource pools the storage limit applies to.
type Type string

const (
	TypeCV          Type = "cv"
	TypeCoverLetter Type = "cover_letter"
)

func (t Type) Valid() bool {
	return t == TypeCV || t == TypeCoverLetter
}

// Resource is a persisted user artifact (CV or cover letter).
type Resource struct {
	ID        snowflake.ID   `gorm:"primaryKey" json:"id"`
	UserID    string         `gorm:"not null;index:idx_resources_user_id_type" json:"user_id"`
	Type      Type           `gorm:"type:text;not null;index:idx_resources_user_id_type" json:"type"`
	Title     string         `gorm:"type:text;not null;default:''" json:"title"`
	Body      datatypes.JSON `gorm:"type:jsonb" json:"body,omitempty"`
	CreatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Resource) TableName() string { return "resources" }
