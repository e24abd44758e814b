// Package domain contains the credit ledger contract and the append-only
// usage log.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// UsageLog records one consumed action. Write-only: it feeds analytics and
// is never read back for quota enforcement.
type UsageLog struct {
	ID        snowflake.ID      `gorm:"primaryKey" json:"id"`
	UserID    string            `gorm:"not null;index" json:"user_id"`
	Action    string            `gorm:"type:text;not null" json:"action"`
	Model     string            `gorm:"type:text;not null;default:''" json:"model"`
	Metadata  datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (UsageLog) TableName() string { return "usage_logs" }
