package repository

import (
	"context"
	"strings"
	"time"

	"github.com/recvlabs/recv/internal/entitlement/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, profile *domain.Profile) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO profiles (user_id, tier, daily_credits_used, last_credit_reset, pro_expires_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		profile.UserID,
		profile.Tier,
		profile.DailyCreditsUsed,
		profile.LastCreditReset,
		profile.ProExpiresAt,
		profile.CreatedAt,
		profile.UpdatedAt,
	).Error
}

func (r *repo) FindByUserID(ctx context.Context, db *gorm.DB, userID string) (*domain.Profile, error) {
	var profile domain.Profile
	err := db.WithContext(ctx).Raw(
		`SELECT user_id, tier, daily_credits_used, last_credit_reset, pro_expires_at, created_at, updated_at
		 FROM profiles WHERE user_id = ?`,
		userID,
	).Scan(&profile).Error
	if err != nil {
		return nil, err
	}
	if profile.UserID == "" {
		return nil, nil
	}
	return &profile, nil
}

func (r *repo) FindByIDPrefix(ctx context.Context, db *gorm.DB, prefix string) ([]domain.Profile, error) {
	var profiles []domain.Profile
	err := db.WithContext(ctx).Raw(
		`SELECT user_id, tier, daily_credits_used, last_credit_reset, pro_expires_at, created_at, updated_at
		 FROM profiles WHERE user_id LIKE ? LIMIT 2`,
		escapeLike(prefix)+"%",
	).Scan(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *repo) UpdateFields(ctx context.Context, db *gorm.DB, userID string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	updates := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		updates[k] = v
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return db.WithContext(ctx).
		Model(&domain.Profile{}).
		Where("user_id = ?", userID).
		Updates(updates).Error
}

func escapeLike(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, "%", `\%`)
	return strings.ReplaceAll(value, "_", `\_`)
}
