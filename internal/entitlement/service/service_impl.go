package service

import (
	"context"
	"strings"
	"time"

	"github.com/recvlabs/recv/internal/clock"
	"github.com/recvlabs/recv/internal/entitlement/domain"
	pkgdb "github.com/recvlabs/recv/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("entitlement.service"),
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Provision(ctx context.Context, userID string) (domain.Profile, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.Profile{}, domain.ErrInvalidUser
	}

	existing, err := s.repo.FindByUserID(ctx, s.db, userID)
	if err != nil {
		return domain.Profile{}, err
	}
	if existing != nil {
		return *existing, nil
	}

	now := s.clock.Now()
	profile := domain.Profile{
		UserID:           userID,
		Tier:             domain.TierFree,
		DailyCreditsUsed: 0,
		LastCreditReset:  now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.Insert(ctx, s.db, &profile); err != nil {
		// Two provisioning calls can race; the first insert wins.
		if pkgdb.IsDuplicateKeyErr(err) {
			winner, findErr := s.repo.FindByUserID(ctx, s.db, userID)
			if findErr == nil && winner != nil {
				return *winner, nil
			}
		}
		return domain.Profile{}, err
	}

	return profile, nil
}

func (s *Service) Get(ctx context.Context, userID string) (domain.Profile, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.Profile{}, domain.ErrInvalidUser
	}

	profile, err := s.repo.FindByUserID(ctx, s.db, userID)
	if err != nil {
		return domain.Profile{}, err
	}
	if profile == nil {
		// A missing record is a provisioning bug, never defaulted to a tier.
		return domain.Profile{}, domain.ErrProfileNotFound
	}

	return s.sweep(ctx, *profile)
}

// sweep downgrades a lapsed pro entitlement. The write lands before the
// profile reaches any tier-dependent limit in the same request.
func (s *Service) sweep(ctx context.Context, profile domain.Profile) (domain.Profile, error) {
	now := s.clock.Now()
	if !profile.Expired(now) {
		return profile, nil
	}

	err := s.repo.UpdateFields(ctx, s.db, profile.UserID, map[string]any{
		"tier":           domain.TierFree,
		"pro_expires_at": nil,
	})
	if err != nil {
		return domain.Profile{}, err
	}

	s.log.Info("pro entitlement lapsed",
		zap.String("user_id", profile.UserID),
		zap.Timep("expired_at", profile.ProExpiresAt),
	)

	profile.Tier = domain.TierFree
	profile.ProExpiresAt = nil
	return profile, nil
}

func (s *Service) Upgrade(ctx context.Context, userID string, expiresAt time.Time) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.ErrInvalidUser
	}

	profile, err := s.repo.FindByUserID(ctx, s.db, userID)
	if err != nil {
		return err
	}
	if profile == nil {
		return domain.ErrProfileNotFound
	}

	// Absolute assignment: a duplicate confirmation re-sets the window
	// instead of stacking it.
	return s.repo.UpdateFields(ctx, s.db, userID, map[string]any{
		"tier":           domain.TierPro,
		"pro_expires_at": expiresAt.UTC(),
	})
}

func (s *Service) ResolveByIDFragment(ctx context.Context, fragment string) (domain.Profile, error) {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return domain.Profile{}, domain.ErrInvalidUser
	}

	matches, err := s.repo.FindByIDPrefix(ctx, s.db, fragment)
	if err != nil {
		return domain.Profile{}, err
	}
	switch len(matches) {
	case 0:
		return domain.Profile{}, domain.ErrProfileNotFound
	case 1:
		return matches[0], nil
	default:
		return domain.Profile{}, domain.ErrAmbiguousFragment
	}
}
