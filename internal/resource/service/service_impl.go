package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/recvlabs/recv/internal/clock"
	entitlementdomain "github.com/recvlabs/recv/internal/entitlement/domain"
	"github.com/recvlabs/recv/internal/observability/metrics"
	"github.com/recvlabs/recv/internal/resource/domain"
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
	Repo     domain.Repository
	Metrics  *metrics.Metrics `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	clock    clock.Clock
	genID    *snowflake.Node
	profiles entitlementdomain.Service
	repo     domain.Repository
	metrics  *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("resource.service"),
		clock:    p.Clock,
		genID:    p.GenID,
		profiles: p.Profiles,
		repo:     p.Repo,
		metrics:  p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, userID string, req domain.CreateRequest) (domain.Resource, error) {
	if !req.Type.Valid() {
		return domain.Resource{}, domain.ErrInvalidType
	}

	// Tier is read fresh at check time; an upgrade may have landed since
	// the client's last page load. Get also applies the expiry sweep.
	profile, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return domain.Resource{}, err
	}

	count, err := s.repo.CountByUser(ctx, s.db, userID)
	if err != nil {
		return domain.Resource{}, err
	}

	limit := profile.Tier.ResourceLimit()
	if count >= int64(limit) {
		if s.metrics != nil {
			s.metrics.StorageDenied(string(profile.Tier), string(req.Type))
		}
		return domain.Resource{}, &domain.StorageLimitExceededError{Limit: limit}
	}

	now := s.clock.Now()
	resource := domain.Resource{
		ID:        s.genID.Generate(),
		UserID:    userID,
		Type:      req.Type,
		Title:     strings.TrimSpace(req.Title),
		Body:      datatypes.JSON(req.Body),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, s.db, &resource); err != nil {
		return domain.Resource{}, err
	}

	return resource, nil
}

func (s *Service) List(ctx context.Context, userID string, req domain.ListRequest) ([]domain.Resource, error) {
	// Empty type lists everything; a present but unknown type is a
	// client error, not an empty result.
	if req.Type != "" && !req.Type.Valid() {
		return nil, domain.ErrInvalidType
	}
	return s.repo.ListByUser(ctx, s.db, userID, req.Type)
}
