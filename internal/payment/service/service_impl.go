package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/recvlabs/recv/internal/clock"
	entitlementdomain "github.com/recvlabs/recv/internal/entitlement/domain"
	"github.com/recvlabs/recv/internal/observability/metrics"
	"github.com/recvlabs/recv/internal/payment/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Clock    clock.Clock
	Profiles entitlementdomain.Service
	Verifier domain.Verifier
	Metrics  *metrics.Metrics `optional:"true"`
}

type Service struct {
	log      *zap.Logger
	clock    clock.Clock
	profiles entitlementdomain.Service
	verifier domain.Verifier
	metrics  *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		log:      p.Log.Named("payment.service"),
		clock:    p.Clock,
		profiles: p.Profiles,
		verifier: p.Verifier,
		metrics:  p.Metrics,
	}
}

// notification uses pointer fields so missing keys and wrong types are both
// rejected as shape errors.
type notification struct {
	OrderID *string `json:"orderId"`
	Amount  *int64  `json:"amount"`
	Status  *string `json:"status"`
}

func (s *Service) Reconcile(ctx context.Context, payload []byte) error {
	notif, err := parseNotification(payload)
	if err != nil {
		s.outcome("invalid_payload")
		return err
	}

	// Intermediate provider states (pending, settling, ...) are expected;
	// acknowledge without touching entitlement state.
	if notif.Status != domain.StatusCompleted {
		s.log.Debug("payment notification ignored",
			zap.String("order_id", notif.OrderID),
			zap.String("status", notif.Status),
		)
		s.outcome("ignored")
		return nil
	}

	result, err := s.verifier.VerifyTransaction(ctx, notif.OrderID, notif.Amount)
	if err != nil {
		s.outcome("verify_error")
		return err
	}
	if result.Status != domain.StatusCompleted || result.Amount != notif.Amount {
		// Claimed complete but the provider disagrees: possible fraud or
		// a provider-side delay, kept visible for manual investigation.
		s.log.Warn("payment verification mismatch",
			zap.String("order_id", notif.OrderID),
			zap.String("provider_status", result.Status),
			zap.Int64("claimed_amount", notif.Amount),
			zap.Int64("provider_amount", result.Amount),
		)
		s.outcome("verification_failed")
		return domain.ErrVerificationFailed
	}

	order, err := domain.ParseOrderID(notif.OrderID)
	if err != nil {
		s.outcome("malformed_order_id")
		return err
	}

	profile, err := s.profiles.ResolveByIDFragment(ctx, order.UserFragment)
	if err != nil {
		if errors.Is(err, entitlementdomain.ErrAmbiguousFragment) {
			// A verified payment that cannot be attributed to exactly
			// one account must not guess.
			s.log.Warn("order fragment matches multiple users",
				zap.String("order_id", notif.OrderID),
			)
			s.outcome("verification_failed")
			return domain.ErrVerificationFailed
		}
		s.outcome("resolve_failed")
		return err
	}

	expiresAt := s.clock.Now().Add(entitlementdomain.ProTerm)
	if err := s.profiles.Upgrade(ctx, profile.UserID, expiresAt); err != nil {
		s.outcome("upgrade_failed")
		return err
	}

	s.log.Info("entitlement upgraded",
		zap.String("user_id", profile.UserID),
		zap.String("order_id", notif.OrderID),
		zap.Time("pro_expires_at", expiresAt),
	)
	s.outcome("upgraded")
	return nil
}

func parseNotification(payload []byte) (domain.Notification, error) {
	var raw notification
	if err := json.Unmarshal(payload, &raw); err != nil {
		return domain.Notification{}, domain.ErrInvalidPayload
	}
	if raw.OrderID == nil || *raw.OrderID == "" {
		return domain.Notification{}, domain.ErrInvalidPayload
	}
	if raw.Amount == nil || *raw.Amount <= 0 {
		return domain.Notification{}, domain.ErrInvalidPayload
	}

	status := ""
	if raw.Status != nil {
		status = *raw.Status
	}

	return domain.Notification{
		OrderID: *raw.OrderID,
		Amount:  *raw.Amount,
		Status:  status,
	}, nil
}

func (s *Service) outcome(name string) {
	if s.metrics != nil {
		s.metrics.WebhookOutcome(name)
	}
}
