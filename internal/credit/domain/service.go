package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	entitlementdomain "github.com/recvlabs/recv/internal/entitlement/domain"
)

// ProtectedFunc is the externally-owned action a credit pays for, typically
// an upstream completion call. It is only charged when it returns nil.
type ProtectedFunc func(ctx context.Context) error

type ConsumeRequest struct {
	Action string
	Model  string
}

// Summary is the window-adjusted quota view for client display.
type Summary struct {
	Tier      entitlementdomain.Tier `json:"tier"`
	Limit     int                    `json:"limit"`
	Used      int                    `json:"used"`
	Remaining int                    `json:"remaining"`
	ResetsAt  time.Time              `json:"resets_at"`
}

type Service interface {
	// Consume grants one unit against the caller's rolling window, runs
	// fn, and charges the unit only after fn succeeds.
	Consume(ctx context.Context, userID string, req ConsumeRequest, fn ProtectedFunc) error

	// Summary computes the effective usage without mutating counters.
	Summary(ctx context.Context, userID string) (Summary, error)
}

var (
	ErrQuotaExceeded = errors.New("quota_exceeded")
	ErrInvalidAction = errors.New("invalid_action")
)

// QuotaExceededError carries the tier and limit for client messaging.
// errors.Is(err, ErrQuotaExceeded) matches it.
type QuotaExceededError struct {
	Tier  entitlementdomain.Tier
	Limit int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("quota_exceeded: tier %s limit %d", e.Tier, e.Limit)
}

func (e *QuotaExceededError) Unwrap() error { return ErrQuotaExceeded }
