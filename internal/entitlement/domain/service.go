package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	// Provision creates the profile at account creation time. It is
	// idempotent: an existing profile is returned unchanged.
	Provision(ctx context.Context, userID string) (Profile, error)

	// Get returns the profile with the expiry sweep applied: a lapsed
	// pro entitlement is downgraded and persisted before the profile is
	// handed to any limit evaluation.
	Get(ctx context.Context, userID string) (Profile, error)

	// Upgrade sets tier=pro with the given expiry. Absolute assignment:
	// repeated upgrades replace the window, they never stack.
	Upgrade(ctx context.Context, userID string, expiresAt time.Time) error

	// ResolveByIDFragment resolves an order-id fragment to the single
	// matching profile.
	ResolveByIDFragment(ctx context.Context, fragment string) (Profile, error)
}

var (
	ErrInvalidUser       = errors.New("invalid_user")
	ErrProfileNotFound   = errors.New("profile_not_found")
	ErrAmbiguousFragment = errors.New("ambiguous_user_fragment")
)
