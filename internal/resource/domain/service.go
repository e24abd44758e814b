package domain

import (
	"context"
	"errors"
	"fmt"
)

type CreateRequest struct {
	Type  Type
	Title string
	Body  []byte
}

type ListRequest struct {
	Type Type
}

type Service interface {
	// Create enforces the tier's storage limit before inserting. The
	// limit applies to creation only, never to updates.
	Create(ctx context.Context, userID string, req CreateRequest) (Resource, error)
	List(ctx context.Context, userID string, req ListRequest) ([]Resource, error)
}

var (
	ErrInvalidType          = errors.New("invalid_resource_type")
	ErrStorageLimitExceeded = errors.New("storage_limit_exceeded")
)

// StorageLimitExceededError carries the limit for client messaging.
// errors.Is(err, ErrStorageLimitExceeded) matches it.
type StorageLimitExceededError struct {
	Limit int
}

func (e *StorageLimitExceededError) Error() string {
	return fmt.Sprintf("storage_limit_exceeded: limit %d", e.Limit)
}

func (e *StorageLimitExceededError) Unwrap() error { return ErrStorageLimitExceeded }
