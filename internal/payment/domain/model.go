// Package domain contains the payment notification contract and order-id
// codec for entitlement reconciliation.
package domain

import (
	"errors"
	"strings"
)

// Notification is the asserted payment completion delivered by the webhook
// sender. It is never trusted on its own; the provider round trip is the
// actual authorization.
type Notification struct {
	OrderID string
	Amount  int64
	Status  string
}

const StatusCompleted = "completed"

// Order id layout: ReCV-PRO-<idFragment>-<timestamp>. The fragment is a
// prefix of the paying user's id; the order is ephemeral and never stored.
const (
	orderPrefix   = "ReCV"
	orderDelim    = "-"
	ProductTagPro = "PRO"
)

// Order is the decoded form of an order identifier.
type Order struct {
	Product      string
	UserFragment string
	IssuedAt     string
}

// ParseOrderID decodes an order identifier, rejecting anything that does
// not match the fixed prefix/product/fragment/timestamp layout.
func ParseOrderID(orderID string) (Order, error) {
	parts := strings.Split(strings.TrimSpace(orderID), orderDelim)
	if len(parts) != 4 {
		return Order{}, ErrMalformedOrderID
	}
	if parts[0] != orderPrefix {
		return Order{}, ErrMalformedOrderID
	}
	if parts[1] != ProductTagPro {
		return Order{}, ErrMalformedOrderID
	}
	fragment := parts[2]
	if fragment == "" {
		return Order{}, ErrMalformedOrderID
	}
	issuedAt := parts[3]
	if issuedAt == "" || !isDigits(issuedAt) {
		return Order{}, ErrMalformedOrderID
	}

	return Order{
		Product:      parts[1],
		UserFragment: fragment,
		IssuedAt:     issuedAt,
	}, nil
}

func isDigits(value string) bool {
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

var (
	ErrInvalidPayload     = errors.New("invalid_payload")
	ErrMalformedOrderID   = errors.New("malformed_order_id")
	ErrVerificationFailed = errors.New("verification_failed")
)
