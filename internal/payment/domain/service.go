package domain

import "context"

// VerificationResult is the provider's authoritative view of a transaction.
type VerificationResult struct {
	Status string `json:"status"`
	Amount int64  `json:"amount"`
}

// Verifier re-queries the payment provider's transaction-detail endpoint.
// Inbound webhook payloads can be spoofed; this round trip is what actually
// authorizes an upgrade.
type Verifier interface {
	VerifyTransaction(ctx context.Context, orderID string, amount int64) (VerificationResult, error)
}

type Service interface {
	// Reconcile applies the entitlement upgrade for a completed payment
	// exactly once per genuine payment. Non-completed statuses are
	// acknowledged without mutation. Retries are owned by the webhook
	// sender, never by this component.
	Reconcile(ctx context.Context, payload []byte) error
}
