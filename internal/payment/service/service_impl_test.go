package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/recvlabs/recv/internal/clock"
	entitlementdomain "github.com/recvlabs/recv/internal/entitlement/domain"
	entitlementrepo "github.com/recvlabs/recv/internal/entitlement/repository"
	entitlementservice "github.com/recvlabs/recv/internal/entitlement/service"
	"github.com/recvlabs/recv/internal/payment/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type verifierStub struct {
	mu     sync.Mutex
	calls  int
	result domain.VerificationResult
	err    error
}

func (v *verifierStub) VerifyTransaction(ctx context.Context, orderID string, amount int64) (domain.VerificationResult, error) {
	v.mu.Lock()
	v.calls++
	v.mu.Unlock()
	if v.err != nil {
		return domain.VerificationResult{}, v.err
	}
	return v.result, nil
}

func (v *verifierStub) Calls() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.calls
}

type fixture struct {
	svc      domain.Service
	profiles entitlementdomain.Service
	verifier *verifierStub
	db       *gorm.DB
	clock    *clock.FakeClock
}

func setupPaymentService(t *testing.T) fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entitlementdomain.Profile{}))

	fc := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	profiles := entitlementservice.New(entitlementservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		Clock: fc,
		Repo:  entitlementrepo.Provide(),
	})

	verifier := &verifierStub{}
	svc := New(Params{
		Log:      zap.NewNop(),
		Clock:    fc,
		Profiles: profiles,
		Verifier: verifier,
	})
	return fixture{svc: svc, profiles: profiles, verifier: verifier, db: db, clock: fc}
}

func (f fixture) storedProfile(t *testing.T, userID string) entitlementdomain.Profile {
	t.Helper()

	var profile entitlementdomain.Profile
	require.NoError(t, f.db.Where("user_id = ?", userID).First(&profile).Error)
	return profile
}

func completedPayload(orderID string, amount int64) []byte {
	return fmt.Appendf(nil, `{"orderId":%q,"amount":%d,"status":"completed"}`, orderID, amount)
}

func TestReconcileUpgradesUser(t *testing.T) {
	f := setupPaymentService(t)
	userID := t.Name() + "alpha"
	_, err := f.profiles.Provision(context.Background(), userID)
	require.NoError(t, err)

	f.verifier.result = domain.VerificationResult{Status: domain.StatusCompleted, Amount: 4900}
	orderID := fmt.Sprintf("ReCV-PRO-%s-1893456000", userID)

	require.NoError(t, f.svc.Reconcile(context.Background(), completedPayload(orderID, 4900)))
	assert.Equal(t, 1, f.verifier.Calls())

	stored := f.storedProfile(t, userID)
	assert.Equal(t, entitlementdomain.TierPro, stored.Tier)
	require.NotNil(t, stored.ProExpiresAt)
	assert.True(t, stored.ProExpiresAt.Equal(f.clock.Now().Add(entitlementdomain.ProTerm)))
}

func TestReconcileDuplicateDoesNotStack(t *testing.T) {
	f := setupPaymentService(t)
	userID := t.Name() + "alpha"
	_, err := f.profiles.Provision(context.Background(), userID)
	require.NoError(t, err)

	f.verifier.result = domain.VerificationResult{Status: domain.StatusCompleted, Amount: 4900}
	orderID := fmt.Sprintf("ReCV-PRO-%s-1893456000", userID)
	payload := completedPayload(orderID, 4900)

	require.NoError(t, f.svc.Reconcile(context.Background(), payload))
	f.clock.Advance(time.Hour)
	require.NoError(t, f.svc.Reconcile(context.Background(), payload))

	// The redelivered notification re-sets the expiry from its own
	// processing time; the user ends up with ~30 days, never 60.
	stored := f.storedProfile(t, userID)
	require.NotNil(t, stored.ProExpiresAt)
	assert.True(t, stored.ProExpiresAt.Equal(f.clock.Now().Add(entitlementdomain.ProTerm)))
}

func TestReconcileNonCompletedStatusIsNoOp(t *testing.T) {
	f := setupPaymentService(t)
	userID := t.Name() + "alpha"
	_, err := f.profiles.Provision(context.Background(), userID)
	require.NoError(t, err)

	orderID := fmt.Sprintf("ReCV-PRO-%s-1893456000", userID)
	payload := fmt.Appendf(nil, `{"orderId":%q,"amount":4900,"status":"pending"}`, orderID)

	require.NoError(t, f.svc.Reconcile(context.Background(), payload))
	assert.Equal(t, 0, f.verifier.Calls(), "intermediate states skip the provider round trip")
	assert.Equal(t, entitlementdomain.TierFree, f.storedProfile(t, userID).Tier)
}

func TestReconcileInvalidPayloads(t *testing.T) {
	f := setupPaymentService(t)

	cases := []struct {
		name    string
		payload string
	}{
		{"not json", `not json`},
		{"missing order id", `{"amount":4900,"status":"completed"}`},
		{"empty order id", `{"orderId":"","amount":4900,"status":"completed"}`},
		{"missing amount", `{"orderId":"ReCV-PRO-u-1","status":"completed"}`},
		{"zero amount", `{"orderId":"ReCV-PRO-u-1","amount":0,"status":"completed"}`},
		{"negative amount", `{"orderId":"ReCV-PRO-u-1","amount":-5,"status":"completed"}`},
		{"wrong amount type", `{"orderId":"ReCV-PRO-u-1","amount":"4900","status":"completed"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := f.svc.Reconcile(context.Background(), []byte(tc.payload))
			assert.ErrorIs(t, err, domain.ErrInvalidPayload)
		})
	}
	assert.Equal(t, 0, f.verifier.Calls())
}

func TestReconcileVerificationMismatch(t *testing.T) {
	f := setupPaymentService(t)
	userID := t.Name() + "alpha"
	_, err := f.profiles.Provision(context.Background(), userID)
	require.NoError(t, err)

	orderID := fmt.Sprintf("ReCV-PRO-%s-1893456000", userID)

	t.Run("provider disagrees on status", func(t *testing.T) {
		f.verifier.result = domain.VerificationResult{Status: "pending", Amount: 4900}
		err := f.svc.Reconcile(context.Background(), completedPayload(orderID, 4900))
		assert.ErrorIs(t, err, domain.ErrVerificationFailed)
	})

	t.Run("provider disagrees on amount", func(t *testing.T) {
		f.verifier.result = domain.VerificationResult{Status: domain.StatusCompleted, Amount: 100}
		err := f.svc.Reconcile(context.Background(), completedPayload(orderID, 4900))
		assert.ErrorIs(t, err, domain.ErrVerificationFailed)
	})

	assert.Equal(t, entitlementdomain.TierFree, f.storedProfile(t, userID).Tier,
		"an unverified claim must never mutate entitlement")
}

func TestReconcileVerifierError(t *testing.T) {
	f := setupPaymentService(t)
	userID := t.Name() + "alpha"
	_, err := f.profiles.Provision(context.Background(), userID)
	require.NoError(t, err)

	f.verifier.err = errors.New("provider timeout")
	orderID := fmt.Sprintf("ReCV-PRO-%s-1893456000", userID)

	err = f.svc.Reconcile(context.Background(), completedPayload(orderID, 4900))
	assert.ErrorIs(t, err, f.verifier.err)
	assert.Equal(t, entitlementdomain.TierFree, f.storedProfile(t, userID).Tier)
}

func TestReconcileMalformedOrderID(t *testing.T) {
	f := setupPaymentService(t)
	f.verifier.result = domain.VerificationResult{Status: domain.StatusCompleted, Amount: 4900}

	// The order id is only parsed after verification succeeds.
	err := f.svc.Reconcile(context.Background(), completedPayload("RECV-PRO-user-123", 4900))
	assert.ErrorIs(t, err, domain.ErrMalformedOrderID)
	assert.Equal(t, 1, f.verifier.Calls())
}

func TestReconcileAmbiguousFragment(t *testing.T) {
	f := setupPaymentService(t)
	ctx := context.Background()

	for _, suffix := range []string{"alpha1", "alpha2"} {
		_, err := f.profiles.Provision(ctx, t.Name()+suffix)
		require.NoError(t, err)
	}

	f.verifier.result = domain.VerificationResult{Status: domain.StatusCompleted, Amount: 4900}
	orderID := fmt.Sprintf("ReCV-PRO-%s-1893456000", t.Name()+"alpha")

	err := f.svc.Reconcile(ctx, completedPayload(orderID, 4900))
	assert.ErrorIs(t, err, domain.ErrVerificationFailed,
		"a payment that cannot be attributed to exactly one user is rejected")
}

func TestReconcileUnknownFragment(t *testing.T) {
	f := setupPaymentService(t)
	f.verifier.result = domain.VerificationResult{Status: domain.StatusCompleted, Amount: 4900}

	orderID := fmt.Sprintf("ReCV-PRO-%s-1893456000", t.Name()+"ghost")
	err := f.svc.Reconcile(context.Background(), completedPayload(orderID, 4900))
	assert.ErrorIs(t, err, entitlementdomain.ErrProfileNotFound)
}
