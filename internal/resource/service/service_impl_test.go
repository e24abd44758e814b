package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/recvlabs/recv/internal/clock"
	entitlementdomain "github.com/recvlabs/recv/internal/entitlement/domain"
	entitlementrepo "github.com/recvlabs/recv/internal/entitlement/repository"
	entitlementservice "github.com/recvlabs/recv/internal/entitlement/service"
	"github.com/recvlabs/recv/internal/resource/domain"
	"github.com/recvlabs/recv/internal/resource/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	svc   domain.Service
	db    *gorm.DB
	clock *clock.FakeClock
}

func setupResourceService(t *testing.T) fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entitlementdomain.Profile{}, &domain.Resource{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fc := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	profiles := entitlementservice.New(entitlementservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		Clock: fc,
		Repo:  entitlementrepo.Provide(),
	})

	svc := New(Params{
		DB:       db,
		Log:      zap.NewNop(),
		Clock:    fc,
		GenID:    node,
		Profiles: profiles,
		Repo:     repository.Provide(),
	})
	return fixture{svc: svc, db: db, clock: fc}
}

func (f fixture) seedProfile(t *testing.T, userID string, tier entitlementdomain.Tier) {
	t.Helper()

	now := f.clock.Now()
	profile := entitlementdomain.Profile{
		UserID:          userID,
		Tier:            tier,
		LastCreditReset: now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if tier == entitlementdomain.TierPro {
		expiry := now.Add(entitlementdomain.ProTerm)
		profile.ProExpiresAt = &expiry
	}
	require.NoError(t, f.db.Create(&profile).Error)
}

func cvRequest(title string) domain.CreateRequest {
	return domain.CreateRequest{
		Type:  domain.TypeCV,
		Title: title,
		Body:  []byte(`{"sections":[]}`),
	}
}

func TestCreateFreeTierLimit(t *testing.T) {
	f := setupResourceService(t)
	userID := t.Name() + "-u1"
	f.seedProfile(t, userID, entitlementdomain.TierFree)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, userID, cvRequest("My CV"))
	require.NoError(t, err)
	assert.Equal(t, userID, created.UserID)
	assert.NotZero(t, created.ID)

	// The limit counts all owned resources, so a cover letter is denied
	// even though no cover letter exists yet.
	_, err = f.svc.Create(ctx, userID, domain.CreateRequest{Type: domain.TypeCoverLetter})
	assert.ErrorIs(t, err, domain.ErrStorageLimitExceeded)

	var storageErr *domain.StorageLimitExceededError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, entitlementdomain.FreeResourceLimit, storageErr.Limit)

	var count int64
	require.NoError(t, f.db.Model(&domain.Resource{}).Where("user_id = ?", userID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCreateProTierLimit(t *testing.T) {
	f := setupResourceService(t)
	userID := t.Name() + "-u1"
	f.seedProfile(t, userID, entitlementdomain.TierPro)
	ctx := context.Background()

	for i := 0; i < entitlementdomain.ProResourceLimit; i++ {
		_, err := f.svc.Create(ctx, userID, cvRequest("CV"))
		require.NoError(t, err)
	}

	_, err := f.svc.Create(ctx, userID, cvRequest("One too many"))
	assert.ErrorIs(t, err, domain.ErrStorageLimitExceeded)

	var storageErr *domain.StorageLimitExceededError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, entitlementdomain.ProResourceLimit, storageErr.Limit)
}

func TestCreateLapsedProUsesFreeLimit(t *testing.T) {
	f := setupResourceService(t)
	userID := t.Name() + "-u1"
	f.seedProfile(t, userID, entitlementdomain.TierPro)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, userID, cvRequest("CV 1"))
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, userID, cvRequest("CV 2"))
	require.NoError(t, err)

	// Tier is read fresh at check time: once the entitlement lapses the
	// next creation is judged against the free limit.
	f.clock.Advance(entitlementdomain.ProTerm + time.Hour)

	_, err = f.svc.Create(ctx, userID, cvRequest("CV 3"))
	assert.ErrorIs(t, err, domain.ErrStorageLimitExceeded)

	var storageErr *domain.StorageLimitExceededError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, entitlementdomain.FreeResourceLimit, storageErr.Limit)
}

func TestCreateInvalidType(t *testing.T) {
	f := setupResourceService(t)
	userID := t.Name() + "-u1"
	f.seedProfile(t, userID, entitlementdomain.TierFree)

	_, err := f.svc.Create(context.Background(), userID, domain.CreateRequest{Type: "portfolio"})
	assert.ErrorIs(t, err, domain.ErrInvalidType)
}

func TestCreateUnknownUser(t *testing.T) {
	f := setupResourceService(t)

	_, err := f.svc.Create(context.Background(), t.Name()+"-ghost", cvRequest("CV"))
	assert.ErrorIs(t, err, entitlementdomain.ErrProfileNotFound)
}

func TestListFiltersByType(t *testing.T) {
	f := setupResourceService(t)
	userID := t.Name() + "-u1"
	f.seedProfile(t, userID, entitlementdomain.TierPro)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, userID, cvRequest("CV"))
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	_, err = f.svc.Create(ctx, userID, domain.CreateRequest{Type: domain.TypeCoverLetter, Title: "Letter"})
	require.NoError(t, err)

	all, err := f.svc.List(ctx, userID, domain.ListRequest{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Letter", all[0].Title, "newest first")

	cvs, err := f.svc.List(ctx, userID, domain.ListRequest{Type: domain.TypeCV})
	require.NoError(t, err)
	require.Len(t, cvs, 1)
	assert.Equal(t, domain.TypeCV, cvs[0].Type)

	_, err = f.svc.List(ctx, userID, domain.ListRequest{Type: "portfolio"})
	assert.ErrorIs(t, err, domain.ErrInvalidType)
}
