package profiles

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/luisocampo/nichesmith-backend/pkg/db/models"
	"github.com/luisocampo/nichesmith-backend/pkg/enums"
)

func newTestRepo(t *testing.T) Repository {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.Profile{}))
	return NewRepository(conn)
}

func seedProfile(t *testing.T, repo Repository) *models.Profile {
	t.Helper()
	subID := "sub_123"
	custID := "cus_123"
	profile := &models.Profile{
		ID:                   uuid.New(),
		Email:                "owner@example.com",
		PlanID:               "starter",
		StripeCustomerID:     &custID,
		StripeSubscriptionID: &subID,
		SubscriptionStatus:   enums.SubscriptionStatusActive,
	}
	require.NoError(t, repo.Create(context.Background(), profile))
	return profile
}

func TestUpdateByIDTouchesOnlyGivenColumns(t *testing.T) {
	repo := newTestRepo(t)
	profile := seedProfile(t, repo)
	ctx := context.Background()

	err := repo.UpdateByID(ctx, profile.ID, map[string]any{
		"subscription_status": enums.SubscriptionStatusPastDue,
	})
	require.NoError(t, err)

	got, err := repo.FindByID(ctx, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.SubscriptionStatusPastDue, got.SubscriptionStatus)
	assert.Equal(t, "starter", got.PlanID)
	require.NotNil(t, got.StripeSubscriptionID)
	assert.Equal(t, "sub_123", *got.StripeSubscriptionID)
}

func TestUpdateByStripeSubscriptionID(t *testing.T) {
	repo := newTestRepo(t)
	profile := seedProfile(t, repo)
	ctx := context.Background()

	err := repo.UpdateByStripeSubscriptionID(ctx, "sub_123", map[string]any{
		"plan_id":             models.FreePlanID,
		"subscription_status": enums.SubscriptionStatusCanceled,
	})
	require.NoError(t, err)

	got, err := repo.FindByID(ctx, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FreePlanID, got.PlanID)
	assert.Equal(t, enums.SubscriptionStatusCanceled, got.SubscriptionStatus)
}

func TestUpdateUnknownSubscriptionIsNotFound(t *testing.T) {
	repo := newTestRepo(t)
	seedProfile(t, repo)

	err := repo.UpdateByStripeSubscriptionID(context.Background(), "sub_missing", map[string]any{
		"subscription_status": enums.SubscriptionStatusActive,
	})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSetStripeCustomerID(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	profile := &models.Profile{
		ID:                 uuid.New(),
		Email:              "new@example.com",
		PlanID:             models.FreePlanID,
		SubscriptionStatus: enums.SubscriptionStatusNone,
	}
	require.NoError(t, repo.Create(ctx, profile))

	require.NoError(t, repo.SetStripeCustomerID(ctx, profile.ID, "cus_new"))

	got, err := repo.FindByStripeCustomerID(ctx, "cus_new")
	require.NoError(t, err)
	assert.Equal(t, profile.ID, got.ID)
}
