package sdk_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supermal/mallpass/internal/twin"
	"github.com/supermal/mallpass/pkg/sdk"
)

func TestNewClientRequiresURLs(t *testing.T) {
	cfg := sdk.DefaultConfig()
	cfg.MemberURL = ""
	_, err := sdk.NewClient(cfg)
	assert.True(t, errors.Is(err, sdk.ErrValidation))
}

func TestGuestBrowsesPublicData(t *testing.T) {
	e := newEnv(t)
	c := e.client(t)
	c.Initialize(context.Background())

	stores, err := c.FeaturedStores(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sdk.SourceNetwork, stores.Source)
	assert.Len(t, stores.Value, 3)

	promos, err := c.PublicPromotions(context.Background())
	require.NoError(t, err)
	assert.Len(t, promos.Value, 2)

	events, err := c.UpcomingEvents(context.Background())
	require.NoError(t, err)
	assert.Len(t, events.Value, 2)

	all, err := c.Stores(context.Background())
	require.NoError(t, err)
	assert.Len(t, all.Value, 3)
}

func TestGuestMemberReadIsGatedWithoutNetwork(t *testing.T) {
	e := newEnv(t)
	c := e.client(t)
	c.Initialize(context.Background())

	_, err := c.PointsBalance(context.Background())

	var accessErr *sdk.AccessError
	require.True(t, errors.As(err, &accessErr))
	assert.Equal(t, sdk.CapViewProfile, accessErr.Capability)
	assert.Equal(t, sdk.Teaser, accessErr.Decision)
	assert.True(t, errors.Is(err, sdk.ErrAccessDenied))
	assert.Zero(t, e.twin.Controls().Hits("/points/balance"))

	assert.Equal(t, sdk.Teaser, c.CanAccess(sdk.CapRedeemReward, true))
	assert.Equal(t, sdk.Deny, c.CanAccess(sdk.CapRedeemReward, false))
}

func TestMemberReadBeforeInitialize(t *testing.T) {
	e := newEnv(t)
	_, err := e.client(t).Notifications(context.Background())
	assert.True(t, errors.Is(err, sdk.ErrNotInitialized))
}

func TestMemberReads(t *testing.T) {
	e := newEnv(t)
	c := loggedIn(t, e)
	ctx := context.Background()

	assert.Equal(t, sdk.Allow, c.CanAccess(sdk.CapScanReceipt, false))

	balance, err := c.PointsBalance(ctx)
	require.NoError(t, err)
	assert.Equal(t, sdk.SourceNetwork, balance.Source)
	assert.Equal(t, 15750, balance.Value.CurrentBalance)

	txns, err := c.RecentTransactions(ctx)
	require.NoError(t, err)
	assert.Len(t, txns.Value, 3)

	recommended, err := c.RecommendedRewards(ctx)
	require.NoError(t, err)
	assert.Len(t, recommended.Value, 3)

	rewards, err := c.Rewards(ctx)
	require.NoError(t, err)
	assert.Equal(t, sdk.SourceNetwork, rewards.Source)

	notes, err := c.Notifications(ctx)
	require.NoError(t, err)
	assert.Len(t, notes.Value, 4)
}

func TestMemberReadFallsBackWhenBackendFails(t *testing.T) {
	e := newEnv(t)
	c := loggedIn(t, e)
	e.twin.Controls().Set("/notifications", twin.Fault{Status: http.StatusInternalServerError})

	notes, err := c.Notifications(context.Background())
	require.NoError(t, err)
	assert.True(t, notes.IsFallback())
	assert.Equal(t, sdk.SeedNotifications(), notes.Value)
	assert.Equal(t, sdk.StateMember, c.Session().State(), "a 5xx does not sign the member out")
}

func TestStoreLookup(t *testing.T) {
	e := newEnv(t)
	c := e.client(t)
	c.Initialize(context.Background())
	ctx := context.Background()

	_, err := c.Store(ctx, "  ")
	assert.True(t, errors.Is(err, sdk.ErrValidation))

	found, err := c.Store(ctx, "1")
	require.NoError(t, err)
	require.NotNil(t, found.Value)
	assert.Equal(t, "Zara", found.Value.Name)
	assert.Equal(t, sdk.SourceNetwork, found.Source)

	missing, err := c.Store(ctx, "999")
	require.NoError(t, err)
	assert.Nil(t, missing.Value)
	assert.True(t, missing.IsFallback())

	e.twin.Controls().Set("/stores/2", twin.Fault{Status: http.StatusServiceUnavailable})
	seeded, err := c.Store(ctx, "2")
	require.NoError(t, err)
	require.NotNil(t, seeded.Value)
	assert.Equal(t, "Starbucks", seeded.Value.Name)
	assert.True(t, seeded.IsFallback())
}

func TestLogoutPurgesMemberCache(t *testing.T) {
	e := newEnv(t)
	profile := sdk.DemoProfile(twin.DemoCIF)
	profile.TierProgress = &sdk.TierProgress{Current: 20000, Target: 25000, NextTier: "Platinum"}
	require.True(t, e.twin.SetProfile(twin.DemoCIF, profile))
	c := loggedIn(t, e)
	ctx := context.Background()

	cached, err := c.PointsBalance(ctx)
	require.NoError(t, err)
	require.Equal(t, 20000, cached.Value.CurrentBalance)
	require.NoError(t, c.Logout())

	_, err = c.Login(ctx, demoCreds())
	require.NoError(t, err)
	e.twin.Controls().Set("/points/balance", twin.Fault{Status: http.StatusServiceUnavailable})

	balance, err := c.PointsBalance(ctx)
	require.NoError(t, err)
	assert.True(t, balance.IsFallback())
	assert.Equal(t, sdk.SeedPointsBalance(), balance.Value, "the previous session's entry was purged")
}
