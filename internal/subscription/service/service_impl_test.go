package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/mausamcrm/platform/internal/clock"
	subscriptiondomain "github.com/mausamcrm/platform/internal/subscription/domain"
	"github.com/mausamcrm/platform/internal/subscription/repository"
	"github.com/mausamcrm/platform/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) (subscriptiondomain.Service, *clock.FakeClock) {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&subscriptiondomain.Subscription{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	svc := NewService(ServiceParam{
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: fake,
		Repo:  repository.Provide(),
	})
	return svc, fake
}

func TestCreateOrActivateNewSubscription(t *testing.T) {
	svc, fake := newTestService(t)
	tenantID := snowflake.ID(101)

	sub, err := svc.CreateOrActivate(context.Background(), subscriptiondomain.CreateOrActivateRequest{
		TenantID:  tenantID,
		PlanID:    "pro",
		Interval:  subscriptiondomain.IntervalMonth,
		TrialDays: 14,
	})
	require.NoError(t, err)

	assert.Equal(t, tenantID, sub.TenantID)
	assert.Equal(t, "pro", sub.PlanID)
	assert.Equal(t, subscriptiondomain.StatusActive, sub.Status)
	require.NotNil(t, sub.CurrentPeriodStart)
	require.NotNil(t, sub.CurrentPeriodEnd)
	assert.Equal(t, fake.Now(), *sub.CurrentPeriodStart)
	assert.Equal(t, fake.Now().AddDate(0, 1, 0), *sub.CurrentPeriodEnd)
}

func TestCreateOrActivateRejectsEmptyPlan(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateOrActivate(context.Background(), subscriptiondomain.CreateOrActivateRequest{
		TenantID: 101,
		PlanID:   "  ",
	})
	assert.ErrorIs(t, err, subscriptiondomain.ErrInvalidPlan)
}

func TestCreateOrActivateReactivatesExisting(t *testing.T) {
	svc, fake := newTestService(t)
	tenantID := snowflake.ID(101)
	ctx := context.Background()

	first, err := svc.CreateOrActivate(ctx, subscriptiondomain.CreateOrActivateRequest{
		TenantID: tenantID,
		PlanID:   "starter",
		Interval: subscriptiondomain.IntervalMonth,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(ctx, subscriptiondomain.CancelRequest{TenantID: tenantID, Immediate: true}))
	fake.Advance(time.Hour)

	second, err := svc.CreateOrActivate(ctx, subscriptiondomain.CreateOrActivateRequest{
		TenantID: tenantID,
		PlanID:   "pro",
	})
	require.NoError(t, err)

	// Reactivation updates the existing record rather than creating a sibling.
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "pro", second.PlanID)
	assert.Equal(t, subscriptiondomain.StatusActive, second.Status)
}

func TestSwitchPlanDeferred(t *testing.T) {
	svc, _ := newTestService(t)
	tenantID := snowflake.ID(101)
	ctx := context.Background()

	_, err := svc.CreateOrActivate(ctx, subscriptiondomain.CreateOrActivateRequest{
		TenantID: tenantID,
		PlanID:   "starter",
		Interval: subscriptiondomain.IntervalMonth,
	})
	require.NoError(t, err)

	err = svc.SwitchPlan(ctx, subscriptiondomain.SwitchPlanRequest{
		TenantID:  tenantID,
		NewPlanID: "pro",
		Immediate: false,
	})
	require.NoError(t, err)

	// A deferred switch flags the record; the plan itself does not change and
	// entitlement is revoked until the cycle boundary is reconciled.
	res, err := svc.Entitlement(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, "starter", res.Plan)
	assert.False(t, res.Subscribed)
}

func TestSwitchPlanImmediate(t *testing.T) {
	svc, fake := newTestService(t)
	tenantID := snowflake.ID(101)
	ctx := context.Background()

	_, err := svc.CreateOrActivate(ctx, subscriptiondomain.CreateOrActivateRequest{
		TenantID:  tenantID,
		PlanID:    "starter",
		Interval:  subscriptiondomain.IntervalYear,
		TrialDays: 14,
	})
	require.NoError(t, err)
	fake.Advance(time.Hour)

	err = svc.SwitchPlan(ctx, subscriptiondomain.SwitchPlanRequest{
		TenantID:  tenantID,
		NewPlanID: "pro",
		Immediate: true,
	})
	require.NoError(t, err)

	res, err := svc.Entitlement(ctx, tenantID)
	require.NoError(t, err)
	assert.True(t, res.Subscribed)
	assert.Equal(t, "pro", res.Plan)
	assert.Equal(t, subscriptiondomain.StatusActive, res.Status)
}

func TestSwitchPlanSamePlan(t *testing.T) {
	svc, _ := newTestService(t)
	tenantID := snowflake.ID(101)
	ctx := context.Background()

	_, err := svc.CreateOrActivate(ctx, subscriptiondomain.CreateOrActivateRequest{
		TenantID: tenantID,
		PlanID:   "pro",
	})
	require.NoError(t, err)

	err = svc.SwitchPlan(ctx, subscriptiondomain.SwitchPlanRequest{
		TenantID:  tenantID,
		NewPlanID: "pro",
		Immediate: true,
	})
	assert.ErrorIs(t, err, subscriptiondomain.ErrAlreadyOnPlan)
}

func TestSwitchPlanNoSubscription(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.SwitchPlan(context.Background(), subscriptiondomain.SwitchPlanRequest{
		TenantID:  404,
		NewPlanID: "pro",
	})
	assert.ErrorIs(t, err, subscriptiondomain.ErrSubscriptionNotFound)
}

func TestCancelImmediate(t *testing.T) {
	svc, _ := newTestService(t)
	tenantID := snowflake.ID(101)
	ctx := context.Background()

	_, err := svc.CreateOrActivate(ctx, subscriptiondomain.CreateOrActivateRequest{
		TenantID: tenantID,
		PlanID:   "pro",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(ctx, subscriptiondomain.CancelRequest{TenantID: tenantID, Immediate: true}))

	res, err := svc.Entitlement(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, subscriptiondomain.StatusCanceled, res.Status)
	// canceled_at is set to the cancellation instant, so the grace window is
	// already over.
	assert.False(t, res.Subscribed)
}

func TestCancelDeferredLeavesStatusUntouched(t *testing.T) {
	svc, _ := newTestService(t)
	tenantID := snowflake.ID(101)
	ctx := context.Background()

	_, err := svc.CreateOrActivate(ctx, subscriptiondomain.CreateOrActivateRequest{
		TenantID: tenantID,
		PlanID:   "pro",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(ctx, subscriptiondomain.CancelRequest{TenantID: tenantID, Immediate: false}))

	res, err := svc.Entitlement(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, subscriptiondomain.StatusActive, res.Status)
	assert.False(t, res.Subscribed)
}

func TestCancelNoSubscription(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.Cancel(context.Background(), subscriptiondomain.CancelRequest{TenantID: 404})
	assert.ErrorIs(t, err, subscriptiondomain.ErrSubscriptionNotFound)
}

func TestUpdateStatus(t *testing.T) {
	svc, _ := newTestService(t)
	tenantID := snowflake.ID(101)
	ctx := context.Background()

	_, err := svc.CreateOrActivate(ctx, subscriptiondomain.CreateOrActivateRequest{
		TenantID: tenantID,
		PlanID:   "pro",
	})
	require.NoError(t, err)

	require.NoError(t, svc.UpdateStatus(ctx, subscriptiondomain.UpdateStatusRequest{
		TenantID: tenantID,
		Status:   subscriptiondomain.StatusTrialing,
	}))

	res, err := svc.Entitlement(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, subscriptiondomain.StatusTrialing, res.Status)
}

func TestUpdateStatusRejectsEmpty(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.UpdateStatus(context.Background(), subscriptiondomain.UpdateStatusRequest{
		TenantID: 101,
		Status:   "",
	})
	assert.ErrorIs(t, err, subscriptiondomain.ErrInvalidStatus)
}

func TestEntitlementNoSubscription(t *testing.T) {
	svc, _ := newTestService(t)

	res, err := svc.Entitlement(context.Background(), 404)
	require.NoError(t, err)
	assert.False(t, res.Subscribed)
	assert.Equal(t, "none", res.Plan)
	assert.Equal(t, subscriptiondomain.StatusNotSubscribed, res.Status)
}

func TestEntitlementUsesMostRecentRecord(t *testing.T) {
	svc, fake := newTestService(t)
	tenantID := snowflake.ID(101)
	ctx := context.Background()

	_, err := svc.CreateOrActivate(ctx, subscriptiondomain.CreateOrActivateRequest{
		TenantID: tenantID,
		PlanID:   "starter",
	})
	require.NoError(t, err)
	fake.Advance(time.Minute)

	require.NoError(t, svc.SwitchPlan(ctx, subscriptiondomain.SwitchPlanRequest{
		TenantID:  tenantID,
		NewPlanID: "pro",
		Immediate: true,
	}))

	// Two records now exist for the tenant; the replacement wins.
	res, err := svc.Entitlement(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, "pro", res.Plan)
	assert.True(t, res.Subscribed)
}
