package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func timePtr(t time.Time) *time.Time { return &t }

func TestIsValidNilSubscription(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	assert.False(t, IsValid(nil, now))
}

func TestIsValidActiveAndTrialing(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for _, status := range []Status{StatusActive, StatusTrialing} {
		t.Run(string(status), func(t *testing.T) {
			sub := &Subscription{Status: status}
			assert.True(t, IsValid(sub, now), "clean %s subscription must be valid", status)

			sub = &Subscription{Status: status, CancelAtPeriodEnd: true}
			assert.False(t, IsValid(sub, now), "pending period-end cancellation revokes access")

			sub = &Subscription{Status: status, CanceledAt: timePtr(now.Add(time.Hour))}
			assert.True(t, IsValid(sub, now), "future canceled_at keeps access")

			sub = &Subscription{Status: status, CanceledAt: timePtr(now.Add(-time.Hour))}
			assert.False(t, IsValid(sub, now), "past canceled_at revokes access")
		})
	}
}

func TestIsValidCanceled(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// Canceled without the period-end flag means the cancellation has been
	// recorded but access is not yet revoked.
	sub := &Subscription{Status: StatusCanceled}
	assert.True(t, IsValid(sub, now))

	sub = &Subscription{Status: StatusCanceled, CancelAtPeriodEnd: true}
	assert.False(t, IsValid(sub, now), "flagged cancellation with no grace timestamp is invalid")

	sub = &Subscription{
		Status:            StatusCanceled,
		CancelAtPeriodEnd: true,
		CanceledAt:        timePtr(now.Add(24 * time.Hour)),
	}
	assert.True(t, IsValid(sub, now), "grace period extends access until canceled_at")

	sub.CanceledAt = timePtr(now.Add(-time.Second))
	assert.False(t, IsValid(sub, now), "grace period over")
}

func TestIsValidUnknownStatus(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for _, status := range []Status{StatusNotSubscribed, Status("past_due"), Status("incomplete"), Status("")} {
		sub := &Subscription{Status: status}
		assert.False(t, IsValid(sub, now), "status %q must not be entitled", status)
	}
}

func TestIsValidGraceBoundaryIsExclusive(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	sub := &Subscription{
		Status:            StatusCanceled,
		CancelAtPeriodEnd: true,
		CanceledAt:        timePtr(now),
	}
	assert.False(t, IsValid(sub, now), "canceled_at equal to now is already expired")
}

func TestDescribeNoSubscription(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	res := Describe(nil, now)
	assert.False(t, res.Subscribed)
	assert.Equal(t, "none", res.Plan)
	assert.Equal(t, StatusNotSubscribed, res.Status)
	assert.Nil(t, res.ExpiresAt)
}

func TestDescribeExpiresAtAnchorsOnPeriodStart(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	periodStart := time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)

	sub := &Subscription{
		PlanID:             "pro",
		Status:             StatusTrialing,
		TrialDays:          14,
		CurrentPeriodStart: &periodStart,
		CreatedAt:          periodStart.Add(-48 * time.Hour),
	}

	res := Describe(sub, now)
	require.NotNil(t, res.ExpiresAt)
	assert.Equal(t, periodStart.Add(14*24*time.Hour), *res.ExpiresAt)
	assert.True(t, res.Subscribed)
	assert.Equal(t, "pro", res.Plan)
	assert.Equal(t, StatusTrialing, res.Status)
}

func TestDescribeExpiresAtFallsBackToCreatedAt(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	createdAt := time.Date(2025, 5, 28, 9, 30, 0, 0, time.UTC)

	sub := &Subscription{
		PlanID:    "starter",
		Status:    StatusActive,
		TrialDays: 7,
		CreatedAt: createdAt,
	}

	res := Describe(sub, now)
	require.NotNil(t, res.ExpiresAt)
	assert.Equal(t, createdAt.Add(7*24*time.Hour), *res.ExpiresAt)
}

func TestDescribeReportsPlanAndStatusEvenWhenInvalid(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	sub := &Subscription{
		PlanID:            "pro",
		Status:            StatusCanceled,
		CancelAtPeriodEnd: true,
		CreatedAt:         now.AddDate(0, -2, 0),
	}

	res := Describe(sub, now)
	assert.False(t, res.Subscribed)
	assert.Equal(t, "pro", res.Plan)
	assert.Equal(t, StatusCanceled, res.Status)
}
