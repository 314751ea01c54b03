package domain

import "time"

// EntitlementResult is derived from the current subscription at query time
// and never persisted or cached.
type EntitlementResult struct {
	Subscribed bool       `json:"subscribed"`
	Plan       string     `json:"subscription_tier"`
	Status     Status     `json:"status"`
	ExpiresAt  *time.Time `json:"subscription_end"`
}

// IsValid reports whether the subscription grants access at the given
// instant. A nil subscription is never valid.
//
// A canceled subscription stays valid in two cases: the cancellation was
// recorded without the period-end flag (cancellation pending, access not yet
// revoked), or the cancellation timestamp lies in the future (grace period).
func IsValid(sub *Subscription, now time.Time) bool {
	if sub == nil {
		return false
	}

	switch sub.Status {
	case StatusActive, StatusTrialing:
		if sub.CancelAtPeriodEnd {
			return false
		}
		return sub.CanceledAt == nil || sub.CanceledAt.After(now)
	case StatusCanceled:
		if !sub.CancelAtPeriodEnd {
			return true
		}
		return sub.CanceledAt != nil && sub.CanceledAt.After(now)
	default:
		return false
	}
}

// Describe computes the full entitlement view for a subscription.
//
// ExpiresAt is the trial end: CurrentPeriodStart (or CreatedAt when the
// period start was never recorded) plus TrialDays. It does not reflect
// CurrentPeriodEnd for paid periods, so callers must not use it as a billing
// cutoff.
func Describe(sub *Subscription, now time.Time) EntitlementResult {
	if sub == nil {
		return EntitlementResult{
			Subscribed: false,
			Plan:       "none",
			Status:     StatusNotSubscribed,
		}
	}

	anchor := sub.CreatedAt
	if sub.CurrentPeriodStart != nil {
		anchor = *sub.CurrentPeriodStart
	}
	expiresAt := anchor.Add(time.Duration(sub.TrialDays) * 24 * time.Hour)

	return EntitlementResult{
		Subscribed: IsValid(sub, now),
		Plan:       sub.PlanID,
		Status:     sub.Status,
		ExpiresAt:  &expiresAt,
	}
}
