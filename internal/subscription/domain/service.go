package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type CreateOrActivateRequest struct {
	TenantID  snowflake.ID
	PlanID    string
	Interval  string
	TrialDays int
}

type SwitchPlanRequest struct {
	TenantID  snowflake.ID
	NewPlanID string
	Immediate bool
}

type CancelRequest struct {
	TenantID  snowflake.ID
	Immediate bool
}

type UpdateStatusRequest struct {
	TenantID snowflake.ID
	Status   Status
}

type Service interface {
	// CreateOrActivate creates the tenant's subscription, or re-activates an
	// existing one onto the given plan.
	CreateOrActivate(ctx context.Context, req CreateOrActivateRequest) (Subscription, error)
	SwitchPlan(ctx context.Context, req SwitchPlanRequest) error
	Cancel(ctx context.Context, req CancelRequest) error
	UpdateStatus(ctx context.Context, req UpdateStatusRequest) error
	// Entitlement evaluates the tenant's current entitlement against the
	// service clock. A tenant with no subscription yields a not_subscribed
	// result, not an error.
	Entitlement(ctx context.Context, tenantID snowflake.ID) (EntitlementResult, error)
}

var (
	ErrInvalidPlan              = errors.New("invalid_plan")
	ErrInvalidStatus            = errors.New("invalid_status")
	ErrSubscriptionNotFound     = errors.New("subscription_not_found")
	ErrAlreadyOnPlan            = errors.New("already_subscribed_to_plan")
	ErrSwitchVerificationFailed = errors.New("plan_switch_verification_failed")
)
