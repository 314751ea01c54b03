package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/mausamcrm/platform/internal/clock"
	subscriptiondomain "github.com/mausamcrm/platform/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service is the subscription lifecycle manager. Lifecycle operations for
// one tenant are serialized through a per-tenant lock; the stores only give
// per-record atomicity, so ordering inside each operation substitutes for a
// multi-record transaction.
type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID *snowflake.Node
	clock clock.Clock
	repo  subscriptiondomain.Repository

	locks sync.Map // tenant id -> *sync.Mutex
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  subscriptiondomain.Repository
}

func NewService(p ServiceParam) subscriptiondomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("subscription.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) lockTenant(tenantID snowflake.ID) func() {
	value, _ := s.locks.LoadOrStore(tenantID, &sync.Mutex{})
	mu := value.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// current returns the tenant's authoritative subscription, or nil.
func (s *Service) current(ctx context.Context, tenantID snowflake.ID) (*subscriptiondomain.Subscription, error) {
	subscriptions, err := s.repo.FindByTenant(ctx, s.db, tenantID)
	if err != nil {
		return nil, err
	}
	if len(subscriptions) == 0 {
		return nil, nil
	}
	return &subscriptions[0], nil
}

func (s *Service) CreateOrActivate(ctx context.Context, req subscriptiondomain.CreateOrActivateRequest) (subscriptiondomain.Subscription, error) {
	if strings.TrimSpace(req.PlanID) == "" {
		return subscriptiondomain.Subscription{}, subscriptiondomain.ErrInvalidPlan
	}

	unlock := s.lockTenant(req.TenantID)
	defer unlock()

	existing, err := s.current(ctx, req.TenantID)
	if err != nil {
		return subscriptiondomain.Subscription{}, err
	}

	now := s.clock.Now()

	if existing != nil {
		if err := s.repo.UpdateFieldsByID(ctx, s.db, existing.ID, map[string]any{
			"plan_id":    req.PlanID,
			"status":     subscriptiondomain.StatusActive,
			"updated_at": now,
		}); err != nil {
			return subscriptiondomain.Subscription{}, err
		}

		existing.PlanID = req.PlanID
		existing.Status = subscriptiondomain.StatusActive
		existing.UpdatedAt = now
		return *existing, nil
	}

	periodEnd := nextPeriodEnd(req.Interval, now)
	subscription := subscriptiondomain.Subscription{
		ID:                 s.genID.Generate(),
		TenantID:           req.TenantID,
		PlanID:             req.PlanID,
		Interval:           req.Interval,
		TrialDays:          req.TrialDays,
		CurrentPeriodStart: &now,
		CurrentPeriodEnd:   &periodEnd,
		Status:             subscriptiondomain.StatusActive,
		CancelAtPeriodEnd:  false,
		CanceledAt:         nil,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.repo.Insert(ctx, s.db, &subscription); err != nil {
		return subscriptiondomain.Subscription{}, err
	}

	s.log.Info("subscription activated",
		zap.String("tenant_id", req.TenantID.String()),
		zap.String("plan_id", req.PlanID),
	)
	return subscription, nil
}

func (s *Service) SwitchPlan(ctx context.Context, req subscriptiondomain.SwitchPlanRequest) error {
	if strings.TrimSpace(req.NewPlanID) == "" {
		return subscriptiondomain.ErrInvalidPlan
	}

	unlock := s.lockTenant(req.TenantID)
	defer unlock()

	current, err := s.current(ctx, req.TenantID)
	if err != nil {
		return err
	}
	if current == nil {
		return subscriptiondomain.ErrSubscriptionNotFound
	}
	if current.PlanID == req.NewPlanID {
		return subscriptiondomain.ErrAlreadyOnPlan
	}

	now := s.clock.Now()

	if !req.Immediate {
		// The switch takes effect at the period boundary; the record's plan
		// stays untouched until the billing-cycle reconciliation acts on it.
		return s.repo.UpdateFieldsByID(ctx, s.db, current.ID, map[string]any{
			"cancel_at_period_end": true,
			"updated_at":           now,
		})
	}

	// The new record must be queryable before the old one is marked
	// canceled, so there is no window where neither record is valid.
	periodEnd := nextPeriodEnd(current.Interval, now)
	replacement := subscriptiondomain.Subscription{
		ID:                 s.genID.Generate(),
		TenantID:           req.TenantID,
		PlanID:             req.NewPlanID,
		Interval:           current.Interval,
		TrialDays:          current.TrialDays,
		CurrentPeriodStart: &now,
		CurrentPeriodEnd:   &periodEnd,
		Status:             subscriptiondomain.StatusActive,
		CancelAtPeriodEnd:  false,
		CanceledAt:         nil,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.repo.Insert(ctx, s.db, &replacement); err != nil {
		return err
	}

	if err := s.repo.UpdateFieldsByID(ctx, s.db, current.ID, map[string]any{
		"status":      subscriptiondomain.StatusCanceled,
		"canceled_at": now,
		"updated_at":  now,
	}); err != nil {
		return err
	}

	// Both writes succeeded; verify the switch actually took. A mismatch
	// here is a verification failure, not a write failure.
	verified, err := s.current(ctx, req.TenantID)
	if err != nil {
		return err
	}
	if verified == nil || verified.PlanID != req.NewPlanID || verified.Status != subscriptiondomain.StatusActive {
		s.log.Error("plan switch verification failed",
			zap.String("tenant_id", req.TenantID.String()),
			zap.String("new_plan_id", req.NewPlanID),
		)
		return subscriptiondomain.ErrSwitchVerificationFailed
	}

	return nil
}

func (s *Service) Cancel(ctx context.Context, req subscriptiondomain.CancelRequest) error {
	unlock := s.lockTenant(req.TenantID)
	defer unlock()

	current, err := s.current(ctx, req.TenantID)
	if err != nil {
		return err
	}
	if current == nil {
		return subscriptiondomain.ErrSubscriptionNotFound
	}

	now := s.clock.Now()

	if req.Immediate {
		return s.repo.UpdateFieldsByID(ctx, s.db, current.ID, map[string]any{
			"status":      subscriptiondomain.StatusCanceled,
			"canceled_at": now,
			"updated_at":  now,
		})
	}

	// Deferred cancellation leaves the status untouched; entitlement keeps
	// honoring the record until the grace-period rule lapses.
	return s.repo.UpdateFieldsByID(ctx, s.db, current.ID, map[string]any{
		"cancel_at_period_end": true,
		"updated_at":           now,
	})
}

func (s *Service) UpdateStatus(ctx context.Context, req subscriptiondomain.UpdateStatusRequest) error {
	if strings.TrimSpace(string(req.Status)) == "" {
		return subscriptiondomain.ErrInvalidStatus
	}

	unlock := s.lockTenant(req.TenantID)
	defer unlock()

	current, err := s.current(ctx, req.TenantID)
	if err != nil {
		return err
	}
	if current == nil {
		return subscriptiondomain.ErrSubscriptionNotFound
	}

	return s.repo.UpdateFieldsByID(ctx, s.db, current.ID, map[string]any{
		"status":     req.Status,
		"updated_at": s.clock.Now(),
	})
}

func (s *Service) Entitlement(ctx context.Context, tenantID snowflake.ID) (subscriptiondomain.EntitlementResult, error) {
	current, err := s.current(ctx, tenantID)
	if err != nil {
		return subscriptiondomain.EntitlementResult{}, err
	}
	return subscriptiondomain.Describe(current, s.clock.Now()), nil
}

// nextPeriodEnd computes the end of a billing period starting at now.
// Unknown intervals default to 30 days.
func nextPeriodEnd(interval string, now time.Time) time.Time {
	switch strings.ToLower(interval) {
	case subscriptiondomain.IntervalMonth:
		return now.AddDate(0, 1, 0)
	case subscriptiondomain.IntervalYear:
		return now.AddDate(1, 0, 0)
	default:
		return now.AddDate(0, 0, 30)
	}
}
