package signup

import (
	"context"

	provisiondomain "github.com/mausamcrm/platform/internal/provision/domain"
	"github.com/mausamcrm/platform/internal/signup/domain"
	subscriptiondomain "github.com/mausamcrm/platform/internal/subscription/domain"
	tenantdomain "github.com/mausamcrm/platform/internal/tenant/domain"
	"go.uber.org/zap"
)

type service struct {
	log           *zap.Logger
	saga          provisiondomain.Service
	subscriptions subscriptiondomain.Service
}

func NewService(log *zap.Logger, saga provisiondomain.Service, subscriptions subscriptiondomain.Service) domain.Service {
	return &service{
		log:           log.Named("signup.service"),
		saga:          saga,
		subscriptions: subscriptions,
	}
}

// Signup provisions the tenant's infrastructure and activates the initial
// subscription. Infrastructure failures, credential issuance included, are
// fully compensated inside the saga; a subscription failure after that point
// leaves the provisioned tenant in place and surfaces the error for the
// caller to retry.
func (s *service) Signup(ctx context.Context, req domain.Request) (*domain.Result, error) {
	provisioned, err := s.saga.Provision(ctx, provisiondomain.Request{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		CompanyName: req.CompanyName,
		Email:       req.Email,
		Password:    req.Password,
	})
	if err != nil {
		return nil, err
	}

	if req.PlanID != "" {
		if _, err := s.subscriptions.CreateOrActivate(ctx, subscriptiondomain.CreateOrActivateRequest{
			TenantID:  provisioned.TenantID,
			PlanID:    req.PlanID,
			Interval:  req.Interval,
			TrialDays: req.TrialDays,
		}); err != nil {
			s.log.Error("initial subscription setup failed",
				zap.String("tenant_id", provisioned.TenantID.String()),
				zap.Error(err),
			)
			return nil, err
		}
	}

	return &domain.Result{
		Token: provisioned.Token,
		Tenant: tenantdomain.TenantView{
			Company:   provisioned.Company,
			Subdomain: provisioned.Subdomain,
			Domain:    provisioned.Domain,
		},
	}, nil
}
