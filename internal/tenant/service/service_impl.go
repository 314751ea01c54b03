package service

import (
	"context"
	"strings"

	"github.com/mausamcrm/platform/internal/auth/password"
	"github.com/mausamcrm/platform/internal/auth/token"
	subscriptiondomain "github.com/mausamcrm/platform/internal/subscription/domain"
	tenantdomain "github.com/mausamcrm/platform/internal/tenant/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	repo          tenantdomain.Repository
	subscriptions subscriptiondomain.Service
	tokens        *token.Issuer
}

type ServiceParam struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	Repo          tenantdomain.Repository
	Subscriptions subscriptiondomain.Service
	Tokens        *token.Issuer
}

func NewService(p ServiceParam) tenantdomain.Service {
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("tenant.service"),
		repo:          p.Repo,
		subscriptions: p.Subscriptions,
		tokens:        p.Tokens,
	}
}

func (s *Service) Login(ctx context.Context, req tenantdomain.LoginRequest) (*tenantdomain.LoginResponse, error) {
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, tenantdomain.ErrMissingCredentials
	}

	tenant, err := s.repo.FindByEmail(ctx, s.db, req.Email)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, tenantdomain.ErrTenantNotFound
	}

	if !password.Verify(req.Password, tenant.PasswordHash) {
		return nil, tenantdomain.ErrInvalidCredentials
	}

	entitlement, err := s.subscriptions.Entitlement(ctx, tenant.ID)
	if err != nil {
		return nil, err
	}

	raw, err := s.tokens.Issue(tenant.ID, tenant.Subdomain, tenant.Email)
	if err != nil {
		return nil, err
	}

	return &tenantdomain.LoginResponse{
		Token: raw,
		Tenant: tenantdomain.TenantView{
			Company:   tenant.CompanyName,
			Subdomain: tenant.Subdomain,
			Domain:    tenant.Domain,
		},
		Entitlement: entitlement,
	}, nil
}

func (s *Service) GetBySubdomain(ctx context.Context, subdomain string) (*tenantdomain.Tenant, error) {
	tenant, err := s.repo.FindBySubdomain(ctx, s.db, subdomain)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, tenantdomain.ErrTenantNotFound
	}
	return tenant, nil
}
