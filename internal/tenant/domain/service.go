package domain

import (
	"context"
	"errors"

	subscriptiondomain "github.com/mausamcrm/platform/internal/subscription/domain"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TenantView struct {
	Company   string `json:"company"`
	Subdomain string `json:"subdomain"`
	Domain    string `json:"domain"`
}

type LoginResponse struct {
	Token       string                               `json:"token"`
	Tenant      TenantView                           `json:"tenant"`
	Entitlement subscriptiondomain.EntitlementResult `json:"entitlement"`
}

type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	GetBySubdomain(ctx context.Context, subdomain string) (*Tenant, error)
}

var (
	ErrTenantNotFound     = errors.New("tenant_not_found")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrMissingCredentials = errors.New("missing_credentials")
)
