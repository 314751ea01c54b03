// Package domain defines the contracts between the onboarding saga and the
// per-tenant infrastructure provisioners.
package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

// Instance is a launched compute instance for a tenant.
type Instance struct {
	InstanceID string
	Address    string
}

// ComputeProvisioner allocates compute for a tenant. Launch blocks until
// the instance is observably running or the provider's bounded wait lapses.
// Terminate is best-effort.
type ComputeProvisioner interface {
	Launch(ctx context.Context, tenantLabel, attemptID string) (Instance, error)
	Terminate(ctx context.Context, instanceID string) error
}

// RuleKind selects the routing rule behavior for a tenant hostname.
type RuleKind string

const (
	RuleForward  RuleKind = "forward"
	RuleRedirect RuleKind = "redirect"
)

// RoutingConfigurator manages the load-balancer target and host-based rules
// for a tenant hostname. Deletes are best-effort.
type RoutingConfigurator interface {
	CreateTarget(ctx context.Context, tenantLabel, instanceID, attemptID string) (string, error)
	CreateRule(ctx context.Context, hostname, targetID string, kind RuleKind) (string, error)
	DeleteRule(ctx context.Context, ruleID string) error
	DeleteTarget(ctx context.Context, targetID string) error
}

// DNSManager binds a tenant hostname to an instance address. Unbind is
// best-effort.
type DNSManager interface {
	Bind(ctx context.Context, hostname, address string) error
	Unbind(ctx context.Context, hostname, address string) error
}

// TableProvisioner creates tenant-scoped data storage. Both operations are
// idempotent: creating an existing table or dropping a missing one is not
// an error.
type TableProvisioner interface {
	Create(ctx context.Context, tenantLabel string) error
	Drop(ctx context.Context, tenantLabel string) error
}

// Request carries the tenant fields needed to provision.
type Request struct {
	FirstName   string
	LastName    string
	CompanyName string
	Email       string
	Password    string
}

// Result identifies the provisioned tenant and carries the access
// credential issued as the saga's final step.
type Result struct {
	TenantID  snowflake.ID
	Company   string
	Subdomain string
	Domain    string
	Token     string
}

// Service is the onboarding saga: all resources exist and the tenant record
// is usable, or every partially-created resource is torn down and no tenant
// record survives.
type Service interface {
	Provision(ctx context.Context, req Request) (*Result, error)
}

var (
	ErrMissingFields      = errors.New("missing_required_fields")
	ErrTenantExists       = errors.New("tenant_already_exists")
	ErrProvisioningFailed = errors.New("tenant_provisioning_failed")
)
