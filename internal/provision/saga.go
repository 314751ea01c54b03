// Package provision implements the tenant onboarding saga.
package provision

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/mausamcrm/platform/internal/auth/password"
	"github.com/mausamcrm/platform/internal/auth/token"
	"github.com/mausamcrm/platform/internal/clock"
	"github.com/mausamcrm/platform/internal/config"
	"github.com/mausamcrm/platform/internal/provision/domain"
	tenantdomain "github.com/mausamcrm/platform/internal/tenant/domain"
	"github.com/oklog/ulid/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Saga provisions a tenant's infrastructure in dependency order and, on any
// failure, tears down the resources already created in strict reverse order.
// Compensation is best-effort: a failed compensating action is logged and
// counted but never blocks the remaining ones.
type Saga struct {
	db  *gorm.DB
	log *zap.Logger
	cfg config.Config

	genID   *snowflake.Node
	clock   clock.Clock
	tenants tenantdomain.Repository
	tokens  *token.Issuer

	compute domain.ComputeProvisioner
	routing domain.RoutingConfigurator
	dns     domain.DNSManager
	tables  domain.TableProvisioner

	metrics *Metrics
}

type SagaParam struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Cfg     config.Config
	GenID   *snowflake.Node
	Clock   clock.Clock
	Tenants tenantdomain.Repository
	Tokens  *token.Issuer

	Compute domain.ComputeProvisioner
	Routing domain.RoutingConfigurator
	DNS     domain.DNSManager
	Tables  domain.TableProvisioner

	Metrics *Metrics
}

func NewSaga(p SagaParam) domain.Service {
	return &Saga{
		db:      p.DB,
		log:     p.Log.Named("provision.saga"),
		cfg:     p.Cfg,
		genID:   p.GenID,
		clock:   p.Clock,
		tenants: p.Tenants,
		tokens:  p.Tokens,
		compute: p.Compute,
		routing: p.Routing,
		dns:     p.DNS,
		tables:  p.Tables,
		metrics: p.Metrics,
	}
}

// attempt tracks what one saga invocation has created so far, in creation
// order. Every resource is tagged with the attempt ID so compensating
// deletes stay scoped to this invocation.
type attempt struct {
	id        string
	subdomain string
	hostname  string

	tenantID      *snowflake.ID
	tablesCreated bool
	instance      *domain.Instance
	targetID      string
	ruleIDs       []string
	dnsBound      bool
}

func (s *Saga) Provision(ctx context.Context, req domain.Request) (*domain.Result, error) {
	if strings.TrimSpace(req.CompanyName) == "" ||
		strings.TrimSpace(req.Email) == "" ||
		req.Password == "" {
		return nil, domain.ErrMissingFields
	}

	subdomain := DeriveSubdomain(req.CompanyName)
	if subdomain == "" {
		return nil, domain.ErrMissingFields
	}
	hostname := subdomain + "." + s.cfg.BaseDomain

	// Duplicate-signup guard, keyed on contact identity. A prior failed and
	// rolled-back attempt leaves no tenant record, so retries pass here.
	existing, err := s.tenants.FindByEmail(ctx, s.db, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrTenantExists
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	st := &attempt{
		id:        ulid.Make().String(),
		subdomain: subdomain,
		hostname:  hostname,
	}
	log := s.log.With(
		zap.String("attempt_id", st.id),
		zap.String("subdomain", subdomain),
	)

	result, err := s.run(ctx, req, hash, st, log)
	if err != nil {
		log.Error("provisioning failed, rolling back", zap.Error(err))
		s.compensate(ctx, st, log)
		s.metrics.ProvisionTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("%w: %v", domain.ErrProvisioningFailed, err)
	}

	s.metrics.ProvisionTotal.WithLabelValues("succeeded").Inc()
	log.Info("tenant provisioned",
		zap.String("tenant_id", result.TenantID.String()),
		zap.String("domain", result.Domain),
	)
	return result, nil
}

func (s *Saga) run(ctx context.Context, req domain.Request, hash string, st *attempt, log *zap.Logger) (*domain.Result, error) {
	now := s.clock.Now()
	tenant := tenantdomain.Tenant{
		ID:           s.genID.Generate(),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		CompanyName:  strings.TrimSpace(req.CompanyName),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		Subdomain:    st.subdomain,
		Domain:       st.hostname,
		Status:       tenantdomain.TenantStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.tenants.Insert(ctx, s.db, &tenant); err != nil {
		return nil, fmt.Errorf("create tenant record: %w", err)
	}
	st.tenantID = &tenant.ID

	if err := s.tables.Create(ctx, st.subdomain); err != nil {
		return nil, fmt.Errorf("create tenant tables: %w", err)
	}
	st.tablesCreated = true

	instance, err := s.compute.Launch(ctx, st.subdomain, st.id)
	if err != nil {
		return nil, fmt.Errorf("launch instance: %w", err)
	}
	st.instance = &instance
	log.Info("instance running", zap.String("instance_id", instance.InstanceID))

	targetID, err := s.routing.CreateTarget(ctx, st.subdomain, instance.InstanceID, st.id)
	if err != nil {
		return nil, fmt.Errorf("create routing target: %w", err)
	}
	st.targetID = targetID

	for _, kind := range []domain.RuleKind{domain.RuleForward, domain.RuleRedirect} {
		ruleID, err := s.routing.CreateRule(ctx, st.hostname, targetID, kind)
		if err != nil {
			return nil, fmt.Errorf("create %s rule: %w", kind, err)
		}
		st.ruleIDs = append(st.ruleIDs, ruleID)
	}

	if s.cfg.AWS.DNSEnabled {
		if err := s.dns.Bind(ctx, st.hostname, instance.Address); err != nil {
			return nil, fmt.Errorf("bind dns: %w", err)
		}
		st.dnsBound = true
	}

	// Credential issuance is the final step inside the compensated scope: a
	// tenant either comes out fully provisioned with a usable token, or not
	// at all.
	rawToken, err := s.tokens.Issue(tenant.ID, tenant.Subdomain, tenant.Email)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	return &domain.Result{
		TenantID:  tenant.ID,
		Company:   tenant.CompanyName,
		Subdomain: tenant.Subdomain,
		Domain:    tenant.Domain,
		Token:     rawToken,
	}, nil
}

// compensate tears down in strict reverse order of the steps that
// succeeded. Failures are logged and counted, never propagated; the caller
// surfaces one aggregate provisioning error regardless.
func (s *Saga) compensate(ctx context.Context, st *attempt, log *zap.Logger) {
	if st.dnsBound {
		if err := s.dns.Unbind(ctx, st.hostname, st.instance.Address); err != nil {
			s.compensationFailed(log, "unbind_dns", err)
		}
	}
	for i := len(st.ruleIDs) - 1; i >= 0; i-- {
		if err := s.routing.DeleteRule(ctx, st.ruleIDs[i]); err != nil {
			s.compensationFailed(log, "delete_rule", err)
		}
	}
	if st.targetID != "" {
		if err := s.routing.DeleteTarget(ctx, st.targetID); err != nil {
			s.compensationFailed(log, "delete_target", err)
		}
	}
	if st.instance != nil {
		if err := s.compute.Terminate(ctx, st.instance.InstanceID); err != nil {
			s.compensationFailed(log, "terminate_instance", err)
		}
	}
	if st.tablesCreated {
		if err := s.tables.Drop(ctx, st.subdomain); err != nil {
			s.compensationFailed(log, "drop_tables", err)
		}
	}
	if st.tenantID != nil {
		if err := s.tenants.Delete(ctx, s.db, *st.tenantID); err != nil {
			s.compensationFailed(log, "delete_tenant", err)
		}
	}
}

func (s *Saga) compensationFailed(log *zap.Logger, action string, err error) {
	// Leftover resources need manual reconciliation; the attempt ID in the
	// log line is the handle for finding them.
	log.Error("compensation action failed", zap.String("action", action), zap.Error(err))
	s.metrics.CompensationFailures.WithLabelValues(action).Inc()
}

// DeriveSubdomain lower-cases the company name and strips all whitespace.
func DeriveSubdomain(companyName string) string {
	return strings.ToLower(strings.Join(strings.Fields(companyName), ""))
}
