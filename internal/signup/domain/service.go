package domain

import (
	"context"

	tenantdomain "github.com/mausamcrm/platform/internal/tenant/domain"
)

type Service interface {
	Signup(ctx context.Context, req Request) (*Result, error)
}

type Request struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	CompanyName string `json:"company_name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	PlanID      string `json:"plan_id"`
	Interval    string `json:"interval"`
	TrialDays   int    `json:"trial_days"`
}

type Result struct {
	Token  string                  `json:"token"`
	Tenant tenantdomain.TenantView `json:"tenant"`
}
