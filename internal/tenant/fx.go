package tenant

import (
	"github.com/mausamcrm/platform/internal/tenant/repository"
	"github.com/mausamcrm/platform/internal/tenant/service"
	"go.uber.org/fx"
)

var Module = fx.Module("tenant.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
