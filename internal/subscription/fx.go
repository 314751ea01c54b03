package subscription

import (
	"github.com/mausamcrm/platform/internal/subscription/repository"
	"github.com/mausamcrm/platform/internal/subscription/service"
	"go.uber.org/fx"
)

var Module = fx.Module("subscription.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
